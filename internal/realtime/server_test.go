package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"timekeeper/internal/core/model"
	"timekeeper/internal/core/timekeeper"
	"timekeeper/internal/protocol"
)

type fakeSession struct {
	mu       sync.Mutex
	calls    []string
	snapshot timekeeper.Snapshot
	events   chan timekeeper.Event
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		snapshot: timekeeper.NewMachine(model.DefaultSettings()).Snapshot(),
		events:   make(chan timekeeper.Event, 16),
	}
}

func (f *fakeSession) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeSession) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSession) Start()  { f.record("start") }
func (f *fakeSession) Pause()  { f.record("pause") }
func (f *fakeSession) Toggle() { f.record("toggle") }
func (f *fakeSession) Reset()  { f.record("reset") }
func (f *fakeSession) Skip()   { f.record("skip") }
func (f *fakeSession) Lap()    { f.record("lap") }

func (f *fakeSession) SwitchMode(mode model.Mode) { f.record("mode:" + string(mode)) }

func (f *fakeSession) SetFocusMinutes(minutes int) {
	f.record("focus:" + time.Duration(minutes*int(time.Minute)).String())
}

func (f *fakeSession) SetCountdown(duration time.Duration) {
	f.record("countdown:" + duration.String())
}

func (f *fakeSession) Snapshot() timekeeper.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

func (f *fakeSession) Subscribe(int) <-chan timekeeper.Event { return f.events }

var exportedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type exportCounter struct {
	mu    sync.Mutex
	calls int
}

func (counter *exportCounter) add() {
	counter.mu.Lock()
	counter.calls++
	counter.mu.Unlock()
}

func (counter *exportCounter) count() int {
	counter.mu.Lock()
	defer counter.mu.Unlock()
	return counter.calls
}

func newTestServer(t *testing.T) (*Server, *fakeSession) {
	srv, session, _ := newCountingServer(t)
	return srv, session
}

func newCountingServer(t *testing.T) (*Server, *fakeSession, *exportCounter) {
	t.Helper()
	session := newFakeSession()
	exports := &exportCounter{}
	srv := New(Config{
		Session: session,
		Summary: func() Summary {
			return Summary{Theme: model.ThemeForest, Sessions: 4, StreakDays: 2}
		},
		Export: func() model.Export {
			exports.add()
			return model.Export{
				Theme:      model.ThemeForest,
				Settings:   model.DefaultSettings(),
				Stats:      model.Stats{TotalSessions: 4, StreakDays: 2, History: []model.HistoryEntry{}},
				ExportedAt: exportedAt.Format(time.RFC3339),
			}
		},
		Now:    func() time.Time { return exportedAt },
		Logger: zaptest.NewLogger(t),
	})
	return srv, session, exports
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg protocol.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func readState(t *testing.T, conn *websocket.Conn) protocol.StatePayload {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, protocol.TypeStateUpdate, msg.Type)
	var state protocol.StatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &state))
	return state
}

func TestHandleState(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var state protocol.StatePayload
	require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
	assert.Equal(t, "pomodoro", state.Mode)
	assert.Equal(t, "25:00", state.Display)
	assert.Equal(t, "focus", state.Phase)
	assert.Equal(t, "forest", state.Theme)
	assert.Equal(t, 4, state.Sessions)
	assert.Equal(t, 2, state.StreakDays)
	assert.False(t, state.Running)
}

func TestHandleStats(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.EqualValues(t, 4, stats["sessions"])
	assert.EqualValues(t, 2, stats["streak"])
}

func TestHandleExport(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="timekeeper-data-2026-03-14.json"`, w.Header().Get("Content-Disposition"))

	var export map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&export))
	assert.Equal(t, "forest", export["theme"])
	assert.Equal(t, "2026-03-14T09:30:00Z", export["exported"])
	assert.Contains(t, export, "stats")
	assert.Contains(t, export, "settings")
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHandleSessionAction(t *testing.T) {
	srv, session := newTestServer(t)

	for _, action := range []string{"start", "skip", "lap"} {
		req := httptest.NewRequest(http.MethodPost, "/session/"+action, nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, action)
	}
	assert.Equal(t, []string{"start", "skip", "lap"}, session.Calls())

	req := httptest.NewRequest(http.MethodPost, "/session/explode", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/state", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocketSendsInitialState(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	state := readState(t, conn)
	assert.Equal(t, "pomodoro", state.Mode)
	assert.Equal(t, 1, srv.ClientCount())
}

func TestWebSocketCommands(t *testing.T) {
	srv, session := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	readState(t, conn)

	commands := []string{
		`{"type":"session.start"}`,
		`{"type":"mode.switch","payload":{"mode":"stopwatch"}}`,
		`{"type":"focus.set","payload":{"minutes":50}}`,
		`{"type":"countdown.set","payload":{"seconds":90}}`,
		`{"type":"session.reset"}`,
	}
	for _, command := range commands {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(command)))
	}

	require.Eventually(t, func() bool { return len(session.Calls()) == len(commands) }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"start", "mode:stopwatch", "focus:50m0s", "countdown:1m30s", "reset"}, session.Calls())
}

func TestWebSocketInvalidMessage(t *testing.T) {
	srv, session := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	readState(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"mode.switch","payload":{"mode":"lunch"}}`)))

	msg := readMessage(t, conn)
	require.Equal(t, protocol.TypeError, msg.Type)
	var payload protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, protocol.ErrInvalidMessage, payload.Code)
	assert.Empty(t, session.Calls())
}

func TestRunBroadcastsAndThrottlesProgress(t *testing.T) {
	srv, session := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	conn := dial(t, ts)
	readState(t, conn)

	base := session.Snapshot()
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	running := base
	running.Running = true
	session.events <- timekeeper.Event{Type: timekeeper.EventProgress, Snapshot: running, At: at}

	dropped := base
	dropped.Mode = model.ModeStopwatch
	session.events <- timekeeper.Event{Type: timekeeper.EventProgress, Snapshot: dropped, At: at.Add(100 * time.Millisecond)}

	changed := base
	changed.Mode = model.ModeCountdown
	session.events <- timekeeper.Event{Type: timekeeper.EventStateChange, Snapshot: changed, At: at.Add(150 * time.Millisecond)}

	first := readState(t, conn)
	assert.Equal(t, "pomodoro", first.Mode)
	assert.True(t, first.Running)

	second := readState(t, conn)
	assert.Equal(t, "countdown", second.Mode)
}

func TestNotifierBroadcasts(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	readState(t, conn)

	srv.Toast("Timer reset")
	msg := readMessage(t, conn)
	require.Equal(t, protocol.TypeToast, msg.Type)
	assert.JSONEq(t, `{"text":"Timer reset"}`, string(msg.Payload))

	srv.Notify("Break over", "Time to focus")
	msg = readMessage(t, conn)
	require.Equal(t, protocol.TypeNotification, msg.Type)
	assert.JSONEq(t, `{"title":"Break over","body":"Time to focus"}`, string(msg.Payload))
}

func TestRunStopsWhenEventsClose(t *testing.T) {
	srv, session := newTestServer(t)
	done := make(chan struct{})
	go func() {
		srv.Run(context.Background())
		close(done)
	}()

	close(session.events)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after events closed")
	}
}

func TestStateUpdatesDoNotBuildExports(t *testing.T) {
	srv, session, exports := newCountingServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	conn := dial(t, ts)
	initial := readState(t, conn)
	assert.Equal(t, "forest", initial.Theme)

	running := session.Snapshot()
	running.Running = true
	session.events <- timekeeper.Event{Type: timekeeper.EventStateChange, Snapshot: running, At: exportedAt}
	state := readState(t, conn)
	assert.True(t, state.Running)
	assert.Equal(t, 4, state.Sessions)
	assert.Equal(t, 2, state.StreakDays)

	assert.Zero(t, exports.count())
}

func TestSendErrorAfterCloseIsDropped(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	dial(t, ts)
	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	srv.clientsMu.RLock()
	var closing *client
	for c := range srv.clients {
		closing = c
	}
	srv.clientsMu.RUnlock()

	srv.Close()
	assert.NotPanics(t, func() {
		srv.handleMessage(closing, []byte(`{"type":"mode.switch","payload":{"mode":"lunch"}}`))
	})
	assert.False(t, srv.sendTo(closing, []byte(`{}`)))
}

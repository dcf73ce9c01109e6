// Package realtime exposes the running session over WebSocket and a small REST API.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"timekeeper/internal/core/model"
	"timekeeper/internal/core/timekeeper"
	"timekeeper/internal/protocol"
)

const (
	pingInterval  = 30 * time.Second
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second

	// progressInterval throttles per-tick broadcasts; state changes are always sent.
	progressInterval = 250 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local clients only
	},
}

// Session is the part of the keeper the server drives.
type Session interface {
	Start()
	Pause()
	Toggle()
	Reset()
	Skip()
	Lap()
	SwitchMode(mode model.Mode)
	SetFocusMinutes(minutes int)
	SetCountdown(duration time.Duration)
	Snapshot() timekeeper.Snapshot
	Subscribe(buffer int) <-chan timekeeper.Event
}

// Summary is the persisted state attached to every state update.
type Summary struct {
	Theme      model.Theme
	Sessions   int
	StreakDays int
}

// Config wires the server to the running app.
type Config struct {
	Session Session
	// Summary is read on every broadcast and must be cheap.
	Summary func() Summary
	Export  func() model.Export
	Now     func() time.Time
	Logger  *zap.Logger
}

// Server manages WebSocket connections and forwards session updates to them.
type Server struct {
	options   Config
	logger    *zap.Logger
	clients   map[*client]bool
	clientsMu sync.RWMutex
}

type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// New creates a realtime server.
func New(options Config) *Server {
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &Server{
		options: options,
		logger:  options.Logger.Named("realtime"),
		clients: make(map[*client]bool),
	}
}

// Handler returns an http.Handler with all routes configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)

	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /session/{action}", s.handleSessionAction)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Run forwards keeper events to connected clients until ctx is done or the keeper closes.
func (s *Server) Run(ctx context.Context) {
	events := s.options.Session.Subscribe(256)
	var lastProgress time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Type == timekeeper.EventProgress {
				if !lastProgress.IsZero() && event.At.Sub(lastProgress) < progressInterval {
					continue
				}
				lastProgress = event.At
			}
			s.broadcastState(event.Snapshot)
		}
	}
}

// Toast broadcasts a toast to every client.
func (s *Server) Toast(text string) {
	s.broadcast(protocol.TypeToast, protocol.ToastPayload{Text: text})
}

// Notify broadcasts a desktop notification to every client.
func (s *Server) Notify(title, body string) {
	s.broadcast(protocol.TypeNotification, protocol.NotificationPayload{Title: title, Body: body})
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Close disconnects every client.
func (s *Server) Close() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()
	s.logger.Debug("client connected", zap.String("client", c.id))

	// New clients start from the current state.
	if data, err := s.encode(protocol.TypeStateUpdate, s.statePayload(s.options.Session.Snapshot())); err == nil {
		s.sendTo(c, data)
	}

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.server.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.logger.Warn("websocket read failed", zap.String("client", c.id), zap.Error(err))
			}
			return
		}

		c.server.handleMessage(c, message)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
		s.logger.Debug("client disconnected", zap.String("client", c.id))
	}
}

func (s *Server) handleMessage(c *client, raw []byte) {
	msg, err := protocol.ValidateClientMessage(raw)
	if err != nil {
		s.sendError(c, protocol.ErrInvalidMessage, err.Error())
		return
	}

	if err := s.dispatch(msg); err != nil {
		s.sendError(c, protocol.ErrInvalidMessage, err.Error())
	}
}

// dispatch applies a validated client message to the session.
func (s *Server) dispatch(msg *protocol.Message) error {
	session := s.options.Session
	switch msg.Type {
	case protocol.TypeSessionStart:
		session.Start()
	case protocol.TypeSessionPause:
		session.Pause()
	case protocol.TypeSessionToggle:
		session.Toggle()
	case protocol.TypeSessionReset:
		session.Reset()
	case protocol.TypeSessionSkip:
		session.Skip()
	case protocol.TypeSessionLap:
		session.Lap()
	case protocol.TypeModeSwitch:
		var payload protocol.ModeSwitchPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}
		mode, err := model.ParseMode(payload.Mode)
		if err != nil {
			return err
		}
		session.SwitchMode(mode)
	case protocol.TypeFocusSet:
		var payload protocol.FocusSetPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}
		session.SetFocusMinutes(payload.Minutes)
	case protocol.TypeCountdownSet:
		var payload protocol.CountdownSetPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}
		session.SetCountdown(time.Duration(payload.Seconds) * time.Second)
	}
	return nil
}

func (s *Server) sendError(c *client, code, message string) {
	msg, err := protocol.NewErrorMessage(code, message)
	if err != nil {
		return
	}
	data, _ := json.Marshal(msg)
	s.sendTo(c, data)
}

// sendTo queues data for one client unless it was already removed or its buffer is full.
func (s *Server) sendTo(c *client, data []byte) bool {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	if !s.clients[c] {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (s *Server) broadcastState(snapshot timekeeper.Snapshot) {
	s.broadcast(protocol.TypeStateUpdate, s.statePayload(snapshot))
}

func (s *Server) broadcast(msgType string, payload interface{}) {
	data, err := s.encode(msgType, payload)
	if err != nil {
		s.logger.Error("encode broadcast", zap.String("type", msgType), zap.Error(err))
		return
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Slow client: drop.
		}
	}
}

func (s *Server) encode(msgType string, payload interface{}) ([]byte, error) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

func (s *Server) statePayload(snapshot timekeeper.Snapshot) protocol.StatePayload {
	payload := protocol.StatePayload{
		Mode:     string(snapshot.Mode),
		Running:  snapshot.Running,
		Display:  snapshot.Display(),
		Label:    snapshot.Label(),
		Title:    snapshot.Title(),
		Progress: snapshot.Progress(),
	}
	switch snapshot.Mode {
	case model.ModePomodoro:
		payload.Phase = string(snapshot.Pomodoro.Phase)
	case model.ModeBreathing:
		payload.Phase = string(snapshot.Breathing.Phase)
	case model.ModeStopwatch:
		for _, lap := range snapshot.Stopwatch.Laps {
			payload.Laps = append(payload.Laps, formatLap(lap))
		}
	}
	if s.options.Summary != nil {
		summary := s.options.Summary()
		payload.Theme = string(summary.Theme)
		payload.Sessions = summary.Sessions
		payload.StreakDays = summary.StreakDays
	}
	return payload
}

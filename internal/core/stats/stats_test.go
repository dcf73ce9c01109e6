package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
)

type testClock struct {
	now time.Time
}

func (clock *testClock) Now() time.Time {
	return clock.now
}

func newTestAggregator(initial model.Stats) (*Aggregator, *testClock) {
	clock := &testClock{now: time.Date(2026, 5, 14, 10, 30, 0, 0, time.Local)}
	next := 0
	aggregator := New(initial, Config{
		Now: clock.Now,
		NewID: func() string {
			next++
			return fmt.Sprintf("entry-%d", next)
		},
	})
	return aggregator, clock
}

func pomodoro(minutes int) effect.Completion {
	duration := time.Duration(minutes) * time.Minute
	return effect.Completion{
		Type:           model.CompletionPomodoro,
		Duration:       duration,
		FocusedSeconds: int64(duration / time.Second),
	}
}

func TestRecordCompletionUpdatesTotals(t *testing.T) {
	aggregator, clock := newTestAggregator(model.Stats{})

	entry := aggregator.RecordCompletion(pomodoro(25))
	aggregator.RecordCompletion(effect.Completion{Type: model.CompletionTimer, Duration: 10 * time.Minute})

	stats := aggregator.Snapshot()
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, int64(1500), stats.TotalFocusedSeconds, "timers do not count as focus")
	assert.Equal(t, 1, stats.StreakDays)
	assert.Equal(t, "2026-05-14", stats.LastActive)
	require.Len(t, stats.History, 2)
	assert.Equal(t, model.HistoryEntry{
		ID:              "entry-1",
		Type:            model.CompletionPomodoro,
		DurationSeconds: 1500,
		TimestampMs:     clock.now.UnixMilli(),
	}, entry)
	assert.Equal(t, int64(600), stats.History[1].DurationSeconds)
}

func TestStreakRules(t *testing.T) {
	tests := []struct {
		name       string
		lastActive string
		streak     int
		want       int
	}{
		{name: "same day keeps streak", lastActive: "2026-05-14", streak: 4, want: 4},
		{name: "same day lifts zero streak", lastActive: "2026-05-14", streak: 0, want: 1},
		{name: "yesterday extends streak", lastActive: "2026-05-13", streak: 4, want: 5},
		{name: "gap restarts streak", lastActive: "2026-05-10", streak: 4, want: 1},
		{name: "first use starts streak", lastActive: "", streak: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aggregator, _ := newTestAggregator(model.Stats{LastActive: tt.lastActive, StreakDays: tt.streak})
			aggregator.RecordCompletion(pomodoro(25))
			assert.Equal(t, tt.want, aggregator.Snapshot().StreakDays)
		})
	}
}

func TestStreakAcrossMidnight(t *testing.T) {
	aggregator, clock := newTestAggregator(model.Stats{})
	aggregator.RecordCompletion(pomodoro(25))

	clock.now = clock.now.AddDate(0, 0, 1)
	aggregator.RecordCompletion(pomodoro(25))
	clock.now = clock.now.AddDate(0, 0, 1)
	aggregator.RecordCompletion(pomodoro(25))

	assert.Equal(t, 3, aggregator.Snapshot().StreakDays)
	assert.Equal(t, "2026-05-16", aggregator.Snapshot().LastActive)
}

func TestNormalizeBreaksStaleStreak(t *testing.T) {
	tests := []struct {
		lastActive string
		want       int
	}{
		{lastActive: "2026-05-14", want: 6},
		{lastActive: "2026-05-13", want: 6},
		{lastActive: "2026-05-12", want: 0},
		{lastActive: "", want: 0},
	}

	for _, tt := range tests {
		aggregator, _ := newTestAggregator(model.Stats{LastActive: tt.lastActive, StreakDays: 6})
		aggregator.Normalize()
		stats := aggregator.Snapshot()
		assert.Equal(t, tt.want, stats.StreakDays, tt.lastActive)
		assert.Equal(t, tt.lastActive, stats.LastActive, "normalize keeps the last active day")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	aggregator, _ := newTestAggregator(model.Stats{})
	aggregator.RecordCompletion(pomodoro(25))

	snapshot := aggregator.Snapshot()
	snapshot.History[0].ID = "changed"

	assert.Equal(t, "entry-1", aggregator.Snapshot().History[0].ID)
}

func TestResetAllAndRestore(t *testing.T) {
	aggregator, _ := newTestAggregator(model.Stats{TotalSessions: 9, StreakDays: 3, LastActive: "2026-05-14"})
	aggregator.ResetAll()

	stats := aggregator.Snapshot()
	assert.Zero(t, stats.TotalSessions)
	assert.Zero(t, stats.StreakDays)
	assert.Empty(t, stats.LastActive)
	assert.NotNil(t, stats.History)

	aggregator.Restore(model.Stats{TotalSessions: 2})
	assert.Equal(t, 2, aggregator.Snapshot().TotalSessions)
}

func TestExportStampsTime(t *testing.T) {
	aggregator, clock := newTestAggregator(model.Stats{})
	aggregator.RecordCompletion(pomodoro(30))

	export := aggregator.Export(model.DefaultSettings(), model.ThemeForest)

	assert.Equal(t, model.ThemeForest, export.Theme)
	assert.Equal(t, 1, export.Stats.TotalSessions)
	assert.Equal(t, clock.now.UTC().Format(time.RFC3339), export.ExportedAt)
}

func TestTotalsTracksCounters(t *testing.T) {
	aggregator, _ := newTestAggregator(model.Stats{TotalSessions: 3, TotalFocusedSeconds: 600, StreakDays: 1, LastActive: "2026-05-13"})
	aggregator.RecordCompletion(pomodoro(25))

	assert.Equal(t, Totals{Sessions: 4, FocusedSeconds: 2100, StreakDays: 2}, aggregator.Totals())
}

func TestTodayCount(t *testing.T) {
	aggregator, clock := newTestAggregator(model.Stats{})
	aggregator.RecordCompletion(pomodoro(25))
	aggregator.RecordCompletion(pomodoro(25))
	clock.now = clock.now.AddDate(0, 0, 1)
	aggregator.RecordCompletion(pomodoro(25))

	assert.Equal(t, 1, aggregator.TodayCount())
}

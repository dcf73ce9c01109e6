// Package stats aggregates completed sessions into totals, a daily streak and history.
package stats

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
)

// DayLayout is the calendar-day format of Stats.LastActive.
const DayLayout = "2006-01-02"

// Totals are the scalar counters of the record, without history.
type Totals struct {
	Sessions       int
	FocusedSeconds int64
	StreakDays     int
}

// Config contains runtime options for Aggregator.
type Config struct {
	Now   func() time.Time
	NewID func() string
}

// Aggregator owns the statistics record. It is safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	stats   model.Stats
	options Config
}

// New creates an aggregator seeded with persisted stats.
func New(initial model.Stats, options Config) *Aggregator {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.NewID == nil {
		options.NewID = uuid.NewString
	}
	return &Aggregator{stats: clone(initial), options: options}
}

// RecordCompletion appends a history entry and updates totals and the streak.
func (aggregator *Aggregator) RecordCompletion(completion effect.Completion) model.HistoryEntry {
	aggregator.mu.Lock()
	defer aggregator.mu.Unlock()

	now := aggregator.options.Now()
	entry := model.HistoryEntry{
		ID:              aggregator.options.NewID(),
		Type:            completion.Type,
		DurationSeconds: int64(completion.Duration / time.Second),
		TimestampMs:     now.UnixMilli(),
	}

	stats := &aggregator.stats
	stats.History = append(stats.History, entry)
	stats.TotalSessions++
	if completion.Type == model.CompletionPomodoro {
		stats.TotalFocusedSeconds += completion.FocusedSeconds
	}

	today := now.Format(DayLayout)
	switch stats.LastActive {
	case today:
		if stats.StreakDays < 1 {
			stats.StreakDays = 1
		}
	case yesterday(now):
		stats.StreakDays++
	default:
		stats.StreakDays = 1
	}
	stats.LastActive = today
	return entry
}

// Normalize breaks a stale streak. It runs once after loading persisted stats.
func (aggregator *Aggregator) Normalize() {
	aggregator.mu.Lock()
	defer aggregator.mu.Unlock()

	now := aggregator.options.Now()
	last := aggregator.stats.LastActive
	if last != now.Format(DayLayout) && last != yesterday(now) {
		aggregator.stats.StreakDays = 0
	}
}

// Restore replaces the record, e.g. after the state file changed on disk.
func (aggregator *Aggregator) Restore(stats model.Stats) {
	aggregator.mu.Lock()
	defer aggregator.mu.Unlock()
	aggregator.stats = clone(stats)
}

// ResetAll clears every counter and the history.
func (aggregator *Aggregator) ResetAll() {
	aggregator.mu.Lock()
	defer aggregator.mu.Unlock()
	aggregator.stats = model.Stats{History: []model.HistoryEntry{}}
}

// Snapshot returns a deep copy of the record.
func (aggregator *Aggregator) Snapshot() model.Stats {
	aggregator.mu.Lock()
	defer aggregator.mu.Unlock()
	return clone(aggregator.stats)
}

// Totals returns the counters without copying the history.
func (aggregator *Aggregator) Totals() Totals {
	aggregator.mu.Lock()
	defer aggregator.mu.Unlock()
	return Totals{
		Sessions:       aggregator.stats.TotalSessions,
		FocusedSeconds: aggregator.stats.TotalFocusedSeconds,
		StreakDays:     aggregator.stats.StreakDays,
	}
}

// Export bundles stats with settings and theme, stamped with the current time.
func (aggregator *Aggregator) Export(settings model.Settings, theme model.Theme) model.Export {
	stats := aggregator.Snapshot()
	return model.Export{
		Stats:      stats,
		Settings:   settings,
		Theme:      theme,
		ExportedAt: aggregator.options.Now().UTC().Format(time.RFC3339),
	}
}

// TodayCount counts history entries recorded on the current calendar day.
func (aggregator *Aggregator) TodayCount() int {
	aggregator.mu.Lock()
	defer aggregator.mu.Unlock()

	now := aggregator.options.Now()
	today := now.Format(DayLayout)
	count := 0
	for _, entry := range aggregator.stats.History {
		if time.UnixMilli(entry.TimestampMs).In(now.Location()).Format(DayLayout) == today {
			count++
		}
	}
	return count
}

func yesterday(now time.Time) string {
	return now.AddDate(0, 0, -1).Format(DayLayout)
}

func clone(stats model.Stats) model.Stats {
	history := make([]model.HistoryEntry, len(stats.History))
	copy(history, stats.History)
	stats.History = history
	return stats
}

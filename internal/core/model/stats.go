package model

// CompletionType names what kind of session finished.
type CompletionType string

const (
	CompletionPomodoro CompletionType = "pomodoro"
	CompletionTimer    CompletionType = "timer"
)

// HistoryEntry is one completed session.
type HistoryEntry struct {
	ID              string         `yaml:"id" json:"id"`
	Type            CompletionType `yaml:"type" json:"type"`
	DurationSeconds int64          `yaml:"duration_seconds" json:"duration"`
	TimestampMs     int64          `yaml:"timestamp_ms" json:"timestamp"`
}

// Stats aggregates completed sessions across days.
type Stats struct {
	TotalSessions       int            `yaml:"total_sessions" json:"sessions"`
	TotalFocusedSeconds int64          `yaml:"total_focused_seconds" json:"totalTime"`
	StreakDays          int            `yaml:"streak_days" json:"streak"`
	LastActive          string         `yaml:"last_active" json:"lastUsed"`
	History             []HistoryEntry `yaml:"history" json:"history"`
}

// Record is the persisted unit.
type Record struct {
	Theme    Theme    `yaml:"theme" json:"theme"`
	Settings Settings `yaml:"settings" json:"settings"`
	Stats    Stats    `yaml:"stats" json:"stats"`
}

// DefaultRecord returns the record used when nothing was persisted.
func DefaultRecord() Record {
	return Record{
		Theme:    ThemeLight,
		Settings: DefaultSettings(),
		Stats:    Stats{History: []HistoryEntry{}},
	}
}

// Export is the snapshot written by the export surface.
type Export struct {
	Stats      Stats    `json:"stats"`
	Settings   Settings `json:"settings"`
	Theme      Theme    `json:"theme"`
	ExportedAt string   `json:"exported"`
}

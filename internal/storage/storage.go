// Package storage persists the timekeeper record to YAML or SQLite and writes exports.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"timekeeper/internal/core/model"
)

// RecordName is the key the record is stored under.
const RecordName = "timekeeper-state"

const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// ErrNotFound is returned by Load when nothing was persisted yet.
var ErrNotFound = errors.New("record not found")

// Gateway loads and saves the persisted record.
type Gateway interface {
	Load(ctx context.Context) (model.Record, error)
	Save(ctx context.Context, record model.Record) error
	Close() error
}

// Open creates the gateway for backend inside dataDir.
func Open(backend, dataDir string) (Gateway, error) {
	switch backend {
	case "", BackendYAML:
		return NewYAML(filepath.Join(dataDir, yamlFileName)), nil
	case BackendSQLite:
		return NewSQLite(filepath.Join(dataDir, sqliteFileName))
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}

// LoadOrDefault loads the record and falls back to defaults when it is missing or unreadable.
func LoadOrDefault(ctx context.Context, gateway Gateway, logger *zap.Logger) model.Record {
	record, err := gateway.Load(ctx)
	if err == nil {
		return record
	}
	if errors.Is(err, ErrNotFound) {
		logger.Info("no saved state, using defaults")
	} else {
		logger.Warn("failed to load saved state, using defaults", zap.Error(err))
	}
	return model.DefaultRecord()
}

// sanitizeRecord replaces out-of-range values with their defaults.
func sanitizeRecord(record *model.Record) {
	defaults := model.DefaultSettings()
	settings := &record.Settings

	if settings.Volume < 0 || settings.Volume > 100 {
		settings.Volume = defaults.Volume
	}
	if settings.BreakMinutes <= 0 {
		settings.BreakMinutes = defaults.BreakMinutes
	}
	if settings.LongBreakMinutes <= 0 {
		settings.LongBreakMinutes = defaults.LongBreakMinutes
	}
	if settings.SessionsTillLong <= 0 {
		settings.SessionsTillLong = defaults.SessionsTillLong
	}
	if !record.Theme.Valid() {
		record.Theme = model.ThemeLight
	}
	if record.Stats.StreakDays < 0 {
		record.Stats.StreakDays = 0
	}
	if record.Stats.History == nil {
		record.Stats.History = []model.HistoryEntry{}
	}
}

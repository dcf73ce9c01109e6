package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"timekeeper/internal/core/model"
)

func sampleRecord() model.Record {
	record := model.DefaultRecord()
	record.Theme = model.ThemeWarm
	record.Settings.Volume = 35
	record.Settings.AutoBreak = true
	record.Stats = model.Stats{
		TotalSessions:       3,
		TotalFocusedSeconds: 4500,
		StreakDays:          2,
		LastActive:          "2026-05-14",
		History: []model.HistoryEntry{
			{ID: "a", Type: model.CompletionPomodoro, DurationSeconds: 1500, TimestampMs: 1778750000000},
			{ID: "b", Type: model.CompletionTimer, DurationSeconds: 600, TimestampMs: 1778751000000},
		},
	}
	return record
}

func TestGatewaysRoundTrip(t *testing.T) {
	for _, backend := range []string{BackendYAML, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			gateway, err := Open(backend, t.TempDir())
			require.NoError(t, err)
			defer gateway.Close()

			_, err = gateway.Load(ctx)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, gateway.Save(ctx, sampleRecord()))
			loaded, err := gateway.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, sampleRecord(), loaded)

			updated := sampleRecord()
			updated.Stats.TotalSessions = 4
			require.NoError(t, gateway.Save(ctx, updated))
			loaded, err = gateway.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, 4, loaded.Stats.TotalSessions)
		})
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	assert.ErrorContains(t, err, "redis")
}

func TestYAMLMissingKeysKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, yamlFileName)
	require.NoError(t, os.WriteFile(path, []byte("theme: dark\nsettings:\n  volume: 20\n"), 0o644))

	record, err := NewYAML(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.ThemeDark, record.Theme)
	assert.Equal(t, 20, record.Settings.Volume)
	assert.Equal(t, 5, record.Settings.BreakMinutes)
	assert.True(t, record.Settings.SoundEffects)
	assert.NotNil(t, record.Stats.History)
}

func TestYAMLSanitizesOutOfRangeValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, yamlFileName)
	content := "theme: neon\nsettings:\n  volume: 250\n  break_minutes: -3\n  sessions_till_long: 0\nstats:\n  streak_days: -1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	record, err := NewYAML(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.ThemeLight, record.Theme)
	assert.Equal(t, 60, record.Settings.Volume)
	assert.Equal(t, 5, record.Settings.BreakMinutes)
	assert.Equal(t, 4, record.Settings.SessionsTillLong)
	assert.Zero(t, record.Stats.StreakDays)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, yamlFileName)
	logger := zaptest.NewLogger(t)

	record := LoadOrDefault(context.Background(), NewYAML(path), logger)
	assert.Equal(t, model.DefaultRecord(), record)

	require.NoError(t, os.WriteFile(path, []byte("settings: [not, a, map"), 0o644))
	record = LoadOrDefault(context.Background(), NewYAML(path), logger)
	assert.Equal(t, model.DefaultRecord(), record)
}

func TestSQLiteStoresOriginalKeyNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), sqliteFileName)
	gateway, err := NewSQLite(path)
	require.NoError(t, err)
	defer gateway.Close()

	require.NoError(t, gateway.Save(context.Background(), sampleRecord()))

	var payload string
	require.NoError(t, gateway.db.QueryRow(`SELECT payload FROM records WHERE name = ?`, RecordName).Scan(&payload))
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	assert.Equal(t, "warm", raw["theme"])
	assert.Contains(t, payload, `"soundComplete":true`)
	assert.Contains(t, payload, `"lastUsed":"2026-05-14"`)
}

func TestWriteExport(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 14, 18, 0, 0, 0, time.UTC)
	export := model.Export{
		Stats:      sampleRecord().Stats,
		Settings:   model.DefaultSettings(),
		Theme:      model.ThemeCool,
		ExportedAt: now.Format(time.RFC3339),
	}

	path, err := WriteExport(dir, export, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "timekeeper-data-2026-05-14.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded model.Export
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, export, decoded)
	assert.Contains(t, string(data), "\n  \"stats\"")
}

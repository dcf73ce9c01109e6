// Package app assembles the timekeeper services shared by every surface.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"timekeeper/internal/audio"
	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
	"timekeeper/internal/core/settings"
	"timekeeper/internal/core/stats"
	"timekeeper/internal/core/timekeeper"
	"timekeeper/internal/effects"
	"timekeeper/internal/notify"
	"timekeeper/internal/storage"
)

// Options selects the storage and outputs for one process.
type Options struct {
	DataDir    string
	Backend    string
	WatchState bool
	Outputs    []audio.Output
	Notifiers  []notify.Notifier
	Clock      timekeeper.Clock
	Now        func() time.Time
	Logger     *zap.Logger
}

// App owns the session keeper and everything its effects reach.
type App struct {
	Settings *settings.Store
	Stats    *stats.Aggregator
	Keeper   *timekeeper.Keeper
	Notifier *notify.Fanout

	gateway    storage.Gateway
	player     *audio.Player
	dispatcher *effects.Dispatcher
	watcher    *storage.Watcher
	logger     *zap.Logger
	now        func() time.Time

	persistMu sync.Mutex
	closeOnce sync.Once
}

// Open loads the persisted record and starts the services.
func Open(ctx context.Context, options Options) (*App, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}

	gateway, err := storage.Open(options.Backend, options.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	record := storage.LoadOrDefault(ctx, gateway, logger)

	app := &App{
		Settings: settings.New(record.Settings, record.Theme),
		Stats:    stats.New(record.Stats, stats.Config{Now: now}),
		Notifier: notify.NewFanout(options.Notifiers...),
		gateway:  gateway,
		player:   audio.NewPlayer(logger, options.Outputs...),
		logger:   logger,
		now:      now,
	}
	app.Stats.Normalize()

	app.dispatcher = effects.New(effects.Config{
		Player:    app.player,
		Notifier:  app.Notifier,
		Recorder:  app.Stats,
		Persister: app,
		Logger:    logger,
	})
	app.Keeper = timekeeper.New(app.Settings.Settings(), timekeeper.Config{
		Clock:  options.Clock,
		Sink:   app.dispatcher,
		Logger: logger.Named("keeper"),
	})
	app.Settings.OnChange(func(current model.Settings, _ model.Theme) {
		app.Keeper.UpdateSettings(current)
	})

	if yamlGateway, ok := gateway.(*storage.YAMLGateway); ok && options.WatchState {
		watcher, err := storage.NewWatcher(yamlGateway, logger, app.reload)
		if err != nil {
			logger.Warn("state file watching disabled", zap.Error(err))
		} else {
			app.watcher = watcher
		}
	}

	logger.Info("timekeeper ready",
		zap.String("backend", options.Backend),
		zap.String("data_dir", options.DataDir),
		zap.Int("sessions", record.Stats.TotalSessions))
	return app, nil
}

// Apply executes effects returned by the settings store.
func (app *App) Apply(requested []effect.Effect) {
	app.dispatcher.Handle(requested)
}

// Record bundles the current theme, settings and stats.
func (app *App) Record() model.Record {
	return model.Record{
		Theme:    app.Settings.Theme(),
		Settings: app.Settings.Settings(),
		Stats:    app.Stats.Snapshot(),
	}
}

// Export snapshots the record for download.
func (app *App) Export() model.Export {
	return app.Stats.Export(app.Settings.Settings(), app.Settings.Theme())
}

// ExportTo writes the export file into dir.
func (app *App) ExportTo(dir string) (string, error) {
	return storage.WriteExport(dir, app.Export(), app.now())
}

// ResetStats clears statistics and saves the result.
func (app *App) ResetStats(ctx context.Context) error {
	app.Stats.ResetAll()
	return app.Persist(ctx)
}

// Persist saves the current record.
func (app *App) Persist(ctx context.Context) error {
	app.persistMu.Lock()
	defer app.persistMu.Unlock()
	if err := app.gateway.Save(ctx, app.Record()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Close stops ticking, silences audio, saves and releases storage.
func (app *App) Close() error {
	var err error
	app.closeOnce.Do(func() {
		if app.watcher != nil {
			app.watcher.Close()
		}
		app.Keeper.Close()
		app.player.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if persistErr := app.Persist(ctx); persistErr != nil {
			app.logger.Error("failed to save state on exit", zap.Error(persistErr))
		}
		err = app.gateway.Close()
	})
	return err
}

func (app *App) reload(record model.Record) {
	app.Stats.Restore(record.Stats)
	app.Stats.Normalize()
	app.Settings.Replace(record.Settings, record.Theme)
}

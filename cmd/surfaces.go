package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timekeeper/internal/app"
	"timekeeper/internal/audio"
	"timekeeper/internal/config"
	"timekeeper/internal/core/timekeeper"
	"timekeeper/internal/notify"
	"timekeeper/internal/platform"
	"timekeeper/internal/realtime"
	"timekeeper/internal/ui/overlay"
	"timekeeper/internal/ui/preferences"
	"timekeeper/internal/ui/tray"
	"timekeeper/internal/ui/tui"
)

const (
	idlePollInterval = 5 * time.Second
	trayRefresh      = time.Second
	dimmedAlpha      = 90
	shutdownTimeout  = 5 * time.Second
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the timer in the terminal",
	Long: `Opens the keyboard-driven terminal timer. This is also what running
timekeeper without a command does.

Keys: space start/pause, r reset, s skip, l lap, 1-4 modes, m overview,
o options, t theme, f focus preset, [ ] countdown, e export, q quit.`,
	RunE: runTUI,
}

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run the timer in the system tray",
	Long:  `Shows a floating timer window and a system tray menu with session controls, options and export.`,
	RunE:  runTray,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the timer over websocket and REST",
	Long: `Starts a local server that streams session state on /ws and accepts
session commands from connected clients. REST endpoints expose the state,
statistics and the export file.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(trayCmd)
	rootCmd.AddCommand(serveCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	guard, err := acquireInstance("tui")
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	// stderr belongs to the terminal UI
	logger := createLogger(cfg, zap.NewNop)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signalContext(logger)
	defer cancel()

	outputs := []audio.Output{audio.NewLogOutput(logger)}
	if cfg.Bell {
		outputs = append(outputs, audio.NewBellOutput(os.Stdout))
	}
	feed := notify.NewFeed(32)
	application, err := openApp(ctx, cfg, logger, outputs, feed, notify.NewLogNotifier(logger))
	if err != nil {
		return err
	}
	defer func() {
		_ = application.Close()
	}()

	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = cfg.DataDir
	}
	return tui.Run(ctx, tui.Options{
		App:       application,
		Feed:      feed,
		Idle:      platform.NewIdleProvider(),
		DimAfter:  time.Duration(cfg.DimAfterSeconds) * time.Second,
		ExportDir: exportDir,
		Logger:    logger,
	})
}

func runTray(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	guard, err := acquireInstance("tray")
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	logger := createLogger(cfg, productionFallback)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signalContext(logger)
	defer cancel()

	fyneApp := fyneapp.NewWithID(appID)
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform")
	}

	application, err := openApp(ctx, cfg, logger,
		[]audio.Output{audio.NewLogOutput(logger)},
		notify.NewLogNotifier(logger), tray.NewDesktopNotifier(fyneApp))
	if err != nil {
		return err
	}
	defer func() {
		_ = application.Close()
	}()

	keeper := application.Keeper
	timerWindow := overlay.New(fyneApp, overlay.Config{DimOpacity: dimmedAlpha}, overlay.Controls{
		OnToggle:     keeper.Toggle,
		OnReset:      keeper.Reset,
		OnSkip:       keeper.Skip,
		OnLap:        keeper.Lap,
		OnSwitchMode: keeper.SwitchMode,
	})
	application.Notifier.Attach(timerWindow)

	prefsWindow := preferences.New(fyneApp, application.Settings, application.Apply)

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnShowTimer:   timerWindow.Show,
		OnPreferences: prefsWindow.Show,
		OnToggle:      keeper.Toggle,
		OnReset:       keeper.Reset,
		OnSkip:        keeper.Skip,
		OnLap:         keeper.Lap,
		OnSwitchMode:  keeper.SwitchMode,
		OnCycleTheme: func() {
			current, effects := application.Settings.CycleTheme()
			application.Apply(effects)
			application.Notifier.Toast("Theme: " + string(current))
		},
		OnExport: func() {
			exportFromTray(application, cfg, logger)
		},
		OnQuit: fyneApp.Quit,
	})

	snapshot := keeper.Snapshot()
	timerWindow.Update(snapshot)
	trayManager.SetSnapshot(snapshot)
	trayManager.SetStats(application.Stats.TodayCount(), application.Stats.Snapshot())
	setTrayIcon(desktopApp, snapshot.Running)

	go followKeeper(keeper.Subscribe(64), application, timerWindow, trayManager, desktopApp)
	go watchIdle(ctx, cfg, application, timerWindow, logger)
	go func() {
		<-ctx.Done()
		fyne.Do(fyneApp.Quit)
	}()

	timerWindow.Show()
	fyneApp.Run()
	return nil
}

// followKeeper mirrors keeper events into the timer window and the tray menu.
func followKeeper(events <-chan timekeeper.Event, application *app.App, timerWindow *overlay.Window, trayManager *tray.Manager, desktopApp desktop.App) {
	var lastTray time.Time
	for event := range events {
		timerWindow.Post(event.Snapshot)

		if event.Type != timekeeper.EventStateChange && event.At.Sub(lastTray) < trayRefresh {
			continue
		}
		lastTray = event.At
		snapshot := event.Snapshot
		today, stats := application.Stats.TodayCount(), application.Stats.Snapshot()
		fyne.Do(func() {
			trayManager.SetSnapshot(snapshot)
			trayManager.SetStats(today, stats)
			setTrayIcon(desktopApp, snapshot.Running)
		})
	}
}

// watchIdle dims the timer window while the user is away and the timer is stopped.
func watchIdle(ctx context.Context, cfg config.Config, application *app.App, timerWindow *overlay.Window, logger *zap.Logger) {
	idle := platform.NewIdleProvider()
	dimAfter := time.Duration(cfg.DimAfterSeconds) * time.Second

	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		away, err := idle.IdleDuration()
		if err != nil {
			if errors.Is(err, platform.ErrIdleUnsupported) {
				logger.Info("idle detection unavailable; window dimming disabled")
				return
			}
			logger.Debug("idle query failed", zap.Error(err))
			continue
		}
		dimmed := application.Settings.Settings().DimInactive &&
			!application.Keeper.Snapshot().Running &&
			dimAfter > 0 && away >= dimAfter
		fyne.Do(func() { timerWindow.SetDimmed(dimmed) })
	}
}

func exportFromTray(application *app.App, cfg config.Config, logger *zap.Logger) {
	dir := cfg.DataDir
	if home, err := os.UserHomeDir(); err == nil {
		dir = home
	}
	path, err := application.ExportTo(dir)
	if err != nil {
		logger.Error("export failed", zap.Error(err))
		application.Notifier.Toast("Export failed")
		return
	}
	application.Notifier.Toast("Exported " + filepath.Base(path))
}

func setTrayIcon(desktopApp desktop.App, running bool) {
	if running {
		desktopApp.SetSystemTrayIcon(theme.MediaPlayIcon())
	} else {
		desktopApp.SetSystemTrayIcon(theme.MediaPauseIcon())
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	guard, err := acquireInstance("serve")
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	logger := createLogger(cfg, productionFallback)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signalContext(logger)
	defer cancel()

	application, err := openApp(ctx, cfg, logger,
		[]audio.Output{audio.NewLogOutput(logger)},
		notify.NewLogNotifier(logger))
	if err != nil {
		return err
	}
	defer func() {
		_ = application.Close()
	}()

	server := realtime.New(realtime.Config{
		Session: application.Keeper,
		Summary: func() realtime.Summary {
			totals := application.Stats.Totals()
			return realtime.Summary{
				Theme:      application.Settings.Theme(),
				Sessions:   totals.Sessions,
				StreakDays: totals.StreakDays,
			}
		},
		Export: application.Export,
		Logger: logger,
	})
	application.Notifier.Attach(server)
	go server.Run(ctx)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr))
		serveErr <- httpServer.ListenAndServe()
	}()
	fmt.Printf("%s serving on http://%s\n", appName, cfg.Addr)

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("shutting down server")
	server.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

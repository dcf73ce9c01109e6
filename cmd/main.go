// Package main is the CLI entry point for timekeeper.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"timekeeper/internal/app"
	"timekeeper/internal/audio"
	"timekeeper/internal/config"
	"timekeeper/internal/notify"
	"timekeeper/internal/platform"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

const (
	appName      = config.AppName
	appID        = "com.timekeeper.app"
	logFile      = "timekeeper.log"
	errorLogFile = "timekeeper.error.log"
	probeTimeout = time.Second
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "timekeeper",
	Short: "Pomodoro, stopwatch, countdown and breathing timer",
	Long: `timekeeper is a focus timer with four modes: pomodoro cycles with
breaks, a stopwatch with laps, a countdown and a 4-7-8 breathing guide.

Run it in the terminal, in the system tray, or as a local websocket
server. Settings and statistics are shared by every surface.`,
	Version:      Version,
	SilenceUsage: true,
	RunE:         runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	configPath   string
	dataDir      string
	backend      string
	logLevel     string
	listenAddr   string
	jsonOutput   bool
	confirmReset bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: user config dir/timekeeper/config.yaml)")
	flags.StringVar(&dataDir, "data-dir", "", "Directory holding state and logs")
	flags.StringVar(&backend, "backend", "", "State backend (yaml/sqlite)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug/info/warn/error)")
	flags.StringVar(&listenAddr, "addr", "", "Listen address for serve")

	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := configPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = defaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("addr") {
		cfg.Addr = listenAddr
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// createLogger writes JSON logs into the data dir. fallback is used when the file cannot be opened.
func createLogger(cfg config.Config, fallback func() *zap.Logger) *zap.Logger {
	level, _ := cfg.Level()

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.OutputPaths = []string{filepath.Join(cfg.DataDir, logFile)}
	zapConfig.ErrorOutputPaths = []string{filepath.Join(cfg.DataDir, errorLogFile)}
	zapConfig.EncoderConfig.TimeKey = "time"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fallback()
	}
	logger, err := zapConfig.Build()
	if err != nil {
		return fallback()
	}
	return logger
}

func productionFallback() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// commandLogger is the console logger of one-shot commands.
func commandLogger(cfg config.Config) *zap.Logger {
	zapConfig := zap.NewDevelopmentConfig()
	if level, err := cfg.Level(); err == nil && level > zapcore.DebugLevel {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	logger, err := zapConfig.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

// acquireInstance takes the single-instance lock for a long-running surface.
func acquireInstance(surface string) (*platform.InstanceGuard, error) {
	guard, err := platform.AcquireSingleInstance(appName, surface)
	if err == nil {
		return guard, nil
	}
	if errors.Is(err, platform.ErrAlreadyRunning) {
		if owner, probeErr := platform.Probe(appName, probeTimeout); probeErr == nil {
			return nil, fmt.Errorf("%s already running as %s (pid %d)", appName, owner.Surface, owner.PID)
		}
	}
	return nil, fmt.Errorf("single instance: %w", err)
}

// openApp starts the shared services for a surface.
func openApp(ctx context.Context, cfg config.Config, logger *zap.Logger, outputs []audio.Output, notifiers ...notify.Notifier) (*app.App, error) {
	return app.Open(ctx, app.Options{
		DataDir:    cfg.DataDir,
		Backend:    cfg.Backend,
		WatchState: cfg.WatchState,
		Outputs:    outputs,
		Notifiers:  notifiers,
		Logger:     logger,
	})
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("%s %s (commit: %s, built: %s)\n",
			appName, Version, Commit, BuildTime)
	}
}

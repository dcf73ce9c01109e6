package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timekeeper/internal/app"
	"timekeeper/internal/core/clock"
	"timekeeper/internal/core/model"
	"timekeeper/internal/core/settings"
	"timekeeper/internal/core/stats"
	"timekeeper/internal/platform"
	"timekeeper/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a timekeeper surface is running",
	Long:  `Asks the running instance for its PID and surface and reports on the process.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Write settings and statistics to a JSON file",
	Long:  `Writes timekeeper-data-YYYY-MM-DD.json into dir (default: current directory).`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var resetStatsCmd = &cobra.Command{
	Use:   "reset-stats",
	Short: "Erase all statistics",
	Long:  `Clears sessions, focused time, streak and history. Requires --yes.`,
	Args:  cobra.NoArgs,
	RunE:  runResetStats,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "List, read or change settings",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its value",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var themeCmd = &cobra.Command{
	Use:   "theme [name]",
	Short: "Show or select the color theme",
	Long:  `Without a name prints the current theme and the available ones.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTheme,
}

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Start the tray surface at login",
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Register timekeeper tray as a login item",
	Args:  cobra.NoArgs,
	RunE:  runAutostartEnable,
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Remove the login item",
	Args:  cobra.NoArgs,
	RunE:  runAutostartDisable,
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the login item is registered",
	Args:  cobra.NoArgs,
	RunE:  runAutostartStatus,
}

func init() {
	resetStatsCmd.Flags().BoolVar(&confirmReset, "yes", false, "Confirm erasing statistics")

	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	autostartCmd.AddCommand(autostartEnableCmd)
	autostartCmd.AddCommand(autostartDisableCmd)
	autostartCmd.AddCommand(autostartStatusCmd)

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetStatsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(autostartCmd)
}

// loadRecord reads the persisted record without starting the keeper.
func loadRecord(cmd *cobra.Command) (model.Record, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return model.Record{}, err
	}
	logger := commandLogger(cfg)
	defer func() { _ = logger.Sync() }()

	gateway, err := storage.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return model.Record{}, fmt.Errorf("open storage: %w", err)
	}
	defer gateway.Close()
	return storage.LoadOrDefault(cmd.Context(), gateway, logger), nil
}

// withApp opens the app for a command that changes the record. Close saves it.
func withApp(cmd *cobra.Command, run func(ctx context.Context, application *app.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := commandLogger(cfg)
	defer func() { _ = logger.Sync() }()

	cfg.WatchState = false
	ctx := cmd.Context()
	application, err := openApp(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	runErr := run(ctx, application)
	if err := application.Close(); err != nil {
		logger.Warn("failed to close storage", zap.Error(err))
	}
	return runErr
}

func runStatus(cmd *cobra.Command, args []string) error {
	owner, err := platform.Probe(appName, probeTimeout)
	if errors.Is(err, platform.ErrNotRunning) {
		fmt.Printf("%s is not running\n", appName)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s is running\n", appName)
	fmt.Printf("  Surface: %s\n", owner.Surface)
	fmt.Printf("  PID:     %d\n", owner.PID)

	info, err := platform.DescribeProcess(owner.PID)
	if err != nil {
		fmt.Printf("  Process: unavailable (%v)\n", err)
		return nil
	}
	if !info.StartedAt.IsZero() {
		fmt.Printf("  Uptime:  %s\n", info.Uptime(time.Now()))
	}
	fmt.Printf("  Memory:  %.1f MiB\n", float64(info.RSSBytes)/(1<<20))
	fmt.Printf("  CPU:     %.1f%%\n", info.CPUPercent)
	fmt.Printf("  Threads: %d\n", info.Threads)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	record, err := loadRecord(cmd)
	if err != nil {
		return err
	}
	aggregator := stats.New(record.Stats, stats.Config{})
	aggregator.Normalize()
	current := aggregator.Snapshot()

	lastActive := current.LastActive
	if lastActive == "" {
		lastActive = "never"
	}
	fmt.Printf("Today:          %d\n", aggregator.TodayCount())
	fmt.Printf("Total sessions: %d\n", current.TotalSessions)
	fmt.Printf("Focused:        %s\n", clock.HumanTotal(current.TotalFocusedSeconds))
	fmt.Printf("Streak:         %d days\n", current.StreakDays)
	fmt.Printf("Last active:    %s\n", lastActive)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	record, err := loadRecord(cmd)
	if err != nil {
		return err
	}
	export := stats.New(record.Stats, stats.Config{}).Export(record.Settings, record.Theme)
	path, err := storage.WriteExport(dir, export, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Exported %s\n", path)
	return nil
}

func runResetStats(cmd *cobra.Command, args []string) error {
	if !confirmReset {
		return errors.New("refusing to erase statistics without --yes")
	}
	return withApp(cmd, func(ctx context.Context, application *app.App) error {
		if err := application.ResetStats(ctx); err != nil {
			return err
		}
		fmt.Println("Statistics cleared")
		return nil
	})
}

func runSettingsList(cmd *cobra.Command, args []string) error {
	record, err := loadRecord(cmd)
	if err != nil {
		return err
	}
	store := settings.New(record.Settings, record.Theme)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, field := range settings.Fields() {
		value, err := store.Get(field.Key)
		if err != nil {
			return err
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\n", field.Key, value, field.Label)
	}
	return writer.Flush()
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	record, err := loadRecord(cmd)
	if err != nil {
		return err
	}
	value, err := settings.New(record.Settings, record.Theme).Get(args[0])
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, application *app.App) error {
		effects, err := application.Settings.Set(args[0], args[1])
		if err != nil {
			return err
		}
		application.Apply(effects)
		value, _ := application.Settings.Get(args[0])
		fmt.Printf("%s = %s\n", args[0], value)
		return nil
	})
}

func runTheme(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		record, err := loadRecord(cmd)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(model.Themes))
		for _, theme := range model.Themes {
			names = append(names, string(theme))
		}
		fmt.Printf("%s (available: %s)\n", record.Theme, strings.Join(names, ", "))
		return nil
	}
	return withApp(cmd, func(ctx context.Context, application *app.App) error {
		effects, err := application.Settings.SetTheme(model.Theme(strings.ToLower(args[0])))
		if err != nil {
			return err
		}
		application.Apply(effects)
		fmt.Printf("Theme: %s\n", application.Settings.Theme())
		return nil
	})
}

func runAutostartEnable(cmd *cobra.Command, args []string) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	command := []string{executable, "tray"}
	if configPath != "" {
		command = append(command, "--config", configPath)
	}
	if err := platform.NewAutostart().Enable(appName, command); err != nil {
		return err
	}
	fmt.Println("Autostart enabled")
	return nil
}

func runAutostartDisable(cmd *cobra.Command, args []string) error {
	if err := platform.NewAutostart().Disable(appName); err != nil {
		return err
	}
	fmt.Println("Autostart disabled")
	return nil
}

func runAutostartStatus(cmd *cobra.Command, args []string) error {
	enabled, err := platform.NewAutostart().Enabled(appName)
	if err != nil {
		return err
	}
	if enabled {
		fmt.Println("Autostart is enabled")
	} else {
		fmt.Println("Autostart is disabled")
	}
	return nil
}

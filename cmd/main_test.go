package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand(t *testing.T, file string) *cobra.Command {
	t.Helper()
	previous := configPath
	configPath = file
	t.Cleanup(func() { configPath = previous })

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "")
	cmd.Flags().StringVar(&backend, "backend", "", "")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "")
	cmd.Flags().StringVar(&listenAddr, "addr", "", "")
	return cmd
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("data_dir: "+dir+"\nbackend: sqlite\naddr: 127.0.0.1:9000\n"), 0o644))

	cfg, err := loadConfig(testCommand(t, file))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("data_dir: "+dir+"\nbackend: sqlite\n"), 0o644))

	cmd := testCommand(t, file)
	other := t.TempDir()
	require.NoError(t, cmd.Flags().Set("data-dir", other))
	require.NoError(t, cmd.Flags().Set("backend", "yaml"))
	require.NoError(t, cmd.Flags().Set("log-level", "debug"))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, other, cfg.DataDir)
	assert.Equal(t, "yaml", cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRejectsBadFlag(t *testing.T) {
	dir := t.TempDir()
	cmd := testCommand(t, filepath.Join(dir, "missing.yaml"))
	require.NoError(t, cmd.Flags().Set("data-dir", dir))
	require.NoError(t, cmd.Flags().Set("backend", "postgres"))

	_, err := loadConfig(cmd)
	assert.ErrorContains(t, err, "invalid backend")
}

func TestCreateLoggerWritesIntoDataDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadConfig(func() *cobra.Command {
		cmd := testCommand(t, filepath.Join(dir, "missing.yaml"))
		require.NoError(t, cmd.Flags().Set("data-dir", dir))
		return cmd
	}())
	require.NoError(t, err)

	logger := createLogger(cfg, productionFallback)
	logger.Info("hello")
	_ = logger.Sync()

	_, err = os.Stat(filepath.Join(dir, logFile))
	assert.NoError(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, name := range []string{"run", "tray", "serve", "status", "stats", "export", "reset-stats", "settings", "theme", "autostart", "version"} {
		assert.True(t, names[name], name)
	}
}

// Package config loads the application configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// AppName names the config and data directories.
const AppName = "timekeeper"

const configFileName = "config.yaml"

// Config holds process-level options. The timer settings themselves live in the persisted record.
type Config struct {
	DataDir         string `yaml:"data_dir"`
	Backend         string `yaml:"backend"`
	LogLevel        string `yaml:"log_level"`
	Addr            string `yaml:"addr"`
	Bell            bool   `yaml:"bell"`
	DimAfterSeconds int    `yaml:"dim_after_seconds"`
	WatchState      bool   `yaml:"watch_state"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	dataDir := ""
	if configDir, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(configDir, AppName)
	}
	return Config{
		DataDir:         dataDir,
		Backend:         "yaml",
		LogLevel:        "info",
		Addr:            "127.0.0.1:7878",
		Bell:            true,
		DimAfterSeconds: 120,
		WatchState:      true,
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, AppName, configFileName), nil
}

// Load reads the configuration at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	config := Default()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(rawData, &config); err != nil {
		return Default(), fmt.Errorf("parse config yaml: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Default(), err
	}
	return config, nil
}

// Validate checks the values a file or flag may have set.
func (config Config) Validate() error {
	switch config.Backend {
	case "yaml", "sqlite":
	default:
		return fmt.Errorf("invalid backend %q: want yaml or sqlite", config.Backend)
	}
	if _, err := config.Level(); err != nil {
		return err
	}
	if strings.TrimSpace(config.DataDir) == "" {
		return errors.New("data_dir is empty and no user config dir is available")
	}
	if config.DimAfterSeconds < 0 {
		return fmt.Errorf("dim_after_seconds must not be negative")
	}
	return nil
}

// Level parses LogLevel.
func (config Config) Level() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(config.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
	}
	return level, nil
}

package platform

import (
	"errors"
	"fmt"
	"os"
)

// Autostart registers a command to run when the user logs in.
type Autostart interface {
	Enable(appName string, command []string) error
	Disable(appName string) error
	Enabled(appName string) (bool, error)
}

type autostart struct{}

// NewAutostart returns the login-item implementation for this OS.
func NewAutostart() Autostart {
	return &autostart{}
}

// ConfigDir returns the OS-standard configuration directory, falling back to a home-relative path.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

func validateAutostart(appName string, command []string) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if len(command) == 0 || command[0] == "" {
		return errors.New("command is empty")
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

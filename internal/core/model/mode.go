package model

import (
	"fmt"
	"strings"
)

// Mode identifies the active timer mode.
type Mode string

const (
	ModePomodoro  Mode = "pomodoro"
	ModeStopwatch Mode = "stopwatch"
	ModeCountdown Mode = "countdown"
	ModeBreathing Mode = "breathing"
)

// Modes lists the modes in keyboard order (1-4).
var Modes = []Mode{ModePomodoro, ModeStopwatch, ModeCountdown, ModeBreathing}

// Label returns the display name of the mode.
func (mode Mode) Label() string {
	switch mode {
	case ModePomodoro:
		return "Pomodoro"
	case ModeStopwatch:
		return "Stopwatch"
	case ModeCountdown:
		return "Timer"
	case ModeBreathing:
		return "Breathe"
	}
	return string(mode)
}

// ParseMode accepts a mode name or its 1-based index.
func ParseMode(value string) (Mode, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for index, mode := range Modes {
		if value == string(mode) || value == fmt.Sprintf("%d", index+1) {
			return mode, nil
		}
	}
	switch value {
	case "timer":
		return ModeCountdown, nil
	case "breathe":
		return ModeBreathing, nil
	}
	return "", fmt.Errorf("unknown mode %q", value)
}

// Theme is a named color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeWarm   Theme = "warm"
	ThemeCool   Theme = "cool"
	ThemeForest Theme = "forest"
)

// Themes lists themes in cycle order.
var Themes = []Theme{ThemeLight, ThemeDark, ThemeWarm, ThemeCool, ThemeForest}

// Next returns the theme after this one, wrapping around.
// Unknown themes restart the cycle at the first theme.
func (theme Theme) Next() Theme {
	for index, candidate := range Themes {
		if candidate == theme {
			return Themes[(index+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// Valid reports whether the theme is known.
func (theme Theme) Valid() bool {
	for _, candidate := range Themes {
		if candidate == theme {
			return true
		}
	}
	return false
}

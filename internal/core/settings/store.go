// Package settings holds the user preferences and theme and reports what each change requires.
package settings

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
)

// ErrUnknownKey is returned for a settings key that does not exist.
var ErrUnknownKey = errors.New("unknown settings key")

const (
	previewFrequency = 440.0
	previewDuration  = 200 * time.Millisecond
	previewVolume    = 0.2
)

// Listener receives settings and theme after every change.
type Listener func(settings model.Settings, theme model.Theme)

// Store owns the settings and theme. Range checks on the typed setters are the caller's
// responsibility; Set parses and validates its string input.
type Store struct {
	mu        sync.Mutex
	settings  model.Settings
	theme     model.Theme
	listeners []Listener
}

// New creates a store from a persisted record.
func New(settings model.Settings, theme model.Theme) *Store {
	if !theme.Valid() {
		theme = model.ThemeLight
	}
	return &Store{settings: settings, theme: theme}
}

// OnChange registers a listener for later changes.
func (store *Store) OnChange(listener Listener) {
	store.mu.Lock()
	store.listeners = append(store.listeners, listener)
	store.mu.Unlock()
}

// Settings returns the current settings.
func (store *Store) Settings() model.Settings {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.settings
}

// Theme returns the current theme.
func (store *Store) Theme() model.Theme {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.theme
}

// Replace swaps in externally loaded values. Listeners are notified but nothing is persisted.
func (store *Store) Replace(settings model.Settings, theme model.Theme) {
	store.mu.Lock()
	store.settings = settings
	if theme.Valid() {
		store.theme = theme
	}
	store.mu.Unlock()
	store.notify()
}

// Update applies mutate and returns the effects the change requires.
func (store *Store) Update(mutate func(*model.Settings)) []effect.Effect {
	store.mu.Lock()
	previous := store.settings
	mutate(&store.settings)
	current := store.settings
	store.mu.Unlock()

	store.notify()

	effects := []effect.Effect{effect.PersistState()}
	if current.SoundEffects && !previous.SoundEffects {
		effects = append(effects, effect.PlayTone(previewFrequency, previewDuration, current.VolumeScale(previewVolume)))
	}
	return effects
}

// SetSoundEffects toggles completion chimes and preview tones.
func (store *Store) SetSoundEffects(enabled bool) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.SoundEffects = enabled })
}

// SetSoundAmbient toggles background noise while a session runs.
func (store *Store) SetSoundAmbient(enabled bool) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.SoundAmbient = enabled })
}

// SetSoundTick toggles the per-second tick.
func (store *Store) SetSoundTick(enabled bool) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.SoundTick = enabled })
}

// SetVolume expects 0-100.
func (store *Store) SetVolume(volume int) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.Volume = volume })
}

// SetAutoBreak toggles starting the next pomodoro phase automatically.
func (store *Store) SetAutoBreak(enabled bool) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.AutoBreak = enabled })
}

// SetLongBreakEnabled toggles long breaks.
func (store *Store) SetLongBreakEnabled(enabled bool) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.LongBreakEnabled = enabled })
}

// SetBreakMinutes sets the short break length.
func (store *Store) SetBreakMinutes(minutes int) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.BreakMinutes = minutes })
}

// SetLongBreakMinutes sets the long break length.
func (store *Store) SetLongBreakMinutes(minutes int) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.LongBreakMinutes = minutes })
}

// SetSessionsTillLong expects a positive count.
func (store *Store) SetSessionsTillLong(sessions int) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.SessionsTillLong = sessions })
}

// SetDesktopNotify toggles desktop notifications on completion.
func (store *Store) SetDesktopNotify(enabled bool) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.DesktopNotify = enabled })
}

// SetTitleProgress toggles the remaining time in the window title.
func (store *Store) SetTitleProgress(enabled bool) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.TitleProgress = enabled })
}

// SetClock24h switches the wall clock between 24 and 12 hour format.
func (store *Store) SetClock24h(enabled bool) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.Clock24h = enabled })
}

// SetShowHundredths toggles hundredths on the stopwatch display.
func (store *Store) SetShowHundredths(enabled bool) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.ShowHundredths = enabled })
}

// SetDimInactive toggles dimming the timer after inactivity.
func (store *Store) SetDimInactive(enabled bool) []effect.Effect {
	return store.Update(func(settings *model.Settings) { settings.DimInactive = enabled })
}

// SetTheme selects a named theme.
func (store *Store) SetTheme(theme model.Theme) ([]effect.Effect, error) {
	if !theme.Valid() {
		return nil, fmt.Errorf("unknown theme %q", theme)
	}
	store.mu.Lock()
	store.theme = theme
	store.mu.Unlock()
	store.notify()
	return []effect.Effect{effect.PersistState()}, nil
}

// CycleTheme advances to the next theme in cycle order.
func (store *Store) CycleTheme() (model.Theme, []effect.Effect) {
	store.mu.Lock()
	store.theme = store.theme.Next()
	theme := store.theme
	store.mu.Unlock()
	store.notify()
	return theme, []effect.Effect{effect.PersistState()}
}

// Keys lists every key accepted by Get and Set.
func (store *Store) Keys() []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get renders one setting as text.
func (store *Store) Get(key string) (string, error) {
	field, ok := fields[normalizeKey(key)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	settings := store.Settings()
	if field.flag != nil {
		return strconv.FormatBool(*field.flag(&settings)), nil
	}
	return strconv.Itoa(*field.number(&settings)), nil
}

// Set parses value and applies it to key.
func (store *Store) Set(key, value string) ([]effect.Effect, error) {
	field, ok := fields[normalizeKey(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	value = strings.TrimSpace(value)

	if field.flag != nil {
		enabled, err := parseFlag(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return store.Update(func(settings *model.Settings) { *field.flag(settings) = enabled }), nil
	}

	number, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%s: expected a whole number: %w", key, err)
	}
	if number < field.min || number > field.max {
		return nil, fmt.Errorf("%s: %d is outside %d-%d", key, number, field.min, field.max)
	}
	return store.Update(func(settings *model.Settings) { *field.number(settings) = number }), nil
}

func (store *Store) notify() {
	store.mu.Lock()
	settings := store.settings
	theme := store.theme
	listeners := append([]Listener(nil), store.listeners...)
	store.mu.Unlock()

	for _, listener := range listeners {
		listener(settings, theme)
	}
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

func parseFlag(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(value)
}

// Package tui is the keyboard-driven terminal surface.
package tui

import (
	"context"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"timekeeper/internal/app"
	"timekeeper/internal/core/model"
	"timekeeper/internal/core/settings"
	"timekeeper/internal/core/timekeeper"
	"timekeeper/internal/notify"
	"timekeeper/internal/platform"
)

// focusPresets are the focus lengths F cycles through, in minutes.
var focusPresets = []int{15, 25, 45, 60}

type overlay int

const (
	overlayNone overlay = iota
	overlayNav
	overlayOptions
)

// Options wires the terminal surface to a running app.
type Options struct {
	App       *app.App
	Feed      *notify.Feed
	Idle      platform.IdleProvider
	DimAfter  time.Duration
	ExportDir string
	Now       func() time.Time
	Logger    *zap.Logger
}

// Model is the bubbletea model of the terminal surface.
type Model struct {
	app       *app.App
	feed      *notify.Feed
	events    <-chan timekeeper.Event
	idle      platform.IdleProvider
	dimAfter  time.Duration
	exportDir string
	now       func() time.Time
	logger    *zap.Logger

	snapshot timekeeper.Snapshot
	settings model.Settings
	theme    model.Theme
	stats    model.Stats
	today    int
	st       styles
	title    string

	overlay overlay
	fields  []settings.Field
	cursor  int

	toast    string
	toastSeq int

	lastInput time.Time
	dimmed    bool
	wall      time.Time
	width     int
	height    int
}

type eventMsg timekeeper.Event
type eventsClosedMsg struct{}
type feedMsg notify.Message
type clockMsg time.Time
type toastExpiredMsg struct{ seq int }

func waitForEvent(events <-chan timekeeper.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(event)
	}
}

func waitForFeed(feed *notify.Feed) tea.Cmd {
	if feed == nil {
		return nil
	}
	return func() tea.Msg {
		return feedMsg(<-feed.C())
	}
}

func tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

// New creates the model and subscribes it to keeper events.
func New(options Options) Model {
	now := options.Now
	if now == nil {
		now = time.Now
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	exportDir := options.ExportDir
	if exportDir == "" {
		exportDir = "."
	}
	m := Model{
		app:       options.App,
		feed:      options.Feed,
		events:    options.App.Keeper.Subscribe(64),
		idle:      options.Idle,
		dimAfter:  options.DimAfter,
		exportDir: exportDir,
		now:       now,
		logger:    logger.Named("tui"),
		fields:    settings.Fields(),
		lastInput: now(),
		wall:      now(),
	}
	m.snapshot = options.App.Keeper.Snapshot()
	m.refresh()
	return m
}

// Run shows the terminal surface until the user quits or ctx is cancelled.
func Run(ctx context.Context, options Options) error {
	program := tea.NewProgram(New(options), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Init starts listening for keeper events, notifications and the wall clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), waitForFeed(m.feed), tickClock(), tea.SetWindowTitle(m.snapshot.Title()))
}

// Update handles keys, keeper events and timers.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case eventMsg:
		m.snapshot = msg.Snapshot
		if msg.Type == timekeeper.EventStateChange {
			m.refresh()
		}
		if m.snapshot.Running {
			m.dimmed = false
		}
		title := m.syncTitle()
		return m, tea.Batch(waitForEvent(m.events), title)

	case eventsClosedMsg:
		return m, tea.Quit

	case feedMsg:
		text := msg.Text
		if msg.Kind == notify.KindNotification {
			text = msg.Title + ": " + msg.Body
		}
		return m, tea.Batch(m.showToast(text), waitForFeed(m.feed))

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case clockMsg:
		m.wall = time.Time(msg)
		m.refresh()
		m.updateDim()
		return m, tickClock()

	case tea.KeyMsg:
		m.lastInput = m.now()
		m.dimmed = false
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.overlay == overlayOptions {
		m.handleOptionsKey(key)
		cmd := m.syncTitle()
		return m, cmd
	}

	keeper := m.app.Keeper
	switch key {
	case "q":
		return m, tea.Quit
	case "esc":
		m.overlay = overlayNone
	case " ", "space":
		keeper.Toggle()
	case "r":
		keeper.Reset()
	case "s":
		keeper.Skip()
	case "l":
		keeper.Lap()
	case "1", "2", "3", "4":
		keeper.SwitchMode(model.Modes[key[0]-'1'])
		m.overlay = overlayNone
	case "m":
		if m.overlay == overlayNav {
			m.overlay = overlayNone
		} else {
			m.overlay = overlayNav
		}
	case "o":
		m.overlay = overlayOptions
		m.cursor = 0
	case "t":
		theme, effects := m.app.Settings.CycleTheme()
		m.app.Apply(effects)
		m.app.Notifier.Toast("Theme: " + string(theme))
	case "f":
		keeper.SetFocusMinutes(nextPreset(int(m.snapshot.Pomodoro.FocusDuration / time.Minute)))
	case "[":
		m.adjustCountdown(-time.Minute)
	case "]":
		m.adjustCountdown(time.Minute)
	case "e":
		m.export()
	}

	m.snapshot = keeper.Snapshot()
	m.refresh()
	cmd := m.syncTitle()
	return m, cmd
}

func (m *Model) handleOptionsKey(key string) {
	switch key {
	case "esc", "o", "q":
		m.overlay = overlayNone
		return
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return
	case "down", "j":
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
		return
	}

	field := m.fields[m.cursor]
	current, err := m.app.Settings.Get(field.Key)
	if err != nil {
		return
	}

	var value string
	if field.Flag {
		switch key {
		case "enter", " ", "space", "left", "right", "h", "l":
			value = strconv.FormatBool(current != "true")
		default:
			return
		}
	} else {
		number, _ := strconv.Atoi(current)
		step := 1
		if field.Key == "volume" {
			step = 5
		}
		switch key {
		case "left", "h":
			number -= step
		case "right", "l":
			number += step
		default:
			return
		}
		value = strconv.Itoa(clamp(number, field.Min, field.Max))
	}

	effects, err := m.app.Settings.Set(field.Key, value)
	if err != nil {
		m.logger.Debug("option rejected", zap.String("key", field.Key), zap.Error(err))
		return
	}
	m.app.Apply(effects)
	m.snapshot = m.app.Keeper.Snapshot()
	m.refresh()
}

func (m *Model) adjustCountdown(delta time.Duration) {
	duration := m.snapshot.Countdown.Duration + delta
	if duration < 0 {
		duration = 0
	}
	m.app.Keeper.SetCountdown(duration)
}

func (m *Model) export() {
	path, err := m.app.ExportTo(m.exportDir)
	if err != nil {
		m.logger.Error("export failed", zap.Error(err))
		m.app.Notifier.Toast("Export failed")
		return
	}
	m.app.Notifier.Toast("Exported " + filepath.Base(path))
}

func (m *Model) showToast(text string) tea.Cmd {
	m.toastSeq++
	m.toast = text
	seq := m.toastSeq
	return tea.Tick(notify.ToastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func (m *Model) refresh() {
	m.settings = m.app.Settings.Settings()
	theme := m.app.Settings.Theme()
	if theme != m.theme {
		m.theme = theme
		m.st = newStyles(theme)
	}
	m.stats = m.app.Stats.Snapshot()
	m.today = m.app.Stats.TodayCount()
}

// syncTitle updates the terminal title when it changed.
func (m *Model) syncTitle() tea.Cmd {
	title := m.snapshot.Title()
	if title == m.title {
		return nil
	}
	m.title = title
	return tea.SetWindowTitle(title)
}

// updateDim dims an idle, stopped surface. System idle time, when known, also counts as activity.
func (m *Model) updateDim() {
	if !m.settings.DimInactive || m.snapshot.Running || m.dimAfter <= 0 {
		m.dimmed = false
		return
	}
	inactive := m.now().Sub(m.lastInput)
	if inactive >= m.dimAfter && m.idle != nil {
		if idle, err := m.idle.IdleDuration(); err == nil && idle < inactive {
			inactive = idle
		}
	}
	m.dimmed = inactive >= m.dimAfter
}

func nextPreset(current int) int {
	for _, preset := range focusPresets {
		if preset > current {
			return preset
		}
	}
	return focusPresets[0]
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

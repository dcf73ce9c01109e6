package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"timekeeper/internal/core/model"
	"timekeeper/internal/core/timekeeper"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowTimer   func()
	OnPreferences func()
	OnToggle      func()
	OnReset       func()
	OnSkip        func()
	OnLap         func()
	OnSwitchMode  func(model.Mode)
	OnCycleTheme  func()
	OnExport      func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	toggleItem *fyne.MenuItem
	skipItem   *fyne.MenuItem
	lapItem    *fyne.MenuItem
	modeItems  map[model.Mode]*fyne.MenuItem
	modeMenu   *fyne.MenuItem
	statsItem  *fyne.MenuItem
	running    bool
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		modeItems: make(map[model.Mode]*fyne.MenuItem),
	}

	manager.statusItem = fyne.NewMenuItem("Status: starting...", nil)
	manager.statusItem.Disabled = true
	manager.statsItem = fyne.NewMenuItem("Today: 0 sessions", nil)
	manager.statsItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", func() { call(manager.callbacks.OnToggle) })
	manager.skipItem = fyne.NewMenuItem("Skip", func() { call(manager.callbacks.OnSkip) })
	manager.lapItem = fyne.NewMenuItem("Lap", func() { call(manager.callbacks.OnLap) })
	manager.lapItem.Disabled = true

	children := make([]*fyne.MenuItem, 0, len(model.Modes))
	for _, mode := range model.Modes {
		mode := mode
		item := fyne.NewMenuItem(mode.Label(), func() {
			if manager.callbacks.OnSwitchMode != nil {
				manager.callbacks.OnSwitchMode(mode)
			}
		})
		manager.modeItems[mode] = item
		children = append(children, item)
	}
	manager.modeMenu = fyne.NewMenuItem("Mode", nil)
	manager.modeMenu.ChildMenu = fyne.NewMenu("", children...)

	manager.refreshMenu()
	return manager
}

// SetSnapshot updates the status line and the items that depend on the session.
func (manager *Manager) SetSnapshot(snapshot timekeeper.Snapshot) {
	manager.running = snapshot.Running
	status := fmt.Sprintf("%s · %s", snapshot.Mode.Label(), snapshot.Display())
	if !snapshot.Running {
		status += " (paused)"
	}
	manager.statusItem.Label = "Status: " + status

	if snapshot.Running {
		manager.toggleItem.Label = "Pause"
	} else {
		manager.toggleItem.Label = "Start"
	}
	manager.skipItem.Disabled = snapshot.Mode != model.ModePomodoro && snapshot.Mode != model.ModeBreathing
	manager.lapItem.Disabled = snapshot.Mode != model.ModeStopwatch || !snapshot.Running
	for mode, item := range manager.modeItems {
		item.Checked = mode == snapshot.Mode
	}
	manager.refreshMenu()
}

// SetStats updates the statistics line.
func (manager *Manager) SetStats(today int, stats model.Stats) {
	manager.statsItem.Label = fmt.Sprintf("Today: %d sessions · Streak: %d days", today, stats.StreakDays)
	manager.refreshMenu()
}

// Running reports whether the last snapshot was running.
func (manager *Manager) Running() bool {
	return manager.running
}

// Menu returns the current tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	return fyne.NewMenu("TimeKeeper",
		manager.statusItem,
		manager.statsItem,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		fyne.NewMenuItem("Reset", func() { call(manager.callbacks.OnReset) }),
		manager.skipItem,
		manager.lapItem,
		manager.modeMenu,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show timer", func() { call(manager.callbacks.OnShowTimer) }),
		fyne.NewMenuItem("Options", func() { call(manager.callbacks.OnPreferences) }),
		fyne.NewMenuItem("Cycle theme", func() { call(manager.callbacks.OnCycleTheme) }),
		fyne.NewMenuItem("Export data", func() { call(manager.callbacks.OnExport) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { call(manager.callbacks.OnQuit) }),
	)
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.Menu())
	}
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}

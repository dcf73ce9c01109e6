package overlay

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timekeeper/internal/core/model"
	"timekeeper/internal/core/timekeeper"
)

func newTestWindow(t *testing.T, controls Controls) *Window {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)
	return New(app, Config{DimOpacity: 90}, controls)
}

func TestUpdateRendersSnapshot(t *testing.T) {
	overlay := newTestWindow(t, Controls{})
	machine := timekeeper.NewMachine(model.DefaultSettings())

	overlay.Update(machine.Snapshot())
	assert.Equal(t, "25:00", overlay.timerLabel.Text)
	assert.Equal(t, "Focus · Session 1", overlay.phaseLabel.Text)
	assert.Equal(t, "Start", overlay.toggleButton.Text)
	assert.False(t, overlay.skipButton.Disabled())
	assert.True(t, overlay.lapButton.Disabled())
	assert.Equal(t, "Pomodoro", overlay.modes.Selected)

	machine.SwitchMode(model.ModeStopwatch)
	machine.Start()
	overlay.Update(machine.Snapshot())
	assert.Equal(t, "Pause", overlay.toggleButton.Text)
	assert.True(t, overlay.skipButton.Disabled())
	assert.False(t, overlay.lapButton.Disabled())
	assert.False(t, overlay.progress.Visible())
}

func TestModeSelectionCallsControl(t *testing.T) {
	var switched []model.Mode
	overlay := newTestWindow(t, Controls{OnSwitchMode: func(mode model.Mode) { switched = append(switched, mode) }})

	overlay.Update(timekeeper.NewMachine(model.DefaultSettings()).Snapshot())
	assert.Empty(t, switched, "rendering a snapshot does not switch modes")

	overlay.modes.SetSelected("Breathe")
	assert.Equal(t, []model.Mode{model.ModeBreathing}, switched)
}

func TestButtonsCallControls(t *testing.T) {
	var calls []string
	overlay := newTestWindow(t, Controls{
		OnToggle: func() { calls = append(calls, "toggle") },
		OnReset:  func() { calls = append(calls, "reset") },
		OnSkip:   func() { calls = append(calls, "skip") },
	})

	test.Tap(overlay.toggleButton)
	test.Tap(overlay.resetButton)
	test.Tap(overlay.skipButton)
	assert.Equal(t, []string{"toggle", "reset", "skip"}, calls)
}

func TestBreathingShowsCircle(t *testing.T) {
	overlay := newTestWindow(t, Controls{})
	machine := timekeeper.NewMachine(model.DefaultSettings())
	machine.SwitchMode(model.ModeBreathing)

	overlay.Update(machine.Snapshot())
	assert.True(t, overlay.breathBox.Visible())
	assert.InDelta(t, 0.4, overlay.breathLayout.scale, 0.001)

	machine.SwitchMode(model.ModePomodoro)
	overlay.Update(machine.Snapshot())
	assert.False(t, overlay.breathBox.Visible())
}

func TestToastSequence(t *testing.T) {
	overlay := newTestWindow(t, Controls{})

	first := overlay.showToast("Timer reset")
	second := overlay.showToast("Theme: dark")
	overlay.clearToast(first)
	assert.Equal(t, "Theme: dark", overlay.toastLabel.Text)

	overlay.clearToast(second)
	assert.Empty(t, overlay.toastLabel.Text)
}

func TestSetDimmed(t *testing.T) {
	overlay := newTestWindow(t, Controls{})
	overlay.SetDimmed(true)
	require.True(t, overlay.dimmed)
	overlay.SetDimmed(false)
	assert.False(t, overlay.dimmed)
}

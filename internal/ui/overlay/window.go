package overlay

import (
	"context"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"timekeeper/internal/core/model"
	"timekeeper/internal/core/timekeeper"
	"timekeeper/internal/notify"
	"timekeeper/internal/ui/animation"
)

// Config defines window visuals.
type Config struct {
	// DimOpacity is the alpha applied while the window is dimmed.
	DimOpacity uint8
	Fullscreen bool
}

// Controls are the session actions behind the buttons.
type Controls struct {
	OnToggle     func()
	OnReset      func()
	OnSkip       func()
	OnLap        func()
	OnSwitchMode func(model.Mode)
}

// Window is the floating timer window of the desktop surface.
type Window struct {
	app      fyne.App
	window   fyne.Window
	config   Config
	controls Controls

	modes        *widget.RadioGroup
	timerLabel   *canvas.Text
	phaseLabel   *canvas.Text
	toastLabel   *canvas.Text
	progress     *widget.ProgressBar
	breath       *canvas.Circle
	breathLayout *circleLayout
	breathBox    *fyne.Container
	toggleButton *widget.Button
	resetButton  *widget.Button
	skipButton   *widget.Button
	lapButton    *widget.Button

	engine   *animation.Engine
	syncing  bool
	toastSeq int
	dimmed   bool
}

var (
	textColor   = color.NRGBA{R: 31, G: 41, B: 51, A: 255}
	accentColor = color.NRGBA{R: 59, G: 130, B: 246, A: 255}
)

// New creates the timer window. It starts hidden.
func New(app fyne.App, config Config, controls Controls) *Window {
	window := app.NewWindow("TimeKeeper")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	timerLabel := canvas.NewText("25:00", textColor)
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 56

	phaseLabel := canvas.NewText("", textColor)
	phaseLabel.Alignment = fyne.TextAlignCenter
	phaseLabel.TextSize = 16

	toastLabel := canvas.NewText("", accentColor)
	toastLabel.Alignment = fyne.TextAlignCenter
	toastLabel.TextSize = 14

	breath := canvas.NewCircle(color.NRGBA{R: 59, G: 130, B: 246, A: 90})
	breath.StrokeColor = accentColor
	breath.StrokeWidth = 2
	layout := &circleLayout{scale: 0.4}
	breathBox := container.New(layout, breath)
	breathBox.Hide()

	overlay := &Window{
		app:          app,
		window:       window,
		config:       config,
		controls:     controls,
		timerLabel:   timerLabel,
		phaseLabel:   phaseLabel,
		toastLabel:   toastLabel,
		progress:     widget.NewProgressBar(),
		breath:       breath,
		breathLayout: layout,
		breathBox:    breathBox,
	}
	overlay.progress.TextFormatter = func() string { return "" }

	labels := make([]string, 0, len(model.Modes))
	for _, mode := range model.Modes {
		labels = append(labels, mode.Label())
	}
	overlay.modes = widget.NewRadioGroup(labels, overlay.handleModeChange)
	overlay.modes.Horizontal = true
	overlay.modes.Required = true

	overlay.toggleButton = widget.NewButton("Start", func() { call(overlay.controls.OnToggle) })
	overlay.toggleButton.Importance = widget.HighImportance
	overlay.resetButton = widget.NewButton("Reset", func() { call(overlay.controls.OnReset) })
	overlay.skipButton = widget.NewButton("Skip", func() { call(overlay.controls.OnSkip) })
	overlay.lapButton = widget.NewButton("Lap", func() { call(overlay.controls.OnLap) })

	overlay.engine = animation.New(animation.DefaultConfig(), func(scale float32) {
		fyne.Do(func() { overlay.setBreathScale(scale) })
	})

	buttons := container.NewGridWithColumns(4, overlay.toggleButton, overlay.resetButton, overlay.skipButton, overlay.lapButton)
	content := container.NewBorder(
		container.NewCenter(overlay.modes),
		container.NewVBox(overlay.progress, buttons, toastLabel),
		nil, nil,
		container.NewStack(breathBox, container.NewVBox(timerLabel, phaseLabel)),
	)
	window.SetContent(container.NewPadded(content))
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(460, 360))

	return overlay
}

// Show displays the window.
func (overlay *Window) Show() {
	overlay.window.SetFullScreen(overlay.config.Fullscreen)
	overlay.window.Show()
	overlay.window.RequestFocus()
}

// Hide hides the window and stops animations.
func (overlay *Window) Hide() {
	overlay.engine.Stop()
	overlay.window.Hide()
}

// Post schedules Update on the fyne goroutine.
func (overlay *Window) Post(snapshot timekeeper.Snapshot) {
	fyne.Do(func() { overlay.Update(snapshot) })
}

// Update renders a snapshot. It must run on the fyne goroutine.
func (overlay *Window) Update(snapshot timekeeper.Snapshot) {
	overlay.syncing = true
	overlay.modes.SetSelected(snapshot.Mode.Label())
	overlay.syncing = false

	overlay.window.SetTitle(snapshot.Title())
	overlay.timerLabel.Text = snapshot.Display()
	overlay.timerLabel.Refresh()
	overlay.phaseLabel.Text = snapshot.Label()
	overlay.phaseLabel.Refresh()

	if snapshot.Mode == model.ModeStopwatch {
		overlay.progress.Hide()
	} else {
		overlay.progress.Show()
		overlay.progress.SetValue(snapshot.Progress())
	}

	if snapshot.Running {
		overlay.toggleButton.SetText("Pause")
	} else {
		overlay.toggleButton.SetText("Start")
	}
	setEnabled(overlay.skipButton, snapshot.Mode == model.ModePomodoro || snapshot.Mode == model.ModeBreathing)
	setEnabled(overlay.lapButton, snapshot.Mode == model.ModeStopwatch && snapshot.Running)

	overlay.updateBreath(snapshot)
}

// SetDimmed fades the window while the user is away.
func (overlay *Window) SetDimmed(dimmed bool) {
	if dimmed == overlay.dimmed {
		return
	}
	overlay.dimmed = dimmed
	alpha := uint8(255)
	if dimmed {
		alpha = overlay.config.DimOpacity
	}
	overlay.applyNativeOpacity(alpha)
}

// Toast shows a transient message under the controls.
func (overlay *Window) Toast(text string) {
	fyne.Do(func() {
		seq := overlay.showToast(text)
		time.AfterFunc(notify.ToastDuration, func() {
			fyne.Do(func() { overlay.clearToast(seq) })
		})
	})
}

// Notify is handled by the desktop notifier.
func (overlay *Window) Notify(string, string) {}

func (overlay *Window) showToast(text string) int {
	overlay.toastSeq++
	overlay.toastLabel.Text = text
	overlay.toastLabel.Refresh()
	return overlay.toastSeq
}

func (overlay *Window) clearToast(seq int) {
	if seq != overlay.toastSeq {
		return
	}
	overlay.toastLabel.Text = ""
	overlay.toastLabel.Refresh()
}

func (overlay *Window) handleModeChange(label string) {
	if overlay.syncing || overlay.controls.OnSwitchMode == nil {
		return
	}
	for _, mode := range model.Modes {
		if mode.Label() == label {
			overlay.controls.OnSwitchMode(mode)
			return
		}
	}
}

func (overlay *Window) updateBreath(snapshot timekeeper.Snapshot) {
	if snapshot.Mode != model.ModeBreathing {
		overlay.engine.Stop()
		overlay.breathBox.Hide()
		return
	}
	overlay.breathBox.Show()
	breathing := snapshot.Breathing
	if snapshot.Running {
		overlay.engine.Follow(context.Background(), breathing.Phase, breathing.PhaseRemaining)
		return
	}
	overlay.engine.Hold(breathing.Phase, breathing.PhaseRemaining)
}

func (overlay *Window) setBreathScale(scale float32) {
	overlay.breathLayout.scale = scale
	overlay.breathBox.Refresh()
}

func (overlay *Window) fadeText(alpha uint8) {
	for _, text := range []*canvas.Text{overlay.timerLabel, overlay.phaseLabel} {
		faded := textColor
		faded.A = alpha
		text.Color = faded
		text.Refresh()
	}
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
		return
	}
	button.Disable()
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}

// circleLayout centers a square child scaled to a fraction of the available space.
type circleLayout struct {
	scale float32
}

func (layout *circleLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	side := size.Width
	if size.Height < side {
		side = size.Height
	}
	side *= layout.scale
	for _, object := range objects {
		object.Resize(fyne.NewSize(side, side))
		object.Move(fyne.NewPos((size.Width-side)/2, (size.Height-side)/2))
	}
}

func (layout *circleLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(120, 120)
}

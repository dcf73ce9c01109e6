package timekeeper

import (
	"time"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
)

const (
	pomodoroTick  = time.Second
	countdownTick = time.Second
	breathingTick = time.Second
	stopwatchTick = 10 * time.Millisecond

	// AutoStartDelay is the pause between a finished focus phase and an auto-started break.
	AutoStartDelay = 2 * time.Second

	minFocusMinutes = 1
	maxFocusMinutes = 120
)

// Machine is the timer/session state machine. It owns one record per mode and
// never performs side effects: every operation returns the effects it requests.
// Machine is not safe for concurrent use; Keeper serializes access to it.
type Machine struct {
	settings  model.Settings
	mode      model.Mode
	pomodoro  model.PomodoroSession
	stopwatch model.StopwatchSession
	countdown model.CountdownSession
	breathing model.BreathingSession

	// focusElapsed counts time actually spent in the current focus phase.
	focusElapsed time.Duration
}

// NewMachine creates a machine in pomodoro mode with every session at its nominal state.
func NewMachine(settings model.Settings) *Machine {
	machine := &Machine{
		settings: settings,
		mode:     model.ModePomodoro,
		pomodoro: model.PomodoroSession{
			FocusDuration: model.DefaultFocusDuration,
			Duration:      model.DefaultFocusDuration,
			Remaining:     model.DefaultFocusDuration,
			Phase:         model.PhaseFocus,
			SessionIndex:  1,
		},
		countdown: model.CountdownSession{
			Duration:  model.DefaultCountdownDuration,
			Remaining: model.DefaultCountdownDuration,
		},
	}
	machine.resetBreathing()
	return machine
}

// Mode returns the active mode.
func (machine *Machine) Mode() model.Mode {
	return machine.mode
}

// Running reports whether the active session is ticking.
func (machine *Machine) Running() bool {
	switch machine.mode {
	case model.ModePomodoro:
		return machine.pomodoro.Running
	case model.ModeStopwatch:
		return machine.stopwatch.Running
	case model.ModeCountdown:
		return machine.countdown.Running
	case model.ModeBreathing:
		return machine.breathing.Running
	}
	return false
}

// TickInterval returns the tick granularity of the active mode.
func (machine *Machine) TickInterval() time.Duration {
	switch machine.mode {
	case model.ModeStopwatch:
		return stopwatchTick
	case model.ModeCountdown:
		return countdownTick
	case model.ModeBreathing:
		return breathingTick
	}
	return pomodoroTick
}

// Settings returns the settings the machine currently applies.
func (machine *Machine) Settings() model.Settings {
	return machine.settings
}

// Start begins ticking the active session. It is a no-op when already running.
func (machine *Machine) Start() []effect.Effect {
	if machine.Running() {
		return nil
	}
	switch machine.mode {
	case model.ModePomodoro:
		return machine.startPomodoro()
	case model.ModeStopwatch:
		return machine.startStopwatch()
	case model.ModeCountdown:
		return machine.startCountdown()
	case model.ModeBreathing:
		return machine.startBreathing()
	}
	return nil
}

// Pause stops ticking and keeps progress so the session can resume.
func (machine *Machine) Pause() []effect.Effect {
	if !machine.Running() {
		return nil
	}
	machine.setRunning(false)
	return stopAudio()
}

// Toggle starts a paused session or pauses a running one.
func (machine *Machine) Toggle() []effect.Effect {
	if machine.Running() {
		return machine.Pause()
	}
	return machine.Start()
}

// Reset pauses the active session and restores its nominal state.
func (machine *Machine) Reset() []effect.Effect {
	effects := machine.Pause()
	switch machine.mode {
	case model.ModePomodoro:
		machine.resetPomodoro()
		effects = append(effects, effect.ShowToast("Timer reset"))
	case model.ModeStopwatch:
		machine.stopwatch = model.StopwatchSession{}
		effects = append(effects, effect.ShowToast("Stopwatch reset"))
	case model.ModeCountdown:
		machine.countdown.Remaining = machine.countdown.Duration
		effects = append(effects, effect.ShowToast("Timer reset"))
	case model.ModeBreathing:
		machine.resetBreathing()
		effects = append(effects, effect.ShowToast("Breathe session reset"))
	}
	return effects
}

// Skip completes the current pomodoro or breathing phase immediately, without the completion chime.
func (machine *Machine) Skip() []effect.Effect {
	switch machine.mode {
	case model.ModePomodoro:
		toast := "Break skipped"
		if machine.pomodoro.Phase == model.PhaseFocus {
			toast = "Focus session skipped"
		}
		effects := []effect.Effect{effect.ShowToast(toast)}
		return append(effects, machine.completePomodoro(true)...)
	case model.ModeBreathing:
		return machine.advanceBreathing(true)
	}
	return nil
}

// SwitchMode stops the active session and activates another one without resetting it.
func (machine *Machine) SwitchMode(mode model.Mode) []effect.Effect {
	if mode == machine.mode {
		return nil
	}
	effects := machine.Pause()
	machine.mode = mode
	return effects
}

// Tick advances the active session by delta.
func (machine *Machine) Tick(delta time.Duration) []effect.Effect {
	if !machine.Running() || delta <= 0 {
		return nil
	}
	switch machine.mode {
	case model.ModePomodoro:
		return machine.tickPomodoro(delta)
	case model.ModeStopwatch:
		machine.stopwatch.Elapsed += delta
		return nil
	case model.ModeCountdown:
		return machine.tickCountdown(delta)
	case model.ModeBreathing:
		return machine.tickBreathing(delta)
	}
	return nil
}

// UpdateSettings applies new settings. Audio that was toggled while running is started or stopped.
func (machine *Machine) UpdateSettings(settings model.Settings) []effect.Effect {
	previous := machine.settings
	machine.settings = settings
	if !machine.Running() {
		return nil
	}

	var effects []effect.Effect
	if settings.SoundTick != previous.SoundTick && machine.mode != model.ModeBreathing {
		if settings.SoundTick {
			effects = append(effects, effect.StartTick(settings.VolumeScale(tickVolume)))
		} else {
			effects = append(effects, effect.StopTick())
		}
	}
	if settings.SoundAmbient != previous.SoundAmbient && machine.usesAmbient() {
		if settings.SoundAmbient {
			effects = append(effects, effect.StartAmbient(settings.VolumeScale(ambientVolume)))
		} else {
			effects = append(effects, effect.StopAmbient())
		}
	}
	return effects
}

func (machine *Machine) setRunning(running bool) {
	switch machine.mode {
	case model.ModePomodoro:
		machine.pomodoro.Running = running
	case model.ModeStopwatch:
		machine.stopwatch.Running = running
	case model.ModeCountdown:
		machine.countdown.Running = running
	case model.ModeBreathing:
		machine.breathing.Running = running
	}
}

func (machine *Machine) usesAmbient() bool {
	return machine.mode == model.ModePomodoro || machine.mode == model.ModeCountdown
}

// startAudio returns the ambient and tick requests for a session that just started.
func (machine *Machine) startAudio(ambient bool) []effect.Effect {
	var effects []effect.Effect
	if ambient && machine.settings.SoundAmbient {
		effects = append(effects, effect.StartAmbient(machine.settings.VolumeScale(ambientVolume)))
	}
	if machine.settings.SoundTick {
		effects = append(effects, effect.StartTick(machine.settings.VolumeScale(tickVolume)))
	}
	return effects
}

func stopAudio() []effect.Effect {
	return []effect.Effect{effect.StopAmbient(), effect.StopTick()}
}

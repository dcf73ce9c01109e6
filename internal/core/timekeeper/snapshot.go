package timekeeper

import (
	"fmt"
	"time"

	"timekeeper/internal/core/clock"
	"timekeeper/internal/core/model"
)

const defaultTitle = "TimeKeeper"

// Snapshot is an immutable copy of every session record.
type Snapshot struct {
	Mode      model.Mode             `json:"mode"`
	Running   bool                   `json:"running"`
	Pomodoro  model.PomodoroSession  `json:"pomodoro"`
	Stopwatch model.StopwatchSession `json:"stopwatch"`
	Countdown model.CountdownSession `json:"countdown"`
	Breathing model.BreathingSession `json:"breathing"`

	TitleProgress  bool `json:"title_progress"`
	ShowHundredths bool `json:"show_hundredths"`
}

// Snapshot copies the machine state.
func (machine *Machine) Snapshot() Snapshot {
	stopwatch := machine.stopwatch
	stopwatch.Laps = append([]time.Duration(nil), machine.stopwatch.Laps...)
	return Snapshot{
		Mode:           machine.mode,
		Running:        machine.Running(),
		Pomodoro:       machine.pomodoro,
		Stopwatch:      stopwatch,
		Countdown:      machine.countdown,
		Breathing:      machine.breathing,
		TitleProgress:  machine.settings.TitleProgress,
		ShowHundredths: machine.settings.ShowHundredths,
	}
}

// Display renders the main digits of the active mode.
func (snapshot Snapshot) Display() string {
	switch snapshot.Mode {
	case model.ModeStopwatch:
		if snapshot.ShowHundredths {
			return clock.FormatMilliseconds(snapshot.Stopwatch.Elapsed).String()
		}
		return clock.FormatSeconds(snapshot.Stopwatch.Elapsed).String()
	case model.ModeCountdown:
		return clock.FormatSeconds(snapshot.Countdown.Remaining).String()
	case model.ModeBreathing:
		return fmt.Sprintf("%d", int(snapshot.Breathing.PhaseRemaining.Seconds()))
	}
	return clock.FormatSeconds(snapshot.Pomodoro.Remaining).String()
}

// Label describes the phase of the active mode.
func (snapshot Snapshot) Label() string {
	switch snapshot.Mode {
	case model.ModeStopwatch:
		return fmt.Sprintf("%d laps", len(snapshot.Stopwatch.Laps))
	case model.ModeCountdown:
		return "Timer"
	case model.ModeBreathing:
		return fmt.Sprintf("%s · %d cycles · %s", snapshot.Breathing.Phase.Label(),
			snapshot.Breathing.CompletedCycles, clock.FormatSeconds(snapshot.Breathing.TotalElapsed))
	}
	return fmt.Sprintf("%s · Session %d", snapshot.Pomodoro.Phase.Label(), snapshot.Pomodoro.SessionIndex)
}

// Title renders the window title. Progress is only shown while running and when enabled.
func (snapshot Snapshot) Title() string {
	if !snapshot.Running || !snapshot.TitleProgress {
		return defaultTitle
	}
	switch snapshot.Mode {
	case model.ModeStopwatch:
		return clock.FormatSeconds(snapshot.Stopwatch.Elapsed).String() + " — Stopwatch"
	case model.ModeCountdown:
		return clock.FormatSeconds(snapshot.Countdown.Remaining).String() + " — Timer"
	case model.ModeBreathing:
		return snapshot.Breathing.Phase.Label() + " — Breathe"
	}
	phase := "Focus"
	if snapshot.Pomodoro.Phase != model.PhaseFocus {
		phase = "Break"
	}
	return clock.FormatSeconds(snapshot.Pomodoro.Remaining).String() + " — " + phase
}

// Progress returns the completed fraction of the active countdown in [0, 1].
func (snapshot Snapshot) Progress() float64 {
	var total, remaining time.Duration
	switch snapshot.Mode {
	case model.ModePomodoro:
		total, remaining = snapshot.Pomodoro.Duration, snapshot.Pomodoro.Remaining
	case model.ModeCountdown:
		total, remaining = snapshot.Countdown.Duration, snapshot.Countdown.Remaining
	case model.ModeBreathing:
		total, remaining = BreathPhaseDuration(snapshot.Breathing.Phase), snapshot.Breathing.PhaseRemaining
	default:
		return 0
	}
	if total <= 0 {
		return 1
	}
	progress := float64(total-remaining) / float64(total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

package model

import "time"

// PomodoroPhase is the sub-state of a pomodoro session.
type PomodoroPhase string

const (
	PhaseFocus     PomodoroPhase = "focus"
	PhaseBreak     PomodoroPhase = "break"
	PhaseLongBreak PomodoroPhase = "long_break"
)

// Label returns the display name of the phase.
func (phase PomodoroPhase) Label() string {
	switch phase {
	case PhaseBreak:
		return "Break"
	case PhaseLongBreak:
		return "Long Break"
	}
	return "Focus"
}

// BreathPhase is the sub-state of a breathing session.
type BreathPhase string

const (
	BreathInhale        BreathPhase = "inhale"
	BreathHold          BreathPhase = "hold"
	BreathExhale        BreathPhase = "exhale"
	BreathCycleBoundary BreathPhase = "cycle_boundary"
)

// Label returns the display name of the breathing phase.
func (phase BreathPhase) Label() string {
	switch phase {
	case BreathHold:
		return "Hold"
	case BreathExhale:
		return "Exhale"
	case BreathCycleBoundary:
		return "Cycle"
	}
	return "Inhale"
}

// DefaultFocusDuration is used when no focus duration was selected.
const DefaultFocusDuration = 25 * time.Minute

// DefaultCountdownDuration is the initial countdown length.
const DefaultCountdownDuration = 10 * time.Minute

// PomodoroSession holds the focus/break cycle.
type PomodoroSession struct {
	FocusDuration       time.Duration `json:"focus_duration"`
	Duration            time.Duration `json:"duration"`
	Remaining           time.Duration `json:"remaining"`
	Phase               PomodoroPhase `json:"phase"`
	CompletedFocusCount int           `json:"completed_focus_count"`
	SessionIndex        int           `json:"session_index"`
	Running             bool          `json:"running"`
}

// StopwatchSession holds a count-up timer and its laps, most recent first.
type StopwatchSession struct {
	Elapsed time.Duration   `json:"elapsed"`
	Laps    []time.Duration `json:"laps"`
	Running bool            `json:"running"`
}

// CountdownSession holds a user-configured countdown.
type CountdownSession struct {
	Duration  time.Duration `json:"duration"`
	Remaining time.Duration `json:"remaining"`
	Running   bool          `json:"running"`
}

// BreathingSession holds the 4-7-8 breathing cycle.
type BreathingSession struct {
	Phase           BreathPhase   `json:"phase"`
	PhaseRemaining  time.Duration `json:"phase_remaining"`
	CompletedCycles int           `json:"completed_cycles"`
	TotalElapsed    time.Duration `json:"total_elapsed"`
	Running         bool          `json:"running"`
}

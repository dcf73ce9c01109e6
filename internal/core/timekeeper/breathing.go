package timekeeper

import (
	"time"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
)

// breathStep is one timed phase of the 4-7-8 technique.
type breathStep struct {
	phase    model.BreathPhase
	duration time.Duration
	next     model.BreathPhase
	cue      float64
}

var breathSteps = map[model.BreathPhase]breathStep{
	model.BreathInhale: {phase: model.BreathInhale, duration: 4 * time.Second, next: model.BreathHold, cue: toneInhale},
	model.BreathHold:   {phase: model.BreathHold, duration: 7 * time.Second, next: model.BreathExhale},
	model.BreathExhale: {phase: model.BreathExhale, duration: 8 * time.Second, next: model.BreathCycleBoundary, cue: toneExhale},
}

// BreathCycleLength is the length of one inhale-hold-exhale cycle.
var BreathCycleLength = breathSteps[model.BreathInhale].duration +
	breathSteps[model.BreathHold].duration +
	breathSteps[model.BreathExhale].duration

// BreathPhaseDuration returns the length of a timed breathing phase.
func BreathPhaseDuration(phase model.BreathPhase) time.Duration {
	return breathSteps[phase].duration
}

func (machine *Machine) startBreathing() []effect.Effect {
	session := &machine.breathing
	session.Running = true
	step := breathSteps[session.Phase]
	// A phase that has not started yet announces itself; a resumed one does not.
	if session.PhaseRemaining == step.duration && step.cue > 0 {
		return machine.tone(step.cue, cueDuration, breathVolume)
	}
	return nil
}

func (machine *Machine) tickBreathing(delta time.Duration) []effect.Effect {
	session := &machine.breathing
	session.TotalElapsed += delta
	session.PhaseRemaining -= delta

	var effects []effect.Effect
	for session.Running && session.PhaseRemaining <= 0 {
		effects = append(effects, machine.advanceBreathing(false)...)
	}
	return effects
}

// advanceBreathing moves to the next breathing phase. Time overshooting the finished
// phase is carried into the next one. A skipped transition plays no cues.
func (machine *Machine) advanceBreathing(skipped bool) []effect.Effect {
	session := &machine.breathing
	overshoot := session.PhaseRemaining
	if skipped || overshoot > 0 {
		overshoot = 0
	}

	var effects []effect.Effect
	next := breathSteps[session.Phase].next
	if next == model.BreathCycleBoundary {
		session.Phase = model.BreathCycleBoundary
		session.CompletedCycles++
		if !skipped {
			effects = append(effects, machine.tone(toneCycle, shortCueDuration, breathVolume)...)
		}
		next = model.BreathInhale
	}

	step := breathSteps[next]
	session.Phase = step.phase
	session.PhaseRemaining = step.duration + overshoot
	if !skipped && step.cue > 0 {
		effects = append(effects, machine.tone(step.cue, cueDuration, breathVolume)...)
	}
	return effects
}

func (machine *Machine) resetBreathing() {
	machine.breathing = model.BreathingSession{
		Phase:          model.BreathInhale,
		PhaseRemaining: breathSteps[model.BreathInhale].duration,
	}
}

package timekeeper

import (
	"fmt"
	"time"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
)

// SetFocusMinutes selects the focus length. It is refused while running or outside 1-120 minutes.
func (machine *Machine) SetFocusMinutes(minutes int) []effect.Effect {
	if machine.pomodoro.Running {
		return nil
	}
	if minutes < minFocusMinutes || minutes > maxFocusMinutes {
		return []effect.Effect{effect.ShowToast(fmt.Sprintf("Focus time must be %d-%d minutes", minFocusMinutes, maxFocusMinutes))}
	}
	duration := time.Duration(minutes) * time.Minute
	machine.pomodoro.FocusDuration = duration
	if machine.pomodoro.Phase == model.PhaseFocus {
		machine.pomodoro.Duration = duration
		machine.pomodoro.Remaining = duration
		machine.focusElapsed = 0
	}
	return []effect.Effect{effect.ShowToast(fmt.Sprintf("Custom time set: %d minutes", minutes))}
}

func (machine *Machine) startPomodoro() []effect.Effect {
	if machine.pomodoro.Remaining <= 0 {
		return nil
	}
	machine.pomodoro.Running = true
	return machine.startAudio(true)
}

func (machine *Machine) tickPomodoro(delta time.Duration) []effect.Effect {
	if delta > machine.pomodoro.Remaining {
		delta = machine.pomodoro.Remaining
	}
	machine.pomodoro.Remaining -= delta
	if machine.pomodoro.Phase == model.PhaseFocus {
		machine.focusElapsed += delta
	}
	if machine.pomodoro.Remaining > 0 {
		return nil
	}
	return machine.completePomodoro(false)
}

func (machine *Machine) completePomodoro(skipped bool) []effect.Effect {
	effects := machine.Pause()
	if !skipped {
		effects = append(effects, machine.chime()...)
	}

	session := &machine.pomodoro
	if session.Phase == model.PhaseFocus {
		session.CompletedFocusCount++
		effects = append(effects, effect.RecordCompletion(effect.Completion{
			Type:           model.CompletionPomodoro,
			Duration:       session.Duration,
			FocusedSeconds: int64(machine.focusElapsed / time.Second),
		}))
		if !skipped {
			effects = append(effects, effect.ShowToast("Focus complete! Well done."))
			effects = append(effects, machine.notify("Pomodoro Complete", "Time for a break!")...)
		}

		next, duration := model.PhaseBreak, machine.settings.BreakDuration()
		// The counter is never rebased, so changing SessionsTillLong mid-run shifts the next long break.
		if machine.settings.LongBreakEnabled && machine.settings.SessionsTillLong > 0 &&
			session.CompletedFocusCount%machine.settings.SessionsTillLong == 0 {
			next, duration = model.PhaseLongBreak, machine.settings.LongBreakDuration()
		}
		session.Phase = next
		session.Duration = duration
		session.Remaining = duration
		machine.focusElapsed = 0

		if machine.settings.AutoBreak && !skipped {
			effects = append(effects, effect.ScheduleAutoStart(AutoStartDelay))
		}
		return append(effects, effect.PersistState())
	}

	if !skipped {
		effects = append(effects, effect.ShowToast("Break complete! Ready to focus?"))
		effects = append(effects, machine.notify("Break Complete", "Time to get back to work!")...)
	}
	session.SessionIndex++
	session.Phase = model.PhaseFocus
	if session.FocusDuration <= 0 {
		session.FocusDuration = model.DefaultFocusDuration
	}
	session.Duration = session.FocusDuration
	session.Remaining = session.FocusDuration
	machine.focusElapsed = 0
	return effects
}

func (machine *Machine) resetPomodoro() {
	if machine.pomodoro.FocusDuration <= 0 {
		machine.pomodoro.FocusDuration = model.DefaultFocusDuration
	}
	machine.pomodoro.Phase = model.PhaseFocus
	machine.pomodoro.Duration = machine.pomodoro.FocusDuration
	machine.pomodoro.Remaining = machine.pomodoro.FocusDuration
	machine.pomodoro.SessionIndex = 1
	machine.focusElapsed = 0
}

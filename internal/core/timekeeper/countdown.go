package timekeeper

import (
	"time"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
)

// SetCountdown configures the countdown length. It is ignored while running or when negative.
func (machine *Machine) SetCountdown(duration time.Duration) []effect.Effect {
	if machine.countdown.Running || duration < 0 {
		return nil
	}
	duration = duration.Truncate(time.Second)
	machine.countdown.Duration = duration
	machine.countdown.Remaining = duration
	return nil
}

func (machine *Machine) startCountdown() []effect.Effect {
	if machine.countdown.Remaining <= 0 {
		machine.countdown.Remaining = machine.countdown.Duration
	}
	if machine.countdown.Remaining <= 0 {
		return []effect.Effect{effect.ShowToast("Please set a time")}
	}
	machine.countdown.Running = true
	return machine.startAudio(true)
}

func (machine *Machine) tickCountdown(delta time.Duration) []effect.Effect {
	if delta > machine.countdown.Remaining {
		delta = machine.countdown.Remaining
	}
	machine.countdown.Remaining -= delta
	if machine.countdown.Remaining > 0 {
		return nil
	}

	effects := machine.Pause()
	effects = append(effects, machine.chime()...)
	effects = append(effects, effect.ShowToast("Timer complete!"))
	effects = append(effects, machine.notify("Timer Complete", "Your countdown has finished!")...)
	effects = append(effects, effect.RecordCompletion(effect.Completion{
		Type:     model.CompletionTimer,
		Duration: machine.countdown.Duration,
	}))
	return append(effects, effect.PersistState())
}

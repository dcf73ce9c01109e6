package timekeeper

import (
	"time"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
)

func (machine *Machine) startStopwatch() []effect.Effect {
	machine.stopwatch.Running = true
	return machine.startAudio(false)
}

// Lap records the stopwatch's elapsed time. Laps are only taken while running.
func (machine *Machine) Lap() []effect.Effect {
	if machine.mode != model.ModeStopwatch || !machine.stopwatch.Running {
		return nil
	}
	machine.stopwatch.Laps = append([]time.Duration{machine.stopwatch.Elapsed}, machine.stopwatch.Laps...)
	return machine.tone(toneLap, shortCueDuration, lapVolume)
}

package timekeeper

import (
	"time"

	"timekeeper/internal/core/effect"
)

// Base gains before the volume setting is applied.
const (
	ambientVolume = 0.05
	tickVolume    = 0.1
	chimeVolume   = 1.0 // per-note gains are applied by the player
	lapVolume     = 0.15
	breathVolume  = 0.1
)

const (
	toneLap          = 600.0
	toneInhale       = 392.0  // G4
	toneExhale       = 329.63 // E4
	toneCycle        = 440.0  // A4
	cueDuration      = 200 * time.Millisecond
	shortCueDuration = 100 * time.Millisecond
)

// tone requests a tone when sound effects are enabled. Volume zero still emits the request.
func (machine *Machine) tone(frequency float64, duration time.Duration, base float64) []effect.Effect {
	if !machine.settings.SoundEffects {
		return nil
	}
	return []effect.Effect{effect.PlayTone(frequency, duration, machine.settings.VolumeScale(base))}
}

func (machine *Machine) chime() []effect.Effect {
	if !machine.settings.SoundEffects {
		return nil
	}
	return []effect.Effect{effect.CompletionChime(machine.settings.VolumeScale(chimeVolume))}
}

func (machine *Machine) notify(title, body string) []effect.Effect {
	if !machine.settings.DesktopNotify {
		return nil
	}
	return []effect.Effect{effect.ShowNotification(title, body)}
}

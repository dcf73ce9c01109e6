// Package audio schedules the timekeeper's tones. Rendering is left to an Output:
// the terminal bell or a log.
package audio

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Note is one sine tone.
type Note struct {
	Frequency float64
	Duration  time.Duration
	Gain      float64
}

// Output renders notes.
type Output interface {
	Play(note Note)
	Drone(note Note, on bool)
}

const (
	tickFrequency    = 800.0
	tickDuration     = 50 * time.Millisecond
	tickEvery        = time.Second
	ambientFrequency = 174.0
	chimeSpacing     = 200 * time.Millisecond
)

// chimeNotes is the C5-E5-G5 completion arpeggio. Gains are relative to the chime volume.
var chimeNotes = []Note{
	{Frequency: 523.25, Duration: 200 * time.Millisecond, Gain: 0.2},
	{Frequency: 659.25, Duration: 200 * time.Millisecond, Gain: 0.2},
	{Frequency: 783.99, Duration: 400 * time.Millisecond, Gain: 0.25},
}

// Player sequences chimes, the tick pulse and the ambient drone onto its outputs.
type Player struct {
	mu      sync.Mutex
	outputs []Output
	logger  *zap.Logger

	tickStop chan struct{}
	ambient  *Note
	pending  []*time.Timer
	closed   bool
}

// NewPlayer creates a player writing to every output.
func NewPlayer(logger *zap.Logger, outputs ...Output) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{outputs: outputs, logger: logger}
}

// PlayTone plays a single tone now.
func (player *Player) PlayTone(frequency float64, duration time.Duration, volume float64) {
	player.play(Note{Frequency: frequency, Duration: duration, Gain: volume})
}

// PlayChime plays the completion arpeggio, one note every 200ms.
func (player *Player) PlayChime(volume float64) {
	player.mu.Lock()
	defer player.mu.Unlock()
	if player.closed {
		return
	}
	for index, note := range chimeNotes {
		note.Gain *= volume
		if index == 0 {
			player.playLocked(note)
			continue
		}
		var timer *time.Timer
		timer = time.AfterFunc(time.Duration(index)*chimeSpacing, func() {
			player.mu.Lock()
			defer player.mu.Unlock()
			player.dropPendingLocked(timer)
			if !player.closed {
				player.playLocked(note)
			}
		})
		player.pending = append(player.pending, timer)
	}
}

// StartTick starts a short pulse every second until StopTick.
func (player *Player) StartTick(volume float64) {
	player.mu.Lock()
	defer player.mu.Unlock()
	if player.closed || player.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	player.tickStop = stop
	pulse := Note{Frequency: tickFrequency, Duration: tickDuration, Gain: volume}

	go func() {
		ticker := time.NewTicker(tickEvery)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				player.play(pulse)
			}
		}
	}()
}

// StopTick stops the tick pulse.
func (player *Player) StopTick() {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.stopTickLocked()
}

// StartAmbient starts the low drone.
func (player *Player) StartAmbient(volume float64) {
	player.mu.Lock()
	defer player.mu.Unlock()
	if player.closed || player.ambient != nil {
		return
	}
	drone := Note{Frequency: ambientFrequency, Gain: volume}
	player.ambient = &drone
	for _, output := range player.outputs {
		output.Drone(drone, true)
	}
}

// StopAmbient stops the drone.
func (player *Player) StopAmbient() {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.stopAmbientLocked()
}

// Ticking reports whether the tick pulse is active.
func (player *Player) Ticking() bool {
	player.mu.Lock()
	defer player.mu.Unlock()
	return player.tickStop != nil
}

// Droning reports whether the ambient drone is active.
func (player *Player) Droning() bool {
	player.mu.Lock()
	defer player.mu.Unlock()
	return player.ambient != nil
}

// Close silences everything. Later requests are ignored.
func (player *Player) Close() {
	player.mu.Lock()
	defer player.mu.Unlock()
	if player.closed {
		return
	}
	player.stopTickLocked()
	player.stopAmbientLocked()
	for _, timer := range player.pending {
		timer.Stop()
	}
	player.pending = nil
	player.closed = true
}

func (player *Player) play(note Note) {
	player.mu.Lock()
	defer player.mu.Unlock()
	if !player.closed {
		player.playLocked(note)
	}
}

func (player *Player) playLocked(note Note) {
	for _, output := range player.outputs {
		output.Play(note)
	}
}

func (player *Player) stopTickLocked() {
	if player.tickStop == nil {
		return
	}
	close(player.tickStop)
	player.tickStop = nil
}

func (player *Player) stopAmbientLocked() {
	if player.ambient == nil {
		return
	}
	for _, output := range player.outputs {
		output.Drone(*player.ambient, false)
	}
	player.ambient = nil
}

func (player *Player) dropPendingLocked(timer *time.Timer) {
	for index, candidate := range player.pending {
		if candidate == timer {
			player.pending = append(player.pending[:index], player.pending[index+1:]...)
			return
		}
	}
}

package audio

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOutput struct {
	mu     sync.Mutex
	notes  []Note
	drones []bool
}

func (output *recordingOutput) Play(note Note) {
	output.mu.Lock()
	defer output.mu.Unlock()
	output.notes = append(output.notes, note)
}

func (output *recordingOutput) Drone(_ Note, on bool) {
	output.mu.Lock()
	defer output.mu.Unlock()
	output.drones = append(output.drones, on)
}

func (output *recordingOutput) played() []Note {
	output.mu.Lock()
	defer output.mu.Unlock()
	return append([]Note(nil), output.notes...)
}

func TestChimePlaysThreeNotesInOrder(t *testing.T) {
	output := &recordingOutput{}
	player := NewPlayer(nil, output)
	defer player.Close()

	player.PlayChime(0.5)

	require.Eventually(t, func() bool { return len(output.played()) == 3 }, 2*time.Second, 10*time.Millisecond)
	notes := output.played()
	assert.Equal(t, []float64{523.25, 659.25, 783.99},
		[]float64{notes[0].Frequency, notes[1].Frequency, notes[2].Frequency})
	assert.InDelta(t, 0.125, notes[2].Gain, 1e-9)
	assert.Equal(t, 400*time.Millisecond, notes[2].Duration)
}

func TestCloseCancelsPendingChimeNotes(t *testing.T) {
	output := &recordingOutput{}
	player := NewPlayer(nil, output)

	player.PlayChime(1)
	player.Close()

	time.Sleep(3 * chimeSpacing)
	assert.Len(t, output.played(), 1)
}

func TestTickPulseStartsOnceAndStops(t *testing.T) {
	output := &recordingOutput{}
	player := NewPlayer(nil, output)
	defer player.Close()

	player.StartTick(0.06)
	player.StartTick(0.06)
	assert.True(t, player.Ticking())

	player.StopTick()
	assert.False(t, player.Ticking())
	player.StopTick()
}

func TestAmbientDrone(t *testing.T) {
	output := &recordingOutput{}
	player := NewPlayer(nil, output)

	player.StartAmbient(0.03)
	player.StartAmbient(0.03)
	assert.True(t, player.Droning())
	player.Close()

	assert.False(t, player.Droning())
	assert.Equal(t, []bool{true, false}, output.drones)

	player.StartAmbient(0.03)
	assert.False(t, player.Droning(), "closed players stay silent")
}

func TestBellOutputSkipsSilentAndShortNotes(t *testing.T) {
	var terminal bytes.Buffer
	bell := NewBellOutput(&terminal)

	bell.Play(Note{Frequency: 440, Duration: 200 * time.Millisecond, Gain: 0})
	bell.Play(Note{Frequency: tickFrequency, Duration: tickDuration, Gain: 0.1})
	assert.Empty(t, terminal.String())

	bell.Play(Note{Frequency: 440, Duration: 200 * time.Millisecond, Gain: 0.1})
	assert.Equal(t, "\a", terminal.String())
}

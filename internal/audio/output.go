package audio

import (
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// bellMinDuration keeps tick pulses from ringing the bell every second.
const bellMinDuration = 100 * time.Millisecond

// BellOutput rings the terminal bell for audible notes.
type BellOutput struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewBellOutput rings the bell on writer, usually the terminal.
func NewBellOutput(writer io.Writer) *BellOutput {
	return &BellOutput{writer: writer}
}

// Play rings the bell once for an audible note.
func (output *BellOutput) Play(note Note) {
	if note.Gain <= 0 || note.Duration < bellMinDuration {
		return
	}
	output.mu.Lock()
	defer output.mu.Unlock()
	_, _ = io.WriteString(output.writer, "\a")
}

// Drone is not representable with a bell.
func (output *BellOutput) Drone(Note, bool) {}

// LogOutput records notes at debug level.
type LogOutput struct {
	logger *zap.Logger
}

// NewLogOutput creates an output that logs through logger.
func NewLogOutput(logger *zap.Logger) *LogOutput {
	return &LogOutput{logger: logger.Named("audio")}
}

// Play logs the note.
func (output *LogOutput) Play(note Note) {
	output.logger.Debug("tone",
		zap.Float64("frequency", note.Frequency),
		zap.Duration("duration", note.Duration),
		zap.Float64("gain", note.Gain))
}

// Drone logs the drone switching on or off.
func (output *LogOutput) Drone(note Note, on bool) {
	output.logger.Debug("ambient drone",
		zap.Bool("on", on),
		zap.Float64("frequency", note.Frequency),
		zap.Float64("gain", note.Gain))
}

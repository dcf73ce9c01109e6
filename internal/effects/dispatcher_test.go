package effects

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
)

// journal records every port call in order.
type journal struct {
	calls []string
	fail  bool
}

func (j *journal) PlayTone(frequency float64, duration time.Duration, volume float64) {
	j.calls = append(j.calls, fmt.Sprintf("tone %.0f %s %.2f", frequency, duration, volume))
}
func (j *journal) PlayChime(volume float64) {
	j.calls = append(j.calls, fmt.Sprintf("chime %.2f", volume))
}
func (j *journal) StartAmbient(volume float64) { j.calls = append(j.calls, "ambient on") }
func (j *journal) StopAmbient()                { j.calls = append(j.calls, "ambient off") }
func (j *journal) StartTick(volume float64)    { j.calls = append(j.calls, "tick on") }
func (j *journal) StopTick()                   { j.calls = append(j.calls, "tick off") }
func (j *journal) Toast(text string)           { j.calls = append(j.calls, "toast "+text) }
func (j *journal) Notify(title, body string)   { j.calls = append(j.calls, "notify "+title) }

func (j *journal) RecordCompletion(completion effect.Completion) model.HistoryEntry {
	j.calls = append(j.calls, "record "+string(completion.Type))
	return model.HistoryEntry{ID: "1", Type: completion.Type}
}

func (j *journal) Persist(ctx context.Context) error {
	j.calls = append(j.calls, "persist")
	if j.fail {
		return errors.New("disk full")
	}
	return nil
}

func newJournalDispatcher(t *testing.T, j *journal) *Dispatcher {
	return New(Config{Player: j, Notifier: j, Recorder: j, Persister: j, Logger: zaptest.NewLogger(t)})
}

func TestHandleRoutesInOrder(t *testing.T) {
	j := &journal{}
	dispatcher := newJournalDispatcher(t, j)

	dispatcher.Handle([]effect.Effect{
		effect.StopAmbient(),
		effect.StopTick(),
		effect.CompletionChime(0.6),
		effect.RecordCompletion(effect.Completion{Type: model.CompletionPomodoro, Duration: 25 * time.Minute}),
		effect.ShowToast("Focus complete! Well done."),
		effect.ShowNotification("Pomodoro Complete", "Time for a break!"),
		effect.PersistState(),
	})

	assert.Equal(t, []string{
		"ambient off",
		"tick off",
		"chime 0.60",
		"record pomodoro",
		"toast Focus complete! Well done.",
		"notify Pomodoro Complete",
		"persist",
	}, j.calls)
}

func TestHandleContinuesAfterPersistFailure(t *testing.T) {
	j := &journal{fail: true}
	dispatcher := newJournalDispatcher(t, j)

	dispatcher.Handle([]effect.Effect{
		effect.PersistState(),
		effect.PlayTone(440, 200*time.Millisecond, 0),
		effect.StartTick(0.06),
		effect.StartAmbient(0.03),
	})

	assert.Equal(t, []string{"persist", "tone 440 200ms 0.00", "tick on", "ambient on"}, j.calls)
}

func TestHandleSkipsMissingPorts(t *testing.T) {
	dispatcher := New(Config{Logger: zaptest.NewLogger(t)})
	assert.NotPanics(t, func() {
		dispatcher.Handle([]effect.Effect{
			effect.CompletionChime(1),
			effect.ShowToast("hello"),
			effect.RecordCompletion(effect.Completion{Type: model.CompletionTimer}),
			effect.PersistState(),
			effect.ScheduleAutoStart(time.Second),
		})
	})
}

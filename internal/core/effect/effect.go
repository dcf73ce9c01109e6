// Package effect describes side effects requested by the session state machine.
package effect

import (
	"fmt"
	"time"

	"timekeeper/internal/core/model"
)

// Kind identifies a side-effect descriptor.
type Kind string

const (
	KindPlayTone          Kind = "play_tone"
	KindCompletionChime   Kind = "completion_chime"
	KindStartAmbient      Kind = "start_ambient"
	KindStopAmbient       Kind = "stop_ambient"
	KindStartTick         Kind = "start_tick"
	KindStopTick          Kind = "stop_tick"
	KindShowToast         Kind = "show_toast"
	KindShowNotification  Kind = "show_notification"
	KindPersistState      Kind = "persist_state"
	KindRecordCompletion  Kind = "record_completion"
	KindScheduleAutoStart Kind = "schedule_auto_start"
)

// Completion describes a finished session for the statistics aggregator.
type Completion struct {
	Type           model.CompletionType
	Duration       time.Duration
	FocusedSeconds int64
}

// Effect is a requested external action. Only the fields relevant to Kind are set.
type Effect struct {
	Kind       Kind
	Frequency  float64
	Duration   time.Duration
	Volume     float64
	Text       string
	Title      string
	Body       string
	Completion Completion
}

// String renders the effect for logs and test failures.
func (effect Effect) String() string {
	switch effect.Kind {
	case KindPlayTone:
		return fmt.Sprintf("%s(%.2fHz, %s, %.3f)", effect.Kind, effect.Frequency, effect.Duration, effect.Volume)
	case KindShowToast:
		return fmt.Sprintf("%s(%q)", effect.Kind, effect.Text)
	case KindShowNotification:
		return fmt.Sprintf("%s(%q, %q)", effect.Kind, effect.Title, effect.Body)
	case KindRecordCompletion:
		return fmt.Sprintf("%s(%s, %s)", effect.Kind, effect.Completion.Type, effect.Completion.Duration)
	case KindScheduleAutoStart:
		return fmt.Sprintf("%s(%s)", effect.Kind, effect.Duration)
	}
	return string(effect.Kind)
}

// PlayTone requests a short sine tone.
func PlayTone(frequency float64, duration time.Duration, volume float64) Effect {
	return Effect{Kind: KindPlayTone, Frequency: frequency, Duration: duration, Volume: volume}
}

// CompletionChime requests the three-note completion chime.
func CompletionChime(volume float64) Effect {
	return Effect{Kind: KindCompletionChime, Volume: volume}
}

// StartAmbient requests the ambient drone.
func StartAmbient(volume float64) Effect {
	return Effect{Kind: KindStartAmbient, Volume: volume}
}

// StopAmbient stops the ambient drone.
func StopAmbient() Effect {
	return Effect{Kind: KindStopAmbient}
}

// StartTick requests the 1 Hz tick pulse.
func StartTick(volume float64) Effect {
	return Effect{Kind: KindStartTick, Volume: volume}
}

// StopTick stops the tick pulse.
func StopTick() Effect {
	return Effect{Kind: KindStopTick}
}

// ShowToast requests a transient in-app message.
func ShowToast(text string) Effect {
	return Effect{Kind: KindShowToast, Text: text}
}

// ShowNotification requests a system notification.
func ShowNotification(title, body string) Effect {
	return Effect{Kind: KindShowNotification, Title: title, Body: body}
}

// PersistState requests that the record be saved.
func PersistState() Effect {
	return Effect{Kind: KindPersistState}
}

// RecordCompletion hands a finished session to the statistics aggregator.
func RecordCompletion(completion Completion) Effect {
	return Effect{Kind: KindRecordCompletion, Completion: completion}
}

// ScheduleAutoStart asks the scheduler to start the active session after a delay.
func ScheduleAutoStart(delay time.Duration) Effect {
	return Effect{Kind: KindScheduleAutoStart, Duration: delay}
}

// Has reports whether effects contain at least one effect of kind.
func Has(effects []Effect, kind Kind) bool {
	return Count(effects, kind) > 0
}

// Count returns how many effects have the given kind.
func Count(effects []Effect, kind Kind) int {
	count := 0
	for _, effect := range effects {
		if effect.Kind == kind {
			count++
		}
	}
	return count
}

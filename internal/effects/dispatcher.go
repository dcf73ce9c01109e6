// Package effects executes the side effects requested by the session machine and the settings store.
package effects

import (
	"context"
	"time"

	"go.uber.org/zap"

	"timekeeper/internal/core/effect"
	"timekeeper/internal/core/model"
	"timekeeper/internal/notify"
)

const persistTimeout = 5 * time.Second

// Player renders audio effects.
type Player interface {
	PlayTone(frequency float64, duration time.Duration, volume float64)
	PlayChime(volume float64)
	StartAmbient(volume float64)
	StopAmbient()
	StartTick(volume float64)
	StopTick()
}

// Recorder accepts finished sessions.
type Recorder interface {
	RecordCompletion(completion effect.Completion) model.HistoryEntry
}

// Persister saves the full record.
type Persister interface {
	Persist(ctx context.Context) error
}

// Config wires the dispatcher to its ports. Nil ports are skipped.
type Config struct {
	Player    Player
	Notifier  notify.Notifier
	Recorder  Recorder
	Persister Persister
	Logger    *zap.Logger
}

// Dispatcher routes each effect to the port responsible for it, in order.
type Dispatcher struct {
	options Config
	logger  *zap.Logger
}

// New creates a dispatcher.
func New(options Config) *Dispatcher {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{options: options, logger: logger.Named("effects")}
}

// Handle executes effects in order. Failures are logged and do not stop later effects.
func (dispatcher *Dispatcher) Handle(effects []effect.Effect) {
	for _, requested := range effects {
		dispatcher.handle(requested)
	}
}

func (dispatcher *Dispatcher) handle(requested effect.Effect) {
	player := dispatcher.options.Player
	notifier := dispatcher.options.Notifier

	switch requested.Kind {
	case effect.KindPlayTone:
		if player != nil {
			player.PlayTone(requested.Frequency, requested.Duration, requested.Volume)
		}
	case effect.KindCompletionChime:
		if player != nil {
			player.PlayChime(requested.Volume)
		}
	case effect.KindStartAmbient:
		if player != nil {
			player.StartAmbient(requested.Volume)
		}
	case effect.KindStopAmbient:
		if player != nil {
			player.StopAmbient()
		}
	case effect.KindStartTick:
		if player != nil {
			player.StartTick(requested.Volume)
		}
	case effect.KindStopTick:
		if player != nil {
			player.StopTick()
		}
	case effect.KindShowToast:
		if notifier != nil {
			notifier.Toast(requested.Text)
		}
	case effect.KindShowNotification:
		if notifier != nil {
			notifier.Notify(requested.Title, requested.Body)
		}
	case effect.KindRecordCompletion:
		if dispatcher.options.Recorder != nil {
			entry := dispatcher.options.Recorder.RecordCompletion(requested.Completion)
			dispatcher.logger.Info("session completed",
				zap.String("type", string(entry.Type)),
				zap.Int64("duration_seconds", entry.DurationSeconds),
				zap.String("id", entry.ID))
		}
	case effect.KindPersistState:
		dispatcher.persist()
	default:
		dispatcher.logger.Warn("unhandled effect", zap.Stringer("effect", requested))
	}
}

func (dispatcher *Dispatcher) persist() {
	if dispatcher.options.Persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := dispatcher.options.Persister.Persist(ctx); err != nil {
		dispatcher.logger.Error("failed to persist state", zap.Error(err))
	}
}

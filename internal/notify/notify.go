// Package notify delivers toasts and desktop notifications to whichever surfaces are attached.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// ToastDuration is how long a toast stays visible.
const ToastDuration = 2500 * time.Millisecond

// Notifier shows transient messages to the user.
type Notifier interface {
	Toast(text string)
	Notify(title, body string)
}

// Fanout forwards to every attached notifier. Notifiers can be attached at any time.
type Fanout struct {
	mu        sync.RWMutex
	notifiers []Notifier
}

// NewFanout creates a fanout over notifiers.
func NewFanout(notifiers ...Notifier) *Fanout {
	return &Fanout{notifiers: notifiers}
}

// Attach adds a notifier.
func (fanout *Fanout) Attach(notifier Notifier) {
	fanout.mu.Lock()
	fanout.notifiers = append(fanout.notifiers, notifier)
	fanout.mu.Unlock()
}

// Toast forwards text to every attached notifier.
func (fanout *Fanout) Toast(text string) {
	for _, notifier := range fanout.snapshot() {
		notifier.Toast(text)
	}
}

// Notify forwards a notification to every attached notifier.
func (fanout *Fanout) Notify(title, body string) {
	for _, notifier := range fanout.snapshot() {
		notifier.Notify(title, body)
	}
}

func (fanout *Fanout) snapshot() []Notifier {
	fanout.mu.RLock()
	defer fanout.mu.RUnlock()
	return append([]Notifier(nil), fanout.notifiers...)
}

// LogNotifier writes messages to the log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that logs through logger.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

// Toast logs text at info level.
func (notifier *LogNotifier) Toast(text string) {
	notifier.logger.Info("toast", zap.String("text", text))
}

// Notify logs the notification at info level.
func (notifier *LogNotifier) Notify(title, body string) {
	notifier.logger.Info("notification", zap.String("title", title), zap.String("body", body))
}

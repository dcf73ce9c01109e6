package tray

import (
	"fyne.io/fyne/v2"
)

// DesktopNotifier sends desktop notifications through fyne. Toasts are left to the timer window.
type DesktopNotifier struct {
	app fyne.App
}

// NewDesktopNotifier creates a notifier for app.
func NewDesktopNotifier(app fyne.App) *DesktopNotifier {
	return &DesktopNotifier{app: app}
}

// Toast is a no-op; the timer window shows toasts.
func (notifier *DesktopNotifier) Toast(string) {}

// Notify sends a desktop notification.
func (notifier *DesktopNotifier) Notify(title, body string) {
	notifier.app.SendNotification(fyne.NewNotification(title, body))
}

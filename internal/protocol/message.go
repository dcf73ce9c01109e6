// Package protocol defines the websocket envelope and payloads of the realtime surface.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a server-originated message with the current timestamp.
func NewMessage(msgType string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Message{
		Type:      msgType,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Server → Client message types.
const (
	TypeStateUpdate  = "state.update"
	TypeToast        = "toast"
	TypeNotification = "notification"
	TypeError        = "error"
)

// Client → Server message types.
const (
	TypeSessionStart  = "session.start"
	TypeSessionPause  = "session.pause"
	TypeSessionToggle = "session.toggle"
	TypeSessionReset  = "session.reset"
	TypeSessionSkip   = "session.skip"
	TypeSessionLap    = "session.lap"
	TypeModeSwitch    = "mode.switch"
	TypeFocusSet      = "focus.set"
	TypeCountdownSet  = "countdown.set"
)

// Error codes.
const (
	ErrInvalidMessage = "INVALID_MESSAGE"
)

// Server → Client payloads.

// StatePayload is the rendered session state sent on every update.
type StatePayload struct {
	Mode       string   `json:"mode"`
	Running    bool     `json:"running"`
	Display    string   `json:"display"`
	Label      string   `json:"label"`
	Title      string   `json:"title"`
	Progress   float64  `json:"progress"`
	Phase      string   `json:"phase,omitempty"`
	Laps       []string `json:"laps,omitempty"`
	Theme      string   `json:"theme"`
	Sessions   int      `json:"sessions"`
	StreakDays int      `json:"streak"`
}

// ToastPayload carries a transient message.
type ToastPayload struct {
	Text string `json:"text"`
}

// NotificationPayload carries a desktop notification.
type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ErrorPayload reports a rejected client message.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Client → Server payloads.

// ModeSwitchPayload selects the active mode.
type ModeSwitchPayload struct {
	Mode string `json:"mode"`
}

// FocusSetPayload selects the pomodoro focus length in minutes.
type FocusSetPayload struct {
	Minutes int `json:"minutes"`
}

// CountdownSetPayload sets the countdown length in seconds.
type CountdownSetPayload struct {
	Seconds int `json:"seconds"`
}

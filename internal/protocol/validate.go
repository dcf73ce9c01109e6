package protocol

import (
	"encoding/json"
	"fmt"

	"timekeeper/internal/core/model"
)

// validClientTypes maps each client→server type to whether it requires a payload.
var validClientTypes = map[string]bool{
	TypeSessionStart:  false,
	TypeSessionPause:  false,
	TypeSessionToggle: false,
	TypeSessionReset:  false,
	TypeSessionSkip:   false,
	TypeSessionLap:    false,
	TypeModeSwitch:    true,
	TypeFocusSet:      true,
	TypeCountdownSet:  true,
}

// ValidateClientMessage validates a raw JSON message from a client.
// Returns the parsed Message and any validation error.
func ValidateClientMessage(raw []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if msg.Type == "" {
		return nil, fmt.Errorf("missing 'type' field")
	}

	needsPayload, ok := validClientTypes[msg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}
	if !needsPayload {
		return &msg, nil
	}
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return nil, fmt.Errorf("missing 'payload' field")
	}

	switch msg.Type {
	case TypeModeSwitch:
		var p ModeSwitchPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid payload for %s: %w", msg.Type, err)
		}
		if _, err := model.ParseMode(p.Mode); err != nil {
			return nil, fmt.Errorf("invalid 'mode' in %s payload: %w", msg.Type, err)
		}

	case TypeFocusSet:
		var p FocusSetPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid payload for %s: %w", msg.Type, err)
		}

	case TypeCountdownSet:
		var p CountdownSetPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid payload for %s: %w", msg.Type, err)
		}
		if p.Seconds < 0 {
			return nil, fmt.Errorf("'seconds' must not be negative in %s payload", msg.Type)
		}
	}

	return &msg, nil
}

// NewErrorMessage creates an error message ready to send to the client.
func NewErrorMessage(code, message string) (*Message, error) {
	return NewMessage(TypeError, ErrorPayload{
		Code:    code,
		Message: message,
	})
}

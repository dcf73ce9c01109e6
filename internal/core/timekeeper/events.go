package timekeeper

import (
	"time"

	"timekeeper/internal/core/effect"
)

// EventType defines the type of keeper event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
)

// Event represents a keeper update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Effects  []effect.Effect
	At       time.Time
}

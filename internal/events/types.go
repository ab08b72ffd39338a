// Package events provides the in-process event bus that connects the camera
// registry, the settings engine, and the stream session manager. Settings
// changes that require a stream restart travel over this bus rather than
// through direct calls between modules.
package events

import (
	"time"
)

// EventType identifies an event class, named domain.noun.verb.
type EventType string

const (
	// Lifecycle events.
	EventSystemStarted EventType = "system.started"
	EventSystemStopped EventType = "system.stopped"

	// Configuration events.
	EventConfigReloaded EventType = "config.reloaded"

	// Camera registry events.
	EventCameraAdopted EventType = "camera.adopted"
	EventCameraUpdated EventType = "camera.updated"
	EventCameraRemoved EventType = "camera.removed"

	// EventCameraReloadRequired signals that a stream-affecting setting
	// changed and any live sessions for the camera must be restarted.
	EventCameraReloadRequired EventType = "camera.reload.required"

	// Stream session events.
	EventSessionStarted   EventType = "session.started"
	EventSessionStopped   EventType = "session.stopped"
	EventSessionRestarted EventType = "session.restarted"
	EventSessionFailed    EventType = "session.failed"
)

// EventPriority orders events by urgency.
type EventPriority int

const (
	PriorityLow      EventPriority = 1
	PriorityNormal   EventPriority = 5
	PriorityHigh     EventPriority = 10
	PriorityCritical EventPriority = 20
)

// Event is a single message on the bus.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Title     string                 `json:"title,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Priority  EventPriority          `json:"priority"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent builds an event with normal priority. The bus assigns the ID and
// timestamp at publish time.
func NewEvent(eventType EventType, source, title, message string) Event {
	return Event{
		Type:     eventType,
		Source:   source,
		Title:    title,
		Message:  message,
		Data:     make(map[string]interface{}),
		Priority: PriorityNormal,
	}
}

// EventHandler consumes a delivered event. Returning an error is recorded
// but does not stop delivery to other subscribers.
type EventHandler func(event Event) error

// EventFilter selects which events a subscription receives. Empty fields
// match everything.
type EventFilter struct {
	Types       []EventType    `json:"types,omitempty"`
	Sources     []string       `json:"sources,omitempty"`
	MinPriority *EventPriority `json:"min_priority,omitempty"`
}

// Matches reports whether the event passes the filter.
func (f EventFilter) Matches(event Event) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == event.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Sources) > 0 {
		found := false
		for _, s := range f.Sources {
			if s == event.Source {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinPriority != nil && event.Priority < *f.MinPriority {
		return false
	}
	return true
}

// Subscription is a registered handler plus its filter and delivery stats.
type Subscription struct {
	ID            string       `json:"id"`
	Subscriber    string       `json:"subscriber"`
	Filter        EventFilter  `json:"filter"`
	Handler       EventHandler `json:"-"`
	Created       time.Time    `json:"created"`
	LastTriggered *time.Time   `json:"last_triggered,omitempty"`
	TriggerCount  int64        `json:"trigger_count"`
}

// EventStats summarizes bus activity since start.
type EventStats struct {
	TotalPublished int64               `json:"total_published"`
	TotalDropped   int64               `json:"total_dropped"`
	ByType         map[EventType]int64 `json:"by_type"`
	Subscriptions  int                 `json:"subscriptions"`
}

package service

import "github.com/google/uuid"

// EventType defines the type of event
type EventType string

const (
	EventEntityCreated     EventType = "entity_created"
	EventEntityDeleted     EventType = "entity_deleted"
	EventEntityPromoted    EventType = "entity_promoted"
	EventPlacementUpdated  EventType = "placement_updated"
	EventPlacementRemoved  EventType = "placement_removed"
	EventConnectionCreated EventType = "connection_created"
	EventEdgeDeleted       EventType = "edge_deleted"
	EventIDIssued          EventType = "id_issued"
	EventIDReserved        EventType = "id_reserved"
	EventImportCompleted   EventType = "import_completed"
)

// Event represents an event that occurred in the system
type Event struct {
	ID      string      `json:"id"`
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// NewEvent builds an event with a fresh id.
func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{ID: uuid.NewString(), Type: eventType, Payload: payload}
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}

package events

import (
	"sync"
	"time"
)

// EventType represents different types of events in the engine service
type EventType string

const (
	EventSignalValidated   EventType = "SIGNAL_VALIDATED"
	EventSignalRejected    EventType = "SIGNAL_REJECTED"
	EventAssessmentUpdated EventType = "ASSESSMENT_UPDATED"
	EventBalanceUpdated    EventType = "BALANCE_UPDATED"
	EventError             EventType = "ERROR"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events
type Subscriber func(Event)

// EventBus manages event publishing and subscriptions
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
		allSubs:     make([]Subscriber, 0),
	}
}

// Subscribe registers a subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for all events
func (eb *EventBus) SubscribeAll(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.allSubs = append(eb.allSubs, subscriber)
}

// Publish sends an event to all subscribers. Subscribers run in their own
// goroutines so a slow consumer never blocks the publisher.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if subs, ok := eb.subscribers[event.Type]; ok {
		for _, sub := range subs {
			go sub(event)
		}
	}
	for _, sub := range eb.allSubs {
		go sub(event)
	}
}

// PublishSignalValidated publishes the outcome of a signal validation.
func (eb *EventBus) PublishSignalValidated(symbol, direction string, score int, valid bool) {
	eventType := EventSignalValidated
	if !valid {
		eventType = EventSignalRejected
	}
	eb.Publish(Event{
		Type: eventType,
		Data: map[string]interface{}{
			"symbol":    symbol,
			"direction": direction,
			"score":     score,
			"is_valid":  valid,
		},
	})
}

// PublishAssessmentUpdated publishes a fresh quality assessment.
func (eb *EventBus) PublishAssessmentUpdated(symbol, direction, quality string) {
	eb.Publish(Event{
		Type: EventAssessmentUpdated,
		Data: map[string]interface{}{
			"symbol":    symbol,
			"direction": direction,
			"quality":   quality,
		},
	})
}

// PublishBalanceUpdated publishes a broker balance update.
func (eb *EventBus) PublishBalanceUpdated(balance float64) {
	eb.Publish(Event{
		Type: EventBalanceUpdated,
		Data: map[string]interface{}{"balance": balance},
	})
}

// PublishError publishes a non-fatal operational error, tagged with the
// operation that failed.
func (eb *EventBus) PublishError(op string, err error) {
	eb.Publish(Event{
		Type: EventError,
		Data: map[string]interface{}{"op": op, "error": err.Error()},
	})
}

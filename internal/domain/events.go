package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Event Interface and Base Event
// -----------------------------------------------------------------------------

// Event represents a domain event
type Event interface {
	// EventID returns the unique identifier for this event
	EventID() uuid.UUID
	// EventType returns the type name of this event
	EventType() string
	// OccurredAt returns when this event occurred
	OccurredAt() time.Time
	// AggregateID returns the ID of the aggregate that produced this event
	AggregateID() uuid.UUID
	// AggregateType returns the type of aggregate that produced this event
	AggregateType() string
}

// BaseEvent provides common event fields
type BaseEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateUUID uuid.UUID `json:"aggregate_id"`
	AggregateName string    `json:"aggregate_type"`
}

// NewBaseEvent creates a new BaseEvent
func NewBaseEvent(eventType, aggregateType string, aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggregateUUID: aggregateID,
		AggregateName: aggregateType,
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.ID }
func (e BaseEvent) EventType() string      { return e.Type }
func (e BaseEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e BaseEvent) AggregateID() uuid.UUID { return e.AggregateUUID }
func (e BaseEvent) AggregateType() string  { return e.AggregateName }

// -----------------------------------------------------------------------------
// Event Handler and Dispatcher
// -----------------------------------------------------------------------------

// EventHandler processes domain events
type EventHandler func(event Event)

// EventDispatcher manages event subscriptions and publishing
type EventDispatcher struct {
	mu          sync.RWMutex
	handlers    map[string][]EventHandler
	allHandlers []EventHandler // handlers for all events
}

// NewEventDispatcher creates a new event dispatcher
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[string][]EventHandler),
	}
}

// Subscribe registers a handler for a specific event type
func (d *EventDispatcher) Subscribe(eventType string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// SubscribeAll registers a handler for all event types
func (d *EventDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.allHandlers = append(d.allHandlers, handler)
}

// Publish dispatches an event to all registered handlers
func (d *EventDispatcher) Publish(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	// Call type-specific handlers
	if handlers, ok := d.handlers[event.EventType()]; ok {
		for _, h := range handlers {
			h(event)
		}
	}

	// Call all-event handlers
	for _, h := range d.allHandlers {
		h(event)
	}
}

// -----------------------------------------------------------------------------
// Analysis Events
// -----------------------------------------------------------------------------

// AnalysisCompletedEvent is published when an analysis produced a response
type AnalysisCompletedEvent struct {
	BaseEvent
	Action     Action     `json:"action"`
	Language   Language   `json:"language"`
	Level      SkillLevel `json:"level"`
	Provider   string     `json:"provider"`
	DurationMS int64      `json:"duration_ms"`
}

// NewAnalysisCompletedEvent creates a new analysis completed event
func NewAnalysisCompletedEvent(analysisID uuid.UUID, action Action, language Language, level SkillLevel, provider string, duration time.Duration) AnalysisCompletedEvent {
	return AnalysisCompletedEvent{
		BaseEvent:  NewBaseEvent("analysis.completed", "Analysis", analysisID),
		Action:     action,
		Language:   language,
		Level:      level,
		Provider:   provider,
		DurationMS: duration.Milliseconds(),
	}
}

// AnalysisFailedEvent is published when an analysis could not be answered.
// Provider is empty when the failure happened before a provider was chosen.
type AnalysisFailedEvent struct {
	BaseEvent
	Action     Action     `json:"action"`
	Language   Language   `json:"language"`
	Level      SkillLevel `json:"level"`
	Provider   string     `json:"provider,omitempty"`
	Reason     string     `json:"reason"`
	DurationMS int64      `json:"duration_ms"`
}

// NewAnalysisFailedEvent creates a new analysis failed event
func NewAnalysisFailedEvent(analysisID uuid.UUID, action Action, language Language, level SkillLevel, provider, reason string, duration time.Duration) AnalysisFailedEvent {
	return AnalysisFailedEvent{
		BaseEvent:  NewBaseEvent("analysis.failed", "Analysis", analysisID),
		Action:     action,
		Language:   language,
		Level:      level,
		Provider:   provider,
		Reason:     reason,
		DurationMS: duration.Milliseconds(),
	}
}

package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

type EntityType string

const (
	EntityTypeTransaction      EntityType = "transaction"
	EntityTypeInstallmentGroup EntityType = "installment_group"
	EntityTypeProject          EntityType = "project"
	EntityTypeCategory         EntityType = "category"
	EntityTypeCompany          EntityType = "company"
)

// Event is the message pushed to subscribers.
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"` // e.g. "transaction.created"
	Entity    EntityType  `json:"entity"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

func TransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

// InstallmentGroupCreated is emitted once per split, with every row of the group as payload
func InstallmentGroupCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeInstallmentGroup, payload)
}

func ProjectCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeProject, payload)
}

func ProjectUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeProject, payload)
}

func ProjectDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeProject, payload)
}

func CategoryCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCategory, payload)
}

func CategoryUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCategory, payload)
}

func CategoryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCategory, payload)
}

func CompanyUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCompany, payload)
}

package websocket

import "github.com/google/uuid"

// EventPublisher delivers domain events to the subscribers of one company
type EventPublisher interface {
	Publish(companyID uuid.UUID, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the company
func (h *Hub) Publish(companyID uuid.UUID, event Event) {
	h.Broadcast(companyID, event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(companyID uuid.UUID, event Event) {}

// MultiPublisher fans every event out to several publishers, in order
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(companyID uuid.UUID, event Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(companyID, event)
		}
	}
}

package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Client control frames. A dashboard tab sends
//
//	{"action":"subscribe","entities":["dashboard"]}
//
// to receive only what changes its numbers; "unsubscribe" removes entities again.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// EntityDashboard expands to every entity whose changes move dashboard figures
const EntityDashboard EntityType = "dashboard"

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrUnknownEntity = errors.New("unknown entity")
)

var knownEntities = []EntityType{
	EntityTypeTransaction,
	EntityTypeInstallmentGroup,
	EntityTypeProject,
	EntityTypeCategory,
	EntityTypeCompany,
}

var dashboardEntities = []EntityType{
	EntityTypeTransaction,
	EntityTypeInstallmentGroup,
	EntityTypeProject,
	EntityTypeCategory,
}

// ClientMessage is a control frame read from a client
type ClientMessage struct {
	Action   string       `json:"action"`
	Entities []EntityType `json:"entities"`
}

// ParseClientMessage decodes and checks a control frame
func ParseClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	if msg.Action != ActionSubscribe && msg.Action != ActionUnsubscribe {
		return ClientMessage{}, fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
	if _, err := expandEntities(msg.Entities); err != nil {
		return ClientMessage{}, err
	}
	return msg, nil
}

func expandEntities(entities []EntityType) ([]EntityType, error) {
	out := make([]EntityType, 0, len(entities))
	for _, e := range entities {
		if e == EntityDashboard {
			out = append(out, dashboardEntities...)
			continue
		}
		if !isKnownEntity(e) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, e)
		}
		out = append(out, e)
	}
	return out, nil
}

func isKnownEntity(e EntityType) bool {
	for _, k := range knownEntities {
		if k == e {
			return true
		}
	}
	return false
}

// Subscription is the set of entities a client receives. The zero value receives everything.
type Subscription struct {
	mu       sync.RWMutex
	entities map[EntityType]bool // nil means all
}

// Accepts reports whether events about entity should be delivered
func (s *Subscription) Accepts(entity EntityType) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities == nil || s.entities[entity]
}

// Apply updates the subscription. Subscribe with no entities goes back to receiving everything.
func (s *Subscription) Apply(msg ClientMessage) error {
	entities, err := expandEntities(msg.Entities)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Action {
	case ActionSubscribe:
		if len(entities) == 0 {
			s.entities = nil
			return nil
		}
		if s.entities == nil {
			s.entities = make(map[EntityType]bool, len(entities))
		}
		for _, e := range entities {
			s.entities[e] = true
		}
	case ActionUnsubscribe:
		if s.entities == nil {
			s.entities = make(map[EntityType]bool, len(knownEntities))
			for _, e := range knownEntities {
				s.entities[e] = true
			}
		}
		for _, e := range entities {
			delete(s.entities, e)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
	return nil
}

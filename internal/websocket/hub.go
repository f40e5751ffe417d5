package websocket

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ClientInterface is what the hub needs from a connection
type ClientInterface interface {
	ID() string
	CompanyID() uuid.UUID
	Accepts(entity EntityType) bool
	Send(data []byte) error
	Close() error
}

// Hub routes company events to the live connections of that company. Safe for concurrent use.
type Hub struct {
	mu        sync.RWMutex
	companies map[uuid.UUID]map[string]ClientInterface
	closed    bool
}

func NewHub() *Hub {
	return &Hub{companies: make(map[uuid.UUID]map[string]ClientInterface)}
}

// Register adds a client under its company. After Shutdown the client is closed instead.
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		client.Close()
		return
	}
	companyID := client.CompanyID()
	if h.companies[companyID] == nil {
		h.companies[companyID] = make(map[string]ClientInterface)
	}
	h.companies[companyID][client.ID()] = client
	h.mu.Unlock()

	log.Debug().Str("company_id", companyID.String()).Str("client_id", client.ID()).Msg("WebSocket client registered")
}

// Unregister removes a client. Unknown clients are ignored.
func (h *Hub) Unregister(client ClientInterface) {
	if h.remove(client) {
		log.Debug().Str("company_id", client.CompanyID().String()).Str("client_id", client.ID()).Msg("WebSocket client unregistered")
	}
}

func (h *Hub) remove(client ClientInterface) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.companies[client.CompanyID()]
	if _, ok := clients[client.ID()]; !ok {
		return false
	}
	delete(clients, client.ID())
	if len(clients) == 0 {
		delete(h.companies, client.CompanyID())
	}
	return true
}

// Broadcast serializes event once and queues it on every client of the company subscribed to
// its entity. A client whose queue is full is dropped; the browser reconnects and refetches.
func (h *Hub) Broadcast(companyID uuid.UUID, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID.String()).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	targets := make([]ClientInterface, 0, len(h.companies[companyID]))
	for _, client := range h.companies[companyID] {
		if client.Accepts(event.Entity) {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, client := range targets {
		err := client.Send(data)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, ErrSendBufferFull):
			log.Warn().Str("company_id", companyID.String()).Str("client_id", client.ID()).Msg("Dropping slow WebSocket client")
			h.remove(client)
			client.Close()
		default:
			h.remove(client)
		}
	}

	log.Debug().
		Str("company_id", companyID.String()).
		Str("event_type", event.Type).
		Int("delivered", delivered).
		Msg("Broadcast event")
}

// Shutdown closes every client and refuses new ones
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	companies := h.companies
	h.companies = make(map[uuid.UUID]map[string]ClientInterface)
	h.mu.Unlock()

	count := 0
	for _, clients := range companies {
		for _, client := range clients {
			client.Close()
			count++
		}
	}
	log.Info().Int("clients", count).Msg("WebSocket hub shut down")
}

// ClientCount returns the number of clients connected for a company
func (h *Hub) ClientCount(companyID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.companies[companyID])
}

// TotalClientCount returns the number of connected clients across all companies
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.companies {
		total += len(clients)
	}
	return total
}

package websocket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type recordingPublisher struct {
	companies []uuid.UUID
	events    []Event
}

func (r *recordingPublisher) Publish(companyID uuid.UUID, event Event) {
	r.companies = append(r.companies, companyID)
	r.events = append(r.events, event)
}

func TestHub_Publish(t *testing.T) {
	hub := NewHub()
	companyID := uuid.New()

	client := newMockClient("client-1", companyID)
	hub.Register(client)

	var publisher EventPublisher = hub
	publisher.Publish(companyID, TransactionCreated(map[string]interface{}{"id": "42"}))

	assert.Len(t, client.GetMessages(), 1)
}

func TestNoOpPublisher_Publish(t *testing.T) {
	publisher := &NoOpPublisher{}

	assert.NotPanics(t, func() {
		publisher.Publish(uuid.New(), TransactionCreated(nil))
	})
}

func TestMultiPublisher_FansOut(t *testing.T) {
	first, second := &recordingPublisher{}, &recordingPublisher{}
	companyID := uuid.New()
	event := ProjectCreated(map[string]interface{}{"name": "Riverside"})

	MultiPublisher{first, nil, second}.Publish(companyID, event)

	assert.Equal(t, []uuid.UUID{companyID}, first.companies)
	assert.Equal(t, []uuid.UUID{companyID}, second.companies)
	assert.Equal(t, "project.created", second.events[0].Type)
}

package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"description": "Concrete (1/3)",
		"amount":      "400.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
	after := time.Now()

	assert.Equal(t, "transaction.created", evt.Type)
	assert.Equal(t, EntityTypeTransaction, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_ToJSON(t *testing.T) {
	evt := NewEvent(EventTypeUpdated, EntityTypeCategory, map[string]interface{}{"name": "Labor"})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "category.updated", decoded["type"])
	assert.Equal(t, "category", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"id": "abc"}

	tests := []struct {
		name   string
		event  Event
		want   string
		entity EntityType
	}{
		{"TransactionCreated", TransactionCreated(payload), "transaction.created", EntityTypeTransaction},
		{"TransactionUpdated", TransactionUpdated(payload), "transaction.updated", EntityTypeTransaction},
		{"TransactionDeleted", TransactionDeleted(payload), "transaction.deleted", EntityTypeTransaction},
		{"InstallmentGroupCreated", InstallmentGroupCreated(payload), "installment_group.created", EntityTypeInstallmentGroup},
		{"ProjectCreated", ProjectCreated(payload), "project.created", EntityTypeProject},
		{"ProjectUpdated", ProjectUpdated(payload), "project.updated", EntityTypeProject},
		{"ProjectDeleted", ProjectDeleted(payload), "project.deleted", EntityTypeProject},
		{"CategoryCreated", CategoryCreated(payload), "category.created", EntityTypeCategory},
		{"CategoryUpdated", CategoryUpdated(payload), "category.updated", EntityTypeCategory},
		{"CategoryDeleted", CategoryDeleted(payload), "category.deleted", EntityTypeCategory},
		{"CompanyUpdated", CompanyUpdated(payload), "company.updated", EntityTypeCompany},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Type)
			assert.Equal(t, tt.entity, tt.event.Entity)
			assert.Equal(t, payload, tt.event.Payload)
		})
	}
}

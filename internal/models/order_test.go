package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusCompleted, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCompleted, OrderStatusProcessing, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_TerminalAndValid(t *testing.T) {
	assert.True(t, OrderStatusCompleted.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatus("shipped").Valid())
	assert.True(t, OrderStatusProcessing.Valid())
}

func TestEmptyCartJSON(t *testing.T) {
	userID := uuid.New()
	raw, err := json.Marshal(EmptyCart(userID))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, userID.String(), got["userId"])
	assert.Equal(t, []any{}, got["items"])
	assert.NotContains(t, got, "updatedAt")
	assert.NotContains(t, got, "id")
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidCategory("PC"))
	assert.False(t, ValidCategory("pc"))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("owner"))
}

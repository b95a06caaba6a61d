package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid", err: Invalid("quantity must be >= 1"), want: http.StatusBadRequest},
		{name: "unauthenticated", err: fmt.Errorf("no session: %w", ErrUnauthenticated), want: http.StatusUnauthorized},
		{name: "forbidden", err: ErrForbidden, want: http.StatusForbidden},
		{name: "not found", err: fmt.Errorf("order: %w", ErrNotFound), want: http.StatusNotFound},
		{name: "conflict", err: ErrConflict, want: http.StatusConflict},
		{name: "state transition", err: ErrInvalidStateTransition, want: http.StatusConflict},
		{name: "storage", err: Storage(errors.New("connection refused")), want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestStorageKeepsDomainErrors(t *testing.T) {
	err := Storage(fmt.Errorf("user: %w", ErrNotFound))
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrStorageUnavailable)

	raw := errors.New("disk full")
	wrapped := Storage(raw)
	require.ErrorIs(t, wrapped, ErrStorageUnavailable)
	require.ErrorIs(t, wrapped, raw)

	require.NoError(t, Storage(nil))
}

func TestPublicMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "internal error", PublicMessage(Storage(errors.New("password=hunter2"))))
	assert.Equal(t, "invalid argument: no fields to update", PublicMessage(Invalid("no fields to update")))
}

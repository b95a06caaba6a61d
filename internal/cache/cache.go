package cache

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

var ErrCacheMiss = errors.New("cache miss")

type CartCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Set(ctx context.Context, userID uuid.UUID, cart *models.Cart) error
	// SetIfAbsent stores cart only when no entry exists and reports whether it did.
	SetIfAbsent(ctx context.Context, userID uuid.UUID, cart *models.Cart) (bool, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Nop is used when no cache is configured; every Get misses.
type Nop struct{}

func (Nop) Get(context.Context, uuid.UUID) (*models.Cart, error) { return nil, ErrCacheMiss }
func (Nop) Set(context.Context, uuid.UUID, *models.Cart) error { return nil }
func (Nop) SetIfAbsent(context.Context, uuid.UUID, *models.Cart) (bool, error) {
	return false, nil
}
func (Nop) Delete(context.Context, uuid.UUID) error { return nil }

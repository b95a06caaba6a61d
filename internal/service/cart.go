package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/cache"
	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/mykafka"
)

// CartStore is implemented by the SQL repository and the Mongo cart repository.
type CartStore interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	UpsertItem(ctx context.Context, userID uuid.UUID, item models.CartItem) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error)
	ReplaceItems(ctx context.Context, userID uuid.UUID, items []models.CartItem) (*models.Cart, error)
	DeleteCart(ctx context.Context, userID uuid.UUID) error
}

const cartLoadTimeout = 5 * time.Second

type CartService struct {
	store     CartStore
	cache     cache.CartCache
	publisher mykafka.Publisher
	sfg       singleflight.Group
}

func NewCartService(store CartStore, c cache.CartCache, p mykafka.Publisher) *CartService {
	if c == nil {
		c = cache.Nop{}
	}
	if p == nil {
		p = mykafka.Nop{}
	}
	return &CartService{store: store, cache: c, publisher: p}
}

// GetCart never returns nil: users without a cart get an empty one.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, apperr.Invalid("userId is required")
	}
	l := logging.FromContext(ctx).With("svc", "cart.get", "user_id", userID)

	if cached, err := s.cache.Get(ctx, userID); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn("cart_cache_get_error", "error", err)
	}

	v, err, _ := s.sfg.Do(userID.String(), func() (any, error) {
		// shared by every waiter, so one caller going away must not fail the rest
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cartLoadTimeout)
		defer cancel()

		cart, err := s.store.GetCart(loadCtx, userID)
		if errors.Is(err, apperr.ErrNotFound) {
			return models.EmptyCart(userID), nil
		}
		if err != nil {
			return nil, err
		}
		if _, err := s.cache.SetIfAbsent(loadCtx, userID, cart); err != nil {
			l.Warn("cart_cache_set_error", "error", err)
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Cart), nil
}

// UpsertItem sets the quantity for productID, replacing any previous quantity.
func (s *CartService) UpsertItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if reason := cartItemProblem(userID, productID, quantity); reason != "" {
		return nil, apperr.Invalid("%s", reason)
	}
	cart, err := s.store.UpsertItem(ctx, userID, models.CartItem{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, err
	}
	s.changed(ctx, userID, cart, "item_upserted")
	return cart, nil
}

// RemoveItem is idempotent; removing from a missing cart yields the empty cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return nil, apperr.Invalid("userId and gameId are required")
	}
	cart, err := s.store.RemoveItem(ctx, userID, productID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.EmptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}
	s.changed(ctx, userID, cart, "item_removed")
	return cart, nil
}

// ReplaceCart swaps the whole item list. Every item is validated before
// anything is written.
func (s *CartService) ReplaceCart(ctx context.Context, userID uuid.UUID, items []models.CartItem) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, apperr.Invalid("userId is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(items))
	clean := make([]models.CartItem, 0, len(items))
	for i, it := range items {
		if reason := cartItemProblem(userID, it.ProductID, it.Quantity); reason != "" {
			return nil, apperr.Invalid("items[%d]: %s", i, reason)
		}
		if _, dup := seen[it.ProductID]; dup {
			return nil, apperr.Invalid("items[%d]: duplicate gameId %s", i, it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
		clean = append(clean, models.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	cart, err := s.store.ReplaceItems(ctx, userID, clean)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, userID, cart, "cart_replaced")
	return cart, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeleteCart(ctx, userID); err != nil {
		return err
	}
	s.changed(ctx, userID, models.EmptyCart(userID), "cart_cleared")
	return nil
}

// changed writes the committed cart through to the cache. If that fails the
// entry is dropped so readers go back to the store.
func (s *CartService) changed(ctx context.Context, userID uuid.UUID, cart *models.Cart, action string) {
	l := logging.FromContext(ctx)
	if err := s.cache.Set(ctx, userID, cart); err != nil {
		l.Warn("cart_cache_set_error", "user_id", userID, "error", err)
		if err := s.cache.Delete(ctx, userID); err != nil {
			l.Warn("cart_cache_invalidate_error", "user_id", userID, "error", err)
		}
	}
	publish(ctx, s.publisher, mykafka.TopicCartEvents, userID.String(), map[string]any{
		"type":   "cart_updated",
		"action": action,
		"userID": userID.String(),
	})
}

func cartItemProblem(userID, productID uuid.UUID, quantity int) string {
	switch {
	case userID == uuid.Nil:
		return "userId is required"
	case productID == uuid.Nil:
		return "gameId is required"
	case quantity < 1:
		return "quantity must be at least 1"
	case quantity > models.MaxQuantity:
		return fmt.Sprintf("quantity must be at most %d", models.MaxQuantity)
	}
	return ""
}

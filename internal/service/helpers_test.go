package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/OrmirUlaj/gaming-marketplace/internal/cache"
	"github.com/OrmirUlaj/gaming-marketplace/internal/db"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/mykafka"
	"github.com/OrmirUlaj/gaming-marketplace/internal/repo"
)

type testEnv struct {
	Repo   *repo.GormRepo
	Events *mykafka.Recorder
	Cache  *mapCache
	Auth   *AuthService
	Users  *UserService
	Carts  *CartService
	Orders *OrderService
	Shop   *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := &repo.GormRepo{DB: gdb}
	events := &mykafka.Recorder{}
	c := newMapCache()
	carts := NewCartService(r, c, events)

	return &testEnv{
		Repo:   r,
		Events: events,
		Cache:  c,
		Auth: &AuthService{
			Repo:          r,
			Publisher:     events,
			AccessSecret:  []byte("test-access-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    time.Hour,
		},
		Users:  &UserService{Repo: r, Carts: carts, Publisher: events},
		Carts:  carts,
		Orders: &OrderService{Repo: r, Publisher: events},
		Shop:   &CatalogService{Repo: r, Publisher: events},
	}
}

func (e *testEnv) product(t *testing.T, title, category, price string) *models.Product {
	t.Helper()
	p, err := e.Shop.CreateProduct(context.Background(), NewProduct{
		Title:    title,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Stock:    5,
	})
	require.NoError(t, err)
	return p
}

type mapCache struct {
	mu    sync.Mutex
	carts map[uuid.UUID]models.Cart
	hits  int
}

func newMapCache() *mapCache {
	return &mapCache{carts: map[uuid.UUID]models.Cart{}}
}

func (m *mapCache) Get(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	m.hits++
	return &c, nil
}

func (m *mapCache) Set(_ context.Context, userID uuid.UUID, c *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = *c
	return nil
}

func (m *mapCache) SetIfAbsent(_ context.Context, userID uuid.UUID, c *models.Cart) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[userID]; ok {
		return false, nil
	}
	m.carts[userID] = *c
	return true, nil
}

func (m *mapCache) Delete(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

func (m *mapCache) quantity(userID, productID uuid.UUID) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return 0, false
	}
	return c.Quantity(productID)
}

func (m *mapCache) has(userID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.carts[userID]
	return ok
}

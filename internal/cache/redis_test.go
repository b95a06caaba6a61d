package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

func TestCacheKey(t *testing.T) {
	id := uuid.MustParse("7b0d3f55-5b8f-4f0e-9d8f-6d2f1b7c2a10")
	assert.Equal(t, "cart:7b0d3f55-5b8f-4f0e-9d8f-6d2f1b7c2a10", cacheKey(id))
}

func TestNop_AlwaysMisses(t *testing.T) {
	var c CartCache = Nop{}
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, c.Set(ctx, id, models.EmptyCart(id)))
	stored, err := c.SetIfAbsent(ctx, id, models.EmptyCart(id))
	require.NoError(t, err)
	assert.False(t, stored)
	_, err = c.Get(ctx, id)
	require.ErrorIs(t, err, ErrCacheMiss)
	require.NoError(t, c.Delete(ctx, id))
}

func TestRedisCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisCache(client, time.Minute)
	ctx := context.Background()
	userID, productID := uuid.New(), uuid.New()

	_, err := c.Get(ctx, userID)
	require.ErrorIs(t, err, ErrCacheMiss)

	cart := &models.Cart{ID: uuid.New(), UserID: userID, Items: []models.CartItem{{ProductID: productID, Quantity: 3}}}
	require.NoError(t, c.Set(ctx, userID, cart))

	got, err := c.Get(ctx, userID)
	require.NoError(t, err)
	q, ok := got.Quantity(productID)
	require.True(t, ok)
	assert.Equal(t, 3, q)

	ttl, err := client.TTL(ctx, cacheKey(userID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Second)

	require.NoError(t, c.Delete(ctx, userID))
	_, err = c.Get(ctx, userID)
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_SetIfAbsentKeepsNewerEntry(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisCache(client, time.Minute)
	ctx := context.Background()
	userID, productID := uuid.New(), uuid.New()
	t.Cleanup(func() { _ = c.Delete(context.Background(), userID) })

	older := &models.Cart{ID: uuid.New(), UserID: userID, Items: []models.CartItem{{ProductID: productID, Quantity: 5}}}
	newer := &models.Cart{ID: older.ID, UserID: userID, Items: []models.CartItem{{ProductID: productID, Quantity: 2}}}

	stored, err := c.SetIfAbsent(ctx, userID, older)
	require.NoError(t, err)
	require.True(t, stored)

	require.NoError(t, c.Set(ctx, userID, newer))
	stored, err = c.SetIfAbsent(ctx, userID, older)
	require.NoError(t, err)
	assert.False(t, stored)

	got, err := c.Get(ctx, userID)
	require.NoError(t, err)
	q, _ := got.Quantity(productID)
	assert.Equal(t, 2, q)
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisCache{client: client, baseTTL: ttl}
}

func (r *RedisCache) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

// Set stores the cart with the base TTL plus up to five minutes of jitter.
func (r *RedisCache) Set(ctx context.Context, userID uuid.UUID, cart *models.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, cacheKey(userID), raw, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// SetIfAbsent fills an empty slot. An entry written by a mutation in the
// meantime wins over the older snapshot.
func (r *RedisCache) SetIfAbsent(ctx context.Context, userID uuid.UUID, cart *models.Cart) (bool, error) {
	raw, err := json.Marshal(cart)
	if err != nil {
		return false, fmt.Errorf("marshal cart failed: %w", err)
	}
	ok, err := r.client.SetNX(ctx, cacheKey(userID), raw, r.ttl()).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return ok, nil
}

func (r *RedisCache) ttl() time.Duration {
	return r.baseTTL + time.Duration(rand.IntN(5))*time.Minute
}

func (r *RedisCache) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:%s", userID)
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blood-request-routing/internal/config"
	"blood-request-routing/internal/models"

	"github.com/redis/go-redis/v9"
)

const availabilityKeyPrefix = "blood-availability:"

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisAvailabilityCache keeps short-lived availability snapshots per blood group
type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot, or nil on a miss
func (c *RedisAvailabilityCache) Get(ctx context.Context, group models.BloodGroup) (*models.BloodAvailability, error) {
	raw, err := c.client.Get(ctx, availabilityKey(group)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var availability models.BloodAvailability
	if err := json.Unmarshal(raw, &availability); err != nil {
		return nil, fmt.Errorf("decode cached availability: %w", err)
	}
	return &availability, nil
}

// Set stores a snapshot until the TTL expires
func (c *RedisAvailabilityCache) Set(ctx context.Context, availability *models.BloodAvailability) error {
	raw, err := json.Marshal(availability)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, availabilityKey(availability.BloodGroup), raw, c.ttl).Err()
}

// Invalidate drops the snapshot for a group after its stock changed
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, group models.BloodGroup) error {
	return c.client.Del(ctx, availabilityKey(group)).Err()
}

func availabilityKey(group models.BloodGroup) string {
	return availabilityKeyPrefix + string(group)
}

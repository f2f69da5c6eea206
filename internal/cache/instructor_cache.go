// Package cache keeps the instructor catalogue in Redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/drivingschool/backend/internal/models"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// instructorListKey is a hash holding one field per filter combination
const instructorListKey = "instructors:list"

// RedisClient is the subset of *redis.Client used by the cache
type RedisClient interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type instructorCache struct {
	client RedisClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewInstructorCache creates a Redis backed instructor list cache
func NewInstructorCache(client RedisClient, ttl time.Duration, logger *zap.Logger) *instructorCache {
	return &instructorCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached list for a filter. A miss is reported as ok=false with a nil error.
func (c *instructorCache) Get(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, bool, error) {
	raw, err := c.client.HGet(ctx, instructorListKey, filterField(filter)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read instructor cache: %w", err)
	}

	var instructors []models.Instructor
	if err := json.Unmarshal(raw, &instructors); err != nil {
		c.logger.Warn("dropping corrupt instructor cache entry", zap.Error(err))
		return nil, false, nil
	}

	return instructors, true, nil
}

// Set stores the list for a filter and refreshes the TTL of the catalogue hash
func (c *instructorCache) Set(ctx context.Context, filter models.InstructorFilter, instructors []models.Instructor) error {
	raw, err := json.Marshal(instructors)
	if err != nil {
		return fmt.Errorf("failed to encode instructors: %w", err)
	}

	if err := c.client.HSet(ctx, instructorListKey, filterField(filter), raw).Err(); err != nil {
		return fmt.Errorf("failed to write instructor cache: %w", err)
	}
	if err := c.client.Expire(ctx, instructorListKey, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set instructor cache ttl: %w", err)
	}

	return nil
}

// Invalidate drops every cached list
func (c *instructorCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, instructorListKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate instructor cache: %w", err)
	}
	return nil
}

func filterField(filter models.InstructorFilter) string {
	return fmt.Sprintf("t=%s|s=%s", filter.Transmission, filter.Specialty)
}

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mentoverse/mentoverse-platform/internal/store"
	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// StoreSource reads services from the services collection.
type StoreSource struct {
	coll store.Collection[Service]
}

// NewStoreSource wraps a services collection.
func NewStoreSource(coll store.Collection[Service]) *StoreSource {
	return &StoreSource{coll: coll}
}

// ListServices implements Source.
func (s *StoreSource) ListServices(ctx context.Context) ([]Service, error) {
	services, err := s.coll.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return services, nil
}

const cacheKey = "catalog:services:v1"

// CachedSource keeps the catalog in Redis for ttl. Cache failures fall
// through to the wrapped source.
type CachedSource struct {
	next   Source
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedSource wraps next with a Redis cache.
func NewCachedSource(next Source, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedSource {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedSource{next: next, redis: client, ttl: ttl, logger: logger}
}

// ListServices implements Source.
func (c *CachedSource) ListServices(ctx context.Context) ([]Service, error) {
	data, err := c.redis.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var services []Service
		if jsonErr := json.Unmarshal(data, &services); jsonErr == nil {
			return services, nil
		}
		c.logger.Warn("catalog cache entry unreadable", "key", cacheKey)
	case err != redis.Nil:
		c.logger.Warn("catalog cache read failed", "error", err)
	}

	services, err := c.next.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(services); err == nil {
		if err := c.redis.Set(ctx, cacheKey, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("catalog cache write failed", "error", err)
		}
	}
	return services, nil
}

// Invalidate drops the cached catalog, e.g. after a service is created.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	if err := c.redis.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("catalog: invalidate cache: %w", err)
	}
	return nil
}

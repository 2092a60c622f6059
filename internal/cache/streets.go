package cache

import (
	"context"
	"time"

	"bishroute/internal/domain"
)

const keyStreetDataset = "streets:dataset"

// StreetSnapshot adapts the redis cache to the street cache's snapshot
// store. Entries outlive the in-memory TTL so a restart during an upstream
// outage still has geometry to serve.
type StreetSnapshot struct {
	cache *RedisCache
	ttl   time.Duration
}

func NewStreetSnapshot(cache *RedisCache, ttl time.Duration) *StreetSnapshot {
	return &StreetSnapshot{cache: cache, ttl: ttl}
}

func (s *StreetSnapshot) Store(ctx context.Context, ds *domain.StreetDataset) error {
	return s.cache.SetJSON(ctx, keyStreetDataset, ds, s.ttl)
}

func (s *StreetSnapshot) Load(ctx context.Context) (*domain.StreetDataset, error) {
	var ds domain.StreetDataset
	found, err := s.cache.GetJSON(ctx, keyStreetDataset, &ds)
	if err != nil || !found {
		return nil, err
	}
	return &ds, nil
}

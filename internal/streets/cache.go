package streets

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"bishroute/internal/domain"
)

// Fetcher retrieves raw street geometry from the map data source
type Fetcher interface {
	FetchStreets(ctx context.Context, bbox domain.BoundingBox) ([]domain.StreetSegment, error)
}

// SnapshotStore persists a dataset copy outside the process, consulted when
// the upstream is down and the in-process cache is cold
type SnapshotStore interface {
	Load(ctx context.Context) (*domain.StreetDataset, error)
	Store(ctx context.Context, ds *domain.StreetDataset) error
}

// Cache holds the shared street dataset. Readers get the current dataset
// pointer; a refresh builds a new dataset and swaps it in wholesale, so a
// reader never observes a partial update. Concurrent refreshes collapse
// into one upstream fetch.
type Cache struct {
	fetcher  Fetcher
	snapshot SnapshotStore // may be nil
	bbox     domain.BoundingBox
	ttl      time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time

	current atomic.Pointer[domain.StreetDataset]
	flight  singleflight.Group
}

func NewCache(fetcher Fetcher, snapshot SnapshotStore, bbox domain.BoundingBox, ttl, fetchTimeout time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		fetcher:  fetcher,
		snapshot: snapshot,
		bbox:     bbox,
		ttl:      ttl,
		timeout:  fetchTimeout,
		logger:   logger.With("component", "street_cache"),
		now:      time.Now,
	}
}

// Get returns the cached dataset, refreshing it first when older than the
// TTL. Never blocks indefinitely and never fails: a failed refresh degrades
// to the stale dataset, the external snapshot, or the built-in minimal one.
func (c *Cache) Get(ctx context.Context) *domain.StreetDataset {
	if ds := c.current.Load(); ds != nil && c.now().Sub(ds.FetchedAt) < c.ttl {
		return ds
	}
	return c.refreshShared(false)
}

// ForceRefresh discards the TTL and refetches from upstream
func (c *Cache) ForceRefresh() *domain.StreetDataset {
	return c.refreshShared(true)
}

// Fresh reports whether the cached dataset exists and is within TTL
func (c *Cache) Fresh() bool {
	ds := c.current.Load()
	return ds != nil && c.now().Sub(ds.FetchedAt) < c.ttl
}

func (c *Cache) refreshShared(force bool) *domain.StreetDataset {
	v, _, _ := c.flight.Do("streets", func() (interface{}, error) {
		return c.refresh(force), nil
	})
	return v.(*domain.StreetDataset)
}

func (c *Cache) refresh(force bool) *domain.StreetDataset {
	// Another caller may have completed a refresh while this one waited
	// on the flight group
	if !force {
		if ds := c.current.Load(); ds != nil && c.now().Sub(ds.FetchedAt) < c.ttl {
			return ds
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	segments, err := c.fetcher.FetchStreets(ctx, c.bbox)
	if err == nil && len(segments) > 0 {
		ds := &domain.StreetDataset{Segments: segments, FetchedAt: c.now()}
		c.current.Store(ds)
		c.logger.Info("street dataset refreshed",
			"segments", len(segments),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		c.storeSnapshot(ds)
		return ds
	}

	c.logger.Warn("street fetch failed", "error", err)

	if stale := c.current.Load(); stale != nil {
		c.logger.Warn("serving stale street dataset", "age", c.now().Sub(stale.FetchedAt).String())
		return stale
	}

	if ds := c.loadSnapshot(); ds != nil {
		c.current.Store(ds)
		return ds
	}

	// Last resort. Stamped with the current time so a dead upstream does
	// not get refetched on every request; ForceRefresh recovers earlier.
	ds := FallbackDataset(c.now())
	c.current.Store(ds)
	c.logger.Warn("using built-in minimal street dataset", "segments", len(ds.Segments))
	return ds
}

func (c *Cache) storeSnapshot(ds *domain.StreetDataset) {
	if c.snapshot == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.snapshot.Store(ctx, ds); err != nil {
		c.logger.Error("street snapshot store failed", "error", err)
	}
}

func (c *Cache) loadSnapshot() *domain.StreetDataset {
	if c.snapshot == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ds, err := c.snapshot.Load(ctx)
	if err != nil {
		c.logger.Error("street snapshot load failed", "error", err)
		return nil
	}
	if ds == nil || len(ds.Segments) == 0 {
		return nil
	}

	c.logger.Info("street dataset restored from snapshot", "segments", len(ds.Segments))
	ds.FetchedAt = c.now()
	return ds
}

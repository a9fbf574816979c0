package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"vendas-dashboard/internal/models"
)

// Cache memoizes a source's table for a TTL, keyed by source identity.
// Concurrent callers hitting a stale entry collapse into one refresh
// through singleflight; an extra refetch under contention is acceptable,
// a dogpile is not. The cached slice is shared read-only by callers —
// the engine never mutates its input.
type Cache struct {
	source Source
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.RWMutex
	rows     []models.TransactionLine
	loadedAt time.Time

	group singleflight.Group
}

func NewCache(source Source, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{source: source, ttl: ttl, logger: logger}
}

// Rows returns the cached table, refreshing it from the source when the
// entry is missing or older than the TTL.
func (c *Cache) Rows(ctx context.Context) ([]models.TransactionLine, error) {
	c.mu.RLock()
	rows, loadedAt := c.rows, c.loadedAt
	c.mu.RUnlock()

	if rows != nil && time.Since(loadedAt) < c.ttl {
		return rows, nil
	}
	return c.refresh(ctx)
}

// Refresh discards the cached table and reloads from the source.
func (c *Cache) Refresh(ctx context.Context) ([]models.TransactionLine, error) {
	c.mu.Lock()
	c.rows = nil
	c.mu.Unlock()
	return c.refresh(ctx)
}

func (c *Cache) refresh(ctx context.Context) ([]models.TransactionLine, error) {
	v, err, shared := c.group.Do(c.source.ID(), func() (any, error) {
		rows, err := c.source.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.rows = rows
		c.loadedAt = time.Now()
		c.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("cache refresh shared", "source", c.source.ID())
	}
	return v.([]models.TransactionLine), nil
}

// Stats reports cache contents for the admin endpoint.
func (c *Cache) Stats() (rows int, loadedAt time.Time, sourceID string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows), c.loadedAt, c.source.ID()
}

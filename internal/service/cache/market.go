package cache

import (
	"context"
	"sync"

	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/domain/repository"
	"PolyWatch/pkg/logger"
)

// MarketFetcher loads descriptive metadata for one market.
type MarketFetcher interface {
	Market(ctx context.Context, conditionID string) (*models.MarketMetadata, error)
}

// MarketCache memoizes market metadata for the process lifetime. There is
// no TTL and no cap: cardinality is bounded by the number of distinct
// markets observed. Misses are cached as nil so a market that the Gamma
// API cannot resolve is looked up at most once.
type MarketCache struct {
	mu      sync.Mutex
	entries map[string]*models.MarketMetadata
	fetcher MarketFetcher
	log     *logger.Logger
	metrics repository.Metrics
}

// NewMarketCache creates a market-metadata cache.
func NewMarketCache(fetcher MarketFetcher, log *logger.Logger, metrics repository.Metrics) *MarketCache {
	return &MarketCache{
		entries: make(map[string]*models.MarketMetadata),
		fetcher: fetcher,
		log:     log,
		metrics: metrics,
	}
}

// Get returns the metadata for a market, or nil when the upstream has no
// record of it.
func (c *MarketCache) Get(ctx context.Context, conditionID string) *models.MarketMetadata {
	if conditionID == "" {
		return nil
	}

	c.mu.Lock()
	if m, ok := c.entries[conditionID]; ok {
		c.mu.Unlock()
		c.metrics.RecordCacheHit("market")
		return m
	}
	c.mu.Unlock()
	c.metrics.RecordCacheMiss("market")

	m, err := c.fetcher.Market(ctx, conditionID)
	if err != nil {
		c.log.Warn("market metadata lookup failed",
			logger.String("condition_id", conditionID),
			logger.Error(err),
		)
		m = nil
	}

	c.mu.Lock()
	c.entries[conditionID] = m
	c.mu.Unlock()
	return m
}

// Len returns the number of memoized markets, counting cached misses.
func (c *MarketCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/domain/repository"
	"PolyWatch/pkg/logger"
	"PolyWatch/pkg/util"
)

// ActivityFetcher loads a wallet's recent activity history.
type ActivityFetcher interface {
	WalletActivity(ctx context.Context, address string) ([]models.ActivityRecord, error)
}

type walletEntry struct {
	stats     models.WalletStats
	fetchedAt time.Time
}

// WalletCache memoizes per-wallet trading breadth with a TTL and a hard
// entry cap. An optional Redis tier in front of the upstream fetch lets
// several watchers share one rate budget; the cache is fully functional
// without it.
type WalletCache struct {
	mu         sync.Mutex
	entries    map[string]walletEntry
	fetcher    ActivityFetcher
	ttl        time.Duration
	maxEntries int
	remote     *redis.Client
	prefix     string
	log        *logger.Logger
	metrics    repository.Metrics
}

// WalletOption configures WalletCache.
type WalletOption func(*WalletCache)

// NewWalletCache creates a wallet-history cache.
func NewWalletCache(fetcher ActivityFetcher, log *logger.Logger, metrics repository.Metrics, opts ...WalletOption) *WalletCache {
	c := &WalletCache{
		entries:    make(map[string]walletEntry),
		fetcher:    fetcher,
		ttl:        60 * time.Second,
		maxEntries: 1000,
		prefix:     "polywatch",
		log:        log,
		metrics:    metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTTL sets the freshness deadline for cached stats.
func WithTTL(ttl time.Duration) WalletOption {
	return func(c *WalletCache) { c.ttl = ttl }
}

// WithMaxEntries caps the cache size.
func WithMaxEntries(n int) WalletOption {
	return func(c *WalletCache) { c.maxEntries = n }
}

// WithRemote adds a shared Redis tier consulted before the upstream fetch.
func WithRemote(client *redis.Client, prefix string) WalletOption {
	return func(c *WalletCache) {
		c.remote = client
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// Stats returns a wallet's aggregate history, from cache when fresh.
// An upstream failure yields zero-history stats, which deliberately leans
// toward flagging the wallet rather than silently skipping the trade.
func (c *WalletCache) Stats(ctx context.Context, address string) models.WalletStats {
	c.mu.Lock()
	if e, ok := c.entries[address]; ok && time.Since(e.fetchedAt) < c.ttl {
		c.mu.Unlock()
		c.metrics.RecordCacheHit("wallet")
		return e.stats
	}
	c.mu.Unlock()
	c.metrics.RecordCacheMiss("wallet")

	if stats, ok := c.remoteGet(ctx, address); ok {
		c.store(address, stats)
		return stats
	}

	activities, err := c.fetcher.WalletActivity(ctx, address)
	if err != nil {
		c.log.Warn("treating wallet as zero history",
			logger.String("wallet", util.MaskAddress(address)),
			logger.Error(err),
		)
		activities = nil
	}

	stats := models.ComputeWalletStats(address, activities)
	c.store(address, stats)
	c.remoteSet(ctx, address, stats)
	return stats
}

func (c *WalletCache) store(address string, stats models.WalletStats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[address] = walletEntry{stats: stats, fetchedAt: time.Now()}

	// Evict one arbitrary entry when over the cap; map iteration order
	// serves as the arbitrary pick.
	if len(c.entries) > c.maxEntries {
		for key := range c.entries {
			if key != address {
				delete(c.entries, key)
				break
			}
		}
	}
}

// Len returns the number of cached wallets.
func (c *WalletCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *WalletCache) remoteKey(address string) string {
	return c.prefix + ":wallet:" + address
}

func (c *WalletCache) remoteGet(ctx context.Context, address string) (models.WalletStats, bool) {
	if c.remote == nil {
		return models.WalletStats{}, false
	}
	b, err := c.remote.Get(ctx, c.remoteKey(address)).Bytes()
	if err != nil {
		return models.WalletStats{}, false
	}
	var stats models.WalletStats
	if err := json.Unmarshal(b, &stats); err != nil {
		return models.WalletStats{}, false
	}
	c.metrics.RecordCacheHit("wallet_remote")
	return stats, true
}

func (c *WalletCache) remoteSet(ctx context.Context, address string, stats models.WalletStats) {
	if c.remote == nil {
		return
	}
	b, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.remote.Set(ctx, c.remoteKey(address), b, c.ttl).Err(); err != nil {
		c.log.Debug("remote cache write failed", logger.Error(err))
	}
}

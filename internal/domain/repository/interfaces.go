package repository

import (
	"context"

	"PolyWatch/internal/domain/models"
)

// DataAPI is the upstream read-only surface the pipeline consumes: the
// trade feed, per-wallet activity history, and market metadata. A nil
// result with a nil error means "no data this cycle", not a hard failure.
type DataAPI interface {
	RecentTrades(ctx context.Context, limit int) ([]models.Trade, error)
	WalletActivity(ctx context.Context, address string) ([]models.ActivityRecord, error)
	Market(ctx context.Context, conditionID string) (*models.MarketMetadata, error)
}

// TradeSource supplies each cycle's batch of candidate trades. The poll
// mode fetches over HTTP; the websocket mode drains a buffered feed.
type TradeSource interface {
	NextBatch(ctx context.Context) ([]models.Trade, error)
	Close() error
}

// Sink delivers one alert to a destination. Secondary sinks are
// best-effort: a delivery error is logged by the dispatcher and dropped.
type Sink interface {
	Deliver(ctx context.Context, a *models.Alert) error
	Name() string
}

type Metrics interface {
	RecordCycle(seconds float64)
	RecordStage(stage string, count int)
	RecordAlert(severity string)
	RecordError(kind string)
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordRateLimited(endpoint string)
}

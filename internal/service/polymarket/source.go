package polymarket

import (
	"context"

	"PolyWatch/internal/domain/models"
)

// PollSource fetches each cycle's batch over HTTP. This is the default
// trade source.
type PollSource struct {
	client *Client
	limit  int
}

// NewPollSource creates a poll-mode trade source.
func NewPollSource(client *Client, limit int) *PollSource {
	if limit <= 0 {
		limit = 100
	}
	return &PollSource{client: client, limit: limit}
}

// NextBatch fetches the most recent page of trades.
func (s *PollSource) NextBatch(ctx context.Context) ([]models.Trade, error) {
	return s.client.RecentTrades(ctx, s.limit)
}

// Close is a no-op for the poll source.
func (s *PollSource) Close() error { return nil }

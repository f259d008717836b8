package polymarket

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/time/rate"

	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/domain/repository"
	xhttp "PolyWatch/pkg/http"
	"PolyWatch/pkg/logger"
	"PolyWatch/pkg/util"
)

// Client talks to the Polymarket Data and Gamma APIs with a client-side
// rate limiter and a shared exponential backoff for throttling responses.
type Client struct {
	http          *xhttp.Client
	limiter       *rate.Limiter
	backoff       *Backoff
	dataAPIURL    string
	gammaAPIURL   string
	activityLimit int
	log           *logger.Logger
	metrics       repository.Metrics
}

// Option configures Client.
type Option func(*Client)

// NewClient creates a Polymarket API client.
func NewClient(httpClient *xhttp.Client, backoff *Backoff, log *logger.Logger, metrics repository.Metrics, opts ...Option) *Client {
	c := &Client{
		http:          httpClient,
		limiter:       rate.NewLimiter(rate.Limit(5), 10),
		backoff:       backoff,
		dataAPIURL:    "https://data-api.polymarket.com",
		gammaAPIURL:   "https://gamma-api.polymarket.com",
		activityLimit: 500,
		log:           log,
		metrics:       metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithEndpoints overrides the upstream base URLs.
func WithEndpoints(dataAPIURL, gammaAPIURL string) Option {
	return func(c *Client) {
		c.dataAPIURL = dataAPIURL
		c.gammaAPIURL = gammaAPIURL
	}
}

// WithRateLimit sets the client-side request pacing.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithActivityLimit bounds the wallet history window.
func WithActivityLimit(n int) Option {
	return func(c *Client) {
		c.activityLimit = n
	}
}

// RecentTrades fetches the most recent page of trades from the Data API.
func (c *Client) RecentTrades(ctx context.Context, limit int) ([]models.Trade, error) {
	var trades []models.Trade
	err := c.getJSON(ctx, "trades", c.dataAPIURL+"/trades", map[string]string{
		"limit": strconv.Itoa(limit),
	}, &trades)
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// WalletActivity fetches a wallet's most recent activity records, bounded
// to the configured window. The window approximates lifetime breadth; very
// active wallets may look fresher than they are.
func (c *Client) WalletActivity(ctx context.Context, address string) ([]models.ActivityRecord, error) {
	var activities []models.ActivityRecord
	err := c.getJSON(ctx, "activity", c.dataAPIURL+"/activity", map[string]string{
		"user":  address,
		"limit": strconv.Itoa(c.activityLimit),
	}, &activities)
	if err != nil {
		c.log.Warn("wallet activity fetch failed",
			logger.String("wallet", util.MaskAddress(address)),
			logger.Error(err),
		)
		return nil, err
	}
	return activities, nil
}

// Market fetches descriptive metadata for a market by condition id.
// Returns nil when the Gamma API has no match.
func (c *Client) Market(ctx context.Context, conditionID string) (*models.MarketMetadata, error) {
	var markets []models.MarketMetadata
	err := c.getJSON(ctx, "markets", c.gammaAPIURL+"/markets", map[string]string{
		"condition_ids": conditionID,
	}, &markets)
	if err != nil {
		return nil, err
	}
	if len(markets) == 0 {
		return nil, nil
	}
	return &markets[0], nil
}

// getJSON performs one logical GET, retrying indefinitely on throttling
// with the shared backoff schedule. Any other failure is returned to the
// caller, which treats it as "no data this cycle".
func (c *Client) getJSON(ctx context.Context, endpoint, url string, params map[string]string, dest interface{}) error {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         url,
			QueryParams: params,
		}, dest)
		if err == nil {
			c.backoff.Reset()
			return nil
		}

		if !xhttp.IsThrottled(err) {
			c.metrics.RecordError("upstream_" + endpoint)
			return fmt.Errorf("%s: %w", endpoint, err)
		}

		delay := c.backoff.Next()
		c.metrics.RecordRateLimited(endpoint)
		c.log.Warn("rate limited, backing off",
			logger.String("endpoint", endpoint),
			logger.Duration("delay", delay),
		)
		if err := Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

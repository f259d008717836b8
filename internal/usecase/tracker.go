package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PolyWatch/internal/alert"
	"PolyWatch/internal/detector"
	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/domain/repository"
	"PolyWatch/internal/service/cache"
	"PolyWatch/internal/service/polymarket"
	"PolyWatch/pkg/logger"
)

// Config holds the tracker's filter thresholds and cycle cadence. The
// classifier carries its own tier thresholds separately.
type Config struct {
	MinTradeUSD       float64
	MaxPriceThreshold float64
	PollInterval      time.Duration
}

// Status is a snapshot of the tracker's progress for the ops endpoint.
type Status struct {
	Cycles         int64     `json:"cycles"`
	LastCycleAt    time.Time `json:"last_cycle_at"`
	LastFetched    int       `json:"last_fetched"`
	LastNew        int       `json:"last_new"`
	LastCandidates int       `json:"last_candidates"`
	LastAlerts     int       `json:"last_alerts"`
	TotalAlerts    int64     `json:"total_alerts"`
	HighAlerts     int64     `json:"high_alerts"`
	MediumAlerts   int64     `json:"medium_alerts"`
	LowAlerts      int64     `json:"low_alerts"`
}

// Tracker runs the detection pipeline: one cycle fetches a batch,
// deduplicates it, filters for significant aggressive buys, classifies
// each survivor against its wallet history and dispatches alerts. Cycles
// run strictly one at a time; cancellation is observed between cycles so
// an in-flight cycle always finishes.
type Tracker struct {
	source     repository.TradeSource
	wallets    *cache.WalletCache
	markets    *cache.MarketCache
	classifier *detector.Classifier
	dedup      *detector.SeenSet
	noise      *detector.NoiseFilter
	dispatcher *alert.Dispatcher
	cfg        Config
	log        *logger.Logger
	metrics    repository.Metrics

	mu     sync.Mutex
	status Status

	// cycleCtx governs upstream calls inside a cycle. Shutdown cancels
	// only the loop, so an in-flight cycle always finishes un-aborted;
	// cancellation is observed between cycles.
	cycleCtx context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewTracker creates the pipeline orchestrator.
func NewTracker(
	source repository.TradeSource,
	wallets *cache.WalletCache,
	markets *cache.MarketCache,
	classifier *detector.Classifier,
	dedup *detector.SeenSet,
	noise *detector.NoiseFilter,
	dispatcher *alert.Dispatcher,
	cfg Config,
	log *logger.Logger,
	metrics repository.Metrics,
) *Tracker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Tracker{
		source:     source,
		wallets:    wallets,
		markets:    markets,
		classifier: classifier,
		dedup:      dedup,
		noise:      noise,
		dispatcher: dispatcher,
		cfg:        cfg,
		log:        log,
		metrics:    metrics,
		done:       make(chan struct{}),
	}
}

// Start probes the feed once, then launches the poll loop. A failed
// probe is fatal: it almost always means a misconfigured endpoint, and
// failing fast beats retrying into the void at startup.
func (t *Tracker) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(ctx)
	t.cycleCtx = ctx
	t.cancel = cancel

	// The websocket source runs its own connect loop.
	if s, ok := t.source.(interface{ Start(context.Context) }); ok {
		s.Start(loopCtx)
	}

	first, err := t.source.NextBatch(ctx)
	if err != nil {
		return fmt.Errorf("initial trade fetch: %w", err)
	}

	go t.runLoop(loopCtx, first)
	return nil
}

// Shutdown cancels the loop and waits for the in-flight cycle to finish.
func (t *Tracker) Shutdown(ctx context.Context) error {
	if t.cancel != nil {
		t.cancel()
	}
	select {
	case <-t.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return t.source.Close()
}

// Status returns the latest progress snapshot.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Tracker) runLoop(loopCtx context.Context, first []models.Trade) {
	defer close(t.done)

	t.safeCycle(t.cycleCtx, first)

	for {
		// The only cancellation check: after the sleep, before the fetch.
		if polymarket.Sleep(loopCtx, t.cfg.PollInterval) != nil {
			return
		}

		batch, err := t.source.NextBatch(t.cycleCtx)
		if err != nil {
			if t.cycleCtx.Err() != nil {
				return
			}
			t.metrics.RecordError("fetch")
			t.log.Warn("trade fetch failed", logger.Error(err))
			continue
		}
		t.safeCycle(t.cycleCtx, batch)
	}
}

// safeCycle contains a panic to the cycle that raised it. State mutated
// mid-cycle (dedup marks, cache entries) is kept; the next cycle starts
// clean.
func (t *Tracker) safeCycle(ctx context.Context, batch []models.Trade) {
	defer func() {
		if r := recover(); r != nil {
			t.metrics.RecordError("cycle_panic")
			t.log.Error("cycle panicked", logger.Any("panic", r))
		}
	}()
	t.runCycle(ctx, batch)
}

func (t *Tracker) runCycle(ctx context.Context, batch []models.Trade) {
	start := time.Now()

	// Dedup the whole batch before any filtering, so a slow downstream
	// stage cannot cause the next cycle to re-admit these identifiers.
	fresh := t.dedup.FilterNew(batch)

	candidates := make([]models.Trade, 0, len(fresh))
	for i := range fresh {
		tr := &fresh[i]
		tr.ComputeValueUSD()

		if t.noise.Matches(*tr) {
			continue
		}
		if tr.ValueUSD < t.cfg.MinTradeUSD {
			continue
		}
		if !tr.IsTakerBuy() || tr.ProxyWallet == "" {
			continue
		}
		if t.cfg.MaxPriceThreshold > 0 && tr.Price.Float64() >= t.cfg.MaxPriceThreshold {
			continue
		}
		candidates = append(candidates, *tr)
	}

	// Sequential classification keeps alert order aligned with feed order.
	alerts := 0
	var high, medium, low int64
	for _, tr := range candidates {
		stats := t.wallets.Stats(ctx, tr.ProxyWallet)
		a := t.classifier.Classify(tr, stats)
		if a == nil {
			continue
		}
		a.Market = t.markets.Get(ctx, tr.ConditionID)
		t.dispatcher.Dispatch(ctx, a)
		alerts++
		switch a.Severity {
		case models.SeverityHigh:
			high++
		case models.SeverityMedium:
			medium++
		default:
			low++
		}
	}

	t.metrics.RecordStage("fetched", len(batch))
	t.metrics.RecordStage("new", len(fresh))
	t.metrics.RecordStage("candidates", len(candidates))
	t.metrics.RecordStage("alerts", alerts)
	t.metrics.RecordCycle(time.Since(start).Seconds())

	t.mu.Lock()
	t.status.Cycles++
	t.status.LastCycleAt = time.Now().UTC()
	t.status.LastFetched = len(batch)
	t.status.LastNew = len(fresh)
	t.status.LastCandidates = len(candidates)
	t.status.LastAlerts = alerts
	t.status.TotalAlerts += int64(alerts)
	t.status.HighAlerts += high
	t.status.MediumAlerts += medium
	t.status.LowAlerts += low
	t.mu.Unlock()

	summary := []logger.Field{
		logger.Int("fetched", len(batch)),
		logger.Int("new", len(fresh)),
		logger.Int("candidates", len(candidates)),
		logger.Int("alerts", alerts),
		logger.Duration("took", time.Since(start)),
	}
	if alerts > 0 {
		t.log.Info("cycle complete", summary...)
	} else {
		t.log.Debug("cycle complete", summary...)
	}
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"PolyWatch/internal/alert"
	"PolyWatch/internal/detector"
	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/service/cache"
	"PolyWatch/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordCycle(float64)      {}
func (nopMetrics) RecordStage(string, int)  {}
func (nopMetrics) RecordAlert(string)       {}
func (nopMetrics) RecordError(string)       {}
func (nopMetrics) RecordCacheHit(string)    {}
func (nopMetrics) RecordCacheMiss(string)   {}
func (nopMetrics) RecordRateLimited(string) {}

type fakeSource struct {
	batches [][]models.Trade
	err     error
	calls   int
}

func (s *fakeSource) NextBatch(_ context.Context) ([]models.Trade, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.batches) == 0 {
		return nil, nil
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	return batch, nil
}

func (s *fakeSource) Close() error { return nil }

type fakeAPI struct {
	activities map[string][]models.ActivityRecord
	markets    map[string]*models.MarketMetadata
}

func (a *fakeAPI) WalletActivity(_ context.Context, address string) ([]models.ActivityRecord, error) {
	return a.activities[address], nil
}

func (a *fakeAPI) Market(_ context.Context, conditionID string) (*models.MarketMetadata, error) {
	return a.markets[conditionID], nil
}

type captureSink struct {
	alerts []*models.Alert
}

func (s *captureSink) Deliver(_ context.Context, a *models.Alert) error {
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *captureSink) Name() string { return "capture" }

func newTestTracker(source *fakeSource, api *fakeAPI, sink *captureSink) *Tracker {
	log := logger.Nop()
	m := nopMetrics{}
	return NewTracker(
		source,
		cache.NewWalletCache(api, log, m),
		cache.NewMarketCache(api, log, m),
		detector.NewClassifier(5000, 5),
		detector.NewSeenSet(10000),
		detector.NewNoiseFilter(nil),
		alert.NewDispatcher(log, m, sink),
		Config{MinTradeUSD: 1000, MaxPriceThreshold: 0.35, PollInterval: time.Second},
		log,
		m,
	)
}

func buyTrade(wallet string, price, size float64) models.Trade {
	return models.Trade{
		ProxyWallet: wallet,
		Side:        "BUY",
		ConditionID: "c1",
		Price:       models.Numeric(price),
		Size:        models.Numeric(size),
		Timestamp:   time.Now().Unix(),
		Title:       "Will the Fed cut rates in September?",
		Outcome:     "Yes",
	}
}

func TestCycleEmitsHighAlertForFreshWallet(t *testing.T) {
	wallet := "0x1234567890abcdef1234567890abcdef12345678"
	source := &fakeSource{}
	api := &fakeAPI{
		activities: map[string][]models.ActivityRecord{
			wallet: {{Type: "TRADE", Side: "BUY", ConditionID: "older-market"}},
		},
		markets: map[string]*models.MarketMetadata{
			"c1": {ConditionID: "c1", Question: "Will the Fed cut rates in September?"},
		},
	}
	sink := &captureSink{}
	tr := newTestTracker(source, api, sink)

	// One $6,000 aggressive buy from a wallet with a single prior market.
	tr.runCycle(context.Background(), []models.Trade{buyTrade(wallet, 0.30, 20000)})

	if len(sink.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(sink.alerts))
	}
	a := sink.alerts[0]
	if a.Severity != models.SeverityHigh {
		t.Fatalf("severity = %s, want HIGH", a.Severity)
	}
	if !strings.Contains(a.Reason, "Brand New Wallet") {
		t.Fatalf("reason %q missing brand-new clause", a.Reason)
	}
	if !strings.Contains(a.Reason, "1 lifetime markets") {
		t.Fatalf("reason %q missing market count", a.Reason)
	}
	if a.Market == nil || a.Market.ConditionID != "c1" {
		t.Fatalf("market metadata not attached: %+v", a.Market)
	}
}

func TestCycleFiltersBeforeClassification(t *testing.T) {
	wallet := "0x1234567890abcdef1234567890abcdef12345678"
	source := &fakeSource{}
	api := &fakeAPI{}
	sink := &captureSink{}
	tr := newTestTracker(source, api, sink)

	sell := buyTrade(wallet, 0.30, 20000)
	sell.Side = "SELL"

	small := buyTrade(wallet, 0.30, 10) // $3

	pricey := buyTrade(wallet, 0.80, 10000) // $8,000 but above price ceiling
	pricey.Timestamp += 1

	anonymous := buyTrade("", 0.30, 20000)

	tr.runCycle(context.Background(), []models.Trade{sell, small, pricey, anonymous})

	if len(sink.alerts) != 0 {
		t.Fatalf("expected no alerts, got %d", len(sink.alerts))
	}
}

func TestCycleDeduplicatesAcrossCycles(t *testing.T) {
	wallet := "0x1234567890abcdef1234567890abcdef12345678"
	source := &fakeSource{}
	api := &fakeAPI{}
	sink := &captureSink{}
	tr := newTestTracker(source, api, sink)

	trade := buyTrade(wallet, 0.30, 20000)
	tr.runCycle(context.Background(), []models.Trade{trade})
	tr.runCycle(context.Background(), []models.Trade{trade})

	if len(sink.alerts) != 1 {
		t.Fatalf("duplicate trade alerted twice: %d alerts", len(sink.alerts))
	}
}

func TestCyclePanicIsContained(t *testing.T) {
	source := &fakeSource{}
	sink := &captureSink{}
	tr := newTestTracker(source, &fakeAPI{}, sink)
	tr.classifier = nil // force a nil dereference inside the cycle

	wallet := "0x1234567890abcdef1234567890abcdef12345678"
	tr.safeCycle(context.Background(), []models.Trade{buyTrade(wallet, 0.30, 20000)})
}

type slowAPI struct {
	delay     time.Duration
	sawCancel bool
}

func (a *slowAPI) WalletActivity(ctx context.Context, _ string) ([]models.ActivityRecord, error) {
	time.Sleep(a.delay)
	if ctx.Err() != nil {
		a.sawCancel = true
		return nil, ctx.Err()
	}
	return []models.ActivityRecord{{Type: "TRADE", Side: "BUY", ConditionID: "older-market"}}, nil
}

func (a *slowAPI) Market(_ context.Context, _ string) (*models.MarketMetadata, error) {
	return nil, nil
}

func TestShutdownLetsInFlightCycleFinish(t *testing.T) {
	wallet := "0x1234567890abcdef1234567890abcdef12345678"
	api := &slowAPI{delay: 50 * time.Millisecond}
	sink := &captureSink{}
	log := logger.Nop()
	m := nopMetrics{}

	source := &fakeSource{batches: [][]models.Trade{{buyTrade(wallet, 0.30, 20000)}}}
	tr := NewTracker(
		source,
		cache.NewWalletCache(api, log, m),
		cache.NewMarketCache(api, log, m),
		detector.NewClassifier(5000, 5),
		detector.NewSeenSet(10000),
		detector.NewNoiseFilter(nil),
		alert.NewDispatcher(log, m, sink),
		Config{MinTradeUSD: 1000, MaxPriceThreshold: 0.35, PollInterval: time.Second},
		log,
		m,
	)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Let the first cycle reach its wallet fetch, then stop.
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tr.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if api.sawCancel {
		t.Fatal("in-flight wallet fetch was aborted by shutdown")
	}
	if len(sink.alerts) != 1 {
		t.Fatalf("in-flight cycle did not finish: %d alerts", len(sink.alerts))
	}
	if sink.alerts[0].Severity != models.SeverityHigh {
		t.Fatalf("severity = %s, want HIGH", sink.alerts[0].Severity)
	}
}

func TestStartFailsOnInitialFetchError(t *testing.T) {
	source := &fakeSource{err: errors.New("dns failure")}
	tr := newTestTracker(source, &fakeAPI{}, &captureSink{})

	if err := tr.Start(context.Background()); err == nil {
		t.Fatal("expected startup probe failure to be fatal")
	}
}

func TestStatusTracksCycleCounts(t *testing.T) {
	wallet := "0x1234567890abcdef1234567890abcdef12345678"
	source := &fakeSource{}
	sink := &captureSink{}
	tr := newTestTracker(source, &fakeAPI{}, sink)

	tr.runCycle(context.Background(), []models.Trade{buyTrade(wallet, 0.30, 20000)})

	st := tr.Status()
	if st.Cycles != 1 || st.LastFetched != 1 || st.LastAlerts != 1 || st.TotalAlerts != 1 {
		t.Fatalf("unexpected status: %+v", st)
	}
}

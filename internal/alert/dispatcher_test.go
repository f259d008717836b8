package alert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PolyWatch/internal/domain/models"
	xhttp "PolyWatch/pkg/http"
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

type captureSink struct {
	name      string
	delivered []*models.Alert
	err       error
}

func (s *captureSink) Deliver(_ context.Context, a *models.Alert) error {
	s.delivered = append(s.delivered, a)
	return s.err
}

func (s *captureSink) Name() string { return s.name }

func sampleAlert() *models.Alert {
	return &models.Alert{
		Trade: models.Trade{
			ProxyWallet: "0x1234567890abcdef1234567890abcdef12345678",
			Side:        "BUY",
			Title:       "Will the Fed cut rates in September?",
			Outcome:     "Yes",
			Price:       0.28,
			Size:        25000,
			ValueUSD:    7000,
		},
		Wallet: models.WalletStats{
			Address:       "0x1234567890abcdef1234567890abcdef12345678",
			UniqueMarkets: 1,
			TotalTrades:   1,
		},
		Reason:   "Fresh Wallet (1 lifetime markets) | Taker BUY (aggressive) | Large Position ($7000.00)",
		Severity: models.SeverityHigh,
		At:       time.Now().UTC(),
	}
}

func TestDispatchDeliversToAllSinks(t *testing.T) {
	first := &captureSink{name: "first"}
	second := &captureSink{name: "second"}
	d := NewDispatcher(logger.Nop(), nopMetrics{}, first, second)

	d.Dispatch(context.Background(), sampleAlert())

	if len(first.delivered) != 1 || len(second.delivered) != 1 {
		t.Fatalf("delivery counts: %d, %d", len(first.delivered), len(second.delivered))
	}
}

func TestDispatchFailingSinkDoesNotBlockOthers(t *testing.T) {
	broken := &captureSink{name: "broken", err: errors.New("endpoint down")}
	healthy := &captureSink{name: "healthy"}
	d := NewDispatcher(logger.Nop(), nopMetrics{}, broken, healthy)

	d.Dispatch(context.Background(), sampleAlert())

	if len(healthy.delivered) != 1 {
		t.Fatal("healthy sink skipped after earlier failure")
	}
}

func TestWebhookSinkPostsEmbed(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(xhttp.NewClient(), srv.URL)
	if err := sink.Deliver(context.Background(), sampleAlert()); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if len(got.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(got.Embeds))
	}
	embed := got.Embeds[0]
	if embed.Color != 0xFF0000 {
		t.Fatalf("color = %#x, want red", embed.Color)
	}

	var wallet string
	for _, f := range embed.Fields {
		if f.Name == "Wallet" {
			wallet = f.Value
		}
	}
	if wallet != "0x1234...5678" {
		t.Fatalf("wallet not masked: %q", wallet)
	}
}

func TestWebhookSinkReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewWebhookSink(xhttp.NewClient(), srv.URL)
	if err := sink.Deliver(context.Background(), sampleAlert()); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

package detector

import (
	"strings"
	"testing"

	"PolyWatch/internal/domain/models"
)

func candidate(valueUSD float64) models.Trade {
	return models.Trade{
		ProxyWallet: "0x1234567890abcdef1234567890abcdef12345678",
		Side:        "BUY",
		ValueUSD:    valueUSD,
	}
}

func statsWithMarkets(n int) models.WalletStats {
	return models.WalletStats{
		Address:       "0x1234567890abcdef1234567890abcdef12345678",
		UniqueMarkets: n,
		TotalTrades:   n * 2,
	}
}

func TestClassifyTiers(t *testing.T) {
	c := NewClassifier(5000, 5)

	cases := []struct {
		name          string
		uniqueMarkets int
		valueUSD      float64
		want          models.Severity
		wantNil       bool
	}{
		{"brand new wallet small bet", 1, 10, models.SeverityHigh, false},
		{"large position at threshold", 2, 5000, models.SeverityHigh, false},
		{"just under large threshold", 2, 4999, models.SeverityMedium, false},
		{"fresh but active", 5, 100000, models.SeverityLow, false},
		{"over freshness ceiling", 6, 100000, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alert := c.Classify(candidate(tc.valueUSD), statsWithMarkets(tc.uniqueMarkets))
			if tc.wantNil {
				if alert != nil {
					t.Fatalf("expected no alert, got %+v", alert)
				}
				return
			}
			if alert == nil {
				t.Fatal("expected an alert, got nil")
			}
			if alert.Severity != tc.want {
				t.Fatalf("severity = %s, want %s", alert.Severity, tc.want)
			}
		})
	}
}

func TestClassifyReasonClauses(t *testing.T) {
	c := NewClassifier(5000, 5)

	alert := c.Classify(candidate(6000), statsWithMarkets(2))
	if alert == nil {
		t.Fatal("expected an alert")
	}
	for _, clause := range []string{
		"Fresh Wallet (2 lifetime markets)",
		"Taker BUY (aggressive)",
		"Large Position ($6000.00)",
	} {
		if !strings.Contains(alert.Reason, clause) {
			t.Fatalf("reason %q missing clause %q", alert.Reason, clause)
		}
	}

	alert = c.Classify(candidate(10), statsWithMarkets(1))
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if !strings.Contains(alert.Reason, "Brand New Wallet") {
		t.Fatalf("reason %q missing brand-new clause", alert.Reason)
	}
	if !strings.Contains(alert.Reason, "(1 lifetime markets)") {
		t.Fatalf("reason %q missing market count", alert.Reason)
	}
}

func TestClassifyLargePositionBeatsBrandNew(t *testing.T) {
	c := NewClassifier(5000, 5)

	alert := c.Classify(candidate(9000), statsWithMarkets(0))
	if alert == nil || alert.Severity != models.SeverityHigh {
		t.Fatalf("expected HIGH, got %+v", alert)
	}
	if !strings.Contains(alert.Reason, "Large Position") {
		t.Fatalf("expected large-position clause to win, got %q", alert.Reason)
	}
}

func TestClassifyDefaultThresholds(t *testing.T) {
	c := NewClassifier(0, 0)

	if alert := c.Classify(candidate(100), statsWithMarkets(5)); alert == nil {
		t.Fatal("default ceiling should admit 5 markets")
	}
	if alert := c.Classify(candidate(100), statsWithMarkets(6)); alert != nil {
		t.Fatalf("default ceiling should reject 6 markets, got %+v", alert)
	}
}

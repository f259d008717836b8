package detector

import (
	"fmt"
	"strings"
	"time"

	"PolyWatch/internal/domain/models"
)

// Classifier applies the insider-likelihood tiers to a candidate trade.
// Callers filter first: only taker BUYs at or above the minimum USD value
// with a non-empty wallet address reach Classify. The classifier itself is
// a pure function of the wallet's market breadth and the trade's value.
type Classifier struct {
	largeTradeUSD    float64
	freshMarketLimit int
}

// NewClassifier creates a classifier with the given large-position
// threshold and freshness ceiling.
func NewClassifier(largeTradeUSD float64, freshMarketLimit int) *Classifier {
	if largeTradeUSD <= 0 {
		largeTradeUSD = 5000
	}
	if freshMarketLimit <= 0 {
		freshMarketLimit = 5
	}
	return &Classifier{
		largeTradeUSD:    largeTradeUSD,
		freshMarketLimit: freshMarketLimit,
	}
}

// Classify returns an alert for a fresh-wallet trade, or nil when the
// wallet has too much history to be interesting. Tiers are evaluated in
// order, first match wins.
func (c *Classifier) Classify(trade models.Trade, stats models.WalletStats) *models.Alert {
	clauses := []string{
		fmt.Sprintf("Fresh Wallet (%d lifetime markets)", stats.UniqueMarkets),
		"Taker BUY (aggressive)",
	}

	var severity models.Severity
	switch {
	case stats.UniqueMarkets <= 2 && trade.ValueUSD >= c.largeTradeUSD:
		severity = models.SeverityHigh
		clauses = append(clauses, fmt.Sprintf("Large Position ($%.2f)", trade.ValueUSD))
		if stats.UniqueMarkets <= 1 {
			clauses = append(clauses, "Brand New Wallet")
		}
	case stats.UniqueMarkets <= 1:
		severity = models.SeverityHigh
		clauses = append(clauses, "Brand New Wallet")
	case stats.UniqueMarkets <= 3:
		severity = models.SeverityMedium
	case stats.UniqueMarkets <= c.freshMarketLimit:
		severity = models.SeverityLow
	default:
		return nil
	}

	return &models.Alert{
		Trade:    trade,
		Wallet:   stats,
		Reason:   strings.Join(clauses, " | "),
		Severity: severity,
		At:       time.Now().UTC(),
	}
}

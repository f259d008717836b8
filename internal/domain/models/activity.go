package models

// ActivityRecord is one entry of a wallet's activity history from the
// Data API activity endpoint. Non-trade record types (deposits, rewards)
// carry no Side and do not count toward market breadth.
type ActivityRecord struct {
	ProxyWallet string  `json:"proxyWallet,omitempty"`
	Type        string  `json:"type,omitempty"`
	Side        string  `json:"side,omitempty"`
	ConditionID string  `json:"conditionId,omitempty"`
	Slug        string  `json:"slug,omitempty"`
	Size        Numeric `json:"size,omitempty"`
	Price       Numeric `json:"price,omitempty"`
	Timestamp   int64   `json:"timestamp,omitempty"`
}

// IsTrade reports whether the record counts as trading activity.
func (a ActivityRecord) IsTrade() bool {
	return a.Type == "TRADE" || a.Type == "trade" || a.Side != ""
}

// MarketKey returns the identifier used to count distinct markets.
func (a ActivityRecord) MarketKey() string {
	if a.ConditionID != "" {
		return a.ConditionID
	}
	return a.Slug
}

// WalletStats is the aggregate trading breadth of one wallet, derived from
// its recent activity history at lookup time.
//
// Invariant: UniqueMarkets <= TotalTrades.
type WalletStats struct {
	Address       string `json:"address"`
	UniqueMarkets int    `json:"uniqueMarkets"`
	TotalTrades   int    `json:"totalTrades"`
	FirstActivity int64  `json:"firstActivity,omitempty"`
}

// ComputeWalletStats folds an activity history into per-wallet aggregates.
func ComputeWalletStats(address string, activities []ActivityRecord) WalletStats {
	markets := make(map[string]struct{})
	stats := WalletStats{Address: address}

	for _, a := range activities {
		if a.Timestamp > 0 && (stats.FirstActivity == 0 || a.Timestamp < stats.FirstActivity) {
			stats.FirstActivity = a.Timestamp
		}
		if !a.IsTrade() {
			continue
		}
		if key := a.MarketKey(); key != "" {
			markets[key] = struct{}{}
		}
		stats.TotalTrades++
	}

	stats.UniqueMarkets = len(markets)
	return stats
}

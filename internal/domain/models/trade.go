package models

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Numeric is a float64 that tolerates the Data API's habit of switching
// between JSON numbers and quoted strings. Malformed values decode as 0.
type Numeric float64

func (n *Numeric) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Numeric(f)
	return nil
}

func (n Numeric) Float64() float64 { return float64(n) }

// Trade is one executed order fill from the Data API trades feed.
// Immutable after fetch; ValueUSD is derived once during ingestion.
type Trade struct {
	ProxyWallet     string  `json:"proxyWallet"`
	Side            string  `json:"side"`
	Asset           string  `json:"asset,omitempty"`
	ConditionID     string  `json:"conditionId,omitempty"`
	Size            Numeric `json:"size"`
	Price           Numeric `json:"price"`
	Timestamp       int64   `json:"timestamp"`
	Title           string  `json:"title,omitempty"`
	Slug            string  `json:"slug,omitempty"`
	EventSlug       string  `json:"eventSlug,omitempty"`
	Outcome         string  `json:"outcome,omitempty"`
	OutcomeIndex    int     `json:"outcomeIndex,omitempty"`
	Pseudonym       string  `json:"pseudonym,omitempty"`
	TransactionHash string  `json:"transactionHash,omitempty"`

	ValueUSD float64 `json:"-"`
}

// ComputeValueUSD derives and attaches the trade's USD notional.
func (t *Trade) ComputeValueUSD() float64 {
	t.ValueUSD = t.Price.Float64() * t.Size.Float64()
	return t.ValueUSD
}

// UniqueID identifies a trade for deduplication. The feed carries no stable
// server-side id, so the composite of wallet, match time and size is used.
func (t *Trade) UniqueID() string {
	return fmt.Sprintf("%s-%d-%g", t.ProxyWallet, t.Timestamp, t.Size.Float64())
}

// IsTakerBuy reports whether the aggressor side of the fill was a BUY.
func (t *Trade) IsTakerBuy() bool {
	return t.Side == "BUY" || t.Side == "buy"
}

// MatchedAt returns the match timestamp as wall-clock time.
func (t *Trade) MatchedAt() time.Time {
	return time.Unix(t.Timestamp, 0).UTC()
}

// MarketURL builds the public market page for the trade, when known.
func (t *Trade) MarketURL() string {
	switch {
	case t.EventSlug != "":
		return "https://polymarket.com/event/" + t.EventSlug
	case t.Slug != "":
		return "https://polymarket.com/event/" + t.Slug
	default:
		return "https://polymarket.com"
	}
}

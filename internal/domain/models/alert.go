package models

import "time"

// Severity is the alert tier assigned by the classifier.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Color returns the webhook embed color for the severity.
func (s Severity) Color() int {
	switch s {
	case SeverityHigh:
		return 0xFF0000
	case SeverityMedium:
		return 0xFFA500
	default:
		return 0x00FF00
	}
}

// Alert is the decision artifact for one qualifying trade. Created once,
// never mutated, consumed by the dispatcher and discarded.
type Alert struct {
	Trade    Trade           `json:"trade"`
	Wallet   WalletStats     `json:"wallet"`
	Market   *MarketMetadata `json:"market,omitempty"` // nil when the lookup failed
	Reason   string          `json:"reason"`
	Severity Severity        `json:"severity"`
	At       time.Time       `json:"at"`
}

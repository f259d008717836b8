package models

// MarketMetadata is the descriptive record for a market from the Gamma API.
// Treated as static for the process lifetime and memoized without TTL.
type MarketMetadata struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	ConditionID string `json:"conditionId"`
	Slug        string `json:"slug"`
	Outcomes    string `json:"outcomes"` // JSON array encoded as a string
	Active      bool   `json:"active"`
	Closed      bool   `json:"closed"`
}

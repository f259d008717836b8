package detector

import (
	"strings"

	"PolyWatch/internal/domain/models"
)

// NoiseFilter drops trades in markets whose question text matches known
// high-churn entertainment categories. Those markets attract large casual
// bets that would otherwise dominate the alert stream.
type NoiseFilter struct {
	keywords []string
}

// NewNoiseFilter creates a filter over the given keywords. Matching is
// case-insensitive against the market title, slug, and event slug.
func NewNoiseFilter(keywords []string) *NoiseFilter {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}
	return &NoiseFilter{keywords: lowered}
}

// Matches reports whether the trade belongs to a noise market.
func (f *NoiseFilter) Matches(t models.Trade) bool {
	haystack := strings.ToLower(t.Title + " " + t.Slug + " " + t.EventSlug)
	for _, k := range f.keywords {
		if strings.Contains(haystack, k) {
			return true
		}
	}
	return false
}

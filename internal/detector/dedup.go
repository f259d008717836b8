package detector

import "PolyWatch/internal/domain/models"

// SeenSet remembers which trade identifiers have already been evaluated.
// It is bounded: when the cap is reached the oldest half is evicted in one
// sweep, so identifiers seen long ago may be re-admitted under sustained
// volume. The zero value is not usable; construct with NewSeenSet.
type SeenSet struct {
	ids   map[string]struct{}
	order []string
	max   int
}

// NewSeenSet creates a dedup set holding at most max identifiers.
func NewSeenSet(max int) *SeenSet {
	if max <= 0 {
		max = 10000
	}
	return &SeenSet{
		ids: make(map[string]struct{}, max),
		max: max,
	}
}

// FilterNew returns the trades not seen before, in feed order, and marks
// the whole batch as seen before returning. Marking the full batch up
// front means a slow downstream stage can never cause a later cycle to
// re-admit an identifier from this one.
func (s *SeenSet) FilterNew(trades []models.Trade) []models.Trade {
	fresh := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		id := t.UniqueID()
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.add(id)
		fresh = append(fresh, t)
	}
	return fresh
}

func (s *SeenSet) add(id string) {
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)

	if len(s.order) > s.max {
		cut := s.max / 2
		for _, old := range s.order[:cut] {
			delete(s.ids, old)
		}
		s.order = append(s.order[:0], s.order[cut:]...)
	}
}

// Len returns the number of identifiers currently held.
func (s *SeenSet) Len() int { return len(s.ids) }

// ABOUTME: Offer-to-entry matching for the reconciliation pass
// ABOUTME: MatchKey index with first-match-wins consume semantics
package catalog

import "github.com/harperreed/chollosync/models"

// OfferMatcher indexes one pass's canonicalized offers by MatchKey.
// Each offer can be consumed at most once; each entry takes at most one
// offer. First match wins, no backtracking.
type OfferMatcher struct {
	offers   []models.Offer
	byKey    map[models.MatchKey][]int
	consumed []bool
}

// NewOfferMatcher creates a matcher over the pass's offers.
func NewOfferMatcher(offers []models.Offer) *OfferMatcher {
	m := &OfferMatcher{
		offers:   offers,
		byKey:    make(map[models.MatchKey][]int),
		consumed: make([]bool, len(offers)),
	}

	for i := range offers {
		key := offers[i].Key()
		m.byKey[key] = append(m.byKey[key], i)
	}

	return m
}

// Take returns the first unconsumed offer for key and marks it consumed.
func (m *OfferMatcher) Take(key models.MatchKey) (*models.Offer, bool) {
	for _, i := range m.byKey[key] {
		if m.consumed[i] {
			continue
		}
		m.consumed[i] = true
		return &m.offers[i], true
	}
	return nil, false
}

// Unconsumed returns the offers never taken, in scrape order. These are
// the candidates for creation.
func (m *OfferMatcher) Unconsumed() []*models.Offer {
	var rest []*models.Offer
	for i := range m.offers {
		if !m.consumed[i] {
			rest = append(rest, &m.offers[i])
		}
	}
	return rest
}

// Len returns the number of offers in the pass.
func (m *OfferMatcher) Len() int {
	return len(m.offers)
}

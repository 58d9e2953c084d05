package analysis

import "github.com/phrazzld/cardsort-api/internal/domain"

const (
	// DefaultAnalysisSetSize is the number of cards analyzed when the caller
	// does not choose one.
	DefaultAnalysisSetSize = 24

	// MinAnalysisSetSize is the smallest analysis set a caller may request.
	MinAnalysisSetSize = 2
)

// Options configures one analysis run.
type Options struct {
	// AnalysisSetSize is how many cards, taken from the front of the deck,
	// are analyzed. Clamped to [2, len(deck)].
	AnalysisSetSize int `json:"analysis_set_size"`

	// Linkage is the clustering linkage. Empty means average.
	Linkage Linkage `json:"linkage"`

	// ReorderByDendrogram orders the heatmap by dendrogram leaf order instead
	// of deck order.
	ReorderByDendrogram bool `json:"reorder_by_dendrogram"`
}

// NewDefaultOptions returns the defaults: 24 cards, average linkage, heatmap
// reordered by the dendrogram.
func NewDefaultOptions() Options {
	return Options{
		AnalysisSetSize:     DefaultAnalysisSetSize,
		Linkage:             LinkageAverage,
		ReorderByDendrogram: true,
	}
}

// ClampSetSize bounds a requested analysis set size by the minimum of 2 and by
// the number of available cards. Decks with fewer than 2 cards yield their
// own size.
func ClampSetSize(requested, available int) int {
	size := max(requested, MinAnalysisSetSize)
	return max(min(size, available), 0)
}

// SelectAnalysisSet returns the first cards of the deck after clamping size.
// The returned slice is a copy.
func SelectAnalysisSet(cards []domain.Card, size int) []domain.Card {
	n := ClampSetSize(size, len(cards))
	out := make([]domain.Card, n)
	copy(out, cards[:n])
	return out
}

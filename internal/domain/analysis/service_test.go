package analysis

import (
	"fmt"
	"testing"

	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deck(n int) []domain.Card {
	cards := make([]domain.Card, n)
	for i := range cards {
		cards[i] = domain.Card{ID: fmt.Sprintf("c%d", i), Label: fmt.Sprintf("Card %d", i)}
	}
	return cards
}

func TestClampSetSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		requested, available, want int
	}{
		{24, 30, 24},
		{24, 10, 10},
		{1, 10, 2},
		{-5, 10, 2},
		{2, 1, 1},
		{5, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampSetSize(tt.requested, tt.available), "%+v", tt)
	}
}

func TestSelectAnalysisSetTakesDeckPrefix(t *testing.T) {
	t.Parallel()

	cards := deck(5)
	set := SelectAnalysisSet(cards, 3)
	assert.Equal(t, cards[:3], set)

	set[0].Label = "changed"
	assert.Equal(t, "Card 0", cards[0].Label)
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	cards := []domain.Card{
		{ID: "apple", Label: "Apple"},
		{ID: "hammer", Label: "Hammer"},
		{ID: "pear", Label: ""},
		{ID: "saw", Label: "Saw"},
	}
	sessions := []domain.Session{
		session(group("fruit", []string{"apple", "pear"}), group("tools", []string{"hammer", "saw"})),
		session(group("fruit", []string{"pear", "apple", "removed"}), group("tools", []string{"saw", "hammer"})),
	}

	report := Analyze(cards, sessions, NewDefaultOptions())

	assert.Equal(t, 4, report.Options.AnalysisSetSize)
	assert.Equal(t, LinkageAverage, report.Options.Linkage)
	assert.Equal(t, []string{"apple", "hammer", "pear", "saw"}, report.CardIDs)
	assert.Equal(t, []string{"Apple", "Hammer", "pear", "Saw"}, report.Labels)
	assert.Equal(t, 2, report.SessionCount)

	assert.Equal(t, 2, report.Cooccurrence.At(0, 2))
	assert.Equal(t, 0, report.Cooccurrence.At(0, 1))
	assert.Equal(t, 2, report.JointAppearance.At(0, 1))
	assert.Equal(t, 1.0, report.Similarity.At(1, 3))

	require.NotNil(t, report.Dendrogram)
	assert.Equal(t, 7, report.Dendrogram.Count())
	assert.ElementsMatch(t, report.CardIDs, report.HeatmapOrder)
	assert.Equal(t, []string{"apple", "pear", "hammer", "saw"}, report.HeatmapOrder)

	require.Len(t, report.Projection.Coords, 4)
	assert.Equal(t, "Hammer", report.Label("hammer"))
	assert.Equal(t, "gone", report.Label("gone"))
}

func TestAnalyzeWithoutReorderKeepsDeckOrder(t *testing.T) {
	t.Parallel()

	opts := NewDefaultOptions()
	opts.ReorderByDendrogram = false
	sessions := []domain.Session{session(group("g", []string{"c0", "c2"}))}

	report := Analyze(deck(3), sessions, opts)
	assert.Equal(t, report.CardIDs, report.HeatmapOrder)
}

func TestAnalyzeWithoutSessions(t *testing.T) {
	t.Parallel()

	report := Analyze(deck(3), nil, NewDefaultOptions())

	assert.Nil(t, report.Dendrogram)
	assert.Equal(t, report.CardIDs, report.HeatmapOrder)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Zero(t, report.Cooccurrence.At(i, j))
			if i != j {
				assert.Zero(t, report.Similarity.At(i, j))
			}
		}
	}
}

func TestAnalyzeEmptyDeck(t *testing.T) {
	t.Parallel()

	report := Analyze(nil, []domain.Session{session(group("g", []string{"x"}))}, NewDefaultOptions())
	assert.Empty(t, report.CardIDs)
	assert.Nil(t, report.Dendrogram)
	assert.Empty(t, report.HeatmapOrder)
	assert.Empty(t, report.Projection.Coords)
}

func TestAnalyzeClampsSetSize(t *testing.T) {
	t.Parallel()

	sessions := []domain.Session{session(group("g", []string{"c0", "c1", "c2"}))}

	opts := NewDefaultOptions()
	opts.AnalysisSetSize = 1
	assert.Len(t, Analyze(deck(30), sessions, opts).CardIDs, 2)

	opts.AnalysisSetSize = 0
	report := Analyze(deck(30), sessions, opts)
	assert.Len(t, report.CardIDs, 2)

	report = Analyze(deck(30), sessions, NewDefaultOptions())
	assert.Len(t, report.CardIDs, DefaultAnalysisSetSize)
}

func TestService(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	assert.Equal(t, NewDefaultOptions(), svc.Defaults())

	report, err := svc.Analyze(deck(30), nil, Options{ReorderByDendrogram: true})
	require.NoError(t, err)
	assert.Len(t, report.CardIDs, DefaultAnalysisSetSize)
	assert.Equal(t, LinkageAverage, report.Options.Linkage)

	_, err = svc.Analyze(deck(3), nil, Options{Linkage: "ward"})
	assert.ErrorIs(t, err, ErrInvalidLinkage)
}

func TestNewServiceWithOptions(t *testing.T) {
	t.Parallel()

	svc, err := NewServiceWithOptions(Options{AnalysisSetSize: 10, Linkage: LinkageSingle})
	require.NoError(t, err)

	report, err := svc.Analyze(deck(12), nil, Options{})
	require.NoError(t, err)
	assert.Len(t, report.CardIDs, 10)
	assert.Equal(t, LinkageSingle, report.Options.Linkage)

	_, err = NewServiceWithOptions(Options{AnalysisSetSize: 1})
	assert.ErrorIs(t, err, ErrInvalidSetSize)

	_, err = NewServiceWithOptions(Options{AnalysisSetSize: 5, Linkage: "ward"})
	assert.ErrorIs(t, err, ErrInvalidLinkage)
}

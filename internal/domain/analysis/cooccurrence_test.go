package analysis

import (
	"testing"

	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountCooccurrencesRoundTrip(t *testing.T) {
	t.Parallel()

	ids := []string{"X", "Y", "Z"}
	sessions := []domain.Session{
		session(group("g1", []string{"X", "Y"}), group("g2", []string{"Z"})),
		session(group("g1", []string{"X", "Z"}), group("g2", []string{"Y"})),
	}

	counts := CountCooccurrences(sessions, ids)

	// Both sessions sort all three cards, so every pair appears jointly twice.
	assert.Equal(t, [][]int{
		{0, 2, 2},
		{2, 0, 2},
		{2, 2, 0},
	}, counts.Joint.Values)
	assert.Equal(t, [][]int{
		{0, 1, 1},
		{1, 0, 0},
		{1, 0, 0},
	}, counts.Same.Values)
	assert.Equal(t, ids, counts.Same.IDs)
}

func TestCountCooccurrencesPartialSorts(t *testing.T) {
	t.Parallel()

	// Session 1 places X,Y together and leaves Z unsorted; session 2 places
	// X,Z together and leaves Y unsorted.
	ids := []string{"X", "Y", "Z"}
	sessions := []domain.Session{
		session(group("g1", []string{"X", "Y"})),
		session(group("g1", []string{"X", "Z"})),
	}

	counts := CountCooccurrences(sessions, ids)
	s := BuildSimilarity(counts)

	assert.Equal(t, 1, counts.Joint.At(0, 1))
	assert.Equal(t, 1, counts.Joint.At(0, 2))
	assert.Equal(t, 0, counts.Joint.At(1, 2))
	assert.Equal(t, 1, counts.Same.At(0, 1))
	assert.Equal(t, 1, counts.Same.At(0, 2))
	assert.Equal(t, 0, counts.Same.At(1, 2))

	assert.Equal(t, 1.0, s.At(0, 1))
	assert.Equal(t, 1.0, s.At(0, 2))
	assert.Equal(t, 0.0, s.At(1, 2))
}

func TestCountCooccurrencesNestedGroupsAreDistinctBuckets(t *testing.T) {
	t.Parallel()

	sessions := []domain.Session{
		session(group("parent", []string{"a"}, group("child", []string{"b"}))),
	}

	counts := CountCooccurrences(sessions, []string{"a", "b"})
	assert.Equal(t, 1, counts.Joint.At(0, 1))
	assert.Equal(t, 0, counts.Same.At(0, 1))
}

func TestCountCooccurrencesIgnoresUnknownCards(t *testing.T) {
	t.Parallel()

	sessions := []domain.Session{
		session(group("g", []string{"a", "deleted", "b"})),
	}

	counts := CountCooccurrences(sessions, []string{"a", "b"})
	assert.Equal(t, [][]int{{0, 1}, {1, 0}}, counts.Same.Values)
	assert.Equal(t, [][]int{{0, 1}, {1, 0}}, counts.Joint.Values)
}

func TestCountCooccurrencesEmpty(t *testing.T) {
	t.Parallel()

	counts := CountCooccurrences(nil, []string{"a", "b", "c"})
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Zero(t, counts.Same.At(i, j))
			assert.Zero(t, counts.Joint.At(i, j))
		}
	}

	counts = CountCooccurrences(nil, nil)
	assert.Zero(t, counts.Same.Size())
}

func TestCountCooccurrencesSymmetricZeroDiagonal(t *testing.T) {
	t.Parallel()

	ids := []string{"a", "b", "c", "d", "e"}
	sessions := []domain.Session{
		session(group("1", []string{"a", "b"}, group("1.1", []string{"c"})), group("2", []string{"d", "e"})),
		session(group("1", []string{"e", "a", "c"}), group("2", []string{"b"})),
		session(group("1", []string{"d"})),
		session(),
	}

	counts := CountCooccurrences(sessions, ids)
	require.True(t, isSymmetricInt(counts.Same))
	require.True(t, isSymmetricInt(counts.Joint))
	for i := range ids {
		assert.Zero(t, counts.Same.At(i, i))
		assert.Zero(t, counts.Joint.At(i, i))
		for j := range ids {
			assert.LessOrEqual(t, counts.Same.At(i, j), counts.Joint.At(i, j))
		}
	}
}

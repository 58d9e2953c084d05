package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeafOrder(t *testing.T) {
	t.Parallel()

	ids := []string{"A", "B", "C"}

	tests := []struct {
		name     string
		root     *Node
		fallback []string
		want     []string
	}{
		{
			name:     "empty tree falls back",
			root:     nil,
			fallback: ids,
			want:     ids,
		},
		{
			name:     "single leaf",
			root:     &Node{Kind: LeafNode, ID: "leaf-A", CardID: "A", Size: 1},
			fallback: ids,
			want:     []string{"A"},
		},
		{
			name:     "left subtree first",
			root:     BuildDendrogram(abc(), LinkageAverage),
			fallback: ids,
			want:     []string{"C", "A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LeafOrder(tt.root, tt.fallback))
		})
	}
}

func TestLeafOrderIsPermutation(t *testing.T) {
	t.Parallel()

	ids := []string{"a", "b", "c", "d", "e"}
	s := similarityOf(ids, [][]float64{
		{1, 0.1, 0.8, 0.3, 0.0},
		{0.1, 1, 0.2, 0.9, 0.4},
		{0.8, 0.2, 1, 0.1, 0.6},
		{0.3, 0.9, 0.1, 1, 0.2},
		{0.0, 0.4, 0.6, 0.2, 1},
	})

	for _, linkage := range Linkages() {
		order := LeafOrder(BuildDendrogram(s, linkage), ids)
		assert.ElementsMatch(t, ids, order, string(linkage))
		assert.Len(t, order, len(ids))
	}
}

func TestLeafOrderFallbackIsCopy(t *testing.T) {
	t.Parallel()

	fallback := []string{"a", "b"}
	order := LeafOrder(nil, fallback)
	order[0] = "changed"
	assert.Equal(t, "a", fallback[0])
}

func TestCutTree(t *testing.T) {
	t.Parallel()

	// merges: A,B at 0.1 then C at 0.9
	root := BuildDendrogram(abc(), LinkageAverage)

	tests := []struct {
		height float64
		want   [][]string
	}{
		{0, [][]string{{"C"}, {"A"}, {"B"}}},
		{0.5, [][]string{{"C"}, {"A", "B"}}},
		{1, [][]string{{"C", "A", "B"}}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CutTree(root, tt.height))
	}

	assert.Nil(t, CutTree(nil, 1))
}

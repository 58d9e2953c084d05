package analysis

import "fmt"

// BuildSimilarity normalizes the counts into a similarity matrix:
//
//	S[i][i] = 1
//	S[i][j] = Same[i][j] / Joint[i][j]   when Joint[i][j] > 0
//	S[i][j] = 0                          otherwise
//
// Entries are always finite and within [0,1], and S is exactly symmetric
// because both count matrices are.
func BuildSimilarity(counts Counts) SimilarityMatrix {
	ids := counts.Joint.IDs
	mustBeSquare("joint matrix", ids, counts.Joint.Values)
	mustBeSquare("same matrix", counts.Same.IDs, counts.Same.Values)
	if len(counts.Same.IDs) != len(ids) {
		panic(fmt.Sprintf("analysis: same matrix has %d ids, joint has %d", len(counts.Same.IDs), len(ids)))
	}

	s := newSimilarityMatrix(ids)
	for i := range ids {
		for j := range ids {
			switch {
			case i == j:
				s.Values[i][j] = 1
			case counts.Joint.Values[i][j] > 0:
				s.Values[i][j] = float64(counts.Same.Values[i][j]) / float64(counts.Joint.Values[i][j])
			}
		}
	}
	return s
}

package analysis

import "fmt"

// CountMatrix is a square integer matrix indexed by IDs in both dimensions.
type CountMatrix struct {
	IDs    []string `json:"ids"`
	Values [][]int  `json:"values"`
}

// SimilarityMatrix is a square matrix of similarities in [0,1] indexed by IDs
// in both dimensions.
type SimilarityMatrix struct {
	IDs    []string    `json:"ids"`
	Values [][]float64 `json:"values"`
}

// Size returns the matrix dimension.
func (m CountMatrix) Size() int { return len(m.IDs) }

// Size returns the matrix dimension.
func (m SimilarityMatrix) Size() int { return len(m.IDs) }

// At returns the entry at row i, column j.
func (m CountMatrix) At(i, j int) int { return m.Values[i][j] }

// At returns the entry at row i, column j.
func (m SimilarityMatrix) At(i, j int) float64 { return m.Values[i][j] }

func newCountMatrix(ids []string) CountMatrix {
	values := make([][]int, len(ids))
	for i := range values {
		values[i] = make([]int, len(ids))
	}
	return CountMatrix{IDs: cloneIDs(ids), Values: values}
}

func newSimilarityMatrix(ids []string) SimilarityMatrix {
	values := make([][]float64, len(ids))
	for i := range values {
		values[i] = make([]float64, len(ids))
	}
	return SimilarityMatrix{IDs: cloneIDs(ids), Values: values}
}

// Reorder returns a copy of the matrix with rows and columns permuted to
// follow order. order must be a permutation of the matrix IDs.
func (m SimilarityMatrix) Reorder(order []string) SimilarityMatrix {
	perm := permutation(m.IDs, order)
	out := newSimilarityMatrix(order)
	for i, pi := range perm {
		for j, pj := range perm {
			out.Values[i][j] = m.Values[pi][pj]
		}
	}
	return out
}

// Reorder returns a copy of the matrix with rows and columns permuted to
// follow order. order must be a permutation of the matrix IDs.
func (m CountMatrix) Reorder(order []string) CountMatrix {
	perm := permutation(m.IDs, order)
	out := newCountMatrix(order)
	for i, pi := range perm {
		for j, pj := range perm {
			out.Values[i][j] = m.Values[pi][pj]
		}
	}
	return out
}

// mustBeSquare panics unless the matrix has one row and one column per ID.
func mustBeSquare[T int | float64](name string, ids []string, values [][]T) {
	if len(values) != len(ids) {
		panic(fmt.Sprintf("analysis: %s has %d rows for %d ids", name, len(values), len(ids)))
	}
	for i, row := range values {
		if len(row) != len(ids) {
			panic(fmt.Sprintf("analysis: %s row %d has %d columns for %d ids", name, i, len(row), len(ids)))
		}
	}
}

// permutation maps each position of order to its position in ids.
// Repeated IDs are matched in sequence.
func permutation(ids, order []string) []int {
	if len(ids) != len(order) {
		panic(fmt.Sprintf("analysis: order has %d ids, matrix has %d", len(order), len(ids)))
	}
	positions := make(map[string][]int, len(ids))
	for i, id := range ids {
		positions[id] = append(positions[id], i)
	}
	perm := make([]int, len(order))
	for i, id := range order {
		queue := positions[id]
		if len(queue) == 0 {
			panic(fmt.Sprintf("analysis: id %q is not part of the matrix", id))
		}
		perm[i] = queue[0]
		positions[id] = queue[1:]
	}
	return perm
}

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ProjectionDims is the number of axes the report projects onto.
const ProjectionDims = 2

const eigenNoise = 1e-12

// Projection is a low-dimensional embedding of the matrix IDs. Coords has one
// row per ID and one column per axis. Eigenvalues holds the clipped
// eigenvalue of each axis, largest first.
type Projection struct {
	IDs         []string    `json:"ids"`
	Coords      [][]float64 `json:"coords"`
	Eigenvalues []float64   `json:"eigenvalues"`
}

// Project embeds the cards into k dimensions by classical multidimensional
// scaling of the distances 1 - S.
//
// The squared distances are double-centered, B = -1/2 J Δ J with
// J = I - (1/n) 11ᵀ, and the top k eigenpairs of B give the axes. Negative
// eigenvalues, which appear when the similarities are not Euclidean, are
// clipped to zero, as are positive values within rounding noise of zero.
// Coordinate i on axis d is v_d[i] * sqrt(λ_d). Each axis is signed so that
// its entry of largest magnitude is positive. Axes beyond the number of cards
// are zero.
//
// k must be positive.
func Project(s SimilarityMatrix, k int) Projection {
	if k < 1 {
		panic(fmt.Sprintf("analysis: projection needs at least one dimension, got %d", k))
	}
	mustBeSquare("similarity matrix", s.IDs, s.Values)

	n := len(s.IDs)
	p := Projection{
		IDs:         cloneIDs(s.IDs),
		Coords:      make([][]float64, n),
		Eigenvalues: make([]float64, k),
	}
	for i := range p.Coords {
		p.Coords[i] = make([]float64, k)
	}
	if n == 0 {
		return p
	}

	b := doubleCenter(squaredDistances(s))

	var eig mat.EigenSym
	if ok := eig.Factorize(b, true); !ok {
		return p
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// gonum returns eigenvalues in ascending order. Values within rounding
	// noise of zero are treated as zero.
	noise := eigenNoise * float64(n) * math.Max(math.Abs(values[0]), math.Abs(values[n-1]))
	for d := 0; d < k && d < n; d++ {
		col := n - 1 - d
		lambda := values[col]
		if lambda <= noise {
			lambda = 0
		}
		p.Eigenvalues[d] = lambda
		if lambda == 0 {
			continue
		}

		axis := mat.Col(nil, col, &vectors)
		pinSign(axis)
		scale := math.Sqrt(lambda)
		for i := range axis {
			// + 0 turns a negative zero into a positive one.
			p.Coords[i][d] = axis[i]*scale + 0
		}
	}

	return p
}

// squaredDistances builds Δ[i][j] = (1 - S[i][j])².
func squaredDistances(s SimilarityMatrix) *mat.SymDense {
	n := len(s.IDs)
	delta := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := 1 - s.Values[i][j]
			delta.SetSym(i, j, d*d)
		}
	}
	return delta
}

// doubleCenter computes -1/2 J Δ J, symmetrized to absorb rounding.
func doubleCenter(delta *mat.SymDense) *mat.SymDense {
	n := delta.SymmetricDim()

	j := mat.NewDense(n, n, nil)
	inv := 1 / float64(n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if r == c {
				j.Set(r, c, 1-inv)
			} else {
				j.Set(r, c, -inv)
			}
		}
	}

	var jd, jdj mat.Dense
	jd.Mul(j, delta)
	jdj.Mul(&jd, j)

	b := mat.NewSymDense(n, nil)
	for r := 0; r < n; r++ {
		for c := r; c < n; c++ {
			b.SetSym(r, c, -0.25*(jdj.At(r, c)+jdj.At(c, r)))
		}
	}
	return b
}

// pinSign flips v in place so that its entry of largest magnitude is
// positive. The first such entry decides ties.
func pinSign(v []float64) {
	pivot := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[pivot]) {
			pivot = i
		}
	}
	if len(v) > 0 && v[pivot] < 0 {
		for i := range v {
			v[i] = 0 - v[i]
		}
	}
}

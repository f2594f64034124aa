package policy

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimensionMismatch is returned when a state vector or weight matrix
	// does not have the configured shape.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrNonFinite is returned when weights contain NaN or Inf.
	ErrNonFinite = errors.New("non-finite weight")
)

// Individual is a linear policy: one row of weights per action, one column
// per state feature. Action scores are Weights · state.
type Individual struct {
	w *mat.Dense
}

// NewIndividual builds an individual from row-major weights.
func NewIndividual(actions, stateDim int, data []float64) (*Individual, error) {
	if actions <= 0 || stateDim <= 0 {
		return nil, fmt.Errorf("%w: shape %dx%d", ErrDimensionMismatch, actions, stateDim)
	}
	if len(data) != actions*stateDim {
		return nil, fmt.Errorf("%w: %d weights for shape %dx%d", ErrDimensionMismatch, len(data), actions, stateDim)
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Individual{w: mat.NewDense(actions, stateDim, buf)}, nil
}

// RandomIndividual draws every weight uniformly from [lo, hi), row by row.
func RandomIndividual(actions, stateDim int, lo, hi float64, rng *rand.Rand) *Individual {
	data := make([]float64, actions*stateDim)
	for i := range data {
		data[i] = lo + rng.Float64()*(hi-lo)
	}
	return &Individual{w: mat.NewDense(actions, stateDim, data)}
}

// Dims returns (actions, stateDim).
func (ind *Individual) Dims() (int, int) {
	return ind.w.Dims()
}

// At returns the weight for action i and feature j.
func (ind *Individual) At(i, j int) float64 {
	return ind.w.At(i, j)
}

// Set overwrites the weight for action i and feature j.
func (ind *Individual) Set(i, j int, v float64) {
	ind.w.Set(i, j, v)
}

// Weights returns a row-major copy of the weights.
func (ind *Individual) Weights() []float64 {
	r, c := ind.w.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, ind.w.RawRowView(i)...)
	}
	return out
}

// Clone makes a deep copy that shares no storage with ind.
func (ind *Individual) Clone() *Individual {
	return &Individual{w: mat.DenseCopyOf(ind.w)}
}

// SameShape reports whether two individuals have identical dimensions.
func (ind *Individual) SameShape(other *Individual) bool {
	r1, c1 := ind.w.Dims()
	r2, c2 := other.w.Dims()
	return r1 == r2 && c1 == c2
}

// ActionValues multiplies the weight matrix by the state vector.
func (ind *Individual) ActionValues(state []float64) ([]float64, error) {
	rows, cols := ind.w.Dims()
	if len(state) != cols {
		return nil, fmt.Errorf("%w: state has %d features, policy expects %d", ErrDimensionMismatch, len(state), cols)
	}
	out := mat.NewVecDense(rows, nil)
	out.MulVec(ind.w, mat.NewVecDense(cols, state))
	return out.RawVector().Data, nil
}

// SelectAction returns the index of the highest action value.
func (ind *Individual) SelectAction(state []float64) (int, error) {
	vals, err := ind.ActionValues(state)
	if err != nil {
		return 0, err
	}
	return Argmax(vals), nil
}

// Argmax returns the index of the largest value; the lowest index wins ties.
func Argmax(vals []float64) int {
	maxIdx := 0
	maxVal := vals[0]
	for i := 1; i < len(vals); i++ {
		if vals[i] > maxVal {
			maxVal = vals[i]
			maxIdx = i
		}
	}
	return maxIdx
}

// String formats the weights one action per line.
func (ind *Individual) String() string {
	return fmt.Sprintf("%.3f", mat.Formatted(ind.w, mat.Prefix(""), mat.Squeeze()))
}

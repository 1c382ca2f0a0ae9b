// Package affinet implements the feed-forward affinity regressor: dense
// matrix plumbing, the network with batch normalisation, the Adam optimiser,
// the training session, and the evaluator.
package affinet

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense row-major matrix.  The flat data slice backs a
// mat.Dense wrapper so multiplications go through gonum while element-wise
// work stays on the slice.
type Matrix struct {
	rows, cols int
	data       []float64
	dense      *mat.Dense
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	data := make([]float64, rows*cols)
	return &Matrix{
		rows:  rows,
		cols:  cols,
		data:  data,
		dense: mat.NewDense(rows, cols, data),
	}
}

// NewMatrixFromSlice wraps data as a rows x cols matrix without copying.
func NewMatrixFromSlice(rows, cols int, data []float64) *Matrix {
	if len(data) != rows*cols {
		panic("affinet: slice length does not match matrix shape")
	}
	return &Matrix{
		rows:  rows,
		cols:  cols,
		data:  data,
		dense: mat.NewDense(rows, cols, data),
	}
}

// Rows returns the row count.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m *Matrix) Cols() int { return m.cols }

// Data returns the backing slice.  Mutations are visible to the matrix.
func (m *Matrix) Data() []float64 { return m.data }

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.cols+j] }

// RandomizeHe fills the matrix with He-initialised weights drawn from rng:
// normal with standard deviation sqrt(2/fanIn), suited to ReLU layers.
func (m *Matrix) RandomizeHe(rng *rand.Rand) {
	scale := math.Sqrt(2.0 / float64(m.rows))
	for i := range m.data {
		m.data[i] = rng.NormFloat64() * scale
	}
}

// Reset zeroes every element.
func (m *Matrix) Reset() {
	for i := range m.data {
		m.data[i] = 0.0
	}
}

// AddVector adds the row vector v to every row of m.
func (m *Matrix) AddVector(v []float64) {
	for i := 0; i < m.rows; i++ {
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j := range row {
			row[j] += v[j]
		}
	}
}

// T returns a transposed view backed by the same data.
func (m *Matrix) T() mat.Matrix { return m.dense.T() }

// MatMul computes out = a * b through gonum.
func MatMul(a, b mat.Matrix, out *Matrix) {
	out.dense.Mul(a, b)
}

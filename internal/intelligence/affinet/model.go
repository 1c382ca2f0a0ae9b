package affinet

import (
	"math"
	"math/rand"

	errs "github.com/bindwell/affinity/pkg/errors"
)

// minTrainBatch is the smallest batch whose statistics batch normalisation
// can standardise with.
const minTrainBatch = 2

// Config holds the regressor architecture parameters.
type Config struct {
	// InputDim is the width of one input row: drug vector length plus
	// sequence vector length.
	InputDim int

	// HiddenSizes are the hidden layer widths, in order.  Each hidden
	// layer is linear, batch-normalised, then rectified; the final output
	// transform is linear with a single raw scalar output.
	HiddenSizes []int

	// BatchNormMomentum weights the running-statistics update after each
	// training batch.
	BatchNormMomentum float64

	// BatchNormEpsilon stabilises normalisation against zero variance.
	BatchNormEpsilon float64

	// Seed feeds weight initialisation.
	Seed int64
}

// validate rejects configurations the model cannot be built from.
func (c Config) validate() error {
	if c.InputDim < 1 {
		return errs.Newf(errs.ErrCodeModelInvalidConfig, "input dimension must be ≥ 1, got %d", c.InputDim)
	}
	if len(c.HiddenSizes) == 0 {
		return errs.New(errs.ErrCodeModelInvalidConfig, "at least one hidden layer is required")
	}
	for i, w := range c.HiddenSizes {
		if w < 1 {
			return errs.Newf(errs.ErrCodeModelInvalidConfig, "hidden layer %d width must be ≥ 1, got %d", i, w)
		}
	}
	if c.BatchNormMomentum <= 0 || c.BatchNormMomentum >= 1 {
		return errs.Newf(errs.ErrCodeModelInvalidConfig, "batch norm momentum %g is out of range (0, 1)", c.BatchNormMomentum)
	}
	if c.BatchNormEpsilon <= 0 {
		return errs.Newf(errs.ErrCodeModelInvalidConfig, "batch norm epsilon must be > 0, got %g", c.BatchNormEpsilon)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// linear layer
// ─────────────────────────────────────────────────────────────────────────────

// linear is one fully connected transform Y = X*W + b with W of shape
// in x out.
type linear struct {
	w  *Matrix
	b  []float64
	dw *Matrix
	db []float64

	// x caches the forward input for the backward pass.
	x *Matrix
}

func newLinear(in, out int, rng *rand.Rand) *linear {
	l := &linear{
		w:  NewMatrix(in, out),
		b:  make([]float64, out),
		dw: NewMatrix(in, out),
		db: make([]float64, out),
	}
	l.w.RandomizeHe(rng)
	return l
}

func (l *linear) forward(x *Matrix) *Matrix {
	l.x = x
	y := NewMatrix(x.rows, l.w.cols)
	MatMul(x.dense, l.w.dense, y)
	y.AddVector(l.b)
	return y
}

// backward consumes dY, accumulates dw and db, and returns dX.
func (l *linear) backward(dy *Matrix) *Matrix {
	MatMul(l.x.T(), dy.dense, l.dw)

	for j := range l.db {
		l.db[j] = 0
	}
	for i := 0; i < dy.rows; i++ {
		row := dy.data[i*dy.cols : (i+1)*dy.cols]
		for j, v := range row {
			l.db[j] += v
		}
	}

	dx := NewMatrix(dy.rows, l.w.rows)
	MatMul(dy.dense, l.w.T(), dx)
	return dx
}

// ─────────────────────────────────────────────────────────────────────────────
// batch normalisation layer
// ─────────────────────────────────────────────────────────────────────────────

// batchNorm standardises each feature against batch statistics during
// training and exponential running statistics during inference.
type batchNorm struct {
	gamma, beta   []float64
	dGamma, dBeta []float64

	runningMean []float64
	runningVar  []float64

	momentum float64
	eps      float64

	// Forward cache for the backward pass.
	xhat   *Matrix
	invStd []float64
}

func newBatchNorm(width int, momentum, eps float64) *batchNorm {
	bn := &batchNorm{
		gamma:       make([]float64, width),
		beta:        make([]float64, width),
		dGamma:      make([]float64, width),
		dBeta:       make([]float64, width),
		runningMean: make([]float64, width),
		runningVar:  make([]float64, width),
		momentum:    momentum,
		eps:         eps,
		invStd:      make([]float64, width),
	}
	for j := range bn.gamma {
		bn.gamma[j] = 1
		bn.runningVar[j] = 1
	}
	return bn
}

// forwardTrain standardises x with batch statistics, updates the running
// statistics, and caches what the backward pass needs.  Variance is the
// biased estimate over the batch.
func (bn *batchNorm) forwardTrain(x *Matrix) *Matrix {
	m := float64(x.rows)
	width := x.cols
	y := NewMatrix(x.rows, width)
	bn.xhat = NewMatrix(x.rows, width)

	for j := 0; j < width; j++ {
		mean := 0.0
		for i := 0; i < x.rows; i++ {
			mean += x.At(i, j)
		}
		mean /= m

		variance := 0.0
		for i := 0; i < x.rows; i++ {
			d := x.At(i, j) - mean
			variance += d * d
		}
		variance /= m

		invStd := 1.0 / math.Sqrt(variance+bn.eps)
		bn.invStd[j] = invStd

		for i := 0; i < x.rows; i++ {
			xh := (x.At(i, j) - mean) * invStd
			bn.xhat.data[i*width+j] = xh
			y.data[i*width+j] = bn.gamma[j]*xh + bn.beta[j]
		}

		bn.runningMean[j] = bn.momentum*bn.runningMean[j] + (1-bn.momentum)*mean
		bn.runningVar[j] = bn.momentum*bn.runningVar[j] + (1-bn.momentum)*variance
	}
	return y
}

// forwardInfer standardises x with the running statistics.
func (bn *batchNorm) forwardInfer(x *Matrix) *Matrix {
	width := x.cols
	y := NewMatrix(x.rows, width)
	for j := 0; j < width; j++ {
		invStd := 1.0 / math.Sqrt(bn.runningVar[j]+bn.eps)
		for i := 0; i < x.rows; i++ {
			xh := (x.At(i, j) - bn.runningMean[j]) * invStd
			y.data[i*width+j] = bn.gamma[j]*xh + bn.beta[j]
		}
	}
	return y
}

// backward consumes dY and returns dX, accumulating dGamma and dBeta.
func (bn *batchNorm) backward(dy *Matrix) *Matrix {
	m := float64(dy.rows)
	width := dy.cols
	dx := NewMatrix(dy.rows, width)

	for j := 0; j < width; j++ {
		sumDy := 0.0
		sumDyXhat := 0.0
		for i := 0; i < dy.rows; i++ {
			d := dy.At(i, j)
			sumDy += d
			sumDyXhat += d * bn.xhat.At(i, j)
		}
		bn.dGamma[j] = sumDyXhat
		bn.dBeta[j] = sumDy

		scale := bn.gamma[j] * bn.invStd[j] / m
		for i := 0; i < dy.rows; i++ {
			dx.data[i*width+j] = scale * (m*dy.At(i, j) - sumDy - bn.xhat.At(i, j)*sumDyXhat)
		}
	}
	return dx
}

// ─────────────────────────────────────────────────────────────────────────────
// Model
// ─────────────────────────────────────────────────────────────────────────────

// Model is the feed-forward regressor: a linear transform, batch
// normalisation, and ReLU per hidden layer, then a final linear transform to
// a single raw scalar.
type Model struct {
	cfg     Config
	linears []*linear
	norms   []*batchNorm

	// reluMask caches, per hidden layer, which activations were positive
	// in the last training forward pass.
	reluMask []*Matrix

	training bool
}

// NewModel builds a model with He-initialised weights drawn from cfg.Seed.
func NewModel(cfg Config) (*Model, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	m := &Model{
		cfg:      cfg,
		reluMask: make([]*Matrix, len(cfg.HiddenSizes)),
	}

	in := cfg.InputDim
	for _, width := range cfg.HiddenSizes {
		m.linears = append(m.linears, newLinear(in, width, rng))
		m.norms = append(m.norms, newBatchNorm(width, cfg.BatchNormMomentum, cfg.BatchNormEpsilon))
		in = width
	}
	m.linears = append(m.linears, newLinear(in, 1, rng))
	return m, nil
}

// SetTraining switches between batch statistics (training) and running
// statistics (inference).
func (m *Model) SetTraining(training bool) { m.training = training }

// InputDim returns the expected width of one input row.
func (m *Model) InputDim() int { return m.cfg.InputDim }

// Forward runs rows x InputDim features through the network and returns one
// prediction per row.  Training mode with fewer than two rows is an error:
// batch statistics are undefined for a single sample.
func (m *Model) Forward(features []float64, rows int) ([]float64, error) {
	if rows < 1 || len(features) != rows*m.cfg.InputDim {
		return nil, errs.Newf(errs.ErrCodeModelShapeMismatch,
			"expected %d x %d features, got %d values", rows, m.cfg.InputDim, len(features))
	}
	if m.training && rows < minTrainBatch {
		return nil, errs.Newf(errs.ErrCodeModelInvalidBatchSize,
			"training batch must have ≥ %d rows, got %d", minTrainBatch, rows)
	}

	x := NewMatrixFromSlice(rows, m.cfg.InputDim, features)
	for i := range m.norms {
		x = m.linears[i].forward(x)
		if m.training {
			x = m.norms[i].forwardTrain(x)
		} else {
			x = m.norms[i].forwardInfer(x)
		}
		x = m.relu(i, x)
	}
	x = m.linears[len(m.linears)-1].forward(x)

	out := make([]float64, rows)
	copy(out, x.data)
	return out, nil
}

// relu rectifies x in place, caching the mask during training.
func (m *Model) relu(layer int, x *Matrix) *Matrix {
	if m.training {
		mask := NewMatrix(x.rows, x.cols)
		for i, v := range x.data {
			if v > 0 {
				mask.data[i] = 1
			} else {
				x.data[i] = 0
			}
		}
		m.reluMask[layer] = mask
		return x
	}
	for i, v := range x.data {
		if v < 0 {
			x.data[i] = 0
		}
	}
	return x
}

// Backward propagates the loss gradient dOut (one value per row of the last
// Forward call) through the network, filling every layer's parameter
// gradients.  Must follow a training-mode Forward.
func (m *Model) Backward(dOut []float64) error {
	if !m.training {
		return errs.New(errs.ErrCodeModelInvalidConfig, "backward requires training mode")
	}

	grad := NewMatrixFromSlice(len(dOut), 1, append([]float64(nil), dOut...))
	dx := m.linears[len(m.linears)-1].backward(grad)

	for i := len(m.norms) - 1; i >= 0; i-- {
		mask := m.reluMask[i]
		for j := range dx.data {
			dx.data[j] *= mask.data[j]
		}
		dx = m.norms[i].backward(dx)
		dx = m.linears[i].backward(dx)
	}
	return nil
}

// parameters returns every trainable slice paired with its gradient slice,
// in a stable order for the optimiser.
func (m *Model) parameters() (params, grads [][]float64) {
	for i, l := range m.linears {
		params = append(params, l.w.data, l.b)
		grads = append(grads, l.dw.data, l.db)
		if i < len(m.norms) {
			bn := m.norms[i]
			params = append(params, bn.gamma, bn.beta)
			grads = append(grads, bn.dGamma, bn.dBeta)
		}
	}
	return params, grads
}

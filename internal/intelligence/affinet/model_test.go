package affinet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/bindwell/affinity/pkg/errors"
)

func smallConfig() Config {
	return Config{
		InputDim:          4,
		HiddenSizes:       []int{8, 4},
		BatchNormMomentum: 0.9,
		BatchNormEpsilon:  1e-5,
		Seed:              42,
	}
}

func TestNewModel_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero input dim", func(c *Config) { c.InputDim = 0 }},
		{"no hidden layers", func(c *Config) { c.HiddenSizes = nil }},
		{"zero width layer", func(c *Config) { c.HiddenSizes = []int{8, 0} }},
		{"momentum out of range", func(c *Config) { c.BatchNormMomentum = 1 }},
		{"zero epsilon", func(c *Config) { c.BatchNormEpsilon = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.mutate(&cfg)
			_, err := NewModel(cfg)
			require.Error(t, err)
			assert.True(t, errs.IsCode(err, errs.ErrCodeModelInvalidConfig))
		})
	}
}

func TestModel_Forward_OnePredictionPerRow(t *testing.T) {
	m, err := NewModel(smallConfig())
	require.NoError(t, err)

	features := []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		0, 1, 0, 1,
	}
	preds, err := m.Forward(features, 3)
	require.NoError(t, err)
	require.Len(t, preds, 3)
	for _, p := range preds {
		assert.False(t, math.IsNaN(p))
		assert.False(t, math.IsInf(p, 0))
	}
}

func TestModel_Forward_ShapeMismatch(t *testing.T) {
	m, err := NewModel(smallConfig())
	require.NoError(t, err)

	_, err = m.Forward([]float64{1, 2, 3}, 1)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrCodeModelShapeMismatch))
}

func TestModel_Forward_SingleRowTrainingBatchFails(t *testing.T) {
	m, err := NewModel(smallConfig())
	require.NoError(t, err)

	m.SetTraining(true)
	_, err = m.Forward([]float64{1, 2, 3, 4}, 1)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrCodeModelInvalidBatchSize))

	// The same single row is fine in inference mode.
	m.SetTraining(false)
	_, err = m.Forward([]float64{1, 2, 3, 4}, 1)
	assert.NoError(t, err)
}

func TestModel_SameSeedSamePredictions(t *testing.T) {
	a, err := NewModel(smallConfig())
	require.NoError(t, err)
	b, err := NewModel(smallConfig())
	require.NoError(t, err)

	features := []float64{1, 0, 2, 0, 0, 3, 0, 4}
	pa, err := a.Forward(features, 2)
	require.NoError(t, err)
	pb, err := b.Forward(features, 2)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestModel_DifferentSeedDifferentPredictions(t *testing.T) {
	cfg := smallConfig()
	a, err := NewModel(cfg)
	require.NoError(t, err)
	cfg.Seed = 7
	b, err := NewModel(cfg)
	require.NoError(t, err)

	features := []float64{1, 0, 2, 0}
	pa, err := a.Forward(features, 1)
	require.NoError(t, err)
	pb, err := b.Forward(features, 1)
	require.NoError(t, err)
	assert.NotEqual(t, pa, pb)
}

func TestModel_Backward_RequiresTrainingMode(t *testing.T) {
	m, err := NewModel(smallConfig())
	require.NoError(t, err)

	err = m.Backward([]float64{0.1})
	require.Error(t, err)
}

func TestBatchNorm_TrainStandardisesBatch(t *testing.T) {
	bn := newBatchNorm(2, 0.9, 1e-5)
	x := NewMatrixFromSlice(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})
	y := bn.forwardTrain(x)

	// With unit gamma and zero beta the output has near-zero mean and unit
	// variance per feature.
	for j := 0; j < 2; j++ {
		mean, variance := 0.0, 0.0
		for i := 0; i < 4; i++ {
			mean += y.At(i, j)
		}
		mean /= 4
		for i := 0; i < 4; i++ {
			d := y.At(i, j) - mean
			variance += d * d
		}
		variance /= 4

		assert.InDelta(t, 0.0, mean, 1e-9)
		assert.InDelta(t, 1.0, variance, 1e-3)
	}
}

func TestBatchNorm_RunningStatsMoveTowardBatch(t *testing.T) {
	bn := newBatchNorm(1, 0.9, 1e-5)
	x := NewMatrixFromSlice(2, 1, []float64{10, 30})

	bn.forwardTrain(x)

	// Start mean 0, batch mean 20 → 0.9*0 + 0.1*20 = 2.
	assert.InDelta(t, 2.0, bn.runningMean[0], 1e-9)
	// Start var 1, batch var 100 → 0.9*1 + 0.1*100 = 10.9.
	assert.InDelta(t, 10.9, bn.runningVar[0], 1e-9)
}

func TestBatchNorm_InferenceUsesRunningStats(t *testing.T) {
	bn := newBatchNorm(1, 0.9, 1e-12)
	bn.runningMean[0] = 5
	bn.runningVar[0] = 4

	x := NewMatrixFromSlice(1, 1, []float64{9})
	y := bn.forwardInfer(x)

	// (9-5)/sqrt(4) = 2.
	assert.InDelta(t, 2.0, y.At(0, 0), 1e-6)
}

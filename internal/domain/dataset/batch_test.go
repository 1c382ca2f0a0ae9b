package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/bindwell/affinity/pkg/errors"
)

func TestBatchProvider_Pass_Sizes(t *testing.T) {
	ds := uniformDataset(1, 10)
	p, err := NewBatchProvider(ds, 4, 42, false)
	require.NoError(t, err)

	batches := p.Pass()
	require.Len(t, batches, 3)
	assert.Equal(t, 4, batches[0].Rows)
	assert.Equal(t, 4, batches[1].Rows)
	assert.Equal(t, 2, batches[2].Rows)

	for _, b := range batches {
		assert.Equal(t, ds.FeatureDim(), b.Dim)
		assert.Len(t, b.Features, b.Rows*b.Dim)
		assert.Len(t, b.Targets, b.Rows)
	}
	assert.Equal(t, 3, p.BatchesPerPass())
}

func TestBatchProvider_DropSmallTrailingBatch(t *testing.T) {
	ds := uniformDataset(1, 9)
	p, err := NewBatchProvider(ds, 4, 42, true)
	require.NoError(t, err)

	// 9 = 4 + 4 + 1; the single-row tail is dropped.
	batches := p.Pass()
	require.Len(t, batches, 2)
	assert.Equal(t, 2, p.BatchesPerPass())
}

func TestBatchProvider_KeepsTwoRowTail(t *testing.T) {
	ds := uniformDataset(1, 10)
	p, err := NewBatchProvider(ds, 4, 42, true)
	require.NoError(t, err)

	batches := p.Pass()
	require.Len(t, batches, 3)
	assert.Equal(t, 2, batches[2].Rows)
}

func TestBatchProvider_ReshufflesBetweenPasses(t *testing.T) {
	ds := uniformDataset(1, 64)
	p, err := NewBatchProvider(ds, 64, 42, false)
	require.NoError(t, err)

	first := p.Pass()[0].Targets
	second := p.Pass()[0].Targets

	assert.NotEqual(t, first, second)
	assert.ElementsMatch(t, first, second)
}

func TestBatchProvider_CoversEverySampleOncePerPass(t *testing.T) {
	ds := uniformDataset(1, 17)
	p, err := NewBatchProvider(ds, 5, 7, false)
	require.NoError(t, err)

	var targets []float64
	for _, b := range p.Pass() {
		targets = append(targets, b.Targets...)
	}
	assert.ElementsMatch(t, ds.Affinities(), targets)
}

func TestBatchProvider_Errors(t *testing.T) {
	ds := uniformDataset(1, 4)

	_, err := NewBatchProvider(&EncodedDataset{}, 4, 42, false)
	assert.True(t, errs.IsCode(err, errs.ErrCodeDatasetEmpty))

	_, err = NewBatchProvider(ds, 1, 42, false)
	assert.True(t, errs.IsCode(err, errs.ErrCodeModelInvalidBatchSize))
}

func TestFullBatch_PreservesOrder(t *testing.T) {
	ds := &EncodedDataset{
		DrugVecLen:     1,
		SequenceVecLen: 1,
		Samples: []EncodedSample{
			{DrugVec: []int{1}, SequenceVec: []int{2}, Affinity: 10},
			{DrugVec: []int{3}, SequenceVec: []int{4}, Affinity: 20},
		},
	}
	b := FullBatch(ds)

	assert.Equal(t, 2, b.Rows)
	assert.Equal(t, 2, b.Dim)
	assert.Equal(t, []float64{1, 2, 3, 4}, b.Features)
	assert.Equal(t, []float64{10, 20}, b.Targets)
}

package dataset

import (
	"math/rand"

	errs "github.com/bindwell/affinity/pkg/errors"
)

// Batch is one mini-batch of model input rows and their true affinities.
// Features is row-major: Rows x Dim values.
type Batch struct {
	Features []float64
	Targets  []float64
	Rows     int
	Dim      int
}

// BatchProvider yields shuffled mini-batches over an encoded dataset.  Each
// call to Pass reshuffles the sample order, so successive training epochs see
// the data in different orders while remaining reproducible for a fixed seed.
type BatchProvider struct {
	ds        *EncodedDataset
	batchSize int
	rng       *rand.Rand

	// dropSmall drops a trailing batch smaller than minBatchRows.  Training
	// sets it so batch normalisation never sees a single-row batch.
	dropSmall bool
}

// minBatchRows is the smallest batch batch normalisation can standardise.
const minBatchRows = 2

// NewBatchProvider constructs a provider over ds.  When dropSmall is set, a
// trailing batch with fewer than two rows is discarded instead of yielded.
func NewBatchProvider(ds *EncodedDataset, batchSize int, seed int64, dropSmall bool) (*BatchProvider, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errs.New(errs.ErrCodeDatasetEmpty, "cannot batch an empty dataset")
	}
	if batchSize < minBatchRows {
		return nil, errs.Newf(errs.ErrCodeModelInvalidBatchSize,
			"batch size must be ≥ %d, got %d", minBatchRows, batchSize)
	}
	return &BatchProvider{
		ds:        ds,
		batchSize: batchSize,
		rng:       rand.New(rand.NewSource(seed)),
		dropSmall: dropSmall,
	}, nil
}

// Pass returns the batches of one epoch in a fresh shuffled order.
func (p *BatchProvider) Pass() []Batch {
	n := p.ds.Len()
	order := p.rng.Perm(n)

	dim := p.ds.FeatureDim()
	var batches []Batch
	for start := 0; start < n; start += p.batchSize {
		end := start + p.batchSize
		if end > n {
			end = n
		}
		rows := end - start
		if p.dropSmall && rows < minBatchRows {
			break
		}

		b := Batch{
			Features: make([]float64, 0, rows*dim),
			Targets:  make([]float64, 0, rows),
			Rows:     rows,
			Dim:      dim,
		}
		for _, idx := range order[start:end] {
			b.Features = append(b.Features, p.ds.Samples[idx].FeatureVector()...)
			b.Targets = append(b.Targets, p.ds.Samples[idx].Affinity)
		}
		batches = append(batches, b)
	}
	return batches
}

// BatchesPerPass returns the number of batches one pass yields.
func (p *BatchProvider) BatchesPerPass() int {
	n := p.ds.Len()
	full := n / p.batchSize
	rem := n % p.batchSize
	if rem == 0 {
		return full
	}
	if p.dropSmall && rem < minBatchRows {
		return full
	}
	return full + 1
}

// FullBatch materialises the whole dataset as a single batch in dataset
// order, without shuffling.  Evaluation uses it for inference.
func FullBatch(ds *EncodedDataset) Batch {
	dim := ds.FeatureDim()
	b := Batch{
		Features: make([]float64, 0, ds.Len()*dim),
		Targets:  make([]float64, 0, ds.Len()),
		Rows:     ds.Len(),
		Dim:      dim,
	}
	for i := range ds.Samples {
		b.Features = append(b.Features, ds.Samples[i].FeatureVector()...)
		b.Targets = append(b.Targets, ds.Samples[i].Affinity)
	}
	return b
}

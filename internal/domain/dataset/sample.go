// Package dataset holds the core data types of the affinity pipeline and the
// operations that move samples from disk to training batches: loading,
// train/test splitting, and batch iteration.  Encoded samples are produced by
// the encoding package and only carried here.
package dataset

import "sort"

// RawSample is one interaction record as read from disk.  Immutable once
// loaded.
type RawSample struct {
	DrugID    string
	ProteinID string
	SMILES    string
	Sequence  string
	Affinity  float64
}

// EncodedSample pairs the fixed-length integer encodings of one interaction
// with its identifiers and true affinity.  DrugVec and SequenceVec have the
// corpus-wide lengths recorded on the owning EncodedDataset.
type EncodedSample struct {
	DrugID      string
	ProteinID   string
	DrugVec     []int
	SequenceVec []int
	Affinity    float64
}

// FeatureVector flattens the sample into the model input row: the drug
// encoding followed by the sequence encoding, widened to float64.
func (s *EncodedSample) FeatureVector() []float64 {
	out := make([]float64, 0, len(s.DrugVec)+len(s.SequenceVec))
	for _, v := range s.DrugVec {
		out = append(out, float64(v))
	}
	for _, v := range s.SequenceVec {
		out = append(out, float64(v))
	}
	return out
}

// EncodedDataset is an ordered collection of encoded samples sharing one pair
// of vocabularies and vector lengths.  Splitting partitions the slice; it
// never re-encodes.
type EncodedDataset struct {
	Name    string
	Samples []EncodedSample

	// DrugVecLen and SequenceVecLen are the corpus-wide maxima the encoder
	// padded every sample to.
	DrugVecLen     int
	SequenceVecLen int
}

// Len returns the number of samples.
func (d *EncodedDataset) Len() int { return len(d.Samples) }

// FeatureDim returns the width of one model input row.
func (d *EncodedDataset) FeatureDim() int { return d.DrugVecLen + d.SequenceVecLen }

// ProteinIDs returns the distinct protein identifiers in ascending order.
// Sorting makes downstream seeded shuffles independent of sample order.
func (d *EncodedDataset) ProteinIDs() []string {
	seen := make(map[string]struct{})
	for i := range d.Samples {
		seen[d.Samples[i].ProteinID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// byProtein groups sample indices by protein identifier, preserving dataset
// order within each group.
func (d *EncodedDataset) byProtein() map[string][]int {
	groups := make(map[string][]int)
	for i := range d.Samples {
		id := d.Samples[i].ProteinID
		groups[id] = append(groups[id], i)
	}
	return groups
}

// subset builds a new dataset from the samples at the given indices, keeping
// the shared vector lengths.
func (d *EncodedDataset) subset(indices []int) *EncodedDataset {
	out := &EncodedDataset{
		Name:           d.Name,
		Samples:        make([]EncodedSample, 0, len(indices)),
		DrugVecLen:     d.DrugVecLen,
		SequenceVecLen: d.SequenceVecLen,
	}
	for _, i := range indices {
		out.Samples = append(out.Samples, d.Samples[i])
	}
	return out
}

// Affinities returns the true affinity of every sample, in dataset order.
func (d *EncodedDataset) Affinities() []float64 {
	out := make([]float64, len(d.Samples))
	for i := range d.Samples {
		out[i] = d.Samples[i].Affinity
	}
	return out
}

package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/bindwell/affinity/pkg/errors"
	affinitytypes "github.com/bindwell/affinity/pkg/types/affinity"
)

// syntheticDataset builds a dataset with the given number of samples per
// protein, proteins named P00, P01, ...
func syntheticDataset(samplesPerProtein map[string]int) *EncodedDataset {
	ds := &EncodedDataset{Name: "synthetic", DrugVecLen: 2, SequenceVecLen: 2}
	n := 0
	for p, count := range samplesPerProtein {
		for i := 0; i < count; i++ {
			ds.Samples = append(ds.Samples, EncodedSample{
				DrugID:      fmt.Sprintf("D%d", n),
				ProteinID:   p,
				DrugVec:     []int{1, 2},
				SequenceVec: []int{3, 4},
				Affinity:    float64(n),
			})
			n++
		}
	}
	return ds
}

func uniformDataset(proteins, samplesEach int) *EncodedDataset {
	m := make(map[string]int, proteins)
	for i := 0; i < proteins; i++ {
		m[fmt.Sprintf("P%02d", i)] = samplesEach
	}
	return syntheticDataset(m)
}

func proteinSet(ds *EncodedDataset) map[string]struct{} {
	out := make(map[string]struct{})
	for i := range ds.Samples {
		out[ds.Samples[i].ProteinID] = struct{}{}
	}
	return out
}

func TestSplitter_NewProteins_HoldsOutWholeProteins(t *testing.T) {
	ds := uniformDataset(10, 4)
	sp := NewSplitter(42, 3, nil)

	train, test, err := sp.Split(ds, affinitytypes.PolicyNewProteins)
	require.NoError(t, err)

	trainProteins := proteinSet(train)
	testProteins := proteinSet(test)

	assert.Len(t, testProteins, 3)
	assert.Len(t, trainProteins, 7)
	for p := range testProteins {
		_, shared := trainProteins[p]
		assert.Falsef(t, shared, "protein %s appears on both sides", p)
	}
	assert.Equal(t, ds.Len(), train.Len()+test.Len())
	assert.Equal(t, 3*4, test.Len())
}

func TestSplitter_NewProteins_TooFewProteins(t *testing.T) {
	ds := uniformDataset(3, 4)
	sp := NewSplitter(42, 3, nil)

	_, _, err := sp.Split(ds, affinitytypes.PolicyNewProteins)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrCodeSplitTooFewProteins))
}

func TestSplitter_SeenProteins_PerProteinShare(t *testing.T) {
	ds := uniformDataset(5, 10)
	sp := NewSplitter(42, 42, nil)

	train, test, err := sp.Split(ds, affinitytypes.PolicySeenProteins)
	require.NoError(t, err)

	// 10 samples per protein → 7 train, 3 test each.
	assert.Equal(t, 5*7, train.Len())
	assert.Equal(t, 5*3, test.Len())

	// Every protein appears on both sides.
	assert.Len(t, proteinSet(train), 5)
	assert.Len(t, proteinSet(test), 5)
}

func TestSplitter_SeenProteins_SingleSampleProteinGoesToTest(t *testing.T) {
	ds := syntheticDataset(map[string]int{"P1": 10, "P2": 1})
	sp := NewSplitter(42, 42, nil)

	train, test, err := sp.Split(ds, affinitytypes.PolicySeenProteins)
	require.NoError(t, err)

	_, inTrain := proteinSet(train)["P2"]
	_, inTest := proteinSet(test)["P2"]
	assert.False(t, inTrain)
	assert.True(t, inTest)
}

func TestSplitter_SeenProteins_NoSampleLostOrDuplicated(t *testing.T) {
	ds := uniformDataset(4, 7)
	sp := NewSplitter(7, 42, nil)

	train, test, err := sp.Split(ds, affinitytypes.PolicySeenProteins)
	require.NoError(t, err)

	seen := make(map[string]int)
	for i := range train.Samples {
		seen[train.Samples[i].DrugID]++
	}
	for i := range test.Samples {
		seen[test.Samples[i].DrugID]++
	}
	require.Len(t, seen, ds.Len())
	for id, count := range seen {
		assert.Equalf(t, 1, count, "sample %s assigned %d times", id, count)
	}
}

func TestSplitter_Deterministic(t *testing.T) {
	for _, policy := range affinitytypes.AllSplitPolicies() {
		t.Run(policy.String(), func(t *testing.T) {
			ds := uniformDataset(8, 6)
			a := NewSplitter(42, 2, nil)
			b := NewSplitter(42, 2, nil)

			trainA, testA, err := a.Split(ds, policy)
			require.NoError(t, err)
			trainB, testB, err := b.Split(ds, policy)
			require.NoError(t, err)

			assert.Equal(t, trainA.Samples, trainB.Samples)
			assert.Equal(t, testA.Samples, testB.Samples)
		})
	}
}

func TestSplitter_SeedChangesPartition(t *testing.T) {
	ds := uniformDataset(20, 4)

	trainA, _, err := NewSplitter(1, 5, nil).Split(ds, affinitytypes.PolicyNewProteins)
	require.NoError(t, err)
	trainB, _, err := NewSplitter(2, 5, nil).Split(ds, affinitytypes.PolicyNewProteins)
	require.NoError(t, err)

	assert.NotEqual(t, trainA.Samples, trainB.Samples)
}

func TestSplitter_UnknownPolicy(t *testing.T) {
	ds := uniformDataset(4, 4)
	_, _, err := NewSplitter(42, 2, nil).Split(ds, affinitytypes.SplitPolicy("bogus"))
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrCodeSplitUnknownPolicy))
}

func TestSplitter_EmptyDataset(t *testing.T) {
	_, _, err := NewSplitter(42, 2, nil).Split(&EncodedDataset{}, affinitytypes.PolicySeenProteins)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrCodeDatasetEmpty))
}

func TestSplitter_SeenProteins_AllSingletonsIsEmptyTrain(t *testing.T) {
	ds := syntheticDataset(map[string]int{"P1": 1, "P2": 1, "P3": 1})
	_, _, err := NewSplitter(42, 42, nil).Split(ds, affinitytypes.PolicySeenProteins)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrCodeSplitEmptySide))
}

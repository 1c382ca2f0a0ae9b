package dataset

import (
	"math/rand"

	"github.com/bindwell/affinity/internal/infrastructure/monitoring/logging"
	errs "github.com/bindwell/affinity/pkg/errors"
	affinitytypes "github.com/bindwell/affinity/pkg/types/affinity"
)

// trainNumerator / trainDenominator give the per-protein train share under
// the seen-proteins policy.  Integer arithmetic keeps the cut exact.
const (
	trainNumerator   = 7
	trainDenominator = 10
)

// Splitter partitions an encoded dataset into train and test sets under one
// of the two protein-aware policies.  All shuffles draw from a source seeded
// with Seed, so a given (dataset, policy, seed) triple always produces the
// same partition.
type Splitter struct {
	// Seed feeds every shuffle the splitter performs.
	Seed int64

	// HoldoutProteins is the number of whole proteins moved to the test
	// side under the new-proteins policy.
	HoldoutProteins int

	logger logging.Logger
}

// NewSplitter constructs a Splitter.  A nil logger is replaced with a no-op
// one.
func NewSplitter(seed int64, holdoutProteins int, logger logging.Logger) *Splitter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Splitter{
		Seed:            seed,
		HoldoutProteins: holdoutProteins,
		logger:          logger.Named("splitter"),
	}
}

// Split partitions ds according to policy.  The returned datasets share the
// input's vector lengths; no sample appears on both sides and every sample
// appears on exactly one.
func (s *Splitter) Split(ds *EncodedDataset, policy affinitytypes.SplitPolicy) (train, test *EncodedDataset, err error) {
	if ds == nil || ds.Len() == 0 {
		return nil, nil, errs.New(errs.ErrCodeDatasetEmpty, "cannot split an empty dataset")
	}

	switch policy {
	case affinitytypes.PolicyNewProteins:
		train, test, err = s.splitNewProteins(ds)
	case affinitytypes.PolicySeenProteins:
		train, test, err = s.splitSeenProteins(ds)
	default:
		return nil, nil, errs.Newf(errs.ErrCodeSplitUnknownPolicy, "unknown split policy %q", policy)
	}
	if err != nil {
		return nil, nil, err
	}

	if train.Len() == 0 || test.Len() == 0 {
		return nil, nil, errs.Newf(errs.ErrCodeSplitEmptySide,
			"policy %s produced an empty side: train=%d test=%d", policy, train.Len(), test.Len())
	}

	s.logger.Info("split dataset",
		logging.String("dataset", ds.Name),
		logging.String("policy", policy.String()),
		logging.Int("train", train.Len()),
		logging.Int("test", test.Len()),
	)
	return train, test, nil
}

// splitNewProteins holds out HoldoutProteins whole proteins: their samples
// form the test set and every other sample trains.  The held-out proteins
// are chosen by shuffling the sorted distinct protein identifiers with the
// configured seed.
func (s *Splitter) splitNewProteins(ds *EncodedDataset) (*EncodedDataset, *EncodedDataset, error) {
	ids := ds.ProteinIDs()
	if len(ids) <= s.HoldoutProteins {
		return nil, nil, errs.Newf(errs.ErrCodeSplitTooFewProteins,
			"dataset has %d distinct proteins, need more than %d to hold out %d",
			len(ids), s.HoldoutProteins, s.HoldoutProteins)
	}

	rng := rand.New(rand.NewSource(s.Seed))
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	heldOut := make(map[string]struct{}, s.HoldoutProteins)
	for _, id := range ids[:s.HoldoutProteins] {
		heldOut[id] = struct{}{}
	}

	var trainIdx, testIdx []int
	for i := range ds.Samples {
		if _, ok := heldOut[ds.Samples[i].ProteinID]; ok {
			testIdx = append(testIdx, i)
		} else {
			trainIdx = append(trainIdx, i)
		}
	}
	return ds.subset(trainIdx), ds.subset(testIdx), nil
}

// splitSeenProteins splits within each protein group: the group's sample
// indices are shuffled with the configured seed and the first 7/10 (integer
// division) go to the train side.  Proteins with a single sample therefore
// land wholly in the test set.
func (s *Splitter) splitSeenProteins(ds *EncodedDataset) (*EncodedDataset, *EncodedDataset, error) {
	groups := ds.byProtein()
	ids := ds.ProteinIDs()

	rng := rand.New(rand.NewSource(s.Seed))

	var trainIdx, testIdx []int
	for _, id := range ids {
		indices := groups[id]
		rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })

		cut := len(indices) * trainNumerator / trainDenominator
		trainIdx = append(trainIdx, indices[:cut]...)
		testIdx = append(testIdx, indices[cut:]...)
	}
	return ds.subset(trainIdx), ds.subset(testIdx), nil
}

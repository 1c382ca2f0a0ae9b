package encoding

import (
	"github.com/bindwell/affinity/internal/domain/dataset"
	"github.com/bindwell/affinity/internal/infrastructure/monitoring/logging"
	errs "github.com/bindwell/affinity/pkg/errors"
)

// Encoder owns the two vocabularies and the fixed vector lengths of one
// dataset, built once over the full corpus before any split.  Encoding after
// construction is pure: the same string always yields the same vector.
type Encoder struct {
	smilesVocab  *Vocabulary
	proteinVocab *Vocabulary

	smilesLen   int
	sequenceLen int

	logger logging.Logger
}

// NewEncoder builds an Encoder over samples: the SMILES vocabulary from the
// corpus's drug strings, the fixed protein vocabulary, and the maximum
// observed length of each column as the padded vector length.
func NewEncoder(samples []dataset.RawSample, logger logging.Logger) (*Encoder, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if len(samples) == 0 {
		return nil, errs.New(errs.ErrCodeEncodingEmptyCorpus,
			"cannot build an encoder from an empty corpus")
	}

	smiles := make([]string, len(samples))
	smilesLen, sequenceLen := 0, 0
	for i := range samples {
		smiles[i] = samples[i].SMILES
		if n := len([]rune(samples[i].SMILES)); n > smilesLen {
			smilesLen = n
		}
		if n := len([]rune(samples[i].Sequence)); n > sequenceLen {
			sequenceLen = n
		}
	}

	smilesVocab, err := NewSMILESVocabulary(smiles)
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		smilesVocab:  smilesVocab,
		proteinVocab: NewProteinVocabulary(),
		smilesLen:    smilesLen,
		sequenceLen:  sequenceLen,
		logger:       logger.Named("encoder"),
	}
	e.logger.Debug("built encoder",
		logging.Int("smiles_vocab", smilesVocab.Size()),
		logging.Int("smiles_len", smilesLen),
		logging.Int("sequence_len", sequenceLen),
	)
	return e, nil
}

// SMILESLen returns the padded length of drug vectors.
func (e *Encoder) SMILESLen() int { return e.smilesLen }

// SequenceLen returns the padded length of protein vectors.
func (e *Encoder) SequenceLen() int { return e.sequenceLen }

// encodeString maps each character of s through vocab and zero-pads to
// length.  Characters outside the vocabulary also map to 0.  Strings longer
// than the corpus maximum cannot occur for in-corpus input, but out-of-corpus
// callers get an explicit error instead of a truncated vector.
func encodeString(s string, vocab *Vocabulary, length int) ([]int, error) {
	runes := []rune(s)
	if len(runes) > length {
		return nil, errs.Newf(errs.ErrCodeEncodingLengthOverflow,
			"string of length %d exceeds encoded length %d", len(runes), length)
	}

	vec := make([]int, length)
	for i, r := range runes {
		vec[i] = vocab.Lookup(r)
	}
	return vec, nil
}

// EncodeSMILES encodes one drug string against the corpus vocabulary.
func (e *Encoder) EncodeSMILES(s string) ([]int, error) {
	return encodeString(s, e.smilesVocab, e.smilesLen)
}

// EncodeSequence encodes one protein sequence against the fixed amino-acid
// vocabulary.
func (e *Encoder) EncodeSequence(s string) ([]int, error) {
	return encodeString(s, e.proteinVocab, e.sequenceLen)
}

// Encode transforms the raw samples into an EncodedDataset carrying the
// encoder's vector lengths.  Sample order is preserved.
func (e *Encoder) Encode(name string, samples []dataset.RawSample) (*dataset.EncodedDataset, error) {
	out := &dataset.EncodedDataset{
		Name:           name,
		Samples:        make([]dataset.EncodedSample, 0, len(samples)),
		DrugVecLen:     e.smilesLen,
		SequenceVecLen: e.sequenceLen,
	}

	for i := range samples {
		drugVec, err := e.EncodeSMILES(samples[i].SMILES)
		if err != nil {
			return nil, err
		}
		seqVec, err := e.EncodeSequence(samples[i].Sequence)
		if err != nil {
			return nil, err
		}
		out.Samples = append(out.Samples, dataset.EncodedSample{
			DrugID:      samples[i].DrugID,
			ProteinID:   samples[i].ProteinID,
			DrugVec:     drugVec,
			SequenceVec: seqVec,
			Affinity:    samples[i].Affinity,
		})
	}

	e.logger.Info("encoded dataset",
		logging.String("dataset", name),
		logging.Int("samples", out.Len()),
		logging.Int("feature_dim", out.FeatureDim()),
	)
	return out, nil
}

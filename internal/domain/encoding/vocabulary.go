// Package encoding turns raw drug and protein strings into the fixed-length
// integer vectors the regressor consumes.  A Vocabulary maps characters to
// positive indices; index 0 is reserved and stands for both padding and an
// unknown character, which downstream layers cannot tell apart.
package encoding

import (
	"sort"

	errs "github.com/bindwell/affinity/pkg/errors"
)

// aminoAcids is the canonical ordering of the twenty standard amino acids.
// Protein vocabularies are fixed to this alphabet rather than derived from
// any particular corpus.
const aminoAcids = "ACDEFGHIKLMNPQRSTVWY"

// Vocabulary is an injective mapping from character to positive index.
type Vocabulary struct {
	index map[rune]int
}

// NewProteinVocabulary returns the fixed amino-acid vocabulary: 'A' maps to
// 1, 'C' to 2, and so on through 'Y'.  Non-standard residues fall back to 0
// during lookup.
func NewProteinVocabulary() *Vocabulary {
	index := make(map[rune]int, len(aminoAcids))
	for i, r := range aminoAcids {
		index[r] = i + 1
	}
	return &Vocabulary{index: index}
}

// NewSMILESVocabulary derives a vocabulary from the distinct characters of
// the given SMILES strings, assigned indices from 1 in lexicographic order.
// The sort pins down an enumeration order so the same corpus always yields
// the same mapping.  An empty corpus is an error: encoding against a
// zero-entry vocabulary would silently produce all-zero vectors.
func NewSMILESVocabulary(corpus []string) (*Vocabulary, error) {
	distinct := make(map[rune]struct{})
	for _, s := range corpus {
		for _, r := range s {
			distinct[r] = struct{}{}
		}
	}
	if len(distinct) == 0 {
		return nil, errs.New(errs.ErrCodeEncodingEmptyCorpus,
			"no characters to build a vocabulary from")
	}

	runes := make([]rune, 0, len(distinct))
	for r := range distinct {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

	index := make(map[rune]int, len(runes))
	for i, r := range runes {
		index[r] = i + 1
	}
	return &Vocabulary{index: index}, nil
}

// Lookup returns the index of r, or 0 when r is not in the vocabulary.
func (v *Vocabulary) Lookup(r rune) int {
	return v.index[r]
}

// Size returns the number of distinct characters in the vocabulary,
// excluding the reserved index 0.
func (v *Vocabulary) Size() int {
	return len(v.index)
}

package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/bindwell/affinity/pkg/errors"
)

func TestNewProteinVocabulary_CanonicalOrder(t *testing.T) {
	v := NewProteinVocabulary()

	assert.Equal(t, 20, v.Size())
	assert.Equal(t, 1, v.Lookup('A'))
	assert.Equal(t, 2, v.Lookup('C'))
	assert.Equal(t, 20, v.Lookup('Y'))
}

func TestProteinVocabulary_UnknownResidue(t *testing.T) {
	v := NewProteinVocabulary()

	// Selenocysteine and ambiguity codes are outside the standard twenty.
	assert.Equal(t, 0, v.Lookup('U'))
	assert.Equal(t, 0, v.Lookup('X'))
	assert.Equal(t, 0, v.Lookup('a'))
}

func TestNewSMILESVocabulary_LexicographicIndices(t *testing.T) {
	v, err := NewSMILESVocabulary([]string{"CCO", "c1ccccc1"})
	require.NoError(t, err)

	// Distinct characters sorted: '1' < 'C' < 'O' < 'c'.
	assert.Equal(t, 4, v.Size())
	assert.Equal(t, 1, v.Lookup('1'))
	assert.Equal(t, 2, v.Lookup('C'))
	assert.Equal(t, 3, v.Lookup('O'))
	assert.Equal(t, 4, v.Lookup('c'))
	assert.Equal(t, 0, v.Lookup('N'))
}

func TestNewSMILESVocabulary_DeterministicAcrossInputOrder(t *testing.T) {
	a, err := NewSMILESVocabulary([]string{"CCO", "NC(=O)"})
	require.NoError(t, err)
	b, err := NewSMILESVocabulary([]string{"NC(=O)", "CCO"})
	require.NoError(t, err)

	for _, r := range "CON(=)" {
		assert.Equal(t, a.Lookup(r), b.Lookup(r))
	}
}

func TestNewSMILESVocabulary_EmptyCorpus(t *testing.T) {
	_, err := NewSMILESVocabulary(nil)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrCodeEncodingEmptyCorpus))

	_, err = NewSMILESVocabulary([]string{"", ""})
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrCodeEncodingEmptyCorpus))
}

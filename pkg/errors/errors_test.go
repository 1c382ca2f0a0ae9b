package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeEncodingLengthOverflow, "sequence too long")
	assert.Equal(t, "[ENC_002] sequence too long", e.Error())

	withDetail := e.WithDetail("len=1204 max=1000")
	assert.Equal(t, "[ENC_002] sequence too long: len=1204 max=1000", withDetail.Error())
	// Original is untouched.
	assert.Empty(t, e.Detail)
}

func TestAppError_WithDetailNil(t *testing.T) {
	var e *AppError
	assert.Nil(t, e.WithDetail("ignored"))
	assert.Nil(t, e.WithCause(stderrors.New("ignored")))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "never happens"))

	cause := stderrors.New("disk on fire")
	e := Wrap(cause, ErrCodeDatasetOpenFailed, "failed to read dataset")
	require.NotNil(t, e)
	assert.Equal(t, ErrCodeDatasetOpenFailed, e.Code)
	assert.ErrorIs(t, e, cause)
}

func TestWrap_PreservesCodeForUnknown(t *testing.T) {
	inner := New(ErrCodeSplitTooFewProteins, "only 12 proteins")
	outer := Wrap(inner, CodeUnknown, "split failed")
	assert.Equal(t, ErrCodeSplitTooFewProteins, outer.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeModelInvalidBatchSize, "batch of 1")
	wrapped := fmt.Errorf("training: %w", inner)

	assert.True(t, IsCode(wrapped, ErrCodeModelInvalidBatchSize))
	assert.False(t, IsCode(wrapped, ErrCodeEvalDegenerate))
	assert.False(t, IsCode(nil, ErrCodeModelInvalidBatchSize))
}

func TestIsDegenerate(t *testing.T) {
	assert.True(t, IsDegenerate(New(ErrCodeEvalDegenerate, "zero variance")))
	assert.True(t, IsDegenerate(New(ErrCodeEvalSingleClass, "no positives")))
	assert.True(t, IsDegenerate(New(ErrCodeEvalNoComparablePair, "all ties")))
	assert.False(t, IsDegenerate(New(ErrCodeEvalEmptyInput, "no samples")))
	assert.False(t, IsDegenerate(stderrors.New("plain")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeEvalSingleClass, GetCode(New(ErrCodeEvalSingleClass, "x")))
}

func TestErrorCode_Group(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeDatasetEmpty, "dataset"},
		{ErrCodeEncodingEmptyCorpus, "encoding"},
		{ErrCodeSplitUnknownPolicy, "split"},
		{ErrCodeModelShapeMismatch, "model"},
		{ErrCodeEvalDegenerate, "evaluation"},
		{ErrCodeInternal, "common"},
		{CodeUnknown, "unknown"},
		{ErrorCode("WEIRD_999"), "unknown"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.Group())
		})
	}
}

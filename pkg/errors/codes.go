package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeInvalidParam   ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_003"
	ErrCodeValidation     ErrorCode = "COMMON_004"
	ErrCodeNotImplemented ErrorCode = "COMMON_005"
)

// Aliases kept for call-site readability.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeInvalidParam
	CodeNotFound     = ErrCodeNotFound
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// Dataset Module Error Codes
const (
	ErrCodeDatasetMalformedLine ErrorCode = "DATA_001"
	ErrCodeDatasetEmpty         ErrorCode = "DATA_002"
	ErrCodeDatasetOpenFailed    ErrorCode = "DATA_003"
)

// Encoding Module Error Codes
const (
	ErrCodeEncodingEmptyCorpus    ErrorCode = "ENC_001"
	ErrCodeEncodingLengthOverflow ErrorCode = "ENC_002"
)

// Split Module Error Codes
const (
	ErrCodeSplitTooFewProteins ErrorCode = "SPL_001"
	ErrCodeSplitUnknownPolicy  ErrorCode = "SPL_002"
	ErrCodeSplitEmptySide      ErrorCode = "SPL_003"
)

// Model Module Error Codes
const (
	ErrCodeModelInvalidBatchSize ErrorCode = "MDL_001"
	ErrCodeModelShapeMismatch    ErrorCode = "MDL_002"
	ErrCodeModelInvalidConfig    ErrorCode = "MDL_003"
)

// Evaluation Module Error Codes
const (
	ErrCodeEvalDegenerate       ErrorCode = "EVL_001"
	ErrCodeEvalNoComparablePair ErrorCode = "EVL_002"
	ErrCodeEvalSingleClass      ErrorCode = "EVL_003"
	ErrCodeEvalEmptyInput       ErrorCode = "EVL_004"
)

// codeGroups maps a code prefix to the owning module, used for logging and
// metric labels.
var codeGroups = map[string]string{
	"COMMON": "common",
	"DATA":   "dataset",
	"ENC":    "encoding",
	"SPL":    "split",
	"MDL":    "model",
	"EVL":    "evaluation",
}

// Group returns the module name that owns this error code, or "unknown" for
// codes outside the registered groups.
func (c ErrorCode) Group() string {
	s := string(c)
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			if g, ok := codeGroups[s[:i]]; ok {
				return g
			}
			break
		}
	}
	return "unknown"
}

package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
// Codes are grouped by module prefix: COMMON, DOC (document parsing),
// CLS (clause extraction/classification), EMB (embeddings), CNF (conflict
// detection), QA (question answering).
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeExternalService    ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"
)

// Document parsing error codes.
const (
	// ErrCodeUnsupportedFormat is returned when the declared document format
	// has no registered extraction backend.
	ErrCodeUnsupportedFormat ErrorCode = "DOC_001"

	// ErrCodeParseFailure is returned when an extraction backend fails to
	// decode a document it claims to support.
	ErrCodeParseFailure ErrorCode = "DOC_002"
)

// Clause module error codes.
const (
	ErrCodeContractNotFound ErrorCode = "CLS_001"
	ErrCodeClauseNotFound   ErrorCode = "CLS_002"
	ErrCodeExtractionFailed ErrorCode = "CLS_003"
)

// Embedding module error codes.
const (
	// ErrCodeEmbeddingUnavailable marks a failed or absent embedding
	// capability.  It is never fatal: callers fall back to lexical matching.
	ErrCodeEmbeddingUnavailable ErrorCode = "EMB_001"

	// ErrCodeMalformedVector marks a stored embedding that cannot be decoded.
	// Callers treat the vector as absent.
	ErrCodeMalformedVector ErrorCode = "EMB_002"
)

// Conflict detection error codes.
const (
	ErrCodeConflictScanFailed ErrorCode = "CNF_001"
)

// Question answering error codes.
const (
	ErrCodeAnswerFailed ErrorCode = "QA_001"
)

// Aliases used by factory helpers.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTimeout:            "operation timed out",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeUnsupportedFormat: "unsupported document format",
	ErrCodeParseFailure:      "failed to parse document",

	ErrCodeContractNotFound: "contract not found",
	ErrCodeClauseNotFound:   "clause not found",
	ErrCodeExtractionFailed: "clause extraction failed",

	ErrCodeEmbeddingUnavailable: "embedding capability unavailable",
	ErrCodeMalformedVector:      "stored embedding vector is malformed",

	ErrCodeConflictScanFailed: "conflict scan failed",

	ErrCodeAnswerFailed: "failed to answer question",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

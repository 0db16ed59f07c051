package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes follow the <MODULE>_<NNN> convention.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeStorageError       ErrorCode = "COMMON_014"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_015"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Remote lookup (PubChem / Entrez) Error Codes
const (
	ErrCodeRemoteLookupFailed ErrorCode = "SRC_001"
	ErrCodeRetryExhausted     ErrorCode = "SRC_002"
	ErrCodeRemoteParseError   ErrorCode = "SRC_003"
	ErrCodeRemoteRateLimited  ErrorCode = "SRC_004"
	ErrCodeRemoteUnavailable  ErrorCode = "SRC_005"
)

// Synonym index Error Codes
const (
	ErrCodeSynonymSourceMissing ErrorCode = "IDX_001"
	ErrCodeSynonymSourceInvalid ErrorCode = "IDX_002"
	ErrCodeSynonymCacheMissing  ErrorCode = "IDX_003"
	ErrCodeSynonymCacheCorrupt  ErrorCode = "IDX_004"
)

// Resolution Error Codes
const (
	ErrCodeInvalidQuery       ErrorCode = "RES_001"
	ErrCodeResolutionFailed   ErrorCode = "RES_002"
	ErrCodeCompositeOffsetLow ErrorCode = "RES_003"
)

// Short aliases used at call sites.
const (
	CodeOK            = ErrorCode("OK")
	CodeUnknown       = ErrorCode("")
	CodeInternal      = ErrCodeInternal
	CodeInvalidParam  = ErrCodeBadRequest
	CodeNotFound      = ErrCodeNotFound
	CodeConflict      = ErrCodeConflict
	CodeRateLimit     = ErrCodeTooManyRequests
	CodeDatabaseError = ErrCodeDatabaseError
	CodeCacheError    = ErrCodeCacheError
	CodeStorageError  = ErrCodeStorageError
	CodeQueueError    = ErrCodeMessageQueueError
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeRemoteLookupFailed: http.StatusBadGateway,
	ErrCodeRetryExhausted:     http.StatusServiceUnavailable,
	ErrCodeRemoteParseError:   http.StatusBadGateway,
	ErrCodeRemoteRateLimited:  http.StatusTooManyRequests,
	ErrCodeRemoteUnavailable:  http.StatusServiceUnavailable,

	ErrCodeSynonymSourceMissing: http.StatusInternalServerError,
	ErrCodeSynonymSourceInvalid: http.StatusInternalServerError,
	ErrCodeSynonymCacheMissing:  http.StatusServiceUnavailable,
	ErrCodeSynonymCacheCorrupt:  http.StatusInternalServerError,

	ErrCodeInvalidQuery:       http.StatusBadRequest,
	ErrCodeResolutionFailed:   http.StatusInternalServerError,
	ErrCodeCompositeOffsetLow: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessageQueueError:  "message queue error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeRemoteLookupFailed: "remote lookup failed",
	ErrCodeRetryExhausted:     "remote lookup retries exhausted",
	ErrCodeRemoteParseError:   "failed to parse remote response",
	ErrCodeRemoteRateLimited:  "remote service rate limited",
	ErrCodeRemoteUnavailable:  "remote service unavailable",

	ErrCodeSynonymSourceMissing: "synonym source file missing",
	ErrCodeSynonymSourceInvalid: "synonym source file malformed",
	ErrCodeSynonymCacheMissing:  "synonym cache not found",
	ErrCodeSynonymCacheCorrupt:  "synonym cache corrupt",

	ErrCodeInvalidQuery:       "invalid chemical query",
	ErrCodeResolutionFailed:   "identifier resolution failed",
	ErrCodeCompositeOffsetLow: "composite offset does not exceed pubchem id",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending

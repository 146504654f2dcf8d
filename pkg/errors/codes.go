package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeTimeout            ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_007"
)

// Offense-code module error codes.
const (
	ErrCodeReferenceNotFound   ErrorCode = "CODE_001"
	ErrCodeReferenceLoadFailed ErrorCode = "CODE_002"
	ErrCodeNormalizeFailed     ErrorCode = "CODE_003"
)

// Knowledge-source (oracle) error codes.
const (
	ErrCodeOracleUnavailable ErrorCode = "ORACLE_001"
	ErrCodeOracleMalformed   ErrorCode = "ORACLE_002"
	ErrCodeOracleRateLimited ErrorCode = "ORACLE_003"
	ErrCodeOracleExhausted   ErrorCode = "ORACLE_004"
)

// Analysis module error codes.
const (
	ErrCodeAnalysisFailed ErrorCode = "ANALYSIS_001"
	ErrCodeEmptyBatch     ErrorCode = "ANALYSIS_002"
)

// Chat module error codes.
const (
	ErrCodeChatUnavailable ErrorCode = "CHAT_001"
	ErrCodeStreamClosed    ErrorCode = "CHAT_002"
)

// Infrastructure error codes.
const (
	ErrCodeDatabaseError ErrorCode = "INFRA_001"
	ErrCodeCacheError    ErrorCode = "INFRA_002"
)

// Aliases used by factory helpers and call sites that predate the
// module-prefixed naming.
const (
	CodeOK                ErrorCode = "OK"
	CodeUnknown           ErrorCode = "UNKNOWN"
	CodeInternal                    = ErrCodeInternal
	CodeInvalidParam                = ErrCodeBadRequest
	CodeNotFound                    = ErrCodeNotFound
	CodeTimeout                     = ErrCodeTimeout
	CodeReferenceNotFound           = ErrCodeReferenceNotFound
	CodeOracleUnavailable           = ErrCodeOracleUnavailable
	CodeOracleMalformed             = ErrCodeOracleMalformed
	CodeCacheError                  = ErrCodeCacheError
	CodeDatabaseError               = ErrCodeDatabaseError
	CodeAnalysisFailed              = ErrCodeAnalysisFailed
	CodeChatUnavailable             = ErrCodeChatUnavailable
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeReferenceNotFound:   http.StatusNotFound,
	ErrCodeReferenceLoadFailed: http.StatusInternalServerError,
	ErrCodeNormalizeFailed:     http.StatusBadRequest,

	ErrCodeOracleUnavailable: http.StatusServiceUnavailable,
	ErrCodeOracleMalformed:   http.StatusBadGateway,
	ErrCodeOracleRateLimited: http.StatusTooManyRequests,
	ErrCodeOracleExhausted:   http.StatusServiceUnavailable,

	ErrCodeAnalysisFailed: http.StatusInternalServerError,
	ErrCodeEmptyBatch:     http.StatusBadRequest,

	ErrCodeChatUnavailable: http.StatusServiceUnavailable,
	ErrCodeStreamClosed:    http.StatusInternalServerError,

	ErrCodeDatabaseError: http.StatusInternalServerError,
	ErrCodeCacheError:    http.StatusInternalServerError,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the code maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether the code maps to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

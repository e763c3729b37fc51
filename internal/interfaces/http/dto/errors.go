package dto

import "net/http"

// Standardized API error codes
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to API error codes.
// Validation failures are the caller's fault (400), missing aggregates are
// 404, and state machine refusals such as over-receipts or cancelling
// received stock are conflicts (409).
var domainErrorCodeMapping = map[string]string{
	"VALIDATION_ERROR":        ErrCodeValidation,
	"INVALID_INPUT":           ErrCodeBadRequest,
	"NOT_FOUND":               ErrCodeNotFound,
	"CONFLICT":                ErrCodeConflict,
	"ALREADY_EXISTS":          ErrCodeConflict,
	"INVALID_STATE":           ErrCodeConflict,
	"PENDING_UNDERFLOW":       ErrCodeConflict,
	"CONCURRENT_MODIFICATION": ErrCodeConcurrencyConflict,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}

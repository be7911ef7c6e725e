package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the account lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the bearer token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the bearer token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// Upstream error codes
const (
	// ErrCodeUpstream is used when a dependency such as the payment provider failed
	ErrCodeUpstream = "ERR_UPSTREAM"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Domain codes are listed next to the generic ones so that responses keep the
// precise code while the status follows the category.
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited: http.StatusTooManyRequests,
	ErrCodeUpstream:    http.StatusBadGateway,

	// Payment
	"PAYMENT_INVALID_ACCOUNT":               http.StatusBadRequest,
	"PAYMENT_INVALID_ORDER_ID":              http.StatusBadRequest,
	"PAYMENT_INVALID_AMOUNT":                http.StatusBadRequest,
	"PAYMENT_INVALID_KIND":                  http.StatusBadRequest,
	"PAYMENT_INVALID_ITEMS":                 http.StatusBadRequest,
	"PAYMENT_ITEM_TOTAL_MISMATCH":           http.StatusUnprocessableEntity,
	"PAYMENT_CREDIT_MISMATCH":               http.StatusUnprocessableEntity,
	"PAYMENT_MISSING_SESSION":               http.StatusBadGateway,
	"PAYMENT_TRANSACTION_NOT_FOUND":         http.StatusNotFound,
	"PAYMENT_DUPLICATE_ORDER_ID":            http.StatusConflict,
	"PAYMENT_PROVIDER_REJECTED":             http.StatusBadGateway,
	"PAYMENT_MALFORMED_NOTIFICATION":        http.StatusBadRequest,
	"PAYMENT_NOTIFICATION_MISSING_ORDER_ID": http.StatusBadRequest,
	"PAYMENT_INVALID_SIGNATURE":             http.StatusUnauthorized,
	"PAYMENT_AMOUNT_MISMATCH":               http.StatusUnprocessableEntity,

	// Ledger
	"LEDGER_INVALID_ACCOUNT": http.StatusBadRequest,
	"LEDGER_INVALID_CREDIT":  http.StatusBadRequest,
	"LEDGER_INVALID_SOURCE":  http.StatusBadRequest,
	"LEDGER_INVALID_BALANCE": http.StatusUnprocessableEntity,

	// Notification
	"NOTIFICATION_INVALID_ACCOUNT":  http.StatusBadRequest,
	"NOTIFICATION_INVALID_CATEGORY": http.StatusBadRequest,
	"NOTIFICATION_EMPTY_TITLE":      http.StatusBadRequest,
	"NOTIFICATION_NOT_FOUND":        http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// sharedErrorCodeMapping maps the shared domain codes to the standardized format
var sharedErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INVALID_INPUT":  ErrCodeInvalidInput,
	"INVALID_STATE":  ErrCodeInvalidState,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
	"FORBIDDEN":      ErrCodeForbidden,
}

// NormalizeErrorCode converts a shared domain code to the standardized format.
// Package-specific codes such as PAYMENT_CREDIT_MISMATCH are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := sharedErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

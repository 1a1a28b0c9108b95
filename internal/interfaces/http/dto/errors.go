package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound = "ERR_NOT_FOUND"
	ErrCodeConflict = "ERR_CONFLICT"
)

// Cart business rule error codes
const (
	// ErrCodeStaleStock is used when a quantity exceeds the stock ceiling
	// the catalog currently advertises
	ErrCodeStaleStock = "ERR_STALE_STOCK"
	// ErrCodeMutationInFlight is used when a line mutation lands while a
	// previous one for the same line is still pending
	ErrCodeMutationInFlight = "ERR_MUTATION_IN_FLIGHT"
	// ErrCodePricingInputMissing is used when a cart line has no usable price
	ErrCodePricingInputMissing = "ERR_PRICING_INPUT_MISSING"
	// ErrCodeEmptyCart is used when checkout is attempted on an empty cart
	ErrCodeEmptyCart = "ERR_EMPTY_CART"
	// ErrCodeReconcileInProgress is used when a reconciliation run is
	// requested while another for the same user is still active
	ErrCodeReconcileInProgress = "ERR_RECONCILE_IN_PROGRESS"
	// ErrCodeQuantityBelowMinimum is used when a decrement would drop a
	// line below one unit
	ErrCodeQuantityBelowMinimum = "ERR_QUANTITY_BELOW_MINIMUM"
)

// Upstream error codes
const (
	// ErrCodeRemoteUnavailable is used when the server-held cart API or a
	// catalog collaborator cannot be reached
	ErrCodeRemoteUnavailable = "ERR_REMOTE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	ErrCodeStaleStock:           http.StatusConflict,
	ErrCodeMutationInFlight:     http.StatusConflict,
	ErrCodeReconcileInProgress:  http.StatusConflict,
	ErrCodePricingInputMissing:  http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:            http.StatusUnprocessableEntity,
	ErrCodeQuantityBelowMinimum: http.StatusUnprocessableEntity,

	ErrCodeRemoteUnavailable: http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the wire format
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                  ErrCodeNotFound,
	"ALREADY_EXISTS":             ErrCodeConflict,
	"INVALID_INPUT":              ErrCodeInvalidInput,
	"INVALID_MAGNITUDE":          ErrCodeInvalidInput,
	"INVALID_MODE":               ErrCodeInvalidInput,
	"INVALID_STATE":              ErrCodeConflict,
	"UNAUTHORIZED":               ErrCodeUnauthorized,
	"CONCURRENCY_CONFLICT":       ErrCodeConflict,
	"STALE_STOCK":                ErrCodeStaleStock,
	"MUTATION_IN_FLIGHT":         ErrCodeMutationInFlight,
	"PRICING_INPUT_MISSING":      ErrCodePricingInputMissing,
	"REMOTE_UNAVAILABLE":         ErrCodeRemoteUnavailable,
	"EMPTY_CART":                 ErrCodeEmptyCart,
	"RECONCILIATION_IN_PROGRESS": ErrCodeReconcileInProgress,
	"QUANTITY_BELOW_MINIMUM":     ErrCodeQuantityBelowMinimum,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// Unknown codes pass through as-is.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}

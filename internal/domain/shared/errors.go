package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrStaleStock          = NewDomainError("STALE_STOCK", "Requested quantity exceeds available stock")
	ErrMutationInFlight    = NewDomainError("MUTATION_IN_FLIGHT", "Another mutation for this cart line is still pending")
	ErrPricingInputMissing = NewDomainError("PRICING_INPUT_MISSING", "Cart line has no usable price")
	ErrRemoteUnavailable   = NewDomainError("REMOTE_UNAVAILABLE", "Remote cart service is unreachable")
)

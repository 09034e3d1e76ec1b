package shared

// Error codes shared across the service
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeDatasetMissing = "DATASET_MISSING"
	CodeUpstream       = "UPSTREAM_UNAVAILABLE"
	CodeInternal       = "INTERNAL_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches another DomainError by code so sentinel values work with errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error that keeps cause for logging.
// Message stays client safe; cause is only visible through Error/Unwrap.
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common domain errors
var (
	ErrInvalidInput   = NewDomainError(CodeValidation, "Invalid input provided")
	ErrNotFound       = NewDomainError(CodeNotFound, "Resource not found")
	ErrDatasetMissing = NewDomainError(CodeDatasetMissing, "Price dataset is not available")
	ErrUpstream       = NewDomainError(CodeUpstream, "Price providers are unavailable")
	ErrInternal       = NewDomainError(CodeInternal, "Internal error")
)

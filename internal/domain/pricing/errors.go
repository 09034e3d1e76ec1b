package pricing

import (
	"github.com/arbicart/backend/internal/domain/shared"
)

// RequestError is a client-facing failure of a price request
type RequestError struct {
	Err            *shared.DomainError
	Hint           string
	AvailableItems []string
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Code returns the domain error code
func (e *RequestError) Code() string {
	return e.Err.Code
}

// NewValidationError reports bad or missing input
func NewValidationError(message string) *RequestError {
	return &RequestError{Err: shared.NewDomainError(shared.CodeValidation, message)}
}

// NewNotFoundError reports that no requested item resolved in any ZIP
func NewNotFoundError(available []string) *RequestError {
	return &RequestError{
		Err:            shared.NewDomainError(shared.CodeNotFound, "No prices found for the requested items"),
		Hint:           "Try one of the available items",
		AvailableItems: available,
	}
}

// NewDatasetMissingError reports that pre-scraped mode has no dataset to serve
func NewDatasetMissingError(cause error) *RequestError {
	return &RequestError{
		Err:  shared.WrapDomainError(shared.CodeDatasetMissing, "Price dataset is not available", cause),
		Hint: "Run the scrape job to build the dataset",
	}
}

// NewUpstreamError reports that every live provider failed and nothing resolved
func NewUpstreamError(cause error) *RequestError {
	return &RequestError{
		Err:  shared.WrapDomainError(shared.CodeUpstream, "Price providers are unavailable", cause),
		Hint: "Try again later",
	}
}

// NewInternalError hides cause behind a generic message
func NewInternalError(cause error) *RequestError {
	return &RequestError{Err: shared.WrapDomainError(shared.CodeInternal, "Failed to fetch prices", cause)}
}

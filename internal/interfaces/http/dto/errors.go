package dto

import (
	"context"
	"errors"
	"net/http"

	"github.com/arbicart/backend/internal/domain/pricing"
	"github.com/arbicart/backend/internal/domain/shared"
)

// Codes produced by the HTTP layer itself
const (
	// ErrCodeRateLimited is used when a client exceeds the price request limit
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodeRouteNotFound is used for unknown /api routes
	ErrCodeRouteNotFound = "ROUTE_NOT_FOUND"
	// ErrCodeTimeout is used when a request runs past its deadline
	ErrCodeTimeout = "REQUEST_TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:     http.StatusBadRequest,
	shared.CodeNotFound:       http.StatusNotFound,
	shared.CodeDatasetMissing: http.StatusServiceUnavailable,
	shared.CodeUpstream:       http.StatusBadGateway,
	shared.CodeInternal:       http.StatusInternalServerError,

	ErrCodeRateLimited:   http.StatusTooManyRequests,
	ErrCodeRouteNotFound: http.StatusNotFound,
	ErrCodeTimeout:       http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error          string   `json:"error"`
	Code           string   `json:"code"`
	Hint           string   `json:"hint,omitempty"`
	AvailableItems []string `json:"availableItems,omitempty"`
	RequestID      string   `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message, requestID string) ErrorResponse {
	return ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID,
	}
}

// FromError converts err into a status code and a client-safe body.
// Causes wrapped inside domain errors never reach the body.
func FromError(err error, requestID string) (int, ErrorResponse) {
	var reqErr *pricing.RequestError
	if errors.As(err, &reqErr) {
		resp := NewErrorResponse(reqErr.Code(), reqErr.Err.Message, requestID)
		resp.Hint = reqErr.Hint
		resp.AvailableItems = reqErr.AvailableItems
		return GetHTTPStatus(resp.Code), resp
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return GetHTTPStatus(domainErr.Code), NewErrorResponse(domainErr.Code, domainErr.Message, requestID)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return GetHTTPStatus(ErrCodeTimeout), NewErrorResponse(ErrCodeTimeout, "Request timed out", requestID)
	}
	return http.StatusInternalServerError, NewErrorResponse(shared.CodeInternal, "Failed to fetch prices", requestID)
}

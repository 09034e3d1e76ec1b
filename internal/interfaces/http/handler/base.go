// Package handler implements the HTTP handlers of the price API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arbicart/backend/internal/domain/shared"
	"github.com/arbicart/backend/internal/interfaces/http/dto"
	"github.com/arbicart/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 JSON response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 validation error response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, shared.CodeValidation, message)
}

// HandleError converts service errors into HTTP responses. Unknown errors
// become a generic 500 so causes never leak to clients.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	status, resp := dto.FromError(err, middleware.GetRequestID(c))
	c.JSON(status, resp)
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arbicart/backend/internal/domain/pricing"
	"github.com/arbicart/backend/internal/interfaces/http/dto"
)

// SourceReporter reports the active price source
type SourceReporter interface {
	Mode() pricing.Source
}

// SystemHandler serves the liveness endpoint
type SystemHandler struct {
	BaseHandler
	source    SourceReporter
	cache     string
	startTime time.Time
	now       func() time.Time
}

// NewSystemHandler creates a new SystemHandler. cacheBackend names the
// response cache in use, e.g. "redis" or "memory".
func NewSystemHandler(source SourceReporter, cacheBackend string) *SystemHandler {
	return &SystemHandler{
		source:    source,
		cache:     cacheBackend,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Health handles GET /api/health
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, dto.HealthResponse{
		Status: "ok",
		Source: h.source.Mode().String(),
		Cache:  h.cache,
		Uptime: h.now().Sub(h.startTime).Round(time.Second).String(),
	})
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbicart/backend/internal/domain/pricing"
	"github.com/arbicart/backend/internal/interfaces/http/dto"
)

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler(new(MockPriceResolver), "memory")
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_Health(t *testing.T) {
	svc := new(MockPriceResolver)
	svc.On("Mode").Return(pricing.SourceScraper)

	h := NewSystemHandler(svc, "redis")
	h.now = func() time.Time { return h.startTime.Add(90*time.Minute + 400*time.Millisecond) }

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/health", nil)

	h.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.HealthResponse{
		Status: "ok",
		Source: "scraper",
		Cache:  "redis",
		Uptime: "1h30m0s",
	}, resp)
}

package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apppricing "github.com/arbicart/backend/internal/application/pricing"
	"github.com/arbicart/backend/internal/domain/pricing"
	"github.com/arbicart/backend/internal/interfaces/http/dto"
	"github.com/arbicart/backend/internal/interfaces/http/middleware"
)

// PriceResolver is the price service surface the handlers need
type PriceResolver interface {
	Resolve(ctx context.Context, q apppricing.PriceQuery) (*apppricing.PriceResponse, error)
	AvailableItems(ctx context.Context) ([]string, error)
	Zips() []apppricing.ZipResponse
	Mode() pricing.Source
}

// PriceHandler serves basket comparisons and the reference data behind them
type PriceHandler struct {
	BaseHandler
	service PriceResolver
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(service PriceResolver) *PriceHandler {
	return &PriceHandler{service: service}
}

// GetPrices handles GET /api/prices?items=milk,eggs&zip=14850&compare=14882,14853
func (h *PriceHandler) GetPrices(c *gin.Context) {
	var req dto.PricesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, middleware.ValidationMessage(err))
		return
	}

	resp, err := h.service.Resolve(c.Request.Context(), apppricing.PriceQuery{
		Items:   pricing.ParseItems(req.Items),
		Zip:     strings.TrimSpace(req.Zip),
		Address: strings.TrimSpace(req.Address),
		Compare: splitList(req.Compare),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetZips handles GET /api/zips
func (h *PriceHandler) GetZips(c *gin.Context) {
	h.Success(c, dto.ZipsResponse{Zips: h.service.Zips()})
}

// GetItems handles GET /api/items
func (h *PriceHandler) GetItems(c *gin.Context) {
	items, err := h.service.AvailableItems(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ItemsResponse{Items: items, Source: h.service.Mode().String()})
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

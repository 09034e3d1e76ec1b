package router

import (
	"github.com/gin-gonic/gin"

	"github.com/arbicart/backend/internal/interfaces/http/handler"
)

// NewPriceAPI groups the price endpoints. priceGuards run before
// GET /prices only; the reference endpoints are cheap and unguarded.
func NewPriceAPI(prices *handler.PriceHandler, system *handler.SystemHandler, priceGuards ...gin.HandlerFunc) *DomainGroup {
	api := NewDomainGroup("pricing", "")
	api.GET("/prices", append(priceGuards, prices.GetPrices)...)
	api.GET("/zips", prices.GetZips)
	api.GET("/items", prices.GetItems)
	api.GET("/health", system.Health)
	return api
}

package dto

import (
	apppricing "github.com/arbicart/backend/internal/application/pricing"
)

// PricesRequest binds the query of GET /api/prices
type PricesRequest struct {
	Items   string `form:"items" binding:"max=2000"`
	Zip     string `form:"zip" binding:"omitempty,zipcode"`
	Address string `form:"address" binding:"max=200"`
	Compare string `form:"compare" binding:"max=300"`
}

// ZipsResponse lists the reference ZIPs
type ZipsResponse struct {
	Zips []apppricing.ZipResponse `json:"zips"`
}

// ItemsResponse lists the items the service can price
type ItemsResponse struct {
	Items  []string `json:"items"`
	Source string   `json:"source"`
}

// HealthResponse reports liveness and the active price source
type HealthResponse struct {
	Status string `json:"status"`
	Source string `json:"source"`
	Cache  string `json:"cache"`
	Uptime string `json:"uptime"`
}

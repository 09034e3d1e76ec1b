package ecommerce

import "encoding/json"

// commerceSearchRequest is the body of a catalog product search
type commerceSearchRequest struct {
	Query    string           `json:"query"`
	Location commerceLocation `json:"location"`
	Limit    int              `json:"limit"`
}

type commerceLocation struct {
	AddressLine1 string `json:"address_line_1"`
}

// commerceSearchResponse accepts both the "products" and the older "items" envelope
type commerceSearchResponse struct {
	Products []commerceProduct `json:"products"`
	Items    []commerceProduct `json:"items"`
}

func (r commerceSearchResponse) candidates() []commerceProduct {
	if len(r.Products) > 0 {
		return r.Products
	}
	return r.Items
}

type commerceProduct struct {
	Name         string          `json:"name"`
	Title        string          `json:"title"`
	Price        json.RawMessage `json:"price"`
	UnitPrice    json.RawMessage `json:"unit_price"`
	Unit         string          `json:"unit"`
	Size         string          `json:"size"`
	RetailerName string          `json:"retailer_name"`
	Store        string          `json:"store"`
	ImageURL     string          `json:"image_url"`
	Thumbnail    string          `json:"thumbnail"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

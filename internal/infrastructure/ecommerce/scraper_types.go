package ecommerce

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ScraperRunSucceeded is the terminal status of a successful actor run
const ScraperRunSucceeded = "SUCCEEDED"

type scraperRunInput struct {
	PostalCode    string `json:"postalCode"`
	StreetAddress string `json:"streetAddress"`
	SearchQuery   string `json:"searchQuery"`
}

type scraperRunResponse struct {
	Data struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
}

// scraperProduct is one dataset row. Price is either a number or a nested
// object from the storefront's GraphQL payload.
type scraperProduct struct {
	Name         string          `json:"name"`
	PriceString  string          `json:"priceString"`
	Price        json.RawMessage `json:"price"`
	Size         string          `json:"size"`
	RetailerName string          `json:"retailerName"`
	Store        string          `json:"store"`
	ImageURL     string          `json:"imageUrl"`
}

type scraperNestedPrice struct {
	ViewSection struct {
		PriceString string `json:"priceString"`
		ItemCard    struct {
			PriceString       string `json:"priceString"`
			PricingUnitString string `json:"pricingUnitString"`
		} `json:"itemCard"`
	} `json:"viewSection"`
}

func (p scraperProduct) nested() scraperNestedPrice {
	var n scraperNestedPrice
	if len(p.Price) > 0 && p.Price[0] == '{' {
		_ = json.Unmarshal(p.Price, &n)
	}
	return n
}

// price tries the flat price string, then the nested strings, then a
// plain numeric price field.
func (p scraperProduct) price() (decimal.Decimal, bool) {
	if p.PriceString != "" {
		if d, ok := ParsePriceString(p.PriceString); ok {
			return d, true
		}
	}
	n := p.nested()
	if s := firstNonEmpty(n.ViewSection.ItemCard.PriceString, n.ViewSection.PriceString); s != "" {
		if d, ok := ParsePriceString(s); ok {
			return d, true
		}
	}
	return ExtractPrice(p.Price)
}

func (p scraperProduct) unit() string {
	return firstNonEmpty(p.nested().ViewSection.ItemCard.PricingUnitString, p.Size, "each")
}

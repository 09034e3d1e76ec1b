package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// PriceQuery is one basket comparison request
type PriceQuery struct {
	// Items are raw item names; they are normalized and deduplicated
	Items []string
	// Zip is the home ZIP; empty means the configured default
	Zip string
	// Address localizes live providers; empty uses the ZIP's address on file
	Address string
	// Compare restricts the comparison ZIPs; empty uses the default set
	Compare []string
}

// PricedItemResponse is one item price on the wire
type PricedItemResponse struct {
	Name  string  `json:"name,omitempty"`
	Price float64 `json:"price"`
	Store string  `json:"store"`
	Unit  string  `json:"unit,omitempty"`
	Image string  `json:"image,omitempty"`
}

// ZipSnapshotResponse is one ZIP's priced basket on the wire
type ZipSnapshotResponse struct {
	Neighborhood string                        `json:"neighborhood"`
	Lat          float64                       `json:"lat"`
	Lng          float64                       `json:"lng"`
	MedianIncome int                           `json:"medianIncome,omitempty"`
	Store        string                        `json:"store"`
	Items        map[string]PricedItemResponse `json:"items"`
	BasketTotal  float64                       `json:"basketTotal"`
}

// SavingsResponse compares the home basket with the cheapest ZIP
type SavingsResponse struct {
	CheapestZip          string  `json:"cheapestZip"`
	CheapestNeighborhood string  `json:"cheapestNeighborhood"`
	HomeTotal            float64 `json:"homeTotal"`
	CheapestTotal        float64 `json:"cheapestTotal"`
	PerTrip              float64 `json:"perTrip"`
	Monthly              float64 `json:"monthly"`
	Percent              float64 `json:"percent"`
}

// PriceResponse is the basket comparison served by GET /api/prices and
// baked into the static client data file.
type PriceResponse struct {
	HomeZip      string                         `json:"homeZip"`
	Items        []string                       `json:"items"`
	Source       string                         `json:"source"`
	ScrapedAt    *time.Time                     `json:"scrapedAt,omitempty"`
	ZipsReturned int                            `json:"zipsReturned"`
	ZipOrder     []string                       `json:"zipOrder"`
	PricesByZip  map[string]ZipSnapshotResponse `json:"pricesByZip"`
	Savings      *SavingsResponse               `json:"savings,omitempty"`
	Cached       bool                           `json:"cached"`
}

// ZipResponse is a reference ZIP for the map
type ZipResponse struct {
	Zip             string  `json:"zip"`
	Neighborhood    string  `json:"neighborhood"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	MedianIncome    int     `json:"medianIncome"`
	PriceMultiplier float64 `json:"priceMultiplier"`
	Store           string  `json:"store"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// ToPriceResponse converts a domain response to its wire form
func ToPriceResponse(r *pricing.PriceResponse, cached bool) *PriceResponse {
	out := &PriceResponse{
		HomeZip:      r.HomeZip,
		Items:        r.Items,
		Source:       r.Source.String(),
		ScrapedAt:    r.ScrapedAt,
		ZipsReturned: r.ZipsReturned(),
		ZipOrder:     r.ZipOrder,
		PricesByZip:  make(map[string]ZipSnapshotResponse, len(r.PricesByZip)),
		Cached:       cached,
	}
	if out.Items == nil {
		out.Items = []string{}
	}
	if out.ZipOrder == nil {
		out.ZipOrder = []string{}
	}
	for zip, snap := range r.PricesByZip {
		out.PricesByZip[zip] = toZipSnapshotResponse(snap)
	}
	if s := r.Savings; s != nil {
		out.Savings = &SavingsResponse{
			CheapestZip:          s.CheapestZip,
			CheapestNeighborhood: s.CheapestNeighborhood,
			HomeTotal:            money(s.HomeTotal),
			CheapestTotal:        money(s.CheapestTotal),
			PerTrip:              money(s.PerTrip),
			Monthly:              money(s.Monthly),
			Percent:              s.Percent.Round(1).InexactFloat64(),
		}
	}
	return out
}

func toZipSnapshotResponse(s pricing.ZipSnapshot) ZipSnapshotResponse {
	items := make(map[string]PricedItemResponse, len(s.Items))
	for name, it := range s.Items {
		items[name] = PricedItemResponse{
			Name:  it.Name,
			Price: money(it.Price),
			Store: it.Store,
			Unit:  it.Unit,
			Image: it.Image,
		}
	}
	return ZipSnapshotResponse{
		Neighborhood: s.Neighborhood,
		Lat:          s.Lat,
		Lng:          s.Lng,
		MedianIncome: s.MedianIncome,
		Store:        s.Store,
		Items:        items,
		BasketTotal:  money(s.BasketTotal),
	}
}

// ToZipResponses converts reference ZIP records
func ToZipResponses(records []pricing.ZipRecord) []ZipResponse {
	out := make([]ZipResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ZipResponse{
			Zip:             r.Zip,
			Neighborhood:    r.Neighborhood,
			Lat:             r.Lat,
			Lng:             r.Lng,
			MedianIncome:    r.MedianIncome,
			PriceMultiplier: r.PriceMultiplier.InexactFloat64(),
			Store:           r.StoreName,
		})
	}
	return out
}

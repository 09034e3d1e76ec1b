package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies where a response's prices came from
type Source string

const (
	SourceMock        Source = "mock"
	SourceScraper     Source = "scraper"
	SourceCommerceAPI Source = "commerce-api"
	SourcePreScraped  Source = "pre-scraped"
)

// IsValid returns true if the source is one of the known values
func (s Source) IsValid() bool {
	switch s {
	case SourceMock, SourceScraper, SourceCommerceAPI, SourcePreScraped:
		return true
	}
	return false
}

// IsLive reports whether prices came from a metered live provider
func (s Source) IsLive() bool {
	return s == SourceScraper || s == SourceCommerceAPI
}

// String returns the string representation
func (s Source) String() string {
	return string(s)
}

// PricedItem is the resolved price of one item in one ZIP
type PricedItem struct {
	Name  string          `json:"name,omitempty"`
	Price decimal.Decimal `json:"price"`
	Store string          `json:"store"`
	Unit  string          `json:"unit,omitempty"`
	Image string          `json:"image,omitempty"`
}

// HasPrice reports whether the item carries a usable (positive) price
func (p PricedItem) HasPrice() bool {
	return p.Price.IsPositive()
}

// ZipSnapshot is the basket priced in one ZIP.
// Build it with NewZipSnapshot so BasketTotal always matches Items.
type ZipSnapshot struct {
	Neighborhood string                `json:"neighborhood"`
	Lat          float64               `json:"lat"`
	Lng          float64               `json:"lng"`
	MedianIncome int                   `json:"medianIncome,omitempty"`
	Store        string                `json:"store"`
	Items        map[string]PricedItem `json:"items"`
	BasketTotal  decimal.Decimal       `json:"basketTotal"`
}

// NewZipSnapshot copies items, drops entries without a positive price and
// computes the basket total.
func NewZipSnapshot(neighborhood string, lat, lng float64, medianIncome int, store string, items map[string]PricedItem) ZipSnapshot {
	kept := make(map[string]PricedItem, len(items))
	for name, item := range items {
		if item.HasPrice() {
			kept[name] = item
		}
	}
	return ZipSnapshot{
		Neighborhood: neighborhood,
		Lat:          lat,
		Lng:          lng,
		MedianIncome: medianIncome,
		Store:        store,
		Items:        kept,
		BasketTotal:  BasketTotal(kept),
	}
}

// NewZipSnapshotForRecord builds a snapshot using the reference data of rec
func NewZipSnapshotForRecord(rec ZipRecord, store string, items map[string]PricedItem) ZipSnapshot {
	if store == "" {
		store = rec.StoreName
	}
	return NewZipSnapshot(rec.Neighborhood, rec.Lat, rec.Lng, rec.MedianIncome, store, items)
}

// IsEmpty reports whether no requested item resolved in this ZIP
func (s ZipSnapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// BasketTotal sums item prices rounded to cents
func BasketTotal(items map[string]PricedItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total.Round(2)
}

// PriceResponse compares a basket across ZIPs
type PriceResponse struct {
	HomeZip     string                 `json:"homeZip"`
	Items       []string               `json:"items"`
	Source      Source                 `json:"source"`
	PricesByZip map[string]ZipSnapshot `json:"pricesByZip"`
	ZipOrder    []string               `json:"zipOrder"`
	ScrapedAt   *time.Time             `json:"scrapedAt,omitempty"`
	Savings     *Savings               `json:"savings,omitempty"`
	ResolvedAt  time.Time              `json:"resolvedAt"`
}

// ZipsReturned is the number of ZIPs present in the response
func (r *PriceResponse) ZipsReturned() int {
	return len(r.PricesByZip)
}

// AddSnapshot records snap for zip, keeping ZipOrder in insertion order.
// Empty snapshots are ignored.
func (r *PriceResponse) AddSnapshot(zip string, snap ZipSnapshot) bool {
	if snap.IsEmpty() {
		return false
	}
	if r.PricesByZip == nil {
		r.PricesByZip = make(map[string]ZipSnapshot)
	}
	if _, exists := r.PricesByZip[zip]; !exists {
		r.ZipOrder = append(r.ZipOrder, zip)
	}
	r.PricesByZip[zip] = snap
	return true
}

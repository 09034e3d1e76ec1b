// Package dataset persists the pre-scraped price snapshot.
//
// The on-disk layout is the prices.json document the static client reads:
// prices are plain JSON numbers and every ZIP carries its basket total and
// item count so the client never recomputes them.
package dataset

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbicart/backend/internal/domain/pricing"
)

type fileItem struct {
	Price float64 `json:"price"`
	Store string  `json:"store"`
	Unit  string  `json:"unit,omitempty"`
	Name  string  `json:"name,omitempty"`
	Image string  `json:"image,omitempty"`
}

type fileZip struct {
	Neighborhood string              `json:"neighborhood"`
	Lat          float64             `json:"lat"`
	Lng          float64             `json:"lng"`
	Store        string              `json:"store"`
	Items        map[string]fileItem `json:"items"`
	BasketTotal  float64             `json:"basketTotal"`
	ItemCount    int                 `json:"itemCount"`
}

type fileDataset struct {
	ScrapedAt     time.Time          `json:"scrapedAt"`
	ItemsSearched []string           `json:"itemsSearched"`
	ZipCount      int                `json:"zipCount"`
	PricesByZip   map[string]fileZip `json:"pricesByZip"`
}

// Encode renders d as an indented prices.json document
func Encode(d *pricing.Dataset) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("encode dataset: nil dataset")
	}
	doc := fileDataset{
		ScrapedAt:     d.ScrapedAt.UTC(),
		ItemsSearched: d.ItemsSearched,
		ZipCount:      len(d.PricesByZip),
		PricesByZip:   make(map[string]fileZip, len(d.PricesByZip)),
	}
	if doc.ItemsSearched == nil {
		doc.ItemsSearched = []string{}
	}
	for zip, dz := range d.PricesByZip {
		items := make(map[string]fileItem, len(dz.Items))
		for name, it := range dz.Items {
			if !it.HasPrice() {
				continue
			}
			items[name] = fileItem{
				Price: it.Price.Round(2).InexactFloat64(),
				Store: it.Store,
				Unit:  it.Unit,
				Name:  it.Name,
				Image: it.Image,
			}
		}
		doc.PricesByZip[zip] = fileZip{
			Neighborhood: dz.Neighborhood,
			Lat:          dz.Lat,
			Lng:          dz.Lng,
			Store:        dz.Store,
			Items:        items,
			BasketTotal:  pricing.BasketTotal(dz.Items).InexactFloat64(),
			ItemCount:    dz.ItemCount(),
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses a prices.json document. Entries without a positive price
// are dropped.
func Decode(data []byte) (*pricing.Dataset, error) {
	var doc fileDataset
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	d := pricing.NewDataset()
	d.ScrapedAt = doc.ScrapedAt
	d.ItemsSearched = doc.ItemsSearched
	for zip, fz := range doc.PricesByZip {
		items := make(map[string]pricing.PricedItem, len(fz.Items))
		for name, fi := range fz.Items {
			price := decimal.NewFromFloat(fi.Price).Round(2)
			if !price.IsPositive() {
				continue
			}
			items[name] = pricing.PricedItem{
				Name:  fi.Name,
				Price: price,
				Store: fi.Store,
				Unit:  fi.Unit,
				Image: fi.Image,
			}
		}
		d.PricesByZip[zip] = pricing.DatasetZip{
			Neighborhood: fz.Neighborhood,
			Lat:          fz.Lat,
			Lng:          fz.Lng,
			Store:        fz.Store,
			Items:        items,
		}
	}
	return d, nil
}

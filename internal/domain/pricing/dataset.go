package pricing

import (
	"context"
	"errors"
	"slices"
	"time"
)

// ErrDatasetNotFound is returned by a DatasetStore when no snapshot exists yet
var ErrDatasetNotFound = errors.New("pricing: pre-scraped dataset not found")

// DatasetZip holds the scraped prices of one ZIP
type DatasetZip struct {
	Neighborhood string
	Lat          float64
	Lng          float64
	Store        string
	Items        map[string]PricedItem
}

// ItemCount is the number of scraped items with a price
func (z DatasetZip) ItemCount() int {
	n := 0
	for _, item := range z.Items {
		if item.HasPrice() {
			n++
		}
	}
	return n
}

// Dataset is an offline snapshot produced by the scrape job
type Dataset struct {
	ScrapedAt     time.Time
	ItemsSearched []string
	PricesByZip   map[string]DatasetZip
}

// NewDataset returns an empty dataset
func NewDataset() *Dataset {
	return &Dataset{PricesByZip: make(map[string]DatasetZip)}
}

// Snapshot filters one ZIP of the dataset to the requested items.
// The second result is false if the ZIP is not in the dataset.
func (d *Dataset) Snapshot(zip string, items []string) (ZipSnapshot, bool) {
	dz, ok := d.PricesByZip[zip]
	if !ok {
		return ZipSnapshot{}, false
	}
	picked := make(map[string]PricedItem, len(items))
	for _, item := range items {
		if p, ok := dz.Items[item]; ok {
			picked[item] = p
		}
	}
	return NewZipSnapshot(dz.Neighborhood, dz.Lat, dz.Lng, 0, dz.Store, picked), true
}

// Zips returns the dataset's ZIPs with homeZip first, then reference table
// order, then any remaining ZIPs sorted.
func (d *Dataset) Zips(homeZip string) []string {
	out := make([]string, 0, len(d.PricesByZip))
	seen := make(map[string]struct{}, len(d.PricesByZip))
	add := func(z string) {
		if _, ok := d.PricesByZip[z]; !ok {
			return
		}
		if _, dup := seen[z]; dup {
			return
		}
		seen[z] = struct{}{}
		out = append(out, z)
	}
	add(homeZip)
	for _, rec := range knownZips {
		add(rec.Zip)
	}
	var rest []string
	for z := range d.PricesByZip {
		if _, ok := seen[z]; !ok {
			rest = append(rest, z)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

// Merge replaces the entry for zip and records items as searched
func (d *Dataset) Merge(zip string, dz DatasetZip, searched []string) {
	if d.PricesByZip == nil {
		d.PricesByZip = make(map[string]DatasetZip)
	}
	d.PricesByZip[zip] = dz
	for _, item := range searched {
		if !slices.Contains(d.ItemsSearched, item) {
			d.ItemsSearched = append(d.ItemsSearched, item)
		}
	}
}

// DatasetStore loads and saves the pre-scraped snapshot
type DatasetStore interface {
	Load(ctx context.Context) (*Dataset, error)
	Save(ctx context.Context, d *Dataset) error
}

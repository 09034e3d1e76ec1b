// Package mockprice implements the deterministic mock pricing model used
// when no live provider answers and for comparison ZIPs.
//
// A price is base × ZIP multiplier × jitter, rounded to cents. The jitter
// factor lies in [0.95, 1.049] and is derived from xxhash64 of
// "<item>|<zip>", so the same pair always yields the same price on every
// platform.
package mockprice

import (
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// DefaultBasePrice applies to items missing from the base table
var DefaultBasePrice = decimal.RequireFromString("3.99")

var (
	jitterFloor = decimal.RequireFromString("0.95")
	jitterStep  = decimal.New(1, -3)
)

var basePrices = map[string]string{
	"milk":           "4.79",
	"eggs":           "5.99",
	"bread":          "4.49",
	"butter":         "5.29",
	"chicken breast": "8.99",
	"ground beef":    "7.49",
	"rice":           "3.99",
	"pasta":          "2.49",
	"bananas":        "0.79",
	"apples":         "2.29",
	"orange juice":   "4.99",
	"cheese":         "5.49",
	"yogurt":         "1.69",
	"cereal":         "4.99",
	"coffee":         "9.99",
	"sugar":          "3.49",
	"flour":          "3.99",
	"olive oil":      "7.99",
	"tomatoes":       "3.29",
	"potatoes":       "4.49",
	"onions":         "2.49",
	"garlic":         "1.29",
	"lettuce":        "2.99",
	"frozen pizza":   "6.99",
	"ice cream":      "5.99",
	"ramen":          "0.99",
	"avocado":        "2.49",
	"spinach":        "3.49",
	"salmon":         "12.99",
	"quinoa":         "5.99",
	"blueberries":    "4.99",
}

// Model prices items from a fixed base table
type Model struct {
	base map[string]decimal.Decimal
}

// NewModel returns a model over the built-in base table
func NewModel() *Model {
	base := make(map[string]decimal.Decimal, len(basePrices))
	for item, p := range basePrices {
		base[item] = decimal.RequireFromString(p)
	}
	return &Model{base: base}
}

// BasePrice returns the table price for item and whether it was listed
func (m *Model) BasePrice(item string) (decimal.Decimal, bool) {
	p, ok := m.base[pricing.NormalizeItem(item)]
	if !ok {
		return DefaultBasePrice, false
	}
	return p, true
}

// KnownItems returns the items of the base table in sorted order
func (m *Model) KnownItems() []string {
	items := make([]string, 0, len(m.base))
	for item := range m.base {
		items = append(items, item)
	}
	slices.Sort(items)
	return items
}

// JitterFactor returns the stable price factor for an item in a ZIP
func JitterFactor(item, zip string) decimal.Decimal {
	h := xxhash.Sum64String(pricing.NormalizeItem(item) + "|" + zip)
	return jitterFloor.Add(jitterStep.Mul(decimal.NewFromInt(int64(h % 100))))
}

// PriceFor prices one item in one ZIP. It never fails: unknown items use
// DefaultBasePrice and unknown ZIPs use a multiplier of 1 and the default store.
func (m *Model) PriceFor(item, zip string) pricing.PricedItem {
	base, _ := m.BasePrice(item)

	multiplier := decimal.NewFromInt(1)
	store := pricing.DefaultStoreName
	if rec, ok := pricing.LookupZip(zip); ok {
		multiplier = rec.PriceMultiplier
		store = rec.StoreName
	}

	price := base.Mul(multiplier).Mul(JitterFactor(item, zip)).Round(2)
	return pricing.PricedItem{
		Price: price,
		Store: store,
	}
}

// PricesForZip prices every item in a known ZIP. The second result is
// false for ZIPs missing from the reference table.
func (m *Model) PricesForZip(items []string, zip string) (pricing.ZipSnapshot, bool) {
	rec, ok := pricing.LookupZip(zip)
	if !ok {
		return pricing.ZipSnapshot{}, false
	}
	priced := make(map[string]pricing.PricedItem, len(items))
	for _, item := range items {
		name := pricing.NormalizeItem(item)
		if name == "" {
			continue
		}
		priced[name] = m.PriceFor(name, zip)
	}
	return pricing.NewZipSnapshotForRecord(rec, rec.StoreName, priced), true
}

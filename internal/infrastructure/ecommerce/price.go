package ecommerce

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// ParsePriceString strips everything except digits and the decimal point
// ("$3.99", "3,99 USD" style) and parses what remains. Values that do not
// parse or are not positive count as no price.
func ParsePriceString(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	// "1.299.00" style strings keep only the leading number.
	if first := strings.IndexByte(cleaned, '.'); first >= 0 {
		if second := strings.IndexByte(cleaned[first+1:], '.'); second >= 0 {
			cleaned = cleaned[:first+1+second]
		}
	}
	if cleaned == "" || cleaned == "." {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// ExtractPrice reads a price from a raw JSON value that may be a number or
// a formatted currency string.
func ExtractPrice(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 {
		return decimal.Zero, false
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		d, err := decimal.NewFromString(num.String())
		if err != nil || !d.IsPositive() {
			return decimal.Zero, false
		}
		return d, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParsePriceString(s)
	}
	return decimal.Zero, false
}

// LowestPriced returns the candidate with the lowest positive price
func LowestPriced(candidates []pricing.PricedItem) (pricing.PricedItem, bool) {
	var best pricing.PricedItem
	found := false
	for _, c := range candidates {
		if !c.HasPrice() {
			continue
		}
		if !found || c.Price.LessThan(best.Price) {
			best = c
			found = true
		}
	}
	return best, found
}

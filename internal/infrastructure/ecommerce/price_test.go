package ecommerce

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/arbicart/backend/internal/domain/pricing"
)

func TestParsePriceString(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"$3.99", "3.99", true},
		{"3.99", "3.99", true},
		{"$12", "12", true},
		{"USD 4.50 / lb", "4.5", true},
		{"$1,299.00", "1299", true},
		{"1.29.99", "1.29", true},
		{"$0.00", "", false},
		{"free", "", false},
		{"", "", false},
		{"$.", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, ok := ParsePriceString(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), "got %s", d)
			}
		})
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"number", `4.79`, "4.79", true},
		{"integer", `5`, "5", true},
		{"numeric string", `"3.49"`, "3.49", true},
		{"currency string", `"$3.49"`, "3.49", true},
		{"zero", `0`, "", false},
		{"negative", `-2.5`, "", false},
		{"null", `null`, "", false},
		{"object", `{"amount": 3}`, "", false},
		{"garbage string", `"n/a"`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ExtractPrice(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), "got %s", d)
			}
		})
	}

	_, ok := ExtractPrice(nil)
	assert.False(t, ok)
}

func TestLowestPriced(t *testing.T) {
	item := func(name, price string) pricing.PricedItem {
		return pricing.PricedItem{Name: name, Price: decimal.RequireFromString(price)}
	}

	best, ok := LowestPriced([]pricing.PricedItem{
		item("first", "4.99"),
		item("free", "0"),
		item("cheapest", "3.49"),
		item("middle", "3.99"),
	})
	assert.True(t, ok)
	assert.Equal(t, "cheapest", best.Name)

	_, ok = LowestPriced([]pricing.PricedItem{item("free", "0")})
	assert.False(t, ok)

	_, ok = LowestPriced(nil)
	assert.False(t, ok)
}

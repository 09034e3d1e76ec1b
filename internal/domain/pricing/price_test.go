package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priced(price string) PricedItem {
	return PricedItem{Price: decimal.RequireFromString(price), Store: "Test Store"}
}

func TestBasketTotal(t *testing.T) {
	total := BasketTotal(map[string]PricedItem{
		"milk":  priced("4.79"),
		"eggs":  priced("5.99"),
		"bread": priced("4.49"),
	})
	assert.Equal(t, "15.27", total.StringFixed(2))
	assert.True(t, BasketTotal(nil).IsZero())
}

func TestNewZipSnapshot_DropsUnpricedItems(t *testing.T) {
	snap := NewZipSnapshot("Lansing", 42.57, -76.52, 62000, "Tops Lansing", map[string]PricedItem{
		"milk":   priced("4.21"),
		"eggs":   priced("0"),
		"butter": priced("-1.00"),
	})

	require.Len(t, snap.Items, 1)
	assert.Contains(t, snap.Items, "milk")
	assert.True(t, snap.BasketTotal.Equal(decimal.RequireFromString("4.21")))
}

func TestNewZipSnapshotForRecord(t *testing.T) {
	rec, _ := LookupZip("14853")

	snap := NewZipSnapshotForRecord(rec, "", map[string]PricedItem{"milk": priced("5.00")})
	assert.Equal(t, "Collegetown Market", snap.Store)
	assert.Equal(t, 28000, snap.MedianIncome)

	snap = NewZipSnapshotForRecord(rec, "Instacart", map[string]PricedItem{"milk": priced("5.00")})
	assert.Equal(t, "Instacart", snap.Store)
}

func TestPriceResponse_AddSnapshot(t *testing.T) {
	resp := &PriceResponse{HomeZip: "14850"}

	added := resp.AddSnapshot("14850", NewZipSnapshot("Ithaca", 0, 0, 0, "s", map[string]PricedItem{"milk": priced("1.00")}))
	assert.True(t, added)

	added = resp.AddSnapshot("14853", NewZipSnapshot("Collegetown", 0, 0, 0, "s", nil))
	assert.False(t, added)

	assert.Equal(t, []string{"14850"}, resp.ZipOrder)
	assert.Equal(t, 1, resp.ZipsReturned())
	for _, snap := range resp.PricesByZip {
		assert.NotEmpty(t, snap.Items)
	}
}

func TestSource(t *testing.T) {
	assert.True(t, SourceCommerceAPI.IsLive())
	assert.True(t, SourceScraper.IsLive())
	assert.False(t, SourceMock.IsLive())
	assert.False(t, SourcePreScraped.IsLive())
	assert.True(t, SourcePreScraped.IsValid())
	assert.False(t, Source("cache").IsValid())
}

func TestProviderOutcome(t *testing.T) {
	out := Found(nil)
	assert.Equal(t, OutcomeFailed, out.Kind)
	assert.ErrorIs(t, out.Err, ErrProviderNoResults)

	out = Found(map[string]PricedItem{"milk": priced("1.00")})
	assert.Equal(t, OutcomeFound, out.Kind)
	assert.Equal(t, "found", out.Kind.String())

	out = Abstained(ErrProviderNotConfigured)
	assert.Equal(t, "abstained", out.Kind.String())
}

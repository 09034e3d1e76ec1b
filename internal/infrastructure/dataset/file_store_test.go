package dataset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbicart/backend/internal/domain/pricing"
	infraconfig "github.com/arbicart/backend/internal/infrastructure/config"
)

func sampleDataset() *pricing.Dataset {
	d := pricing.NewDataset()
	d.ScrapedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d.Merge("14850", pricing.DatasetZip{
		Neighborhood: "Ithaca (Downtown)",
		Lat:          42.444,
		Lng:          -76.5019,
		Store:        "Wegmans Ithaca",
		Items: map[string]pricing.PricedItem{
			"milk": {Name: "Whole Milk", Price: decimal.RequireFromString("4.19"), Store: "Wegmans", Unit: "1 gal"},
			"eggs": {Price: decimal.RequireFromString("3.49"), Store: "Wegmans"},
		},
	}, []string{"milk", "eggs", "saffron"})
	d.Merge("14882", pricing.DatasetZip{
		Neighborhood: "Lansing",
		Store:        "Tops Lansing",
		Items: map[string]pricing.PricedItem{
			"milk": {Price: decimal.RequireFromString("3.69"), Store: "Tops"},
		},
	}, []string{"milk"})
	return d
}

func TestEncode_Layout(t *testing.T) {
	data, err := Encode(sampleDataset())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "2026-03-01T12:00:00Z", doc["scrapedAt"])
	assert.Equal(t, float64(2), doc["zipCount"])
	assert.Equal(t, []any{"milk", "eggs", "saffron"}, doc["itemsSearched"])

	home := doc["pricesByZip"].(map[string]any)["14850"].(map[string]any)
	assert.Equal(t, 7.68, home["basketTotal"])
	assert.Equal(t, float64(2), home["itemCount"])
	milk := home["items"].(map[string]any)["milk"].(map[string]any)
	assert.Equal(t, 4.19, milk["price"])
	assert.Equal(t, "1 gal", milk["unit"])
	eggs := home["items"].(map[string]any)["eggs"].(map[string]any)
	assert.NotContains(t, eggs, "unit")
}

func TestDecode_DropsUnpricedItems(t *testing.T) {
	d, err := Decode([]byte(`{
		"scrapedAt": "2026-03-01T12:00:00Z",
		"itemsSearched": ["milk", "eggs"],
		"pricesByZip": {
			"14850": {
				"neighborhood": "Ithaca (Downtown)",
				"store": "Wegmans Ithaca",
				"items": {
					"milk": {"price": 4.19, "store": "Wegmans"},
					"eggs": {"price": 0, "store": "Wegmans"}
				}
			}
		}
	}`))
	require.NoError(t, err)

	dz := d.PricesByZip["14850"]
	assert.Len(t, dz.Items, 1)
	assert.True(t, dz.Items["milk"].Price.Equal(decimal.RequireFromString("4.19")))
	assert.Equal(t, []string{"milk", "eggs"}, d.ItemsSearched)

	_, err = Decode([]byte(`{not json`))
	assert.Error(t, err)
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "prices.json")
	store := NewFileStore(path, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleDataset()))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.ScrapedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	require.Contains(t, loaded.PricesByZip, "14882")

	snap, ok := loaded.Snapshot("14850", []string{"milk", "eggs", "bread"})
	require.True(t, ok)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, "7.68", snap.BasketTotal.StringFixed(2))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_Missing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "prices.json"), nil)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, pricing.ErrDatasetNotFound)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	_, err := NewFileStore(path, nil).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, pricing.ErrDatasetNotFound)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewStore(ctx, infraconfig.DatasetConfig{Mode: infraconfig.DatasetModeOff}, nil)
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = NewStore(ctx, infraconfig.DatasetConfig{Mode: infraconfig.DatasetModeFile, Path: "x.json"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	_, err = NewStore(ctx, infraconfig.DatasetConfig{Mode: "ftp"}, nil)
	assert.Error(t, err)

	_, err = NewStore(ctx, infraconfig.DatasetConfig{Mode: infraconfig.DatasetModeS3}, nil)
	assert.Error(t, err)
}

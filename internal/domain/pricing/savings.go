package pricing

import "github.com/shopspring/decimal"

// TripsPerMonth converts per-trip savings into a monthly figure
const TripsPerMonth = 4

// Savings compares the home basket against the cheapest ZIP
type Savings struct {
	CheapestZip          string          `json:"cheapestZip"`
	CheapestNeighborhood string          `json:"cheapestNeighborhood"`
	HomeTotal            decimal.Decimal `json:"homeTotal"`
	CheapestTotal        decimal.Decimal `json:"cheapestTotal"`
	PerTrip              decimal.Decimal `json:"perTrip"`
	Monthly              decimal.Decimal `json:"monthly"`
	Percent              decimal.Decimal `json:"percent"`
}

// ComputeSavings finds the cheapest basket in resp and compares it to the
// home ZIP. Only ZIPs that priced every item the home ZIP priced are
// considered, so a partial basket never looks cheaper. Returns nil when the
// home ZIP is absent.
func ComputeSavings(resp *PriceResponse) *Savings {
	home, ok := resp.PricesByZip[resp.HomeZip]
	if !ok {
		return nil
	}

	cheapestZip := resp.HomeZip
	cheapest := home
	for _, zip := range resp.ZipOrder {
		snap := resp.PricesByZip[zip]
		if !coversBasket(snap, home) {
			continue
		}
		if snap.BasketTotal.LessThan(cheapest.BasketTotal) {
			cheapestZip, cheapest = zip, snap
		}
	}

	perTrip := home.BasketTotal.Sub(cheapest.BasketTotal)
	percent := decimal.Zero
	if home.BasketTotal.IsPositive() {
		percent = perTrip.Div(home.BasketTotal).Mul(decimal.NewFromInt(100)).Round(1)
	}

	return &Savings{
		CheapestZip:          cheapestZip,
		CheapestNeighborhood: cheapest.Neighborhood,
		HomeTotal:            home.BasketTotal,
		CheapestTotal:        cheapest.BasketTotal,
		PerTrip:              perTrip.Round(2),
		Monthly:              perTrip.Mul(decimal.NewFromInt(TripsPerMonth)).Round(2),
		Percent:              percent,
	}
}

func coversBasket(snap, home ZipSnapshot) bool {
	for item := range home.Items {
		if _, ok := snap.Items[item]; !ok {
			return false
		}
	}
	return true
}

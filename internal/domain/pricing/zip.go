package pricing

import (
	"github.com/shopspring/decimal"
)

// DefaultStoreName is used for ZIPs without a known grocery store
const DefaultStoreName = "Local Grocery"

// ZipRecord is static reference data for one supported ZIP code
type ZipRecord struct {
	Zip             string
	Neighborhood    string
	Lat             float64
	Lng             float64
	MedianIncome    int
	PriceMultiplier decimal.Decimal
	StoreName       string
	// Address is a street address inside the ZIP used to localize live
	// provider searches. Empty when none is on file.
	Address string
}

func zipRecord(zip, neighborhood string, lat, lng float64, income int, multiplier, store, address string) ZipRecord {
	return ZipRecord{
		Zip:             zip,
		Neighborhood:    neighborhood,
		Lat:             lat,
		Lng:             lng,
		MedianIncome:    income,
		PriceMultiplier: decimal.RequireFromString(multiplier),
		StoreName:       store,
		Address:         address,
	}
}

// knownZips is ordered: comparison lists follow this order.
var knownZips = []ZipRecord{
	zipRecord("14850", "Ithaca (Downtown)", 42.4440, -76.5019, 32000, "1.00", "Wegmans Ithaca", "301 E State St, Ithaca, NY 14850"),
	zipRecord("14853", "Collegetown / Cornell", 42.4430, -76.4856, 28000, "1.05", "Collegetown Market", "104 Dryden Rd, Ithaca, NY 14853"),
	zipRecord("14882", "Lansing", 42.5722, -76.5290, 62000, "0.88", "Tops Lansing", "2309 N Triphammer Rd, Ithaca, NY 14882"),
	zipRecord("14886", "Trumansburg", 42.5429, -76.6608, 48000, "0.82", "Trumansburg Grocery", "56 E Main St, Trumansburg, NY 14886"),
	zipRecord("14867", "Newfield", 42.3579, -76.5933, 52000, "0.85", "P&C Fresh Newfield", ""),
	zipRecord("14817", "Brooktondale", 42.3880, -76.3960, 44000, "0.80", "Brooktondale Market", ""),
	zipRecord("14830", "Corning", 42.1428, -77.0547, 38000, "0.78", "Tops Corning", "40 Centerway, Corning, NY 14830"),
	zipRecord("14845", "Horseheads", 42.1670, -76.8205, 55000, "0.83", "Horseheads Wegmans", "1400 County Rd 64, Horseheads, NY 14845"),
	zipRecord("14901", "Elmira", 42.0898, -76.8077, 30000, "0.75", "Tops Elmira", "100 N Main St, Elmira, NY 14901"),
	zipRecord("13045", "Cortland", 42.6012, -76.1805, 35000, "0.77", "Tops Cortland", "3980 NY-281, Cortland, NY 13045"),
}

var zipIndex = func() map[string]int {
	idx := make(map[string]int, len(knownZips))
	for i, z := range knownZips {
		idx[z.Zip] = i
	}
	return idx
}()

// LookupZip returns the reference record for zip
func LookupZip(zip string) (ZipRecord, bool) {
	i, ok := zipIndex[zip]
	if !ok {
		return ZipRecord{}, false
	}
	return knownZips[i], true
}

// KnownZips returns a copy of the reference table in its canonical order
func KnownZips() []ZipRecord {
	out := make([]ZipRecord, len(knownZips))
	copy(out, knownZips)
	return out
}

// SearchAddress returns the address to send to live providers for zip:
// the explicit address when given, else the address on file, else the ZIP.
func SearchAddress(zip, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if rec, ok := LookupZip(zip); ok && rec.Address != "" {
		return rec.Address
	}
	return zip
}

// IsZipFormat reports whether zip is exactly five ASCII digits
func IsZipFormat(zip string) bool {
	if len(zip) != 5 {
		return false
	}
	for i := 0; i < len(zip); i++ {
		if zip[i] < '0' || zip[i] > '9' {
			return false
		}
	}
	return true
}

// ZipOrder puts homeZip first, followed by the comparison ZIPs without
// repeats. An empty comparison list means every known ZIP.
func ZipOrder(homeZip string, comparison []string) []string {
	if comparison == nil {
		comparison = make([]string, 0, len(knownZips))
		for _, z := range knownZips {
			comparison = append(comparison, z.Zip)
		}
	}
	order := make([]string, 0, len(comparison)+1)
	order = append(order, homeZip)
	seen := map[string]struct{}{homeZip: {}}
	for _, z := range comparison {
		if _, dup := seen[z]; dup {
			continue
		}
		seen[z] = struct{}{}
		order = append(order, z)
	}
	return order
}

// DefaultComparisonZips returns the first limit known ZIPs other than homeZip.
func DefaultComparisonZips(homeZip string, limit int) []string {
	out := make([]string, 0, limit)
	for _, z := range knownZips {
		if len(out) >= limit {
			break
		}
		if z.Zip != homeZip {
			out = append(out, z.Zip)
		}
	}
	return out
}

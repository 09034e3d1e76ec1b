package pricing

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeItem trims an item name, collapses inner whitespace and applies
// Unicode case folding so "Olive  Oil" and "olive oil" are the same item.
func NormalizeItem(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	// Casers carry state and must not be shared between goroutines.
	return cases.Fold().String(strings.Join(fields, " "))
}

// NormalizeItems normalizes every name, drops blanks and removes duplicates
// while keeping the first occurrence order.
func NormalizeItems(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		item := NormalizeItem(r)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// ParseItems splits a comma separated basket and normalizes it.
func ParseItems(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	return NormalizeItems(strings.Split(csv, ","))
}

// CacheKey builds the response cache key for a basket in a home ZIP.
// Item order does not matter: permutations of a basket share one key.
func CacheKey(homeZip string, items []string) string {
	sorted := NormalizeItems(items)
	slices.Sort(sorted)
	return "prices:" + homeZip + ":" + strings.Join(sorted, ",")
}

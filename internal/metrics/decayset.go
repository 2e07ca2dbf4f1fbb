package metrics

import (
	"sort"
	"strings"
)

// CanonicalID normalises an object identifier for case-insensitive equality.
func CanonicalID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// MergeDecayed returns existing ∪ observed, canonicalised and sorted.
// The result never has fewer identifiers than existing.
func MergeDecayed(existing, observed []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(observed))
	for _, group := range [][]string{existing, observed} {
		for _, id := range group {
			id = CanonicalID(id)
			if id == "" {
				continue
			}
			seen[id] = struct{}{}
		}
	}

	merged := make([]string, 0, len(seen))
	for id := range seen {
		merged = append(merged, id)
	}
	sort.Strings(merged)
	return merged
}

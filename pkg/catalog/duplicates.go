package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ochoko/admin/pkg/sakeapi"
)

// SortKey orders the duplicate groups.
type SortKey string

const (
	// SortByCount orders by group size descending, ties by name ascending.
	SortByCount    SortKey = "count"
	SortByNameAsc  SortKey = "name_asc"
	SortByNameDesc SortKey = "name_desc"
)

// SortKeys lists the keys in menu order.
var SortKeys = []SortKey{SortByCount, SortByNameAsc, SortByNameDesc}

// ParseSortKey returns the key named by s, defaulting to SortByCount.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortByNameAsc, SortByNameDesc:
		return SortKey(s)
	default:
		return SortByCount
	}
}

// newCollator returns a Japanese collator. Collators are not safe for
// concurrent use, so each derivation gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.Japanese)
}

// DuplicateView filters groups by query and orders them by key.
// The input slice is not modified.
func DuplicateView(groups []sakeapi.DuplicateGroup, query string, key SortKey) []sakeapi.DuplicateGroup {
	return SortDuplicates(FilterDuplicates(groups, query), key)
}

// FilterDuplicates keeps the groups whose name, or some member's brewery
// name or prefecture, contains query case-insensitively. A blank query
// keeps everything.
func FilterDuplicates(groups []sakeapi.DuplicateGroup, query string) []sakeapi.DuplicateGroup {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]sakeapi.DuplicateGroup, 0, len(groups))
	for _, g := range groups {
		if q == "" || groupMatches(g, q) {
			out = append(out, g)
		}
	}
	return out
}

func groupMatches(g sakeapi.DuplicateGroup, q string) bool {
	if contains(g.Name, q) {
		return true
	}
	for _, s := range g.Sakes {
		if contains(s.BreweryName, q) || contains(s.BreweryPrefecture, q) {
			return true
		}
	}
	return false
}

func contains(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

// SortDuplicates returns a sorted copy of groups.
func SortDuplicates(groups []sakeapi.DuplicateGroup, key SortKey) []sakeapi.DuplicateGroup {
	out := slices.Clone(groups)
	col := newCollator()

	slices.SortStableFunc(out, func(a, b sakeapi.DuplicateGroup) int {
		switch key {
		case SortByNameAsc:
			return col.CompareString(a.Name, b.Name)
		case SortByNameDesc:
			return col.CompareString(b.Name, a.Name)
		default:
			if a.Count != b.Count {
				return b.Count - a.Count
			}
			return col.CompareString(a.Name, b.Name)
		}
	})
	return out
}

// GroupNames returns the names of groups in order.
func GroupNames(groups []sakeapi.DuplicateGroup) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return names
}

// FilterSakes keeps the sakes whose name or brewery name contains query
// case-insensitively.
func FilterSakes(sakes []sakeapi.Sake, query string) []sakeapi.Sake {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return sakes
	}
	out := make([]sakeapi.Sake, 0, len(sakes))
	for _, s := range sakes {
		if contains(s.Name, q) || contains(s.BreweryName, q) {
			out = append(out, s)
		}
	}
	return out
}

package catalog

import (
	"slices"
	"strconv"
	"strings"

	"github.com/ochoko/admin/pkg/sakeapi"
)

// Selection is the set of sake ids checked in the list.
// The zero value is empty.
type Selection struct {
	ids map[int64]struct{}
}

// NewSelection returns a selection holding ids.
func NewSelection(ids ...int64) Selection {
	s := Selection{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Has reports whether id is selected.
func (s Selection) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s Selection) Len() int {
	return len(s.ids)
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.ids) == 0
}

// Toggle flips one row.
func (s Selection) Toggle(id int64) Selection {
	next := NewSelection(s.IDs()...)
	if next.Has(id) {
		delete(next.ids, id)
	} else {
		next.ids[id] = struct{}{}
	}
	return next
}

// AllSelected reports whether every visible row is selected.
// An empty page is never "all selected".
func (s Selection) AllSelected(visible []int64) bool {
	if len(visible) == 0 {
		return false
	}
	for _, id := range visible {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// ToggleAll selects every visible row, or clears the selection when they
// are all selected already.
func (s Selection) ToggleAll(visible []int64) Selection {
	if s.AllSelected(visible) {
		return Selection{}
	}
	return NewSelection(visible...)
}

// Prune drops ids that are no longer visible.
func (s Selection) Prune(visible []int64) Selection {
	next := Selection{ids: make(map[int64]struct{}, len(s.ids))}
	for _, id := range visible {
		if s.Has(id) {
			next.ids[id] = struct{}{}
		}
	}
	return next
}

// IDs returns the selected ids in ascending order.
func (s Selection) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Encode serializes the selection as a comma separated id list.
func (s Selection) Encode() string {
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// DecodeSelection parses a list written by Encode. Non-positive or
// malformed ids are skipped.
func DecodeSelection(s string) Selection {
	var ids []int64
	for part := range strings.SplitSeq(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return NewSelection(ids...)
}

// SakeIDs returns the ids of sakes in order.
func SakeIDs(sakes []sakeapi.Sake) []int64 {
	ids := make([]int64, len(sakes))
	for i, s := range sakes {
		ids[i] = s.ID
	}
	return ids
}

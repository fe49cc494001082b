package catalog

import (
	"encoding/json"
	"slices"
)

// Expansion is the set of expanded duplicate groups, keyed by group name.
// The zero value has every group collapsed.
type Expansion struct {
	names map[string]struct{}
}

// IsExpanded reports whether the named group is open.
func (e Expansion) IsExpanded(name string) bool {
	_, ok := e.names[name]
	return ok
}

// Toggle opens a closed group or closes an open one. Other groups are
// untouched.
func (e Expansion) Toggle(name string) Expansion {
	next := e.clone()
	if _, ok := next.names[name]; ok {
		delete(next.names, name)
	} else {
		next.names[name] = struct{}{}
	}
	return next
}

// ExpandAll opens exactly the given groups.
func ExpandAll(names []string) Expansion {
	e := Expansion{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		e.names[n] = struct{}{}
	}
	return e
}

// CollapseAll closes every group.
func CollapseAll() Expansion {
	return Expansion{}
}

// Len returns the number of open groups.
func (e Expansion) Len() int {
	return len(e.names)
}

// Names returns the open group names sorted.
func (e Expansion) Names() []string {
	out := make([]string, 0, len(e.names))
	for n := range e.names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

func (e Expansion) clone() Expansion {
	next := Expansion{names: make(map[string]struct{}, len(e.names)+1)}
	for n := range e.names {
		next.names[n] = struct{}{}
	}
	return next
}

// Encode serializes the set for session storage.
func (e Expansion) Encode() string {
	data, _ := json.Marshal(e.Names())
	return string(data)
}

// DecodeExpansion restores a set written by Encode. Malformed input
// yields an empty set.
func DecodeExpansion(s string) Expansion {
	if s == "" {
		return Expansion{}
	}
	var names []string
	if err := json.Unmarshal([]byte(s), &names); err != nil {
		return Expansion{}
	}
	return ExpandAll(names)
}

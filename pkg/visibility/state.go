package visibility

import (
	"maps"
	"slices"
)

// ViewState holds the per-node collapse flags of one view of a graph.
//
// Every node is collapsed unless recorded otherwise, so the zero value and
// [NewViewState] both describe a fully collapsed view. ViewState is not safe
// for concurrent use.
type ViewState struct {
	expanded map[string]bool
}

// NewViewState returns a view in which every node is collapsed.
func NewViewState() ViewState {
	return ViewState{expanded: make(map[string]bool)}
}

// Collapsed reports whether the node is collapsed. Unknown IDs are collapsed.
func (s ViewState) Collapsed(id string) bool { return !s.expanded[id] }

// SetCollapsed sets the node's flag.
func (s *ViewState) SetCollapsed(id string, collapsed bool) {
	if collapsed {
		delete(s.expanded, id)
		return
	}
	if s.expanded == nil {
		s.expanded = make(map[string]bool)
	}
	s.expanded[id] = true
}

// Toggle flips the node's flag and returns the new collapsed value.
func (s *ViewState) Toggle(id string) bool {
	c := !s.Collapsed(id)
	s.SetCollapsed(id, c)
	return c
}

// Expanded returns the IDs of expanded nodes, sorted.
func (s ViewState) Expanded() []string {
	return slices.Sorted(maps.Keys(s.expanded))
}

// Clone returns an independent copy.
func (s ViewState) Clone() ViewState {
	return ViewState{expanded: maps.Clone(s.expanded)}
}

// HiddenSet is an immutable set of hidden cluster identifiers. Toggling
// returns a new set; the receiver is left untouched.
type HiddenSet struct {
	ids map[string]struct{}
}

// NewHiddenSet returns a set containing ids.
func NewHiddenSet(ids ...string) HiddenSet {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return HiddenSet{ids: m}
}

// Contains reports whether id is hidden.
func (h HiddenSet) Contains(id string) bool {
	_, ok := h.ids[id]
	return ok
}

// Toggle returns a copy of the set with id's membership flipped.
func (h HiddenSet) Toggle(id string) HiddenSet {
	m := make(map[string]struct{}, len(h.ids)+1)
	for k := range h.ids {
		m[k] = struct{}{}
	}
	if _, ok := m[id]; ok {
		delete(m, id)
	} else {
		m[id] = struct{}{}
	}
	return HiddenSet{ids: m}
}

// IDs returns the hidden identifiers, sorted.
func (h HiddenSet) IDs() []string {
	return slices.Sorted(maps.Keys(h.ids))
}

// Len returns the number of hidden identifiers.
func (h HiddenSet) Len() int { return len(h.ids) }

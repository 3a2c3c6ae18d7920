// internal/services/category_filter.go
package services

import "github.com/google/uuid"

// FilterEntry is a visible storefront filter button.
type FilterEntry struct {
	FlatCategory
	Expanded bool `json:"expanded"`
}

// CategoryFilter tracks which categories of the storefront filter are expanded.
// Top-level categories are always visible; a child is visible only while every
// ancestor is expanded.
type CategoryFilter struct {
	entries  []FlatCategory
	index    map[uuid.UUID]int
	children map[uuid.UUID][]uuid.UUID
	expanded map[uuid.UUID]bool
}

func NewCategoryFilter(tree []*CategoryNode) *CategoryFilter {
	entries := FlattenTree(tree)
	f := &CategoryFilter{
		entries:  entries,
		index:    make(map[uuid.UUID]int, len(entries)),
		children: make(map[uuid.UUID][]uuid.UUID),
		expanded: make(map[uuid.UUID]bool),
	}
	for i, entry := range entries {
		f.index[entry.ID] = i
		if entry.ParentID != nil {
			f.children[*entry.ParentID] = append(f.children[*entry.ParentID], entry.ID)
		}
	}
	return f
}

// Toggle expands a collapsed category to show its direct children, or collapses
// an expanded one together with all of its descendants. Leaves and hidden
// categories are ignored.
func (f *CategoryFilter) Toggle(id uuid.UUID) {
	i, ok := f.index[id]
	if !ok || !f.entries[i].HasChildren || !f.isVisible(f.entries[i]) {
		return
	}

	if f.expanded[id] {
		f.collapse(id)
		return
	}
	f.expanded[id] = true
}

func (f *CategoryFilter) collapse(id uuid.UUID) {
	delete(f.expanded, id)
	for _, child := range f.children[id] {
		f.collapse(child)
	}
}

func (f *CategoryFilter) IsExpanded(id uuid.UUID) bool {
	return f.expanded[id]
}

// Visible returns the buttons currently shown, depth-first.
func (f *CategoryFilter) Visible() []FilterEntry {
	visible := make([]FilterEntry, 0, len(f.entries))
	for _, entry := range f.entries {
		if f.isVisible(entry) {
			visible = append(visible, FilterEntry{FlatCategory: entry, Expanded: f.expanded[entry.ID]})
		}
	}
	return visible
}

func (f *CategoryFilter) isVisible(entry FlatCategory) bool {
	for parent := entry.ParentID; parent != nil; {
		i, ok := f.index[*parent]
		if !ok {
			return true
		}
		if !f.expanded[*parent] {
			return false
		}
		parent = f.entries[i].ParentID
	}
	return true
}

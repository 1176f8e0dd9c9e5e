package input

import (
	"binfind/internal/results"
	"binfind/internal/session"
)

// ModelContext implements the Context interface for the input handler
type ModelContext struct {
	Session       *session.Session
	SelectedIndex int
}

// CurrentIndex returns the current selected index
func (c *ModelContext) CurrentIndex() int {
	return c.SelectedIndex
}

// TotalItems returns the number of visible results
func (c *ModelContext) TotalItems() int {
	return c.Session.FilteredCount()
}

// FilterText returns the live filter
func (c *ModelContext) FilterText() string {
	return c.Session.FilterText()
}

// GetCurrentSort returns the key of the current sort option
func (c *ModelContext) GetCurrentSort() string {
	return SortCriteria(c.Session.Sort())
}

// IsRunning reports whether a search is in progress
func (c *ModelContext) IsRunning() bool {
	return c.Session.IsRunning()
}

// HasSearch reports whether a search was ever started
func (c *ModelContext) HasSearch() bool {
	return c.Session.Generation() > 0
}

// SortCriteria maps a sort key to its option key
func SortCriteria(key results.SortKey) string {
	if !key.Active {
		return "none"
	}
	return key.Column.Key()
}

package results

import (
	"strings"

	"binfind/internal/domain"
)

// TextFunc returns the flattened display text of one cell
type TextFunc func(item *domain.ResultItem, col domain.Column) string

// Filter matches rows against a live filter string
type Filter struct {
	query string
	text  TextFunc
}

// NewFilter creates a filter. Matching is case-insensitive.
func NewFilter(query string, text TextFunc) Filter {
	return Filter{query: strings.ToLower(strings.TrimSpace(query)), text: text}
}

// Query returns the normalized filter string
func (f Filter) Query() string { return f.query }

// Accepts checks if the item matches the filter in any column
func (f Filter) Accepts(item *domain.ResultItem) bool {
	if f.query == "" {
		return true
	}
	if f.text == nil {
		return false
	}
	for _, col := range domain.Columns {
		if strings.Contains(strings.ToLower(f.text(item, col)), f.query) {
			return true
		}
	}
	return false
}

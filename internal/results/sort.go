package results

import (
	"bytes"
	"strings"

	"binfind/internal/domain"
)

// SortKey selects the sort column and direction. The zero value keeps
// store order.
type SortKey struct {
	Column     domain.Column
	Descending bool
	Active     bool
}

// SortBy returns an active sort key
func SortBy(col domain.Column, desc bool) SortKey {
	return SortKey{Column: col, Descending: desc, Active: true}
}

func (k SortKey) String() string {
	if !k.Active {
		return "none"
	}
	dir := "asc"
	if k.Descending {
		dir = "desc"
	}
	return strings.ToLower(k.Column.Title()) + " " + dir
}

// Sorter compares items by a sort key
type Sorter struct {
	key  SortKey
	text TextFunc
}

// NewSorter creates a sorter. text is used for the preview column.
func NewSorter(key SortKey, text TextFunc) Sorter {
	return Sorter{key: key, text: text}
}

// Less orders a before b. Ties are broken by address.
func (s Sorter) Less(a, b *domain.ResultItem) bool {
	c := s.compare(a, b)
	if c == 0 {
		c = compareAddr(a, b)
	}
	if s.key.Descending {
		return c > 0
	}
	return c < 0
}

func (s Sorter) compare(a, b *domain.ResultItem) int {
	switch s.key.Column {
	case domain.AddressColumn:
		return compareAddr(a, b)
	case domain.DataColumn:
		return bytes.Compare(a.Payload(), b.Payload())
	case domain.FunctionColumn:
		return strings.Compare(functionName(a), functionName(b))
	case domain.PreviewColumn:
		if s.text == nil {
			return 0
		}
		return strings.Compare(s.text(a, domain.PreviewColumn), s.text(b, domain.PreviewColumn))
	default:
		return 0
	}
}

func compareAddr(a, b *domain.ResultItem) int {
	switch {
	case a.Addr() < b.Addr():
		return -1
	case a.Addr() > b.Addr():
		return 1
	default:
		return 0
	}
}

func functionName(item *domain.ResultItem) string {
	if fn := item.Function(); fn != nil {
		return fn.Name
	}
	return ""
}

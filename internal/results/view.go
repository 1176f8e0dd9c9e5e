package results

import (
	"fmt"
	"sort"

	"binfind/internal/domain"
)

// View is a filtered and sorted projection of a Store. It holds store row
// indices only and never mutates the store.
type View struct {
	text    TextFunc
	query   string
	key     SortKey
	rows    []int
	covered int
	dirty   bool
}

// NewView creates a view. text supplies the flattened cell text used by
// the filter and the preview sort.
func NewView(text TextFunc) *View {
	return &View{text: text}
}

// SetFilter changes the filter string. The rows are recomputed on the next Sync.
func (v *View) SetFilter(query string) {
	if query == v.query {
		return
	}
	v.query = query
	v.dirty = true
}

// FilterText returns the current filter string
func (v *View) FilterText() string { return v.query }

// SetSort changes the sort key. The rows are recomputed on the next Sync.
func (v *View) SetSort(key SortKey) {
	if key == v.key {
		return
	}
	v.key = key
	v.dirty = true
}

// SortKey returns the current sort key
func (v *View) SortKey() SortKey { return v.key }

// Reset drops all rows. Bound to a store reset.
func (v *View) Reset() {
	v.rows = nil
	v.covered = 0
	v.dirty = false
}

// Len returns the number of visible rows
func (v *View) Len() int { return len(v.rows) }

// Row maps a visible row to a store row
func (v *View) Row(row int) (int, error) {
	if row < 0 || row >= len(v.rows) {
		return 0, fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, row, len(v.rows))
	}
	return v.rows[row], nil
}

// Covered returns how many store rows have been evaluated
func (v *View) Covered() int { return v.covered }

// Sync brings the view up to date with store. Only rows appended since the last
// sync are evaluated unless the filter or sort changed. Reports whether the
// visible rows changed.
func (v *View) Sync(store *Store) bool {
	n := store.Len()
	if v.dirty || v.covered > n {
		v.recompute(store, n)
		return true
	}
	if v.covered == n {
		return false
	}

	filter := NewFilter(v.query, v.text)
	sorter := NewSorter(v.key, v.text)
	changed := false
	for i := v.covered; i < n; i++ {
		item := store.items[i]
		if !filter.Accepts(item) {
			continue
		}
		changed = true
		if !v.key.Active {
			v.rows = append(v.rows, i)
			continue
		}
		// after every row that does not sort after item, keeping equal rows stable
		pos := sort.Search(len(v.rows), func(j int) bool {
			return sorter.Less(item, store.items[v.rows[j]])
		})
		v.rows = append(v.rows, 0)
		copy(v.rows[pos+1:], v.rows[pos:])
		v.rows[pos] = i
	}
	v.covered = n
	return changed
}

func (v *View) recompute(store *Store, n int) {
	filter := NewFilter(v.query, v.text)
	rows := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if filter.Accepts(store.items[i]) {
			rows = append(rows, i)
		}
	}
	if v.key.Active {
		sorter := NewSorter(v.key, v.text)
		sort.SliceStable(rows, func(a, b int) bool {
			return sorter.Less(store.items[rows[a]], store.items[rows[b]])
		})
	}
	v.rows = rows
	v.covered = n
	v.dirty = false
}

// Items returns the visible items in order. Intended for reports and tests.
func (v *View) Items(store *Store) []*domain.ResultItem {
	out := make([]*domain.ResultItem, 0, len(v.rows))
	for _, r := range v.rows {
		if r < store.Len() {
			out = append(out, store.items[r])
		}
	}
	return out
}

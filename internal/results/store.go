package results

import (
	"errors"
	"fmt"

	"binfind/internal/domain"
)

// ErrRowOutOfRange is returned for row indices outside the store or view
var ErrRowOutOfRange = errors.New("row out of range")

// Store is the ordered, append-only sequence of accepted results.
// It is owned by the consumer and is not safe for concurrent use.
type Store struct {
	items []*domain.ResultItem
	index map[uint64]int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		index: make(map[uint64]int),
	}
}

// Append adds the items whose address is not yet stored, keeping their order.
// It returns the half-open range of rows that were appended.
func (s *Store) Append(items []*domain.ResultItem) (from, to int) {
	from = len(s.items)
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, ok := s.index[item.Addr()]; ok {
			continue
		}
		s.index[item.Addr()] = len(s.items)
		s.items = append(s.items, item)
	}
	return from, len(s.items)
}

// Len returns the number of stored items
func (s *Store) Len() int { return len(s.items) }

// At returns the item at row
func (s *Store) At(row int) (*domain.ResultItem, error) {
	if row < 0 || row >= len(s.items) {
		return nil, fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, row, len(s.items))
	}
	return s.items[row], nil
}

// Contains reports whether an item with addr is stored
func (s *Store) Contains(addr uint64) bool {
	_, ok := s.index[addr]
	return ok
}

// RowOf returns the row of the item with addr
func (s *Store) RowOf(addr uint64) (int, bool) {
	row, ok := s.index[addr]
	return row, ok
}

// Clear drops every item. Only a new search generation may call it.
func (s *Store) Clear() {
	s.items = nil
	s.index = make(map[uint64]int)
}

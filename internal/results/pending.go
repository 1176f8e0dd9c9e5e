package results

import (
	"sync"

	"binfind/internal/domain"
)

// PendingBuffer collects items from producer goroutines until the next merge tick.
// It is the only result structure producers touch.
type PendingBuffer struct {
	mu    sync.Mutex
	seen  map[uint64]struct{}
	items []*domain.ResultItem
}

// NewPendingBuffer creates an empty buffer
func NewPendingBuffer() *PendingBuffer {
	return &PendingBuffer{
		seen: make(map[uint64]struct{}),
	}
}

// Insert adds item unless an item with the same address is already buffered.
// Reports whether the item was added.
func (b *PendingBuffer) Insert(item *domain.ResultItem) bool {
	if item == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.seen[item.Addr()]; ok {
		return false
	}
	b.seen[item.Addr()] = struct{}{}
	b.items = append(b.items, item)
	return true
}

// Drain removes and returns everything buffered, in insertion order
func (b *PendingBuffer) Drain() []*domain.ResultItem {
	b.mu.Lock()
	items := b.items
	if len(items) > 0 {
		b.items = nil
		b.seen = make(map[uint64]struct{}, len(items))
	}
	b.mu.Unlock()
	return items
}

// Len returns the number of buffered items
func (b *PendingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

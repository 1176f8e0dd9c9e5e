package results

import (
	"sort"
	"sync"

	"binfind/internal/domain"
)

// ChangeKind distinguishes incremental appends from full invalidation
type ChangeKind int

const (
	ChangeInsert ChangeKind = iota
	ChangeReset
)

func (k ChangeKind) String() string {
	if k == ChangeReset {
		return "reset"
	}
	return "insert"
}

// Change describes what a merge or reset did to the store.
// For ChangeInsert rows [From,To) were appended; for ChangeReset consumers
// must discard everything they hold.
type Change struct {
	Kind       ChangeKind
	From, To   int
	Generation uint64
}

// ChangeHandler receives change notifications on the consumer goroutine
type ChangeHandler func(Change)

// Merger moves buffered items into the store once per tick for the
// current generation only.
type Merger struct {
	store  *Store
	buffer *PendingBuffer
	gen    uint64

	mu       sync.Mutex
	handlers map[int]ChangeHandler
	nextID   int
}

// NewMerger creates a merger for store with an empty generation 0 buffer
func NewMerger(store *Store) *Merger {
	return &Merger{
		store:    store,
		buffer:   NewPendingBuffer(),
		handlers: make(map[int]ChangeHandler),
	}
}

// Generation returns the generation ticks must carry to be applied
func (m *Merger) Generation() uint64 { return m.gen }

// Buffer returns the pending buffer of the current generation
func (m *Merger) Buffer() *PendingBuffer { return m.buffer }

// Store returns the underlying store
func (m *Merger) Store() *Store { return m.store }

// Reset switches to generation gen: the store is cleared, the old buffer is
// discarded and replaced, and a full invalidation is emitted.
func (m *Merger) Reset(gen uint64) Change {
	old := m.buffer
	m.buffer = NewPendingBuffer()
	old.Drain()
	m.store.Clear()
	m.gen = gen

	c := Change{Kind: ChangeReset, Generation: gen}
	m.emit(c)
	return c
}

// Tick drains the buffer into the store. It returns false and changes
// nothing when gen is stale or nothing new was accepted.
func (m *Merger) Tick(gen uint64) (Change, bool) {
	if gen != m.gen {
		return Change{}, false
	}
	items := m.buffer.Drain()
	if len(items) == 0 {
		return Change{}, false
	}
	from, to := m.store.Append(items)
	if from == to {
		return Change{}, false
	}

	c := Change{Kind: ChangeInsert, From: from, To: to, Generation: gen}
	m.emit(c)
	return c, true
}

// Subscribe registers h for change notifications and returns its unsubscribe func
func (m *Merger) Subscribe(h ChangeHandler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.handlers[id] = h
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.handlers, id)
	}
}

func (m *Merger) emit(c Change) {
	m.mu.Lock()
	ids := make([]int, 0, len(m.handlers))
	for id := range m.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]ChangeHandler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, m.handlers[id])
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(c)
	}
}

// Insert converts a match into an item and buffers it
func Insert(b *PendingBuffer, m domain.Match) bool {
	return b.Insert(domain.NewResultItemFromMatch(m))
}

package results

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binfind/internal/domain"
)

func item(addr uint64) *domain.ResultItem {
	return domain.NewResultItem(addr, []byte{byte(addr)}, nil, len(domain.Columns))
}

func addrs(t *testing.T, s *Store) []uint64 {
	t.Helper()
	out := make([]uint64, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		it, err := s.At(i)
		require.NoError(t, err)
		out = append(out, it.Addr())
	}
	return out
}

func TestPendingBufferDedup(t *testing.T) {
	b := NewPendingBuffer()
	assert.True(t, b.Insert(item(0x10)))
	assert.False(t, b.Insert(item(0x10)))
	assert.True(t, b.Insert(item(0x20)))
	assert.False(t, b.Insert(nil))
	assert.Equal(t, 2, b.Len())

	drained := b.Drain()
	require.Len(t, drained, 2)
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Drain())

	// drained addresses may be buffered again
	assert.True(t, b.Insert(item(0x10)))
}

func TestMergeDedupAcrossSequences(t *testing.T) {
	m := NewMerger(NewStore())
	submitted := []uint64{5, 1, 5, 9, 1, 1, 3, 9, 7}
	distinct := map[uint64]struct{}{}
	for i, a := range submitted {
		m.Buffer().Insert(item(a))
		distinct[a] = struct{}{}
		if i%3 == 2 {
			m.Tick(0)
		}
	}
	m.Tick(0)
	assert.Equal(t, len(distinct), m.Store().Len())
}

func TestTickEmitsInsertRange(t *testing.T) {
	m := NewMerger(NewStore())
	var got []Change
	unsubscribe := m.Subscribe(func(c Change) { got = append(got, c) })

	m.Buffer().Insert(item(1))
	m.Buffer().Insert(item(2))
	c, ok := m.Tick(0)
	require.True(t, ok)
	assert.Equal(t, Change{Kind: ChangeInsert, From: 0, To: 2}, c)

	_, ok = m.Tick(0)
	assert.False(t, ok, "empty tick must not notify")

	m.Buffer().Insert(item(2))
	_, ok = m.Tick(0)
	assert.False(t, ok, "tick with only stored addresses must not notify")

	m.Buffer().Insert(item(3))
	c, ok = m.Tick(0)
	require.True(t, ok)
	assert.Equal(t, 2, c.From)
	assert.Equal(t, 3, c.To)

	require.Len(t, got, 2)
	unsubscribe()
	m.Buffer().Insert(item(4))
	m.Tick(0)
	assert.Len(t, got, 2)
}

func TestNoLossUnderConcurrency(t *testing.T) {
	const producers, perProducer = 8, 2000
	m := NewMerger(NewStore())
	buf := m.Buffer()

	var wg sync.WaitGroup
	done := make(chan struct{})
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				buf.Insert(item(uint64(p*perProducer + i)))
			}
		}(p)
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	// merge concurrently with the producers
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
			m.Tick(0)
		}
	}
	m.Tick(0)

	assert.Equal(t, producers*perProducer, m.Store().Len())
}

func TestAppendOnlyOrdering(t *testing.T) {
	m := NewMerger(NewStore())
	m.Buffer().Insert(item(0x50))
	m.Tick(0)
	m.Buffer().Insert(item(0x05))
	m.Buffer().Insert(item(0x40))
	m.Tick(0)
	m.Buffer().Insert(item(0x01))
	m.Tick(0)

	assert.Equal(t, []uint64{0x50, 0x05, 0x40, 0x01}, addrs(t, m.Store()))
}

func TestResetDiscardsStaleTick(t *testing.T) {
	m := NewMerger(NewStore())
	var kinds []ChangeKind
	m.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	oldBuf := m.Buffer()
	oldBuf.Insert(item(1))
	oldBuf.Insert(item(2))

	c := m.Reset(1)
	assert.Equal(t, ChangeReset, c.Kind)
	assert.Equal(t, uint64(1), c.Generation)
	assert.Equal(t, 0, m.Store().Len())

	// late producer of generation 0 and the tick it scheduled
	oldBuf.Insert(item(3))
	_, ok := m.Tick(0)
	assert.False(t, ok)
	_, ok = m.Tick(1)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Store().Len())

	m.Buffer().Insert(item(9))
	_, ok = m.Tick(1)
	require.True(t, ok)
	assert.Equal(t, []uint64{9}, addrs(t, m.Store()))
	assert.Equal(t, []ChangeKind{ChangeReset, ChangeInsert}, kinds)
}

func TestEndToEndScenario(t *testing.T) {
	m := NewMerger(NewStore())
	buf := m.Buffer()

	var wg sync.WaitGroup
	for _, batch := range [][]uint64{{0x10, 0x20}, {0x10, 0x30}} {
		wg.Add(1)
		go func(batch []uint64) {
			defer wg.Done()
			for _, a := range batch {
				buf.Insert(item(a))
			}
		}(batch)
	}
	wg.Wait()

	_, ok := m.Tick(0)
	require.True(t, ok)
	assert.ElementsMatch(t, []uint64{0x10, 0x20, 0x30}, addrs(t, m.Store()))
	before := addrs(t, m.Store())

	buf.Insert(item(0x20))
	_, ok = m.Tick(0)
	assert.False(t, ok)
	assert.Equal(t, before, addrs(t, m.Store()))
}

func TestStoreBounds(t *testing.T) {
	s := NewStore()
	s.Append([]*domain.ResultItem{item(1)})

	_, err := s.At(1)
	assert.ErrorIs(t, err, ErrRowOutOfRange)
	_, err = s.At(-1)
	assert.ErrorIs(t, err, ErrRowOutOfRange)

	row, ok := s.RowOf(1)
	assert.True(t, ok)
	assert.Equal(t, 0, row)
	assert.True(t, s.Contains(1))

	s.Clear()
	assert.False(t, s.Contains(1))
}

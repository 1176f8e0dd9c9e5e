package results

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binfind/internal/domain"
)

func textOf(it *domain.ResultItem, col domain.Column) string {
	switch col {
	case domain.AddressColumn:
		return fmt.Sprintf("0x%x", it.Addr())
	case domain.FunctionColumn:
		return functionName(it)
	default:
		return string(it.Payload())
	}
}

func fnItem(addr uint64, name, payload string) *domain.ResultItem {
	return domain.NewResultItem(addr, []byte(payload), &domain.FunctionRef{Name: name, Start: addr, Size: 16}, len(domain.Columns))
}

func visible(t *testing.T, v *View, s *Store) []uint64 {
	t.Helper()
	out := make([]uint64, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		r, err := v.Row(i)
		require.NoError(t, err)
		it, err := s.At(r)
		require.NoError(t, err)
		out = append(out, it.Addr())
	}
	return out
}

func TestViewKeepsStoreOrderWithoutSort(t *testing.T) {
	s := NewStore()
	v := NewView(textOf)
	s.Append([]*domain.ResultItem{fnItem(3, "c", "x"), fnItem(1, "a", "y")})
	assert.True(t, v.Sync(s))
	assert.False(t, v.Sync(s))

	s.Append([]*domain.ResultItem{fnItem(2, "b", "z")})
	assert.True(t, v.Sync(s))
	assert.Equal(t, []uint64{3, 1, 2}, visible(t, v, s))
}

func TestViewFilterIsCaseInsensitive(t *testing.T) {
	s := NewStore()
	v := NewView(textOf)
	s.Append([]*domain.ResultItem{
		fnItem(1, "main", "hello"),
		fnItem(2, "init", "HELLO world"),
		fnItem(3, "exit", "bye"),
	})
	v.SetFilter("Hello")
	v.Sync(s)
	assert.Equal(t, []uint64{1, 2}, visible(t, v, s))

	v.SetFilter("EXIT")
	v.Sync(s)
	assert.Equal(t, []uint64{3}, visible(t, v, s))

	v.SetFilter("")
	v.Sync(s)
	assert.Equal(t, 3, v.Len())
}

func TestViewIncrementalSortedInsert(t *testing.T) {
	s := NewStore()
	v := NewView(textOf)
	v.SetSort(SortBy(domain.FunctionColumn, false))

	s.Append([]*domain.ResultItem{fnItem(5, "m", ""), fnItem(1, "z", "")})
	v.Sync(s)
	assert.Equal(t, []uint64{5, 1}, visible(t, v, s))

	// same name as an existing row: ties fall back to address
	s.Append([]*domain.ResultItem{fnItem(2, "a", ""), fnItem(4, "m", ""), fnItem(7, "m", "")})
	v.Sync(s)
	assert.Equal(t, []uint64{2, 4, 5, 7, 1}, visible(t, v, s))
	assert.Equal(t, 5, v.Covered())
}

func TestViewIncrementalMatchesRecompute(t *testing.T) {
	s := NewStore()
	inc := NewView(textOf)
	key := SortBy(domain.DataColumn, true)
	inc.SetSort(key)
	inc.SetFilter("a")

	payloads := []string{"ab", "ca", "zz", "aa", "ba", "a", "xa"}
	for i, p := range payloads {
		s.Append([]*domain.ResultItem{fnItem(uint64(100-i), "f", p)})
		inc.Sync(s)
	}

	full := NewView(textOf)
	full.SetSort(key)
	full.SetFilter("a")
	full.Sync(s)

	assert.Equal(t, visible(t, full, s), visible(t, inc, s))
}

func TestViewDescendingAddress(t *testing.T) {
	s := NewStore()
	v := NewView(textOf)
	s.Append([]*domain.ResultItem{fnItem(2, "", ""), fnItem(9, "", ""), fnItem(4, "", "")})
	v.SetSort(SortBy(domain.AddressColumn, true))
	v.Sync(s)
	assert.Equal(t, []uint64{9, 4, 2}, visible(t, v, s))
	assert.Equal(t, "address desc", v.SortKey().String())
}

func TestViewResetAndBounds(t *testing.T) {
	s := NewStore()
	v := NewView(textOf)
	s.Append([]*domain.ResultItem{fnItem(1, "", "")})
	v.Sync(s)

	_, err := v.Row(1)
	assert.ErrorIs(t, err, ErrRowOutOfRange)

	s.Clear()
	v.Reset()
	assert.Equal(t, 0, v.Len())
	assert.False(t, v.Sync(s))
}

func TestViewRecomputesWhenStoreShrinks(t *testing.T) {
	s := NewStore()
	v := NewView(textOf)
	s.Append([]*domain.ResultItem{fnItem(1, "", ""), fnItem(2, "", "")})
	v.Sync(s)

	s.Clear()
	s.Append([]*domain.ResultItem{fnItem(3, "", "")})
	assert.True(t, v.Sync(s))
	assert.Equal(t, []uint64{3}, visible(t, v, s))
}

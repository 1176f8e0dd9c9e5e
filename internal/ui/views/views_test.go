package views

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binfind/internal/domain"
	"binfind/internal/render"
	"binfind/internal/results"
)

// rows is a RowSource over a fixed item list
type rows struct {
	items []*domain.ResultItem
	cache *render.Cache
}

func newRows(addrs ...uint64) *rows {
	r := &rows{cache: render.NewCache(nil, 0)}
	for _, a := range addrs {
		r.items = append(r.items, domain.NewResultItem(a, []byte("hello"), nil, len(domain.Columns)))
	}
	return r
}

func (r *rows) FilteredCount() int { return len(r.items) }

func (r *rows) VisibleItemAt(row int) (*domain.ResultItem, error) {
	if row < 0 || row >= len(r.items) {
		return nil, results.ErrRowOutOfRange
	}
	return r.items[row], nil
}

func (r *rows) ItemTokens(item *domain.ResultItem, col domain.Column) (domain.CachedTokens, error) {
	return r.cache.Tokens(item, col)
}

func (r *rows) ColumnWidthHint(col domain.Column) (int, error) {
	return r.cache.ColumnWidthHint(col)
}

func TestTableWidthsFillLine(t *testing.T) {
	table := NewTableRenderer(NewStyles(ThemeDark))
	src := newRows(0x10, 0x20)

	widths := table.Widths(src, 0, 2, 80)
	require.Len(t, widths, len(domain.Columns))
	assert.Equal(t, 10, widths[domain.AddressColumn])
	assert.Equal(t, 14, widths[domain.DataColumn], "\"68 65 6c 6c 6f\"")

	total := len(columnGap) * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	assert.Equal(t, 80, total)

	row := table.RenderRow(src, 1, widths, false)
	assert.Contains(t, row, "0x00000020")
	assert.Contains(t, row, "hello")
	assert.Equal(t, "", table.RenderRow(src, 5, widths, false))
}

func TestRenderCellTruncates(t *testing.T) {
	table := NewTableRenderer(NewStyles(ThemeLight))
	cell := table.renderCell([]domain.Token{{Text: "0123456789abcdef"}}, 6, false)
	assert.Equal(t, 6, runewidth.StringWidth(cell))
	assert.True(t, strings.HasPrefix(cell, "01234"))
}

func TestPopupOverlayKeepsSurroundings(t *testing.T) {
	pr := NewPopupRenderer(NewStyles(ThemeDark))
	base := strings.Repeat(strings.Repeat("x", 20)+"\n", 4) + strings.Repeat("x", 20)
	out := pr.RenderPopupOverlay(base, "hi", 5, 20, NewStyles(ThemeDark).Help)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "xxxxxxxxxhixxxxxxxxx", lines[2])
	assert.Equal(t, strings.Repeat("x", 20), lines[0])
}

func TestSkipColumns(t *testing.T) {
	assert.Equal(t, "cd", skipColumns("abcd", 2))
	assert.Equal(t, "", skipColumns("ab", 5))
	assert.Equal(t, "b", skipColumns("日b", 2))
}

func TestTableHeight(t *testing.T) {
	assert.Equal(t, 21, TableHeight(30))
	assert.Equal(t, 1, TableHeight(3))
}

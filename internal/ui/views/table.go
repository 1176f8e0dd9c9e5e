package views

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"binfind/internal/domain"
)

const columnGap = "  "

// RowSource is the part of the session the table reads from
type RowSource interface {
	FilteredCount() int
	VisibleItemAt(row int) (*domain.ResultItem, error)
	ItemTokens(item *domain.ResultItem, col domain.Column) (domain.CachedTokens, error)
	ColumnWidthHint(col domain.Column) (int, error)
}

// TableRenderer draws the results table from cached tokens
type TableRenderer struct {
	styles  *Styles
	columns []domain.Column
}

// NewTableRenderer creates a table over the declared column set
func NewTableRenderer(styles *Styles) *TableRenderer {
	return &TableRenderer{styles: styles, columns: domain.Columns}
}

// Widths computes the display width of each column for the rows in [offset, offset+count).
// Tokens are materialised first so the hints include every visible row. The last
// column takes whatever is left of width.
func (t *TableRenderer) Widths(src RowSource, offset, count, width int) []int {
	end := min(offset+count, src.FilteredCount())
	for row := offset; row < end; row++ {
		item, err := src.VisibleItemAt(row)
		if err != nil {
			break
		}
		for _, col := range t.columns {
			_, _ = src.ItemTokens(item, col)
		}
	}

	widths := make([]int, len(t.columns))
	used := 0
	for i, col := range t.columns {
		w, err := src.ColumnWidthHint(col)
		if err != nil {
			w = runewidth.StringWidth(col.Title())
		}
		widths[i] = w
		used += w
	}
	used += len(columnGap) * (len(t.columns) - 1)

	if width > 0 {
		last := len(widths) - 1
		widths[last] = max(widths[last]+width-used, runewidth.StringWidth(t.columns[last].Title()))
	}
	return widths
}

// RenderHeader renders the column titles
func (t *TableRenderer) RenderHeader(widths []int) string {
	cells := make([]string, len(t.columns))
	for i, col := range t.columns {
		cells[i] = t.styles.Header.Render(fit(col.Title(), widths[i]))
	}
	return strings.Join(cells, columnGap)
}

// RenderRow renders one visible row. Cells are cut to their column width.
func (t *TableRenderer) RenderRow(src RowSource, row int, widths []int, selected bool) string {
	item, err := src.VisibleItemAt(row)
	if err != nil {
		return ""
	}

	cells := make([]string, len(t.columns))
	for i, col := range t.columns {
		ct, err := src.ItemTokens(item, col)
		if err != nil {
			cells[i] = strings.Repeat(" ", widths[i])
			continue
		}
		cells[i] = t.renderCell(ct.Primary, widths[i], selected)
	}

	sep := columnGap
	if selected {
		sep = t.styles.SelectionBg.Render(columnGap)
	}
	return strings.Join(cells, sep)
}

func (t *TableRenderer) renderCell(tokens []domain.Token, width int, selected bool) string {
	var b strings.Builder
	remaining := width
	for _, tok := range tokens {
		if remaining <= 0 {
			break
		}
		text := tok.Text
		if runewidth.StringWidth(text) > remaining {
			text = runewidth.Truncate(text, remaining, "…")
		}
		remaining -= runewidth.StringWidth(text)
		st := t.styles.Token(tok.Kind)
		if selected {
			st = st.Inherit(t.styles.SelectionBg)
		}
		b.WriteString(st.Render(text))
	}
	if remaining > 0 {
		pad := strings.Repeat(" ", remaining)
		if selected {
			pad = t.styles.SelectionBg.Render(pad)
		}
		b.WriteString(pad)
	}
	return b.String()
}

func fit(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

package render

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"binfind/internal/domain"
)

// DefaultColumnMinWidth is the minimum column width in characters
const DefaultColumnMinWidth = 10

// Cache manages the per-item token caches of one consumer. Entries carry the
// epoch they were computed in; InvalidateAll bumps the epoch instead of
// walking items. Not safe for concurrent use.
type Cache struct {
	tok      *Tokenizer
	epoch    uint64
	minWidth int
	widths   []int
}

// NewCache creates a cache for the declared column set
func NewCache(tok *Tokenizer, minWidth int) *Cache {
	if tok == nil {
		tok = NewTokenizer(0)
	}
	if minWidth <= 0 {
		minWidth = DefaultColumnMinWidth
	}
	return &Cache{
		tok:      tok,
		epoch:    1,
		minWidth: minWidth,
		widths:   make([]int, len(domain.Columns)),
	}
}

// Epoch returns the current cache epoch
func (c *Cache) Epoch() uint64 { return c.epoch }

// Get returns the cached entry for (item, col). Entries from an older epoch
// come back with Valid false.
func (c *Cache) Get(item *domain.ResultItem, col domain.Column) (domain.CachedTokens, error) {
	ct, err := item.CachedTokens(int(col))
	if err != nil {
		return domain.CachedTokens{}, err
	}
	if ct.Epoch != c.epoch {
		ct.Valid = false
	}
	return ct, nil
}

// Set stores tokens for (item, col) in the current epoch
func (c *Cache) Set(item *domain.ResultItem, col domain.Column, primary []domain.Token, flattened string) error {
	if err := item.SetCachedTokens(int(col), primary, flattened, c.epoch); err != nil {
		return err
	}
	c.observe(col, flattened)
	return nil
}

// Tokens returns the tokens for (item, col), computing and caching them when
// the entry is missing or stale
func (c *Cache) Tokens(item *domain.ResultItem, col domain.Column) (domain.CachedTokens, error) {
	ct, err := c.Get(item, col)
	if err != nil {
		return domain.CachedTokens{}, err
	}
	if ct.Valid {
		return ct, nil
	}
	primary, flat := c.tok.Tokenize(item, col)
	if err := c.Set(item, col, primary, flat); err != nil {
		return domain.CachedTokens{}, err
	}
	return c.Get(item, col)
}

// Text returns the flattened text of (item, col), or "" for bad columns
func (c *Cache) Text(item *domain.ResultItem, col domain.Column) string {
	ct, err := c.Tokens(item, col)
	if err != nil {
		return ""
	}
	return ct.Flattened
}

// InvalidateAll makes every cached entry stale and resets width hints
func (c *Cache) InvalidateAll() {
	c.epoch++
	for i := range c.widths {
		c.widths[i] = 0
	}
}

// ColumnWidthHint returns the widest flattened text seen for col in this
// epoch, floored at the minimum width and the column title
func (c *Cache) ColumnWidthHint(col domain.Column) (int, error) {
	if int(col) < 0 || int(col) >= len(c.widths) {
		return 0, fmt.Errorf("%w: %d of %d", domain.ErrColumnOutOfRange, int(col), len(c.widths))
	}
	w := c.widths[col]
	if w < c.minWidth {
		w = c.minWidth
	}
	if tw := runewidth.StringWidth(col.Title()); w < tw {
		w = tw
	}
	return w, nil
}

func (c *Cache) observe(col domain.Column, flattened string) {
	if int(col) < 0 || int(col) >= len(c.widths) {
		return
	}
	if w := runewidth.StringWidth(flattened); w > c.widths[col] {
		c.widths[col] = w
	}
}

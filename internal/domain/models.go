package domain

import (
	"errors"
	"fmt"
)

// ErrColumnOutOfRange is returned when a column index does not exist in an item's cache
var ErrColumnOutOfRange = errors.New("column out of range")

// Column identifies one column of the results table
type Column int

const (
	AddressColumn Column = iota
	DataColumn
	FunctionColumn
	PreviewColumn
)

// Columns is the declared column set. Items size their token cache from it.
var Columns = []Column{AddressColumn, DataColumn, FunctionColumn, PreviewColumn}

// Title returns the column header text
func (c Column) Title() string {
	switch c {
	case AddressColumn:
		return "Address"
	case DataColumn:
		return "Data"
	case FunctionColumn:
		return "Function"
	case PreviewColumn:
		return "Preview"
	default:
		return fmt.Sprintf("Column %d", int(c))
	}
}

// Key returns the lower-case name used in sort options and flags
func (c Column) Key() string {
	switch c {
	case AddressColumn:
		return "address"
	case DataColumn:
		return "data"
	case FunctionColumn:
		return "function"
	case PreviewColumn:
		return "preview"
	default:
		return fmt.Sprintf("column%d", int(c))
	}
}

// ParseColumn is the inverse of Key
func ParseColumn(key string) (Column, bool) {
	for _, c := range Columns {
		if c.Key() == key {
			return c, true
		}
	}
	return 0, false
}

// TokenKind classifies a rendered token so the view can style it
type TokenKind int

const (
	TextToken TokenKind = iota
	AddressToken
	HexToken
	SymbolToken
	PlaceholderToken
)

// Token is one styled fragment of a rendered cell
type Token struct {
	Text string
	Kind TokenKind
}

// CachedTokens holds the rendered form of one cell.
// Epoch is the render-cache epoch the entry was computed in.
type CachedTokens struct {
	Primary   []Token
	Flattened string
	Valid     bool
	Epoch     uint64
}

// FunctionRef is the function that contains a match
type FunctionRef struct {
	Name  string
	Start uint64
	Size  uint64
}

// Contains reports whether addr falls inside the function
func (f *FunctionRef) Contains(addr uint64) bool {
	if f == nil {
		return false
	}
	return addr >= f.Start && addr-f.Start < f.Size
}

// Offset returns the distance of addr from the function start
func (f *FunctionRef) Offset(addr uint64) uint64 {
	if f == nil || addr < f.Start {
		return 0
	}
	return addr - f.Start
}

// Match is what a producer reports for one hit
type Match struct {
	Address  uint64
	Payload  []byte
	Function *FunctionRef
}

// ResultItem is one accepted match. Identity and order are defined by Address only.
// Apart from its token cache an item never changes after construction.
type ResultItem struct {
	addr    uint64
	payload []byte
	fn      *FunctionRef
	tokens  []CachedTokens
}

// NewResultItem creates an item with a token cache slot per column
func NewResultItem(addr uint64, payload []byte, fn *FunctionRef, columns int) *ResultItem {
	if columns < 0 {
		columns = 0
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	return &ResultItem{
		addr:    addr,
		payload: buf,
		fn:      fn,
		tokens:  make([]CachedTokens, columns),
	}
}

// NewResultItemFromMatch creates an item for the declared column set
func NewResultItemFromMatch(m Match) *ResultItem {
	return NewResultItem(m.Address, m.Payload, m.Function, len(Columns))
}

func (r *ResultItem) Addr() uint64           { return r.addr }
func (r *ResultItem) Payload() []byte        { return r.payload }
func (r *ResultItem) Function() *FunctionRef { return r.fn }
func (r *ResultItem) ColumnCount() int       { return len(r.tokens) }

// Equal compares by address only
func (r *ResultItem) Equal(other *ResultItem) bool { return r.addr == other.addr }

// Less orders by address only
func (r *ResultItem) Less(other *ResultItem) bool { return r.addr < other.addr }

// CachedTokens returns a copy of the cache entry for column i
func (r *ResultItem) CachedTokens(i int) (CachedTokens, error) {
	if i < 0 || i >= len(r.tokens) {
		return CachedTokens{}, fmt.Errorf("%w: %d of %d", ErrColumnOutOfRange, i, len(r.tokens))
	}
	return r.tokens[i], nil
}

// SetCachedTokens stores the rendered tokens for column i, stamped with epoch
func (r *ResultItem) SetCachedTokens(i int, primary []Token, flattened string, epoch uint64) error {
	if i < 0 || i >= len(r.tokens) {
		return fmt.Errorf("%w: %d of %d", ErrColumnOutOfRange, i, len(r.tokens))
	}
	r.tokens[i] = CachedTokens{
		Primary:   primary,
		Flattened: flattened,
		Valid:     true,
		Epoch:     epoch,
	}
	return nil
}

// SearchMode selects how a pattern is interpreted
type SearchMode string

const (
	ModeHex   SearchMode = "hex"
	ModeText  SearchMode = "text"
	ModeRegex SearchMode = "regex"
)

// ErrInvalidParameters is wrapped by every SearchParameters validation failure
var ErrInvalidParameters = errors.New("invalid search parameters")

// SearchParameters is the configuration snapshot of one search
type SearchParameters struct {
	Path       string
	Pattern    string
	Mode       SearchMode
	IgnoreCase bool
	Start      uint64
	End        uint64 // 0 means end of file
	Alignment  uint64
}

// Validate checks the parameters and normalizes the alignment
func (p *SearchParameters) Validate() error {
	if p.Path == "" {
		return fmt.Errorf("%w: no file given", ErrInvalidParameters)
	}
	if p.Pattern == "" {
		return fmt.Errorf("%w: empty pattern", ErrInvalidParameters)
	}
	switch p.Mode {
	case ModeHex, ModeText, ModeRegex:
	case "":
		p.Mode = ModeText
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidParameters, p.Mode)
	}
	if p.End != 0 && p.End <= p.Start {
		return fmt.Errorf("%w: range end 0x%x is not after start 0x%x", ErrInvalidParameters, p.End, p.Start)
	}
	if p.Alignment == 0 {
		p.Alignment = 1
	}
	return nil
}

// String describes the search for headers and logs
func (p SearchParameters) String() string {
	return fmt.Sprintf("%s %q", p.Mode, p.Pattern)
}

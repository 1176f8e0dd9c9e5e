package render

import (
	"fmt"
	"strings"

	"binfind/internal/domain"
)

// DefaultMaxDataBytes is how many payload bytes the data and preview columns show
const DefaultMaxDataBytes = 16

// Tokenizer turns one cell of a result into styled tokens
type Tokenizer struct {
	MaxDataBytes int
}

// NewTokenizer creates a tokenizer; non-positive limits use DefaultMaxDataBytes
func NewTokenizer(maxDataBytes int) *Tokenizer {
	if maxDataBytes <= 0 {
		maxDataBytes = DefaultMaxDataBytes
	}
	return &Tokenizer{MaxDataBytes: maxDataBytes}
}

// Tokenize returns the tokens and flattened text of column col
func (t *Tokenizer) Tokenize(item *domain.ResultItem, col domain.Column) ([]domain.Token, string) {
	switch col {
	case domain.AddressColumn:
		s := FormatAddress(item.Addr())
		return []domain.Token{{Text: s, Kind: domain.AddressToken}}, s
	case domain.DataColumn:
		return t.data(item.Payload())
	case domain.FunctionColumn:
		return function(item)
	case domain.PreviewColumn:
		return t.preview(item.Payload())
	default:
		return nil, ""
	}
}

// FormatAddress renders an address the way every column shows it
func FormatAddress(addr uint64) string {
	return fmt.Sprintf("0x%08x", addr)
}

func (t *Tokenizer) data(payload []byte) ([]domain.Token, string) {
	shown, truncated := clip(payload, t.MaxDataBytes)
	var sb strings.Builder
	for i, b := range shown {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	flat := sb.String()
	tokens := []domain.Token{{Text: flat, Kind: domain.HexToken}}
	if truncated {
		tokens = append(tokens, domain.Token{Text: " ...", Kind: domain.PlaceholderToken})
		flat += " ..."
	}
	return tokens, flat
}

func function(item *domain.ResultItem) ([]domain.Token, string) {
	fn := item.Function()
	if fn == nil {
		return []domain.Token{{Text: "-", Kind: domain.PlaceholderToken}}, ""
	}
	off := fn.Offset(item.Addr())
	if off == 0 {
		return []domain.Token{{Text: fn.Name, Kind: domain.SymbolToken}}, fn.Name
	}
	suffix := fmt.Sprintf("+0x%x", off)
	return []domain.Token{
		{Text: fn.Name, Kind: domain.SymbolToken},
		{Text: suffix, Kind: domain.TextToken},
	}, fn.Name + suffix
}

func (t *Tokenizer) preview(payload []byte) ([]domain.Token, string) {
	shown, _ := clip(payload, t.MaxDataBytes)
	buf := make([]byte, len(shown))
	for i, b := range shown {
		if b >= 0x20 && b < 0x7f {
			buf[i] = b
		} else {
			buf[i] = '.'
		}
	}
	s := string(buf)
	return []domain.Token{{Text: s, Kind: domain.TextToken}}, s
}

func clip(b []byte, max int) ([]byte, bool) {
	if len(b) > max {
		return b[:max], true
	}
	return b, false
}

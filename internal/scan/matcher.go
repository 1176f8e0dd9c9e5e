package scan

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"binfind/internal/domain"
)

// emitFunc receives a match at offset off within the scanned window.
// Returning false stops the scan of the window.
type emitFunc func(off int, payload []byte) bool

// Matcher finds pattern occurrences in a window of bytes
type Matcher interface {
	// MaxLen is the longest match the matcher can produce; chunks overlap by MaxLen-1
	MaxLen() int
	// Scan reports matches that start in [from, limit). Matches may extend past
	// limit. Bytes before from are context only.
	Scan(window []byte, from, limit int, emit emitFunc)
}

// Compile builds the matcher for params
func Compile(params domain.SearchParameters, maxPayload int) (Matcher, error) {
	if params.Pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", domain.ErrInvalidParameters)
	}
	switch params.Mode {
	case domain.ModeHex:
		return compileHex(params.Pattern)
	case domain.ModeText, "":
		if params.IgnoreCase {
			return newFoldMatcher(params.Pattern), nil
		}
		return &textMatcher{needle: []byte(params.Pattern)}, nil
	case domain.ModeRegex:
		expr := params.Pattern
		if params.IgnoreCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: bad regular expression: %v", domain.ErrInvalidParameters, err)
		}
		return &regexMatcher{re: re, maxLen: maxPayload, maxPayload: maxPayload}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidParameters, params.Mode)
	}
}

type textMatcher struct {
	needle []byte
}

func (m *textMatcher) MaxLen() int { return len(m.needle) }

func (m *textMatcher) Scan(window []byte, from, limit int, emit emitFunc) {
	for pos := from; pos < limit; {
		i := bytes.Index(window[pos:], m.needle)
		if i < 0 || pos+i >= limit {
			return
		}
		at := pos + i
		if !emit(at, window[at:at+len(m.needle)]) {
			return
		}
		pos = at + 1
	}
}

// foldMatcher is textMatcher with ASCII case folding
type foldMatcher struct {
	needle []byte // lower case
}

func newFoldMatcher(pattern string) *foldMatcher {
	needle := []byte(pattern)
	for i, c := range needle {
		needle[i] = lowerASCII(c)
	}
	return &foldMatcher{needle: needle}
}

func (m *foldMatcher) MaxLen() int { return len(m.needle) }

func (m *foldMatcher) Scan(window []byte, from, limit int, emit emitFunc) {
	n := len(m.needle)
	lo := m.needle[0]
	up := upperASCII(lo)
	for pos := from; pos < limit; {
		i := indexEither(window[pos:], lo, up)
		if i < 0 {
			return
		}
		at := pos + i
		if at >= limit || at+n > len(window) {
			return
		}
		if equalFoldASCII(window[at:at+n], m.needle) {
			if !emit(at, window[at:at+n]) {
				return
			}
		}
		pos = at + 1
	}
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func upperASCII(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// equalFoldASCII compares b with the lower case needle
func equalFoldASCII(b, needle []byte) bool {
	for i, c := range needle {
		if lowerASCII(b[i]) != c {
			return false
		}
	}
	return true
}

// indexEither returns the first index of x or y in b
func indexEither(b []byte, x, y byte) int {
	i := bytes.IndexByte(b, x)
	if x == y {
		return i
	}
	end := len(b)
	if i >= 0 {
		end = i
	}
	if j := bytes.IndexByte(b[:end], y); j >= 0 {
		return j
	}
	return i
}

// hexMatcher matches a byte pattern in which masked positions are wildcards
type hexMatcher struct {
	pattern []byte
	mask    []bool // true = must match
	anchor  int    // first non-wildcard index, -1 if none
}

func compileHex(s string) (*hexMatcher, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X"))
	}
	clean := sb.String()
	if clean == "" || len(clean)%2 != 0 {
		return nil, fmt.Errorf("%w: hex pattern %q must have an even number of digits", domain.ErrInvalidParameters, s)
	}

	m := &hexMatcher{anchor: -1}
	for i := 0; i < len(clean); i += 2 {
		pair := clean[i : i+2]
		if pair == "??" {
			m.pattern = append(m.pattern, 0)
			m.mask = append(m.mask, false)
			continue
		}
		b, err := strconv.ParseUint(pair, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: bad hex byte %q", domain.ErrInvalidParameters, pair)
		}
		if m.anchor < 0 {
			m.anchor = len(m.pattern)
		}
		m.pattern = append(m.pattern, byte(b))
		m.mask = append(m.mask, true)
	}
	if m.anchor < 0 {
		return nil, fmt.Errorf("%w: hex pattern %q is only wildcards", domain.ErrInvalidParameters, s)
	}
	return m, nil
}

func (m *hexMatcher) MaxLen() int { return len(m.pattern) }

func (m *hexMatcher) Scan(window []byte, from, limit int, emit emitFunc) {
	n := len(m.pattern)
	first := m.pattern[m.anchor]
	for pos := from; pos < limit && pos+n <= len(window); {
		i := bytes.IndexByte(window[pos+m.anchor:], first)
		if i < 0 {
			return
		}
		at := pos + i
		if at >= limit || at+n > len(window) {
			return
		}
		if m.matchAt(window[at : at+n]) {
			if !emit(at, window[at:at+n]) {
				return
			}
		}
		pos = at + 1
	}
}

func (m *hexMatcher) matchAt(b []byte) bool {
	for i, want := range m.pattern {
		if m.mask[i] && b[i] != want {
			return false
		}
	}
	return true
}

type regexMatcher struct {
	re         *regexp.Regexp
	maxLen     int
	maxPayload int
}

func (m *regexMatcher) MaxLen() int {
	if m.maxLen < 1 {
		return 1
	}
	return m.maxLen
}

// Scan runs the expression from the start of the window so that a match which
// began before from is consumed whole instead of being found again at from.
func (m *regexMatcher) Scan(window []byte, from, limit int, emit emitFunc) {
	for _, loc := range m.re.FindAllIndex(window, -1) {
		if loc[0] >= limit {
			return
		}
		if loc[0] < from || loc[0] == loc[1] {
			continue
		}
		end := loc[1]
		if m.maxPayload > 0 && end-loc[0] > m.maxPayload {
			end = loc[0] + m.maxPayload
		}
		if !emit(loc[0], window[loc[0]:end]) {
			return
		}
	}
}

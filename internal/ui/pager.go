package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"binfind/internal/domain"
	"binfind/internal/render"
)

const (
	dumpWidth   = 16
	dumpContext = 64
)

var matchStyle = lipgloss.NewStyle().Reverse(true)

// Pager shows long content in ov, handing the terminal over while it runs
type Pager struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPager creates a new pager
func NewPager() *Pager {
	return &Pager{}
}

// SetProgram sets the program reference for terminal management
func (p *Pager) SetProgram(program *tea.Program) {
	p.program = program
}

// Show pages content with ov
func (p *Pager) Show(content string) error {
	if p.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}

	// Ensure terminal is restored even if ov fails
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// HexDump renders the bytes around a match, with the matched bytes highlighted
// and the owning function named in the header
func HexDump(path string, item *domain.ResultItem) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := uint64(info.Size())

	addr := item.Addr()
	if addr >= size {
		return "", fmt.Errorf("address 0x%x is beyond the end of %s", addr, path)
	}
	matchEnd := addr + uint64(len(item.Payload()))
	start := addr - min(addr, dumpContext)
	start -= start % dumpWidth
	end := min(matchEnd+dumpContext, size)

	buf := make([]byte, end-start)
	if _, err := f.ReadAt(buf, int64(start)); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading %s at 0x%x: %w", path, start, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", path)
	fmt.Fprintf(&b, "Match at %s, %d bytes\n", render.FormatAddress(addr), len(item.Payload()))
	if fn := item.Function(); fn != nil {
		fmt.Fprintf(&b, "Function %s+0x%x (start %s, size %d)\n", fn.Name, fn.Offset(addr), render.FormatAddress(fn.Start), fn.Size)
	} else {
		b.WriteString("Function unknown\n")
	}
	b.WriteString("\n")

	inMatch := func(off uint64) bool { return off >= addr && off < matchEnd }
	for lineStart := start; lineStart < end; lineStart += dumpWidth {
		fmt.Fprintf(&b, "%s  ", render.FormatAddress(lineStart))
		var ascii strings.Builder
		for i := uint64(0); i < dumpWidth; i++ {
			off := lineStart + i
			if i == dumpWidth/2 {
				b.WriteString(" ")
			}
			if off >= end {
				b.WriteString("   ")
				continue
			}
			c := buf[off-start]
			hexText := fmt.Sprintf("%02x", c)
			ch := "."
			if c >= 0x20 && c < 0x7f {
				ch = string(c)
			}
			if inMatch(off) {
				hexText = matchStyle.Render(hexText)
				ch = matchStyle.Render(ch)
			}
			b.WriteString(hexText + " ")
			ascii.WriteString(ch)
		}
		fmt.Fprintf(&b, " |%s|\n", ascii.String())
	}
	return b.String(), nil
}

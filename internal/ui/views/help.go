package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Navigation", []helpEntry{
		{"↑/↓, j/k", "Move up/down"},
		{"PgUp/PgDn", "Page up/down"},
		{"ctrl+u/d", "Page up/down"},
		{"gg/G", "Go to top/bottom"},
	}},
	{"Results", []helpEntry{
		{"Enter", "Hex dump of the selected match"},
		{"/, F", "Filter results"},
		{"Esc", "Clear filter"},
		{"s", "Sort options"},
		{"S", "Reverse sort"},
	}},
	{"Search", []helpEntry{
		{"x", "Cancel running search"},
		{"r", "Run the search again"},
	}},
	{"Other", []helpEntry{
		{"t", "Toggle theme"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}},
}

// HelpContent renders the full help text
func HelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	keyWidth := 0
	for _, s := range helpSections {
		for _, e := range s.entries {
			keyWidth = max(keyWidth, lipgloss.Width(e.keys))
		}
	}

	var help strings.Builder
	help.WriteString(titleStyle.Render("binfind Help"))
	help.WriteString("\n")

	for i, s := range helpSections {
		help.WriteString("\n")
		help.WriteString(sectionStyle.Render(s.title))
		help.WriteString("\n")
		for j, e := range s.entries {
			pad := strings.Repeat(" ", keyWidth-lipgloss.Width(e.keys)+2)
			help.WriteString(fmt.Sprintf("  %s%s%s", keyStyle.Render(e.keys), pad, descStyle.Render(e.desc)))
			if i < len(helpSections)-1 || j < len(s.entries)-1 {
				help.WriteString("\n")
			}
		}
	}
	return help.String()
}

// renderHelpContent cuts the help text to the popup height starting at scrollOffset
func (r *Renderer) renderHelpContent(height int, scrollOffset int) string {
	lines := strings.Split(HelpContent(), "\n")
	totalLines := len(lines)

	// Calculate visible window (account for popup border and padding)
	visibleHeight := height - 4
	if visibleHeight < 5 {
		visibleHeight = 5
	}

	if totalLines <= visibleHeight {
		return strings.Join(lines, "\n")
	}

	maxOffset := totalLines - visibleHeight
	scrollOffset = min(max(scrollOffset, 0), maxOffset)
	endLine := scrollOffset + visibleHeight
	lines = lines[scrollOffset:endLine]

	// Add scroll indicators
	if scrollOffset > 0 {
		lines[0] = r.styles.Scroll.Render("↑ (more above)")
	}
	if endLine < totalLines {
		lines[len(lines)-1] = r.styles.Scroll.Render("↓ (more below)")
	}
	return strings.Join(lines, "\n")
}

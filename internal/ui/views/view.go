package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	prog "binfind/internal/progress"
	"binfind/internal/ui/input/modes"
)

// chromeLines is every line of the screen that is not a table row: container
// padding, title, search header, progress, input, column header, status and footer
const chromeLines = 9

// TableHeight returns the lines left for rows and scroll indicators on a screen of height
func TableHeight(height int) int {
	return max(height-chromeLines, 1)
}

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width            int
	Height           int
	Header           string
	Rows             RowSource
	Total            int
	Filtered         int
	HasSearch        bool
	Running          bool
	Progress         prog.Snapshot
	FilterQuery      string
	SortLabel        string
	InputMode        string
	Prompt           string
	TextInput        string
	SortOptionIndex  int
	StatusMessage    string
	StatusIsError    bool
	ShowHelp         bool
	HelpScrollOffset int
	SelectedIndex    int
	ViewportOffset   int
	EffectiveHeight  int
	TopIndicator     bool
	BottomIndicator  bool
	ShortHelp        string
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	table       *TableRenderer
	popupRender *PopupRenderer
	bar         progress.Model
}

// NewRenderer creates a new renderer
func NewRenderer(theme string) *Renderer {
	r := &Renderer{
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithoutPercentage(),
		),
	}
	r.SetTheme(theme)
	return r
}

// SetTheme swaps every style. Cached tokens carry no styling, so nothing else needs rebuilding here.
func (r *Renderer) SetTheme(theme string) {
	r.styles = NewStyles(theme)
	r.table = NewTableRenderer(r.styles)
	r.popupRender = NewPopupRenderer(r.styles)
}

// Theme returns the active theme name
func (r *Renderer) Theme() string {
	return r.styles.Theme
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80 // Default terminal width
	}
	innerWidth := termWidth - 4 // Account for main container padding

	lines := make([]string, 0, state.Height)
	lines = append(lines, r.renderTitle(state, innerWidth))
	lines = append(lines, r.styles.Dim.Render(state.Header))
	lines = append(lines, r.renderProgress(state, innerWidth))
	lines = append(lines, r.renderInput(state))
	lines = append(lines, r.renderTable(state, innerWidth)...)

	// Push the status line and footer to the bottom
	availableLines := state.Height - 2
	if availableLines <= 0 {
		availableLines = 22 // Default terminal height minus padding
	}
	for len(lines) < availableLines-2 {
		lines = append(lines, "")
	}
	lines = append(lines, r.renderStatus(state))
	lines = append(lines, r.styles.Help.Render(state.ShortHelp))

	mainStyle := r.styles.Main.MaxHeight(state.Height)
	finalContent := mainStyle.Render(strings.Join(lines, "\n"))

	if state.ShowHelp {
		helpContent := r.renderHelpContent(state.Height, state.HelpScrollOffset)
		return r.popupRender.RenderPopupOverlay(finalContent, helpContent, state.Height, termWidth, r.styles.InfoBox)
	}
	return finalContent
}

func (r *Renderer) renderTitle(state ViewState, width int) string {
	logo := r.styles.Title.Render("binfind")

	var right []string
	if state.Running {
		spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		frame := int(time.Now().UnixMilli()/80) % len(spinner)
		label := "Searching"
		if state.Progress.Cancelled {
			label = "Cancelling"
		}
		right = append(right, r.styles.Running.Render(fmt.Sprintf("%s %s", spinner[frame], label)))
	}
	if state.FilterQuery != "" {
		right = append(right, r.styles.Filter.Render(fmt.Sprintf("[Filter: %s]", state.FilterQuery)))
	}
	if len(right) == 0 {
		return logo
	}

	rightContent := strings.Join(right, "  ")
	paddingWidth := width - lipgloss.Width(logo) - lipgloss.Width(rightContent)
	if paddingWidth < 2 {
		paddingWidth = 2
	}
	return logo + strings.Repeat(" ", paddingWidth) + rightContent
}

func (r *Renderer) renderProgress(state ViewState, width int) string {
	snap := state.Progress
	if !snap.Visible || !snap.Running {
		return ""
	}
	if !snap.Determinate {
		return r.styles.Dim.Render(fmt.Sprintf("%d bytes scanned", snap.Current))
	}
	label := fmt.Sprintf(" %3.0f%%", snap.Fraction*100)
	r.bar.Width = max(width-lipgloss.Width(label), 10)
	return r.bar.ViewAs(snap.Fraction) + label
}

func (r *Renderer) renderInput(state ViewState) string {
	switch state.InputMode {
	case "sort":
		return r.renderSortOptions(state)
	case "":
		return ""
	default:
		return r.styles.Filter.Render(state.Prompt) + state.TextInput
	}
}

// renderSortOptions renders the sort mode selection interface
func (r *Renderer) renderSortOptions(state ViewState) string {
	// Show only the current sort option
	if state.SortOptionIndex >= 0 && state.SortOptionIndex < len(modes.SortOptions) {
		option := modes.SortOptions[state.SortOptionIndex]
		sortLine := fmt.Sprintf("Sort by: %s - %s", option.Name, option.Description)
		return sortLine + "  " + r.styles.Dim.Render("↑/↓ or j/k to change • Enter to accept • Esc to cancel")
	}
	return ""
}

func (r *Renderer) renderTable(state ViewState, width int) []string {
	if state.Rows == nil || state.Filtered == 0 {
		return []string{"", r.styles.Dim.Render(r.emptyMessage(state))}
	}

	widths := r.table.Widths(state.Rows, state.ViewportOffset, state.EffectiveHeight, width)
	lines := []string{r.table.RenderHeader(widths)}

	if state.TopIndicator {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↑ %d more above ↑", state.ViewportOffset)))
	}

	end := min(state.ViewportOffset+state.EffectiveHeight, state.Filtered)
	for row := state.ViewportOffset; row < end; row++ {
		lines = append(lines, r.table.RenderRow(state.Rows, row, widths, row == state.SelectedIndex))
	}

	if state.BottomIndicator {
		itemsBelow := max(state.Filtered-end, 0)
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↓ %d more below ↓", itemsBelow)))
	}
	return lines
}

func (r *Renderer) emptyMessage(state ViewState) string {
	switch {
	case !state.HasSearch:
		return "No search. Run binfind <file> <pattern>."
	case state.Total > 0:
		return "No results match the filter."
	case state.Running:
		return "Searching..."
	default:
		return "No matches."
	}
}

func (r *Renderer) renderStatus(state ViewState) string {
	counts := fmt.Sprintf("%d results", state.Total)
	if state.FilterQuery != "" {
		counts = fmt.Sprintf("%d of %d results", state.Filtered, state.Total)
	}
	parts := []string{counts}
	if state.SortLabel != "" && state.SortLabel != "none" {
		parts = append(parts, "sorted by "+state.SortLabel)
	}
	status := r.styles.Status.Render(strings.Join(parts, " • "))

	if state.StatusMessage != "" {
		msgStyle := r.styles.StatusOK
		if state.StatusIsError {
			msgStyle = r.styles.StatusError
		}
		status += "  " + msgStyle.Render(state.StatusMessage)
	}
	return status
}

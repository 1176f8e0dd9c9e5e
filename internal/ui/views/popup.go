package views

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// PopupRenderer handles popup/modal rendering
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderPopupOverlay renders a popup centred on top of a greyed-out copy of mainContent
func (pr *PopupRenderer) RenderPopupOverlay(mainContent, popupContent string, height, width int, popupStyle lipgloss.Style) string {
	styledPopup := popupStyle.Render(popupContent)
	popupLines := strings.Split(styledPopup, "\n")

	modalW := lipgloss.Width(styledPopup)
	modalH := len(popupLines)
	x := max((width-modalW)/2, 0)
	y := max((height-modalH)/2, 0)

	base := strings.Split(ansiRE.ReplaceAllString(mainContent, ""), "\n")
	for len(base) < y+modalH {
		base = append(base, "")
	}

	out := make([]string, len(base))
	for i, plain := range base {
		if i < y || i >= y+modalH {
			out[i] = pr.styles.Desaturated.Render(plain)
			continue
		}
		left := runewidth.FillRight(runewidth.Truncate(plain, x, ""), x)
		right := skipColumns(plain, x+modalW)
		out[i] = pr.styles.Desaturated.Render(left) + popupLines[i-y] + pr.styles.Desaturated.Render(right)
	}
	return strings.Join(out, "\n")
}

// ANSI escape sequence regex to strip styles/colors
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// skipColumns drops the first n display columns of a plain string
func skipColumns(s string, n int) string {
	w := 0
	for i, r := range s {
		if w >= n {
			return s[i:]
		}
		w += runewidth.RuneWidth(r)
	}
	return ""
}

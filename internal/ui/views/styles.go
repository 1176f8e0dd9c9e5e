package views

import (
	"github.com/charmbracelet/lipgloss"

	"binfind/internal/domain"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Theme       string
	Title       lipgloss.Style
	Header      lipgloss.Style
	Dim         lipgloss.Style
	Status      lipgloss.Style
	Filter      lipgloss.Style
	InfoBox     lipgloss.Style
	Help        lipgloss.Style
	Main        lipgloss.Style
	Scroll      lipgloss.Style
	SelectionBg lipgloss.Style
	StatusError lipgloss.Style
	StatusOK    lipgloss.Style
	Running     lipgloss.Style
	Desaturated lipgloss.Style

	tokens map[domain.TokenKind]lipgloss.Style
}

// NewStyles creates the styles of a theme. Unknown themes fall back to dark.
func NewStyles(theme string) *Styles {
	if theme == ThemeLight {
		return lightStyles()
	}
	return darkStyles()
}

// Token returns the style for a rendered token kind
func (s *Styles) Token(kind domain.TokenKind) lipgloss.Style {
	if st, ok := s.tokens[kind]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

func darkStyles() *Styles {
	return &Styles{
		Theme: ThemeDark,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Dim:         lipgloss.NewStyle().Faint(true),
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Filter:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		InfoBox:     infoBox("241"),
		Help:        lipgloss.NewStyle().Faint(true),
		Main:        lipgloss.NewStyle().Padding(1, 2),
		Scroll:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		SelectionBg: lipgloss.NewStyle().Background(lipgloss.Color("238")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusOK:    lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		Running:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
		Desaturated: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		tokens: map[domain.TokenKind]lipgloss.Style{
			domain.TextToken:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			domain.AddressToken:     lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
			domain.HexToken:         lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
			domain.SymbolToken:      lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
			domain.PlaceholderToken: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		},
	}
}

func lightStyles() *Styles {
	return &Styles{
		Theme: ThemeLight,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("55")),
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		Dim:         lipgloss.NewStyle().Faint(true),
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Filter:      lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		InfoBox:     infoBox("245"),
		Help:        lipgloss.NewStyle().Faint(true),
		Main:        lipgloss.NewStyle().Padding(1, 2),
		Scroll:      lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true),
		SelectionBg: lipgloss.NewStyle().Background(lipgloss.Color("253")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		StatusOK:    lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Running:     lipgloss.NewStyle().Foreground(lipgloss.Color("31")),
		Desaturated: lipgloss.NewStyle().Foreground(lipgloss.Color("248")),
		tokens: map[domain.TokenKind]lipgloss.Style{
			domain.TextToken:        lipgloss.NewStyle().Foreground(lipgloss.Color("235")),
			domain.AddressToken:     lipgloss.NewStyle().Foreground(lipgloss.Color("94")),
			domain.HexToken:         lipgloss.NewStyle().Foreground(lipgloss.Color("25")),
			domain.SymbolToken:      lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
			domain.PlaceholderToken: lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		},
	}
}

func infoBox(border string) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		Padding(1).
		BorderForeground(lipgloss.Color(border))
}

package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the bindings shown in the footer. Dispatch happens in the input modes.
type keyMap struct {
	Move   key.Binding
	Open   key.Binding
	Filter key.Binding
	Sort   key.Binding
	Cancel key.Binding
	Rerun  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Move:   key.NewBinding(key.WithKeys("up", "down", "j", "k"), key.WithHelp("↑/↓", "move")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "hex dump")),
		Filter: key.NewBinding(key.WithKeys("/", "F"), key.WithHelp("/", "filter")),
		Sort:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Cancel: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cancel")),
		Rerun:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rerun")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Open, k.Filter, k.Sort, k.Cancel, k.Rerun, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

package modes

import (
	"github.com/charmbracelet/bubbles/textinput"

	"binfind/internal/ui/input/types"
)

// FilterMode edits the live result filter. Every keystroke refilters.
type FilterMode struct {
	TextInputMode
}

func NewFilterMode(ti *textinput.Model) *FilterMode {
	return &FilterMode{
		TextInputMode: NewTextInputMode(types.ModeFilter, "filter", "Filter: ", ti),
	}
}

func (m *FilterMode) Enter(ctx types.Context) []types.Action {
	m.Remember(ctx.FilterText())
	return m.TextInputMode.Enter(ctx)
}

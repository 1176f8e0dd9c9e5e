package modes

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"binfind/internal/ui/input/types"
)

const ggTimeout = 500 * time.Millisecond

type NormalMode struct {
	lastKeyWasG bool
	lastGTime   time.Time
	now         func() time.Time
}

func NewNormalMode() *NormalMode {
	return &NormalMode{now: time.Now}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	key := msg.String()
	if key != "g" {
		m.lastKeyWasG = false
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true
	case tea.KeyUp:
		return []types.Action{types.NavigateAction{Direction: "up"}}, true
	case tea.KeyDown:
		return []types.Action{types.NavigateAction{Direction: "down"}}, true
	case tea.KeyPgUp:
		return []types.Action{types.NavigateAction{Direction: "pageup"}}, true
	case tea.KeyPgDown:
		return []types.Action{types.NavigateAction{Direction: "pagedown"}}, true
	case tea.KeyHome:
		return []types.Action{types.NavigateAction{Direction: "home"}}, true
	case tea.KeyEnd:
		return []types.Action{types.NavigateAction{Direction: "end"}}, true
	case tea.KeyEnter:
		if ctx.TotalItems() > 0 {
			return []types.Action{types.OpenResultAction{}}, true
		}
		return nil, false
	}

	switch key {
	case "j":
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case "k":
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case "ctrl+d":
		return []types.Action{types.NavigateAction{Direction: "pagedown"}}, true

	case "ctrl+u":
		return []types.Action{types.NavigateAction{Direction: "pageup"}}, true

	case "/", "F", "ctrl+f":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeFilter, Data: ctx.FilterText()}}, true

	case "s":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeSort}}, true

	case "S":
		return []types.Action{types.ReverseSortAction{}}, true

	case "x":
		// Cancel only makes sense while the producer runs
		if ctx.IsRunning() {
			return []types.Action{types.CancelSearchAction{}}, true
		}
		return nil, true

	case "r":
		if ctx.HasSearch() {
			return []types.Action{types.RestartSearchAction{}}, true
		}
		return nil, true

	case "t":
		return []types.Action{types.ToggleThemeAction{}}, true

	case "?":
		return []types.Action{types.ToggleHelpAction{}}, true

	case "esc":
		if ctx.FilterText() != "" {
			return []types.Action{types.ClearFilterAction{}}, true
		}
		return nil, true

	case "q":
		return []types.Action{types.QuitAction{Force: false}}, true

	case "g":
		if m.lastKeyWasG && m.now().Sub(m.lastGTime) < ggTimeout {
			// gg - go to top
			m.lastKeyWasG = false
			return []types.Action{types.NavigateAction{Direction: "home"}}, true
		}
		m.lastKeyWasG = true
		m.lastGTime = m.now()
		return nil, true

	case "G":
		return []types.Action{types.NavigateAction{Direction: "end"}}, true
	}

	return nil, false
}

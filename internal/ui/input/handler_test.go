package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binfind/internal/ui/input/types"
)

type fakeContext struct {
	index   int
	total   int
	filter  string
	sort    string
	running bool
	search  bool
}

func (c *fakeContext) CurrentIndex() int      { return c.index }
func (c *fakeContext) TotalItems() int        { return c.total }
func (c *fakeContext) FilterText() string     { return c.filter }
func (c *fakeContext) GetCurrentSort() string { return c.sort }
func (c *fakeContext) IsRunning() bool        { return c.running }
func (c *fakeContext) HasSearch() bool        { return c.search }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNormalModeKeys(t *testing.T) {
	h := New()
	ctx := &fakeContext{total: 3, sort: "none"}

	actions, _ := h.HandleKey(runes("j"), ctx)
	assert.Equal(t, []types.Action{types.NavigateAction{Direction: "down"}}, actions)

	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, ctx)
	assert.Equal(t, []types.Action{types.OpenResultAction{}}, actions)

	actions, _ = h.HandleKey(runes("x"), ctx)
	assert.Empty(t, actions, "nothing to cancel")

	ctx.running = true
	actions, _ = h.HandleKey(runes("x"), ctx)
	assert.Equal(t, []types.Action{types.CancelSearchAction{}}, actions)

	actions, _ = h.HandleKey(runes("r"), ctx)
	assert.Empty(t, actions, "nothing to restart")
	ctx.search = true
	actions, _ = h.HandleKey(runes("r"), ctx)
	assert.Equal(t, []types.Action{types.RestartSearchAction{}}, actions)

	_, _ = h.HandleKey(runes("g"), ctx)
	actions, _ = h.HandleKey(runes("g"), ctx)
	assert.Equal(t, []types.Action{types.NavigateAction{Direction: "home"}}, actions)

	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlC}, ctx)
	assert.Equal(t, []types.Action{types.QuitAction{Force: true}}, actions)
}

func TestFilterModeEditsAndRestores(t *testing.T) {
	h := New()
	ctx := &fakeContext{filter: "main"}

	_, cmd := h.HandleKey(runes("/"), ctx)
	assert.NotNil(t, cmd)
	assert.Equal(t, types.ModeFilter, h.CurrentMode())
	require.NotNil(t, h.TextInput())
	assert.Equal(t, "main", h.TextInput().Value())
	assert.Equal(t, "Filter: ", h.Prompt())

	actions, _ := h.HandleKey(runes("x"), ctx)
	assert.Equal(t, []types.Action{types.UpdateTextAction{Text: "mainx"}}, actions)

	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, ctx)
	assert.Equal(t, []types.Action{types.CancelTextAction{Original: "main"}}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
	assert.Nil(t, h.TextInput())
}

func TestFilterModeSubmit(t *testing.T) {
	h := New()
	ctx := &fakeContext{}

	h.HandleKey(runes("/"), ctx)
	h.HandleKey(runes("a"), ctx)
	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, ctx)
	assert.Equal(t, []types.Action{types.SubmitTextAction{Text: "a", Mode: types.ModeFilter}}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

func TestSortModeAppliesAndRestores(t *testing.T) {
	h := New()
	ctx := &fakeContext{sort: "address"}

	actions, _ := h.HandleKey(runes("s"), ctx)
	assert.Equal(t, types.ModeSort, h.CurrentMode())
	assert.Equal(t, []types.Action{types.UpdateSortIndexAction{Index: 1}}, actions)

	actions, _ = h.HandleKey(runes("j"), ctx)
	assert.Equal(t, []types.Action{
		types.UpdateSortIndexAction{Index: 2},
		types.SortByAction{Criteria: "data"},
	}, actions)
	assert.Equal(t, 2, h.SortIndex())

	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, ctx)
	assert.Equal(t, []types.Action{
		types.SortByAction{Criteria: "address"},
		types.UpdateSortIndexAction{Index: 1},
	}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

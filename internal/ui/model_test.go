package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"binfind/internal/config"
	"binfind/internal/domain"
	"binfind/internal/eventbus"
	"binfind/internal/scan"
	"binfind/internal/session"
	"binfind/internal/ui/views"
)

// staticEngine emits one match per address and returns
type staticEngine struct {
	addrs []uint64
}

func (e staticEngine) Search(ctx context.Context, params domain.SearchParameters, sink scan.Sink) error {
	for _, a := range e.addrs {
		sink.Insert(domain.Match{Address: a, Payload: []byte(params.Pattern)})
	}
	return nil
}

func newTestModel(t *testing.T, bus eventbus.EventBus, addrs ...uint64) (*Model, *session.Session) {
	t.Helper()
	s := session.New(session.Options{Engine: staticEngine{addrs: addrs}, Bus: bus})
	t.Cleanup(s.Close)
	params := domain.SearchParameters{Path: "/dev/null", Pattern: "ab"}
	m := NewModel(Options{Session: s, Bus: bus, Config: config.DefaultConfig(), Search: &params})
	return m, s
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMergeTickLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, s := newTestModel(t, nil, 0x20, 0x10, 0x20)
	require.NotNil(t, m.Init())
	s.Wait()

	_, cmd := m.Update(mergeTickMsg{gen: 0})
	assert.Nil(t, cmd, "stale tick is dropped")
	assert.Equal(t, 0, s.ResultCount())

	_, cmd = m.Update(mergeTickMsg{gen: s.Generation()})
	assert.NotNil(t, cmd, "a merging tick schedules the next one")
	assert.Equal(t, 2, s.ResultCount())
	assert.Equal(t, 2, m.navigator.Total())

	_, cmd = m.Update(mergeTickMsg{gen: s.Generation()})
	assert.Nil(t, cmd, "loop stops once idle and finished")
}

func TestCompletionBumpsFinalTick(t *testing.T) {
	m, s := newTestModel(t, nil, 0x10)
	m.Init()
	s.Wait()

	_, cmd := m.Update(EventMsg{Event: domain.SearchCompletedEvent{Generation: s.Generation()}})
	require.NotNil(t, cmd)
	assert.Equal(t, "Search finished in 0s", m.statusMessage)

	_, cmd = m.Update(EventMsg{Event: domain.SearchCompletedEvent{Generation: 99}})
	assert.Nil(t, cmd)
}

func TestFilterKeysDriveSession(t *testing.T) {
	m, s := newTestModel(t, nil, 0x10, 0x20)
	m.Init()
	s.Wait()
	m.Update(mergeTickMsg{gen: s.Generation()})

	m.Update(keys("/"))
	m.Update(keys("00000020"))
	assert.Equal(t, "00000020", s.FilterText())
	assert.Equal(t, 1, s.FilteredCount())
	assert.Equal(t, 1, m.navigator.Total())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", s.FilterText())
	assert.Equal(t, 2, s.FilteredCount())
}

func TestSortKeys(t *testing.T) {
	m, s := newTestModel(t, nil, 0x30, 0x10, 0x20)
	m.Init()
	s.Wait()
	m.Update(mergeTickMsg{gen: s.Generation()})

	m.Update(keys("s"))
	m.Update(keys("j"))
	assert.Equal(t, "address asc", s.Sort().String())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	first, err := s.VisibleItemAt(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x10), first.Addr())

	m.Update(keys("S"))
	assert.Equal(t, "address desc", s.Sort().String())
}

func TestViewRendersTable(t *testing.T) {
	m, s := newTestModel(t, nil, 0x10, 0x20)
	assert.Equal(t, "Loading...", m.View())

	m.Init()
	s.Wait()
	m.Update(mergeTickMsg{gen: s.Generation()})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	out := m.View()
	assert.Contains(t, out, "Address")
	assert.Contains(t, out, "0x00000010")
	assert.Contains(t, out, "61 62")
	assert.Contains(t, out, `Search for text "ab"`)
	assert.Contains(t, out, "2 results")
	assert.LessOrEqual(t, len(strings.Split(out, "\n")), 30)

	m.Update(keys("?"))
	assert.Contains(t, m.View(), "binfind Help")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)
}

func TestToggleThemePublishesAndInvalidates(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := eventbus.New()
	defer bus.Close()
	themes := make(chan string, 1)
	bus.Subscribe(eventbus.EventThemeChanged, func(e eventbus.DomainEvent) {
		themes <- e.(domain.ThemeChangedEvent).Theme
	})

	m, s := newTestModel(t, bus, 0x10)
	m.Init()
	s.Wait()
	m.Update(mergeTickMsg{gen: s.Generation()})
	_, err := s.Tokens(0, domain.AddressColumn)
	require.NoError(t, err)

	m.Update(keys("t"))
	assert.Equal(t, views.ThemeLight, m.renderer.Theme())
	assert.Equal(t, views.ThemeLight, m.config.UI.Theme)
	assert.Equal(t, views.ThemeLight, <-themes)

	ct, err := s.CachedTokens(0, domain.AddressColumn)
	require.NoError(t, err)
	assert.False(t, ct.Valid)
}

func TestHexDump(t *testing.T) {
	data := make([]byte, 200)
	for i := range data {
		data[i] = byte(i)
	}
	copy(data[100:], "MZ")
	path := filepath.Join(t.TempDir(), "bin")
	require.NoError(t, os.WriteFile(path, data, 0644))

	fn := &domain.FunctionRef{Name: "entry", Start: 96, Size: 16}
	item := domain.NewResultItem(100, []byte("MZ"), fn, len(domain.Columns))
	out, err := HexDump(path, item)
	require.NoError(t, err)

	assert.Contains(t, out, "Match at 0x00000064, 2 bytes")
	assert.Contains(t, out, "Function entry+0x4 (start 0x00000060, size 16)")
	assert.Contains(t, out, "0x00000020  ")
	assert.Contains(t, out, "0x000000a0  ")
	assert.NotContains(t, out, "0x00000010  ")

	_, err = HexDump(path, domain.NewResultItem(500, nil, nil, len(domain.Columns)))
	assert.Error(t, err)
}

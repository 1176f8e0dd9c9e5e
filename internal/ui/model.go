package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"binfind/internal/config"
	"binfind/internal/domain"
	"binfind/internal/eventbus"
	"binfind/internal/logging"
	"binfind/internal/progress"
	"binfind/internal/session"
	"binfind/internal/ui/input"
	inputtypes "binfind/internal/ui/input/types"
	"binfind/internal/ui/logic"
	"binfind/internal/ui/views"
)

const (
	spinnerInterval = 100 * time.Millisecond
	statusTimeout   = 5 * time.Second
)

// Options configures the UI model
type Options struct {
	Context context.Context
	Session *session.Session
	Bus     eventbus.EventBus
	Config  *config.Config
	// Search is started by Init when set
	Search *domain.SearchParameters
}

// Model represents the UI state. It is the single consumer of the session.
type Model struct {
	ctx     context.Context
	bus     eventbus.EventBus
	config  *config.Config
	session *session.Session
	initial *domain.SearchParameters
	logger  *log.Logger

	width            int
	height           int
	help             help.Model
	keys             keyMap
	showHelp         bool
	helpScrollOffset int
	sortIndex        int
	statusMessage    string
	statusIsError    bool
	statusSeq        int
	inPagerMode      bool // tracks if we're currently in pager mode
	spinning         bool

	navigator    *logic.Navigator
	renderer     *views.Renderer
	inputHandler *input.Handler
	pager        *Pager

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Model{
		ctx:          ctx,
		bus:          opts.Bus,
		config:       cfg,
		session:      opts.Session,
		initial:      opts.Search,
		logger:       logging.WithPrefix("ui"),
		help:         help.New(),
		keys:         newKeyMap(),
		navigator:    logic.NewNavigator(),
		renderer:     views.NewRenderer(cfg.UI.Theme),
		inputHandler: input.New(),
		pager:        NewPager(),
	}
}

// SetProgram sets the program reference for terminal management and routes
// producer repaint requests into it
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager.SetProgram(p)
	m.session.OnRepaint(func(gen uint64, snap progress.Snapshot) {
		p.Send(progressMsg{gen: gen, snap: snap})
	})
}

// Init starts the initial search, if any
func (m *Model) Init() tea.Cmd {
	if m.initial == nil {
		return nil
	}
	return m.startSearch(*m.initial)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.navigator.SetViewportHeight(views.TableHeight(msg.Height))
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			return m, m.handleHelpKey(msg)
		}

		ctx := &input.ModelContext{
			Session:       m.session,
			SelectedIndex: m.navigator.SelectedIndex(),
		}
		actions, cmd := m.inputHandler.HandleKey(msg, ctx)

		cmds := []tea.Cmd{}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		for _, action := range actions {
			if actionCmd := m.processAction(action); actionCmd != nil {
				cmds = append(cmds, actionCmd)
			}
		}
		return m, tea.Batch(cmds...)

	default:
		// Handle non-keyboard messages
		if cmd := m.inputHandler.Update(msg); cmd != nil {
			return m, cmd
		}
		return m, m.handleNonKeyboardMsg(msg)
	}
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "?", "q":
		m.showHelp = false
		m.helpScrollOffset = 0
	case "ctrl+c":
		return tea.Quit
	case "up", "k":
		if m.helpScrollOffset > 0 {
			m.helpScrollOffset--
		}
	case "down", "j":
		m.helpScrollOffset++
	}
	return nil
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case mergeTickMsg:
		return m.handleMergeTick(msg)

	case progressMsg:
		// Nothing to store: the message only triggers a repaint and the view
		// reads the live snapshot of the current generation
		return nil

	case spinnerMsg:
		if !m.session.IsRunning() || m.inPagerMode {
			m.spinning = false
			return nil
		}
		return spinnerTick()

	case EventMsg:
		return m.handleEvent(msg.Event)

	case pagerMsg:
		if msg.err != nil {
			m.logger.Error("pager failed", "what", msg.what, "error", msg.err)
			return m.setStatus(fmt.Sprintf("Cannot show %s: %v", msg.what, msg.err), true)
		}
		return nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		if m.session.IsRunning() {
			m.spinning = false
			return m.startSpinner()
		}
		return nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.statusMessage = ""
			m.statusIsError = false
		}
		return nil
	}
	return nil
}

// handleMergeTick runs one merge. The loop keeps going while the producer runs
// and stops after the first empty tick once it has finished; the running state
// is read before the merge so inserts made just before the producer returned
// are still drained.
func (m *Model) handleMergeTick(msg mergeTickMsg) tea.Cmd {
	if msg.gen != m.session.Generation() {
		return nil
	}
	running := m.session.IsRunning()
	_, merged := m.session.Tick(msg.gen)
	if merged {
		m.navigator.SetTotal(m.session.FilteredCount())
	}
	if running || merged {
		return m.scheduleMerge(msg.gen)
	}
	return nil
}

func (m *Model) handleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case domain.SearchCompletedEvent:
		if e.Generation != m.session.Generation() {
			return nil
		}
		var status tea.Cmd
		switch {
		case e.Err != nil:
			status = m.setStatus(fmt.Sprintf("Search failed: %v", e.Err), true)
		case e.Cancelled:
			status = m.setStatus("Search cancelled", false)
		default:
			status = m.setStatus(fmt.Sprintf("Search finished in %s", e.Duration.Round(time.Millisecond)), false)
		}
		// Final merge so the last inserts show up without waiting for the next interval
		gen := e.Generation
		return tea.Batch(status, func() tea.Msg { return mergeTickMsg{gen: gen} })

	case domain.ErrorEvent:
		return m.setStatus(e.Message, true)

	case domain.ConfigSavedEvent:
		m.logger.Debug("config saved", "path", e.Path)
	}
	return nil
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		switch a.Direction {
		case "up":
			m.navigator.Up()
		case "down":
			m.navigator.Down()
		case "home":
			m.navigator.Home()
		case "end":
			m.navigator.End()
		case "pageup":
			m.navigator.PageUp()
		case "pagedown":
			m.navigator.PageDown()
		}

	case inputtypes.UpdateTextAction:
		m.applyFilter(a.Text)

	case inputtypes.SubmitTextAction:
		m.applyFilter(a.Text)

	case inputtypes.CancelTextAction:
		m.applyFilter(a.Original)

	case inputtypes.ClearFilterAction:
		m.applyFilter("")

	case inputtypes.OpenResultAction:
		return m.openSelected()

	case inputtypes.CancelSearchAction:
		m.session.Cancel()
		return m.setStatus("Cancelling search...", false)

	case inputtypes.RestartSearchAction:
		params, err := m.session.Parameters()
		if err != nil {
			return m.setStatus("Nothing to run again", true)
		}
		return m.startSearch(params)

	case inputtypes.ToggleThemeAction:
		m.toggleTheme()

	case inputtypes.ToggleHelpAction:
		m.showHelp = !m.showHelp
		m.helpScrollOffset = 0

	case inputtypes.SortByAction:
		m.applySort(a.Criteria)

	case inputtypes.ReverseSortAction:
		key := m.session.Sort()
		if !key.Active {
			m.session.SetSort(domain.AddressColumn, true)
		} else {
			m.session.SetSort(key.Column, !key.Descending)
		}
		return m.setStatus("Sorted by "+m.session.Sort().String(), false)

	case inputtypes.UpdateSortIndexAction:
		m.sortIndex = a.Index

	case inputtypes.QuitAction:
		return tea.Quit
	}
	return nil
}

func (m *Model) startSearch(params domain.SearchParameters) tea.Cmd {
	gen, err := m.session.StartNewSearch(m.ctx, params)
	if err != nil {
		m.logger.Error("cannot start search", "error", err)
		return m.setStatus(fmt.Sprintf("Search failed: %v", err), true)
	}
	m.navigator.Reset()
	m.statusMessage = ""
	return tea.Batch(m.scheduleMerge(gen), m.startSpinner())
}

func (m *Model) scheduleMerge(gen uint64) tea.Cmd {
	return tea.Tick(m.config.UI.MergeInterval(), func(time.Time) tea.Msg {
		return mergeTickMsg{gen: gen}
	})
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return spinnerTick()
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg { return spinnerMsg{} })
}

func (m *Model) applyFilter(text string) {
	m.session.SetFilterText(text)
	m.navigator.SetTotal(m.session.FilteredCount())
}

func (m *Model) applySort(criteria string) {
	if criteria == "none" {
		m.session.ClearSort()
		return
	}
	col, ok := domain.ParseColumn(criteria)
	if !ok {
		m.logger.Warn("unknown sort criteria", "criteria", criteria)
		return
	}
	m.session.SetSort(col, false)
}

func (m *Model) toggleTheme() {
	next := views.ThemeLight
	if m.renderer.Theme() == views.ThemeLight {
		next = views.ThemeDark
	}
	m.renderer.SetTheme(next)
	m.session.NotifyThemeChanged()
	m.config.UI.Theme = next
	if m.bus != nil {
		m.bus.Publish(domain.ThemeChangedEvent{Theme: next})
		m.bus.Publish(domain.ConfigChangedEvent{Key: "ui.theme", Value: next})
	}
}

func (m *Model) openSelected() tea.Cmd {
	item, err := m.session.VisibleItemAt(m.navigator.SelectedIndex())
	if err != nil {
		return nil
	}
	params, err := m.session.Parameters()
	if err != nil {
		return nil
	}
	return m.showHexDump(params.Path, item)
}

// showHexDump returns a command that pages the hex dump of item
func (m *Model) showHexDump(path string, item *domain.ResultItem) tea.Cmd {
	return func() tea.Msg {
		content, err := HexDump(path, item)
		if err != nil {
			return pagerMsg{what: "hex dump", err: err}
		}
		if m.program == nil {
			return pagerMsg{what: "hex dump", err: errors.New("no terminal to page on")}
		}

		// Send pause message to stop rendering
		m.program.Send(pauseRenderingMsg{})
		err = m.pager.Show(content)
		// Send resume message to restart rendering
		m.program.Send(resumeRenderingMsg{})

		return pagerMsg{what: "hex dump", err: err}
	}
}

func (m *Model) setStatus(text string, isError bool) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.statusMessage = text
	m.statusIsError = isError
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.inPagerMode {
		return ""
	}

	running := m.session.IsRunning()
	m.keys.Cancel.SetEnabled(running)
	m.keys.Rerun.SetEnabled(m.session.Generation() > 0)

	inputMode := ""
	textInput := ""
	if m.inputHandler.CurrentMode() != inputtypes.ModeNormal {
		inputMode = m.inputHandler.ModeName()
	}
	if ti := m.inputHandler.TextInput(); ti != nil {
		textInput = ti.View()
	}

	top, bottom := m.navigator.Indicators()
	state := views.ViewState{
		Width:            m.width,
		Height:           m.height,
		Header:           m.session.HeaderText(),
		Rows:             m.session,
		Total:            m.session.ResultCount(),
		Filtered:         m.session.FilteredCount(),
		HasSearch:        m.session.Generation() > 0,
		Running:          running,
		Progress:         m.session.Progress(),
		FilterQuery:      m.session.FilterText(),
		SortLabel:        m.session.Sort().String(),
		InputMode:        inputMode,
		Prompt:           m.inputHandler.Prompt(),
		TextInput:        textInput,
		SortOptionIndex:  m.sortIndex,
		StatusMessage:    m.statusMessage,
		StatusIsError:    m.statusIsError,
		ShowHelp:         m.showHelp,
		HelpScrollOffset: m.helpScrollOffset,
		SelectedIndex:    m.navigator.SelectedIndex(),
		ViewportOffset:   m.navigator.ViewportOffset(),
		EffectiveHeight:  m.navigator.EffectiveHeight(),
		TopIndicator:     top,
		BottomIndicator:  bottom,
		ShortHelp:        m.help.ShortHelpView(m.keys.ShortHelp()),
	}
	return m.renderer.Render(state)
}

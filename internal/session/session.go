package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"binfind/internal/domain"
	"binfind/internal/eventbus"
	"binfind/internal/logging"
	"binfind/internal/progress"
	"binfind/internal/render"
	"binfind/internal/results"
	"binfind/internal/scan"
)

// ErrNoSearch is returned by operations that need a search generation
var ErrNoSearch = errors.New("no search has been started")

// RepaintFunc is called from producer goroutines when the progress display
// of generation gen should be repainted
type RepaintFunc func(gen uint64, snap progress.Snapshot)

// Options configures a Session
type Options struct {
	Engine         scan.Engine
	Bus            eventbus.EventBus
	Progress       progress.Options
	Tokenizer      *render.Tokenizer
	ColumnMinWidth int
}

// generation is the producer-facing side of one search. The engine only
// ever sees this value, so a late producer cannot reach a newer generation.
type generation struct {
	id       uint64
	params   domain.SearchParameters
	buffer   *results.PendingBuffer
	reporter *progress.Reporter
	cancel   context.CancelFunc
	repaint  RepaintFunc
	started  time.Time

	running atomic.Bool
	matches atomic.Int64
}

func (g *generation) Insert(m domain.Match) {
	if results.Insert(g.buffer, m) {
		g.matches.Add(1)
	}
}

func (g *generation) Update(current, total uint64) bool {
	repaint := g.reporter.Update(current, total)
	if repaint && g.repaint != nil {
		g.repaint(g.id, g.reporter.Snapshot())
	}
	return repaint
}

func (g *generation) Cancelled() bool {
	return g.reporter.Cancelled()
}

// Session owns the result pipeline of a results window. All methods must be
// called from the single consumer goroutine.
type Session struct {
	engine   scan.Engine
	bus      eventbus.EventBus
	progOpts progress.Options
	logger   *log.Logger

	store  *results.Store
	merger *results.Merger
	view   *results.View
	cache  *render.Cache

	gen     *generation
	lastID  uint64
	repaint RepaintFunc
	wg      sync.WaitGroup
}

// New creates a session with no search
func New(opts Options) *Session {
	cache := render.NewCache(opts.Tokenizer, opts.ColumnMinWidth)
	store := results.NewStore()
	return &Session{
		engine:   opts.Engine,
		bus:      opts.Bus,
		progOpts: opts.Progress,
		logger:   logging.WithPrefix("session"),
		store:    store,
		merger:   results.NewMerger(store),
		view:     results.NewView(cache.Text),
		cache:    cache,
	}
}

// OnRepaint sets the progress repaint callback for searches started afterwards
func (s *Session) OnRepaint(fn RepaintFunc) {
	s.repaint = fn
}

// StartNewSearch discards the current generation and starts the engine on
// params in the background
func (s *Session) StartNewSearch(ctx context.Context, params domain.SearchParameters) (uint64, error) {
	if s.engine == nil {
		return 0, errors.New("session has no search engine")
	}
	if err := params.Validate(); err != nil {
		return 0, err
	}

	if prev := s.gen; prev != nil {
		prev.reporter.Cancel()
		prev.cancel()
	}

	s.lastID++
	id := s.lastID
	s.merger.Reset(id)
	s.view.Reset()

	reporter := progress.NewReporter(s.progOpts)
	reporter.Init()

	runCtx, cancel := context.WithCancel(ctx)
	g := &generation{
		id:       id,
		params:   params,
		buffer:   s.merger.Buffer(),
		reporter: reporter,
		cancel:   cancel,
		repaint:  s.repaint,
		started:  time.Now(),
	}
	g.running.Store(true)
	s.gen = g

	s.logger.Info("starting search", "generation", id, "path", params.Path, "search", params.String())
	s.publish(domain.SearchStartedEvent{Generation: id, Params: params, StartedAt: g.started})

	s.wg.Add(1)
	go s.run(runCtx, g)
	return id, nil
}

func (s *Session) run(ctx context.Context, g *generation) {
	defer s.wg.Done()
	defer g.cancel()

	err := s.engine.Search(ctx, g.params, g)

	cancelled := g.reporter.Cancelled() || errors.Is(err, context.Canceled)
	if cancelled {
		err = nil
	}
	g.reporter.Finish()
	g.running.Store(false)

	if err != nil {
		s.logger.Error("search failed", "generation", g.id, "error", err)
		s.publish(domain.ErrorEvent{Source: "search", Message: "Search failed", Err: err})
	}
	s.publish(domain.SearchCompletedEvent{
		Generation: g.id,
		Matches:    g.matches.Load(),
		Cancelled:  cancelled,
		Err:        err,
		Duration:   time.Since(g.started),
	})
}

// Restart runs the current search parameters again as a new generation
func (s *Session) Restart(ctx context.Context) (uint64, error) {
	params, err := s.Parameters()
	if err != nil {
		return 0, err
	}
	return s.StartNewSearch(ctx, params)
}

// Cancel asks the running producer to stop. Results already buffered are
// still merged by later ticks.
func (s *Session) Cancel() {
	g := s.gen
	if g == nil || !g.running.Load() || g.reporter.Cancelled() {
		return
	}
	g.reporter.Cancel()
	s.logger.Info("search cancelled", "generation", g.id)
	s.publish(domain.SearchCancelledEvent{Generation: g.id})
}

// Close cancels any running search and waits for producers to return
func (s *Session) Close() {
	if g := s.gen; g != nil {
		g.reporter.Cancel()
		g.cancel()
	}
	s.wg.Wait()
}

// Wait blocks until every producer started by this session has returned
func (s *Session) Wait() {
	s.wg.Wait()
}

// IsRunning reports whether the current generation's producer is still running
func (s *Session) IsRunning() bool {
	return s.gen != nil && s.gen.running.Load()
}

// Generation returns the current generation, 0 before the first search
func (s *Session) Generation() uint64 {
	if s.gen == nil {
		return 0
	}
	return s.gen.id
}

// Parameters returns the parameters of the current generation
func (s *Session) Parameters() (domain.SearchParameters, error) {
	if s.gen == nil {
		return domain.SearchParameters{}, ErrNoSearch
	}
	return s.gen.params, nil
}

// HeaderText describes the current search for the window title
func (s *Session) HeaderText() string {
	if s.gen == nil {
		return "No search"
	}
	return fmt.Sprintf("Search for %s", s.gen.params.String())
}

// Progress returns the progress of the current generation
func (s *Session) Progress() progress.Snapshot {
	if s.gen == nil {
		return progress.Snapshot{}
	}
	return s.gen.reporter.Snapshot()
}

// Tick runs one merge for gen and brings the view up to date. Ticks for
// older generations change nothing.
func (s *Session) Tick(gen uint64) (results.Change, bool) {
	if s.gen == nil || gen != s.gen.id {
		return results.Change{}, false
	}
	c, ok := s.merger.Tick(gen)
	if !ok {
		return c, false
	}
	s.view.Sync(s.store)
	s.publish(domain.ResultsMergedEvent{Generation: gen, From: c.From, To: c.To})
	return c, true
}

// Subscribe registers fn for store change notifications
func (s *Session) Subscribe(fn func(results.Change)) func() {
	return s.merger.Subscribe(fn)
}

// ResultCount returns the number of accepted results
func (s *Session) ResultCount() int { return s.store.Len() }

// FilteredCount returns the number of results passing the filter
func (s *Session) FilteredCount() int { return s.view.Len() }

// RowCount returns the number of store rows
func (s *Session) RowCount() int { return s.store.Len() }

// ItemAt returns the item at a store row
func (s *Session) ItemAt(row int) (*domain.ResultItem, error) {
	return s.store.At(row)
}

// VisibleItemAt returns the item at a filtered and sorted row
func (s *Session) VisibleItemAt(row int) (*domain.ResultItem, error) {
	r, err := s.view.Row(row)
	if err != nil {
		return nil, err
	}
	return s.store.At(r)
}

// SetFilterText changes the live filter
func (s *Session) SetFilterText(text string) {
	s.view.SetFilter(text)
	s.view.Sync(s.store)
}

// FilterText returns the live filter
func (s *Session) FilterText() string { return s.view.FilterText() }

// SetSort sorts the view by col
func (s *Session) SetSort(col domain.Column, descending bool) {
	s.view.SetSort(results.SortBy(col, descending))
	s.view.Sync(s.store)
}

// ClearSort returns the view to accept order
func (s *Session) ClearSort() {
	s.view.SetSort(results.SortKey{})
	s.view.Sync(s.store)
}

// Sort returns the current sort key
func (s *Session) Sort() results.SortKey { return s.view.SortKey() }

// CachedTokens returns the cache entry of a store row
func (s *Session) CachedTokens(row int, col domain.Column) (domain.CachedTokens, error) {
	item, err := s.store.At(row)
	if err != nil {
		return domain.CachedTokens{}, err
	}
	return s.cache.Get(item, col)
}

// SetCachedTokens stores rendered tokens for a store row
func (s *Session) SetCachedTokens(row int, col domain.Column, primary []domain.Token, flattened string) error {
	item, err := s.store.At(row)
	if err != nil {
		return err
	}
	return s.cache.Set(item, col, primary, flattened)
}

// Tokens returns the tokens of a store row, computing them once per epoch
func (s *Session) Tokens(row int, col domain.Column) (domain.CachedTokens, error) {
	item, err := s.store.At(row)
	if err != nil {
		return domain.CachedTokens{}, err
	}
	return s.cache.Tokens(item, col)
}

// ItemTokens is Tokens for an item already looked up
func (s *Session) ItemTokens(item *domain.ResultItem, col domain.Column) (domain.CachedTokens, error) {
	return s.cache.Tokens(item, col)
}

// ColumnWidthHint returns the display width for col
func (s *Session) ColumnWidthHint(col domain.Column) (int, error) {
	return s.cache.ColumnWidthHint(col)
}

// NotifyThemeChanged invalidates every cached rendering
func (s *Session) NotifyThemeChanged() {
	s.cache.InvalidateAll()
}

func (s *Session) publish(e domain.DomainEvent) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

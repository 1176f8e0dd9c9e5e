package progress

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultMinimalDuration keeps the bar hidden for searches faster than this
	DefaultMinimalDuration = 300 * time.Millisecond
	// DefaultRepaintInterval limits how often a visible bar is repainted
	DefaultRepaintInterval = 250 * time.Millisecond
)

// Options configures a Reporter
type Options struct {
	MinimalDuration time.Duration
	RepaintInterval time.Duration
	Clock           func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MinimalDuration <= 0 {
		o.MinimalDuration = DefaultMinimalDuration
	}
	if o.RepaintInterval <= 0 {
		o.RepaintInterval = DefaultRepaintInterval
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Snapshot is a consistent view of a reporter for display
type Snapshot struct {
	Current     uint64
	Total       uint64
	Fraction    float64
	Determinate bool
	Visible     bool
	Running     bool
	Cancelled   bool
}

// Reporter tracks producer progress, decides when the consumer should repaint
// and carries the cancellation flag back to the producer. Update and Cancelled
// are called from producer goroutines; everything else from the consumer.
type Reporter struct {
	opts Options

	current   atomic.Uint64
	total     atomic.Uint64
	running   atomic.Bool
	cancelled atomic.Bool

	mu          sync.Mutex
	first       time.Time
	lastRepaint time.Time
	visible     bool
}

// NewReporter creates an idle reporter
func NewReporter(opts Options) *Reporter {
	return &Reporter{opts: opts.withDefaults()}
}

// Init starts a new search: counters and timestamps are cleared and the
// reporter is running
func (r *Reporter) Init() {
	r.Reset()
	r.running.Store(true)
}

// Reset clears all state and leaves the reporter idle
func (r *Reporter) Reset() {
	r.mu.Lock()
	r.first = time.Time{}
	r.lastRepaint = time.Time{}
	r.visible = false
	r.mu.Unlock()

	r.current.Store(0)
	r.total.Store(0)
	r.running.Store(false)
	r.cancelled.Store(false)
}

// Update records progress and reports whether the consumer should repaint.
// Nothing is shown before MinimalDuration has passed since the first update.
// The update that first crosses that threshold and the completing update
// always repaint; others are limited to one per RepaintInterval.
func (r *Reporter) Update(current, total uint64) bool {
	r.current.Store(current)
	r.total.Store(total)
	done := total > 0 && current >= total

	now := r.opts.Clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.first.IsZero() {
		r.first = now
		if !done {
			r.running.Store(true)
		}
	}
	if done {
		r.running.Store(false)
	}

	if now.Sub(r.first) < r.opts.MinimalDuration {
		return false
	}
	if !r.visible {
		r.visible = true
		r.lastRepaint = now
		return true
	}
	if done || now.Sub(r.lastRepaint) >= r.opts.RepaintInterval {
		r.lastRepaint = now
		return true
	}
	return false
}

// Finish marks the search as no longer running, whether it completed or was cancelled
func (r *Reporter) Finish() {
	r.running.Store(false)
}

// Cancel asks the producer to stop. It does not interrupt in-flight work.
func (r *Reporter) Cancel() {
	r.cancelled.Store(true)
}

// Cancelled is polled by the producer
func (r *Reporter) Cancelled() bool {
	return r.cancelled.Load()
}

// Running reports whether a search is in progress
func (r *Reporter) Running() bool {
	return r.running.Load()
}

// Fraction returns current/total. It is indeterminate when total is 0.
func (r *Reporter) Fraction() (float64, bool) {
	return fraction(r.current.Load(), r.total.Load())
}

// Snapshot returns the current state
func (r *Reporter) Snapshot() Snapshot {
	cur, total := r.current.Load(), r.total.Load()
	f, determinate := fraction(cur, total)

	r.mu.Lock()
	visible := r.visible
	r.mu.Unlock()

	return Snapshot{
		Current:     cur,
		Total:       total,
		Fraction:    f,
		Determinate: determinate,
		Visible:     visible,
		Running:     r.running.Load(),
		Cancelled:   r.cancelled.Load(),
	}
}

func fraction(cur, total uint64) (float64, bool) {
	if total == 0 {
		return 0, false
	}
	f := float64(cur) / float64(total)
	if f > 1 {
		f = 1
	}
	return f, true
}

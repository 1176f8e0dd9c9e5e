package results

import (
	"context"
	"sync"
	"time"
)

// DefaultMergeInterval is the reference merge period
const DefaultMergeInterval = 250 * time.Millisecond

// TickFunc runs one merge tick and reports whether ticking should continue
type TickFunc func() bool

// Scheduler fires a TickFunc at a fixed period from its own goroutine until
// the func returns false, the context ends or Stop is called. The goroutine is
// the consumer context for whoever owns the TickFunc.
type Scheduler struct {
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler. Non-positive intervals use DefaultMergeInterval.
func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultMergeInterval
	}
	return &Scheduler{interval: interval}
}

// Interval returns the tick period
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Start runs fn periodically in the background, stopping any previous run first
func (s *Scheduler) Start(ctx context.Context, fn TickFunc) {
	s.Stop()

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(ctx, fn)
	}()
}

// Run ticks on the calling goroutine and blocks until ticking ends
func (s *Scheduler) Run(ctx context.Context, fn TickFunc) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !fn() {
				return
			}
		}
	}
}

// Stop ends a background run and waits for its goroutine
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// Wait blocks until the background run ends by itself
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

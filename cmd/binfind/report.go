package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"binfind/internal/domain"
	"binfind/internal/eventbus"
	"binfind/internal/results"
	"binfind/internal/session"
)

// runReport runs one search headless and prints every row as a merge tick
// appends it, in accept order
func runReport(ctx context.Context, s *session.Session, bus eventbus.EventBus, params domain.SearchParameters,
	interval time.Duration, w io.Writer) error {
	completed := make(chan domain.SearchCompletedEvent, 1)
	unsubDone := bus.Subscribe(eventbus.EventSearchCompleted, func(e eventbus.DomainEvent) {
		if event, ok := e.(domain.SearchCompletedEvent); ok {
			select {
			case completed <- event:
			default:
			}
		}
	})
	defer unsubDone()

	var writeErr error
	unsubRows := s.Subscribe(func(c results.Change) {
		if c.Kind != results.ChangeInsert || writeErr != nil {
			return
		}
		for row := c.From; row < c.To; row++ {
			if err := writeRow(w, s, row); err != nil {
				writeErr = err
				return
			}
		}
	})
	defer unsubRows()

	gen, err := s.StartNewSearch(ctx, params)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# %s in %s\n", s.HeaderText(), params.Path); err != nil {
		return err
	}

	// The scheduler goroutine is the consumer from here on
	results.NewScheduler(interval).Run(ctx, func() bool {
		running := s.IsRunning()
		_, merged := s.Tick(gen)
		return writeErr == nil && (running || merged)
	})
	if writeErr != nil {
		return writeErr
	}

	for {
		select {
		case e := <-completed:
			if e.Generation != gen {
				continue
			}
			if e.Err != nil {
				return e.Err
			}
			status := "finished"
			if e.Cancelled {
				status = "cancelled"
			}
			_, err := fmt.Fprintf(w, "# %d results, search %s in %s\n", s.ResultCount(), status, e.Duration.Round(time.Millisecond))
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func writeRow(w io.Writer, s *session.Session, row int) error {
	cells := make([]string, 0, len(domain.Columns))
	for _, col := range domain.Columns {
		ct, err := s.Tokens(row, col)
		if err != nil {
			return err
		}
		text := ct.Flattened
		if text == "" {
			text = "-"
		}
		cells = append(cells, text)
	}
	_, err := fmt.Fprintln(w, strings.Join(cells, "\t"))
	return err
}

package scan

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"binfind/internal/domain"
	"binfind/internal/logging"
	"binfind/internal/symbols"
)

const (
	DefaultChunkSize  = 1 << 20
	DefaultMaxPayload = 64
)

// Sink receives the output of one search. Implementations must be safe for
// concurrent use by scan workers.
type Sink interface {
	Insert(m domain.Match)
	Update(current, total uint64) bool
	Cancelled() bool
}

// Engine runs a search to completion, cancellation or failure
type Engine interface {
	Search(ctx context.Context, params domain.SearchParameters, sink Sink) error
}

// SymbolsFunc loads the function resolver for a file
type SymbolsFunc func(path string) (*symbols.Resolver, error)

// Options configures a Scanner
type Options struct {
	Workers    int
	ChunkSize  int
	MaxPayload int
	Symbols    SymbolsFunc
}

// Scanner searches a memory-mapped file with a pool of workers, one chunk per task
type Scanner struct {
	opts    Options
	logger  *log.Logger
	matchLg rate.Sometimes
}

// NewScanner creates a scanner. Zero options take defaults.
func NewScanner(opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.MaxPayload <= 0 {
		opts.MaxPayload = DefaultMaxPayload
	}
	return &Scanner{
		opts:    opts,
		logger:  logging.WithPrefix("scan"),
		matchLg: rate.Sometimes{Interval: time.Second},
	}
}

// Search scans params.Path for params.Pattern and feeds matches to sink.
// It returns nil when the sink asks to stop, and the context error when ctx ends.
func (s *Scanner) Search(ctx context.Context, params domain.SearchParameters, sink Sink) error {
	if err := params.Validate(); err != nil {
		return err
	}
	matcher, err := Compile(params, s.opts.MaxPayload)
	if err != nil {
		return err
	}

	f, err := openMapped(params.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	data := f.Bytes()

	size := uint64(len(data))
	start, end := params.Start, params.End
	if end == 0 || end > size {
		end = size
	}
	if start > end {
		return fmt.Errorf("%w: start 0x%x is beyond end of file (0x%x)", domain.ErrInvalidParameters, start, size)
	}

	var resolver *symbols.Resolver
	if s.opts.Symbols != nil {
		resolver, err = s.opts.Symbols(params.Path)
		if err != nil {
			s.logger.Warn("continuing without symbols", "error", err)
		}
	}

	total := end - start
	chunk := uint64(s.opts.ChunkSize)
	overlap := uint64(matcher.MaxLen() - 1)
	align := params.Alignment
	if align == 0 {
		align = 1
	}

	s.logger.Info("search started", "path", params.Path, "search", params.String(),
		"range", fmt.Sprintf("0x%x-0x%x", start, end), "workers", s.opts.Workers)
	began := time.Now()

	var done atomic.Uint64
	var found atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for cs := start; cs < end; cs += chunk {
		if sink.Cancelled() || gctx.Err() != nil {
			break
		}
		ce := min(cs+chunk, end)
		we := min(ce+overlap, end)
		// Regex matches running into this chunk from the previous one are skipped by the matcher
		ws := cs - min(overlap, cs-start)

		g.Go(func() error {
			if sink.Cancelled() {
				return nil
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			stopped := false
			matcher.Scan(data[ws:we], int(cs-ws), int(ce-ws), func(off int, payload []byte) bool {
				if sink.Cancelled() || gctx.Err() != nil {
					stopped = true
					return false
				}
				addr := ws + uint64(off)
				if addr%align != 0 {
					return true
				}
				buf := make([]byte, len(payload))
				copy(buf, payload)
				sink.Insert(domain.Match{Address: addr, Payload: buf, Function: resolver.Resolve(addr)})
				found.Add(1)
				s.matchLg.Do(func() {
					s.logger.Debug("match", "addr", fmt.Sprintf("0x%x", addr), "found", found.Load())
				})
				return true
			})
			if stopped {
				return gctx.Err()
			}

			sink.Update(done.Add(ce-cs), total)
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	s.logger.Info("search finished", "matches", found.Load(), "scanned", done.Load(),
		"cancelled", sink.Cancelled(), "elapsed", time.Since(began), "error", err)
	return err
}

var _ Engine = (*Scanner)(nil)

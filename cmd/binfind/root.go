package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"binfind/internal/config"
	"binfind/internal/domain"
	"binfind/internal/eventbus"
	"binfind/internal/logging"
	"binfind/internal/progress"
	"binfind/internal/render"
	"binfind/internal/scan"
	"binfind/internal/session"
	"binfind/internal/symbols"
	"binfind/internal/ui"
)

type options struct {
	mode       string
	ignoreCase bool
	start      string
	end        string
	align      uint64
	workers    int
	configPath string
	report     bool
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "binfind [flags] <file> <pattern>",
		Short: "Search a binary file and browse the matches while they stream in",
		Long: `binfind searches one file for a hex, text or regular expression pattern.

Matches appear in an interactive table as the parallel scan finds them; the
table can be filtered and sorted while the search runs.

Examples:
  binfind /bin/ls 'GLIBC'                   # text search
  binfind -m hex /bin/ls '7f 45 4c 46'      # hex search
  binfind -m hex ./fw.bin 'de ad ?? ef'     # ?? matches any byte
  binfind -m regex -i ./a.out 'usage: \w+'  # regular expression
  binfind --report --start 0x1000 ./a.out main`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.mode, "mode", "m", string(domain.ModeText), "pattern syntax: hex, text or regex")
	flags.BoolVarP(&opts.ignoreCase, "ignore-case", "i", false, "case-insensitive text and regex matching")
	flags.StringVar(&opts.start, "start", "0", "first file offset to search (decimal or 0x hex)")
	flags.StringVar(&opts.end, "end", "0", "offset to stop at, 0 = end of file")
	flags.Uint64Var(&opts.align, "align", 1, "only report matches at multiples of this offset")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "parallel scan workers (default from config)")
	flags.BoolVar(&opts.report, "report", false, "print matches to stdout instead of opening the browser")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFile, "log-file", "", "log file, - for stderr")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	params, err := buildParams(opts, args)
	if err != nil {
		return err
	}

	env, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer env.close()
	bus, cfg := env.bus, env.cfg

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(session.Options{
		Engine: scan.NewScanner(scan.Options{
			Workers:    cfg.Search.Workers,
			ChunkSize:  cfg.Search.ChunkSize,
			MaxPayload: cfg.Search.MaxPayload,
			Symbols:    symbols.Open,
		}),
		Bus: bus,
		Progress: progress.Options{
			MinimalDuration: cfg.UI.MinimalDuration(),
			RepaintInterval: cfg.UI.RepaintInterval(),
		},
		Tokenizer:      render.NewTokenizer(cfg.UI.MaxDataBytes),
		ColumnMinWidth: cfg.UI.ColumnMinWidth,
	})
	defer sess.Close()

	if opts.report {
		return runReport(ctx, sess, bus, params, cfg.UI.MergeInterval(), cmd.OutOrStdout())
	}
	return runUI(ctx, sess, bus, env.cfgSvc, cfg, env.persisted, params)
}

// environment is the process-wide state a search runs in
type environment struct {
	cfgSvc    config.ConfigService
	cfg       *config.Config
	persisted *config.Config
	bus       eventbus.EventBus
}

// setup loads the config, starts logging and only then creates the bus, so
// every component logger is derived from the initialised log output
func setup(cmd *cobra.Command, opts *options) (*environment, error) {
	cfg, err := config.NewConfigServiceAt(opts.configPath, nil).Load()
	if err != nil {
		return nil, err
	}
	// Settings changed from the UI are written over what the file said, not over flag overrides
	persisted := *cfg
	applyFlags(cmd, opts, cfg)

	if err := logging.Init(cfg.Log.File, cfg.Log.Level); err != nil {
		return nil, err
	}

	bus := eventbus.New()
	return &environment{
		cfgSvc:    config.NewConfigServiceAt(opts.configPath, bus),
		cfg:       cfg,
		persisted: &persisted,
		bus:       bus,
	}, nil
}

// close stops the bus before the log file it writes to
func (e *environment) close() {
	e.bus.Close()
	logging.Close()
}

func runUI(ctx context.Context, sess *session.Session, bus eventbus.EventBus, cfgSvc config.ConfigService,
	cfg, persisted *config.Config, params domain.SearchParameters) error {
	// Save settings changed from the UI
	var saveMu sync.Mutex
	unsubSave := bus.Subscribe(eventbus.EventConfigChanged, func(e eventbus.DomainEvent) {
		event, ok := e.(eventbus.ConfigChangedEvent)
		if !ok {
			return
		}
		saveMu.Lock()
		defer saveMu.Unlock()
		if err := persisted.Set(event.Key, event.Value); err != nil {
			logging.Warn("ignoring config change", "key", event.Key, "error", err)
			return
		}
		if err := cfgSvc.Save(persisted); err != nil {
			logging.Error("failed to save config", "path", cfgSvc.Path(), "error", err)
		}
	})
	defer unsubSave()

	// Create event channel for UI
	eventChan := make(chan eventbus.DomainEvent, 100)

	// Forward events to the event channel
	forwardEvent := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			logging.Warn("event channel full, dropping event", "type", e.Type())
		}
	}
	var unsubs []func()
	for _, t := range []eventbus.EventType{
		eventbus.EventSearchCompleted,
		eventbus.EventError,
		eventbus.EventConfigSaved,
	} {
		unsubs = append(unsubs, bus.Subscribe(t, forwardEvent))
	}

	model := ui.NewModel(ui.Options{
		Context: ctx,
		Session: sess,
		Bus:     bus,
		Config:  cfg,
		Search:  &params,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	// Start forwarding events to UI in background
	forwarding := make(chan struct{})
	go func() {
		defer close(forwarding)
		for event := range eventChan {
			p.Send(ui.EventMsg{Event: event})
		}
	}()

	logging.Info("starting UI", "search", params.String(), "path", params.Path)
	_, err := p.Run()

	// Stop producers first, then the handlers that could still forward, then the channel
	sess.Close()
	for _, unsub := range unsubs {
		unsub()
	}
	bus.Close()
	close(eventChan)
	<-forwarding

	if errors.Is(err, tea.ErrProgramKilled) {
		logging.Info("UI stopped by signal")
		return nil
	}
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	logging.Info("UI exited normally")
	return nil
}

func buildParams(opts *options, args []string) (domain.SearchParameters, error) {
	start, err := parseOffset("start", opts.start)
	if err != nil {
		return domain.SearchParameters{}, err
	}
	end, err := parseOffset("end", opts.end)
	if err != nil {
		return domain.SearchParameters{}, err
	}
	params := domain.SearchParameters{
		Path:       args[0],
		Pattern:    args[1],
		Mode:       domain.SearchMode(opts.mode),
		IgnoreCase: opts.ignoreCase,
		Start:      start,
		End:        end,
		Alignment:  opts.align,
	}
	if err := params.Validate(); err != nil {
		return domain.SearchParameters{}, err
	}
	return params, nil
}

func parseOffset(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: --%s %q is not an offset", domain.ErrInvalidParameters, name, s)
	}
	return v, nil
}

// applyFlags lets flags given on the command line override the config file
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("workers") && opts.workers > 0 {
		cfg.Search.Workers = opts.workers
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = opts.logFile
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"codan/internal/ast"
	"codan/internal/astio"
	"codan/internal/cache"
	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/engine"
	"codan/internal/observ"
	"codan/internal/trace"
	"codan/internal/ui"
	"codan/internal/version"
)

// unitOutcome is what one input file produced.
type unitOutcome struct {
	path   string
	unit   *ast.Unit
	result *engine.Result
	cached bool
	err    error
}

type progressSink func(ui.Event)

// analyze runs every file; failures of single units are recorded in their
// outcome and do not stop the others.
func analyze(ctx context.Context, files []string, reg *checker.Registry, cfg *config.Config, opts checkOptions) ([]unitOutcome, error) {
	var store *cache.Cache
	if opts.useCache {
		var err error
		if opts.cacheDir != "" {
			store, err = cache.Open(opts.cacheDir)
		} else {
			store, err = cache.OpenDefault("codan")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
	}

	if len(files) > 1 && opts.progress != uiModeOff && (opts.progress == uiModeOn || isTerminal(os.Stderr)) && !opts.quiet {
		return analyzeWithUI(ctx, files, reg, cfg, opts, store)
	}
	return analyzeAll(ctx, files, reg, cfg, opts, store, nil), nil
}

func analyzeAll(ctx context.Context, files []string, reg *checker.Registry, cfg *config.Config, opts checkOptions, store *cache.Cache, sink progressSink) []unitOutcome {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "check", trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})
	defer span.End(strconv.Itoa(len(files)) + " units")

	jobs := opts.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	// несколько юнитов параллелим по юнитам, один юнит - по чекерам
	unitJobs, checkerJobs := jobs, 1
	if len(files) == 1 {
		unitJobs, checkerJobs = 1, jobs
	}

	outcomes := make([]unitOutcome, len(files))
	var g errgroup.Group
	g.SetLimit(unitJobs)
	for i, path := range files {
		if sink != nil {
			sink(ui.Event{File: path, Status: ui.StatusQueued})
		}
		g.Go(func() error {
			outcomes[i] = analyzeUnit(ctx, path, reg, cfg, engine.Options{Jobs: checkerJobs, MaxProblems: opts.maxProblems}, store, sink)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func analyzeUnit(ctx context.Context, path string, reg *checker.Registry, cfg *config.Config, eopts engine.Options, store *cache.Cache, sink progressSink) unitOutcome {
	emit := func(stage ui.Stage, status ui.Status, problems int) {
		if sink != nil {
			sink(ui.Event{File: path, Stage: stage, Status: status, Problems: problems})
		}
	}
	out := unitOutcome{path: path}

	emit(ui.StageLoad, ui.StatusWorking, 0)
	unit, err := astio.ReadFile(path)
	if err != nil {
		out.err = err
		emit(ui.StageLoad, ui.StatusError, 0)
		return out
	}
	out.unit = unit

	var key cache.Digest
	if store != nil {
		key, err = cacheKey(unit, cfg, eopts)
		if err != nil {
			trace.Error(trace.FromContext(ctx), trace.ScopeRun, "cache:"+path, err.Error())
			store = nil
		}
	}
	if store != nil {
		var entry cache.Entry
		hit, err := store.Get(key, &entry)
		if err != nil {
			trace.Error(trace.FromContext(ctx), trace.ScopeRun, "cache:"+path, err.Error())
		}
		if hit {
			out.cached = true
			out.result = &engine.Result{Problems: entry.Problems, Suppressed: entry.Suppressed, Timings: observ.NewTimer()}
			emit(ui.StageReport, ui.StatusCached, len(entry.Problems))
			return out
		}
	}

	emit(ui.StageAnalyze, ui.StatusWorking, 0)
	res, err := engine.Run(ctx, unit, reg, cfg, eopts)
	if err != nil {
		out.err = err
		emit(ui.StageAnalyze, ui.StatusError, 0)
		return out
	}
	out.result = res

	if store != nil && !res.Canceled && len(res.Failures) == 0 {
		entry := cache.Entry{Path: path, Problems: res.Problems, Suppressed: res.Suppressed}
		if err := store.Put(key, &entry); err != nil {
			trace.Error(trace.FromContext(ctx), trace.ScopeRun, "cache:"+path, err.Error())
		}
	}
	if len(res.Failures) > 0 {
		emit(ui.StageReport, ui.StatusError, len(res.Problems))
	} else {
		emit(ui.StageReport, ui.StatusDone, len(res.Problems))
	}
	return out
}

// cacheKey covers the unit, the effective rule configuration, the problem
// cap and the tool version.
func cacheKey(unit *ast.Unit, cfg *config.Config, eopts engine.Options) (cache.Digest, error) {
	h, err := astio.Hash(unit)
	if err != nil {
		return cache.Digest{}, err
	}
	fp := cfg.Fingerprint() + "max-problems " + strconv.Itoa(eopts.MaxProblems) + "\n"
	return cache.Key(h, fp, version.Version), nil
}

func analyzeWithUI(ctx context.Context, files []string, reg *checker.Registry, cfg *config.Config, opts checkOptions, store *cache.Cache) ([]unitOutcome, error) {
	events := make(chan ui.Event, 256)
	done := make(chan []unitOutcome, 1)

	go func() {
		sink := func(ev ui.Event) { events <- ev }
		sink(ui.Event{Stage: ui.StageAnalyze, Status: ui.StatusWorking})
		outcomes := analyzeAll(ctx, files, reg, cfg, opts, store, sink)
		done <- outcomes
		close(events)
	}()

	title := fmt.Sprintf("checking %d units", len(files))
	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	_, uiErr := program.Run()
	if uiErr != nil {
		// дочитываем события, чтобы анализ не заблокировался
		go func() {
			for range events {
			}
		}()
	}
	outcomes := <-done
	if uiErr != nil {
		return outcomes, fmt.Errorf("progress view: %w", uiErr)
	}
	return outcomes, nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"

	"golang.org/x/sync/errgroup"

	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/observ"
	"codan/internal/source"
	"codan/internal/suppress"
	"codan/internal/symbols"
	"codan/internal/trace"
)

var (
	ErrNoUnit       = errors.New("engine: no translation unit")
	ErrNoRegistry   = errors.New("engine: no checker registry")
	ErrNoConfig     = errors.New("engine: no configuration")
	ErrCheckerPanic = errors.New("checker panicked")
)

// Options tune one run.
type Options struct {
	// Jobs limits the number of checkers running at once; <= 0 means GOMAXPROCS.
	// Jobs == 1 runs checkers sequentially in registry order.
	Jobs int
	// MaxProblems caps the reported problems; <= 0 means no limit.
	MaxProblems int
	Symbols     symbols.Options
}

// Failure records a checker that crashed. Its candidates are discarded.
type Failure struct {
	Checker string
	Err     error
	Stack   string
}

func (f Failure) Error() string {
	return f.Checker + ": " + f.Err.Error()
}

// Result of one run over a translation unit.
type Result struct {
	Problems   []diag.Problem
	Failures   []Failure
	Timings    *observ.Timer
	Canceled   bool
	Suppressed int
	Dropped    int
}

// HasErrors reports a problem of error severity.
func (r *Result) HasErrors() bool {
	for i := range r.Problems {
		if r.Problems[i].Severity >= diag.SevError {
			return true
		}
	}
	return false
}

type checkerRun struct {
	name       string
	candidates []checker.Candidate
	canceled   bool
	failure    *Failure
}

// Run analyzes unit with every checker of reg that has an enabled rule in
// cfg. The unit, the scope table and cfg are shared read-only by all
// checkers. Cancellation is observed at function boundaries; problems found
// before it are still returned.
func Run(ctx context.Context, unit *ast.Unit, reg *checker.Registry, cfg *config.Config, opts Options) (*Result, error) {
	switch {
	case unit == nil || unit.AST == nil || unit.Main() == nil:
		return nil, ErrNoUnit
	case reg == nil:
		return nil, ErrNoRegistry
	case cfg == nil:
		return nil, ErrNoConfig
	}
	if ctx == nil {
		ctx = context.Background()
	}
	tracer := trace.FromContext(ctx)
	main := unit.Main()
	span := trace.Begin(tracer, trace.ScopeUnit, "unit:"+main.Path, trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	res := &Result{Timings: observ.NewTimer()}
	if ctx.Err() != nil {
		res.Canceled = true
		span.End("canceled")
		return res, nil
	}

	phase := res.Timings.Begin("scopes")
	table := symbols.Build(unit.AST, unit.File, opts.Symbols)
	res.Timings.End(phase, "")

	active := reg.Active(cfg)
	runs := make([]checkerRun, len(active))
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(max(1, min(jobs, len(active))))
	for i, c := range active {
		g.Go(func() error {
			runs[i] = runChecker(ctx, unit, table, cfg, c, res.Timings)
			return nil
		})
	}
	_ = g.Wait()

	phase = res.Timings.Begin("filter")
	bag := diag.NewBag(opts.MaxProblems)
	f := newFilter(unit, reg, cfg, bag)
	for i := range runs {
		r := &runs[i]
		if r.canceled {
			res.Canceled = true
		}
		if r.failure != nil {
			res.Failures = append(res.Failures, *r.failure)
			continue
		}
		for _, c := range r.candidates {
			f.apply(c)
		}
	}
	res.Suppressed = f.suppressed
	res.Problems = bag.Problems()
	res.Dropped = bag.Dropped()
	res.Timings.End(phase, strconv.Itoa(len(res.Problems))+" problems")
	if ctx.Err() != nil {
		res.Canceled = true
	}

	span.WithExtra("problems", strconv.Itoa(len(res.Problems))).
		WithExtra("failures", strconv.Itoa(len(res.Failures)))
	if res.Canceled {
		span.End("canceled")
	} else {
		span.End("")
	}
	return res, nil
}

// runChecker isolates one checker: a panic discards its candidates.
func runChecker(ctx context.Context, unit *ast.Unit, table *symbols.Table, cfg *config.Config, c checker.Checker, timer *observ.Timer) (out checkerRun) {
	out.name = c.Name()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeChecker, "checker:"+out.name, trace.CurrentSpan(ctx).SpanID)
	phase := timer.Begin("checker:" + out.name)
	defer func() {
		if r := recover(); r != nil {
			out.candidates = nil
			out.failure = &Failure{
				Checker: out.name,
				Err:     fmt.Errorf("%w: %v", ErrCheckerPanic, r),
				Stack:   string(debug.Stack()),
			}
			trace.Error(trace.FromContext(ctx), trace.ScopeChecker, "checker:"+out.name, fmt.Sprint(r))
			timer.End(phase, "panic")
			span.End("panic")
		}
	}()

	p := checker.NewPass(ctx, unit, table, cfg, c)
	c.Run(p)
	out.candidates = p.Candidates()
	out.canceled = p.Canceled()
	timer.End(phase, strconv.Itoa(len(out.candidates))+" candidates")
	span.WithExtra("candidates", strconv.Itoa(len(out.candidates)))
	span.End("")
	return out
}

// filter turns checker candidates into problems and passes them to out.
type filter struct {
	unit       *ast.Unit
	reg        *checker.Registry
	cfg        *config.Config
	index      *suppress.Index
	out        diag.Reporter
	suppressed int
}

func newFilter(unit *ast.Unit, reg *checker.Registry, cfg *config.Config, out diag.Reporter) *filter {
	b := unit.AST
	main := unit.Main()
	var bodies []source.Span
	for _, m := range main.Macros {
		if exp := b.Macros.Get(m); exp != nil {
			bodies = append(bodies, exp.Body)
		}
	}
	fs := unit.Sources
	if fs == nil {
		fs = source.NewFileSet()
	}
	return &filter{
		unit:  unit,
		reg:   reg,
		cfg:   cfg,
		index: suppress.Build(fs, main.Comments, bodies),
		out:   out,
	}
}

func (f *filter) apply(c checker.Candidate) {
	if p, ok := f.problem(c); ok {
		f.out.Report(p)
	}
}

func (f *filter) problem(c checker.Candidate) (diag.Problem, bool) {
	p := c.Problem
	b := f.unit.AST
	if m := b.MacroOf(c.Node); m.IsValid() {
		if !f.cfg.ReportMacros(p.RuleID) {
			return p, false
		}
		if exp := b.Macros.Get(m); exp != nil {
			p.Span = exp.Span
		}
	}
	if f.cfg.Excluded(p.RuleID, f.pathOf(p.Span)) {
		return p, false
	}
	rule, ok := f.reg.Rule(p.RuleID)
	if !ok {
		return p, false
	}
	var stmt source.Span
	if c.Node.IsValid() {
		stmt = b.SpanOf(b.EnclosingStatement(c.Node))
		if m := b.MacroOf(c.Node); m.IsValid() {
			stmt = p.Span
		}
	}
	if f.index.IsSuppressed(&p, rule.Name, stmt) {
		f.suppressed++
		return p, false
	}
	return p, true
}

func (f *filter) pathOf(sp source.Span) string {
	if f.unit.Sources != nil {
		if file := f.unit.Sources.Get(sp.File); file != nil {
			return file.Path
		}
	}
	return f.unit.Main().Path
}

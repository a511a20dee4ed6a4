package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/checkers"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/testkit"
	"codan/internal/trace"
)

const gotoSrc = `#define JUMP goto b
void g() {
  goto a; // @suppress("Goto statement used")
  goto b;
  JUMP;
a: ;
b: ;
}`

func gotoFixture() *testkit.Fixture { return gotoFixtureOf(gotoSrc) }

// gotoFixtureOf builds the goto unit over a variant of gotoSrc with the
// same statements.
func gotoFixtureOf(src string) *testkit.Fixture {
	f := testkit.New("g.cpp", src)
	fnSpan := f.At(src[strings.Index(src, "void"):])
	jump := f.Goto(f.At("JUMP;"), "b")
	labelA := f.At("a: ;")
	labelB := f.At("b: ;")
	f.Func("g", fnSpan, f.TVoid(), 0, nil, f.Block(f.At(src[strings.Index(src, "{"):]),
		f.Goto(f.At("goto a;"), "a"),
		f.Goto(f.At("goto b;"), "b"),
		jump,
		f.Label(labelA, "a", f.Null(f.In(labelA, ";"))),
		f.Label(labelB, "b", f.Null(f.In(labelB, ";"))),
	))
	f.Macro("JUMP", f.In(f.At("JUMP;"), "JUMP"), f.In(f.At("#define JUMP goto b"), "goto b"), ast.StmtRef(jump))
	return f
}

// boom reports a problem and then crashes.
type boom struct{}

func (boom) Name() string { return "Boom" }

func (boom) Rules() []checker.Rule {
	return []checker.Rule{{ID: "Boom", Name: "Boom rule", Severity: diag.SevError, DefaultEnabled: true, Message: "boom"}}
}

func (boom) Run(p *checker.Pass) {
	for _, fn := range p.Functions() {
		p.Report("Boom", ast.DeclRef(fn))
	}
	panic("boom")
}

func analyze(t *testing.T, ctx context.Context, f *testkit.Fixture, opts Options, tweak func(*config.Overrides), cs ...checker.Checker) *Result {
	t.Helper()
	if len(cs) == 0 {
		cs = []checker.Checker{checkers.Goto{}}
	}
	reg, err := checker.NewRegistry(cs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	o := &config.Overrides{}
	if tweak != nil {
		tweak(o)
	}
	cfg, err := config.Build(reg.Specs(), o)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	res, err := Run(ctx, f.AnalysisUnit(), reg, cfg, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func golden(f *testkit.Fixture, res *Result) string {
	return strings.TrimSpace(diag.FormatGolden(res.Problems, f.Files, false))
}

func TestRunFiltersAndRemaps(t *testing.T) {
	tests := []struct {
		name       string
		tweak      func(*config.Overrides)
		want       string
		suppressed int
	}{
		{
			name: "defaults",
			want: "info GotoStatement g.cpp:4:3 Goto statement used\n" +
				"info GotoStatement g.cpp:5:3 Goto statement used",
			suppressed: 1,
		},
		{
			name: "macro expansions off",
			tweak: func(o *config.Overrides) {
				o.Set(checkers.RuleGoto, config.ParamMacro, false)
			},
			want:       "info GotoStatement g.cpp:4:3 Goto statement used",
			suppressed: 1,
		},
		{
			name: "excluded file",
			tweak: func(o *config.Overrides) {
				o.Set(checkers.RuleGoto, config.ParamExclude, []string{"*.cpp"})
			},
			want: "",
		},
		{
			name: "severity override",
			tweak: func(o *config.Overrides) {
				o.SetSeverity(checkers.RuleGoto, diag.SevError)
				o.Set(checkers.RuleGoto, config.ParamMacro, false)
			},
			want:       "error GotoStatement g.cpp:4:3 Goto statement used",
			suppressed: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := gotoFixture()
			res := analyze(t, context.Background(), f, Options{Jobs: 1}, tt.tweak)
			if got := golden(f, res); got != tt.want {
				t.Fatalf("problems:\n%s\nwant:\n%s", got, tt.want)
			}
			if res.Suppressed != tt.suppressed {
				t.Fatalf("suppressed = %d, want %d", res.Suppressed, tt.suppressed)
			}
			if res.Canceled || len(res.Failures) != 0 {
				t.Fatalf("unexpected canceled=%v failures=%v", res.Canceled, res.Failures)
			}
		})
	}
}

func TestRunSuppressionRoundTrip(t *testing.T) {
	comment := `// @suppress("Goto statement used")`
	tests := []struct {
		name       string
		src        string
		want       string
		suppressed int
	}{
		{
			name:       "with comment",
			src:        gotoSrc,
			want:       "info GotoStatement g.cpp:4:3 Goto statement used",
			suppressed: 1,
		},
		{
			// same offsets, comment blanked out
			name: "comment removed",
			src:  strings.Replace(gotoSrc, comment, strings.Repeat(" ", len(comment)), 1),
			want: "info GotoStatement g.cpp:3:3 Goto statement used\n" +
				"info GotoStatement g.cpp:4:3 Goto statement used",
		},
		{
			name: "other rule named",
			src:  strings.Replace(gotoSrc, "Goto statement used", "Magic numbers", 1),
			want: "info GotoStatement g.cpp:3:3 Goto statement used\n" +
				"info GotoStatement g.cpp:4:3 Goto statement used",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := gotoFixtureOf(tt.src)
			res := analyze(t, context.Background(), f, Options{Jobs: 1}, func(o *config.Overrides) {
				o.Set(checkers.RuleGoto, config.ParamMacro, false)
			})
			if got := golden(f, res); got != tt.want {
				t.Fatalf("problems:\n%s\nwant:\n%s", got, tt.want)
			}
			if res.Suppressed != tt.suppressed {
				t.Fatalf("suppressed = %d, want %d", res.Suppressed, tt.suppressed)
			}
		})
	}
}

func TestRunIsIdempotent(t *testing.T) {
	f := gotoFixture()
	all := checkers.All()
	first := golden(f, analyze(t, context.Background(), f, Options{Jobs: 1}, nil, all...))
	for _, jobs := range []int{1, 4, 0} {
		got := golden(f, analyze(t, context.Background(), f, Options{Jobs: jobs}, nil, all...))
		if got != first {
			t.Fatalf("jobs=%d:\n%s\nfirst run:\n%s", jobs, got, first)
		}
	}
	if !strings.Contains(first, "GotoStatement g.cpp:4:3") {
		t.Fatalf("expected the goto problem, got:\n%s", first)
	}
}

func TestRunIsolatesPanics(t *testing.T) {
	f := gotoFixture()
	res := analyze(t, context.Background(), f, Options{Jobs: 2}, nil, checkers.Goto{}, boom{})
	if len(res.Failures) != 1 {
		t.Fatalf("failures = %v, want one", res.Failures)
	}
	fail := res.Failures[0]
	if fail.Checker != "Boom" || !errors.Is(fail.Err, ErrCheckerPanic) || fail.Stack == "" {
		t.Fatalf("unexpected failure %+v", fail)
	}
	for _, p := range res.Problems {
		if p.RuleID == "Boom" {
			t.Fatalf("candidates of a crashed checker were kept: %v", res.Problems)
		}
	}
	if len(res.Problems) != 2 {
		t.Fatalf("problems of healthy checkers lost: %v", res.Problems)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := analyze(t, ctx, gotoFixture(), Options{}, nil)
	if !res.Canceled || len(res.Problems) != 0 {
		t.Fatalf("canceled=%v problems=%v", res.Canceled, res.Problems)
	}
}

func TestRunMaxProblems(t *testing.T) {
	res := analyze(t, context.Background(), gotoFixture(), Options{MaxProblems: 1}, nil)
	if len(res.Problems) != 1 || res.Dropped != 1 {
		t.Fatalf("problems=%d dropped=%d", len(res.Problems), res.Dropped)
	}
}

func TestRunTraces(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)
	analyze(t, ctx, gotoFixture(), Options{}, nil, checkers.Goto{}, boom{})

	var unit, goto_, failed bool
	for _, ev := range ring.Snapshot() {
		switch {
		case ev.Kind == trace.KindSpanEnd && ev.Name == "unit:g.cpp":
			unit = true
		case ev.Kind == trace.KindSpanEnd && ev.Name == "checker:Goto":
			goto_ = true
		case ev.Kind == trace.KindError && ev.Name == "checker:Boom":
			failed = true
		}
	}
	if !unit || !goto_ || !failed {
		t.Fatalf("missing trace events: unit=%v checker=%v error=%v", unit, goto_, failed)
	}
}

func TestRunRejectsMissingInputs(t *testing.T) {
	reg, _ := checker.NewRegistry(checkers.Goto{})
	cfg := config.Default(reg.Specs())
	if _, err := Run(context.Background(), nil, reg, cfg, Options{}); !errors.Is(err, ErrNoUnit) {
		t.Fatalf("nil unit: %v", err)
	}
	unit := gotoFixture().AnalysisUnit()
	if _, err := Run(context.Background(), unit, nil, cfg, Options{}); !errors.Is(err, ErrNoRegistry) {
		t.Fatalf("nil registry: %v", err)
	}
	if _, err := Run(context.Background(), unit, reg, nil, Options{}); !errors.Is(err, ErrNoConfig) {
		t.Fatalf("nil config: %v", err)
	}
}

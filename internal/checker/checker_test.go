package checker

import (
	"context"
	"errors"
	"testing"

	"codan/internal/ast"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/symbols"
	"codan/internal/testkit"
)

type stubChecker struct {
	name  string
	rules []Rule
	run   func(p *Pass)
}

func (s stubChecker) Name() string  { return s.name }
func (s stubChecker) Rules() []Rule { return s.rules }
func (s stubChecker) Run(p *Pass) {
	if s.run != nil {
		s.run(p)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	a := stubChecker{name: "A", rules: []Rule{{ID: "X", Name: "x"}}}
	b := stubChecker{name: "B", rules: []Rule{{ID: "X", Name: "other"}, {ID: "Y", Name: "x"}}}
	_, err := NewRegistry(a, b)
	if !errors.Is(err, ErrDuplicateRule) {
		t.Fatalf("expected ErrDuplicateRule, got %v", err)
	}
}

func TestRuleFormat(t *testing.T) {
	r := Rule{Message: "%s hides %s"}
	if got := r.Format([]string{"x"}); got != "x hides " {
		t.Fatalf("format = %q", got)
	}
	r.Message = "plain"
	if got := r.Format([]string{"x"}); got != "plain" {
		t.Fatalf("format = %q", got)
	}
}

func TestPassReportsOnlyEnabledRules(t *testing.T) {
	f := testkit.New("a.cpp", "void f() { }")
	f.Func("f", f.At("void f() { }"), f.TVoid(), 0, nil, f.Block(f.At("{ }")))
	unit := f.AnalysisUnit()

	c := stubChecker{
		name: "Stub",
		rules: []Rule{
			{ID: "On", Name: "on", Severity: diag.SevWarning, Message: "in %s", DefaultEnabled: true},
			{ID: "Off", Name: "off", Severity: diag.SevWarning, Message: "off"},
		},
	}
	reg, err := NewRegistry(c)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	cfg := config.Default(reg.Specs())
	p := NewPass(context.Background(), unit, symbols.Build(unit.AST, unit.File, symbols.Options{}), cfg, c)

	var visited []string
	p.EachFunction(func(fn ast.DeclID, _ *ast.FunctionData) {
		visited = append(visited, unit.AST.Decls.Get(fn).Name)
		p.Report("On", ast.DeclRef(fn), "f")
		p.Report("Off", ast.DeclRef(fn))
	})
	if len(visited) != 1 || visited[0] != "f" {
		t.Fatalf("visited %v", visited)
	}
	got := p.Candidates()
	if len(got) != 1 || got[0].Problem.Message != "in f" || got[0].Problem.RuleID != "On" {
		t.Fatalf("candidates %+v", got)
	}
}

func TestEnterFunctionStopsOnCancel(t *testing.T) {
	f := testkit.New("a.cpp", "void f() { } void g() { }")
	f.Func("f", f.At("void f() { }"), f.TVoid(), 0, nil, f.Block(f.AtN("{ }", 0)))
	f.Func("g", f.At("void g() { }"), f.TVoid(), 0, nil, f.Block(f.AtN("{ }", 1)))
	unit := f.AnalysisUnit()
	c := stubChecker{name: "Stub"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPass(ctx, unit, symbols.Build(unit.AST, unit.File, symbols.Options{}), config.Default(nil), c)
	n := 0
	p.EachFunction(func(ast.DeclID, *ast.FunctionData) { n++ })
	if n != 0 || !p.Canceled() {
		t.Fatalf("visited %d functions after cancel, canceled=%v", n, p.Canceled())
	}
}

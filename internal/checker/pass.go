package checker

import (
	"context"
	"regexp"

	"codan/internal/ast"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/flow"
	"codan/internal/source"
	"codan/internal/symbols"
	"codan/internal/trace"
)

// Candidate is a problem reported by a checker together with the node it
// was reported on. Macro remapping and suppression need the node.
type Candidate struct {
	Problem diag.Problem
	Node    ast.NodeRef
}

// Pass is the state of one checker run over one translation unit.
// The AST, the scope table and the configuration are shared and read-only;
// everything else belongs to the pass.
type Pass struct {
	Ctx    context.Context
	Unit   *ast.Unit
	AST    *ast.Builder
	Table  *symbols.Table
	Flow   *flow.Cache
	Config *config.Config
	Tracer trace.Tracer

	checker    string
	rules      map[string]*Rule
	candidates []Candidate
	canceled   bool
}

// NewPass prepares a run of c. A nil ctx means context.Background.
func NewPass(ctx context.Context, unit *ast.Unit, table *symbols.Table, cfg *config.Config, c Checker) *Pass {
	if ctx == nil {
		ctx = context.Background()
	}
	p := &Pass{
		Ctx:     ctx,
		Unit:    unit,
		AST:     unit.AST,
		Table:   table,
		Flow:    flow.NewCache(unit.AST),
		Config:  cfg,
		Tracer:  trace.FromContext(ctx),
		checker: c.Name(),
		rules:   make(map[string]*Rule),
	}
	for _, r := range c.Rules() {
		p.rules[r.ID] = &r
	}
	return p
}

// Enabled reports whether a rule of this checker is switched on.
func (p *Pass) Enabled(rule string) bool {
	_, ok := p.rules[rule]
	return ok && p.Config.Enabled(rule)
}

// AnyEnabled is true when at least one of rules is enabled.
func (p *Pass) AnyEnabled(rules ...string) bool {
	for _, r := range rules {
		if p.Enabled(r) {
			return true
		}
	}
	return false
}

func (p *Pass) Bool(rule, param string) bool { return p.Config.Bool(rule, param) }
func (p *Pass) Int(rule, param string) int64 { return p.Config.Int(rule, param) }
func (p *Pass) String(rule, param string) string { return p.Config.String(rule, param) }
func (p *Pass) Strings(rule, param string) []string { return p.Config.Strings(rule, param) }
func (p *Pass) Regexp(rule, param string) *regexp.Regexp { return p.Config.Regexp(rule, param) }

// Comments of the analyzed translation unit in source order.
func (p *Pass) Comments() []source.Comment {
	if f := p.Unit.Main(); f != nil {
		return f.Comments
	}
	return nil
}

// Text returns the source text under sp.
func (p *Pass) Text(sp source.Span) string {
	return p.Unit.Text(sp)
}

// Lang of the analyzed unit.
func (p *Pass) Lang() ast.Lang {
	if f := p.Unit.Main(); f != nil {
		return f.Lang
	}
	return ast.LangCXX
}

// EnterFunction checks for cancellation; it must be called before a
// function body is analyzed. After it returns false the checker should
// return without reporting more problems.
func (p *Pass) EnterFunction(fn ast.DeclID) bool {
	if p.canceled {
		return false
	}
	if err := p.Ctx.Err(); err != nil {
		p.canceled = true
		trace.Point(p.Tracer, trace.ScopeChecker, "canceled", p.checker)
		return false
	}
	if p.Tracer.Level() >= trace.LevelDebug {
		if d := p.AST.Decls.Get(fn); d != nil {
			trace.Point(p.Tracer, trace.ScopeFunction, p.checker, d.Name)
		}
	}
	return true
}

// Canceled reports whether EnterFunction observed a done context.
func (p *Pass) Canceled() bool { return p.canceled }

// Report records a problem located at node.
func (p *Pass) Report(rule string, node ast.NodeRef, args ...string) {
	p.ReportAt(rule, p.AST.SpanOf(node), node, args...)
}

// ReportAt records a problem with an explicit location; node still decides
// the enclosing statement for suppression and the macro expansion.
func (p *Pass) ReportAt(rule string, span source.Span, node ast.NodeRef, args ...string) {
	r, ok := p.rules[rule]
	if !ok || !p.Config.Enabled(rule) {
		return
	}
	prob := diag.New(rule, p.Config.Severity(rule), span, r.Format(args), args...)
	p.candidates = append(p.candidates, Candidate{Problem: prob, Node: node})
}

// Candidates returns what the checker reported, in report order.
func (p *Pass) Candidates() []Candidate {
	return p.candidates
}

// Functions returns every function definition of the unit in source order,
// including methods, functions inside namespaces and templates, and local
// class members.
func (p *Pass) Functions() []ast.DeclID {
	var out []ast.DeclID
	p.AST.InspectFile(p.Unit.File, func(n ast.NodeRef) bool {
		id, ok := n.Decl()
		if !ok {
			return true
		}
		if fn, ok := p.AST.Decls.Function(id); ok && fn.Body.IsValid() {
			out = append(out, id)
		}
		return true
	})
	return out
}

// EachFunction calls visit for every function definition until the pass is
// canceled.
func (p *Pass) EachFunction(visit func(fn ast.DeclID, data *ast.FunctionData)) {
	for _, id := range p.Functions() {
		if !p.EnterFunction(id) {
			return
		}
		data, _ := p.AST.Decls.Function(id)
		visit(id, data)
	}
}

// Inspect walks every top-level declaration of the unit, stopping early on
// cancellation at function boundaries.
func (p *Pass) Inspect(visit func(ast.NodeRef) bool) {
	p.AST.InspectFile(p.Unit.File, func(n ast.NodeRef) bool {
		if p.canceled {
			return false
		}
		if id, ok := n.Decl(); ok {
			if fn, ok := p.AST.Decls.Function(id); ok && fn.Body.IsValid() && !p.EnterFunction(id) {
				return false
			}
		}
		return visit(n)
	})
}

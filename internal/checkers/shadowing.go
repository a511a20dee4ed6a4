package checkers

import (
	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/diag"
)

const (
	RuleShadowing = "SymbolShadowing"

	ParamCheckParams = "check_params"
)

// Shadowing reports local declarations that hide a name from an enclosing scope.
type Shadowing struct{}

func (Shadowing) Name() string { return "Shadowing" }

func (Shadowing) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleShadowing, Name: "Symbol shadowing", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Symbol '%s' hides a declaration in an outer scope",
		Description: "A block-scope variable or a parameter has the name of a visible outer declaration.",
		Params: []config.ParamSpec{
			checker.BoolParam(ParamCheckParams, "Check also function parameters", true),
		},
	}}
}

func (c Shadowing) Run(p *checker.Pass) {
	b := p.AST
	params := p.Bool(RuleShadowing, ParamCheckParams)
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		if params {
			for _, d := range data.Params {
				c.check(p, d)
			}
		}
		inspectOwn(b, ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
			if d, ok := n.Decl(); ok && b.Decls.Get(d).Kind == ast.DeclVariable {
				c.check(p, d)
			}
			return true
		})
	})
}

func (Shadowing) check(p *checker.Pass, d ast.DeclID) {
	b := p.AST
	decl := b.Decls.Get(d)
	if decl.Name == "" {
		return
	}
	if _, ok := b.Bindings.Resolved(decl.Binding); !ok {
		return
	}
	for _, outer := range p.Table.LookupOuter(d) {
		if outer == decl.Binding {
			continue
		}
		if _, ok := b.Bindings.Resolved(outer); ok {
			p.ReportAt(RuleShadowing, nameSpan(b, d), ast.DeclRef(d), decl.Name)
			return
		}
	}
}

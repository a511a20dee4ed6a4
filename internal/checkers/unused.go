package checkers

import (
	"slices"

	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/diag"
)

const (
	RuleUnusedStaticFunction = "UnusedStaticFunction"
	RuleUnusedVariableDecl   = "UnusedVariableDeclaration"
	RuleUnusedFunctionDecl   = "UnusedFunctionDeclaration"
)

// UnusedSymbol reports file-scope declarations nothing in the unit refers
// to: static functions, extern or static variables and prototypes of
// functions that are not defined here. Header units are skipped.
type UnusedSymbol struct{}

func (UnusedSymbol) Name() string { return "UnusedSymbol" }

func (UnusedSymbol) Rules() []checker.Rule {
	exceptions := func() []config.ParamSpec {
		return []config.ParamSpec{checker.ListParam(ParamExceptions, "Exceptions (names)")}
	}
	return []checker.Rule{
		{
			ID: RuleUnusedStaticFunction, Name: "Unused static function", Severity: diag.SevWarning, DefaultEnabled: true,
			Message:     "Unused static function '%s'",
			Description: "A function with internal linkage is never called or referenced.",
			Params:      exceptions(),
		},
		{
			ID: RuleUnusedVariableDecl, Name: "Unused variable declaration in file scope", Severity: diag.SevWarning, DefaultEnabled: true,
			Message:     "Unused variable declaration in file scope '%s'",
			Description: "An extern or static variable at file scope is never referenced.",
			Params:      exceptions(),
		},
		{
			ID: RuleUnusedFunctionDecl, Name: "Unused function declaration", Severity: diag.SevWarning, DefaultEnabled: true,
			Message:     "Unused function declaration '%s'",
			Description: "A function prototype that is neither defined nor referenced in the unit.",
			Params:      exceptions(),
		},
	}
}

func (c UnusedSymbol) Run(p *checker.Pass) {
	if f := p.Unit.Main(); f == nil || f.IsHeader() {
		return
	}
	b := p.AST
	used := make(map[ast.BindingID]bool)
	var candidates []ast.DeclID
	p.Inspect(func(n ast.NodeRef) bool {
		switch n.Kind {
		case ast.NodeExpr:
			if ref := b.Referenced(ast.ExprID(n.ID)); ref.IsValid() {
				used[ref] = true
			}
		case ast.NodeDecl:
			d, _ := n.Decl()
			if b.EnclosingFunction(b.ParentOf(n)).IsValid() {
				return true
			}
			switch b.Decls.Get(d).Kind {
			case ast.DeclFunction, ast.DeclVariable:
				candidates = append(candidates, d)
			}
		}
		return true
	})

	reported := make(map[ast.BindingID]bool)
	for _, d := range candidates {
		decl := b.Decls.Get(d)
		bn, ok := b.Bindings.Resolved(decl.Binding)
		if !ok || used[decl.Binding] || reported[decl.Binding] || c.markedUsed(decl, bn) {
			continue
		}
		rule := c.rule(b, d, bn)
		if rule == "" || slices.Contains(p.Strings(rule, ParamExceptions), decl.Name) {
			continue
		}
		reported[decl.Binding] = true
		p.ReportAt(rule, nameSpan(b, d), ast.DeclRef(d), decl.Name)
	}
}

func (UnusedSymbol) markedUsed(decl *ast.Decl, bn *ast.Binding) bool {
	return bn.Has(ast.FlagMaybeUnused) || decl.HasAttr("maybe_unused") || decl.HasAttr("unused") || decl.Name == "main"
}

func (UnusedSymbol) rule(b *ast.Builder, d ast.DeclID, bn *ast.Binding) string {
	if fn, ok := b.Decls.Function(d); ok {
		if fn.Owner.IsValid() || fn.Special != ast.FnOrdinary && fn.Special != ast.FnOperator {
			return ""
		}
		switch {
		case fn.Has(ast.FnStatic) || bn.Has(ast.FlagStatic):
			return RuleUnusedStaticFunction
		case !fn.Body.IsValid() && !bn.Def.IsValid():
			return RuleUnusedFunctionDecl
		}
		return ""
	}
	if b.Decls.Get(d).Kind != ast.DeclVariable {
		return ""
	}
	v, _ := b.Decls.Var(d)
	if v.Storage == ast.StorageExtern || v.Storage == ast.StorageStatic || bn.Has(ast.FlagExtern|ast.FlagStatic) {
		return RuleUnusedVariableDecl
	}
	return ""
}

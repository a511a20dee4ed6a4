package checkers

import (
	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/diag"
)

const RuleAbstractClassCreation = "AbstractClassCreation"

// AbstractInstantiation reports objects of classes that still have pure
// virtual methods: variables, fields, new-expressions and explicit
// constructor calls. Pointers and references are fine.
type AbstractInstantiation struct{}

func (AbstractInstantiation) Name() string { return "AbstractInstantiation" }

func (AbstractInstantiation) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleAbstractClassCreation, Name: "Abstract class cannot be instantiated", Severity: diag.SevError, DefaultEnabled: true,
		Message:     "The type '%s' must implement the inherited pure virtual method '%s'",
		Description: "One problem per unimplemented pure virtual method at every instantiation site.",
	}}
}

func (c AbstractInstantiation) Run(p *checker.Pass) {
	b := p.AST
	memo := make(map[ast.BindingID][]ast.DeclID)
	p.Inspect(func(n ast.NodeRef) bool {
		switch n.Kind {
		case ast.NodeDecl:
			id, _ := n.Decl()
			d := b.Decls.Get(id)
			if d.Kind != ast.DeclVariable && d.Kind != ast.DeclField {
				return true
			}
			v, _ := b.Decls.Var(id)
			if v.Storage == ast.StorageExtern || (d.Kind == ast.DeclField && v.Storage == ast.StorageStatic) {
				return true // declaration only
			}
			if cls, ok := b.ClassOf(v.Type, true); ok {
				c.report(p, memo, cls, n)
			}
		case ast.NodeExpr:
			id, _ := n.Expr()
			switch b.Exprs.Get(id).Kind {
			case ast.ExprNew:
				nw, _ := b.Exprs.New(id)
				if cls, ok := b.ClassOf(nw.Type, true); ok {
					c.report(p, memo, cls, n)
				}
			case ast.ExprCall:
				call, _ := b.Exprs.Call(id)
				if bn, ok := b.Bindings.Resolved(b.Referenced(call.Callee)); ok && bn.Kind == ast.BindClass {
					c.report(p, memo, b.Referenced(call.Callee), n)
				}
			case ast.ExprCast:
				cast, _ := b.Exprs.Cast(id)
				if cast.Kind != ast.CastFunctional {
					return true
				}
				if cls, ok := b.ClassOf(cast.Type, false); ok {
					c.report(p, memo, cls, n)
				}
			}
		}
		return true
	})
}

func (AbstractInstantiation) report(p *checker.Pass, memo map[ast.BindingID][]ast.DeclID, cls ast.BindingID, at ast.NodeRef) {
	pure, seen := memo[cls]
	if !seen {
		if id, ok := p.Table.Classes.Lookup(cls); ok {
			methods, complete := p.Table.Classes.PureVirtuals(id)
			if complete {
				pure = methods
			}
		}
		memo[cls] = pure
	}
	name := qualifiedName(p.AST, cls)
	for _, m := range pure {
		p.Report(RuleAbstractClassCreation, at, name, p.AST.Signature(m))
	}
}

package checkers

import (
	"strings"

	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/source"
)

// inspectOwn walks root without entering lambdas and local class or
// function definitions: their bodies belong to another function.
func inspectOwn(b *ast.Builder, root ast.NodeRef, visit func(ast.NodeRef) bool) {
	b.Inspect(root, func(n ast.NodeRef) bool {
		if n != root {
			if e, ok := n.Expr(); ok && b.Exprs.Get(e).Kind == ast.ExprLambda {
				return false
			}
			if d, ok := n.Decl(); ok {
				switch b.Decls.Get(d).Kind {
				case ast.DeclClass, ast.DeclFunction:
					return false
				}
			}
		}
		return visit(n)
	})
}

// eachExpr visits every expression below root.
func eachExpr(b *ast.Builder, root ast.NodeRef, visit func(ast.ExprID, *ast.Expr)) {
	b.Inspect(root, func(n ast.NodeRef) bool {
		if e, ok := n.Expr(); ok {
			visit(e, b.Exprs.Get(e))
		}
		return true
	})
}

// exprText is the source text of an expression with whitespace runs collapsed.
func exprText(p *checker.Pass, e ast.ExprID) string {
	x := p.AST.Exprs.Get(e)
	if x == nil {
		return ""
	}
	return strings.Join(strings.Fields(p.Text(x.Span)), " ")
}

// memberOfThis returns the field or method an expression names through the
// implicit object or an explicit `this->`.
func memberOfThis(b *ast.Builder, e ast.ExprID) (ast.BindingID, bool) {
	e = b.StripParens(e)
	if id, ok := b.Exprs.Ident(e); ok {
		bn, ok := b.Bindings.Resolved(id.Binding)
		if ok && (bn.Kind == ast.BindField || bn.Kind == ast.BindMethod) {
			return id.Binding, true
		}
		return ast.NoBindingID, false
	}
	m, ok := b.Exprs.Member(e)
	if !ok || !onThis(b, m) {
		return ast.NoBindingID, false
	}
	if _, ok := b.Bindings.Resolved(m.Binding); !ok {
		return ast.NoBindingID, false
	}
	return m.Binding, true
}

func onThis(b *ast.Builder, m *ast.MemberData) bool {
	if !m.Base.IsValid() {
		return true
	}
	base := b.Exprs.Get(b.StripParens(m.Base))
	return base != nil && base.Kind == ast.ExprThis
}

// rootField returns the field of the implicit object whose storage an lvalue
// expression designates: x, this->x, x.y, x[i] for an array x. Writes through
// pointers and const_cast do not touch the object itself.
func rootField(b *ast.Builder, e ast.ExprID) (ast.BindingID, ast.ExprID, bool) {
	for range 64 {
		e = b.StripParens(e)
		x := b.Exprs.Get(e)
		if x == nil {
			return ast.NoBindingID, ast.NoExprID, false
		}
		switch x.Kind {
		case ast.ExprIdent, ast.ExprMember:
			if bn, ok := memberOfThis(b, e); ok {
				if f := b.Bindings.Get(bn); f.Kind == ast.BindField && !f.Has(ast.FlagStatic) {
					return bn, e, true
				}
				return ast.NoBindingID, ast.NoExprID, false
			}
			m, ok := b.Exprs.Member(e)
			if !ok || m.Arrow {
				return ast.NoBindingID, ast.NoExprID, false
			}
			e = m.Base
		case ast.ExprSubscript:
			s, _ := b.Exprs.Subscript(e)
			if typ := b.CanonicalType(b.Exprs.Get(s.Base).Type); typ == nil || typ.Kind != ast.TypeArray {
				return ast.NoBindingID, ast.NoExprID, false
			}
			e = s.Base
		case ast.ExprCast:
			c, _ := b.Exprs.Cast(e)
			if c.Kind == ast.CastConst {
				return ast.NoBindingID, ast.NoExprID, false
			}
			e = c.Operand
		default:
			return ast.NoBindingID, ast.NoExprID, false
		}
	}
	return ast.NoBindingID, ast.NoExprID, false
}

// writeTargets calls visit for the operand every assignment, increment,
// decrement or address-of under root modifies.
func writeTargets(b *ast.Builder, root ast.NodeRef, visit func(target, site ast.ExprID)) {
	inspectOwn(b, root, func(n ast.NodeRef) bool {
		e, ok := n.Expr()
		if !ok {
			return true
		}
		switch x := b.Exprs.Get(e); x.Kind {
		case ast.ExprBinary:
			bin, _ := b.Exprs.Binary(e)
			if bin.Op.IsAssign() {
				visit(bin.Left, e)
			}
		case ast.ExprUnary:
			u, _ := b.Exprs.Unary(e)
			if u.Op.IsIncDec() || u.Op == ast.UnaryAddrOf {
				visit(u.Operand, e)
			}
		}
		return true
	})
}

func nameSpan(b *ast.Builder, d ast.DeclID) source.Span {
	decl := b.Decls.Get(d)
	if decl.NameSpan != (source.Span{}) {
		return decl.NameSpan
	}
	return decl.Span
}

func qualifiedName(b *ast.Builder, id ast.BindingID) string {
	bn := b.Bindings.Get(id)
	if bn == nil {
		return ""
	}
	if bn.Qualified != "" {
		return bn.Qualified
	}
	return bn.Name
}

// isLocal reports block-scope variables and parameters of fn with automatic
// storage.
func isLocal(b *ast.Builder, id ast.BindingID, fn ast.DeclID) bool {
	bn, ok := b.Bindings.Resolved(id)
	if !ok || (bn.Kind != ast.BindVariable && bn.Kind != ast.BindParameter) {
		return false
	}
	if bn.Has(ast.FlagStatic) || bn.Has(ast.FlagExtern) {
		return false
	}
	v, ok := b.Decls.Var(bn.Decl)
	if !ok {
		return false
	}
	switch v.Storage {
	case ast.StorageStatic, ast.StorageExtern, ast.StorageThreadLocal:
		return false
	}
	return b.EnclosingFunction(ast.DeclRef(bn.Decl)) == fn
}

// inHeader reports whether span lies in a header file.
func inHeader(p *checker.Pass, sp source.Span) bool {
	if p.Unit.Sources != nil {
		if f := p.Unit.Sources.Get(sp.File); f != nil {
			return f.IsHeader()
		}
	}
	if f := p.Unit.Main(); f != nil {
		return f.IsHeader()
	}
	return false
}

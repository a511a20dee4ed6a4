package checkers

import (
	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/diag"
)

const (
	RuleNoReturn          = "NoReturn"
	RuleNoReturnValue     = "NoReturnValue"
	RuleReturnValueInVoid = "ReturnValueInVoid"
	RuleLocalVarReturn    = "LocalVarReturn"
)

// Return checks return statements against the declared return type.
type Return struct{}

func (Return) Name() string { return "Return" }

func (Return) Rules() []checker.Rule {
	return []checker.Rule{
		{
			ID: RuleNoReturn, Name: "No return", Severity: diag.SevWarning, DefaultEnabled: true,
			Message:     "No return, in function returning non-void",
			Description: "Control can reach the end of a function that has to return a value.",
		},
		{
			ID: RuleNoReturnValue, Name: "No return value", Severity: diag.SevError, DefaultEnabled: true,
			Message:     "No return value, in function returning non-void",
			Description: "A bare return statement in a function that has to return a value.",
		},
		{
			ID: RuleReturnValueInVoid, Name: "Return value in void function", Severity: diag.SevError, DefaultEnabled: true,
			Message:     "Return has value, in function returning void",
			Description: "A return statement with a value in a void function, constructor or destructor.",
		},
		{
			ID: RuleLocalVarReturn, Name: "Returning the address of a local variable", Severity: diag.SevWarning, DefaultEnabled: true,
			Message:     "Returning the address of local variable '%s'",
			Description: "A pointer or reference to automatic storage outlives the function.",
		},
	}
}

func (c Return) Run(p *checker.Pass) {
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		if p.Enabled(RuleNoReturn) && p.Flow.Function(fn).NeedsReturn() {
			p.ReportAt(RuleNoReturn, nameSpan(p.AST, fn), ast.DeclRef(fn))
		}
		c.returns(p, fn, data)
	})
}

type returnKind uint8

const (
	returnsValue returnKind = iota
	returnsVoid
	returnsDeduced
)

func classifyReturn(b *ast.Builder, data *ast.FunctionData) returnKind {
	switch data.Special {
	case ast.FnConstructor, ast.FnDestructor:
		return returnsVoid
	}
	if data.Has(ast.FnDeduced) {
		return returnsDeduced
	}
	typ := b.CanonicalType(data.Return)
	if typ == nil || typ.Kind == ast.TypeUnresolved || typ.Kind == ast.TypeTemplateParam {
		return returnsDeduced
	}
	if typ.Kind == ast.TypeAuto && !data.Has(ast.FnTrailingReturn) {
		return returnsDeduced
	}
	if b.IsVoid(data.Return) {
		return returnsVoid
	}
	return returnsValue
}

func (Return) returns(p *checker.Pass, fn ast.DeclID, data *ast.FunctionData) {
	b := p.AST
	kind := classifyReturn(b, data)
	if kind == returnsDeduced {
		return
	}
	indirect := kind == returnsValue && b.IsIndirect(data.Return)
	inspectOwn(b, ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
		s, ok := n.Stmt()
		if !ok || b.Stmts.Get(s).Kind != ast.StmtReturn {
			return true
		}
		ret, _ := b.Stmts.Expr(s)
		switch {
		case kind == returnsValue && !ret.Expr.IsValid():
			p.Report(RuleNoReturnValue, n)
		case kind == returnsVoid && ret.Expr.IsValid():
			// `return f();` with a void f is fine.
			if t := b.Exprs.Get(ret.Expr).Type; !t.IsValid() || !b.IsVoid(t) {
				p.Report(RuleReturnValueInVoid, n)
			}
		case indirect && ret.Expr.IsValid():
			ref := b.IsReference(data.Return)
			for _, local := range escapingLocals(b, ret.Expr, fn, ref) {
				p.Report(RuleLocalVarReturn, n, b.Bindings.Get(local).Name)
			}
		}
		return true
	})
}

// escapingLocals traces a returned expression through parentheses, casts,
// conditionals and commas to the local variables whose storage it denotes.
// ref is set for functions returning a reference: the expression itself is
// then bound to the result. Otherwise only addresses escape: &x, &x[i], &x.f
// and local arrays decaying to pointers.
func escapingLocals(b *ast.Builder, e ast.ExprID, fn ast.DeclID, ref bool) []ast.BindingID {
	var out []ast.BindingID
	var walk func(e ast.ExprID, depth int)
	walk = func(e ast.ExprID, depth int) {
		if depth > 32 {
			return
		}
		e = b.StripParens(e)
		x := b.Exprs.Get(e)
		if x == nil {
			return
		}
		switch x.Kind {
		case ast.ExprCast:
			c, _ := b.Exprs.Cast(e)
			walk(c.Operand, depth+1)
		case ast.ExprConditional:
			c, _ := b.Exprs.Conditional(e)
			walk(c.Then, depth+1)
			walk(c.Else, depth+1)
		case ast.ExprBinary:
			bin, _ := b.Exprs.Binary(e)
			if bin.Op == ast.BinComma {
				walk(bin.Right, depth+1)
			}
		case ast.ExprUnary:
			u, _ := b.Exprs.Unary(e)
			if u.Op == ast.UnaryAddrOf && !ref {
				if local, ok := storageOf(b, u.Operand, fn); ok {
					out = append(out, local)
				}
			}
		case ast.ExprIdent, ast.ExprMember, ast.ExprSubscript:
			local, ok := storageOf(b, e, fn)
			if !ok {
				return
			}
			if ref {
				out = append(out, local)
				return
			}
			// array-to-pointer decay
			if _, ok := b.Exprs.Ident(e); !ok {
				return
			}
			if typ := b.CanonicalType(b.Bindings.Get(local).Type); typ != nil && typ.Kind == ast.TypeArray {
				out = append(out, local)
			}
		}
	}
	walk(e, 0)
	return out
}

// storageOf returns the local variable an lvalue lives in: x, x[i] for a
// local array x, x.f for a local object x. References are not storage.
func storageOf(b *ast.Builder, e ast.ExprID, fn ast.DeclID) (ast.BindingID, bool) {
	for range 32 {
		e = b.StripParens(e)
		switch x := b.Exprs.Get(e); {
		case x == nil:
			return ast.NoBindingID, false
		case x.Kind == ast.ExprIdent:
			id, _ := b.Exprs.Ident(e)
			if !isLocal(b, id.Binding, fn) || b.IsReference(b.Bindings.Get(id.Binding).Type) {
				return ast.NoBindingID, false
			}
			return id.Binding, true
		case x.Kind == ast.ExprSubscript:
			s, _ := b.Exprs.Subscript(e)
			if typ := b.CanonicalType(b.Exprs.Get(s.Base).Type); typ == nil || typ.Kind != ast.TypeArray {
				return ast.NoBindingID, false
			}
			e = s.Base
		case x.Kind == ast.ExprMember:
			m, _ := b.Exprs.Member(e)
			if m.Arrow || !m.Base.IsValid() {
				return ast.NoBindingID, false
			}
			e = m.Base
		default:
			return ast.NoBindingID, false
		}
	}
	return ast.NoBindingID, false
}

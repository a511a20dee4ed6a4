package testkit

import (
	"codan/internal/ast"
	"codan/internal/source"
)

func (f *Fixture) Block(span source.Span, stmts ...ast.StmtID) ast.StmtID {
	return f.B.Stmts.NewBlock(span, stmts)
}

func (f *Fixture) DeclStmt(span source.Span, decls ...ast.DeclID) ast.StmtID {
	return f.B.Stmts.NewDeclStmt(span, decls)
}

func (f *Fixture) ExprStmt(span source.Span, e ast.ExprID) ast.StmtID {
	return f.B.Stmts.NewExpr(span, e)
}

func (f *Fixture) Return(span source.Span, e ast.ExprID) ast.StmtID {
	return f.B.Stmts.NewReturn(span, e)
}

func (f *Fixture) If(span source.Span, cond ast.ExprID, then, els ast.StmtID) ast.StmtID {
	return f.B.Stmts.NewIf(span, ast.IfData{Cond: cond, Then: then, Else: els})
}

func (f *Fixture) While(span source.Span, cond ast.ExprID, body ast.StmtID) ast.StmtID {
	return f.B.Stmts.NewLoop(ast.StmtWhile, span, ast.LoopData{Cond: cond, Body: body})
}

func (f *Fixture) Do(span source.Span, body ast.StmtID, cond ast.ExprID) ast.StmtID {
	return f.B.Stmts.NewLoop(ast.StmtDo, span, ast.LoopData{Cond: cond, Body: body})
}

func (f *Fixture) For(span source.Span, init ast.StmtID, cond, iter ast.ExprID, body ast.StmtID) ast.StmtID {
	return f.B.Stmts.NewFor(span, ast.ForData{Init: init, Cond: cond, Iter: iter, Body: body})
}

func (f *Fixture) Switch(span source.Span, cond ast.ExprID, body ast.StmtID) ast.StmtID {
	return f.B.Stmts.NewSwitch(span, ast.SwitchData{Cond: cond, Body: body})
}

func (f *Fixture) Case(span source.Span, value ast.ExprID) ast.StmtID {
	return f.B.Stmts.NewCase(span, value)
}

func (f *Fixture) Default(span source.Span) ast.StmtID {
	return f.B.Stmts.NewSimple(ast.StmtDefault, span)
}

func (f *Fixture) Break(span source.Span) ast.StmtID {
	return f.B.Stmts.NewSimple(ast.StmtBreak, span)
}

func (f *Fixture) Continue(span source.Span) ast.StmtID {
	return f.B.Stmts.NewSimple(ast.StmtContinue, span)
}

func (f *Fixture) Goto(span source.Span, label string) ast.StmtID {
	return f.B.Stmts.NewGoto(span, label)
}

func (f *Fixture) Label(span source.Span, name string, body ast.StmtID) ast.StmtID {
	return f.B.Stmts.NewLabel(span, name, body)
}

// Null creates `;`, optionally with attributes (`[[fallthrough]];`).
func (f *Fixture) Null(span source.Span, attrs ...string) ast.StmtID {
	id := f.B.Stmts.NewSimple(ast.StmtNull, span)
	f.B.Stmts.Get(id).Attrs = attrs
	return id
}

func (f *Fixture) Try(span source.Span, body ast.StmtID, handlers ...ast.StmtID) ast.StmtID {
	return f.B.Stmts.NewTry(span, body, handlers)
}

func (f *Fixture) Catch(span source.Span, param ast.DeclID, body ast.StmtID) ast.StmtID {
	return f.B.Stmts.NewCatch(span, param, body)
}

// Ident references a binding; the expression type follows the binding type.
func (f *Fixture) Ident(span source.Span, b ast.BindingID) ast.ExprID {
	bn := f.B.Bindings.Get(b)
	id := f.B.Exprs.NewIdent(span, ast.IdentData{Name: bn.Name, Binding: b})
	if bn.Kind != ast.BindFunction && bn.Kind != ast.BindMethod {
		f.B.Exprs.Get(id).Type = bn.Type
	}
	return id
}

// QualifiedIdent references a binding through an explicit scope qualifier.
func (f *Fixture) QualifiedIdent(span source.Span, b ast.BindingID) ast.ExprID {
	id := f.Ident(span, b)
	data, _ := f.B.Exprs.Ident(id)
	data.Qualified = true
	return id
}

// Unresolved creates an identifier bound to a problem binding.
func (f *Fixture) Unresolved(span source.Span, kind ast.ProblemKind) ast.ExprID {
	name := f.Text(span)
	bn := f.B.Bindings.New(ast.Binding{Kind: ast.BindProblem, Name: name, Problem: kind, Span: span})
	return f.B.Exprs.NewIdent(span, ast.IdentData{Name: name, Binding: bn})
}

// Lit creates a literal whose text is the spanned source.
func (f *Fixture) Lit(span source.Span, kind ast.LitKind) ast.ExprID {
	id := f.B.Exprs.NewLiteral(span, kind, f.Text(span))
	var t ast.TypeID
	switch kind {
	case ast.LitInt:
		t = f.TInt()
	case ast.LitFloat:
		t = f.TDouble()
	case ast.LitBool:
		t = f.TBool()
	case ast.LitChar:
		t = f.TChar()
	case ast.LitString:
		t = f.TPtr(f.TConst(f.TChar()))
	case ast.LitNullptr:
		t = f.TBuiltin(ast.BuiltinNullptr)
	}
	f.B.Exprs.Get(id).Type = t
	return id
}

// Int is shorthand for an integer literal.
func (f *Fixture) Int(span source.Span) ast.ExprID { return f.Lit(span, ast.LitInt) }

func (f *Fixture) Unary(span source.Span, op ast.UnaryOp, x ast.ExprID) ast.ExprID {
	id := f.B.Exprs.NewUnary(span, op, x)
	xt := f.B.Exprs.Get(x).Type
	switch op {
	case ast.UnaryAddrOf:
		if xt.IsValid() {
			xt = f.TPtr(xt)
		}
	case ast.UnaryDeref:
		if typ := f.B.CanonicalType(xt); typ != nil && typ.Kind == ast.TypePointer {
			xt = typ.Elem
		}
	case ast.UnaryNot:
		xt = f.TBool()
	}
	f.B.Exprs.Get(id).Type = xt
	return id
}

func (f *Fixture) Paren(span source.Span, x ast.ExprID) ast.ExprID {
	return f.Unary(span, ast.UnaryParen, x)
}

func (f *Fixture) Binary(span source.Span, op ast.BinaryOp, l, r ast.ExprID) ast.ExprID {
	id := f.B.Exprs.NewBinary(span, op, l, r)
	t := f.B.Exprs.Get(l).Type
	if op.IsComparison() || op == ast.BinLogAnd || op == ast.BinLogOr {
		t = f.TBool()
	}
	if op == ast.BinComma {
		t = f.B.Exprs.Get(r).Type
	}
	f.B.Exprs.Get(id).Type = t
	return id
}

func (f *Fixture) Assign(span source.Span, l, r ast.ExprID) ast.ExprID {
	return f.Binary(span, ast.BinAssign, l, r)
}

func (f *Fixture) Cond(span source.Span, c, a, b ast.ExprID) ast.ExprID {
	id := f.B.Exprs.NewConditional(span, c, a, b)
	f.B.Exprs.Get(id).Type = f.B.Exprs.Get(a).Type
	return id
}

// Call invokes callee; the result type is the callee's return type.
func (f *Fixture) Call(span source.Span, callee ast.ExprID, args ...ast.ExprID) ast.ExprID {
	id := f.B.Exprs.NewCall(span, callee, args)
	if bn := f.B.Bindings.Get(f.B.Referenced(callee)); bn != nil {
		switch bn.Kind {
		case ast.BindFunction, ast.BindMethod:
			f.B.Exprs.Get(id).Type = bn.Type
		case ast.BindClass:
			f.B.Exprs.Get(id).Type = bn.Type
		}
	}
	return id
}

// Member accesses a member; base may be ast.NoExprID for an implicit this.
func (f *Fixture) Member(span source.Span, base ast.ExprID, member ast.BindingID, arrow bool) ast.ExprID {
	bn := f.B.Bindings.Get(member)
	id := f.B.Exprs.NewMember(span, ast.MemberData{Base: base, Name: bn.Name, Binding: member, Arrow: arrow})
	if bn.Kind == ast.BindField {
		f.B.Exprs.Get(id).Type = bn.Type
	}
	return id
}

func (f *Fixture) This(span source.Span) ast.ExprID {
	return f.B.Exprs.NewThis(span)
}

func (f *Fixture) Cast(span source.Span, kind ast.CastKind, t ast.TypeID, x ast.ExprID) ast.ExprID {
	id := f.B.Exprs.NewCast(span, kind, t, x)
	f.B.Exprs.Get(id).Type = t
	return id
}

func (f *Fixture) New(span source.Span, t ast.TypeID, args ...ast.ExprID) ast.ExprID {
	id := f.B.Exprs.NewNew(span, ast.NewData{Type: t, Args: args})
	f.B.Exprs.Get(id).Type = f.TPtr(t)
	return id
}

func (f *Fixture) Throw(span source.Span, x ast.ExprID) ast.ExprID {
	return f.B.Exprs.NewThrow(span, x)
}

func (f *Fixture) Subscript(span source.Span, base, index ast.ExprID) ast.ExprID {
	id := f.B.Exprs.NewSubscript(span, base, index)
	if typ := f.B.CanonicalType(f.B.Exprs.Get(base).Type); typ != nil && (typ.Kind == ast.TypeArray || typ.Kind == ast.TypePointer) {
		f.B.Exprs.Get(id).Type = typ.Elem
	}
	return id
}

func (f *Fixture) Lambda(span source.Span, params []ast.DeclID, body ast.StmtID) ast.ExprID {
	return f.B.Exprs.NewLambda(span, ast.LambdaData{Params: params, Body: body})
}

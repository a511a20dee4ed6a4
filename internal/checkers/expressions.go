package checkers

import (
	"slices"

	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/diag"
)

const (
	RuleAssignToItself = "AssignmentToItself"
	RuleNoEffect       = "StatementHasNoEffect"
	RuleFloatCompare   = "FloatCompare"
	RuleCStyleCast     = "CStyleCast"

	ParamExceptions = "exceptions"
)

// AssignmentToItself reports `x = x`, `a[i] = a[i]` and `this->f = f`.
type AssignmentToItself struct{}

func (AssignmentToItself) Name() string { return "AssignmentToItself" }

func (AssignmentToItself) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleAssignToItself, Name: "Assignment to itself", Severity: diag.SevError, DefaultEnabled: true,
		Message:     "Assignment to itself '%s'",
		Description: "Both sides of an assignment designate the same object.",
	}}
}

func (AssignmentToItself) Run(p *checker.Pass) {
	b := p.AST
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		eachExpr(b, ast.StmtRef(data.Body), func(e ast.ExprID, _ *ast.Expr) {
			if bin, ok := b.Exprs.Binary(e); ok && bin.Op == ast.BinAssign && sameExpr(b, bin.Left, bin.Right, 0) {
				p.Report(RuleAssignToItself, ast.ExprRef(e), exprText(p, e))
			}
		})
	})
}

// sameExpr compares two side-effect free lvalues structurally.
func sameExpr(b *ast.Builder, x, y ast.ExprID, depth int) bool {
	if depth > 32 {
		return false
	}
	x, y = b.StripParens(x), b.StripParens(y)
	ex, ey := b.Exprs.Get(x), b.Exprs.Get(y)
	if ex == nil || ey == nil {
		return false
	}
	// `f` inside a method is `this->f`
	if mx, ok := memberOfThis(b, x); ok {
		my, ok := memberOfThis(b, y)
		return ok && mx == my
	}
	if ex.Kind != ey.Kind {
		return false
	}
	switch ex.Kind {
	case ast.ExprThis:
		return true
	case ast.ExprIdent:
		ix, _ := b.Exprs.Ident(x)
		iy, _ := b.Exprs.Ident(y)
		_, ok := b.Bindings.Resolved(ix.Binding)
		return ok && ix.Binding == iy.Binding
	case ast.ExprMember:
		mx, _ := b.Exprs.Member(x)
		my, _ := b.Exprs.Member(y)
		if _, ok := b.Bindings.Resolved(mx.Binding); !ok || mx.Binding != my.Binding || mx.Arrow != my.Arrow {
			return false
		}
		return sameExpr(b, mx.Base, my.Base, depth+1)
	case ast.ExprSubscript:
		sx, _ := b.Exprs.Subscript(x)
		sy, _ := b.Exprs.Subscript(y)
		return sameExpr(b, sx.Base, sy.Base, depth+1) && sameIndex(b, sx.Index, sy.Index)
	case ast.ExprUnary:
		ux, _ := b.Exprs.Unary(x)
		uy, _ := b.Exprs.Unary(y)
		return ux.Op == ast.UnaryDeref && uy.Op == ast.UnaryDeref && sameExpr(b, ux.Operand, uy.Operand, depth+1)
	}
	return false
}

func sameIndex(b *ast.Builder, x, y ast.ExprID) bool {
	x, y = b.StripParens(x), b.StripParens(y)
	if lx, ok := b.Exprs.Literal(x); ok {
		ly, ok := b.Exprs.Literal(y)
		return ok && lx.Kind == ly.Kind && lx.Text == ly.Text
	}
	ix, ok := b.Exprs.Ident(x)
	if !ok {
		return false
	}
	iy, ok := b.Exprs.Ident(y)
	return ok && ix.Binding == iy.Binding && ix.Binding.IsValid()
}

// NoEffect reports expression statements that compute a value and drop it.
type NoEffect struct{}

func (NoEffect) Name() string { return "NoEffect" }

func (NoEffect) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleNoEffect, Name: "Statement has no effect", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Statement has no effect '%s'",
		Description: "An expression statement without calls, assignments, increments or other side effects.",
		Params: []config.ParamSpec{
			checker.ListParam(ParamExceptions, "Exceptions (expression text)"),
		},
	}}
}

func (NoEffect) Run(p *checker.Pass) {
	b := p.AST
	exceptions := p.Strings(RuleNoEffect, ParamExceptions)
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		inspectOwn(b, ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
			s, ok := n.Stmt()
			if !ok || b.Stmts.Get(s).Kind != ast.StmtExpr {
				return true
			}
			st, _ := b.Stmts.Expr(s)
			if !st.Expr.IsValid() || !hasNoEffect(b, st.Expr, 0) {
				return true
			}
			text := exprText(p, st.Expr)
			if slices.Contains(exceptions, text) {
				return true
			}
			p.Report(RuleNoEffect, ast.ExprRef(st.Expr), text)
			return true
		})
	})
}

func hasNoEffect(b *ast.Builder, e ast.ExprID, depth int) bool {
	if depth > 64 {
		return false
	}
	x := b.Exprs.Get(e)
	if x == nil {
		return false
	}
	switch x.Kind {
	case ast.ExprIdent:
		id, _ := b.Exprs.Ident(e)
		_, ok := b.Bindings.Resolved(id.Binding)
		return ok && !mayOverload(b, x.Type)
	case ast.ExprLiteral, ast.ExprThis:
		return true
	case ast.ExprMember:
		m, _ := b.Exprs.Member(e)
		if _, ok := b.Bindings.Resolved(m.Binding); !ok {
			return false
		}
		return !m.Base.IsValid() || hasNoEffect(b, m.Base, depth+1)
	case ast.ExprSubscript:
		s, _ := b.Exprs.Subscript(e)
		return hasNoEffect(b, s.Base, depth+1) && hasNoEffect(b, s.Index, depth+1)
	case ast.ExprUnary:
		u, _ := b.Exprs.Unary(e)
		return !u.Op.IsIncDec() && hasNoEffect(b, u.Operand, depth+1)
	case ast.ExprBinary:
		bin, _ := b.Exprs.Binary(e)
		return !bin.Op.IsAssign() && hasNoEffect(b, bin.Left, depth+1) && hasNoEffect(b, bin.Right, depth+1)
	case ast.ExprCast:
		c, _ := b.Exprs.Cast(e)
		// (void)x discards on purpose
		return !b.IsVoid(c.Type) && hasNoEffect(b, c.Operand, depth+1)
	case ast.ExprConditional:
		c, _ := b.Exprs.Conditional(e)
		return hasNoEffect(b, c.Cond, depth+1) && hasNoEffect(b, c.Then, depth+1) && hasNoEffect(b, c.Else, depth+1)
	}
	return false
}

// mayOverload reports operand types for which an operator may be a user
// function call.
func mayOverload(b *ast.Builder, t ast.TypeID) bool {
	if !t.IsValid() {
		return false
	}
	if _, ok := b.ClassOf(t, false); ok {
		return true
	}
	typ := b.CanonicalType(t)
	return typ == nil || typ.Kind == ast.TypeUnresolved || typ.Kind == ast.TypeTemplateParam
}

// FloatCompare reports == and != on floating point operands.
type FloatCompare struct{}

func (FloatCompare) Name() string { return "FloatCompare" }

func (FloatCompare) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleFloatCompare, Name: "Floating point comparison with == or !=", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Floating point values compared with '%s'",
		Description: "Exact equality of floating point values depends on rounding.",
	}}
}

func (FloatCompare) Run(p *checker.Pass) {
	b := p.AST
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		eachExpr(b, ast.StmtRef(data.Body), func(e ast.ExprID, _ *ast.Expr) {
			bin, ok := b.Exprs.Binary(e)
			if !ok || (bin.Op != ast.BinEq && bin.Op != ast.BinNe) {
				return
			}
			if floating(b, bin.Left) || floating(b, bin.Right) {
				p.Report(RuleFloatCompare, ast.ExprRef(e), bin.Op.String())
			}
		})
	})
}

func floating(b *ast.Builder, e ast.ExprID) bool {
	x := b.Exprs.Get(e)
	if x == nil {
		return false
	}
	if x.Type.IsValid() {
		return b.IsFloating(x.Type)
	}
	lit, ok := b.Exprs.Literal(b.StripParens(e))
	return ok && lit.Kind == ast.LitFloat
}

// CStyleCast reports `(T)e` in C++ code.
type CStyleCast struct{}

func (CStyleCast) Name() string { return "CStyleCast" }

func (CStyleCast) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleCStyleCast, Name: "C-style cast", Severity: diag.SevInfo, DefaultEnabled: true,
		Message:     "C-style cast instead of a C++ cast",
		Description: "Use static_cast, const_cast, reinterpret_cast or dynamic_cast. Casts to void are allowed.",
	}}
}

func (CStyleCast) Run(p *checker.Pass) {
	if p.Lang() != ast.LangCXX {
		return
	}
	b := p.AST
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		eachExpr(b, ast.StmtRef(data.Body), func(e ast.ExprID, _ *ast.Expr) {
			if c, ok := b.Exprs.Cast(e); ok && c.Kind == ast.CastCStyle && !b.IsVoid(c.Type) {
				p.Report(RuleCStyleCast, ast.ExprRef(e))
			}
		})
	})
}

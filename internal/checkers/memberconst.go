package checkers

import (
	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/diag"
)

const (
	RuleMemberUsedInStatic   = "MemberUsedInStaticMethod"
	RuleMemberWrittenInConst = "MemberWrittenInConstMethod"
	RuleMethodShouldBeStatic = "MethodShouldBeStatic"
	RuleMethodShouldBeConst  = "MethodShouldBeConst"
)

// MemberConst classifies how a method uses the object it is called on.
type MemberConst struct{}

func (MemberConst) Name() string { return "MemberConst" }

func (MemberConst) Rules() []checker.Rule {
	return []checker.Rule{
		{
			ID: RuleMemberUsedInStatic, Name: "Member used in static method", Severity: diag.SevError, DefaultEnabled: true,
			Message:     "Static method cannot use non-static member '%s'",
			Description: "A static method reads, writes or calls an instance member.",
		},
		{
			ID: RuleMemberWrittenInConst, Name: "Member written in const method", Severity: diag.SevError, DefaultEnabled: true,
			Message:     "Const method modifies member '%s'",
			Description: "A const method writes a non-mutable data member; writes through const_cast are exempt.",
		},
		{
			ID: RuleMethodShouldBeStatic, Name: "Method could be static", Severity: diag.SevInfo, DefaultEnabled: true,
			Message:     "Method '%s' does not use the object and could be static",
			Description: "A non-virtual method touches no instance member and never uses this.",
		},
		{
			ID: RuleMethodShouldBeConst, Name: "Method could be const", Severity: diag.SevInfo, DefaultEnabled: true,
			Message:     "Method '%s' does not modify the object and could be const",
			Description: "A non-virtual method only reads members and only calls const methods.",
		},
	}
}

type memberSite struct {
	member ast.BindingID
	site   ast.ExprID
}

// objectUse summarizes one method body.
type objectUse struct {
	instance    bool // touches a non-static member or this
	thisEscapes bool
	mayWrite    bool
	nonConst    bool // calls a non-const method of the object
	unresolved  bool
	uses        []memberSite
	writes      []memberSite
}

func (c MemberConst) Run(p *checker.Pass) {
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		if !data.Owner.IsValid() {
			return
		}
		switch data.Special {
		case ast.FnConstructor, ast.FnDestructor:
			return
		}
		b := p.AST
		bn := b.Bindings.Get(b.Decls.Get(fn).Binding)
		u := c.analyze(p, fn, data)
		switch {
		case data.Has(ast.FnStatic) || (bn != nil && bn.Has(ast.FlagStatic)):
			for _, s := range u.uses {
				p.Report(RuleMemberUsedInStatic, ast.ExprRef(s.site), b.Bindings.Get(s.member).Name)
			}
		case data.Has(ast.FnConst):
			for _, s := range u.writes {
				p.Report(RuleMemberWrittenInConst, ast.ExprRef(s.site), b.Bindings.Get(s.member).Name)
			}
		default:
			if u.unresolved || data.Has(ast.FnVirtual|ast.FnOverride|ast.FnPure) || data.Has(ast.FnDeleted) {
				return
			}
			if bn != nil && p.Table.Classes.IsVirtual(b.Decls.Get(fn).Binding) {
				return
			}
			name := b.Signature(fn)
			if !u.instance {
				blk, ok := b.Stmts.Block(data.Body)
				if data.Special == ast.FnOrdinary && ok && len(blk.Stmts) > 0 {
					p.ReportAt(RuleMethodShouldBeStatic, nameSpan(b, fn), ast.DeclRef(fn), name)
				}
				return
			}
			if !u.thisEscapes && !u.mayWrite && !u.nonConst && len(u.writes) == 0 {
				p.ReportAt(RuleMethodShouldBeConst, nameSpan(b, fn), ast.DeclRef(fn), name)
			}
		}
	})
}

func (MemberConst) analyze(p *checker.Pass, fn ast.DeclID, data *ast.FunctionData) objectUse {
	b := p.AST
	var u objectUse
	owner := data.Owner
	isInstance := func(bn ast.BindingID) bool { return p.Table.IsMember(bn, owner) }

	body := ast.StmtRef(data.Body)
	b.Inspect(body, func(n ast.NodeRef) bool {
		if d, ok := n.Decl(); ok {
			switch b.Decls.Get(d).Kind {
			case ast.DeclClass, ast.DeclFunction:
				return false
			}
			return true
		}
		e, ok := n.Expr()
		if !ok {
			return true
		}
		switch x := b.Exprs.Get(e); x.Kind {
		case ast.ExprThis:
			u.instance = true
			if parent := b.ParentOf(n); parent.Kind != ast.NodeExpr || b.Exprs.Get(ast.ExprID(parent.ID)).Kind != ast.ExprMember {
				u.thisEscapes = true
			}
		case ast.ExprIdent, ast.ExprMember:
			ref := b.Referenced(e)
			if bn := b.Bindings.Get(ref); bn != nil && bn.Kind == ast.BindProblem {
				u.unresolved = true
				return true
			}
			mem, ok := memberOfThis(b, e)
			if !ok || !isInstance(mem) {
				return true
			}
			u.instance = true
			u.uses = append(u.uses, memberSite{member: mem, site: e})
			if b.Bindings.Get(mem).Kind == ast.BindMethod && !isConstMethod(b, mem) {
				u.nonConst = true
			}
		case ast.ExprCall:
			call, _ := b.Exprs.Call(e)
			markCallWrites(b, call, &u)
		}
		return true
	})

	writeTargets(b, body, func(target, site ast.ExprID) {
		field, _, ok := rootField(b, target)
		if !ok || !isInstance(field) || b.Bindings.Get(field).Has(ast.FlagMutable) {
			return
		}
		u.writes = append(u.writes, memberSite{member: field, site: site})
	})

	if b.IsIndirect(data.Return) && !pointeeConst(b, data.Return) {
		inspectOwn(b, body, func(n ast.NodeRef) bool {
			s, ok := n.Stmt()
			if !ok || b.Stmts.Get(s).Kind != ast.StmtReturn {
				return true
			}
			ret, _ := b.Stmts.Expr(s)
			target := b.StripParens(ret.Expr)
			if un, ok := b.Exprs.Unary(target); ok && un.Op == ast.UnaryAddrOf {
				target = un.Operand
			}
			if field, _, ok := rootField(b, target); ok && isInstance(field) {
				u.mayWrite = true
			}
			return true
		})
	}
	return u
}

// markCallWrites handles member objects modified by a call: a non-const
// method invoked on them, or a non-const reference parameter bound to them.
func markCallWrites(b *ast.Builder, call *ast.CallData, u *objectUse) {
	if m, ok := b.Exprs.Member(b.StripParens(call.Callee)); ok && m.Base.IsValid() && !onThis(b, m) && !m.Arrow {
		if field, _, ok := rootField(b, m.Base); ok {
			switch bn, resolved := b.Bindings.Resolved(m.Binding); {
			case !resolved:
				u.mayWrite = true
			case bn.Kind == ast.BindMethod && !isConstMethod(b, m.Binding):
				if !b.Bindings.Get(field).Has(ast.FlagMutable) {
					u.writes = append(u.writes, memberSite{member: field, site: call.Callee})
				}
			}
		}
	}
	_, fn, ok := b.FunctionOf(b.Referenced(call.Callee))
	for i, arg := range call.Args {
		field, _, isField := rootField(b, arg)
		if !isField {
			continue
		}
		if !ok || i >= len(fn.Params) {
			u.mayWrite = u.mayWrite || !ok
			continue
		}
		pv, _ := b.Decls.Var(fn.Params[i])
		if pv != nil && b.IsReference(pv.Type) && !pointeeConst(b, pv.Type) && !b.Bindings.Get(field).Has(ast.FlagMutable) {
			u.writes = append(u.writes, memberSite{member: field, site: arg})
		}
	}
}

func isConstMethod(b *ast.Builder, m ast.BindingID) bool {
	if bn := b.Bindings.Get(m); bn != nil && bn.Has(ast.FlagConst|ast.FlagStatic) {
		return true
	}
	_, fn, ok := b.FunctionOf(m)
	return ok && (fn.Has(ast.FnConst) || fn.Has(ast.FnStatic))
}

// pointeeConst reports a pointer or reference to const.
func pointeeConst(b *ast.Builder, t ast.TypeID) bool {
	typ := b.CanonicalType(t)
	if typ == nil || !typ.Elem.IsValid() {
		return false
	}
	_, q := b.Canonical(typ.Elem)
	return q&ast.QualConst != 0
}

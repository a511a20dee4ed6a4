package checkers

import (
	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/diag"
)

const RuleVirtualCall = "VirtualMethodCallInCtorDtor"

// VirtualCall reports virtual dispatch on the object under construction or
// destruction: it never reaches an override of a derived class.
type VirtualCall struct{}

func (VirtualCall) Name() string { return "VirtualCall" }

func (VirtualCall) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleVirtualCall, Name: "Virtual method call in constructor or destructor", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Calling virtual method '%s' in constructor or destructor",
		Description: "An unqualified call of a virtual method through this inside a constructor or destructor.",
	}}
}

func (VirtualCall) Run(p *checker.Pass) {
	b := p.AST
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		if data.Special != ast.FnConstructor && data.Special != ast.FnDestructor {
			return
		}
		if _, cls, ok := b.ClassDecl(data.Owner); ok && cls.Final {
			return
		}
		inspectOwn(b, ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
			e, ok := n.Expr()
			if !ok {
				return true
			}
			call, ok := b.Exprs.Call(e)
			if !ok || qualifiedCallee(b, call.Callee) {
				return true
			}
			m, ok := memberOfThis(b, call.Callee)
			if !ok || !p.Table.IsMember(m, data.Owner) {
				return true
			}
			bn := b.Bindings.Get(m)
			if bn.Kind != ast.BindMethod || bn.Has(ast.FlagFinal) || !p.Table.Classes.IsVirtual(m) {
				return true
			}
			p.Report(RuleVirtualCall, n, bn.Name)
			return true
		})
	})
}

// qualifiedCallee reports `C::f()` and `this->C::f()`, which bypass dispatch.
func qualifiedCallee(b *ast.Builder, callee ast.ExprID) bool {
	callee = b.StripParens(callee)
	if id, ok := b.Exprs.Ident(callee); ok {
		return id.Qualified
	}
	if m, ok := b.Exprs.Member(callee); ok {
		return m.Qualified
	}
	return false
}

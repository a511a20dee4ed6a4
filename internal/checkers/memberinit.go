package checkers

import (
	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/diag"
)

const (
	RuleMembersInit = "ClassMembersInitialization"

	ParamSkipCalls = "skip_calls"
)

// MemberInit reports fields of scalar, pointer, reference or enum type that
// a constructor leaves uninitialized.
type MemberInit struct{}

func (MemberInit) Name() string { return "MemberInit" }

func (MemberInit) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleMembersInit, Name: "Class members should be properly initialized", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Member '%s' was not initialized in this constructor",
		Description: "A field without a default member initializer is neither in the initializer list nor assigned in the constructor body.",
		Params: []config.ParamSpec{
			checker.BoolParam(ParamSkipCalls, "Skip constructors with method calls", true),
		},
	}}
}

func (c MemberInit) Run(p *checker.Pass) {
	b := p.AST
	skipCalls := p.Bool(RuleMembersInit, ParamSkipCalls)
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		if data.Special != ast.FnConstructor || data.Has(ast.FnDefaulted|ast.FnDeleted|ast.FnCopy|ast.FnMove) {
			return
		}
		_, cls, ok := b.ClassDecl(data.Owner)
		if !ok || cls.Key == ast.KeyUnion || hasDeletedCtor(b, cls) {
			return
		}
		fields := uninitFields(b, cls)
		if len(fields) == 0 {
			return
		}
		s := initScan{b: b, p: p, owner: data.Owner, skipCalls: skipCalls, done: make(map[ast.BindingID]bool), seen: make(map[ast.DeclID]bool)}
		if !s.ctor(fn, data) {
			return
		}
		for _, f := range fields {
			if !s.done[f] {
				p.ReportAt(RuleMembersInit, nameSpan(b, fn), ast.DeclRef(fn), b.Bindings.Get(f).Name)
			}
		}
	})
}

func hasDeletedCtor(b *ast.Builder, cls *ast.ClassData) bool {
	for _, m := range cls.Members {
		if fn, ok := b.Decls.Function(m); ok && fn.Special == ast.FnConstructor && fn.Has(ast.FnDeleted) {
			return true
		}
	}
	return false
}

// uninitFields lists the non-static fields without a default member
// initializer whose type has no constructor of its own.
func uninitFields(b *ast.Builder, cls *ast.ClassData) []ast.BindingID {
	var out []ast.BindingID
	for _, m := range cls.Members {
		d := b.Decls.Get(m)
		if d.Kind != ast.DeclField {
			continue
		}
		v, _ := b.Decls.Var(m)
		if v.Storage == ast.StorageStatic || v.Init.IsValid() || !scalarType(b, v.Type) {
			continue
		}
		out = append(out, d.Binding)
	}
	return out
}

func scalarType(b *ast.Builder, t ast.TypeID) bool {
	typ := b.CanonicalType(t)
	if typ == nil {
		return false
	}
	switch typ.Kind {
	case ast.TypeBuiltin:
		return typ.Builtin != ast.BuiltinVoid
	case ast.TypePointer, ast.TypeLValueRef, ast.TypeRValueRef, ast.TypeMemberPointer, ast.TypeEnum:
		return true
	}
	return false
}

// initScan accumulates the fields a constructor initializes, following
// delegating constructors and, unless skipCalls, the member functions it calls.
type initScan struct {
	b         *ast.Builder
	p         *checker.Pass
	owner     ast.BindingID
	skipCalls bool
	done      map[ast.BindingID]bool
	seen      map[ast.DeclID]bool
}

// ctor returns false when the constructor cannot be judged.
func (s *initScan) ctor(fn ast.DeclID, data *ast.FunctionData) bool {
	if s.seen[fn] {
		return true
	}
	s.seen[fn] = true
	for _, in := range data.Inits {
		switch in.Kind {
		case ast.InitMember:
			s.done[in.Target] = true
		case ast.InitDelegating:
			target, tdata, ok := s.b.FunctionOf(in.Target)
			if !ok || !tdata.Body.IsValid() {
				return false
			}
			if !s.ctor(target, tdata) {
				return false
			}
		}
	}
	return s.body(data.Body)
}

func (s *initScan) body(body ast.StmtID) bool {
	b := s.b
	root := ast.StmtRef(body)
	writeTargets(b, root, func(target, _ ast.ExprID) {
		if f, _, ok := rootField(b, target); ok {
			s.done[f] = true
		}
	})
	judged := true
	inspectOwn(b, root, func(n ast.NodeRef) bool {
		e, ok := n.Expr()
		if !ok || !judged {
			return judged
		}
		call, ok := b.Exprs.Call(e)
		if !ok {
			return true
		}
		callee := b.Referenced(call.Callee)
		_, fn, known := b.FunctionOf(callee)
		// a field passed by reference or pointer counts as initialized
		for i, arg := range call.Args {
			f, _, isField := rootField(b, arg)
			if !isField {
				continue
			}
			if !known || i >= len(fn.Params) {
				s.done[f] = true
				continue
			}
			if pv, ok := b.Decls.Var(fn.Params[i]); ok && b.IsIndirect(pv.Type) {
				s.done[f] = true
			}
		}
		if m, ok := memberOfThis(b, call.Callee); ok && s.p.Table.IsMember(m, s.owner) && b.Bindings.Get(m).Kind == ast.BindMethod {
			judged = s.method(m)
		}
		return judged
	})
	return judged
}

func (s *initScan) method(m ast.BindingID) bool {
	if s.skipCalls {
		return false
	}
	decl, data, ok := s.b.FunctionOf(m)
	if !ok || !data.Body.IsValid() {
		return false
	}
	if s.seen[decl] {
		return true
	}
	s.seen[decl] = true
	return s.body(data.Body)
}

package checkers

import (
	"strings"

	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/diag"
)

const (
	RuleCatchByValue         = "CatchByValue"
	RuleGoto                 = "GotoStatement"
	RuleMultipleDeclarations = "MultipleDeclarations"
	RuleNonVirtualDtor       = "NonVirtualDestructor"
)

// CatchByReference reports handlers that copy (and slice) the exception object.
type CatchByReference struct{}

func (CatchByReference) Name() string { return "CatchByReference" }

func (CatchByReference) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleCatchByValue, Name: "Catching by value", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Catching by value is not recommended, catch by reference instead",
		Description: "A handler parameter of class type is copied and may be sliced.",
	}}
}

func (CatchByReference) Run(p *checker.Pass) {
	b := p.AST
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		inspectOwn(b, ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
			s, ok := n.Stmt()
			if !ok {
				return true
			}
			c, ok := b.Stmts.Catch(s)
			if !ok || !c.Param.IsValid() {
				return true
			}
			v, ok := b.Decls.Var(c.Param)
			if !ok || b.IsIndirect(v.Type) {
				return true
			}
			if _, ok := b.ClassOf(v.Type, false); ok {
				p.Report(RuleCatchByValue, ast.DeclRef(c.Param))
			}
			return true
		})
	})
}

// Goto reports every goto statement.
type Goto struct{}

func (Goto) Name() string { return "Goto" }

func (Goto) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleGoto, Name: "Goto statement used", Severity: diag.SevInfo, DefaultEnabled: true,
		Message:     "Goto statement used",
		Description: "Structured control flow is preferred over goto.",
	}}
}

func (Goto) Run(p *checker.Pass) {
	b := p.AST
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		inspectOwn(b, ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
			if s, ok := n.Stmt(); ok && b.Stmts.Get(s).Kind == ast.StmtGoto {
				p.Report(RuleGoto, n)
			}
			return true
		})
	})
}

// MultipleDeclarations reports declarations with several declarators
// (`int a, *b;`). For-loop initializers are exempt.
type MultipleDeclarations struct{}

func (MultipleDeclarations) Name() string { return "MultipleDeclarations" }

func (MultipleDeclarations) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleMultipleDeclarations, Name: "Multiple variable declaration", Severity: diag.SevInfo, DefaultEnabled: true,
		Message:     "Multiple variable declaration: %s",
		Description: "Each variable should be declared in its own declaration.",
	}}
}

func (MultipleDeclarations) Run(p *checker.Pass) {
	b := p.AST
	groups := make(map[uint32][]ast.DeclID)
	var order []uint32
	p.Inspect(func(n ast.NodeRef) bool {
		d, ok := n.Decl()
		if !ok {
			return true
		}
		decl := b.Decls.Get(d)
		if decl.Group == 0 || (decl.Kind != ast.DeclVariable && decl.Kind != ast.DeclField) || inForInit(b, n) {
			return true
		}
		if _, seen := groups[decl.Group]; !seen {
			order = append(order, decl.Group)
		}
		groups[decl.Group] = append(groups[decl.Group], d)
		return true
	})
	for _, g := range order {
		decls := groups[g]
		if len(decls) < 2 {
			continue
		}
		names := make([]string, 0, len(decls))
		for _, d := range decls {
			names = append(names, b.Decls.Get(d).Name)
		}
		p.ReportAt(RuleMultipleDeclarations, b.Decls.Get(decls[0]).Span, ast.DeclRef(decls[0]), strings.Join(names, ", "))
	}
}

func inForInit(b *ast.Builder, n ast.NodeRef) bool {
	parent := b.ParentOf(n)
	s, ok := parent.Stmt()
	if !ok {
		return false
	}
	loop, ok := b.ParentOf(parent).Stmt()
	if !ok {
		return false
	}
	f, ok := b.Stmts.For(loop)
	return ok && f.Init == s
}

// NonVirtualDestructor reports polymorphic classes whose objects can be
// deleted through a base pointer without running the derived destructor.
type NonVirtualDestructor struct{}

func (NonVirtualDestructor) Name() string { return "NonVirtualDestructor" }

func (NonVirtualDestructor) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleNonVirtualDtor, Name: "Class has a non-virtual destructor", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Class '%s' has virtual methods but a public non-virtual destructor",
		Description: "A class with virtual methods whose destructor is public and neither virtual nor inherited virtual.",
	}}
}

func (c NonVirtualDestructor) Run(p *checker.Pass) {
	b := p.AST
	p.Inspect(func(n ast.NodeRef) bool {
		d, ok := n.Decl()
		if !ok {
			return true
		}
		cls, ok := b.Decls.Class(d)
		if !ok || !cls.Complete || cls.Final {
			return true
		}
		decl := b.Decls.Get(d)
		if c.violates(p, decl.Binding) {
			p.ReportAt(RuleNonVirtualDtor, nameSpan(b, d), n, qualifiedName(b, decl.Binding))
		}
		return true
	})
}

func (NonVirtualDestructor) violates(p *checker.Pass, cls ast.BindingID) bool {
	b := p.AST
	classes := p.Table.Classes
	id, ok := classes.Lookup(cls)
	if !ok || classes.Node(id).Unresolved || !classes.HasVirtualMethods(id) {
		return false
	}
	if dtor, ok := classes.Destructor(id); ok {
		decl := b.Decls.Get(dtor)
		if decl.Access == ast.AccessProtected || decl.Access == ast.AccessPrivate {
			return false
		}
		return !classes.IsVirtual(decl.Binding)
	}
	ancestors, complete := classes.Ancestors(id)
	if !complete {
		return false
	}
	for _, a := range ancestors {
		if dtor, ok := classes.Destructor(a); ok && classes.IsVirtual(b.Decls.Get(dtor).Binding) {
			return false
		}
	}
	return true
}

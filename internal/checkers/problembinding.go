package checkers

import (
	"strings"

	"fortio.org/safecast"

	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/diag"
	"codan/internal/source"
)

// problemRules maps every kind of unresolved name to its rule.
var problemRules = [...]checker.Rule{
	ast.ProblemAmbiguous: {
		ID: "AmbiguousProblem", Name: "Ambiguous problem",
		Message: "Symbol '%s' could not be resolved unambiguously",
	},
	ast.ProblemCircularReference: {
		ID: "CircularReferenceProblem", Name: "Circular inheritance",
		Message: "Circular inheritance through '%s'",
	},
	ast.ProblemFieldResolution: {
		ID: "FieldResolutionProblem", Name: "Field cannot be resolved",
		Message: "Field '%s' could not be resolved",
	},
	ast.ProblemFunctionResolution: {
		ID: "FunctionResolutionProblem", Name: "Function cannot be resolved",
		Message: "Function '%s' could not be resolved",
	},
	ast.ProblemInvalidArguments: {
		ID: "InvalidArguments", Name: "Invalid arguments",
		Message: "Invalid arguments for '%s'",
	},
	ast.ProblemInvalidTemplateArguments: {
		ID: "InvalidTemplateArgumentsProblem", Name: "Invalid template argument",
		Message: "Invalid template argument for '%s'",
	},
	ast.ProblemLabelNotFound: {
		ID: "LabelStatementNotFoundProblem", Name: "Label statement not found",
		Message: "Label '%s' could not be found",
	},
	ast.ProblemMemberDeclarationNotFound: {
		ID: "MemberDeclarationNotFoundProblem", Name: "Member declaration not found",
		Message: "Member declaration '%s' could not be found",
	},
	ast.ProblemMethodResolution: {
		ID: "MethodResolutionProblem", Name: "Method cannot be resolved",
		Message: "Method '%s' could not be resolved",
	},
	ast.ProblemOverload: {
		ID: "OverloadProblem", Name: "Overload problem",
		Message: "No matching overload of '%s'",
	},
	ast.ProblemRedeclaration: {
		ID: "RedeclarationProblem", Name: "Redeclaration",
		Message: "Invalid redeclaration of '%s'",
	},
	ast.ProblemRedefinition: {
		ID: "RedefinitionProblem", Name: "Redefinition",
		Message: "Invalid redefinition of '%s'",
	},
	ast.ProblemTypeResolution: {
		ID: "TypeResolutionProblem", Name: "Type cannot be resolved",
		Message: "Type '%s' could not be resolved",
	},
	ast.ProblemVariableResolution: {
		ID: "VariableResolutionProblem", Name: "Symbol is not resolved",
		Message: "Symbol '%s' could not be resolved",
	},
}

// ProblemBinding turns the names the parser left unresolved into problems.
type ProblemBinding struct{}

func (ProblemBinding) Name() string { return "ProblemBinding" }

func (ProblemBinding) Rules() []checker.Rule {
	out := make([]checker.Rule, 0, len(problemRules))
	for _, r := range problemRules {
		if r.ID == "" {
			continue
		}
		r.Severity = diag.SevError
		r.DefaultEnabled = true
		r.Description = "Name resolution failed: " + strings.ToLower(r.Name) + "."
		out = append(out, r)
	}
	return out
}

func ruleFor(kind ast.ProblemKind) (string, bool) {
	if int(kind) >= len(problemRules) || problemRules[kind].ID == "" {
		return "", false
	}
	return problemRules[kind].ID, true
}

func (c ProblemBinding) Run(p *checker.Pass) {
	b := p.AST
	labels := make(map[ast.DeclID]map[string]bool)
	p.Inspect(func(n ast.NodeRef) bool {
		switch n.Kind {
		case ast.NodeExpr:
			e, _ := n.Expr()
			switch b.Exprs.Get(e).Kind {
			case ast.ExprIdent:
				id, _ := b.Exprs.Ident(e)
				c.report(p, id.Binding, b.SpanOf(n), n, id.Name)
			case ast.ExprMember:
				m, _ := b.Exprs.Member(e)
				c.report(p, m.Binding, b.SpanOf(n), n, m.Name)
			}
		case ast.NodeDecl:
			d, _ := n.Decl()
			decl := b.Decls.Get(d)
			c.report(p, decl.Binding, nameSpan(b, d), n, decl.Name)
			if cls, ok := b.Decls.Class(d); ok {
				for _, base := range cls.Bases {
					c.report(p, base.Class, base.Span, n, "")
				}
			}
			if v, ok := b.Decls.Var(d); ok {
				c.unresolvedType(p, d, v.Type)
			}
		case ast.NodeStmt:
			s, _ := n.Stmt()
			if b.Stmts.Get(s).Kind != ast.StmtGoto {
				return true
			}
			fn := b.EnclosingFunction(n)
			known, ok := labels[fn]
			if !ok {
				known = labelsOf(b, fn)
				labels[fn] = known
			}
			if l, _ := b.Stmts.Label(s); !known[l.Name] {
				p.Report(problemRules[ast.ProblemLabelNotFound].ID, n, l.Name)
			}
		}
		return true
	})
}

func (ProblemBinding) report(p *checker.Pass, id ast.BindingID, at source.Span, n ast.NodeRef, name string) {
	bn := p.AST.Bindings.Get(id)
	if bn == nil || bn.Kind != ast.BindProblem {
		return
	}
	rule, ok := ruleFor(bn.Problem)
	if !ok {
		return
	}
	if name == "" {
		name = bn.Name
	}
	p.ReportAt(rule, at, n, name)
}

// unresolvedType reports a declared type the parser could not resolve, at
// the type name inside the declaration when it can be found there.
func (ProblemBinding) unresolvedType(p *checker.Pass, d ast.DeclID, t ast.TypeID) {
	b := p.AST
	typ := b.Types.Get(t)
	for typ != nil && typ.Kind != ast.TypeUnresolved && typ.Elem.IsValid() {
		typ = b.Types.Get(typ.Elem)
	}
	if typ == nil || typ.Kind != ast.TypeUnresolved || typ.Name == "" {
		return
	}
	decl := b.Decls.Get(d)
	at := decl.Span
	if i := strings.Index(p.Text(decl.Span), typ.Name); i >= 0 {
		start, errStart := safecast.Conv[uint32](i)
		n, errLen := safecast.Conv[uint32](len(typ.Name))
		if errStart == nil && errLen == nil {
			at.Start += start
			at.End = at.Start + n
		}
	}
	p.ReportAt(problemRules[ast.ProblemTypeResolution].ID, at, ast.DeclRef(d), typ.Name)
}

func labelsOf(b *ast.Builder, fn ast.DeclID) map[string]bool {
	out := make(map[string]bool)
	data, ok := b.Decls.Function(fn)
	if !ok {
		return out
	}
	inspectOwn(b, ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
		if s, ok := n.Stmt(); ok && b.Stmts.Get(s).Kind == ast.StmtLabel {
			l, _ := b.Stmts.Label(s)
			out[l.Name] = true
		}
		return true
	})
	return out
}

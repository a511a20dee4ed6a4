package checkers

import (
	"slices"

	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/source"
)

const (
	RuleBlacklist         = "BlacklistProblem"
	RuleCopyright         = "CopyrightProblem"
	RuleUsingInHeader     = "UsingInHeader"
	RuleStaticVarInHeader = "StaticVariableInHeader"

	ParamBlacklist = "blacklist"
	ParamRegex     = "regex"
)

// Blacklist reports calls of configured functions.
type Blacklist struct{}

func (Blacklist) Name() string { return "Blacklist" }

func (Blacklist) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleBlacklist, Name: "Function or method is blacklisted", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Function or method '%s' is blacklisted",
		Description: "A call of a function listed by name or qualified name.",
		Params: []config.ParamSpec{
			checker.ListParam(ParamBlacklist, "List of functions or methods to be checked"),
		},
	}}
}

func (Blacklist) Run(p *checker.Pass) {
	banned := p.Strings(RuleBlacklist, ParamBlacklist)
	if len(banned) == 0 {
		return
	}
	b := p.AST
	p.Inspect(func(n ast.NodeRef) bool {
		e, ok := n.Expr()
		if !ok || b.Exprs.Get(e).Kind != ast.ExprCall {
			return true
		}
		bn, ok := b.Bindings.Resolved(b.Callee(e))
		if !ok || (bn.Kind != ast.BindFunction && bn.Kind != ast.BindMethod) {
			return true
		}
		if slices.Contains(banned, bn.Name) || slices.Contains(banned, bn.Qualified) {
			p.Report(RuleBlacklist, n, bn.Qualified)
		}
		return true
	})
}

// Copyright requires the first comment of a file to carry a copyright notice.
type Copyright struct{}

func (Copyright) Name() string { return "Copyright" }

func (Copyright) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleCopyright, Name: "Lack of copyright information", Severity: diag.SevInfo,
		Message:     "Lack of copyright information",
		Description: "The first comment of the file does not match the copyright pattern.",
		Params: []config.ParamSpec{
			checker.RegexParam(ParamRegex, "Regex to search for copyright information", ".*Copyright.*"),
		},
	}}
}

func (Copyright) Run(p *checker.Pass) {
	f := p.Unit.Main()
	if f == nil {
		return
	}
	re := p.Regexp(RuleCopyright, ParamRegex)
	if comments := p.Comments(); len(comments) > 0 && (re == nil || re.MatchString(comments[0].Body())) {
		return
	}
	at := source.Span{File: f.Span.File, Start: f.Span.Start, End: f.Span.Start}
	p.ReportAt(RuleCopyright, at, ast.NodeRef{})
}

// Header reports declarations that misbehave when a header is included by
// several translation units.
type Header struct{}

func (Header) Name() string { return "Header" }

func (Header) Rules() []checker.Rule {
	return []checker.Rule{
		{
			ID: RuleUsingInHeader, Name: "Using directive in header", Severity: diag.SevWarning, DefaultEnabled: true,
			Message:     "Using directive in header file",
			Description: "A namespace-scope using directive leaks into every includer.",
		},
		{
			ID: RuleStaticVarInHeader, Name: "Static variable in header", Severity: diag.SevWarning, DefaultEnabled: true,
			Message:     "Static variable '%s' in header file",
			Description: "Every including unit gets its own copy of a mutable static variable.",
		},
	}
}

func (Header) Run(p *checker.Pass) {
	b := p.AST
	p.Inspect(func(n ast.NodeRef) bool {
		d, ok := n.Decl()
		if !ok {
			return true
		}
		decl := b.Decls.Get(d)
		switch decl.Kind {
		case ast.DeclFunction, ast.DeclClass:
			// function bodies and class members are not namespace scope
			return false
		case ast.DeclUsingDirective:
			if inHeader(p, decl.Span) {
				p.Report(RuleUsingInHeader, n)
			}
		case ast.DeclVariable:
			v, _ := b.Decls.Var(d)
			if v.Storage == ast.StorageStatic && !namedConstant(b, d) && inHeader(p, decl.Span) {
				p.ReportAt(RuleStaticVarInHeader, nameSpan(b, d), n, decl.Name)
			}
		}
		return true
	})
}

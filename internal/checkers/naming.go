package checkers

import (
	"slices"

	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/diag"
)

const (
	RuleNamingFunction = "NamingConventionFunction"

	ParamPattern      = "pattern"
	ParamCheckMethods = "check_methods"
)

// NamingConvention matches function names against a configurable pattern.
type NamingConvention struct{}

func (NamingConvention) Name() string { return "NamingConvention" }

func (NamingConvention) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleNamingFunction, Name: "Name convention for function", Severity: diag.SevInfo, DefaultEnabled: true,
		Message:     "Bad function name '%s' (pattern /%s/)",
		Description: "Function names should match the configured regular expression.",
		Params: []config.ParamSpec{
			checker.RegexParam(ParamPattern, "Name pattern", "^[a-z]"),
			checker.BoolParam(ParamCheckMethods, "Also check C++ method names", false),
			checker.ListParam(ParamExceptions, "Exceptions (names)"),
		},
	}}
}

func (NamingConvention) Run(p *checker.Pass) {
	b := p.AST
	pattern := p.Regexp(RuleNamingFunction, ParamPattern)
	if pattern == nil {
		return
	}
	methods := p.Bool(RuleNamingFunction, ParamCheckMethods)
	exceptions := p.Strings(RuleNamingFunction, ParamExceptions)
	seen := make(map[ast.BindingID]bool)
	p.Inspect(func(n ast.NodeRef) bool {
		d, ok := n.Decl()
		if !ok {
			return true
		}
		fn, ok := b.Decls.Function(d)
		if !ok || fn.Special != ast.FnOrdinary || (fn.Owner.IsValid() && !methods) {
			return true
		}
		decl := b.Decls.Get(d)
		if decl.Name == "" || seen[decl.Binding] || slices.Contains(exceptions, decl.Name) {
			return true
		}
		seen[decl.Binding] = true
		if !pattern.MatchString(decl.Name) {
			p.ReportAt(RuleNamingFunction, nameSpan(b, d), n, decl.Name, pattern.String())
		}
		return true
	})
}

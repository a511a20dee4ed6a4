package checkers

import (
	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/flow"
	"codan/internal/source"
)

const (
	RuleCaseBreak     = "CaseBreakProblem"
	RuleLastCaseBreak = "LastCaseBreakProblem"
	RuleMissDefault   = "MissDefaultProblem"
	RuleMissCase      = "MissCaseProblem"

	ParamNoBreakComment = "no_break_comment"
	ParamEmptyCase      = "empty_case_param"
	ParamLastCase       = "last_case_param"
	ParamDefaultAllEnum = "defaultWithAllEnums"
	ParamNonEnumDefault = "non_enum_switch"
)

// SwitchCase checks fallthrough between case sections and switch completeness.
type SwitchCase struct{}

func (SwitchCase) Name() string { return "SwitchCase" }

func (SwitchCase) Rules() []checker.Rule {
	return []checker.Rule{
		{
			ID: RuleCaseBreak, Name: "Missing break in switch", Severity: diag.SevWarning, DefaultEnabled: true,
			Message:     "No break at the end of case",
			Description: "Control falls from one case section into the next.",
			Params: []config.ParamSpec{
				checker.RegexParam(ParamNoBreakComment, "Comment text to suppress the problem (regular expression)", "no break"),
				checker.BoolParam(ParamEmptyCase, "Check also empty case statement", false),
			},
		},
		{
			ID: RuleLastCaseBreak, Name: "Missing break in last case", Severity: diag.SevWarning, DefaultEnabled: true,
			Message:     "No break at the end of the last case",
			Description: "The last section of a switch ends without break.",
			Params: []config.ParamSpec{
				checker.BoolParam(ParamLastCase, "Check also the last case statement", true),
			},
		},
		{
			ID: RuleMissDefault, Name: "Missing default in switch", Severity: diag.SevWarning, DefaultEnabled: true,
			Message:     "No default case in this switch",
			Description: "An enum switch without default that does not cover every enumerator.",
			Params: []config.ParamSpec{
				checker.BoolParam(ParamDefaultAllEnum, "Require default even if all enum values are covered", false),
				checker.BoolParam(ParamNonEnumDefault, "Require default in switches over non-enum values", false),
			},
		},
		{
			ID: RuleMissCase, Name: "Missing cases in switch", Severity: diag.SevWarning, DefaultEnabled: true,
			Message:     "Enumerator '%s' is not handled in this switch",
			Description: "An enum switch without default misses an enumerator.",
		},
	}
}

func (c SwitchCase) Run(p *checker.Pass) {
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		facts := p.Flow.Function(fn)
		inspectOwn(p.AST, ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
			if s, ok := n.Stmt(); ok && p.AST.Stmts.Get(s).Kind == ast.StmtSwitch {
				c.sections(p, facts, s)
				c.coverage(p, s)
			}
			return true
		})
	})
}

func (SwitchCase) sections(p *checker.Pass, facts *flow.Facts, sw ast.StmtID) {
	if !p.AnyEnabled(RuleCaseBreak, RuleLastCaseBreak) {
		return
	}
	b := p.AST
	secs := facts.Sections(sw)
	if len(secs) == 0 {
		return
	}
	data, _ := b.Stmts.Switch(sw)
	bodyEnd := b.Stmts.Get(data.Body).Span.End
	marker := p.Regexp(RuleCaseBreak, ParamNoBreakComment)
	reportEmpty := p.Bool(RuleCaseBreak, ParamEmptyCase)

	for i, sec := range secs {
		last := i == len(secs)-1
		rule := RuleCaseBreak
		if last {
			if !p.Bool(RuleLastCaseBreak, ParamLastCase) {
				continue
			}
			rule = RuleLastCaseBreak
		}
		if sec.Empty() {
			if reportEmpty && !last {
				p.Report(rule, ast.StmtRef(sec.Label))
			}
			continue
		}
		if sec.Complete || (!facts.Reachable(sec.Last) && facts.Reachable(sec.Label)) {
			continue
		}
		end := bodyEnd
		if !last {
			end = b.Stmts.Get(secs[i+1].Label).Span.Start
		}
		lastSpan := b.Stmts.Get(sec.Last).Span
		if marker != nil && hasMarker(p, marker.MatchString, lastSpan.Start, end, lastSpan.File) {
			continue
		}
		p.Report(rule, ast.StmtRef(sec.Last))
	}
}

// hasMarker looks for a matching comment from the start of the last
// statement up to the next label.
func hasMarker(p *checker.Pass, match func(string) bool, from, to uint32, file source.FileID) bool {
	for _, c := range p.Comments() {
		if c.Span.File != file || c.Span.Start < from || c.Span.End > to {
			continue
		}
		if match(c.Body()) {
			return true
		}
	}
	return false
}

func (SwitchCase) coverage(p *checker.Pass, sw ast.StmtID) {
	if !p.AnyEnabled(RuleMissDefault, RuleMissCase) || flow.HasDefault(p.AST, sw) {
		return
	}
	missing, isEnum := flow.EnumCoverage(p.AST, sw)
	report := len(missing) > 0 || p.Bool(RuleMissDefault, ParamDefaultAllEnum)
	if !isEnum {
		// int/char switches can't be proven complete, so only on request
		report = p.Bool(RuleMissDefault, ParamNonEnumDefault)
	}
	if report {
		p.Report(RuleMissDefault, ast.StmtRef(sw))
	}
	for _, e := range missing {
		p.Report(RuleMissCase, ast.StmtRef(sw), p.AST.Bindings.Get(e).Name)
	}
}

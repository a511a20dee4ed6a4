package checkers

import (
	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/diag"
)

const RuleUnreachableCode = "UnreachableCode"

// DeadCode reports the first statement of every unreachable run.
type DeadCode struct{}

func (DeadCode) Name() string { return "DeadCode" }

func (DeadCode) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleUnreachableCode, Name: "Unreachable code", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Unreachable code",
		Description: "Statements following return, throw, break, continue, goto or a noreturn call before the next label.",
	}}
}

func (DeadCode) Run(p *checker.Pass) {
	p.EachFunction(func(fn ast.DeclID, _ *ast.FunctionData) {
		for _, run := range p.Flow.Function(fn).DeadRuns() {
			if s, ok := firstDead(p.AST, run); ok {
				p.Report(RuleUnreachableCode, ast.StmtRef(s))
			}
		}
	})
}

// firstDead skips empty statements and the customary `break;` after a
// return or throw inside a case.
func firstDead(b *ast.Builder, run []ast.StmtID) (ast.StmtID, bool) {
	for _, s := range run {
		switch b.Stmts.Get(s).Kind {
		case ast.StmtNull, ast.StmtBreak:
			continue
		}
		return s, true
	}
	return ast.NoStmtID, false
}

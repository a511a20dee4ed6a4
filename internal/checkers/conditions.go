package checkers

import (
	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/diag"
)

const (
	RuleAssignInCondition    = "AssignmentInCondition"
	RuleSuspiciousSemicolon  = "SuspiciousSemicolon"
	RuleSuggestedParenthesis = "SuggestedParenthesis"

	ParamElse = "else"
	ParamNot  = "paramNot"
)

// AssignmentInCondition reports `if (a = b)` where `==` was probably meant.
// Doubled parentheses `if ((a = b))` mark the assignment as intended.
type AssignmentInCondition struct{}

func (AssignmentInCondition) Name() string { return "AssignmentInCondition" }

func (AssignmentInCondition) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleAssignInCondition, Name: "Assignment in condition", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Possible assignment in condition '%s'",
		Description: "A plain assignment is used as the condition of if, while, do, for or ?:.",
	}}
}

func (c AssignmentInCondition) Run(p *checker.Pass) {
	b := p.AST
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		inspectOwn(b, ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
			switch n.Kind {
			case ast.NodeStmt:
				s, _ := n.Stmt()
				switch b.Stmts.Get(s).Kind {
				case ast.StmtIf:
					d, _ := b.Stmts.If(s)
					c.check(p, d.Cond)
				case ast.StmtWhile, ast.StmtDo:
					d, _ := b.Stmts.Loop(s)
					c.check(p, d.Cond)
				case ast.StmtFor:
					d, _ := b.Stmts.For(s)
					c.check(p, d.Cond)
				}
			case ast.NodeExpr:
				if d, ok := b.Exprs.Conditional(ast.ExprID(n.ID)); ok {
					c.check(p, d.Cond)
				}
			}
			return true
		})
	})
}

func (c AssignmentInCondition) check(p *checker.Pass, cond ast.ExprID) {
	b := p.AST
	if un, ok := b.Exprs.Unary(cond); ok && un.Op == ast.UnaryNot {
		c.check(p, un.Operand)
		return
	}
	bin, ok := b.Exprs.Binary(cond)
	if !ok {
		return
	}
	switch bin.Op {
	case ast.BinAssign:
		p.Report(RuleAssignInCondition, ast.ExprRef(cond), exprText(p, cond))
	case ast.BinLogAnd, ast.BinLogOr:
		c.check(p, bin.Left)
		c.check(p, bin.Right)
	}
}

// SuspiciousSemicolon reports `if (c);` whose empty statement is the whole then-branch.
type SuspiciousSemicolon struct{}

func (SuspiciousSemicolon) Name() string { return "SuspiciousSemicolon" }

func (SuspiciousSemicolon) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleSuspiciousSemicolon, Name: "Suspicious semicolon", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Suspicious semicolon",
		Description: "An if statement whose then-branch is an empty statement.",
		Params: []config.ParamSpec{
			checker.BoolParam(ParamElse, "Do not report an if statement that has an else branch", false),
		},
	}}
}

func (SuspiciousSemicolon) Run(p *checker.Pass) {
	b := p.AST
	skipElse := p.Bool(RuleSuspiciousSemicolon, ParamElse)
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		inspectOwn(b, ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
			s, ok := n.Stmt()
			if !ok {
				return true
			}
			d, ok := b.Stmts.If(s)
			if !ok || (skipElse && d.Else.IsValid()) {
				return true
			}
			then := b.Stmts.Get(d.Then)
			if then != nil && then.Kind == ast.StmtNull && len(then.Attrs) == 0 {
				p.Report(RuleSuspiciousSemicolon, ast.StmtRef(d.Then))
			}
			return true
		})
	})
}

// SuggestedParenthesis reports operator mixes that are commonly misread:
// `a || b && c`, `a & b == c`, `a | b ^ c` and, with paramNot, `!a == b`.
type SuggestedParenthesis struct{}

func (SuggestedParenthesis) Name() string { return "SuggestedParenthesis" }

func (SuggestedParenthesis) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleSuggestedParenthesis, Name: "Suggested parenthesis around expression", Severity: diag.SevWarning, DefaultEnabled: true,
		Message:     "Suggested parenthesis around expression '%s'",
		Description: "Operands of different precedence are mixed without parentheses.",
		Params: []config.ParamSpec{
			checker.BoolParam(ParamNot, "Suggest parenthesis around not operator", false),
		},
	}}
}

func (SuggestedParenthesis) Run(p *checker.Pass) {
	b := p.AST
	checkNot := p.Bool(RuleSuggestedParenthesis, ParamNot)
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		eachExpr(b, ast.StmtRef(data.Body), func(e ast.ExprID, _ *ast.Expr) {
			bin, ok := b.Exprs.Binary(e)
			if !ok {
				return
			}
			if needsParens(b, bin, checkNot) {
				p.Report(RuleSuggestedParenthesis, ast.ExprRef(e), exprText(p, e))
			}
		})
	})
}

func isBitwise(op ast.BinaryOp) bool {
	return op == ast.BinBitAnd || op == ast.BinBitOr || op == ast.BinBitXor
}

func needsParens(b *ast.Builder, bin *ast.BinaryData, checkNot bool) bool {
	for _, side := range []ast.ExprID{bin.Left, bin.Right} {
		inner, ok := b.Exprs.Binary(side)
		if !ok {
			continue
		}
		switch {
		case bin.Op == ast.BinLogOr && inner.Op == ast.BinLogAnd:
			return true
		case isBitwise(bin.Op) && inner.Op.IsComparison():
			return true
		case isBitwise(bin.Op) && isBitwise(inner.Op) && inner.Op != bin.Op:
			return true
		}
	}
	if checkNot && (bin.Op.IsComparison() || isBitwise(bin.Op)) {
		if un, ok := b.Exprs.Unary(bin.Left); ok && un.Op == ast.UnaryNot {
			return true
		}
	}
	return false
}

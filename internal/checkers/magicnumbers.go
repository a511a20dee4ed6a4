package checkers

import (
	"strconv"
	"strings"

	"codan/internal/ast"
	"codan/internal/checker"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/flow"
)

const (
	RuleMagicNumber = "MagicNumber"

	ParamCheckArray = "check_array"
)

// MagicNumbers reports numeric literals in function bodies that are not
// named by a constant.
type MagicNumbers struct{}

func (MagicNumbers) Name() string { return "MagicNumbers" }

func (MagicNumbers) Rules() []checker.Rule {
	return []checker.Rule{{
		ID: RuleMagicNumber, Name: "Magic number", Severity: diag.SevInfo,
		Message:     "Avoid magic numbers like '%s'",
		Description: "Numeric literals other than the allowed values should be named constants.",
		Params: []config.ParamSpec{
			checker.ListParam(ParamExceptions, "Allowed values", "0", "1", "-1", "2"),
			checker.BoolParam(ParamCheckArray, "Check also array subscripts", true),
		},
	}}
}

func (c MagicNumbers) Run(p *checker.Pass) {
	b := p.AST
	allowed := p.Strings(RuleMagicNumber, ParamExceptions)
	checkArray := p.Bool(RuleMagicNumber, ParamCheckArray)
	p.EachFunction(func(fn ast.DeclID, data *ast.FunctionData) {
		inspectOwn(b, ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
			if d, ok := n.Decl(); ok {
				switch b.Decls.Get(d).Kind {
				case ast.DeclEnum, ast.DeclEnumerator:
					return false
				case ast.DeclVariable:
					return !namedConstant(b, d)
				}
				return true
			}
			e, ok := n.Expr()
			if !ok {
				return true
			}
			lit, ok := b.Exprs.Literal(e)
			if !ok || (lit.Kind != ast.LitInt && lit.Kind != ast.LitFloat) {
				return true
			}
			at, text := n, lit.Text
			parent := b.ParentOf(n)
			if pe, ok := parent.Expr(); ok {
				if u, ok := b.Exprs.Unary(pe); ok && u.Op == ast.UnaryMinus {
					at, text = parent, "-"+lit.Text
					parent = b.ParentOf(parent)
				}
			}
			if !checkArray {
				if pe, ok := parent.Expr(); ok {
					if s, ok := b.Exprs.Subscript(pe); ok && s.Index == ast.ExprID(at.ID) {
						return true
					}
				}
			}
			if isAllowedNumber(text, allowed) {
				return true
			}
			p.Report(RuleMagicNumber, at, text)
			return true
		})
	})
}

// namedConstant reports const and constexpr variables, whose initializers
// name the value.
func namedConstant(b *ast.Builder, d ast.DeclID) bool {
	v, ok := b.Decls.Var(d)
	if !ok {
		return false
	}
	if v.Flags&ast.VarConstexpr != 0 {
		return true
	}
	if bn := b.Bindings.Get(b.Decls.Get(d).Binding); bn != nil && bn.Has(ast.FlagConstexpr) {
		return true
	}
	_, q := b.Canonical(v.Type)
	return q&ast.QualConst != 0
}

func isAllowedNumber(text string, allowed []string) bool {
	value, numeric := numberValue(text)
	for _, a := range allowed {
		if a == text {
			return true
		}
		if v, ok := numberValue(a); ok && numeric && v == value {
			return true
		}
	}
	return false
}

func numberValue(text string) (float64, bool) {
	t := strings.TrimSpace(text)
	neg := strings.HasPrefix(t, "-")
	t = strings.TrimPrefix(t, "-")
	sign := 1.0
	if neg {
		sign = -1
	}
	if v, ok := flow.ParseIntLiteral(t); ok {
		return sign * float64(v), true
	}
	t = strings.ReplaceAll(strings.TrimRight(t, "fFlL"), "'", "")
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return sign * f, true
}

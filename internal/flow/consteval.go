package flow

import (
	"strconv"
	"strings"

	"codan/internal/ast"
)

const maxConstDepth = 128

type constState uint8

const (
	constStateUnvisited constState = iota
	constStateVisiting
	constStateDone
)

type evaluator struct {
	b      *ast.Builder
	state  map[ast.BindingID]constState
	values map[ast.BindingID]int64
}

func newEvaluator(b *ast.Builder) *evaluator {
	return &evaluator{b: b, state: make(map[ast.BindingID]constState), values: make(map[ast.BindingID]int64)}
}

// ConstInt evaluates an integral constant expression: literals, enumerators,
// constexpr or const integral variables with initializers, and unary, binary
// and conditional operators over them.
func ConstInt(b *ast.Builder, e ast.ExprID) (int64, bool) {
	return newEvaluator(b).expr(e, 0)
}

func enumeratorValue(b *ast.Builder, bn ast.BindingID) (int64, bool) {
	return newEvaluator(b).binding(bn, 0)
}

func (ev *evaluator) expr(e ast.ExprID, depth int) (int64, bool) {
	if depth > maxConstDepth {
		return 0, false
	}
	x := ev.b.Exprs.Get(e)
	if x == nil {
		return 0, false
	}
	switch x.Kind {
	case ast.ExprLiteral:
		lit, _ := ev.b.Exprs.Literal(e)
		return literalValue(lit)
	case ast.ExprIdent:
		id, _ := ev.b.Exprs.Ident(e)
		return ev.binding(id.Binding, depth+1)
	case ast.ExprUnary:
		u, _ := ev.b.Exprs.Unary(e)
		v, ok := ev.expr(u.Operand, depth+1)
		if !ok {
			return 0, false
		}
		switch u.Op {
		case ast.UnaryParen, ast.UnaryPlus:
			return v, true
		case ast.UnaryMinus:
			return -v, true
		case ast.UnaryBitNot:
			return ^v, true
		case ast.UnaryNot:
			return boolInt(v == 0), true
		}
		return 0, false
	case ast.ExprBinary:
		bin, _ := ev.b.Exprs.Binary(e)
		l, ok := ev.expr(bin.Left, depth+1)
		if !ok {
			return 0, false
		}
		switch bin.Op {
		case ast.BinLogAnd:
			if l == 0 {
				return 0, true
			}
		case ast.BinLogOr:
			if l != 0 {
				return 1, true
			}
		}
		r, ok := ev.expr(bin.Right, depth+1)
		if !ok {
			return 0, false
		}
		return binaryValue(bin.Op, l, r)
	case ast.ExprConditional:
		c, _ := ev.b.Exprs.Conditional(e)
		v, ok := ev.expr(c.Cond, depth+1)
		if !ok {
			return 0, false
		}
		if v != 0 {
			return ev.expr(c.Then, depth+1)
		}
		return ev.expr(c.Else, depth+1)
	case ast.ExprCast:
		c, _ := ev.b.Exprs.Cast(e)
		if ev.b.IsFloating(c.Type) || ev.b.IsIndirect(c.Type) {
			return 0, false
		}
		return ev.expr(c.Operand, depth+1)
	}
	return 0, false
}

// binding evaluates enumerators and integral constants; cycles yield false.
func (ev *evaluator) binding(id ast.BindingID, depth int) (int64, bool) {
	bn := ev.b.Bindings.Get(id)
	if bn == nil || depth > maxConstDepth {
		return 0, false
	}
	switch ev.state[id] {
	case constStateDone:
		v, ok := ev.values[id]
		return v, ok
	case constStateVisiting:
		return 0, false
	}
	ev.state[id] = constStateVisiting
	v, ok := ev.bindingValue(bn, depth)
	ev.state[id] = constStateDone
	if ok {
		ev.values[id] = v
	}
	return v, ok
}

func (ev *evaluator) bindingValue(bn *ast.Binding, depth int) (int64, bool) {
	switch bn.Kind {
	case ast.BindEnumerator:
		data, ok := ev.b.Decls.Enumerator(bn.Decl)
		if !ok {
			return 0, false
		}
		if data.Value.IsValid() {
			return ev.expr(data.Value, depth+1)
		}
		en, ok := enumData(ev.b, bn.Owner)
		if !ok {
			return 0, false
		}
		prev := ast.NoDeclID
		for _, e := range en.Enumerators {
			if e == bn.Decl {
				break
			}
			prev = e
		}
		if !prev.IsValid() {
			return 0, true
		}
		v, ok := ev.binding(ev.b.Decls.Get(prev).Binding, depth+1)
		return v + 1, ok
	case ast.BindVariable:
		v, ok := ev.b.Decls.Var(bn.Decl)
		if !ok || !v.Init.IsValid() {
			return 0, false
		}
		_, q := ev.b.Canonical(v.Type)
		if !bn.Has(ast.FlagConstexpr) && q&ast.QualConst == 0 {
			return 0, false
		}
		if ev.b.IsFloating(v.Type) || ev.b.IsIndirect(v.Type) {
			return 0, false
		}
		return ev.expr(v.Init, depth+1)
	}
	return 0, false
}

func binaryValue(op ast.BinaryOp, l, r int64) (int64, bool) {
	switch op {
	case ast.BinAdd:
		return l + r, true
	case ast.BinSub:
		return l - r, true
	case ast.BinMul:
		return l * r, true
	case ast.BinDiv, ast.BinMod:
		if r == 0 {
			return 0, false
		}
		if op == ast.BinDiv {
			return l / r, true
		}
		return l % r, true
	case ast.BinShl, ast.BinShr:
		if r < 0 || r > 63 {
			return 0, false
		}
		if op == ast.BinShl {
			return l << uint(r), true
		}
		return l >> uint(r), true
	case ast.BinLt:
		return boolInt(l < r), true
	case ast.BinGt:
		return boolInt(l > r), true
	case ast.BinLe:
		return boolInt(l <= r), true
	case ast.BinGe:
		return boolInt(l >= r), true
	case ast.BinEq:
		return boolInt(l == r), true
	case ast.BinNe:
		return boolInt(l != r), true
	case ast.BinBitAnd:
		return l & r, true
	case ast.BinBitXor:
		return l ^ r, true
	case ast.BinBitOr:
		return l | r, true
	case ast.BinLogAnd:
		return boolInt(l != 0 && r != 0), true
	case ast.BinLogOr:
		return boolInt(l != 0 || r != 0), true
	case ast.BinComma:
		return r, true
	}
	return 0, false
}

func boolInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func literalValue(lit *ast.LiteralData) (int64, bool) {
	switch lit.Kind {
	case ast.LitBool:
		return boolInt(lit.Text == "true"), lit.Text == "true" || lit.Text == "false"
	case ast.LitInt:
		return ParseIntLiteral(lit.Text)
	case ast.LitChar:
		return parseCharLiteral(lit.Text)
	}
	return 0, false
}

// ParseIntLiteral parses a C/C++ integer literal with its suffixes and digit separators.
func ParseIntLiteral(text string) (int64, bool) {
	s := strings.TrimRight(text, "uUlLzZ")
	s = strings.ReplaceAll(s, "'", "")
	if s == "" || strings.Contains(s, "_") {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v, true
	}
	if u, err := strconv.ParseUint(s, 0, 64); err == nil {
		return int64(u), true //nolint:gosec // wraps like the unsigned C value
	}
	return 0, false
}

func parseCharLiteral(text string) (int64, bool) {
	start := strings.IndexByte(text, '\'')
	if start < 0 || len(text) < start+3 || text[len(text)-1] != '\'' {
		return 0, false
	}
	body := text[start+1 : len(text)-1]
	r, _, tail, err := strconv.UnquoteChar(body, '\'')
	if err != nil || tail != "" {
		return 0, false
	}
	return int64(r), true
}

package flow

import "codan/internal/ast"

// Section is one case or default label together with the statements that
// follow it up to the next label of the same switch.
type Section struct {
	Label ast.StmtID
	Stmts []ast.StmtID
	// Last is the last statement, NoStmtID for an empty section.
	Last ast.StmtID
	// Complete: the section cannot fall into the next one.
	Complete bool
}

// Empty reports a label immediately followed by another label or the end.
func (s Section) Empty() bool { return len(s.Stmts) == 0 }

// Sections splits the body of a switch analyzed as part of f.
// A section is complete when its last statement cannot complete normally
// (break, return, throw, continue, goto, a noreturn call or a compound
// statement ending so on every branch) or is a trailing [[fallthrough]].
func (f *Facts) Sections(sw ast.StmtID) []Section {
	data, ok := f.b.Stmts.Switch(sw)
	if !ok {
		return nil
	}
	blk, ok := f.b.Stmts.Block(data.Body)
	if !ok {
		return nil
	}
	var out []Section
	for _, s := range blk.Stmts {
		switch f.b.Stmts.Get(s).Kind {
		case ast.StmtCase, ast.StmtDefault:
			out = append(out, Section{Label: s})
			continue
		}
		if len(out) == 0 {
			continue // unreachable code before the first label
		}
		cur := &out[len(out)-1]
		cur.Stmts = append(cur.Stmts, s)
	}
	for i := range out {
		sec := &out[i]
		if len(sec.Stmts) == 0 {
			continue
		}
		sec.Last = sec.Stmts[len(sec.Stmts)-1]
		sec.Complete = !f.outcomes[sec.Last].normal || f.facts[sec.Last].Last == LastFallthrough
	}
	return out
}

// HasDefault reports a default label belonging to the switch.
func HasDefault(b *ast.Builder, sw ast.StmtID) bool {
	for _, l := range CaseLabels(b, sw) {
		if b.Stmts.Get(l).Kind == ast.StmtDefault {
			return true
		}
	}
	return false
}

// CaseLabels returns the case and default labels of a switch in source
// order, excluding labels of nested switches.
func CaseLabels(b *ast.Builder, sw ast.StmtID) []ast.StmtID {
	data, ok := b.Stmts.Switch(sw)
	if !ok {
		return nil
	}
	var out []ast.StmtID
	b.Inspect(ast.StmtRef(data.Body), func(n ast.NodeRef) bool {
		id, ok := n.Stmt()
		if !ok {
			return false
		}
		switch b.Stmts.Get(id).Kind {
		case ast.StmtSwitch:
			return false
		case ast.StmtCase, ast.StmtDefault:
			out = append(out, id)
		}
		return true
	})
	return out
}

// EnumCoverage returns the enumerators of an enum-typed switch condition that
// no case label names. isEnum is false for other conditions.
func EnumCoverage(b *ast.Builder, sw ast.StmtID) (missing []ast.BindingID, isEnum bool) {
	data, ok := b.Stmts.Switch(sw)
	if !ok {
		return nil, false
	}
	cond := b.Exprs.Get(b.StripParens(data.Cond))
	if cond == nil {
		return nil, false
	}
	enumBn, ok := b.EnumOf(cond.Type)
	if !ok {
		return nil, false
	}
	en, ok := enumData(b, enumBn)
	if !ok {
		return nil, false
	}
	covered := make(map[ast.BindingID]bool)
	values := make(map[int64]bool)
	for _, l := range CaseLabels(b, sw) {
		c, ok := b.Stmts.Case(l)
		if !ok {
			continue
		}
		if ref := b.Referenced(c.Value); ref.IsValid() {
			covered[ref] = true
		}
		if v, ok := ConstInt(b, c.Value); ok {
			values[v] = true
		}
	}
	for _, e := range en.Enumerators {
		bn := b.Decls.Get(e).Binding
		if covered[bn] {
			continue
		}
		if v, ok := enumeratorValue(b, bn); ok && values[v] {
			continue
		}
		missing = append(missing, bn)
	}
	return missing, true
}

func enumData(b *ast.Builder, enum ast.BindingID) (*ast.EnumData, bool) {
	bn := b.Bindings.Get(enum)
	if bn == nil {
		return nil, false
	}
	for _, d := range []ast.DeclID{bn.Def, bn.Decl} {
		if en, ok := b.Decls.Enum(d); ok {
			return en, true
		}
	}
	return nil, false
}

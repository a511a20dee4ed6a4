package symbols

import (
	"codan/internal/ast"
	"codan/internal/source"
)

// Lookup resolves name from scope outward. The first scope declaring the
// name hides every outer declaration of it, whatever their kinds.
func (t *Table) Lookup(scope ScopeID, name string) []ast.BindingID {
	return t.lookup(scope, name, source.Span{}, false)
}

// LookupAt is Lookup restricted, in block and namespace scopes, to
// declarations that precede at.
func (t *Table) LookupAt(scope ScopeID, name string, at source.Span) []ast.BindingID {
	return t.lookup(scope, name, at, true)
}

// LookupOuter resolves the name of decl starting above the scope that
// declares it, considering only declarations that precede decl.
func (t *Table) LookupOuter(decl ast.DeclID) []ast.BindingID {
	d := t.B.Decls.Get(decl)
	if d == nil || d.Name == "" {
		return nil
	}
	home := t.Scopes.Get(t.DeclScope(decl))
	if home == nil {
		return nil
	}
	return t.lookup(home.Parent, d.Name, d.NameSpan, true)
}

func (t *Table) lookup(scope ScopeID, name string, at source.Span, ordered bool) []ast.BindingID {
	for id := scope; id.IsValid(); {
		s := t.Scopes.Get(id)
		if found := t.visible(s.Names[name], at, ordered && s.Kind.ordered()); len(found) > 0 {
			return found
		}
		if s.Kind == ScopeClass {
			if found := t.lookupInBases(s.Binding, name); len(found) > 0 {
				return found
			}
		}
		for _, ns := range s.Using {
			if target, ok := t.ownerScope[ns]; ok {
				if found := t.Scopes.Get(target).Names[name]; len(found) > 0 {
					return found
				}
			}
		}
		id = s.Parent
	}
	return nil
}

func (t *Table) visible(bucket []ast.BindingID, at source.Span, ordered bool) []ast.BindingID {
	if !ordered {
		return bucket
	}
	var out []ast.BindingID
	for _, b := range bucket {
		bn := t.B.Bindings.Get(b)
		if bn != nil && bn.Span.File == at.File && bn.Span.Start > at.Start {
			continue
		}
		out = append(out, b)
	}
	return out
}

// lookupInBases searches base-class scopes nearest first.
func (t *Table) lookupInBases(class ast.BindingID, name string) []ast.BindingID {
	id, ok := t.Classes.Lookup(class)
	if !ok {
		return nil
	}
	ancestors, _ := t.Classes.Ancestors(id)
	for _, a := range ancestors {
		scope, ok := t.ownerScope[t.Classes.Node(a).Binding]
		if !ok {
			continue
		}
		if found := t.Scopes.Get(scope).Names[name]; len(found) > 0 {
			return found
		}
	}
	return nil
}

// IsMember reports whether b is a non-static field or method of class or of
// one of its bases.
func (t *Table) IsMember(b, class ast.BindingID) bool {
	bn := t.B.Bindings.Get(b)
	if bn == nil || bn.Has(ast.FlagStatic) {
		return false
	}
	if bn.Kind != ast.BindField && bn.Kind != ast.BindMethod {
		return false
	}
	if bn.Owner == class {
		return true
	}
	owner, ok := t.Classes.Lookup(bn.Owner)
	if !ok {
		return false
	}
	derived, ok := t.Classes.Lookup(class)
	return ok && t.Classes.IsBaseOf(owner, derived)
}

// EnclosingClass returns the class whose scope (directly or through an
// out-of-line member definition) contains ref.
func (t *Table) EnclosingClass(ref ast.NodeRef) (ast.BindingID, bool) {
	for _, s := range t.ScopeChain(ref) {
		if sc := t.Scopes.Get(s); sc.Kind == ScopeClass {
			return sc.Binding, true
		}
	}
	return ast.NoBindingID, false
}

package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"codan/internal/ast"
	"codan/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes uint }

// Options bound the class graph traversals.
type Options struct {
	Hints Hints
	// MaxBaseDepth caps base-class chains; deeper hierarchies are treated as incomplete.
	MaxBaseDepth int
	// MaxBaseVisits caps the number of subobjects enumerated per class.
	MaxBaseVisits int
}

const (
	DefaultMaxBaseDepth  = 64
	DefaultMaxBaseVisits = 4096
)

// Table is the scope tree of one translation unit plus its class graph.
// It is immutable after Build and safe for concurrent readers.
type Table struct {
	B       *ast.Builder
	File    ast.FileID
	Root    ScopeID
	Scopes  *Scopes
	Classes *Classes

	scopeOf    map[ast.NodeRef]ScopeID
	declScope  map[ast.DeclID]ScopeID
	ownerScope map[ast.BindingID]ScopeID
	classDecls []ast.DeclID
}

// Build walks a linked translation unit and declares every named entity in
// the scope that introduces it.
func Build(b *ast.Builder, file ast.FileID, opts Options) *Table {
	if opts.MaxBaseDepth <= 0 {
		opts.MaxBaseDepth = DefaultMaxBaseDepth
	}
	if opts.MaxBaseVisits <= 0 {
		opts.MaxBaseVisits = DefaultMaxBaseVisits
	}
	scopeCap, err := safecast.Conv[uint32](opts.Hints.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	t := &Table{
		B:          b,
		File:       file,
		Scopes:     NewScopes(scopeCap),
		scopeOf:    make(map[ast.NodeRef]ScopeID),
		declScope:  make(map[ast.DeclID]ScopeID),
		ownerScope: make(map[ast.BindingID]ScopeID),
	}
	unit := b.Files.Get(file)
	if unit == nil {
		t.Root = t.Scopes.New(ScopeFile, NoScopeID, ast.NodeRef{}, source.Span{})
		t.Classes = newClasses(t, opts)
		return t
	}
	t.Root = t.Scopes.New(ScopeFile, NoScopeID, ast.NodeRef{}, unit.Span)
	for _, d := range unit.Decls {
		t.visitDecl(d, t.Root, t.Root)
	}
	t.Classes = newClasses(t, opts)
	return t
}

func (t *Table) newScope(kind ScopeKind, parent ScopeID, owner ast.NodeRef) ScopeID {
	id := t.Scopes.New(kind, parent, owner, t.B.SpanOf(owner))
	t.scopeOf[owner] = id
	return id
}

func (t *Table) declare(scope ScopeID, decl ast.DeclID) {
	t.declScope[decl] = scope
	d := t.B.Decls.Get(decl)
	if d == nil || d.Name == "" || !d.Binding.IsValid() {
		return
	}
	t.Scopes.Get(scope).declare(d.Name, d.Binding)
}

// visitDecl declares decl in home and walks its contents inside scope.
// The two differ only for the entity wrapped by a template.
func (t *Table) visitDecl(id ast.DeclID, scope, home ScopeID) {
	decl := t.B.Decls.Get(id)
	if decl == nil {
		return
	}
	ref := ast.DeclRef(id)
	switch decl.Kind {
	case ast.DeclFunction:
		t.visitFunction(id, scope, home)
	case ast.DeclClass:
		t.declare(home, id)
		inner := t.newScope(ScopeClass, scope, ref)
		t.Scopes.Get(inner).Binding = decl.Binding
		if decl.Binding.IsValid() {
			t.ownerScope[decl.Binding] = inner
		}
		cls, _ := t.B.Decls.Class(id)
		if cls.Complete {
			t.classDecls = append(t.classDecls, id)
		}
		for _, m := range cls.Members {
			t.visitDecl(m, inner, inner)
		}
	case ast.DeclEnum:
		t.declare(home, id)
		en, _ := t.B.Decls.Enum(id)
		target := home
		if en.Scoped {
			target = t.newScope(ScopeEnum, scope, ref)
			t.Scopes.Get(target).Binding = decl.Binding
			if decl.Binding.IsValid() {
				t.ownerScope[decl.Binding] = target
			}
		}
		for _, e := range en.Enumerators {
			t.visitDecl(e, target, target)
		}
	case ast.DeclNamespace:
		ns, _ := t.B.Decls.Namespace(id)
		inner := home
		if decl.Binding.IsValid() {
			t.declare(home, id)
			if existing, ok := t.ownerScope[decl.Binding]; ok {
				inner = existing
				t.scopeOf[ref] = existing
			} else {
				inner = t.newScope(ScopeNamespace, scope, ref)
				t.Scopes.Get(inner).Binding = decl.Binding
				t.ownerScope[decl.Binding] = inner
			}
		}
		for _, d := range ns.Decls {
			t.visitDecl(d, inner, inner)
		}
	case ast.DeclUsingDirective:
		t.declScope[id] = home
		if u, ok := t.B.Decls.Using(id); ok && u.Target.IsValid() {
			s := t.Scopes.Get(home)
			s.Using = append(s.Using, u.Target)
		}
	case ast.DeclTemplate:
		t.declScope[id] = home
		tpl, _ := t.B.Decls.Template(id)
		inner := t.newScope(ScopeTemplate, scope, ref)
		for _, p := range tpl.Params {
			t.visitDecl(p, inner, inner)
		}
		t.visitDecl(tpl.Inner, inner, home)
	default:
		t.declare(home, id)
		for _, child := range t.B.Children(ref) {
			t.visit(child, scope)
		}
	}
}

func (t *Table) visitFunction(id ast.DeclID, scope, home ScopeID) {
	decl := t.B.Decls.Get(id)
	fn, _ := t.B.Decls.Function(id)
	parent := scope
	// out-of-line definitions are looked up from the owner's scope
	if bn := t.B.Bindings.Get(decl.Binding); bn != nil && bn.Owner.IsValid() && t.Scopes.Get(home).Binding != bn.Owner {
		t.declScope[id] = home
		if owner, ok := t.ownerScope[bn.Owner]; ok {
			parent = owner
		}
	} else {
		t.declare(home, id)
	}
	inner := t.newScope(ScopeFunction, parent, ast.DeclRef(id))
	for _, p := range fn.Params {
		t.visitDecl(p, inner, inner)
	}
	for _, init := range fn.Inits {
		for _, a := range init.Args {
			t.visit(ast.ExprRef(a), inner)
		}
	}
	t.visitBody(fn.Body, inner)
}

// visitBody walks a function or handler body; an outermost compound shares
// the scope of the parameters.
func (t *Table) visitBody(body ast.StmtID, scope ScopeID) {
	if !body.IsValid() {
		return
	}
	ref := ast.StmtRef(body)
	if t.B.Stmts.Get(body).Kind != ast.StmtCompound {
		t.visit(ref, scope)
		return
	}
	t.scopeOf[ref] = scope
	for _, child := range t.B.Children(ref) {
		t.visit(child, scope)
	}
}

func (t *Table) visit(ref ast.NodeRef, scope ScopeID) {
	switch ref.Kind {
	case ast.NodeDecl:
		t.visitDecl(ast.DeclID(ref.ID), scope, scope)
	case ast.NodeStmt:
		stmt := t.B.Stmts.Get(ast.StmtID(ref.ID))
		if stmt == nil {
			return
		}
		switch stmt.Kind {
		case ast.StmtCompound, ast.StmtIf, ast.StmtWhile, ast.StmtFor, ast.StmtRangeFor, ast.StmtSwitch:
			inner := t.newScope(ScopeBlock, scope, ref)
			for _, child := range t.B.Children(ref) {
				t.visit(child, inner)
			}
		case ast.StmtCatch:
			inner := t.newScope(ScopeBlock, scope, ref)
			c, _ := t.B.Stmts.Catch(ast.StmtID(ref.ID))
			if c.Param.IsValid() {
				t.visitDecl(c.Param, inner, inner)
			}
			t.visitBody(c.Body, inner)
		default:
			for _, child := range t.B.Children(ref) {
				t.visit(child, scope)
			}
		}
	case ast.NodeExpr:
		id := ast.ExprID(ref.ID)
		if l, ok := t.B.Exprs.Lambda(id); ok {
			inner := t.newScope(ScopeFunction, scope, ref)
			for _, p := range l.Params {
				t.visitDecl(p, inner, inner)
			}
			t.visitBody(l.Body, inner)
			return
		}
		for _, child := range t.B.Children(ref) {
			t.visit(child, scope)
		}
	}
}

// ScopeOf returns the scope a node introduces, if any.
func (t *Table) ScopeOf(ref ast.NodeRef) (ScopeID, bool) {
	id, ok := t.scopeOf[ref]
	return id, ok
}

// DeclScope returns the scope a declaration was declared in.
func (t *Table) DeclScope(decl ast.DeclID) ScopeID {
	return t.declScope[decl]
}

// OwnerScope returns the scope of a class, scoped enum or namespace binding.
func (t *Table) OwnerScope(b ast.BindingID) (ScopeID, bool) {
	id, ok := t.ownerScope[b]
	return id, ok
}

// Enclosing returns the innermost scope containing ref. For a declaration
// that is the scope it was declared in.
func (t *Table) Enclosing(ref ast.NodeRef) ScopeID {
	if id, ok := ref.Decl(); ok {
		if s, ok := t.declScope[id]; ok {
			return s
		}
	}
	for cur := t.B.ParentOf(ref); cur.IsValid(); cur = t.B.ParentOf(cur) {
		if s, ok := t.scopeOf[cur]; ok {
			return s
		}
	}
	return t.Root
}

// ScopeChain lists the scopes enclosing ref from innermost to the file scope.
func (t *Table) ScopeChain(ref ast.NodeRef) []ScopeID {
	var chain []ScopeID
	for s := t.Enclosing(ref); s.IsValid(); s = t.Scopes.Get(s).Parent {
		chain = append(chain, s)
	}
	return chain
}

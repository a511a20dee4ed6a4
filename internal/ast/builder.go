package ast

import "codan/internal/source"

type Hints struct{ Files, Decls, Stmts, Exprs, Types, Bindings uint }

// Builder owns every arena of a resolved AST. The engine treats a linked
// Builder as read-only.
type Builder struct {
	Files    *Files
	Decls    *Decls
	Stmts    *Stmts
	Exprs    *Exprs
	Types    *Types
	Bindings *Bindings
	Macros   *Macros
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 2
	}
	if hints.Decls == 0 {
		hints.Decls = 1 << 7
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Types == 0 {
		hints.Types = 1 << 6
	}
	if hints.Bindings == 0 {
		hints.Bindings = 1 << 7
	}
	return &Builder{
		Files:    NewFiles(hints.Files),
		Decls:    NewDecls(hints.Decls),
		Stmts:    NewStmts(hints.Stmts),
		Exprs:    NewExprs(hints.Exprs),
		Types:    NewTypes(hints.Types),
		Bindings: NewBindings(hints.Bindings),
		Macros:   NewMacros(1 << 3),
	}
}

func (b *Builder) NewFile(path string, sp source.Span, lang Lang) FileID {
	return b.Files.New(path, sp, lang)
}

func (b *Builder) PushDecl(file FileID, decl DeclID) {
	f := b.Files.Get(file)
	f.Decls = append(f.Decls, decl)
}

// NewMacro records an expansion inside file.
func (b *Builder) NewMacro(file FileID, m MacroExpansion) MacroID {
	id := MacroID(b.Macros.Arena.Allocate(m))
	f := b.Files.Get(file)
	f.Macros = append(f.Macros, id)
	return id
}

// MarkMacro tags ref and all its descendants as produced by macro expansion m.
func (b *Builder) MarkMacro(ref NodeRef, m MacroID) {
	b.Inspect(ref, func(n NodeRef) bool {
		switch n.Kind {
		case NodeDecl:
			b.Decls.Get(DeclID(n.ID)).Macro = m
		case NodeStmt:
			b.Stmts.Get(StmtID(n.ID)).Macro = m
		case NodeExpr:
			b.Exprs.Get(ExprID(n.ID)).Macro = m
		}
		return true
	})
}

// Link fills Parent references for every node reachable from the file.
// It must run once after construction and before analysis.
func (b *Builder) Link(file FileID) {
	f := b.Files.Get(file)
	if f == nil {
		return
	}
	var visit func(ref, parent NodeRef)
	visit = func(ref, parent NodeRef) {
		b.setParent(ref, parent)
		for _, child := range b.Children(ref) {
			visit(child, ref)
		}
	}
	for _, d := range f.Decls {
		visit(DeclRef(d), NodeRef{})
	}
}

func (b *Builder) setParent(ref, parent NodeRef) {
	switch ref.Kind {
	case NodeDecl:
		if d := b.Decls.Get(DeclID(ref.ID)); d != nil {
			d.Parent = parent
		}
	case NodeStmt:
		if s := b.Stmts.Get(StmtID(ref.ID)); s != nil {
			s.Parent = parent
		}
	case NodeExpr:
		if e := b.Exprs.Get(ExprID(ref.ID)); e != nil {
			e.Parent = parent
		}
	}
}

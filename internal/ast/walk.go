package ast

import "codan/internal/source"

// Children returns the direct children of ref in source order.
func (b *Builder) Children(ref NodeRef) []NodeRef {
	var out []NodeRef
	addDecl := func(id DeclID) {
		if id.IsValid() {
			out = append(out, DeclRef(id))
		}
	}
	addStmt := func(id StmtID) {
		if id.IsValid() {
			out = append(out, StmtRef(id))
		}
	}
	addExpr := func(id ExprID) {
		if id.IsValid() {
			out = append(out, ExprRef(id))
		}
	}

	switch ref.Kind {
	case NodeDecl:
		id := DeclID(ref.ID)
		decl := b.Decls.Get(id)
		if decl == nil {
			return nil
		}
		switch decl.Kind {
		case DeclFunction:
			fn, _ := b.Decls.Function(id)
			for _, p := range fn.Params {
				addDecl(p)
			}
			for _, init := range fn.Inits {
				for _, a := range init.Args {
					addExpr(a)
				}
			}
			addStmt(fn.Body)
		case DeclVariable, DeclField, DeclParam:
			v, _ := b.Decls.Var(id)
			addExpr(v.Init)
		case DeclClass:
			cls, _ := b.Decls.Class(id)
			for _, m := range cls.Members {
				addDecl(m)
			}
		case DeclEnum:
			en, _ := b.Decls.Enum(id)
			for _, e := range en.Enumerators {
				addDecl(e)
			}
		case DeclEnumerator:
			en, _ := b.Decls.Enumerator(id)
			addExpr(en.Value)
		case DeclNamespace:
			ns, _ := b.Decls.Namespace(id)
			for _, d := range ns.Decls {
				addDecl(d)
			}
		case DeclTemplate:
			tpl, _ := b.Decls.Template(id)
			for _, p := range tpl.Params {
				addDecl(p)
			}
			addDecl(tpl.Inner)
		case DeclTypedef, DeclUsingDirective, DeclTemplateParam, DeclProblem:
		}
	case NodeStmt:
		id := StmtID(ref.ID)
		stmt := b.Stmts.Get(id)
		if stmt == nil {
			return nil
		}
		switch stmt.Kind {
		case StmtCompound:
			blk, _ := b.Stmts.Block(id)
			for _, s := range blk.Stmts {
				addStmt(s)
			}
		case StmtDecl:
			ds, _ := b.Stmts.DeclStmt(id)
			for _, d := range ds.Decls {
				addDecl(d)
			}
		case StmtExpr, StmtReturn:
			es, _ := b.Stmts.Expr(id)
			addExpr(es.Expr)
		case StmtIf:
			ifs, _ := b.Stmts.If(id)
			addStmt(ifs.Init)
			addDecl(ifs.CondDecl)
			addExpr(ifs.Cond)
			addStmt(ifs.Then)
			addStmt(ifs.Else)
		case StmtWhile:
			loop, _ := b.Stmts.Loop(id)
			addDecl(loop.CondDecl)
			addExpr(loop.Cond)
			addStmt(loop.Body)
		case StmtDo:
			loop, _ := b.Stmts.Loop(id)
			addStmt(loop.Body)
			addExpr(loop.Cond)
		case StmtFor:
			f, _ := b.Stmts.For(id)
			addStmt(f.Init)
			addExpr(f.Cond)
			addExpr(f.Iter)
			addStmt(f.Body)
		case StmtRangeFor:
			f, _ := b.Stmts.RangeFor(id)
			addDecl(f.Var)
			addExpr(f.Range)
			addStmt(f.Body)
		case StmtSwitch:
			sw, _ := b.Stmts.Switch(id)
			addStmt(sw.Init)
			addExpr(sw.Cond)
			addStmt(sw.Body)
		case StmtCase:
			c, _ := b.Stmts.Case(id)
			addExpr(c.Value)
		case StmtLabel:
			l, _ := b.Stmts.Label(id)
			addStmt(l.Body)
		case StmtTry:
			t, _ := b.Stmts.Try(id)
			addStmt(t.Body)
			for _, h := range t.Handlers {
				addStmt(h)
			}
		case StmtCatch:
			c, _ := b.Stmts.Catch(id)
			addDecl(c.Param)
			addStmt(c.Body)
		case StmtGoto, StmtBreak, StmtContinue, StmtDefault, StmtNull, StmtProblem:
		}
	case NodeExpr:
		id := ExprID(ref.ID)
		expr := b.Exprs.Get(id)
		if expr == nil {
			return nil
		}
		switch expr.Kind {
		case ExprUnary:
			u, _ := b.Exprs.Unary(id)
			addExpr(u.Operand)
		case ExprBinary:
			bin, _ := b.Exprs.Binary(id)
			addExpr(bin.Left)
			addExpr(bin.Right)
		case ExprConditional:
			c, _ := b.Exprs.Conditional(id)
			addExpr(c.Cond)
			addExpr(c.Then)
			addExpr(c.Else)
		case ExprCall:
			c, _ := b.Exprs.Call(id)
			addExpr(c.Callee)
			for _, a := range c.Args {
				addExpr(a)
			}
		case ExprMember:
			m, _ := b.Exprs.Member(id)
			addExpr(m.Base)
		case ExprCast:
			c, _ := b.Exprs.Cast(id)
			addExpr(c.Operand)
		case ExprNew:
			n, _ := b.Exprs.New(id)
			for _, a := range n.Args {
				addExpr(a)
			}
		case ExprDelete:
			d, _ := b.Exprs.Delete(id)
			addExpr(d.Operand)
		case ExprSubscript:
			s, _ := b.Exprs.Subscript(id)
			addExpr(s.Base)
			addExpr(s.Index)
		case ExprThrow, ExprSizeof:
			o, _ := b.Exprs.Operand(id)
			addExpr(o.Operand)
		case ExprLambda:
			l, _ := b.Exprs.Lambda(id)
			for _, p := range l.Params {
				addDecl(p)
			}
			addStmt(l.Body)
		case ExprList:
			l, _ := b.Exprs.List(id)
			for _, it := range l.Items {
				addExpr(it)
			}
		case ExprIdent, ExprLiteral, ExprThis, ExprProblem:
		}
	}
	return out
}

// Inspect walks the subtree rooted at ref in pre-order. When fn returns false
// the children of that node are skipped.
func (b *Builder) Inspect(ref NodeRef, fn func(NodeRef) bool) {
	if !ref.IsValid() || !fn(ref) {
		return
	}
	for _, child := range b.Children(ref) {
		b.Inspect(child, fn)
	}
}

// InspectFile walks every top-level declaration of file.
func (b *Builder) InspectFile(file FileID, fn func(NodeRef) bool) {
	f := b.Files.Get(file)
	if f == nil {
		return
	}
	for _, d := range f.Decls {
		b.Inspect(DeclRef(d), fn)
	}
}

// SpanOf returns the source range of any node.
func (b *Builder) SpanOf(ref NodeRef) source.Span {
	switch ref.Kind {
	case NodeDecl:
		if d := b.Decls.Get(DeclID(ref.ID)); d != nil {
			return d.Span
		}
	case NodeStmt:
		if s := b.Stmts.Get(StmtID(ref.ID)); s != nil {
			return s.Span
		}
	case NodeExpr:
		if e := b.Exprs.Get(ExprID(ref.ID)); e != nil {
			return e.Span
		}
	}
	return source.Span{}
}

// ParentOf returns the parent link set by Link.
func (b *Builder) ParentOf(ref NodeRef) NodeRef {
	switch ref.Kind {
	case NodeDecl:
		if d := b.Decls.Get(DeclID(ref.ID)); d != nil {
			return d.Parent
		}
	case NodeStmt:
		if s := b.Stmts.Get(StmtID(ref.ID)); s != nil {
			return s.Parent
		}
	case NodeExpr:
		if e := b.Exprs.Get(ExprID(ref.ID)); e != nil {
			return e.Parent
		}
	}
	return NodeRef{}
}

// MacroOf returns the macro expansion that produced ref, if any.
func (b *Builder) MacroOf(ref NodeRef) MacroID {
	switch ref.Kind {
	case NodeDecl:
		if d := b.Decls.Get(DeclID(ref.ID)); d != nil {
			return d.Macro
		}
	case NodeStmt:
		if s := b.Stmts.Get(StmtID(ref.ID)); s != nil {
			return s.Macro
		}
	case NodeExpr:
		if e := b.Exprs.Get(ExprID(ref.ID)); e != nil {
			return e.Macro
		}
	}
	return NoMacroID
}

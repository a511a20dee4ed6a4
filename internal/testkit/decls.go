package testkit

import (
	"slices"

	"codan/internal/ast"
	"codan/internal/source"
)

// Class is a handle on a class under construction.
type Class struct {
	f       *Fixture
	Decl    ast.DeclID
	Binding ast.BindingID
}

// Base describes one base-specifier.
type Base struct {
	Class   *Class
	Virtual bool
	Span    source.Span
}

// Class declares a complete top-level class whose name is searched inside span.
func (f *Fixture) Class(name string, span source.Span, key ast.ClassKey, bases ...Base) *Class {
	nameSpan := f.Word(span, name)
	bn := f.B.Bindings.New(ast.Binding{Kind: ast.BindClass, Name: name, Span: nameSpan})
	specs := make([]ast.BaseSpec, 0, len(bases))
	for _, base := range bases {
		specs = append(specs, ast.BaseSpec{Span: base.Span, Class: base.Class.Binding, Virtual: base.Virtual, Access: ast.AccessPublic})
	}
	decl := f.B.Decls.NewClass(ast.DeclHead{Span: span, NameSpan: nameSpan, Name: name, Binding: bn},
		ast.ClassData{Key: key, Bases: specs, Complete: true})
	b := f.B.Bindings.Get(bn)
	b.Decl, b.Def = decl, decl
	b.Type = f.B.Types.NewNamed(ast.TypeClass, bn, name)
	f.Top(decl)
	return &Class{f: f, Decl: decl, Binding: bn}
}

// Data returns the mutable class payload.
func (c *Class) Data() *ast.ClassData {
	data, _ := c.f.B.Decls.Class(c.Decl)
	return data
}

func (c *Class) qualify(name string) string {
	return c.f.B.Bindings.Get(c.Binding).Qualified + "::" + name
}

func (c *Class) push(decl ast.DeclID) {
	data := c.Data()
	data.Members = append(data.Members, decl)
}

// Field declares a non-static data member. Its name is searched inside span.
func (c *Class) Field(name string, span source.Span, typ ast.TypeID) ast.DeclID {
	return c.FieldWith(name, span, ast.VarData{Type: typ})
}

// FieldWith declares a data member with explicit storage, flags and initializer.
func (c *Class) FieldWith(name string, span source.Span, data ast.VarData) ast.DeclID {
	f := c.f
	nameSpan := f.Word(span, name)
	var flags ast.BindFlags
	if data.Storage == ast.StorageStatic {
		flags |= ast.FlagStatic
	}
	if data.Flags&ast.VarMutable != 0 {
		flags |= ast.FlagMutable
	}
	bn := f.B.Bindings.New(ast.Binding{
		Kind: ast.BindField, Name: name, Qualified: c.qualify(name), Owner: c.Binding,
		Type: data.Type, Flags: flags, Span: nameSpan,
	})
	decl := f.B.Decls.NewVar(ast.DeclField, ast.DeclHead{Span: span, NameSpan: nameSpan, Name: name, Binding: bn, Access: ast.AccessPublic}, data)
	b := f.B.Bindings.Get(bn)
	b.Decl, b.Def = decl, decl
	c.push(decl)
	return decl
}

// Method declares a member function. body may be ast.NoStmtID for a declaration.
func (c *Class) Method(name string, span source.Span, ret ast.TypeID, flags ast.FnFlags, params []ast.DeclID, body ast.StmtID) ast.DeclID {
	return c.member(name, c.f.Word(span, name), span, ast.FunctionData{Return: ret, Params: params, Body: body, Flags: flags})
}

// Ctor declares a constructor; its name span is the class name inside span.
func (c *Class) Ctor(span source.Span, flags ast.FnFlags, params []ast.DeclID, inits []ast.CtorInit, body ast.StmtID) ast.DeclID {
	name := c.f.B.Bindings.Get(c.Binding).Name
	return c.member(name, c.f.Word(span, name), span, ast.FunctionData{
		Params: params, Body: body, Flags: flags, Special: ast.FnConstructor, Inits: inits,
	})
}

// Dtor declares a destructor.
func (c *Class) Dtor(span source.Span, flags ast.FnFlags, body ast.StmtID) ast.DeclID {
	name := "~" + c.f.B.Bindings.Get(c.Binding).Name
	return c.member(name, c.f.Word(span, name), span, ast.FunctionData{Body: body, Flags: flags, Special: ast.FnDestructor})
}

func (c *Class) member(name string, nameSpan, span source.Span, data ast.FunctionData) ast.DeclID {
	f := c.f
	data.Owner = c.Binding
	bn := f.B.Bindings.New(ast.Binding{
		Kind: ast.BindMethod, Name: name, Qualified: c.qualify(name), Owner: c.Binding,
		Type: data.Return, Flags: data.Flags.BindFlags(), Span: nameSpan,
	})
	decl := f.B.Decls.NewFunction(ast.DeclHead{Span: span, NameSpan: nameSpan, Name: name, Binding: bn, Access: ast.AccessPublic}, data)
	b := f.B.Bindings.Get(bn)
	b.Decl = decl
	if data.Body.IsValid() {
		b.Def = decl
	}
	c.push(decl)
	return decl
}

// Define adds an out-of-line definition for an in-class method declaration.
func (f *Fixture) Define(method ast.DeclID, span source.Span, params []ast.DeclID, body ast.StmtID) ast.DeclID {
	inClass := f.B.Decls.Get(method)
	proto, _ := f.B.Decls.Function(method)
	data := *proto
	data.Params, data.Body = params, body
	data.Flags &^= ast.FnVirtual | ast.FnPure | ast.FnStatic | ast.FnOverride
	nameSpan := f.Word(span, inClass.Name)
	decl := f.B.Decls.NewFunction(ast.DeclHead{Span: span, NameSpan: nameSpan, Name: inClass.Name, Binding: inClass.Binding}, data)
	f.B.Bindings.Get(inClass.Binding).Def = decl
	f.Top(decl)
	return decl
}

// Func declares a top-level function.
func (f *Fixture) Func(name string, span source.Span, ret ast.TypeID, flags ast.FnFlags, params []ast.DeclID, body ast.StmtID) ast.DeclID {
	nameSpan := f.Word(span, name)
	bn := f.B.Bindings.New(ast.Binding{Kind: ast.BindFunction, Name: name, Type: ret, Flags: flags.BindFlags(), Span: nameSpan})
	decl := f.B.Decls.NewFunction(ast.DeclHead{Span: span, NameSpan: nameSpan, Name: name, Binding: bn},
		ast.FunctionData{Return: ret, Params: params, Body: body, Flags: flags})
	b := f.B.Bindings.Get(bn)
	b.Decl = decl
	if body.IsValid() {
		b.Def = decl
	}
	f.Top(decl)
	return decl
}

// ExternFunc creates a binding for a function declared outside the unit.
func (f *Fixture) ExternFunc(name string, ret ast.TypeID, flags ast.BindFlags) ast.BindingID {
	return f.B.Bindings.New(ast.Binding{Kind: ast.BindFunction, Name: name, Type: ret, Flags: flags | ast.FlagExtern})
}

// Param declares a function parameter.
func (f *Fixture) Param(name string, span source.Span, typ ast.TypeID) ast.DeclID {
	return f.variable(ast.DeclParam, ast.BindParameter, name, span, ast.VarData{Type: typ})
}

// Local declares a block-scope variable; wrap it with DeclStmt.
func (f *Fixture) Local(name string, span source.Span, typ ast.TypeID, init ast.ExprID) ast.DeclID {
	return f.variable(ast.DeclVariable, ast.BindVariable, name, span, ast.VarData{Type: typ, Init: init})
}

// LocalWith declares a block-scope variable with explicit storage and flags.
func (f *Fixture) LocalWith(name string, span source.Span, data ast.VarData) ast.DeclID {
	return f.variable(ast.DeclVariable, ast.BindVariable, name, span, data)
}

// Global declares a namespace-scope variable.
func (f *Fixture) Global(name string, span source.Span, data ast.VarData) ast.DeclID {
	decl := f.variable(ast.DeclVariable, ast.BindVariable, name, span, data)
	f.Top(decl)
	return decl
}

func (f *Fixture) variable(kind ast.DeclKind, bk ast.BindingKind, name string, span source.Span, data ast.VarData) ast.DeclID {
	nameSpan := f.Word(span, name)
	var flags ast.BindFlags
	switch data.Storage {
	case ast.StorageStatic:
		flags |= ast.FlagStatic
	case ast.StorageExtern:
		flags |= ast.FlagExtern
	}
	if data.Flags&ast.VarConstexpr != 0 {
		flags |= ast.FlagConstexpr
	}
	bn := f.B.Bindings.New(ast.Binding{Kind: bk, Name: name, Type: data.Type, Flags: flags, Span: nameSpan})
	decl := f.B.Decls.NewVar(kind, ast.DeclHead{Span: span, NameSpan: nameSpan, Name: name, Binding: bn}, data)
	b := f.B.Bindings.Get(bn)
	b.Decl, b.Def = decl, decl
	return decl
}

// Binding returns the binding declared by decl.
func (f *Fixture) Binding(decl ast.DeclID) ast.BindingID {
	return f.B.Decls.Get(decl).Binding
}

// Group marks declarators as belonging to one declaration.
func (f *Fixture) Group(decls ...ast.DeclID) {
	g := f.NextGroup()
	for _, d := range decls {
		f.B.Decls.Get(d).Group = g
	}
}

// Enum is a handle on an enumeration.
type Enum struct {
	f           *Fixture
	Decl        ast.DeclID
	Binding     ast.BindingID
	Enumerators []ast.BindingID
	cursor      source.Span
}

// Enum declares a top-level enumeration.
func (f *Fixture) Enum(name string, span source.Span, scoped bool) *Enum {
	nameSpan := f.Word(span, name)
	bn := f.B.Bindings.New(ast.Binding{Kind: ast.BindEnum, Name: name, Span: nameSpan})
	decl := f.B.Decls.NewEnum(ast.DeclHead{Span: span, NameSpan: nameSpan, Name: name, Binding: bn}, ast.EnumData{Scoped: scoped})
	b := f.B.Bindings.Get(bn)
	b.Decl, b.Def = decl, decl
	b.Type = f.B.Types.NewNamed(ast.TypeEnum, bn, name)
	f.Top(decl)
	rest := span
	rest.Start = nameSpan.End
	return &Enum{f: f, Decl: decl, Binding: bn, cursor: rest}
}

// Add appends enumerators, searched in order after the previous one.
func (e *Enum) Add(names ...string) *Enum {
	for _, name := range names {
		e.AddValue(name, ast.NoExprID)
	}
	return e
}

// AddValue appends one enumerator with an explicit value expression.
func (e *Enum) AddValue(name string, value ast.ExprID) ast.BindingID {
	f := e.f
	nameSpan := f.Word(e.cursor, name)
	span := nameSpan
	if value.IsValid() {
		span = span.Cover(f.B.Exprs.Get(value).Span)
	}
	e.cursor.Start = span.End
	enumBn := f.B.Bindings.Get(e.Binding)
	qualified := name
	data, _ := f.B.Decls.Enum(e.Decl)
	if data.Scoped {
		qualified = enumBn.Name + "::" + name
	}
	bn := f.B.Bindings.New(ast.Binding{Kind: ast.BindEnumerator, Name: name, Qualified: qualified, Owner: e.Binding, Type: enumBn.Type, Span: nameSpan})
	decl := f.B.Decls.NewEnumerator(ast.DeclHead{Span: span, NameSpan: nameSpan, Name: name, Binding: bn}, value)
	f.B.Bindings.Get(bn).Decl = decl
	data.Enumerators = append(data.Enumerators, decl)
	e.Enumerators = append(e.Enumerators, bn)
	return bn
}

// Typedef declares a top-level alias.
func (f *Fixture) Typedef(name string, span source.Span, typ ast.TypeID) ast.BindingID {
	nameSpan := f.Word(span, name)
	bn := f.B.Bindings.New(ast.Binding{Kind: ast.BindTypedef, Name: name, Type: typ, Span: nameSpan})
	decl := f.B.Decls.NewTypedef(ast.DeclHead{Span: span, NameSpan: nameSpan, Name: name, Binding: bn}, typ)
	f.B.Bindings.Get(bn).Decl = decl
	f.Top(decl)
	return bn
}

// Namespace wraps decls (removing them from the top level) in a namespace.
func (f *Fixture) Namespace(name string, span source.Span, decls ...ast.DeclID) ast.DeclID {
	head := ast.DeclHead{Span: span, Name: name}
	if name != "" {
		head.NameSpan = f.Word(span, name)
		head.Binding = f.B.Bindings.New(ast.Binding{Kind: ast.BindNamespace, Name: name, Span: head.NameSpan})
	}
	f.detach(decls...)
	decl := f.B.Decls.NewNamespace(head, ast.NamespaceData{Decls: decls})
	if head.Binding.IsValid() {
		f.B.Bindings.Get(head.Binding).Decl = decl
		for _, d := range decls {
			if bn := f.B.Bindings.Get(f.B.Decls.Get(d).Binding); bn != nil && !bn.Owner.IsValid() {
				bn.Owner = head.Binding
				bn.Qualified = name + "::" + bn.Qualified
			}
		}
	}
	f.Top(decl)
	return decl
}

// UsingNamespace adds `using namespace name;` at the top level.
func (f *Fixture) UsingNamespace(name string, span source.Span, target ast.BindingID) ast.DeclID {
	decl := f.B.Decls.NewUsingDirective(ast.DeclHead{Span: span, NameSpan: f.Word(span, name), Name: name}, target)
	f.Top(decl)
	return decl
}

// TemplateParam declares a type template parameter.
func (f *Fixture) TemplateParam(name string, span source.Span) (ast.DeclID, ast.BindingID) {
	nameSpan := f.Word(span, name)
	bn := f.B.Bindings.New(ast.Binding{Kind: ast.BindTemplateParam, Name: name, Span: nameSpan})
	decl := f.B.Decls.NewTemplateParam(ast.DeclHead{Span: span, NameSpan: nameSpan, Name: name, Binding: bn})
	f.B.Bindings.Get(bn).Decl = decl
	return decl, bn
}

// Template wraps inner (removed from the top level) in a template declaration.
func (f *Fixture) Template(span source.Span, params []ast.DeclID, inner ast.DeclID) ast.DeclID {
	f.detach(inner)
	decl := f.B.Decls.NewTemplate(ast.DeclHead{Span: span}, ast.TemplateData{Params: params, Inner: inner})
	f.Top(decl)
	return decl
}

func (f *Fixture) detach(decls ...ast.DeclID) {
	unit := f.B.Files.Get(f.Unit)
	unit.Decls = slices.DeleteFunc(unit.Decls, func(d ast.DeclID) bool {
		return slices.Contains(decls, d)
	})
}

package testkit

import "codan/internal/ast"

func (f *Fixture) TBuiltin(k ast.BuiltinKind) ast.TypeID { return f.B.Types.NewBuiltin(k) }

func (f *Fixture) TVoid() ast.TypeID   { return f.TBuiltin(ast.BuiltinVoid) }
func (f *Fixture) TInt() ast.TypeID    { return f.TBuiltin(ast.BuiltinInt) }
func (f *Fixture) TBool() ast.TypeID   { return f.TBuiltin(ast.BuiltinBool) }
func (f *Fixture) TChar() ast.TypeID   { return f.TBuiltin(ast.BuiltinChar) }
func (f *Fixture) TDouble() ast.TypeID { return f.TBuiltin(ast.BuiltinDouble) }
func (f *Fixture) TFloat() ast.TypeID  { return f.TBuiltin(ast.BuiltinFloat) }

func (f *Fixture) TAuto() ast.TypeID { return f.B.Types.New(ast.Type{Kind: ast.TypeAuto}) }

func (f *Fixture) TPtr(elem ast.TypeID) ast.TypeID { return f.B.Types.NewPointer(elem) }
func (f *Fixture) TRef(elem ast.TypeID) ast.TypeID { return f.B.Types.NewRef(elem) }

func (f *Fixture) TArray(elem ast.TypeID, n int64) ast.TypeID { return f.B.Types.NewArray(elem, n) }

func (f *Fixture) TConst(t ast.TypeID) ast.TypeID { return f.B.Types.NewQualified(t, ast.QualConst) }

// TClass returns the type naming a class handle.
func (f *Fixture) TClass(c *Class) ast.TypeID {
	return f.B.Types.NewNamed(ast.TypeClass, c.Binding, f.B.Bindings.Get(c.Binding).Qualified)
}

// TNamed returns a class, enum, typedef or template-parameter type for a binding.
func (f *Fixture) TNamed(kind ast.TypeKind, b ast.BindingID) ast.TypeID {
	return f.B.Types.NewNamed(kind, b, f.B.Bindings.Get(b).Qualified)
}

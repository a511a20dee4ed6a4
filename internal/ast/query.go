package ast

import "strings"

// Canonical strips typedefs and returns the underlying type with accumulated cv-qualifiers.
func (b *Builder) Canonical(t TypeID) (TypeID, Qual) {
	return b.Types.Canonical(t, b.aliasOf)
}

func (b *Builder) aliasOf(id BindingID) TypeID {
	bn := b.Bindings.Get(id)
	if bn == nil || bn.Kind != BindTypedef {
		return NoTypeID
	}
	return bn.Type
}

// CanonicalType is Canonical without the qualifiers, dereferencing the id.
func (b *Builder) CanonicalType(t TypeID) *Type {
	id, _ := b.Canonical(t)
	return b.Types.Get(id)
}

// IsVoid reports a (possibly typedef'd) void type.
func (b *Builder) IsVoid(t TypeID) bool {
	typ := b.CanonicalType(t)
	return typ != nil && typ.Kind == TypeBuiltin && typ.Builtin == BuiltinVoid
}

// IsFloating reports float, double and long double.
func (b *Builder) IsFloating(t TypeID) bool {
	typ := b.CanonicalType(t)
	if typ == nil || typ.Kind != TypeBuiltin {
		return false
	}
	switch typ.Builtin {
	case BuiltinFloat, BuiltinDouble, BuiltinLongDouble:
		return true
	}
	return false
}

// IsIndirect reports pointers, references and member pointers.
func (b *Builder) IsIndirect(t TypeID) bool {
	typ := b.CanonicalType(t)
	return typ != nil && isDeclaratorKind(typ.Kind)
}

// IsReference reports lvalue and rvalue references.
func (b *Builder) IsReference(t TypeID) bool {
	typ := b.CanonicalType(t)
	return typ != nil && (typ.Kind == TypeLValueRef || typ.Kind == TypeRValueRef)
}

// ClassOf returns the class binding of a class type, looking through
// typedefs, cv-qualifiers and (when arrays is set) array element types.
func (b *Builder) ClassOf(t TypeID, arrays bool) (BindingID, bool) {
	for range maxTypedefDepth {
		typ := b.CanonicalType(t)
		if typ == nil {
			return NoBindingID, false
		}
		switch {
		case typ.Kind == TypeClass:
			return typ.Binding, typ.Binding.IsValid()
		case typ.Kind == TypeArray && arrays:
			t = typ.Elem
		default:
			return NoBindingID, false
		}
	}
	return NoBindingID, false
}

// EnumOf returns the enum binding of an enum type.
func (b *Builder) EnumOf(t TypeID) (BindingID, bool) {
	typ := b.CanonicalType(t)
	if typ == nil || typ.Kind != TypeEnum {
		return NoBindingID, false
	}
	return typ.Binding, typ.Binding.IsValid()
}

// StripParens removes parenthesized primaries.
func (b *Builder) StripParens(e ExprID) ExprID {
	for {
		u, ok := b.Exprs.Unary(e)
		if !ok || u.Op != UnaryParen {
			return e
		}
		e = u.Operand
	}
}

// StripParensCasts removes parentheses and casts of every kind.
func (b *Builder) StripParensCasts(e ExprID) ExprID {
	for {
		e = b.StripParens(e)
		c, ok := b.Exprs.Cast(e)
		if !ok {
			return e
		}
		e = c.Operand
	}
}

// Referenced returns the binding named by an identifier or member expression.
func (b *Builder) Referenced(e ExprID) BindingID {
	e = b.StripParens(e)
	if id, ok := b.Exprs.Ident(e); ok {
		return id.Binding
	}
	if m, ok := b.Exprs.Member(e); ok {
		return m.Binding
	}
	return NoBindingID
}

// Callee returns the binding a call expression invokes.
func (b *Builder) Callee(call ExprID) BindingID {
	c, ok := b.Exprs.Call(call)
	if !ok {
		return NoBindingID
	}
	return b.Referenced(c.Callee)
}

// FunctionOf returns the function declaration a binding is defined by,
// falling back to its first declaration.
func (b *Builder) FunctionOf(id BindingID) (DeclID, *FunctionData, bool) {
	bn := b.Bindings.Get(id)
	if bn == nil {
		return NoDeclID, nil, false
	}
	for _, d := range []DeclID{bn.Def, bn.Decl} {
		if fn, ok := b.Decls.Function(d); ok {
			return d, fn, true
		}
	}
	return NoDeclID, nil, false
}

// ClassDecl returns the defining class declaration of a class binding.
func (b *Builder) ClassDecl(id BindingID) (DeclID, *ClassData, bool) {
	bn := b.Bindings.Get(id)
	if bn == nil || bn.Kind != BindClass {
		return NoDeclID, nil, false
	}
	for _, d := range []DeclID{bn.Def, bn.Decl} {
		if cls, ok := b.Decls.Class(d); ok && cls.Complete {
			return d, cls, true
		}
	}
	return NoDeclID, nil, false
}

// EnclosingFunction returns the innermost function declaration containing ref.
func (b *Builder) EnclosingFunction(ref NodeRef) DeclID {
	for cur := ref; cur.IsValid(); cur = b.ParentOf(cur) {
		if id, ok := cur.Decl(); ok && b.Decls.Get(id).Kind == DeclFunction {
			return id
		}
	}
	return NoDeclID
}

// EnclosingStatement returns the innermost non-compound statement containing
// ref, or the outermost-level declaration when ref is outside any statement.
func (b *Builder) EnclosingStatement(ref NodeRef) NodeRef {
	for cur := ref; cur.IsValid(); cur = b.ParentOf(cur) {
		switch cur.Kind {
		case NodeStmt:
			if b.Stmts.Get(StmtID(cur.ID)).Kind != StmtCompound {
				return cur
			}
		case NodeDecl:
			parent := b.ParentOf(cur)
			if !parent.IsValid() || parent.Kind == NodeDecl {
				return cur
			}
		}
	}
	return ref
}

// Signature renders a function as "Owner::name(params) const".
func (b *Builder) Signature(fn DeclID) string {
	decl := b.Decls.Get(fn)
	data, ok := b.Decls.Function(fn)
	if decl == nil || !ok {
		return ""
	}
	name := decl.Name
	if bn := b.Bindings.Get(decl.Binding); bn != nil && bn.Qualified != "" {
		name = bn.Qualified
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("(")
	sb.WriteString(b.paramList(data))
	sb.WriteString(")")
	if data.Has(FnConst) {
		sb.WriteString(" const")
	}
	return sb.String()
}

// OverrideKey identifies a member function for override matching: the
// unqualified name, parameter types without top-level cv and constness.
func (b *Builder) OverrideKey(fn DeclID) string {
	decl := b.Decls.Get(fn)
	data, ok := b.Decls.Function(fn)
	if decl == nil || !ok {
		return ""
	}
	key := decl.Name + "(" + b.paramList(data) + ")"
	if data.Has(FnConst) {
		key += " const"
	}
	if data.Special == FnDestructor {
		key = "~"
	}
	return key
}

func (b *Builder) paramList(data *FunctionData) string {
	parts := make([]string, 0, len(data.Params))
	for _, p := range data.Params {
		v, ok := b.Decls.Var(p)
		if !ok {
			continue
		}
		t := v.Type
		if typ := b.Types.Get(t); typ != nil && typ.Qual != 0 && !isDeclaratorKind(typ.Kind) {
			cp := *typ
			cp.Qual = 0
			parts = append(parts, b.Types.stringOf(&cp))
			continue
		}
		parts = append(parts, b.Types.String(t))
	}
	if data.Has(FnVariadic) {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

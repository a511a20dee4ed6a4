package ast

import (
	"strconv"
	"strings"
)

// TypeKind enumerates resolved type specifiers.
type TypeKind uint8

const (
	TypeUnresolved TypeKind = iota
	TypeBuiltin
	TypePointer
	TypeLValueRef
	TypeRValueRef
	TypeArray
	TypeFunction
	TypeClass
	TypeEnum
	TypeTypedef
	TypeAuto
	TypeTemplateParam
	TypeMemberPointer
)

// BuiltinKind enumerates fundamental types.
type BuiltinKind uint8

const (
	BuiltinVoid BuiltinKind = iota
	BuiltinBool
	BuiltinChar
	BuiltinSChar
	BuiltinUChar
	BuiltinWChar
	BuiltinChar8
	BuiltinChar16
	BuiltinChar32
	BuiltinShort
	BuiltinUShort
	BuiltinInt
	BuiltinUInt
	BuiltinLong
	BuiltinULong
	BuiltinLongLong
	BuiltinULongLong
	BuiltinFloat
	BuiltinDouble
	BuiltinLongDouble
	BuiltinNullptr
)

var builtinNames = [...]string{
	BuiltinVoid:       "void",
	BuiltinBool:       "bool",
	BuiltinChar:       "char",
	BuiltinSChar:      "signed char",
	BuiltinUChar:      "unsigned char",
	BuiltinWChar:      "wchar_t",
	BuiltinChar8:      "char8_t",
	BuiltinChar16:     "char16_t",
	BuiltinChar32:     "char32_t",
	BuiltinShort:      "short",
	BuiltinUShort:     "unsigned short",
	BuiltinInt:        "int",
	BuiltinUInt:       "unsigned int",
	BuiltinLong:       "long",
	BuiltinULong:      "unsigned long",
	BuiltinLongLong:   "long long",
	BuiltinULongLong:  "unsigned long long",
	BuiltinFloat:      "float",
	BuiltinDouble:     "double",
	BuiltinLongDouble: "long double",
	BuiltinNullptr:    "std::nullptr_t",
}

func (k BuiltinKind) String() string {
	if int(k) < len(builtinNames) {
		return builtinNames[k]
	}
	return "builtin(" + strconv.Itoa(int(k)) + ")"
}

// Qual is a set of cv-qualifiers.
type Qual uint8

const (
	QualConst Qual = 1 << iota
	QualVolatile
)

// Type is one resolved type. Elem is the pointee/referee/element/return type,
// Binding names the class, enum, typedef or template parameter.
type Type struct {
	Kind    TypeKind
	Qual    Qual
	Builtin BuiltinKind
	Elem    TypeID
	Binding BindingID
	Params  []TypeID
	Length  int64 // array length, -1 when unknown
	Name    string
}

// Types owns all type specifiers of a builder.
type Types struct {
	Arena *Arena[Type]
}

func NewTypes(capHint uint) *Types {
	return &Types{Arena: NewArena[Type](capHint)}
}

func (t *Types) New(typ Type) TypeID {
	return TypeID(t.Arena.Allocate(typ))
}

func (t *Types) Get(id TypeID) *Type {
	return t.Arena.Get(uint32(id))
}

func (t *Types) NewBuiltin(kind BuiltinKind) TypeID {
	return t.New(Type{Kind: TypeBuiltin, Builtin: kind})
}

func (t *Types) NewPointer(elem TypeID) TypeID {
	return t.New(Type{Kind: TypePointer, Elem: elem})
}

func (t *Types) NewRef(elem TypeID) TypeID {
	return t.New(Type{Kind: TypeLValueRef, Elem: elem})
}

func (t *Types) NewArray(elem TypeID, length int64) TypeID {
	return t.New(Type{Kind: TypeArray, Elem: elem, Length: length})
}

// NewNamed creates a class, enum, typedef or template-parameter type.
func (t *Types) NewNamed(kind TypeKind, binding BindingID, name string) TypeID {
	return t.New(Type{Kind: kind, Binding: binding, Name: name})
}

// NewQualified copies id with extra qualifiers.
func (t *Types) NewQualified(id TypeID, q Qual) TypeID {
	typ := t.Get(id)
	if typ == nil {
		return NoTypeID
	}
	cp := *typ
	cp.Qual |= q
	return t.New(cp)
}

const maxTypedefDepth = 32

// Canonical strips typedefs, accumulating cv-qualifiers on the way.
func (t *Types) Canonical(id TypeID, alias func(BindingID) TypeID) (TypeID, Qual) {
	var q Qual
	for range maxTypedefDepth {
		typ := t.Get(id)
		if typ == nil {
			return NoTypeID, q
		}
		q |= typ.Qual
		if typ.Kind != TypeTypedef || alias == nil {
			return id, q
		}
		next := alias(typ.Binding)
		if !next.IsValid() {
			return id, q
		}
		id = next
	}
	return id, q
}

// String renders a type in C++ declarator-free notation, e.g. "const int *".
func (t *Types) String(id TypeID) string {
	var sb strings.Builder
	t.write(&sb, id, 0)
	return sb.String()
}

func (t *Types) stringOf(typ *Type) string {
	var sb strings.Builder
	t.writeType(&sb, typ, 0)
	return sb.String()
}

func (t *Types) write(sb *strings.Builder, id TypeID, depth int) {
	t.writeType(sb, t.Get(id), depth)
}

func (t *Types) writeType(sb *strings.Builder, typ *Type, depth int) {
	if typ == nil || depth > maxTypedefDepth {
		sb.WriteString("?")
		return
	}
	if typ.Qual&QualConst != 0 && !isDeclaratorKind(typ.Kind) {
		sb.WriteString("const ")
	}
	if typ.Qual&QualVolatile != 0 && !isDeclaratorKind(typ.Kind) {
		sb.WriteString("volatile ")
	}
	switch typ.Kind {
	case TypeBuiltin:
		sb.WriteString(typ.Builtin.String())
	case TypePointer, TypeLValueRef, TypeRValueRef, TypeMemberPointer:
		t.write(sb, typ.Elem, depth+1)
		switch typ.Kind {
		case TypePointer:
			sb.WriteString(" *")
		case TypeLValueRef:
			sb.WriteString(" &")
		case TypeRValueRef:
			sb.WriteString(" &&")
		default:
			sb.WriteString(" " + typ.Name + "::*")
		}
		if typ.Qual&QualConst != 0 {
			sb.WriteString(" const")
		}
	case TypeArray:
		t.write(sb, typ.Elem, depth+1)
		if typ.Length >= 0 {
			sb.WriteString("[" + strconv.FormatInt(typ.Length, 10) + "]")
		} else {
			sb.WriteString("[]")
		}
	case TypeFunction:
		t.write(sb, typ.Elem, depth+1)
		sb.WriteString(" (")
		for i, p := range typ.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			t.write(sb, p, depth+1)
		}
		sb.WriteString(")")
	case TypeAuto:
		sb.WriteString("auto")
	case TypeClass, TypeEnum, TypeTypedef, TypeTemplateParam:
		sb.WriteString(typ.Name)
	default:
		if typ.Name != "" {
			sb.WriteString(typ.Name)
		} else {
			sb.WriteString("?")
		}
	}
}

func isDeclaratorKind(k TypeKind) bool {
	switch k {
	case TypePointer, TypeLValueRef, TypeRValueRef, TypeMemberPointer:
		return true
	}
	return false
}

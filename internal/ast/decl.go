package ast

import "codan/internal/source"

// DeclKind enumerates declarations.
type DeclKind uint8

const (
	DeclProblem DeclKind = iota
	DeclFunction
	DeclVariable
	DeclField
	DeclParam
	DeclClass
	DeclEnum
	DeclEnumerator
	DeclNamespace
	DeclTypedef
	DeclUsingDirective
	DeclTemplate
	DeclTemplateParam
)

var declKindNames = [...]string{
	DeclProblem:        "problem",
	DeclFunction:       "function",
	DeclVariable:       "variable",
	DeclField:          "field",
	DeclParam:          "parameter",
	DeclClass:          "class",
	DeclEnum:           "enum",
	DeclEnumerator:     "enumerator",
	DeclNamespace:      "namespace",
	DeclTypedef:        "typedef",
	DeclUsingDirective: "using-directive",
	DeclTemplate:       "template",
	DeclTemplateParam:  "template-parameter",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return "unknown"
}

// Access is a member access specifier.
type Access uint8

const (
	AccessNone Access = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

// Decl is a declaration node; Name/NameSpan are empty for unnamed declarations.
// Group is shared by declarators of one declaration (`int a, b;`), zero otherwise.
type Decl struct {
	Kind     DeclKind
	Span     source.Span
	NameSpan source.Span
	Name     string
	Binding  BindingID
	Parent   NodeRef
	Macro    MacroID
	Group    uint32
	Access   Access
	Attrs    []string
	Payload  PayloadID
}

// HasAttr reports whether the declaration carries [[name]].
func (d *Decl) HasAttr(name string) bool {
	for _, a := range d.Attrs {
		if a == name {
			return true
		}
	}
	return false
}

// FnSpecial distinguishes special member functions.
type FnSpecial uint8

const (
	FnOrdinary FnSpecial = iota
	FnConstructor
	FnDestructor
	FnOperator
	FnConversion
)

// FnFlags are syntactic function properties of one declaration.
type FnFlags uint32

const (
	FnStatic FnFlags = 1 << iota
	FnConst
	FnVirtual
	FnPure
	FnOverride
	FnFinal
	FnDeleted
	FnDefaulted
	FnNoreturn
	FnInline
	FnConstexpr
	FnExplicit
	// FnDeduced marks `auto f()` without a trailing return type.
	FnDeduced
	FnTrailingReturn
	FnVariadic
	FnCopy // copy constructor / assignment
	FnMove // move constructor / assignment
)

// InitKind classifies constructor initializers.
type InitKind uint8

const (
	InitMember InitKind = iota
	InitBase
	InitDelegating
)

// CtorInit is one entry of a constructor initializer list. Target is the field,
// the base class or, for delegation, the constructor being called.
type CtorInit struct {
	Kind   InitKind
	Span   source.Span
	Name   string
	Target BindingID
	Args   []ExprID
}

type FunctionData struct {
	Return  TypeID
	Params  []DeclID
	Body    StmtID
	Flags   FnFlags
	Special FnSpecial
	Owner   BindingID // class of a method
	Inits   []CtorInit
}

func (f *FunctionData) Has(flag FnFlags) bool { return f.Flags&flag != 0 }

// Storage is a storage-class specifier.
type Storage uint8

const (
	StorageNone Storage = iota
	StorageStatic
	StorageExtern
	StorageRegister
	StorageThreadLocal
)

// VarFlags are variable/field properties.
type VarFlags uint8

const (
	VarMutable VarFlags = 1 << iota
	VarConstexpr
	VarInline
)

// VarData is shared by variables, fields and parameters.
type VarData struct {
	Type    TypeID
	Init    ExprID
	Storage Storage
	Flags   VarFlags
}

// ClassKey is the class-key keyword.
type ClassKey uint8

const (
	KeyStruct ClassKey = iota
	KeyClass
	KeyUnion
)

// BaseSpec is one entry of a base-clause.
type BaseSpec struct {
	Span    source.Span
	Class   BindingID
	Virtual bool
	Access  Access
}

type ClassData struct {
	Key      ClassKey
	Bases    []BaseSpec
	Members  []DeclID
	Complete bool
	Final    bool
}

type EnumData struct {
	Scoped      bool
	Underlying  TypeID
	Enumerators []DeclID
}

type EnumeratorData struct {
	Value ExprID
}

type NamespaceData struct {
	Decls  []DeclID
	Inline bool
}

type TypedefData struct {
	Type TypeID
}

type UsingData struct {
	Target BindingID
}

type TemplateData struct {
	Params []DeclID
	Inner  DeclID
}

// Decls manages allocation of declarations.
type Decls struct {
	Arena       *Arena[Decl]
	Functions   *Arena[FunctionData]
	Vars        *Arena[VarData]
	Classes     *Arena[ClassData]
	Enums       *Arena[EnumData]
	Enumerators *Arena[EnumeratorData]
	Namespaces  *Arena[NamespaceData]
	Typedefs    *Arena[TypedefData]
	Usings      *Arena[UsingData]
	Templates   *Arena[TemplateData]
}

func NewDecls(capHint uint) *Decls {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Decls{
		Arena:       NewArena[Decl](capHint),
		Functions:   NewArena[FunctionData](capHint),
		Vars:        NewArena[VarData](capHint),
		Classes:     NewArena[ClassData](capHint / 4),
		Enums:       NewArena[EnumData](capHint / 8),
		Enumerators: NewArena[EnumeratorData](capHint / 4),
		Namespaces:  NewArena[NamespaceData](capHint / 8),
		Typedefs:    NewArena[TypedefData](capHint / 8),
		Usings:      NewArena[UsingData](capHint / 8),
		Templates:   NewArena[TemplateData](capHint / 8),
	}
}

// DeclHead is the common part passed to every constructor.
type DeclHead struct {
	Span     source.Span
	NameSpan source.Span
	Name     string
	Binding  BindingID
	Access   Access
	Attrs    []string
	Group    uint32
	Macro    MacroID
}

func (d *Decls) new(kind DeclKind, head DeclHead, payload PayloadID) DeclID {
	return DeclID(d.Arena.Allocate(Decl{
		Kind:     kind,
		Span:     head.Span,
		NameSpan: head.NameSpan,
		Name:     head.Name,
		Binding:  head.Binding,
		Access:   head.Access,
		Attrs:    head.Attrs,
		Group:    head.Group,
		Macro:    head.Macro,
		Payload:  payload,
	}))
}

func (d *Decls) Get(id DeclID) *Decl {
	return d.Arena.Get(uint32(id))
}

func (d *Decls) NewFunction(head DeclHead, data FunctionData) DeclID {
	return d.new(DeclFunction, head, PayloadID(d.Functions.Allocate(data)))
}

func (d *Decls) Function(id DeclID) (*FunctionData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclFunction {
		return nil, false
	}
	return d.Functions.Get(uint32(decl.Payload)), true
}

// NewVar creates a variable, field or parameter declaration.
func (d *Decls) NewVar(kind DeclKind, head DeclHead, data VarData) DeclID {
	switch kind {
	case DeclVariable, DeclField, DeclParam:
	default:
		panic("ast: NewVar with non-variable kind")
	}
	return d.new(kind, head, PayloadID(d.Vars.Allocate(data)))
}

func (d *Decls) Var(id DeclID) (*VarData, bool) {
	decl := d.Get(id)
	if decl == nil {
		return nil, false
	}
	switch decl.Kind {
	case DeclVariable, DeclField, DeclParam:
		return d.Vars.Get(uint32(decl.Payload)), true
	}
	return nil, false
}

func (d *Decls) NewClass(head DeclHead, data ClassData) DeclID {
	return d.new(DeclClass, head, PayloadID(d.Classes.Allocate(data)))
}

func (d *Decls) Class(id DeclID) (*ClassData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclClass {
		return nil, false
	}
	return d.Classes.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewEnum(head DeclHead, data EnumData) DeclID {
	return d.new(DeclEnum, head, PayloadID(d.Enums.Allocate(data)))
}

func (d *Decls) Enum(id DeclID) (*EnumData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclEnum {
		return nil, false
	}
	return d.Enums.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewEnumerator(head DeclHead, value ExprID) DeclID {
	return d.new(DeclEnumerator, head, PayloadID(d.Enumerators.Allocate(EnumeratorData{Value: value})))
}

func (d *Decls) Enumerator(id DeclID) (*EnumeratorData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclEnumerator {
		return nil, false
	}
	return d.Enumerators.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewNamespace(head DeclHead, data NamespaceData) DeclID {
	return d.new(DeclNamespace, head, PayloadID(d.Namespaces.Allocate(data)))
}

func (d *Decls) Namespace(id DeclID) (*NamespaceData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclNamespace {
		return nil, false
	}
	return d.Namespaces.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewTypedef(head DeclHead, typ TypeID) DeclID {
	return d.new(DeclTypedef, head, PayloadID(d.Typedefs.Allocate(TypedefData{Type: typ})))
}

func (d *Decls) Typedef(id DeclID) (*TypedefData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclTypedef {
		return nil, false
	}
	return d.Typedefs.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewUsingDirective(head DeclHead, target BindingID) DeclID {
	return d.new(DeclUsingDirective, head, PayloadID(d.Usings.Allocate(UsingData{Target: target})))
}

func (d *Decls) Using(id DeclID) (*UsingData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclUsingDirective {
		return nil, false
	}
	return d.Usings.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewTemplate(head DeclHead, data TemplateData) DeclID {
	return d.new(DeclTemplate, head, PayloadID(d.Templates.Allocate(data)))
}

func (d *Decls) Template(id DeclID) (*TemplateData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclTemplate {
		return nil, false
	}
	return d.Templates.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewTemplateParam(head DeclHead) DeclID {
	return d.new(DeclTemplateParam, head, NoPayloadID)
}

func (d *Decls) NewProblem(head DeclHead) DeclID {
	return d.new(DeclProblem, head, NoPayloadID)
}

// BindFlags converts declaration flags into the binding flags they imply.
func (f FnFlags) BindFlags() BindFlags {
	var out BindFlags
	pairs := [...]struct {
		fn FnFlags
		bf BindFlags
	}{
		{FnStatic, FlagStatic}, {FnConst, FlagConst}, {FnVirtual, FlagVirtual},
		{FnPure, FlagPure}, {FnOverride, FlagOverride}, {FnFinal, FlagFinal},
		{FnDeleted, FlagDeleted}, {FnDefaulted, FlagDefaulted}, {FnNoreturn, FlagNoreturn},
		{FnInline, FlagInline}, {FnConstexpr, FlagConstexpr},
	}
	for _, p := range pairs {
		if f&p.fn != 0 {
			out |= p.bf
		}
	}
	return out
}

package ast

import "codan/internal/source"

// BindingKind classifies what a resolved name denotes.
type BindingKind uint8

const (
	// BindProblem marks a name the parser could not resolve.
	BindProblem BindingKind = iota
	BindVariable
	BindField
	BindParameter
	BindFunction
	BindMethod
	BindClass
	BindEnum
	BindTypedef
	BindEnumerator
	BindNamespace
	BindTemplate
	BindTemplateParam
	BindLabel
)

var bindingKindNames = [...]string{
	BindProblem:       "problem",
	BindVariable:      "variable",
	BindField:         "field",
	BindParameter:     "parameter",
	BindFunction:      "function",
	BindMethod:        "method",
	BindClass:         "class",
	BindEnum:          "enum",
	BindTypedef:       "typedef",
	BindEnumerator:    "enumerator",
	BindNamespace:     "namespace",
	BindTemplate:      "template",
	BindTemplateParam: "template parameter",
	BindLabel:         "label",
}

func (k BindingKind) String() string {
	if int(k) < len(bindingKindNames) {
		return bindingKindNames[k]
	}
	return "unknown"
}

// IsType reports whether the binding names a type.
func (k BindingKind) IsType() bool {
	switch k {
	case BindClass, BindEnum, BindTypedef, BindTemplateParam:
		return true
	}
	return false
}

// ProblemKind tells why a name stayed unresolved.
type ProblemKind uint8

const (
	ProblemNone ProblemKind = iota
	ProblemAmbiguous
	ProblemCircularReference
	ProblemFieldResolution
	ProblemFunctionResolution
	ProblemInvalidArguments
	ProblemInvalidTemplateArguments
	ProblemLabelNotFound
	ProblemMemberDeclarationNotFound
	ProblemMethodResolution
	ProblemOverload
	ProblemRedeclaration
	ProblemRedefinition
	ProblemTypeResolution
	ProblemVariableResolution
)

// BindFlags are semantic properties merged from every declaration of a binding.
type BindFlags uint32

const (
	FlagStatic BindFlags = 1 << iota
	FlagConst
	FlagVirtual
	FlagPure
	FlagOverride
	FlagFinal
	FlagDeleted
	FlagDefaulted
	FlagNoreturn
	FlagMutable
	FlagConstexpr
	FlagExtern
	FlagInline
	FlagMaybeUnused
	FlagImplicit
)

// Binding is the resolved identity of a name.
type Binding struct {
	Kind      BindingKind
	Name      string
	Qualified string
	Owner     BindingID // enclosing class or namespace
	Type      TypeID    // declared type; aliased type for typedefs
	Decl      DeclID    // first declaration
	Def       DeclID    // definition, if the unit has one
	Flags     BindFlags
	Problem   ProblemKind
	Span      source.Span // declaration name span
}

func (b *Binding) Has(f BindFlags) bool { return b.Flags&f != 0 }

// Bindings owns the binding table of a builder.
type Bindings struct {
	Arena *Arena[Binding]
}

func NewBindings(capHint uint) *Bindings {
	return &Bindings{Arena: NewArena[Binding](capHint)}
}

func (b *Bindings) New(binding Binding) BindingID {
	if binding.Qualified == "" {
		binding.Qualified = binding.Name
	}
	return BindingID(b.Arena.Allocate(binding))
}

func (b *Bindings) Get(id BindingID) *Binding {
	return b.Arena.Get(uint32(id))
}

// Resolved returns the binding unless it is missing or a problem binding.
func (b *Bindings) Resolved(id BindingID) (*Binding, bool) {
	bn := b.Get(id)
	if bn == nil || bn.Kind == BindProblem {
		return nil, false
	}
	return bn, true
}

package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"codan/internal/ast"
	"codan/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid   ScopeKind = iota
	ScopeFile                // translation unit, the global namespace
	ScopeNamespace           // named namespace, shared by every re-opening
	ScopeClass               // class body; lookup continues into bases
	ScopeEnum                // scoped enumeration
	ScopeTemplate            // template parameter list
	ScopeFunction            // parameters and the outermost body block
	ScopeBlock               // compound statement or a statement with its own declarations
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopeNamespace:
		return "namespace"
	case ScopeClass:
		return "class"
	case ScopeEnum:
		return "enum"
	case ScopeTemplate:
		return "template"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// ordered reports scopes where a name is only visible after its declaration.
// Class members are visible in the whole class body.
func (k ScopeKind) ordered() bool {
	switch k {
	case ScopeFile, ScopeNamespace, ScopeFunction, ScopeBlock:
		return true
	}
	return false
}

// Scope models a lexical scope with a parent-child hierarchy.
// Names preserves declaration order inside each bucket.
type Scope struct {
	Kind     ScopeKind
	Parent   ScopeID
	Owner    ast.NodeRef
	Binding  ast.BindingID // class, enum or namespace owning the scope
	Span     source.Span
	Names    map[string][]ast.BindingID
	Order    []ast.BindingID
	Using    []ast.BindingID // namespaces nominated by using-directives
	Children []ScopeID
}

// Scopes stores all allocated scopes in a compact slice-based arena.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 32
	}
	return &Scopes{
		data: make([]Scope, 1, capacity+1), // index 0 reserved for NoScopeID
	}
}

// New allocates a new scope and returns its ID.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, owner ast.NodeRef, span source.Span) ScopeID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	id := ScopeID(value)
	s.data = append(s.data, Scope{
		Kind:   kind,
		Parent: parent,
		Owner:  owner,
		Span:   span,
		Names:  make(map[string][]ast.BindingID),
	})
	if parentScope := s.Get(parent); parentScope != nil {
		parentScope.Children = append(parentScope.Children, id)
	}
	return id
}

// Get returns the scope pointer or nil if ID is invalid.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports total number of scopes excluding the sentinel.
func (s *Scopes) Len() int { return len(s.data) - 1 }

// declare appends b under name unless the scope already holds it
// (redeclarations of one entity share a binding).
func (s *Scope) declare(name string, b ast.BindingID) {
	for _, existing := range s.Names[name] {
		if existing == b {
			return
		}
	}
	s.Names[name] = append(s.Names[name], b)
	s.Order = append(s.Order, b)
}

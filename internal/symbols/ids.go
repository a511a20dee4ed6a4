package symbols

// ScopeID identifies a scope in the table arena.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// ClassID identifies a node of the class graph.
type ClassID uint32

const (
	// NoClassID marks a class without a definition in the unit.
	NoClassID ClassID = 0
)

// IsValid reports whether the class ID refers to a graph node.
func (id ClassID) IsValid() bool { return id != NoClassID }

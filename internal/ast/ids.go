package ast

type (
	// главные сущности
	FileID    uint32
	DeclID    uint32
	StmtID    uint32
	ExprID    uint32
	TypeID    uint32
	BindingID uint32
	MacroID   uint32
	// подсущности
	PayloadID uint32
)

const (
	NoFileID    FileID    = 0
	NoDeclID    DeclID    = 0
	NoStmtID    StmtID    = 0
	NoExprID    ExprID    = 0
	NoTypeID    TypeID    = 0
	NoBindingID BindingID = 0
	NoMacroID   MacroID   = 0
	NoPayloadID PayloadID = 0
)

func (id FileID) IsValid() bool    { return id != NoFileID }
func (id DeclID) IsValid() bool    { return id != NoDeclID }
func (id StmtID) IsValid() bool    { return id != NoStmtID }
func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id TypeID) IsValid() bool    { return id != NoTypeID }
func (id BindingID) IsValid() bool { return id != NoBindingID }
func (id MacroID) IsValid() bool   { return id != NoMacroID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }

// NodeKind says which arena a NodeRef points into.
type NodeKind uint8

const (
	NodeNone NodeKind = iota
	NodeDecl
	NodeStmt
	NodeExpr
)

// NodeRef is a category-tagged node id; it is the parent link of every node.
type NodeRef struct {
	Kind NodeKind
	ID   uint32
}

func DeclRef(id DeclID) NodeRef { return NodeRef{Kind: NodeDecl, ID: uint32(id)} }
func StmtRef(id StmtID) NodeRef { return NodeRef{Kind: NodeStmt, ID: uint32(id)} }
func ExprRef(id ExprID) NodeRef { return NodeRef{Kind: NodeExpr, ID: uint32(id)} }

func (r NodeRef) IsValid() bool { return r.Kind != NodeNone && r.ID != 0 }

// Decl returns the declaration id when the ref names a declaration.
func (r NodeRef) Decl() (DeclID, bool) { return DeclID(r.ID), r.Kind == NodeDecl && r.ID != 0 }

// Stmt returns the statement id when the ref names a statement.
func (r NodeRef) Stmt() (StmtID, bool) { return StmtID(r.ID), r.Kind == NodeStmt && r.ID != 0 }

// Expr returns the expression id when the ref names an expression.
func (r NodeRef) Expr() (ExprID, bool) { return ExprID(r.ID), r.Kind == NodeExpr && r.ID != 0 }

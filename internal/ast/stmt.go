package ast

import "codan/internal/source"

type StmtKind uint8

const (
	StmtProblem StmtKind = iota
	StmtCompound
	StmtDecl
	StmtExpr
	StmtIf
	StmtWhile
	StmtDo
	StmtFor
	StmtRangeFor
	StmtSwitch
	StmtCase
	StmtDefault
	StmtBreak
	StmtContinue
	StmtReturn
	StmtGoto
	StmtLabel
	StmtTry
	StmtCatch
	StmtNull
)

var stmtKindNames = [...]string{
	StmtProblem:  "problem",
	StmtCompound: "compound",
	StmtDecl:     "declaration",
	StmtExpr:     "expression",
	StmtIf:       "if",
	StmtWhile:    "while",
	StmtDo:       "do",
	StmtFor:      "for",
	StmtRangeFor: "range-for",
	StmtSwitch:   "switch",
	StmtCase:     "case",
	StmtDefault:  "default",
	StmtBreak:    "break",
	StmtContinue: "continue",
	StmtReturn:   "return",
	StmtGoto:     "goto",
	StmtLabel:    "label",
	StmtTry:      "try",
	StmtCatch:    "catch",
	StmtNull:     "null",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "unknown"
}

// Stmt is a statement node. Attrs holds attribute names such as "fallthrough"
// (`[[fallthrough]];` is a null statement with that attribute).
type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Parent  NodeRef
	Macro   MacroID
	Attrs   []string
	Payload PayloadID
}

// HasAttr reports whether the statement carries [[name]].
func (s *Stmt) HasAttr(name string) bool {
	for _, a := range s.Attrs {
		if a == name {
			return true
		}
	}
	return false
}

type BlockData struct {
	Stmts []StmtID
}

type DeclStmtData struct {
	Decls []DeclID
}

// ExprStmtData serves expression and return statements; Expr may be absent for `return;`.
type ExprStmtData struct {
	Expr ExprID
}

type IfData struct {
	Init      StmtID
	Cond      ExprID
	CondDecl  DeclID
	Then      StmtID
	Else      StmtID
	Constexpr bool
}

// LoopData serves while and do statements.
type LoopData struct {
	Cond     ExprID
	CondDecl DeclID
	Body     StmtID
}

type ForData struct {
	Init StmtID
	Cond ExprID
	Iter ExprID
	Body StmtID
}

type RangeForData struct {
	Var   DeclID
	Range ExprID
	Body  StmtID
}

type SwitchData struct {
	Init StmtID
	Cond ExprID
	Body StmtID
}

type CaseData struct {
	Value ExprID
}

// LabelData serves goto (Body empty) and labeled statements.
type LabelData struct {
	Name string
	Body StmtID
}

type TryData struct {
	Body     StmtID
	Handlers []StmtID
}

// CatchData: Param is absent for catch(...).
type CatchData struct {
	Param DeclID
	Body  StmtID
}

// Stmts manages allocation of statements.
type Stmts struct {
	Arena     *Arena[Stmt]
	Blocks    *Arena[BlockData]
	DeclStmts *Arena[DeclStmtData]
	Exprs     *Arena[ExprStmtData]
	Ifs       *Arena[IfData]
	Loops     *Arena[LoopData]
	Fors      *Arena[ForData]
	RangeFors *Arena[RangeForData]
	Switches  *Arena[SwitchData]
	Cases     *Arena[CaseData]
	Labels    *Arena[LabelData]
	Tries     *Arena[TryData]
	Catches   *Arena[CatchData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:     NewArena[Stmt](capHint),
		Blocks:    NewArena[BlockData](capHint / 4),
		DeclStmts: NewArena[DeclStmtData](capHint / 4),
		Exprs:     NewArena[ExprStmtData](capHint / 2),
		Ifs:       NewArena[IfData](capHint / 8),
		Loops:     NewArena[LoopData](capHint / 16),
		Fors:      NewArena[ForData](capHint / 16),
		RangeFors: NewArena[RangeForData](capHint / 16),
		Switches:  NewArena[SwitchData](capHint / 16),
		Cases:     NewArena[CaseData](capHint / 8),
		Labels:    NewArena[LabelData](capHint / 16),
		Tries:     NewArena[TryData](capHint / 16),
		Catches:   NewArena[CatchData](capHint / 16),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	payload := s.Blocks.Allocate(BlockData{Stmts: append([]StmtID(nil), stmts...)})
	return s.new(StmtCompound, span, PayloadID(payload))
}

func (s *Stmts) Block(id StmtID) (*BlockData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtCompound {
		return nil, false
	}
	return s.Blocks.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewDeclStmt(span source.Span, decls []DeclID) StmtID {
	payload := s.DeclStmts.Allocate(DeclStmtData{Decls: append([]DeclID(nil), decls...)})
	return s.new(StmtDecl, span, PayloadID(payload))
}

func (s *Stmts) DeclStmt(id StmtID) (*DeclStmtData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtDecl {
		return nil, false
	}
	return s.DeclStmts.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, span, PayloadID(s.Exprs.Allocate(ExprStmtData{Expr: expr})))
}

// Expr returns the payload of expression and return statements.
func (s *Stmts) Expr(id StmtID) (*ExprStmtData, bool) {
	stmt := s.Get(id)
	if stmt == nil || (stmt.Kind != StmtExpr && stmt.Kind != StmtReturn) {
		return nil, false
	}
	return s.Exprs.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewReturn(span source.Span, expr ExprID) StmtID {
	return s.new(StmtReturn, span, PayloadID(s.Exprs.Allocate(ExprStmtData{Expr: expr})))
}

func (s *Stmts) NewIf(span source.Span, data IfData) StmtID {
	return s.new(StmtIf, span, PayloadID(s.Ifs.Allocate(data)))
}

func (s *Stmts) If(id StmtID) (*IfData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtIf {
		return nil, false
	}
	return s.Ifs.Get(uint32(stmt.Payload)), true
}

// NewLoop creates a while or do statement.
func (s *Stmts) NewLoop(kind StmtKind, span source.Span, data LoopData) StmtID {
	if kind != StmtWhile && kind != StmtDo {
		panic("ast: NewLoop with non-loop kind")
	}
	return s.new(kind, span, PayloadID(s.Loops.Allocate(data)))
}

func (s *Stmts) Loop(id StmtID) (*LoopData, bool) {
	stmt := s.Get(id)
	if stmt == nil || (stmt.Kind != StmtWhile && stmt.Kind != StmtDo) {
		return nil, false
	}
	return s.Loops.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewFor(span source.Span, data ForData) StmtID {
	return s.new(StmtFor, span, PayloadID(s.Fors.Allocate(data)))
}

func (s *Stmts) For(id StmtID) (*ForData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtFor {
		return nil, false
	}
	return s.Fors.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewRangeFor(span source.Span, data RangeForData) StmtID {
	return s.new(StmtRangeFor, span, PayloadID(s.RangeFors.Allocate(data)))
}

func (s *Stmts) RangeFor(id StmtID) (*RangeForData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtRangeFor {
		return nil, false
	}
	return s.RangeFors.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewSwitch(span source.Span, data SwitchData) StmtID {
	return s.new(StmtSwitch, span, PayloadID(s.Switches.Allocate(data)))
}

func (s *Stmts) Switch(id StmtID) (*SwitchData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtSwitch {
		return nil, false
	}
	return s.Switches.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewCase(span source.Span, value ExprID) StmtID {
	return s.new(StmtCase, span, PayloadID(s.Cases.Allocate(CaseData{Value: value})))
}

func (s *Stmts) Case(id StmtID) (*CaseData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtCase {
		return nil, false
	}
	return s.Cases.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewGoto(span source.Span, label string) StmtID {
	return s.new(StmtGoto, span, PayloadID(s.Labels.Allocate(LabelData{Name: label})))
}

func (s *Stmts) NewLabel(span source.Span, name string, body StmtID) StmtID {
	return s.new(StmtLabel, span, PayloadID(s.Labels.Allocate(LabelData{Name: name, Body: body})))
}

// Label returns the payload of goto and label statements.
func (s *Stmts) Label(id StmtID) (*LabelData, bool) {
	stmt := s.Get(id)
	if stmt == nil || (stmt.Kind != StmtLabel && stmt.Kind != StmtGoto) {
		return nil, false
	}
	return s.Labels.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewTry(span source.Span, body StmtID, handlers []StmtID) StmtID {
	payload := s.Tries.Allocate(TryData{Body: body, Handlers: append([]StmtID(nil), handlers...)})
	return s.new(StmtTry, span, PayloadID(payload))
}

func (s *Stmts) Try(id StmtID) (*TryData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtTry {
		return nil, false
	}
	return s.Tries.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewCatch(span source.Span, param DeclID, body StmtID) StmtID {
	return s.new(StmtCatch, span, PayloadID(s.Catches.Allocate(CatchData{Param: param, Body: body})))
}

func (s *Stmts) Catch(id StmtID) (*CatchData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtCatch {
		return nil, false
	}
	return s.Catches.Get(uint32(stmt.Payload)), true
}

// NewSimple creates payload-free statements: break, continue, default, null, problem.
func (s *Stmts) NewSimple(kind StmtKind, span source.Span) StmtID {
	switch kind {
	case StmtBreak, StmtContinue, StmtDefault, StmtNull, StmtProblem:
	default:
		panic("ast: NewSimple with payload kind " + kind.String())
	}
	return s.new(kind, span, NoPayloadID)
}

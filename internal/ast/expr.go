package ast

import "codan/internal/source"

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	ExprProblem ExprKind = iota
	ExprIdent
	ExprLiteral
	ExprUnary
	ExprBinary
	ExprConditional
	ExprCall
	ExprMember
	ExprThis
	ExprCast
	ExprNew
	ExprDelete
	ExprSubscript
	ExprThrow
	ExprLambda
	ExprSizeof
	ExprList
)

var exprKindNames = [...]string{
	ExprProblem:     "problem",
	ExprIdent:       "identifier",
	ExprLiteral:     "literal",
	ExprUnary:       "unary",
	ExprBinary:      "binary",
	ExprConditional: "conditional",
	ExprCall:        "call",
	ExprMember:      "member",
	ExprThis:        "this",
	ExprCast:        "cast",
	ExprNew:         "new",
	ExprDelete:      "delete",
	ExprSubscript:   "subscript",
	ExprThrow:       "throw",
	ExprLambda:      "lambda",
	ExprSizeof:      "sizeof",
	ExprList:        "list",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "unknown"
}

// Expr represents an expression node. Type is the expression type when the
// parser resolved it.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Parent  NodeRef
	Macro   MacroID
	Type    TypeID
	Payload PayloadID
}

type UnaryOp uint8

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
	UnaryNot
	UnaryBitNot
	UnaryDeref
	UnaryAddrOf
	UnaryPreInc
	UnaryPreDec
	UnaryPostInc
	UnaryPostDec
	// UnaryParen is a parenthesized primary `( e )`.
	UnaryParen
)

// IsIncDec reports ++/-- in either position.
func (op UnaryOp) IsIncDec() bool {
	switch op {
	case UnaryPreInc, UnaryPreDec, UnaryPostInc, UnaryPostDec:
		return true
	}
	return false
}

type BinaryOp uint8

const (
	BinMul BinaryOp = iota
	BinDiv
	BinMod
	BinAdd
	BinSub
	BinShl
	BinShr
	BinLt
	BinGt
	BinLe
	BinGe
	BinEq
	BinNe
	BinBitAnd
	BinBitXor
	BinBitOr
	BinLogAnd
	BinLogOr
	BinPtrMem
	BinPtrMemArrow
	BinComma
	// присваивания
	BinAssign
	BinMulAssign
	BinDivAssign
	BinModAssign
	BinAddAssign
	BinSubAssign
	BinShlAssign
	BinShrAssign
	BinAndAssign
	BinXorAssign
	BinOrAssign
)

var binaryOpText = [...]string{
	BinMul: "*", BinDiv: "/", BinMod: "%", BinAdd: "+", BinSub: "-",
	BinShl: "<<", BinShr: ">>", BinLt: "<", BinGt: ">", BinLe: "<=", BinGe: ">=",
	BinEq: "==", BinNe: "!=", BinBitAnd: "&", BinBitXor: "^", BinBitOr: "|",
	BinLogAnd: "&&", BinLogOr: "||", BinPtrMem: ".*", BinPtrMemArrow: "->*", BinComma: ",",
	BinAssign: "=", BinMulAssign: "*=", BinDivAssign: "/=", BinModAssign: "%=",
	BinAddAssign: "+=", BinSubAssign: "-=", BinShlAssign: "<<=", BinShrAssign: ">>=",
	BinAndAssign: "&=", BinXorAssign: "^=", BinOrAssign: "|=",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// IsAssign reports plain and compound assignment.
func (op BinaryOp) IsAssign() bool {
	return op >= BinAssign && op <= BinOrAssign
}

// IsComparison reports relational and equality operators.
func (op BinaryOp) IsComparison() bool {
	return op >= BinLt && op <= BinNe
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitChar
	LitString
	LitBool
	LitNullptr
)

type CastKind uint8

const (
	CastCStyle CastKind = iota
	CastStatic
	CastDynamic
	CastConst
	CastReinterpret
	// CastFunctional is `T(e)`.
	CastFunctional
)

// IdentData: Qualified is set for names written with a scope qualifier (`C::f`).
type IdentData struct {
	Name      string
	Binding   BindingID
	Qualified bool
}

type LiteralData struct {
	Kind LitKind
	Text string
}

type UnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

type BinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

type ConditionalData struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

type CallData struct {
	Callee ExprID
	Args   []ExprID
}

// MemberData: Base is absent for an implicit `this->`.
type MemberData struct {
	Base      ExprID
	Name      string
	Binding   BindingID
	Arrow     bool
	Qualified bool
}

type CastData struct {
	Kind    CastKind
	Type    TypeID
	Operand ExprID
}

// NewData: Type is the allocated type (`new C*` allocates a pointer).
type NewData struct {
	Type  TypeID
	Args  []ExprID
	Array bool
}

type DeleteData struct {
	Operand ExprID
	Array   bool
}

type SubscriptData struct {
	Base  ExprID
	Index ExprID
}

// OperandData serves throw (Operand may be absent) and sizeof.
type OperandData struct {
	Operand ExprID
	Type    TypeID
}

type LambdaData struct {
	Params []DeclID
	Return TypeID
	Body   StmtID
}

type ListData struct {
	Items  []ExprID
	Braced bool
}

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena        *Arena[Expr]
	Idents       *Arena[IdentData]
	Literals     *Arena[LiteralData]
	Unaries      *Arena[UnaryData]
	Binaries     *Arena[BinaryData]
	Conditionals *Arena[ConditionalData]
	Calls        *Arena[CallData]
	Members      *Arena[MemberData]
	Casts        *Arena[CastData]
	News         *Arena[NewData]
	Deletes      *Arena[DeleteData]
	Subscripts   *Arena[SubscriptData]
	Operands     *Arena[OperandData]
	Lambdas      *Arena[LambdaData]
	Lists        *Arena[ListData]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint as the initial capacity.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:        NewArena[Expr](capHint),
		Idents:       NewArena[IdentData](capHint / 2),
		Literals:     NewArena[LiteralData](capHint / 4),
		Unaries:      NewArena[UnaryData](capHint / 8),
		Binaries:     NewArena[BinaryData](capHint / 4),
		Conditionals: NewArena[ConditionalData](capHint / 16),
		Calls:        NewArena[CallData](capHint / 8),
		Members:      NewArena[MemberData](capHint / 8),
		Casts:        NewArena[CastData](capHint / 16),
		News:         NewArena[NewData](capHint / 16),
		Deletes:      NewArena[DeleteData](capHint / 16),
		Subscripts:   NewArena[SubscriptData](capHint / 16),
		Operands:     NewArena[OperandData](capHint / 16),
		Lambdas:      NewArena[LambdaData](capHint / 16),
		Lists:        NewArena[ListData](capHint / 16),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// NewIdent creates a new identifier expression.
func (e *Exprs) NewIdent(span source.Span, data IdentData) ExprID {
	return e.new(ExprIdent, span, PayloadID(e.Idents.Allocate(data)))
}

// Ident returns the identifier data for the given expression ID.
func (e *Exprs) Ident(id ExprID) (*IdentData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIdent {
		return nil, false
	}
	return e.Idents.Get(uint32(expr.Payload)), true
}

// NewLiteral creates a new literal expression.
func (e *Exprs) NewLiteral(span source.Span, kind LitKind, text string) ExprID {
	return e.new(ExprLiteral, span, PayloadID(e.Literals.Allocate(LiteralData{Kind: kind, Text: text})))
}

// Literal returns the literal data for the given expression ID.
func (e *Exprs) Literal(id ExprID) (*LiteralData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLiteral {
		return nil, false
	}
	return e.Literals.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, span, PayloadID(e.Unaries.Allocate(UnaryData{Op: op, Operand: operand})))
}

func (e *Exprs) Unary(id ExprID) (*UnaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewBinary(span source.Span, op BinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, span, PayloadID(e.Binaries.Allocate(BinaryData{Op: op, Left: left, Right: right})))
}

func (e *Exprs) Binary(id ExprID) (*BinaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewConditional(span source.Span, cond, then, els ExprID) ExprID {
	payload := e.Conditionals.Allocate(ConditionalData{Cond: cond, Then: then, Else: els})
	return e.new(ExprConditional, span, PayloadID(payload))
}

func (e *Exprs) Conditional(id ExprID) (*ConditionalData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprConditional {
		return nil, false
	}
	return e.Conditionals.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewCall(span source.Span, callee ExprID, args []ExprID) ExprID {
	payload := e.Calls.Allocate(CallData{Callee: callee, Args: append([]ExprID(nil), args...)})
	return e.new(ExprCall, span, PayloadID(payload))
}

func (e *Exprs) Call(id ExprID) (*CallData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewMember(span source.Span, data MemberData) ExprID {
	return e.new(ExprMember, span, PayloadID(e.Members.Allocate(data)))
}

func (e *Exprs) Member(id ExprID) (*MemberData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprMember {
		return nil, false
	}
	return e.Members.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewThis(span source.Span) ExprID {
	return e.new(ExprThis, span, NoPayloadID)
}

func (e *Exprs) NewCast(span source.Span, kind CastKind, typ TypeID, operand ExprID) ExprID {
	return e.new(ExprCast, span, PayloadID(e.Casts.Allocate(CastData{Kind: kind, Type: typ, Operand: operand})))
}

func (e *Exprs) Cast(id ExprID) (*CastData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCast {
		return nil, false
	}
	return e.Casts.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewNew(span source.Span, data NewData) ExprID {
	return e.new(ExprNew, span, PayloadID(e.News.Allocate(data)))
}

func (e *Exprs) New(id ExprID) (*NewData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprNew {
		return nil, false
	}
	return e.News.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewDelete(span source.Span, operand ExprID, array bool) ExprID {
	return e.new(ExprDelete, span, PayloadID(e.Deletes.Allocate(DeleteData{Operand: operand, Array: array})))
}

func (e *Exprs) Delete(id ExprID) (*DeleteData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprDelete {
		return nil, false
	}
	return e.Deletes.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewSubscript(span source.Span, base, index ExprID) ExprID {
	return e.new(ExprSubscript, span, PayloadID(e.Subscripts.Allocate(SubscriptData{Base: base, Index: index})))
}

func (e *Exprs) Subscript(id ExprID) (*SubscriptData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprSubscript {
		return nil, false
	}
	return e.Subscripts.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewThrow(span source.Span, operand ExprID) ExprID {
	return e.new(ExprThrow, span, PayloadID(e.Operands.Allocate(OperandData{Operand: operand})))
}

func (e *Exprs) NewSizeof(span source.Span, operand ExprID, typ TypeID) ExprID {
	return e.new(ExprSizeof, span, PayloadID(e.Operands.Allocate(OperandData{Operand: operand, Type: typ})))
}

// Operand returns the payload of throw and sizeof expressions.
func (e *Exprs) Operand(id ExprID) (*OperandData, bool) {
	expr := e.Get(id)
	if expr == nil || (expr.Kind != ExprThrow && expr.Kind != ExprSizeof) {
		return nil, false
	}
	return e.Operands.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewLambda(span source.Span, data LambdaData) ExprID {
	return e.new(ExprLambda, span, PayloadID(e.Lambdas.Allocate(data)))
}

func (e *Exprs) Lambda(id ExprID) (*LambdaData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLambda {
		return nil, false
	}
	return e.Lambdas.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewList(span source.Span, items []ExprID, braced bool) ExprID {
	payload := e.Lists.Allocate(ListData{Items: append([]ExprID(nil), items...), Braced: braced})
	return e.new(ExprList, span, PayloadID(payload))
}

func (e *Exprs) List(id ExprID) (*ListData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprList {
		return nil, false
	}
	return e.Lists.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewProblem(span source.Span) ExprID {
	return e.new(ExprProblem, span, NoPayloadID)
}

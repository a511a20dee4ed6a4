// Package flow computes reachability and completion facts for function bodies.
package flow

import "codan/internal/ast"

// LastKind classifies how a statement ends.
type LastKind uint8

const (
	LastOther LastKind = iota
	LastBreak
	LastContinue
	LastReturn
	LastThrow
	LastFallthrough // [[fallthrough]];
	LastGoto
	LastNoreturn // call to a noreturn function
)

func (k LastKind) String() string {
	switch k {
	case LastBreak:
		return "break"
	case LastContinue:
		return "continue"
	case LastReturn:
		return "return"
	case LastThrow:
		return "throw"
	case LastFallthrough:
		return "fallthrough"
	case LastGoto:
		return "goto"
	case LastNoreturn:
		return "noreturn"
	default:
		return "other"
	}
}

// Fact is the control-flow summary of one statement.
type Fact struct {
	Reachable bool
	// AlwaysReturns: the statement never completes normally and never leaves
	// through break, continue or goto.
	AlwaysReturns bool
	// FallsThrough: the statement is reachable and can complete normally.
	FallsThrough bool
	Last         LastKind
}

// outcome is the structural completion summary of a statement.
type outcome struct {
	normal bool // can complete normally
	brk    bool // a reachable break leaves to an enclosing loop or switch
	cont   bool
	jump   bool // goto
}

func (o outcome) alwaysReturns() bool {
	return !o.normal && !o.brk && !o.cont && !o.jump
}

// merge folds the abrupt exits of a reachable child into o.
func (o *outcome) merge(child outcome) {
	o.brk = o.brk || child.brk
	o.cont = o.cont || child.cont
	o.jump = o.jump || child.jump
}

// Facts holds the per-statement facts of one function body.
type Facts struct {
	b    *ast.Builder
	Func ast.DeclID

	facts    map[ast.StmtID]Fact
	outcomes map[ast.StmtID]outcome
	dead     [][]ast.StmtID
	body     outcome
}

// Fact returns the fact of a statement; statements outside the analyzed
// body report the zero Fact.
func (f *Facts) Fact(s ast.StmtID) Fact {
	return f.facts[s]
}

// Reachable is shorthand for Fact(s).Reachable.
func (f *Facts) Reachable(s ast.StmtID) bool {
	return f.facts[s].Reachable
}

// CompletesNormally reports whether s can complete normally when executed,
// regardless of whether it is reachable.
func (f *Facts) CompletesNormally(s ast.StmtID) bool {
	return f.outcomes[s].normal
}

// FallsOffEnd reports whether control can reach the closing brace of the body.
func (f *Facts) FallsOffEnd() bool {
	return f.body.normal
}

// DeadRuns returns the unreachable statement runs of every statement
// sequence, in source order. Each run ends at the next label, case or default.
func (f *Facts) DeadRuns() [][]ast.StmtID {
	return f.dead
}

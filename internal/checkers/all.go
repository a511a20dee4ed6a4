package checkers

import (
	"fmt"

	"codan/internal/checker"
)

// All returns one instance of every built-in checker in catalogue order.
func All() []checker.Checker {
	return []checker.Checker{
		AbstractInstantiation{},
		MemberConst{},
		MemberInit{},
		SwitchCase{},
		Return{},
		Shadowing{},
		VirtualCall{},
		DeadCode{},
		AssignmentInCondition{},
		AssignmentToItself{},
		NoEffect{},
		SuspiciousSemicolon{},
		CatchByReference{},
		NonVirtualDestructor{},
		Goto{},
		CStyleCast{},
		FloatCompare{},
		MagicNumbers{},
		MultipleDeclarations{},
		ProblemBinding{},
		NamingConvention{},
		UnusedSymbol{},
		Blacklist{},
		Copyright{},
		Header{},
		SuggestedParenthesis{},
	}
}

// Registry returns the registry of the built-in checkers.
func Registry() *checker.Registry {
	reg, err := checker.NewRegistry(All()...)
	if err != nil {
		panic(fmt.Errorf("checkers: built-in catalogue: %w", err))
	}
	return reg
}

// Package engine runs the checkers of a registry over one translation unit.
//
// A run builds the scope table once, executes every checker that has an
// enabled rule (in parallel up to Options.Jobs), moves problems produced
// inside macro expansions to the invocation site, drops problems matched by
// a rule's exclude globs or by an @suppress comment, and returns the
// deduplicated problems in position order.
package engine

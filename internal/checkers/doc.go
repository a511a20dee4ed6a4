// Package checkers holds the built-in rules.
//
// Every checker is a stateless value; per-run state lives in the
// checker.Pass handed to Run. Checkers walk function bodies through
// Pass.EachFunction or Pass.Inspect so that cancellation is observed once
// per function, and report through Pass.Report, which drops disabled rules.
// Sites that depend on an unresolved name are skipped.
package checkers

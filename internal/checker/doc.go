// Package checker defines the contract between the engine and the rules.
//
// A Checker declares its rules up front and reports candidates into its own
// Pass. The engine owns everything after that: macro remapping, exclusion
// globs, @suppress comments and the final problem bag. A checker that panics
// loses its candidates and nothing else.
package checker

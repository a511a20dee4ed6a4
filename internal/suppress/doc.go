// Package suppress handles @suppress("<rule name>") comments.
//
// # Placement
//
// A suppression comment silences problems of the named rule when it is
//
//   - inside the statement or declaration containing the problem,
//   - on the line where that statement ends, or
//   - on the line where the problem starts.
//
//	int x = y; // @suppress("Symbol shadowing")
//
//	if (a = b) { // @suppress("Assignment in condition")
//	}
//
// One comment may name several rules:
//
//	/* @suppress("Magic number") @suppress("C-style cast") */
//
// # Matching
//
// Names are the human-readable rule names, compared case-sensitively after
// Unicode NFC normalization of both sides.
//
// Comments inside the textual body of a macro definition never suppress;
// the problem is reported at the invocation site, which is where the
// suppression has to be written.
package suppress

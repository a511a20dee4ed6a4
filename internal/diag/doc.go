// Package diag defines the problem model shared by checkers, the engine and
// the output formatters.
//
// # Data model
//
// Problem is the central record:
//
//   - RuleID – stable identifier of the rule that produced it (e.g. "NoReturn").
//   - Severity – Info, Warning or Error; the rule default unless configuration overrides it.
//   - Span – primary source range, already remapped out of macro expansions.
//   - Message – rendered human text.
//   - Args – the raw message arguments, kept for machine consumers (JSON, SARIF).
//   - Notes – optional secondary locations ("declared here").
//
// A Problem is immutable once reported.
//
// # Collecting
//
// Producers talk to a Reporter. Bag is the concurrent-safe sink used by the
// engine: Report is idempotent for identical (RuleID, Span, Args), Finalize
// orders problems by file, start, end, rule id and message. Ordering never depends on the
// order in which checkers ran.
//
// Package diag does no formatting beyond the single-line golden form used by
// tests and the short CLI output; rendering lives in internal/diagfmt.
package diag

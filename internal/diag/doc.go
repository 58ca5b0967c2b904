// Package diag defines the diagnostic model shared by every compiler stage.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error.
//   - Code: numeric identifier with a stable ID ("RES3005") and a taxonomy
//     Kind ("SlotMissing").
//   - Primary: the smallest source.Span responsible for the problem.
//   - Notes: secondary spans ("first `then` slot is here").
//   - Fixes: text edits the fix engine (internal/fix) may apply.
//
// # Emitting
//
// Stages only see a Reporter. ReportError/ReportWarning return a
// ReportBuilder so notes and fixes can be chained before Emit.
//
// A pass feeds all stages into one Collector. It keeps emission order,
// drops exact duplicates, and drops a diagnostic whose code is Derived when
// an error is already recorded at the identical primary span. Earlier
// diagnostics are never removed.
//
// Rendering lives in internal/diagfmt; FormatGoldenDiagnostics here is the
// stable one-line form used by tests.
package diag

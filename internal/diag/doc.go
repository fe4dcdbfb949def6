// Package diag defines the diagnostic model shared by the script front end
// and the ownership validator.
//
// # Scope
//
// Package diag does not format or print anything. Rendering lives in
// internal/diagfmt; orchestration lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – compact numeric identifier with a stable string form (SYN2001,
//     BRW3005, ...).
//   - Message – short, actionable text.
//   - Primary – the span of the offending script line.
//   - Notes – secondary spans such as "value moved here".
//
// Producers emit through a Reporter, usually via ReportError(...).WithNote(...).Emit().
// BagReporter stores diagnostics in a Bag that supports limits, sorting and
// deduplication.
package diag

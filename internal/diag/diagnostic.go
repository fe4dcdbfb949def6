package diag

import "borrowck/internal/source"

// Note points at a secondary location, e.g. "value moved here".
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

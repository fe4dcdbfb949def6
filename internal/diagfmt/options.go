package diagfmt

import "borrowck/internal/source"

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int8 // строк контекста перед основной строкой
	PathMode  source.PathMode
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         source.PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
}

// ShortOpts configures one-line-per-diagnostic output.
type ShortOpts struct {
	IncludeNotes bool
}

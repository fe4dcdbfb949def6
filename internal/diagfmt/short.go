package diagfmt

import (
	"io"

	"borrowck/internal/diag"
	"borrowck/internal/source"
)

// Short writes one line per diagnostic, the format used by golden tests.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts ShortOpts) error {
	out := diag.FormatShort(bag.Items(), fs, opts.IncludeNotes)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}

package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"borrowck/internal/diag"
	"borrowck/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	gutter, caret   *color.Color
	note            *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		path:   color.New(color.FgWhite, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее). Для каждой диагностики:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	  12 | borrow mut v
//	     | ^^^^^^^^^^^^
//	  note: <path>:<line>:<col>: <Msg>
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	start, _ := fs.Resolve(d.Primary)
	loc := fmt.Sprintf("%s:%d:%d", displayPath(fs, d.Primary.File, opts.PathMode), start.Line, start.Col)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		pal.path.Sprint(loc),
		pal.severity(d.Severity).Sprint(strings.ToUpper(d.Severity.String())),
		pal.code.Sprint(d.Code.ID()),
		d.Message,
	)
	snippet(w, fs, d.Primary, int(opts.Context), pal)

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		ns, _ := fs.Resolve(n.Span)
		nloc := fmt.Sprintf("%s:%d:%d", displayPath(fs, n.Span.File, opts.PathMode), ns.Line, ns.Col)
		fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"), nloc, n.Msg)
		snippet(w, fs, n.Span, 0, pal)
	}
}

// snippet prints the line holding span with a caret underline. Multi-line
// spans are underlined to the end of their first line.
func snippet(w io.Writer, fs *source.FileSet, span source.Span, context int, pal palette) {
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return
	}
	first := max(int(start.Line)-context, 1)
	width := len(strconv.Itoa(int(start.Line)))

	for n := first; n <= int(start.Line); n++ {
		fmt.Fprintf(w, "  %s %s\n", pal.gutter.Sprintf("%*d |", width, n), expandTabs(f.Line(uint32(n))))
	}

	line := f.Line(start.Line)
	from := clampCol(start.Col, line)
	to := len(line)
	if end.Line == start.Line {
		to = clampCol(end.Col, line)
	}
	pad := runewidth.StringWidth(expandTabs(line[:from]))
	length := max(runewidth.StringWidth(expandTabs(line[from:max(to, from)])), 1)
	fmt.Fprintf(w, "  %s %s%s\n",
		pal.gutter.Sprintf("%*s |", width, ""),
		strings.Repeat(" ", pad),
		pal.caret.Sprint(strings.Repeat("^", length)),
	)
}

// clampCol converts a 1-based byte column into a slice index within line.
func clampCol(col uint32, line string) int {
	if col == 0 {
		return 0
	}
	return min(int(col)-1, len(line))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

package diag

import (
	"fmt"
	"sort"
	"strings"

	"borrowck/internal/source"
)

type shortLine struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders diagnostics one per line in a stable order:
//
//	error BRW3005 path/to/file.own:3:1 message
//
// Notes follow as "note" lines when includeNotes is set. Used for golden tests and --format short.
func FormatShort(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	lines := make([]shortLine, 0, len(diags))
	for _, d := range diags {
		if loc, ok := locate(fs, d.Primary); ok {
			lines = append(lines, shortLine{
				Severity: d.Severity.Label(),
				Code:     d.Code.ID(),
				Path:     loc.Path,
				Line:     loc.Line,
				Column:   loc.Column,
				Message:  oneLine(d.Message),
			})
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			loc, ok := locate(fs, n.Span)
			if !ok {
				continue
			}
			lines = append(lines, shortLine{
				Severity: "note",
				Code:     d.Code.ID(),
				Path:     loc.Path,
				Line:     loc.Line,
				Column:   loc.Column,
				Message:  oneLine(n.Msg),
			})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s %s %s:%d:%d %s", l.Severity, l.Code, l.Path, l.Line, l.Column, l.Message)
	}
	return sb.String()
}

type location struct {
	Path   string
	Line   uint32
	Column uint32
}

func locate(fs *source.FileSet, span source.Span) (location, bool) {
	f := fs.Get(span.File)
	if f == nil {
		return location{}, false
	}
	start, _ := fs.Resolve(span)
	path := strings.TrimPrefix(f.DisplayPath(source.PathRelative, fs.BaseDir()), "./")
	return location{Path: path, Line: start.Line, Column: start.Col}, true
}

func oneLine(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}

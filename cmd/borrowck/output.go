package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"borrowck/internal/borrow"
	"borrowck/internal/diagfmt"
	"borrowck/internal/driver"
	"borrowck/internal/source"
)

type fileReport struct {
	Path        string                    `json:"path"`
	OK          bool                      `json:"ok"`
	Cached      bool                      `json:"cached,omitempty"`
	Violation   string                    `json:"violation,omitempty"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
	Log         []recordJSON              `json:"log,omitempty"`
	Final       []borrow.BindingState     `json:"final,omitempty"`
}

type recordJSON struct {
	Kind    string `json:"kind"`
	Index   int    `json:"index"`
	Binding string `json:"binding,omitempty"`
	Borrow  string `json:"borrow,omitempty"`
	Scope   string `json:"scope,omitempty"`
	Note    string `json:"note,omitempty"`
}

type checkReport struct {
	Files   []fileReport   `json:"files"`
	Summary driver.Summary `json:"summary"`
}

func pathModeFor(fullPath bool) source.PathMode {
	if fullPath {
		return source.PathAbsolute
	}
	return source.PathAuto
}

func writeResults(out io.Writer, results []*driver.CheckResult, s checkSettings) error {
	pathMode := pathModeFor(s.fullPath)
	switch s.format {
	case "pretty":
		opts := diagfmt.PrettyOpts{
			Color:     s.color,
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: s.withNotes,
		}
		for _, r := range results {
			diagfmt.Pretty(out, r.Bag, r.FileSet, opts)
			if s.emitLog {
				writeLog(out, r)
			}
		}
		return nil
	case "short":
		for _, r := range results {
			if err := diagfmt.Short(out, r.Bag, r.FileSet, diagfmt.ShortOpts{IncludeNotes: s.withNotes}); err != nil {
				return fmt.Errorf("failed to format diagnostics: %w", err)
			}
		}
		return nil
	case "json":
		report := checkReport{Files: make([]fileReport, 0, len(results)), Summary: driver.Summarize(results)}
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     s.withNotes,
		}
		for _, r := range results {
			fr := fileReport{
				Path:        r.Path,
				OK:          r.OK(),
				Cached:      r.Cached,
				Diagnostics: diagfmt.BuildDiagnosticsOutput(r.Bag, r.FileSet, jsonOpts),
			}
			if r.Violation != nil {
				fr.Violation = r.Violation.Kind.String()
			}
			if s.emitLog {
				fr.Log = recordsJSON(r.Log)
				fr.Final = r.Final
			}
			report.Files = append(report.Files, fr)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", s.format)
}

func recordsJSON(log []borrow.Record) []recordJSON {
	out := make([]recordJSON, 0, len(log))
	for _, rec := range log {
		out = append(out, recordJSON{
			Kind:    rec.Kind.String(),
			Index:   rec.Index,
			Binding: rec.Binding,
			Borrow:  rec.Borrow,
			Scope:   rec.Scope,
			Note:    rec.Note,
		})
	}
	return out
}

func writeLog(out io.Writer, r *driver.CheckResult) {
	if len(r.Log) == 0 && len(r.Final) == 0 {
		return
	}
	fmt.Fprintf(out, "== log: %s ==\n", r.Path)
	for _, rec := range r.Log {
		fmt.Fprintln(out, formatRecord(rec))
	}
	fmt.Fprintln(out, "== bindings ==")
	for _, b := range r.Final {
		fmt.Fprintln(out, formatBinding(b))
	}
}

// formatRecord renders one log entry as "#3 borrow_start r <- x (shared) in s".
func formatRecord(rec borrow.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s", rec.Index, rec.Kind)
	switch {
	case rec.Borrow != "" && rec.Binding != "":
		fmt.Fprintf(&sb, " %s <- %s (%s)", rec.Borrow, rec.Binding, rec.BorrowKind)
	case rec.Borrow != "":
		sb.WriteString(" " + rec.Borrow)
	case rec.Binding != "":
		sb.WriteString(" " + rec.Binding)
	}
	if rec.Scope != "" {
		sb.WriteString(" in " + rec.Scope)
	}
	if rec.Note != "" {
		sb.WriteString(" // " + rec.Note)
	}
	return sb.String()
}

func formatBinding(b borrow.BindingState) string {
	var sb strings.Builder
	sb.WriteString(b.Name)
	if b.Mutable {
		sb.WriteString(" mut")
	}
	fmt.Fprintf(&sb, " %s @%s", b.State, b.Scope)
	if len(b.Shared) > 0 {
		sb.WriteString(" shared=" + strings.Join(b.Shared, ","))
	}
	if b.Exclusive != "" {
		sb.WriteString(" exclusive=" + b.Exclusive)
	}
	return sb.String()
}

var (
	summaryOK     = color.New(color.FgGreen, color.Bold)
	summaryFailed = color.New(color.FgRed, color.Bold)
)

func printSummary(out io.Writer, s driver.Summary) {
	verdict := summaryOK.Sprint("ok")
	if s.Failed > 0 {
		verdict = summaryFailed.Sprintf("%d failed", s.Failed)
	}
	fmt.Fprintf(out, "checked %d file(s): %s", s.Files, verdict)
	if s.Cached > 0 {
		fmt.Fprintf(out, " (%d cached)", s.Cached)
	}
	fmt.Fprintln(out)
}

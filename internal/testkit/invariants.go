package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"borrowck/internal/script"
	"borrowck/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed script:
// 1) every event has exactly one span
// 2) every span is non-empty, points at the script file and stays within its content
// 3) spans never move backwards: event order follows source order
func CheckSpanInvariants(prog *script.Program) error {
	if prog == nil || prog.File == nil {
		return fmt.Errorf("nil program or file")
	}
	if len(prog.Spans) != len(prog.Events) {
		return fmt.Errorf("span count %d does not match event count %d", len(prog.Spans), len(prog.Events))
	}
	lenContent, err := safecast.Conv[uint32](len(prog.File.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	whole := source.Span{File: prog.File.ID, End: lenContent}
	var prevStart uint32
	for i, sp := range prog.Spans {
		if sp.Empty() {
			return fmt.Errorf("event %d (%s): empty span %v", i, prog.Events[i], sp)
		}
		if sp.File != prog.File.ID {
			return fmt.Errorf("event %d: span file mismatch: got=%d want=%d", i, sp.File, prog.File.ID)
		}
		if !whole.Contains(sp) {
			return fmt.Errorf("event %d: span %v beyond content of %d bytes", i, sp, lenContent)
		}
		if sp.Start < prevStart {
			return fmt.Errorf("event %d: span %v starts before the previous event", i, sp)
		}
		prevStart = sp.Start
	}
	return nil
}

package observ

import (
	"strings"
	"testing"
)

func TestTimerMergeSumsPhases(t *testing.T) {
	a := NewTimer()
	a.End(a.Begin("parse"), "")
	a.End(a.Begin("validate"), "ok")

	b := NewTimer()
	b.End(b.Begin("parse"), "")

	total := NewTimer()
	total.Merge(a)
	total.Merge(b)

	rep := total.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %+v", rep.Phases)
	}
	if rep.Phases[0].Name != "parse" || rep.Phases[0].Count != 2 {
		t.Fatalf("parse phase = %+v", rep.Phases[0])
	}
	if rep.Phases[1].Note != "ok" {
		t.Fatalf("note lost: %+v", rep.Phases[1])
	}
}

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	tm.End(tm.Begin("load"), "3 files")
	tm.End(99, "ignored")

	out := tm.Summary()
	for _, want := range []string{"timings:", "load", "// 3 files", "total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if (&Timer{}).Report().Phases != nil {
		t.Fatal("empty timer must report no phases")
	}
}

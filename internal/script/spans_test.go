package script_test

import (
	"testing"

	"borrowck/internal/diag"
	"borrowck/internal/script"
	"borrowck/internal/source"
	"borrowck/internal/testkit"
)

func TestParsedSpansHoldInvariants(t *testing.T) {
	scripts := map[string]string{
		"flat": "bind x\nread x\nwrite x\n",
		"scopes": `bind mut v
enter inner
  borrow v as r in inner
  read r
exit inner
write v
`,
		"closure": `bind mut counter
closure inc {
  mut counter,
}
call inc
drop inc
`,
		"comments": "# header\n\nbind a   # trailing\nmove a -> b\n",
	}
	for name, content := range scripts {
		t.Run(name, func(t *testing.T) {
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual(name+".own", []byte(content)))
			bag := diag.NewBag(16)
			prog := script.Parse(file, diag.BagReporter{Bag: bag})
			if bag.HasErrors() {
				t.Fatalf("unexpected diagnostics: %+v", bag.Items())
			}
			if len(prog.Events) == 0 {
				t.Fatal("no events parsed")
			}
			if err := testkit.CheckSpanInvariants(prog); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestSpanInvariantsRejectMismatch(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("m.own", []byte("bind x\nread x\n")))
	prog := script.Parse(file, diag.NopReporter{})
	prog.Spans = prog.Spans[:1]
	if err := testkit.CheckSpanInvariants(prog); err == nil {
		t.Fatal("expected span count mismatch")
	}
}

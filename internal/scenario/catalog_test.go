package scenario

import (
	"context"
	"testing"

	"borrowck/internal/borrow"
	"borrowck/internal/driver"
	"borrowck/internal/testkit"
)

func TestCatalogVerdicts(t *testing.T) {
	for _, s := range All() {
		t.Run(s.Name, func(t *testing.T) {
			out := Run(context.Background(), s, driver.Options{})
			if !out.Pass() {
				t.Fatalf("want %v, got %v; diagnostics: %+v", s.Want, out.Got, out.Result.Bag.Items())
			}
		})
	}
}

func TestCatalogNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range All() {
		if seen[s.Name] {
			t.Fatalf("duplicate scenario %q", s.Name)
		}
		seen[s.Name] = true
		if s.Title == "" {
			t.Errorf("%s: missing title", s.Name)
		}
	}
}

func TestStrictScenariosNeedStrictRules(t *testing.T) {
	for _, name := range []string{"result-outlives-argument", "closure-use-while-captured"} {
		s, ok := Lookup(name)
		if !ok {
			t.Fatalf("scenario %q missing", name)
		}
		s.Strict = false
		out := Run(context.Background(), s, driver.Options{})
		if out.Got == s.Want {
			t.Errorf("%s: base rules must not report %v", name, s.Want)
		}
	}
}

func TestRunAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := RunAll(ctx, All(), driver.Options{})
	if err == nil || len(out) != 0 {
		t.Fatalf("expected cancellation, got %d outcomes, err %v", len(out), err)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("no-such-scenario"); ok {
		t.Fatal("unexpected hit")
	}
	if s, _ := Lookup("use-after-move"); s.Want != borrow.UseAfterMove {
		t.Fatalf("unexpected scenario %+v", s)
	}
}

func TestCatalogSpanInvariants(t *testing.T) {
	for _, s := range All() {
		out := Run(context.Background(), s, driver.Options{})
		if err := testkit.CheckSpanInvariants(out.Result.Program); err != nil {
			t.Errorf("%s: %v", s.Name, err)
		}
	}
}

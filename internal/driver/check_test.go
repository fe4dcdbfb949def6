package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"borrowck/internal/borrow"
	"borrowck/internal/diag"
	"borrowck/internal/trace"
)

func TestCheckSourceViolation(t *testing.T) {
	src := "bind s1\nmove s1 -> s2\nread s1\n"
	res := CheckSource(context.Background(), "basics.own", []byte(src), Options{})
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Violation == nil || res.Violation.Kind != borrow.UseAfterMove {
		t.Fatalf("violation = %+v", res.Violation)
	}
	items := res.Bag.Items()
	if len(items) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(items))
	}
	d := items[0]
	if d.Code != diag.BorrowUseAfterMove {
		t.Fatalf("code = %v", d.Code)
	}
	if len(d.Notes) != 1 || d.Notes[0].Msg != "value moved here" {
		t.Fatalf("notes = %+v", d.Notes)
	}
	got := diag.FormatShort(items, res.FileSet, true)
	want := "note BRW3002 basics.own:2:1 value moved here\nerror BRW3002 basics.own:3:1 use of moved value 's1'"
	if got != want {
		t.Fatalf("short output\n got: %q\nwant: %q", got, want)
	}
}

func TestCheckSourceSyntaxErrorSkipsValidation(t *testing.T) {
	res := CheckSource(context.Background(), "bad.own", []byte("bind x\nmove x\nread x\n"), Options{})
	if res.OK() {
		t.Fatal("syntax error must fail the check")
	}
	if res.Violation != nil {
		t.Fatal("validation must not run on a broken script")
	}
	if res.Bag.Items()[0].Code != diag.SynUnexpectedToken {
		t.Fatalf("code = %v", res.Bag.Items()[0].Code)
	}
}

func TestCheckSourceStrictRules(t *testing.T) {
	src := "bind mut v\nborrow v as r\nwrite v\n"
	if res := CheckSource(context.Background(), "a.own", []byte(src), Options{}); !res.OK() {
		t.Fatalf("base rules must accept: %+v", res.Bag.Items())
	}
	res := CheckSource(context.Background(), "a.own", []byte(src), Options{Rules: borrow.StrictOptions()})
	if res.Violation == nil || res.Violation.Kind != borrow.ConflictingBorrow {
		t.Fatalf("strict rules must reject, got %+v", res.Violation)
	}
}

func TestCheckSourceWarningPolicy(t *testing.T) {
	src := "bind x\nclosure c {}\nread x\n"
	ctx := context.Background()

	res := CheckSource(ctx, "w.own", []byte(src), Options{})
	if !res.OK() || res.Bag.Len() != 1 {
		t.Fatalf("warning must not fail the check: %+v", res.Bag.Items())
	}
	if res := CheckSource(ctx, "w.own", []byte(src), Options{Warnings: diag.WarningsIgnore}); res.Bag.Len() != 0 {
		t.Fatalf("ignored warnings still reported: %+v", res.Bag.Items())
	}
	res = CheckSource(ctx, "w.own", []byte(src), Options{Warnings: diag.WarningsAsErrors})
	if res.OK() {
		t.Fatal("promoted warning must fail the check")
	}
	if res.Violation != nil {
		t.Fatalf("validation must be skipped, got %v", res.Violation)
	}
}

func TestCheckSourceKeepLog(t *testing.T) {
	src := "bind x\nenter s\nshare x as r in s\nexit s\n"
	res := CheckSource(context.Background(), "log.own", []byte(src), Options{KeepLog: true})
	if !res.OK() {
		t.Fatalf("unexpected failure: %+v", res.Bag.Items())
	}
	var kinds []string
	for _, rec := range res.Log {
		kinds = append(kinds, rec.Kind.String())
	}
	want := "bind scope_enter borrow_start borrow_end scope_exit"
	if strings.Join(kinds, " ") != want {
		t.Fatalf("log = %v, want %s", kinds, want)
	}
	if len(res.Final) != 1 || res.Final[0].State != borrow.Owned {
		t.Fatalf("final = %+v", res.Final)
	}
}

func TestCheckFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.own")
	res, err := CheckFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("load failure must be a diagnostic, got error %v", err)
	}
	if res.OK() || res.Bag.Items()[0].Code != diag.IOLoadFileError {
		t.Fatalf("expected IO4001, got %+v", res.Bag.Items())
	}
}

func TestCheckFileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CheckFile(ctx, "x.own", Options{}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestCheckTracesRecords(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	CheckSource(ctx, "t.own", []byte("bind x\nread x\n"), Options{})

	var names []string
	for _, ev := range ring.Snapshot() {
		if ev.Scope == trace.ScopeEvent {
			names = append(names, ev.Name)
		}
	}
	if strings.Join(names, ",") != "bind,read" {
		t.Fatalf("event points = %v", names)
	}
}

func writeScripts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestCheckDir(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"b.own":         "bind x\nbind x\n",
		"a.own":         "bind x\nread x\n",
		"nested/c.own":  "bind mut v\nborrow mut v\nborrow v\n",
		"notes.txt":     "not a script",
		".hidden/d.own": "garbage",
	})
	sink := &recordingSink{}
	results, err := CheckDir(context.Background(), dir, Options{Jobs: 2, Sink: sink})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	wantKinds := []borrow.ViolationKind{borrow.ViolationNone, borrow.DuplicateBinding, borrow.ConflictingBorrow}
	for i, r := range results {
		got := borrow.ViolationNone
		if r.Violation != nil {
			got = r.Violation.Kind
		}
		if got != wantKinds[i] {
			t.Errorf("%s: kind %v, want %v", r.Path, got, wantKinds[i])
		}
	}

	sum := Summarize(results)
	if sum.Files != 3 || sum.Failed != 2 || sum.Violations != 2 {
		t.Fatalf("summary = %+v", sum)
	}

	final := map[string]Status{}
	for _, ev := range sink.events {
		final[ev.File] = ev.Status
	}
	if final[filepath.Join(dir, "a.own")] != StatusDone || final[filepath.Join(dir, "b.own")] != StatusError {
		t.Fatalf("unexpected final statuses: %v", final)
	}
}

func TestCheckDirEmpty(t *testing.T) {
	results, err := CheckDir(context.Background(), t.TempDir(), Options{})
	if err != nil || results != nil {
		t.Fatalf("expected no results, got %v %v", results, err)
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"borrowck/internal/borrow"
	"borrowck/internal/driver"
)

func TestFormatRecord(t *testing.T) {
	tests := []struct {
		rec  borrow.Record
		want string
	}{
		{borrow.Record{Kind: borrow.RecBind, Index: 0, Binding: "x", Scope: "s"}, "#0 bind x in s"},
		{borrow.Record{Kind: borrow.RecBorrowStart, Index: 2, Binding: "x", Borrow: "r", BorrowKind: borrow.Exclusive}, "#2 borrow_start r <- x (exclusive)"},
		{borrow.Record{Kind: borrow.RecViolation, Index: 4, Binding: "x", Note: "UseAfterMove"}, "#4 violation x // UseAfterMove"},
	}
	for _, tt := range tests {
		if got := formatRecord(tt.rec); got != tt.want {
			t.Errorf("formatRecord = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatBinding(t *testing.T) {
	b := borrow.BindingState{Name: "v", State: borrow.Owned, Mutable: true, Scope: "<root>", Shared: []string{"a", "b"}}
	if got, want := formatBinding(b), "v mut owned @<root> shared=a,b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriteResultsJSON(t *testing.T) {
	res := driver.CheckSource(context.Background(), "m.own", []byte("bind x\nmove x -> y\nread x\n"), driver.Options{KeepLog: true})

	var buf bytes.Buffer
	s := checkSettings{format: "json", withNotes: true, emitLog: true}
	if err := writeResults(&buf, []*driver.CheckResult{res}, s); err != nil {
		t.Fatalf("writeResults: %v", err)
	}
	var report struct {
		Files []struct {
			Path      string `json:"path"`
			OK        bool   `json:"ok"`
			Violation string `json:"violation"`
			Log       []struct {
				Kind string `json:"kind"`
			} `json:"log"`
			Final []struct {
				Name  string `json:"name"`
				State string `json:"state"`
			} `json:"final"`
		} `json:"files"`
		Summary driver.Summary `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if len(report.Files) != 1 {
		t.Fatalf("files = %d", len(report.Files))
	}
	f := report.Files[0]
	if f.OK || f.Violation != "UseAfterMove" {
		t.Fatalf("unexpected verdict: %+v", f)
	}
	if len(f.Log) == 0 || f.Log[len(f.Log)-1].Kind != "violation" {
		t.Fatalf("log does not end with the violation: %+v", f.Log)
	}
	if len(f.Final) == 0 || f.Final[0].Name != "x" || f.Final[0].State != "moved" {
		t.Fatalf("unexpected final states: %+v", f.Final)
	}
	if report.Summary.Failed != 1 || report.Summary.Violations != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
}

func TestWriteResultsShort(t *testing.T) {
	res := driver.CheckSource(context.Background(), "ok.own", []byte("bind x\nread x\n"), driver.Options{})
	var buf bytes.Buffer
	if err := writeResults(&buf, []*driver.CheckResult{res}, checkSettings{format: "short"}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("clean script printed %q", buf.String())
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, driver.Summary{Files: 3, Failed: 1, Cached: 2})
	out := buf.String()
	if !strings.Contains(out, "checked 3 file(s)") || !strings.Contains(out, "1 failed") || !strings.Contains(out, "(2 cached)") {
		t.Fatalf("unexpected summary %q", out)
	}
}

func TestSelectScenarios(t *testing.T) {
	all, err := selectScenarios(nil)
	if err != nil || len(all) == 0 {
		t.Fatalf("selectScenarios(nil) = %d, %v", len(all), err)
	}
	one, err := selectScenarios([]string{all[0].Name})
	if err != nil || len(one) != 1 || one[0].Name != all[0].Name {
		t.Fatalf("selectScenarios(name) = %+v, %v", one, err)
	}
	if _, err := selectScenarios([]string{"no-such-scenario"}); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

package main

import (
	"testing"

	"github.com/spf13/cobra"

	"borrowck/internal/borrow"
	"borrowck/internal/diag"
)

func TestWarningPolicy(t *testing.T) {
	if _, err := warningPolicy(true, true); err == nil {
		t.Fatal("expected conflict error")
	}
	if p, _ := warningPolicy(true, false); p != diag.WarningsIgnore {
		t.Fatalf("got %v", p)
	}
	if p, _ := warningPolicy(false, true); p != diag.WarningsAsErrors {
		t.Fatalf("got %v", p)
	}
	if p, _ := warningPolicy(false, false); p != diag.WarningsKeep {
		t.Fatalf("got %v", p)
	}
}

// settingsFor runs a throwaway command tree so flags parse exactly as in main.
func settingsFor(t *testing.T, manifest *projectManifest, args ...string) checkSettings {
	t.Helper()
	root := &cobra.Command{Use: "borrowck", SilenceUsage: true, SilenceErrors: true}
	registerGlobalFlags(root)
	var got checkSettings
	cmd := &cobra.Command{
		Use: "check",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			got, err = readCheckSettings(cmd, manifest)
			return err
		},
	}
	registerCheckFlags(cmd)
	root.AddCommand(cmd)
	root.SetArgs(append([]string{"check"}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	return got
}

func TestReadCheckSettingsDefaults(t *testing.T) {
	s := settingsFor(t, nil)
	if s.format != "pretty" || s.maxDiags != 100 || s.jobs != 0 || s.cache {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.rules != (borrow.Options{}) || s.warnings != diag.WarningsKeep || !s.withNotes {
		t.Fatalf("unexpected rule defaults: %+v", s)
	}
}

func TestReadCheckSettingsManifestAndFlags(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[check]
reject_dangling = true
jobs = 3
max_diagnostics = 7
warnings_as_errors = true

[output]
format = "json"
color = "off"
`)
	m, _, err := loadProjectManifest(dir)
	if err != nil {
		t.Fatal(err)
	}

	s := settingsFor(t, m, "--jobs", "5", "--color", "on")
	if !s.rules.RejectDangling || s.rules.FreezeBorrowed {
		t.Fatalf("rules = %+v", s.rules)
	}
	if s.jobs != 5 || s.maxDiags != 7 || s.format != "json" {
		t.Fatalf("merge = %+v", s)
	}
	if s.warnings != diag.WarningsAsErrors || !s.color {
		t.Fatalf("warnings/color = %v/%v", s.warnings, s.color)
	}

	s = settingsFor(t, m, "--format", "short", "--warnings-as-errors=false", "--strict")
	if s.format != "short" || s.warnings != diag.WarningsKeep || s.color {
		t.Fatalf("flag override = %+v", s)
	}
	if s.rules != borrow.StrictOptions() {
		t.Fatalf("strict rules = %+v", s.rules)
	}
}

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"borrowck/internal/borrow"
	"borrowck/internal/driver"
)

func newTestRoot() (*cobra.Command, *bytes.Buffer) {
	root := &cobra.Command{Use: "borrowck", SilenceUsage: true, SilenceErrors: true}
	registerGlobalFlags(root)
	check := &cobra.Command{Use: "check", Args: cobra.ExactArgs(1), RunE: runCheck}
	registerCheckFlags(check)
	root.AddCommand(check)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	return root, &out
}

func TestCheckCommandUsesManifest(t *testing.T) {
	root, out := newTestRoot()
	root.SetArgs([]string{"check", "--ui", "off", "testdata/project"})
	err := root.Execute()
	if !errors.Is(err, errChecksFailed) {
		t.Fatalf("err = %v, want errChecksFailed; output:\n%s", err, out.String())
	}
	got := out.String()
	code := driver.CodeFor(borrow.DanglingBorrow).ID()
	if !strings.Contains(got, code) || !strings.Contains(got, "dangling.own:7:") {
		t.Fatalf("missing dangling borrow diagnostic:\n%s", got)
	}
	if strings.Contains(got, "ok.own") {
		t.Fatalf("legal script reported:\n%s", got)
	}
}

func TestCheckCommandFlagOverridesManifest(t *testing.T) {
	root, out := newTestRoot()
	root.SetArgs([]string{"check", "--ui", "off", "--strict=false", "testdata/project"})
	if err := root.Execute(); err != nil {
		t.Fatalf("base rules must accept: %v\n%s", err, out.String())
	}
	if out.Len() != 0 {
		t.Fatalf("short format must stay silent on success, got:\n%s", out.String())
	}
}

func TestCheckCommandMissingPath(t *testing.T) {
	root, _ := newTestRoot()
	root.SetArgs([]string{"check", "testdata/no-such-dir"})
	err := root.Execute()
	if err == nil || errors.Is(err, errChecksFailed) {
		t.Fatalf("expected stat error, got %v", err)
	}
}

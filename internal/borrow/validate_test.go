package borrow

import (
	"errors"
	"testing"
)

func expectKind(t *testing.T, err error, want ViolationKind, wantIndex int) *Violation {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v at event %d, got success", want, wantIndex)
	}
	var v *Violation
	if !errors.As(err, &v) {
		t.Fatalf("expected *Violation, got %T: %v", err, err)
	}
	if v.Kind != want {
		t.Fatalf("expected %v, got %v (%v)", want, v.Kind, v)
	}
	if v.Index != wantIndex {
		t.Fatalf("expected violation at event %d, got %d (%v)", wantIndex, v.Index, v)
	}
	return v
}

func expectOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestValidateLegalSequence(t *testing.T) {
	events := []Event{
		Bind("s1", false),
		Move("s1", "s2"),
		Read("s2"),
		Bind("x", false),
		Bind("y", false),
		Read("x"),
		Read("y"),
		EnterScope("f"),
		Bind("v", true),
		BorrowShared("v", "f").As("first"),
		Read("first"),
		ReleaseBorrow("first"),
		Write("v"),
		BorrowExclusive("v", "").As("m"),
		Write("m"),
		ExitScope("f"),
		Read("s2"),
	}
	expectOK(t, Validate(events))
}

func TestExclusiveThenSharedConflicts(t *testing.T) {
	err := Validate([]Event{
		Bind("x", true),
		BorrowExclusive("x", ""),
		BorrowShared("x", ""),
	})
	v := expectKind(t, err, ConflictingBorrow, 2)
	if v.Other != "#1" || v.Related != 1 {
		t.Fatalf("expected conflict with borrow #1 at event 1, got other=%q related=%d", v.Other, v.Related)
	}
}

func TestMultipleSharedBorrowsCoexist(t *testing.T) {
	expectOK(t, Validate([]Event{
		Bind("x", false),
		BorrowShared("x", ""),
		BorrowShared("x", ""),
	}))
}

func TestReadAfterMove(t *testing.T) {
	err := Validate([]Event{
		Bind("x", false),
		Move("x", "y"),
		Read("x"),
	})
	v := expectKind(t, err, UseAfterMove, 2)
	if v.Related != 1 || v.RelatedNote != "value moved here" {
		t.Fatalf("expected related move at 1, got %d %q", v.Related, v.RelatedNote)
	}
}

func TestScopeExitReleasesAndDrops(t *testing.T) {
	err := Validate([]Event{
		EnterScope("s"),
		Bind("a", true),
		BorrowExclusive("a", "s"),
		ExitScope("s"),
		Read("a"),
	})
	expectKind(t, err, UseAfterDrop, 4)

	c := NewChecker(Options{})
	for _, ev := range []Event{EnterScope("s"), Bind("a", true), BorrowExclusive("a", "s"), ExitScope("s")} {
		if err := c.Apply(ev); err != nil {
			t.Fatalf("unexpected violation: %v", err)
		}
	}
	snap := c.Snapshot()
	if len(snap) != 1 || snap[0].State != Dropped || snap[0].Exclusive != "" {
		t.Fatalf("expected a dropped, unborrowed binding, got %+v", snap)
	}
}

func TestValidateHasNoCrossRunState(t *testing.T) {
	events := []Event{
		Bind("x", true),
		BorrowExclusive("x", "").As("r"),
		Write("r"),
		ReleaseBorrow("r"),
		Move("x", "y"),
	}
	expectOK(t, Validate(events))
	expectOK(t, Validate(events))
}

func TestMoveWhileBorrowed(t *testing.T) {
	for _, kind := range []EventKind{EvBorrowShared, EvBorrowExclusive} {
		t.Run(kind.String(), func(t *testing.T) {
			err := Validate([]Event{
				Bind("x", true),
				{Kind: kind, ID: "x", Borrow: "r"},
				Move("x", "y"),
			})
			v := expectKind(t, err, BorrowedWhileMoving, 2)
			if v.Other != "r" {
				t.Fatalf("expected conflicting borrow r, got %q", v.Other)
			}
		})
	}
}

func TestViolationTable(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   ViolationKind
		index  int
	}{
		{
			name:   "duplicate binding",
			events: []Event{Bind("x", false), Bind("x", true)},
			want:   DuplicateBinding, index: 1,
		},
		{
			name:   "move into live binding",
			events: []Event{Bind("x", false), Bind("y", false), Move("x", "y")},
			want:   DuplicateBinding, index: 2,
		},
		{
			name:   "rebind after move is allowed until duplicate",
			events: []Event{Bind("x", false), Move("x", "y"), Bind("x", false), Bind("y", false)},
			want:   DuplicateBinding, index: 3,
		},
		{
			name:   "move of moved value",
			events: []Event{Bind("x", false), Move("x", "y"), Move("x", "z")},
			want:   UseAfterMove, index: 2,
		},
		{
			name:   "borrow of moved value",
			events: []Event{Bind("x", false), Move("x", "y"), BorrowShared("x", "")},
			want:   UseAfterMove, index: 2,
		},
		{
			name:   "exclusive borrow of dropped value",
			events: []Event{EnterScope("s"), Bind("x", true), ExitScope("s"), BorrowExclusive("x", "")},
			want:   UseAfterDrop, index: 3,
		},
		{
			name:   "move of dropped value",
			events: []Event{EnterScope("s"), Bind("x", true), ExitScope("s"), Move("x", "y")},
			want:   UseAfterDrop, index: 3,
		},
		{
			name:   "write of dropped value",
			events: []Event{EnterScope("s"), Bind("x", true), ExitScope("s"), Write("x")},
			want:   UseAfterDrop, index: 3,
		},
		{
			name:   "exclusive borrow of immutable",
			events: []Event{Bind("x", false), BorrowExclusive("x", "")},
			want:   NotMutable, index: 1,
		},
		{
			name:   "not mutable is checked before conflicts",
			events: []Event{Bind("x", false), BorrowShared("x", ""), BorrowExclusive("x", "")},
			want:   NotMutable, index: 2,
		},
		{
			name:   "double exclusive",
			events: []Event{Bind("s", true), BorrowExclusive("s", ""), BorrowExclusive("s", "")},
			want:   ConflictingBorrow, index: 2,
		},
		{
			name:   "exclusive while shared",
			events: []Event{Bind("s", true), BorrowShared("s", ""), BorrowExclusive("s", "")},
			want:   ConflictingBorrow, index: 2,
		},
		{
			name:   "write immutable",
			events: []Event{Bind("x", false), Write("x")},
			want:   NotMutable, index: 1,
		},
		{
			name:   "write through shared borrow",
			events: []Event{Bind("x", true), BorrowShared("x", "").As("r"), Write("r")},
			want:   NotMutable, index: 2,
		},
		{
			name:   "release twice",
			events: []Event{Bind("x", false), BorrowShared("x", "").As("r"), ReleaseBorrow("r"), ReleaseBorrow("r")},
			want:   UnknownBorrow, index: 3,
		},
		{
			name:   "release never created",
			events: []Event{ReleaseBorrow("nope")},
			want:   UnknownBorrow, index: 0,
		},
		{
			name:   "read through released borrow",
			events: []Event{Bind("x", false), BorrowShared("x", "").As("r"), ReleaseBorrow("r"), Read("r")},
			want:   UnknownBorrow, index: 3,
		},
		{
			name:   "exit wrong scope",
			events: []Event{EnterScope("a"), EnterScope("b"), ExitScope("a")},
			want:   ScopeMismatch, index: 2,
		},
		{
			name:   "exit with nothing open",
			events: []Event{Bind("x", false), ExitScope("a")},
			want:   ScopeMismatch, index: 1,
		},
		{
			name:   "enter already open scope",
			events: []Event{EnterScope("a"), EnterScope("a")},
			want:   ScopeMismatch, index: 1,
		},
		{
			name:   "borrow into closed scope",
			events: []Event{EnterScope("a"), ExitScope("a"), Bind("x", false), BorrowShared("x", "a")},
			want:   ScopeMismatch, index: 3,
		},
		{
			name:   "read unknown",
			events: []Event{Read("ghost")},
			want:   UnknownBinding, index: 0,
		},
		{
			name:   "borrow name clashes with live borrow",
			events: []Event{Bind("x", false), BorrowShared("x", "").As("r"), BorrowShared("x", "").As("r")},
			want:   DuplicateBinding, index: 2,
		},
		{
			name:   "read through borrow of dropped binding",
			events: []Event{EnterScope("s"), Bind("x", false), BorrowShared("x", RootScope).As("r"), ExitScope("s"), Read("r")},
			want:   UseAfterDrop, index: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectKind(t, Validate(tt.events), tt.want, tt.index)
		})
	}
}

func TestRulesThatOnlyApplyWhenStrict(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   ViolationKind
		index  int
	}{
		{
			name:   "write while shared-borrowed",
			events: []Event{Bind("data", true), BorrowShared("data", "").As("r"), Write("data")},
			want:   ConflictingBorrow, index: 2,
		},
		{
			name:   "read while exclusively borrowed",
			events: []Event{Bind("list", true), BorrowExclusive("list", "").As("c"), Read("list")},
			want:   ConflictingBorrow, index: 2,
		},
		{
			name: "inner binding outlived by outer borrow",
			events: []Event{
				Bind("string1", false),
				EnterScope("inner"),
				Bind("string2", false),
				BorrowShared("string2", RootScope).As("result"),
				ExitScope("inner"),
			},
			want: DanglingBorrow, index: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectOK(t, Validate(tt.events))
			expectKind(t, ValidateWith(tt.events, StrictOptions()), tt.want, tt.index)
		})
	}
}

func TestStrictAllowsReleasedBorrows(t *testing.T) {
	events := []Event{
		Bind("string1", false),
		EnterScope("inner"),
		Bind("string2", false),
		BorrowShared("string2", RootScope).As("result"),
		Read("result"),
		ReleaseBorrow("result"),
		ExitScope("inner"),
		Bind("data", true),
		BorrowShared("data", "").As("first"),
		Read("data"),
		ReleaseBorrow("first"),
		Write("data"),
	}
	expectOK(t, ValidateWith(events, StrictOptions()))
}

func TestCheckerStopsAfterFirstViolation(t *testing.T) {
	c := NewChecker(Options{})
	if err := c.Apply(Read("x")); err == nil {
		t.Fatalf("expected violation")
	}
	err := c.Apply(Bind("x", false))
	v := expectKind(t, err, UnknownBinding, 0)
	if c.Applied() != 1 {
		t.Fatalf("expected checker to stop consuming events, applied=%d", c.Applied())
	}
	if !errors.Is(c.Err(), &Violation{Kind: UnknownBinding}) {
		t.Fatalf("errors.Is did not match kind for %v", v)
	}
}

func TestCheckerLog(t *testing.T) {
	c := NewChecker(Options{})
	events := []Event{
		EnterScope("s"),
		Bind("a", true),
		BorrowShared("a", "s"),
		ExitScope("s"),
	}
	for _, ev := range events {
		if err := c.Apply(ev); err != nil {
			t.Fatalf("unexpected violation: %v", err)
		}
	}
	want := []RecordKind{RecScopeEnter, RecBind, RecBorrowStart, RecBorrowEnd, RecDrop, RecScopeExit}
	log := c.Log()
	if len(log) != len(want) {
		t.Fatalf("expected %d records, got %d: %+v", len(want), len(log), log)
	}
	for i, k := range want {
		if log[i].Kind != k {
			t.Fatalf("record %d: expected %v, got %v", i, k, log[i].Kind)
		}
	}
	if log[3].Note != "scope exit" {
		t.Fatalf("expected borrow end caused by scope exit, got %q", log[3].Note)
	}
	if scopes := c.OpenScopes(); len(scopes) != 1 || scopes[0] != RootScope {
		t.Fatalf("expected only the root scope open, got %v", scopes)
	}
}

func TestEventString(t *testing.T) {
	cases := map[string]Event{
		"bind mut x":         Bind("x", true),
		"move x -> y":        Move("x", "y"),
		"borrow x as r in s": BorrowShared("x", "s").As("r"),
		"borrow mut x":       BorrowExclusive("x", ""),
		"release r":          ReleaseBorrow("r"),
		"enter s":            EnterScope("s"),
		"exit s":             ExitScope("s"),
		"write x":            Write("x"),
	}
	for want, ev := range cases {
		if got := ev.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestParseViolationKind(t *testing.T) {
	for k := DuplicateBinding; k <= DanglingBorrow; k++ {
		got, ok := ParseViolationKind(k.String())
		if !ok || got != k {
			t.Fatalf("ParseViolationKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseViolationKind("Nope"); ok {
		t.Fatalf("expected unknown kind to fail")
	}
}

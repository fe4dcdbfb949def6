package borrow

import "testing"

func TestClosureLowering(t *testing.T) {
	c := NewClosure("inc", "s",
		Capture{Target: "counter", Mode: CaptureMut},
		Capture{Target: "label", Mode: CaptureRef},
		Capture{Target: "data", Mode: CaptureMove},
	)

	create := c.Create()
	if len(create) != 3 {
		t.Fatalf("expected 3 creation events, got %d", len(create))
	}
	if create[0].Kind != EvBorrowExclusive || create[0].Borrow != "inc.counter" || create[0].Scope != "s" {
		t.Fatalf("unexpected mut capture lowering: %+v", create[0])
	}
	if create[1].Kind != EvBorrowShared || create[1].Borrow != "inc.label" {
		t.Fatalf("unexpected ref capture lowering: %+v", create[1])
	}
	if create[2].Kind != EvMove || create[2].To != "inc.data" {
		t.Fatalf("unexpected move capture lowering: %+v", create[2])
	}

	call := c.Call()
	if call[0].Kind != EvWrite || call[1].Kind != EvRead || call[2].Kind != EvRead {
		t.Fatalf("unexpected call lowering: %+v", call)
	}

	drop := c.Drop()
	if len(drop) != 2 || drop[0].ID != "inc.counter" || drop[1].ID != "inc.label" {
		t.Fatalf("unexpected drop lowering: %+v", drop)
	}
}

func TestClosureCounterInInnerScope(t *testing.T) {
	inc := NewClosure("increment", "s", Capture{Target: "counter", Mode: CaptureMut})

	var events []Event
	events = append(events, Bind("counter", true), EnterScope("s"))
	events = append(events, inc.Create()...)
	events = append(events, inc.Call()...)
	events = append(events, inc.Call()...)
	events = append(events, ExitScope("s"), Read("counter"))

	if err := ValidateWith(events, StrictOptions()); err != nil {
		t.Fatalf("expected counter example to validate, got %v", err)
	}
}

func TestClosureUseWhileMutablyCaptured(t *testing.T) {
	cl := NewClosure("closure", "", Capture{Target: "list", Mode: CaptureMut})

	events := []Event{Bind("list", true)}
	events = append(events, cl.Create()...)
	events = append(events, cl.Call()...)
	events = append(events, Read("list"))

	expectOK(t, Validate(events))
	expectKind(t, ValidateWith(events, StrictOptions()), ConflictingBorrow, 3)

	events = events[:len(events)-1]
	events = append(events, cl.Drop()...)
	events = append(events, Read("list"))
	expectOK(t, ValidateWith(events, StrictOptions()))
}

func TestMoveClosureInvalidatesSource(t *testing.T) {
	cl := NewClosure("move_closure", "", Capture{Target: "list2", Mode: CaptureMove})

	events := []Event{Bind("list2", false)}
	events = append(events, cl.Create()...)
	events = append(events, cl.Call()...)
	events = append(events, Read("list2"))

	expectKind(t, Validate(events), UseAfterMove, 3)
}

func TestParseCaptureMode(t *testing.T) {
	for _, m := range []CaptureMode{CaptureRef, CaptureMut, CaptureMove} {
		got, err := ParseCaptureMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseCaptureMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseCaptureMode("copy"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

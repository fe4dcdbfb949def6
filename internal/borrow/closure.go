package borrow

import "fmt"

// CaptureMode says how a closure holds a captured binding.
type CaptureMode uint8

const (
	// CaptureRef holds a shared borrow.
	CaptureRef CaptureMode = iota
	// CaptureMut holds an exclusive borrow.
	CaptureMut
	// CaptureMove takes ownership; the closure keeps its own copy.
	CaptureMove
)

func (m CaptureMode) String() string {
	switch m {
	case CaptureRef:
		return "ref"
	case CaptureMut:
		return "mut"
	case CaptureMove:
		return "move"
	default:
		return "unknown"
	}
}

// ParseCaptureMode is the inverse of CaptureMode.String.
func ParseCaptureMode(s string) (CaptureMode, error) {
	switch s {
	case "ref":
		return CaptureRef, nil
	case "mut":
		return CaptureMut, nil
	case "move":
		return CaptureMove, nil
	}
	return CaptureRef, fmt.Errorf("unknown capture mode %q (expected ref|mut|move)", s)
}

// Capture is one captured binding.
type Capture struct {
	Target string
	Mode   CaptureMode
}

// Closure models a closure value as an explicit struct: each capture is fixed
// at construction as a borrow or as an owned copy. It does not talk to a
// Checker; it lowers itself into plain events.
type Closure struct {
	Name     string
	Scope    string // scope the borrowed captures live in; empty is innermost
	Captures []Capture
}

// NewClosure builds a closure value.
func NewClosure(name, scope string, captures ...Capture) Closure {
	return Closure{Name: name, Scope: scope, Captures: captures}
}

// Slot is the name under which the closure holds target: the borrow name for
// ref/mut captures and the owned binding for move captures.
func (c Closure) Slot(target string) string {
	return c.Name + "." + target
}

// Create lowers the construction of the closure.
func (c Closure) Create() []Event {
	out := make([]Event, 0, len(c.Captures))
	for _, cp := range c.Captures {
		slot := c.Slot(cp.Target)
		switch cp.Mode {
		case CaptureRef:
			out = append(out, BorrowShared(cp.Target, c.Scope).As(slot))
		case CaptureMut:
			out = append(out, BorrowExclusive(cp.Target, c.Scope).As(slot))
		case CaptureMove:
			out = append(out, Move(cp.Target, slot))
		}
	}
	return out
}

// Call lowers one invocation: shared and moved captures are read, exclusive
// captures are written through.
func (c Closure) Call() []Event {
	out := make([]Event, 0, len(c.Captures))
	for _, cp := range c.Captures {
		if cp.Mode == CaptureMut {
			out = append(out, Write(c.Slot(cp.Target)))
			continue
		}
		out = append(out, Read(c.Slot(cp.Target)))
	}
	return out
}

// Drop lowers an explicit drop: borrowed captures are released. Moved
// captures stay owned by the closure's slot until its scope ends.
func (c Closure) Drop() []Event {
	var out []Event
	for _, cp := range c.Captures {
		if cp.Mode == CaptureMove {
			continue
		}
		out = append(out, ReleaseBorrow(c.Slot(cp.Target)))
	}
	return out
}

package borrow

import "fmt"

// ViolationKind enumerates the rule breaks the validator reports.
type ViolationKind uint8

const (
	ViolationNone ViolationKind = iota
	DuplicateBinding
	UseAfterMove
	UseAfterDrop
	BorrowedWhileMoving
	ConflictingBorrow
	NotMutable
	UnknownBorrow
	ScopeMismatch
	UnknownBinding
	DanglingBorrow
)

func (k ViolationKind) String() string {
	switch k {
	case ViolationNone:
		return "None"
	case DuplicateBinding:
		return "DuplicateBinding"
	case UseAfterMove:
		return "UseAfterMove"
	case UseAfterDrop:
		return "UseAfterDrop"
	case BorrowedWhileMoving:
		return "BorrowedWhileMoving"
	case ConflictingBorrow:
		return "ConflictingBorrow"
	case NotMutable:
		return "NotMutable"
	case UnknownBorrow:
		return "UnknownBorrow"
	case ScopeMismatch:
		return "ScopeMismatch"
	case UnknownBinding:
		return "UnknownBinding"
	case DanglingBorrow:
		return "DanglingBorrow"
	default:
		return "Unknown"
	}
}

// ParseViolationKind is the inverse of ViolationKind.String.
func ParseViolationKind(s string) (ViolationKind, bool) {
	for k := DuplicateBinding; k <= DanglingBorrow; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return ViolationNone, false
}

// NoEvent marks an absent Related index.
const NoEvent = -1

// Violation is the first rule break found in an event sequence.
type Violation struct {
	Kind    ViolationKind
	Index   int // offending event, 0-based
	Event   Event
	Binding string // binding (or borrow) the event acted on
	Other   string // second identifier: destination, conflicting borrow, open scope
	Scope   string
	Message string

	// Related is the index of the earlier event the violation conflicts with
	// (the live borrow, the move, the drop, the declaration), or NoEvent.
	Related     int
	RelatedNote string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("event %d (%s): %s", v.Index, v.Event, v.Message)
}

// Is lets errors.Is match on kind: errors.Is(err, &Violation{Kind: UseAfterMove}).
func (v *Violation) Is(target error) bool {
	t, ok := target.(*Violation)
	if !ok {
		return false
	}
	return t.Kind == v.Kind
}

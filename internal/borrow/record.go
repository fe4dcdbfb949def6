package borrow

// RecordKind identifies an entry of the checker log.
type RecordKind uint8

const (
	RecBind RecordKind = iota + 1
	RecMove
	RecBorrowStart
	RecBorrowEnd
	RecRead
	RecWrite
	RecDrop
	RecScopeEnter
	RecScopeExit
	RecViolation
)

func (k RecordKind) String() string {
	switch k {
	case RecBind:
		return "bind"
	case RecMove:
		return "move"
	case RecBorrowStart:
		return "borrow_start"
	case RecBorrowEnd:
		return "borrow_end"
	case RecRead:
		return "read"
	case RecWrite:
		return "write"
	case RecDrop:
		return "drop"
	case RecScopeEnter:
		return "scope_enter"
	case RecScopeExit:
		return "scope_exit"
	case RecViolation:
		return "violation"
	default:
		return "unknown"
	}
}

// Record is a lightweight log entry produced while checking.
// It is meant for debug output and tracing and never affects the verdict.
type Record struct {
	Kind  RecordKind
	Index int

	Binding string
	Borrow  string
	// BorrowKind is only meaningful for RecBorrowStart and RecBorrowEnd.
	BorrowKind BorrowKind
	Scope      string

	Note string
}

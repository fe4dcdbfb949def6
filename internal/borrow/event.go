package borrow

import "strings"

// EventKind enumerates the inputs understood by the validator.
type EventKind uint8

const (
	EvBind EventKind = iota + 1
	EvMove
	EvBorrowShared
	EvBorrowExclusive
	EvReleaseBorrow
	EvEnterScope
	EvExitScope
	EvRead
	EvWrite
)

func (k EventKind) String() string {
	switch k {
	case EvBind:
		return "bind"
	case EvMove:
		return "move"
	case EvBorrowShared:
		return "borrow_shared"
	case EvBorrowExclusive:
		return "borrow_exclusive"
	case EvReleaseBorrow:
		return "release"
	case EvEnterScope:
		return "enter"
	case EvExitScope:
		return "exit"
	case EvRead:
		return "read"
	case EvWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Event is one step of the analysed program.
//
// ID names the binding the event acts on; for EvReleaseBorrow it names the
// borrow, and for EvRead/EvWrite it may name a live borrow instead of a
// binding. To is the destination of a move. Scope is the scope entered or
// exited, or the scope a borrow is registered in (empty means innermost).
// Borrow optionally names the borrow created by a borrow event.
type Event struct {
	Kind    EventKind
	ID      string
	To      string
	Scope   string
	Borrow  string
	Mutable bool
}

func Bind(id string, mutable bool) Event {
	return Event{Kind: EvBind, ID: id, Mutable: mutable}
}

func Move(from, to string) Event {
	return Event{Kind: EvMove, ID: from, To: to}
}

func BorrowShared(id, scope string) Event {
	return Event{Kind: EvBorrowShared, ID: id, Scope: scope}
}

func BorrowExclusive(id, scope string) Event {
	return Event{Kind: EvBorrowExclusive, ID: id, Scope: scope}
}

func ReleaseBorrow(borrow string) Event {
	return Event{Kind: EvReleaseBorrow, ID: borrow}
}

func EnterScope(scope string) Event {
	return Event{Kind: EvEnterScope, Scope: scope}
}

func ExitScope(scope string) Event {
	return Event{Kind: EvExitScope, Scope: scope}
}

func Read(id string) Event {
	return Event{Kind: EvRead, ID: id}
}

func Write(id string) Event {
	return Event{Kind: EvWrite, ID: id}
}

// As names the borrow created by a borrow event.
func (e Event) As(name string) Event {
	e.Borrow = name
	return e
}

// IsBorrow reports whether the event creates a borrow.
func (e Event) IsBorrow() bool {
	return e.Kind == EvBorrowShared || e.Kind == EvBorrowExclusive
}

// String renders the event in script syntax.
func (e Event) String() string {
	var sb strings.Builder
	switch e.Kind {
	case EvBind:
		sb.WriteString("bind ")
		if e.Mutable {
			sb.WriteString("mut ")
		}
		sb.WriteString(e.ID)
	case EvMove:
		sb.WriteString("move " + e.ID + " -> " + e.To)
	case EvBorrowShared, EvBorrowExclusive:
		sb.WriteString("borrow ")
		if e.Kind == EvBorrowExclusive {
			sb.WriteString("mut ")
		}
		sb.WriteString(e.ID)
		if e.Borrow != "" {
			sb.WriteString(" as " + e.Borrow)
		}
		if e.Scope != "" {
			sb.WriteString(" in " + e.Scope)
		}
	case EvReleaseBorrow:
		sb.WriteString("release " + e.ID)
	case EvEnterScope:
		sb.WriteString("enter " + e.Scope)
	case EvExitScope:
		sb.WriteString("exit " + e.Scope)
	case EvRead:
		sb.WriteString("read " + e.ID)
	case EvWrite:
		sb.WriteString("write " + e.ID)
	default:
		sb.WriteString("unknown")
	}
	return strings.TrimSpace(sb.String())
}

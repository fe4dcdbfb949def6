package borrow

import "fmt"

// OwnerState is the ownership state of a binding.
type OwnerState uint8

const (
	Owned OwnerState = iota
	Moved
	Dropped
)

func (s OwnerState) String() string {
	switch s {
	case Owned:
		return "owned"
	case Moved:
		return "moved"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s OwnerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// BorrowKind differentiates shared vs exclusive borrows.
type BorrowKind uint8

const (
	Shared BorrowKind = iota
	Exclusive
)

func (k BorrowKind) String() string {
	if k == Exclusive {
		return "exclusive"
	}
	return "shared"
}

// RootScope is the name of the implicit outermost frame. It is never exited.
const RootScope = "<root>"

// Options enables rules beyond the base rule set.
type Options struct {
	// FreezeBorrowed rejects a direct write to a borrowed binding and a direct
	// read of an exclusively borrowed binding.
	FreezeBorrowed bool
	// RejectDangling rejects leaving a scope that drops a binding still
	// borrowed from an enclosing scope.
	RejectDangling bool
}

// StrictOptions enables every optional rule.
func StrictOptions() Options {
	return Options{FreezeBorrowed: true, RejectDangling: true}
}

type binding struct {
	name    string
	state   OwnerState
	mutable bool
	scope   ScopeID
	decl    int
	endedAt int // event that moved or dropped the binding
	shared  []BorrowID
	excl    BorrowID
}

func (b *binding) borrowed() bool {
	return len(b.shared) > 0 || b.excl.IsValid()
}

// firstBorrow returns the borrow a conflict should point at.
func (b *binding) firstBorrow() BorrowID {
	if b.excl.IsValid() {
		return b.excl
	}
	if len(b.shared) > 0 {
		return b.shared[0]
	}
	return NoBorrowID
}

type borrowEntry struct {
	name    string
	kind    BorrowKind
	binding BindingID
	scope   ScopeID
	start   int
	live    bool
}

type frame struct {
	name     string
	entered  int
	open     bool
	bindings []BindingID
	borrows  []BorrowID
}

// Checker validates events one at a time.
type Checker struct {
	opts Options

	bindings []binding
	borrows  []borrowEntry
	frames   []frame
	stack    []ScopeID

	names       map[string]BindingID
	borrowNames map[string]BorrowID // every borrow name ever issued, latest wins

	next      int
	borrowSeq int
	log       []Record
	failed    *Violation
}

// NewChecker returns a Checker with the implicit root scope open.
func NewChecker(opts Options) *Checker {
	c := &Checker{
		opts:        opts,
		bindings:    []binding{{}},
		borrows:     []borrowEntry{{}},
		frames:      []frame{{}},
		names:       make(map[string]BindingID),
		borrowNames: make(map[string]BorrowID),
	}
	c.pushFrame(RootScope, NoEvent)
	return c
}

// Apply processes the next event. After the first violation every call
// returns that violation again.
func (c *Checker) Apply(ev Event) error {
	if c.failed != nil {
		return c.failed
	}
	idx := c.next
	c.next++

	var v *Violation
	switch ev.Kind {
	case EvBind:
		v = c.bind(idx, ev)
	case EvMove:
		v = c.move(idx, ev)
	case EvBorrowShared:
		v = c.borrow(idx, ev, Shared)
	case EvBorrowExclusive:
		v = c.borrow(idx, ev, Exclusive)
	case EvReleaseBorrow:
		v = c.release(idx, ev)
	case EvEnterScope:
		v = c.enter(idx, ev)
	case EvExitScope:
		v = c.exit(idx, ev)
	case EvRead:
		v = c.access(idx, ev, false)
	case EvWrite:
		v = c.access(idx, ev, true)
	default:
		panic(fmt.Sprintf("borrow: unknown event kind %d", ev.Kind))
	}
	if v == nil {
		return nil
	}
	c.failed = v
	c.record(Record{Kind: RecViolation, Index: idx, Binding: v.Binding, Scope: v.Scope, Note: v.Kind.String()})
	return v
}

// Err returns the violation that stopped the checker, if any.
func (c *Checker) Err() error {
	if c.failed == nil {
		return nil
	}
	return c.failed
}

// Applied returns the number of events consumed, including a failing one.
func (c *Checker) Applied() int {
	return c.next
}

// Log returns the records produced so far.
func (c *Checker) Log() []Record {
	out := make([]Record, len(c.log))
	copy(out, c.log)
	return out
}

// BindingState is a read-only view of one binding.
type BindingState struct {
	Name      string     `json:"name"`
	State     OwnerState `json:"state"`
	Mutable   bool       `json:"mutable,omitempty"`
	Scope     string     `json:"scope"`
	Shared    []string   `json:"shared,omitempty"`
	Exclusive string     `json:"exclusive,omitempty"`
}

// Snapshot lists every binding the checker created, in declaration order.
func (c *Checker) Snapshot() []BindingState {
	out := make([]BindingState, 0, len(c.bindings)-1)
	for i := 1; i < len(c.bindings); i++ {
		b := &c.bindings[i]
		st := BindingState{
			Name:    b.name,
			State:   b.state,
			Mutable: b.mutable,
			Scope:   c.frames[b.scope].name,
		}
		for _, id := range b.shared {
			st.Shared = append(st.Shared, c.borrows[id].name)
		}
		if b.excl.IsValid() {
			st.Exclusive = c.borrows[b.excl].name
		}
		out = append(out, st)
	}
	return out
}

// OpenScopes lists open scope names from outermost to innermost.
func (c *Checker) OpenScopes() []string {
	out := make([]string, 0, len(c.stack))
	for _, id := range c.stack {
		out = append(out, c.frames[id].name)
	}
	return out
}

func (c *Checker) record(r Record) {
	c.log = append(c.log, r)
}

func (c *Checker) current() ScopeID {
	return c.stack[len(c.stack)-1]
}

func (c *Checker) pushFrame(name string, idx int) ScopeID {
	id := ScopeID(arenaIndex(len(c.frames), "scope"))
	c.frames = append(c.frames, frame{name: name, entered: idx, open: true})
	c.stack = append(c.stack, id)
	return id
}

// openFrame finds an open frame by name, innermost first.
func (c *Checker) openFrame(name string) ScopeID {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.frames[c.stack[i]].name == name {
			return c.stack[i]
		}
	}
	return NoScopeID
}

func (c *Checker) newBinding(name string, mutable bool, idx int) BindingID {
	id := BindingID(arenaIndex(len(c.bindings), "binding"))
	scope := c.current()
	c.bindings = append(c.bindings, binding{
		name:    name,
		mutable: mutable,
		scope:   scope,
		decl:    idx,
		endedAt: NoEvent,
	})
	c.frames[scope].bindings = append(c.frames[scope].bindings, id)
	c.names[name] = id
	return id
}

// liveBorrow returns the live borrow registered under name.
func (c *Checker) liveBorrow(name string) BorrowID {
	id, ok := c.borrowNames[name]
	if !ok || !c.borrows[id].live {
		return NoBorrowID
	}
	return id
}

// nameTaken reports a live binding or live borrow already using name.
func (c *Checker) nameTaken(name string) (int, bool) {
	if id, ok := c.names[name]; ok && c.bindings[id].state == Owned {
		return c.bindings[id].decl, true
	}
	if id := c.liveBorrow(name); id.IsValid() {
		return c.borrows[id].start, true
	}
	return NoEvent, false
}

func (c *Checker) violation(kind ViolationKind, idx int, ev Event, name, msg string) *Violation {
	return &Violation{
		Kind:    kind,
		Index:   idx,
		Event:   ev,
		Binding: name,
		Scope:   ev.Scope,
		Message: msg,
		Related: NoEvent,
	}
}

func (v *Violation) related(idx int, note string) *Violation {
	v.Related = idx
	v.RelatedNote = note
	return v
}

func (v *Violation) with(other string) *Violation {
	v.Other = other
	return v
}

// lookup resolves a binding that must still be owned.
func (c *Checker) lookup(idx int, ev Event, name string) (BindingID, *Violation) {
	id, ok := c.names[name]
	if !ok || name == "" {
		return NoBindingID, c.violation(UnknownBinding, idx, ev, name, fmt.Sprintf("unknown binding %s", quote(name)))
	}
	return id, c.checkOwned(idx, ev, id, name)
}

func (c *Checker) checkOwned(idx int, ev Event, id BindingID, name string) *Violation {
	b := &c.bindings[id]
	switch b.state {
	case Moved:
		return c.violation(UseAfterMove, idx, ev, name, fmt.Sprintf("use of moved value %s", quote(b.name))).
			related(b.endedAt, "value moved here")
	case Dropped:
		return c.violation(UseAfterDrop, idx, ev, name, fmt.Sprintf("use of dropped value %s", quote(b.name))).
			related(b.endedAt, "value dropped here")
	}
	return nil
}

func quote(name string) string {
	return "'" + name + "'"
}

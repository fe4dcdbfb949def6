package borrow

import (
	"fmt"
	"strconv"
)

func (c *Checker) bind(idx int, ev Event) *Violation {
	if ev.ID == "" {
		return c.violation(UnknownBinding, idx, ev, "", "binding has no name")
	}
	if decl, taken := c.nameTaken(ev.ID); taken {
		return c.violation(DuplicateBinding, idx, ev, ev.ID, fmt.Sprintf("binding %s is already live", quote(ev.ID))).
			related(decl, "first declared here")
	}
	c.newBinding(ev.ID, ev.Mutable, idx)
	c.record(Record{Kind: RecBind, Index: idx, Binding: ev.ID, Scope: c.frames[c.current()].name})
	return nil
}

func (c *Checker) move(idx int, ev Event) *Violation {
	from, v := c.lookup(idx, ev, ev.ID)
	if v != nil {
		return v
	}
	src := &c.bindings[from]
	if src.borrowed() {
		bid := src.firstBorrow()
		br := &c.borrows[bid]
		msg := fmt.Sprintf("cannot move %s while it is shared-borrowed", quote(src.name))
		if br.kind == Exclusive {
			msg = fmt.Sprintf("cannot move %s while an exclusive borrow is active", quote(src.name))
		}
		return c.violation(BorrowedWhileMoving, idx, ev, ev.ID, msg).
			with(br.name).
			related(br.start, fmt.Sprintf("borrow %s occurs here", quote(br.name)))
	}
	if ev.To == "" {
		return c.violation(UnknownBinding, idx, ev, "", "move has no destination")
	}
	if decl, taken := c.nameTaken(ev.To); taken {
		return c.violation(DuplicateBinding, idx, ev, ev.To, fmt.Sprintf("binding %s is already live", quote(ev.To))).
			with(ev.ID).
			related(decl, "first declared here")
	}
	mutable := src.mutable
	src.state = Moved
	src.endedAt = idx
	c.newBinding(ev.To, mutable, idx)
	c.record(Record{Kind: RecMove, Index: idx, Binding: ev.ID, Note: ev.To})
	return nil
}

func (c *Checker) borrow(idx int, ev Event, kind BorrowKind) *Violation {
	target, v := c.lookup(idx, ev, ev.ID)
	if v != nil {
		return v
	}
	scope := c.current()
	if ev.Scope != "" {
		scope = c.openFrame(ev.Scope)
		if !scope.IsValid() {
			return c.violation(ScopeMismatch, idx, ev, ev.ID, fmt.Sprintf("scope %s is not open", quote(ev.Scope))).
				with(c.frames[c.current()].name)
		}
	}
	b := &c.bindings[target]
	switch kind {
	case Shared:
		if b.excl.IsValid() {
			br := &c.borrows[b.excl]
			return c.violation(ConflictingBorrow, idx, ev, ev.ID,
				fmt.Sprintf("cannot take shared borrow of %s while an exclusive borrow is active", quote(b.name))).
				with(br.name).
				related(br.start, fmt.Sprintf("previous borrow of %s occurs here", quote(b.name)))
		}
	case Exclusive:
		if !b.mutable {
			return c.violation(NotMutable, idx, ev, ev.ID,
				fmt.Sprintf("cannot take exclusive borrow of immutable %s", quote(b.name))).
				related(b.decl, "binding declared here without mut")
		}
		if b.borrowed() {
			br := &c.borrows[b.firstBorrow()]
			msg := fmt.Sprintf("cannot take exclusive borrow of %s while a shared borrow is active", quote(b.name))
			if br.kind == Exclusive {
				msg = fmt.Sprintf("cannot take exclusive borrow of %s while another exclusive borrow is active", quote(b.name))
			}
			return c.violation(ConflictingBorrow, idx, ev, ev.ID, msg).
				with(br.name).
				related(br.start, fmt.Sprintf("previous borrow of %s occurs here", quote(b.name)))
		}
	}

	c.borrowSeq++
	name := ev.Borrow
	if name == "" {
		name = "#" + strconv.Itoa(c.borrowSeq)
	}
	if decl, taken := c.nameTaken(name); taken {
		return c.violation(DuplicateBinding, idx, ev, name, fmt.Sprintf("borrow name %s is already live", quote(name))).
			related(decl, "first declared here")
	}

	id := BorrowID(arenaIndex(len(c.borrows), "borrow"))
	c.borrows = append(c.borrows, borrowEntry{
		name:    name,
		kind:    kind,
		binding: target,
		scope:   scope,
		start:   idx,
		live:    true,
	})
	if kind == Exclusive {
		b.excl = id
	} else {
		b.shared = append(b.shared, id)
	}
	c.frames[scope].borrows = append(c.frames[scope].borrows, id)
	c.borrowNames[name] = id
	c.record(Record{Kind: RecBorrowStart, Index: idx, Binding: b.name, Borrow: name, BorrowKind: kind, Scope: c.frames[scope].name})
	return nil
}

func (c *Checker) release(idx int, ev Event) *Violation {
	id := c.liveBorrow(ev.ID)
	if !id.IsValid() {
		v := c.violation(UnknownBorrow, idx, ev, ev.ID, fmt.Sprintf("borrow %s is not live", quote(ev.ID)))
		if old, ok := c.borrowNames[ev.ID]; ok {
			v.related(c.borrows[old].start, "borrow created here")
		}
		return v
	}
	c.endBorrow(idx, id, "released")
	return nil
}

// endBorrow detaches a live borrow from its binding. The frame keeps the id;
// exit skips entries that are no longer live.
func (c *Checker) endBorrow(idx int, id BorrowID, note string) {
	br := &c.borrows[id]
	if !br.live {
		return
	}
	br.live = false
	b := &c.bindings[br.binding]
	switch br.kind {
	case Shared:
		b.shared = dropBorrowID(b.shared, id)
	case Exclusive:
		if b.excl == id {
			b.excl = NoBorrowID
		}
	}
	c.record(Record{Kind: RecBorrowEnd, Index: idx, Binding: b.name, Borrow: br.name, BorrowKind: br.kind, Scope: c.frames[br.scope].name, Note: note})
}

func (c *Checker) enter(idx int, ev Event) *Violation {
	if ev.Scope != "" && c.openFrame(ev.Scope).IsValid() {
		return c.violation(ScopeMismatch, idx, ev, "", fmt.Sprintf("scope %s is already open", quote(ev.Scope))).
			related(c.frames[c.openFrame(ev.Scope)].entered, "scope entered here")
	}
	c.pushFrame(ev.Scope, idx)
	c.record(Record{Kind: RecScopeEnter, Index: idx, Scope: ev.Scope})
	return nil
}

func (c *Checker) exit(idx int, ev Event) *Violation {
	if len(c.stack) == 1 {
		return c.violation(ScopeMismatch, idx, ev, "", fmt.Sprintf("cannot exit scope %s: no scope is open", quote(ev.Scope))).
			with(RootScope)
	}
	top := c.current()
	fr := &c.frames[top]
	if ev.Scope != "" && fr.name != ev.Scope {
		return c.violation(ScopeMismatch, idx, ev, "",
			fmt.Sprintf("cannot exit scope %s: innermost open scope is %s", quote(ev.Scope), quote(fr.name))).
			with(fr.name).
			related(fr.entered, "innermost scope entered here")
	}

	if c.opts.RejectDangling {
		if v := c.checkDangling(idx, ev, top); v != nil {
			return v
		}
	}

	for _, id := range fr.borrows {
		c.endBorrow(idx, id, "scope exit")
	}
	for _, id := range fr.bindings {
		b := &c.bindings[id]
		if b.state != Owned {
			continue
		}
		b.state = Dropped
		b.endedAt = idx
		c.record(Record{Kind: RecDrop, Index: idx, Binding: b.name, Scope: fr.name})
	}
	fr.open = false
	c.stack = c.stack[:len(c.stack)-1]
	c.record(Record{Kind: RecScopeExit, Index: idx, Scope: fr.name})
	return nil
}

// checkDangling finds an owned binding of the frame that is still borrowed
// by a borrow registered in an enclosing frame.
func (c *Checker) checkDangling(idx int, ev Event, top ScopeID) *Violation {
	for _, id := range c.frames[top].bindings {
		b := &c.bindings[id]
		if b.state != Owned {
			continue
		}
		outer := append([]BorrowID{b.excl}, b.shared...)
		for _, bid := range outer {
			if !bid.IsValid() {
				continue
			}
			br := &c.borrows[bid]
			if br.scope == top {
				continue
			}
			return c.violation(DanglingBorrow, idx, ev, b.name,
				fmt.Sprintf("%s does not live long enough: borrow %s outlives scope %s", quote(b.name), quote(br.name), quote(c.frames[top].name))).
				with(br.name).
				related(br.start, fmt.Sprintf("borrow %s in scope %s occurs here", quote(br.name), quote(c.frames[br.scope].name)))
		}
	}
	return nil
}

func (c *Checker) access(idx int, ev Event, write bool) *Violation {
	id, hasBinding := c.names[ev.ID]
	if hasBinding && c.bindings[id].state == Owned {
		return c.accessBinding(idx, ev, id, write)
	}
	if bid := c.liveBorrow(ev.ID); bid.IsValid() {
		return c.accessThrough(idx, ev, bid, write)
	}
	if hasBinding {
		return c.accessBinding(idx, ev, id, write)
	}
	if old, ok := c.borrowNames[ev.ID]; ok {
		return c.violation(UnknownBorrow, idx, ev, ev.ID, fmt.Sprintf("borrow %s is not live", quote(ev.ID))).
			related(c.borrows[old].start, "borrow created here")
	}
	return c.violation(UnknownBinding, idx, ev, ev.ID, fmt.Sprintf("unknown binding %s", quote(ev.ID)))
}

func (c *Checker) accessBinding(idx int, ev Event, id BindingID, write bool) *Violation {
	if v := c.checkOwned(idx, ev, id, ev.ID); v != nil {
		return v
	}
	b := &c.bindings[id]
	if !write {
		if c.opts.FreezeBorrowed && b.excl.IsValid() {
			br := &c.borrows[b.excl]
			return c.violation(ConflictingBorrow, idx, ev, ev.ID,
				fmt.Sprintf("cannot read %s while an exclusive borrow is active", quote(b.name))).
				with(br.name).
				related(br.start, fmt.Sprintf("exclusive borrow %s occurs here", quote(br.name)))
		}
		c.record(Record{Kind: RecRead, Index: idx, Binding: b.name})
		return nil
	}
	// the owner writes directly and holds no exclusive borrow of its own
	if !b.mutable {
		return c.violation(NotMutable, idx, ev, ev.ID, fmt.Sprintf("cannot write immutable %s", quote(b.name))).
			related(b.decl, "binding declared here without mut")
	}
	if c.opts.FreezeBorrowed && b.borrowed() {
		br := &c.borrows[b.firstBorrow()]
		msg := fmt.Sprintf("cannot write %s while it is shared-borrowed", quote(b.name))
		if br.kind == Exclusive {
			msg = fmt.Sprintf("cannot write %s while an exclusive borrow is active", quote(b.name))
		}
		return c.violation(ConflictingBorrow, idx, ev, ev.ID, msg).
			with(br.name).
			related(br.start, fmt.Sprintf("borrow %s occurs here", quote(br.name)))
	}
	c.record(Record{Kind: RecWrite, Index: idx, Binding: b.name})
	return nil
}

func (c *Checker) accessThrough(idx int, ev Event, bid BorrowID, write bool) *Violation {
	br := &c.borrows[bid]
	b := &c.bindings[br.binding]
	if v := c.checkOwned(idx, ev, br.binding, ev.ID); v != nil {
		return v.with(b.name)
	}
	if write && br.kind != Exclusive {
		return c.violation(NotMutable, idx, ev, ev.ID,
			fmt.Sprintf("cannot write through shared borrow %s of %s", quote(br.name), quote(b.name))).
			with(b.name).
			related(br.start, "shared borrow created here")
	}
	kind := RecRead
	if write {
		kind = RecWrite
	}
	c.record(Record{Kind: kind, Index: idx, Binding: b.name, Borrow: br.name})
	return nil
}

func dropBorrowID(ids []BorrowID, target BorrowID) []BorrowID {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

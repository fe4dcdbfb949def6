// Package borrow validates ownership and borrowing rules over an ordered
// stream of events.
//
// A run is a single linear pass. The Checker keeps three arenas indexed by
// small integer ids (bindings, borrows and scope frames; id 0 is a sentinel),
// a stack of open frames and a name table. Every event either updates that
// state or produces a *Violation, after which the Checker refuses further
// input. Validate wraps a fresh Checker, so runs never share state.
//
// Scope frames own the bindings declared and the borrows registered inside
// them. Leaving a frame first ends its borrows, then drops every binding that
// is still owned.
//
// The optional rules in Options tighten two behaviours that the base rule
// set leaves open: direct access to a borrowed binding (FreezeBorrowed) and
// dropping a binding that an outer frame still borrows (RejectDangling).
package borrow

package borrow

import (
	"fmt"

	"fortio.org/safecast"
)

// BindingID identifies a binding inside one Checker.
type BindingID uint32

// BorrowID identifies a borrow entry inside one Checker.
type BorrowID uint32

// ScopeID identifies a scope frame inside one Checker.
type ScopeID uint32

const (
	NoBindingID BindingID = 0
	NoBorrowID  BorrowID  = 0
	NoScopeID   ScopeID   = 0
)

func (id BindingID) IsValid() bool { return id != NoBindingID }
func (id BorrowID) IsValid() bool  { return id != NoBorrowID }
func (id ScopeID) IsValid() bool   { return id != NoScopeID }

func arenaIndex(n int, what string) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", what, err))
	}
	return v
}

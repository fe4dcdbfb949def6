// Package scenario is a catalog of classic ownership situations expressed as
// event scripts, each with the verdict the validator must reach.
package scenario

import (
	"slices"
	"strings"

	"borrowck/internal/borrow"
)

// Scenario is one catalogued script.
type Scenario struct {
	Name   string
	Title  string
	Script string
	// Strict runs the script with borrow.StrictOptions.
	Strict bool
	// Want is the expected violation; ViolationNone means the script is legal.
	Want borrow.ViolationKind
}

// FileName is the virtual path the scenario is checked under.
func (s Scenario) FileName() string {
	return s.Name + ".own"
}

// Rules returns the rule set the scenario runs with.
func (s Scenario) Rules() borrow.Options {
	if s.Strict {
		return borrow.StrictOptions()
	}
	return borrow.Options{}
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

var catalog = []Scenario{
	{
		Name:  "ownership-move",
		Title: "a move transfers ownership; the destination is usable",
		Script: lines(
			"bind s1",
			"move s1 -> s2",
			"read s2",
		),
	},
	{
		Name:  "use-after-move",
		Title: "reading the source of a move",
		Script: lines(
			"bind s1",
			"move s1 -> s2",
			"read s1",
		),
		Want: borrow.UseAfterMove,
	},
	{
		Name:  "copy-rebinding",
		Title: "copy values are separate bindings and both stay usable",
		Script: lines(
			"bind x",
			"bind y # y = x copies",
			"read x",
			"read y",
		),
	},
	{
		Name:  "shared-borrows",
		Title: "any number of shared borrows may coexist",
		Script: lines(
			"bind s",
			"share s as r1",
			"share s as r2",
			"read r1",
			"read r2",
			"release r1",
			"release r2",
			"bind mut cloned",
			"borrow mut cloned as r3",
			"write r3",
			"read r3",
		),
	},
	{
		Name:  "sequential-mut-borrows",
		Title: "exclusive borrows one after another",
		Script: lines(
			"bind mut s",
			"borrow mut s as r1",
			"write r1",
			"read r1",
			"release r1",
			"borrow mut s as r2",
			"write r2",
			"release r2",
		),
	},
	{
		Name:  "borrow-then-push",
		Title: "mutation after the shared borrow has ended",
		Script: lines(
			"bind mut data",
			"share data as first",
			"read first",
			"release first",
			"write data",
			"read data",
		),
	},
	{
		Name:  "push-while-borrowed",
		Title: "exclusive borrow while a shared borrow is live",
		Script: lines(
			"bind mut data",
			"share data as r",
			"borrow mut data as push",
			"read r",
		),
		Want: borrow.ConflictingBorrow,
	},
	{
		Name:  "double-mut-borrow",
		Title: "two live exclusive borrows of one value",
		Script: lines(
			"bind mut s",
			"borrow mut s as r1",
			"borrow mut s as r2",
		),
		Want: borrow.ConflictingBorrow,
	},
	{
		Name:  "scoped-borrow",
		Title: "a borrow released by its inner scope",
		Script: lines(
			"bind mut vec",
			"enter inner",
			"share vec as first in inner",
			"read first",
			"exit inner",
			"write vec",
			"share vec as iter",
			"read iter",
			"release iter",
			"write vec",
		),
		Strict: true,
	},
	{
		Name:  "immutable-write",
		Title: "writing a binding declared without mut",
		Script: lines(
			"bind s",
			"write s",
		),
		Want: borrow.NotMutable,
	},
	{
		Name:  "write-through-shared",
		Title: "mutating through a shared borrow",
		Script: lines(
			"bind mut s",
			"share s as r",
			"write r",
		),
		Want: borrow.NotMutable,
	},
	{
		Name:  "move-while-borrowed",
		Title: "moving a value that is still borrowed",
		Script: lines(
			"bind v",
			"share v as r",
			"move v -> w",
		),
		Want: borrow.BorrowedWhileMoving,
	},
	{
		Name:  "longest",
		Title: "both arguments of longest outlive the result",
		Script: lines(
			"bind string1",
			"bind string2",
			"share string1 as x",
			"share string2 as y",
			"read x",
			"read y",
			"release x",
			"release y",
		),
		Strict: true,
	},
	{
		Name:  "longest-inner-scope",
		Title: "the result is used only while the shorter-lived argument lives",
		Script: lines(
			"enter main",
			"bind string1",
			"enter inner",
			"bind string2",
			"share string1 as x in inner",
			"share string2 as y in inner",
			"read x",
			"exit inner",
			"exit main",
		),
		Strict: true,
	},
	{
		Name:  "result-outlives-argument",
		Title: "a borrow registered in the outer scope of a value that dies earlier",
		Script: lines(
			"enter main",
			"bind string1",
			"enter inner",
			"bind string2",
			"share string2 as result in main",
			"exit inner",
			"read result",
		),
		Strict: true,
		Want:   borrow.DanglingBorrow,
	},
	{
		Name:  "dangling-use",
		Title: "without strict rules the dangling borrow fails on use",
		Script: lines(
			"enter main",
			"bind string1",
			"enter inner",
			"bind string2",
			"share string2 as result in main",
			"exit inner",
			"read result",
		),
		Want: borrow.UseAfterDrop,
	},
	{
		Name:  "closure-mut-then-drop",
		Title: "a closure captures mutably and is dropped before the value is used",
		Script: lines(
			"bind mut list",
			"closure closure { mut list }",
			"call closure",
			"drop closure",
			"read list",
		),
		Strict: true,
	},
	{
		Name:  "closure-use-while-captured",
		Title: "using a value while a closure holds it mutably",
		Script: lines(
			"bind mut list",
			"closure closure { mut list }",
			"call closure",
			"read list",
		),
		Strict: true,
		Want:   borrow.ConflictingBorrow,
	},
	{
		Name:  "move-closure",
		Title: "a move closure owns its capture",
		Script: lines(
			"bind list2",
			"closure move_closure { move list2 }",
			"call move_closure",
		),
	},
	{
		Name:  "use-after-move-closure",
		Title: "using a value moved into a closure",
		Script: lines(
			"bind list2",
			"closure move_closure { move list2 }",
			"call move_closure",
			"read list2",
		),
		Want: borrow.UseAfterMove,
	},
	{
		Name:  "counter-closure",
		Title: "a counter closure borrowed inside a block, then a move closure",
		Script: lines(
			"bind mut counter",
			"enter block",
			"closure increment { mut counter } in block",
			"call increment",
			"call increment",
			"exit block",
			"read counter",
			"bind data",
			"closure process { move data }",
			"call process",
		),
		Strict: true,
	},
	{
		Name:  "fix-ownership",
		Title: "borrow instead of move keeps the original usable",
		Script: lines(
			"bind s1",
			"move s1 -> s2",
			"bind s3",
			"share s3 as s4",
			"read s2",
			"read s4",
			"read s3",
		),
	},
	{
		Name:  "fix-borrowing",
		Title: "an inner scope ends the exclusive borrow before the push",
		Script: lines(
			"bind mut data",
			"enter inner",
			"borrow mut data as first_mut in inner",
			"write first_mut",
			"read first_mut",
			"exit inner",
			"write data",
			"read data",
		),
		Strict: true,
	},
	{
		Name:  "vector-operations",
		Title: "iterators borrow for the duration of one operation",
		Script: lines(
			"bind mut numbers",
			"share numbers as iter",
			"read iter",
			"release iter",
			"write numbers",
			"share numbers as max",
			"read max",
			"release max",
			"borrow mut numbers as iter_mut",
			"write iter_mut",
			"release iter_mut",
			"read numbers",
		),
		Strict: true,
	},
}

// All returns every scenario in catalog order.
func All() []Scenario {
	return slices.Clone(catalog)
}

// Lookup finds a scenario by name.
func Lookup(name string) (Scenario, bool) {
	for _, s := range catalog {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Package script reads ownership event scripts (*.own).
//
// A script has one event per line; '#' starts a comment:
//
//	bind mut v
//	enter inner
//	borrow mut v as r in inner
//	write r
//	exit inner
//	move v -> w
//
// Closure lines are lowered into plain events at parse time:
//
//	closure inc { mut counter }
//	call inc
//	drop inc
//
// Parse never stops at the first syntax error: it reports through a
// diag.Reporter and resumes on the next line.
package script

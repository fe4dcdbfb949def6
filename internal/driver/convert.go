package driver

import (
	"borrowck/internal/borrow"
	"borrowck/internal/diag"
	"borrowck/internal/script"
)

var violationCodes = map[borrow.ViolationKind]diag.Code{
	borrow.DuplicateBinding:    diag.BorrowDuplicateBinding,
	borrow.UseAfterMove:        diag.BorrowUseAfterMove,
	borrow.UseAfterDrop:        diag.BorrowUseAfterDrop,
	borrow.BorrowedWhileMoving: diag.BorrowMovedWhileBorrowed,
	borrow.ConflictingBorrow:   diag.BorrowConflict,
	borrow.NotMutable:          diag.BorrowNotMutable,
	borrow.UnknownBorrow:       diag.BorrowUnknownBorrow,
	borrow.ScopeMismatch:       diag.BorrowScopeMismatch,
	borrow.UnknownBinding:      diag.BorrowUnknownBinding,
	borrow.DanglingBorrow:      diag.BorrowDangling,
}

// CodeFor maps a violation kind to its diagnostic code.
func CodeFor(kind borrow.ViolationKind) diag.Code {
	if c, ok := violationCodes[kind]; ok {
		return c
	}
	return diag.UnknownCode
}

// reportViolation turns v into a diagnostic pointing at the offending line,
// with a note at the earlier line it conflicts with.
func reportViolation(r diag.Reporter, prog *script.Program, v *borrow.Violation) {
	b := diag.ReportError(r, CodeFor(v.Kind), prog.SpanOf(v.Index), v.Message)
	if v.Related != borrow.NoEvent && v.Related != v.Index {
		b.WithNote(prog.SpanOf(v.Related), v.RelatedNote)
	}
	b.Emit()
}

package driver

import (
	"borrowck/internal/borrow"
	"borrowck/internal/diag"
)

// ScriptExt is the extension CheckDir looks for.
const ScriptExt = ".own"

// Options configures a check run.
type Options struct {
	Rules          borrow.Options
	MaxDiagnostics int
	// Warnings drops or promotes script warnings such as empty captures.
	Warnings diag.WarningPolicy
	// Jobs bounds parallel file checks in CheckDir; <= 0 means GOMAXPROCS.
	Jobs int
	// BaseDir is used for relative display paths; cwd when empty.
	BaseDir string
	// KeepLog keeps the checker records in the result. Cached results have no
	// log, so KeepLog bypasses the cache.
	KeepLog bool
	Cache   *DiskCache
	Sink    ProgressSink
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

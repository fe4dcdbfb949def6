package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"borrowck/internal/borrow"
	"borrowck/internal/diag"
	"borrowck/internal/observ"
	"borrowck/internal/script"
	"borrowck/internal/source"
	"borrowck/internal/trace"
)

// CheckResult is the outcome of checking one script.
type CheckResult struct {
	Path    string
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag
	Program *script.Program
	// Violation is the first rule break, nil when the events are legal or the
	// script did not parse.
	Violation *borrow.Violation
	Log       []borrow.Record
	Final     []borrow.BindingState
	Cached    bool
	Timer     *observ.Timer
}

// OK reports a script that parsed and has no violation.
func (r *CheckResult) OK() bool {
	return r != nil && !r.Bag.HasErrors()
}

// CheckFile loads path and checks it. Load failures become IO diagnostics in
// the result; the error is reserved for cancellation.
func CheckFile(ctx context.Context, path string, opts Options) (*CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fs := source.NewFileSetWithBase(opts.BaseDir)
	timer := observ.NewTimer()

	notify(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	idx := timer.Begin("load")
	id, err := fs.Load(path)
	timer.End(idx, "")
	if err != nil {
		res := &CheckResult{Path: path, FileSet: fs, Bag: diag.NewBag(opts.maxDiagnostics()), Timer: timer}
		// пустой виртуальный файл нужен, чтобы у диагностики был путь
		vid := fs.AddVirtual(path, nil)
		res.File = fs.Get(vid)
		diag.ReportError(diag.BagReporter{Bag: res.Bag}, diag.IOLoadFileError, source.Span{File: vid},
			fmt.Sprintf("failed to load %s: %v", path, unwrapPathError(err))).Emit()
		notify(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
		return res, nil
	}
	return check(ctx, fs, id, opts, timer), nil
}

// CheckSource checks in-memory content registered under name.
func CheckSource(ctx context.Context, name string, content []byte, opts Options) *CheckResult {
	fs := source.NewFileSetWithBase(opts.BaseDir)
	id := fs.AddVirtual(name, content)
	return check(ctx, fs, id, opts, observ.NewTimer())
}

func check(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options, timer *observ.Timer) *CheckResult {
	file := fs.Get(id)
	res := &CheckResult{
		Path:    file.Path,
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.maxDiagnostics()),
		Timer:   timer,
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, file.Path, trace.SpanID(ctx))
	defer func() {
		res.Bag.Dedup()
		res.Bag.Sort()
		span.WithExtra("diagnostics", strconv.Itoa(res.Bag.Len())).End(verdict(res))
	}()

	reporter := diag.PolicyReporter{Next: diag.BagReporter{Bag: res.Bag}, Policy: opts.Warnings}
	started := time.Now()

	notify(opts.Sink, Event{File: file.Path, Stage: StageParse, Status: StatusWorking})
	pspan := trace.Begin(tracer, trace.ScopePass, "parse", span.ID())
	idx := timer.Begin("parse")
	res.Program = script.Parse(file, reporter)
	timer.End(idx, "")
	pspan.End(strconv.Itoa(len(res.Program.Events)) + " events")
	if res.Bag.HasErrors() {
		notify(opts.Sink, Event{File: file.Path, Stage: StageParse, Status: StatusError, Elapsed: time.Since(started)})
		return res
	}

	notify(opts.Sink, Event{File: file.Path, Stage: StageValidate, Status: StatusWorking})
	var key Digest
	useCache := opts.Cache != nil && !opts.KeepLog
	if useCache {
		key = CacheKey(Digest(file.Hash), opts.Rules)
		var payload DiskPayload
		// битый кэш не должен ломать проверку: считаем промахом
		if hit, err := opts.Cache.Get(key, &payload); err == nil && hit {
			if v, ok := payload.violation(res.Program.Events); ok {
				res.Cached = true
				res.finish(reporter, v)
				notify(opts.Sink, Event{File: file.Path, Stage: StageValidate, Status: res.status(), Elapsed: time.Since(started), Cached: true})
				return res
			}
		}
	}

	vspan := trace.Begin(tracer, trace.ScopePass, "validate", span.ID())
	idx = timer.Begin("validate")
	checker := borrow.NewChecker(opts.Rules)
	for _, ev := range res.Program.Events {
		if checker.Apply(ev) != nil {
			break
		}
	}
	timer.End(idx, "")
	var v *borrow.Violation
	errors.As(checker.Err(), &v)
	log := checker.Log()
	emitRecords(tracer, vspan.ID(), log)
	vspan.End(strconv.Itoa(checker.Applied()) + " applied")

	if opts.KeepLog {
		res.Log = log
		res.Final = checker.Snapshot()
	}
	res.finish(reporter, v)
	if useCache {
		// кэш - оптимизация; ошибка записи не меняет вердикт
		_ = opts.Cache.Put(key, payloadFor(file.Path, Digest(file.Hash), len(res.Program.Events), v)) //nolint:errcheck
	}
	notify(opts.Sink, Event{File: file.Path, Stage: StageValidate, Status: res.status(), Elapsed: time.Since(started)})
	return res
}

func (r *CheckResult) finish(reporter diag.Reporter, v *borrow.Violation) {
	r.Violation = v
	if v != nil {
		reportViolation(reporter, r.Program, v)
	}
}

func (r *CheckResult) status() Status {
	if r.OK() {
		return StatusDone
	}
	return StatusError
}

func verdict(r *CheckResult) string {
	switch {
	case r.Violation != nil:
		return r.Violation.Kind.String()
	case r.Bag.HasErrors():
		return "syntax errors"
	}
	return "ok"
}

func emitRecords(tracer trace.Tracer, parent uint64, log []borrow.Record) {
	if !tracer.Enabled() || !tracer.Level().ShouldEmit(trace.ScopeEvent) {
		return
	}
	for _, rec := range log {
		extra := map[string]string{"index": strconv.Itoa(rec.Index)}
		if rec.Binding != "" {
			extra["binding"] = rec.Binding
		}
		if rec.Borrow != "" {
			extra["borrow"] = rec.Borrow
			extra["kind"] = rec.BorrowKind.String()
		}
		if rec.Scope != "" {
			extra["scope"] = rec.Scope
		}
		trace.Point(tracer, trace.ScopeEvent, rec.Kind.String(), rec.Note, parent, extra)
	}
}

// unwrapPathError drops the "open <path>:" prefix the message already carries.
func unwrapPathError(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

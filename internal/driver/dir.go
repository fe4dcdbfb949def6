package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"borrowck/internal/trace"
)

// ListScripts возвращает отсортированный список всех *.own файлов в директории.
func ListScripts(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// скрытые каталоги (.git, .cache) пропускаем
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ScriptExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// детерминированный порядок
	sort.Strings(files)
	return files, nil
}

// CheckDir checks every script under dir in parallel. Results follow the
// sorted file order regardless of completion order.
func CheckDir(ctx context.Context, dir string, opts Options) ([]*CheckResult, error) {
	files, err := ListScripts(dir)
	if err != nil {
		return nil, err
	}
	return CheckFiles(ctx, files, opts)
}

// CheckFiles checks the given scripts in parallel, bounded by opts.Jobs.
func CheckFiles(ctx context.Context, files []string, opts Options) ([]*CheckResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, path := range files {
		notify(opts.Sink, Event{File: path, Status: StatusQueued})
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "check-files", trace.SpanID(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*CheckResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			res, err := CheckFile(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary counts results by verdict.
type Summary struct {
	Files      int `json:"files"`
	Failed     int `json:"failed"`
	Violations int `json:"violations"`
	Cached     int `json:"cached"`
}

// Summarize folds results into a Summary.
func Summarize(results []*CheckResult) Summary {
	var s Summary
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Files++
		if !r.OK() {
			s.Failed++
		}
		if r.Violation != nil {
			s.Violations++
		}
		if r.Cached {
			s.Cached++
		}
	}
	return s
}

package verify

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/streamcast/docker-streamcast/src/render"
)

// Engine runs every check against every collected build definition with
// bounded concurrency. Generation itself stays sequential; only this
// post-render gate fans out, since each file is checked independently.
type Engine struct {
	checks      []Check
	concurrency int
}

// Options tune the engine.
type Options struct {
	Concurrency int // goroutine bound, defaults to runtime.NumCPU()
}

// NewEngine builds the engine with the full check set: secret scanning,
// structural rules against the buildspec, and drift against a fresh render.
func NewEngine(r *render.Renderer, opts Options) (*Engine, error) {
	secrets, err := newSecretsCheck()
	if err != nil {
		return nil, err
	}

	n := opts.Concurrency
	if n <= 0 {
		n = runtime.NumCPU()
	}

	return &Engine{
		checks: []Check{
			secrets,
			newStructureCheck(r.Spec()),
			newDriftCheck(r),
		},
		concurrency: n,
	}, nil
}

// CheckNames returns the names of the active checks.
func (e *Engine) CheckNames() []string {
	names := make([]string, len(e.checks))
	for i, c := range e.checks {
		names[i] = c.Name()
	}
	return names
}

// CheckStats holds per-check run statistics.
type CheckStats struct {
	Name     string
	Files    int
	Findings int
	Critical int
	Warnings int
}

// Run executes all checks against the given files and returns findings.
func (e *Engine) Run(ctx context.Context, files []FileInfo) ([]Finding, error) {
	findings, _, err := e.RunWithStats(ctx, files)
	return findings, err
}

// RunWithStats executes all checks and returns findings plus per-check
// statistics. Findings come back sorted by file, line, then check, so the
// report order is stable across runs.
func (e *Engine) RunWithStats(ctx context.Context, files []FileInfo) ([]Finding, []CheckStats, error) {
	var (
		mu       sync.Mutex
		findings []Finding
		wg       sync.WaitGroup
		errs     []error
	)

	sem := semaphore.NewWeighted(int64(e.concurrency))

	stats := make([]CheckStats, len(e.checks))
	for i, c := range e.checks {
		stats[i].Name = c.Name()
	}

	for _, file := range files {
		for ci, chk := range e.checks {
			if err := sem.Acquire(ctx, 1); err != nil {
				wg.Wait()
				return nil, stats, err
			}
			wg.Add(1)
			go func(c Check, f FileInfo, idx int) {
				defer wg.Done()
				defer sem.Release(1)

				results, err := c.Inspect(ctx, f)
				mu.Lock()
				defer mu.Unlock()
				stats[idx].Files++
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %s: %w", c.Name(), f.Path, err))
					return
				}
				for _, r := range results {
					stats[idx].Findings++
					switch r.Severity {
					case SeverityCritical:
						stats[idx].Critical++
					case SeverityWarning:
						stats[idx].Warnings++
					}
				}
				findings = append(findings, results...)
			}(chk, file, ci)
		}
	}

	wg.Wait()

	if len(errs) > 0 {
		return findings, stats, fmt.Errorf("%d check errors (first: %w)", len(errs), errs[0])
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Check < findings[j].Check
	})

	return findings, stats, nil
}

// Package runner provides an in-process lifecycle.Backend that executes
// registrations and reports their outcomes.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/scopekit/pkg/lifecycle"
)

// ErrRunCancelled is returned when the run context is cancelled before all
// tests were started.
var ErrRunCancelled = errors.New("runner: run cancelled")

// Runner collects registrations and runs them on demand.
//
// When any registration that is not ignored is flagged Only, the run is in
// only-mode and every other registration is skipped.
type Runner struct {
	options  *Options
	regs     []lifecycle.Registration
	sessions []*lifecycle.Session
}

// New creates a runner with the given options.
func New(opts ...Option) *Runner {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)

	return &Runner{options: options}
}

// Register implements lifecycle.Backend.
func (r *Runner) Register(reg lifecycle.Registration) {
	r.regs = append(r.regs, reg)
}

// Session creates a session that registers into this runner. Run seals it.
func (r *Runner) Session(opts ...lifecycle.Option) *lifecycle.Session {
	s := lifecycle.NewSession(r, opts...)
	r.sessions = append(r.sessions, s)
	return s
}

// Len returns the number of registrations collected so far.
func (r *Runner) Len() int {
	return len(r.regs)
}

// Run seals the runner's sessions and executes every registration.
// Test failures are reported in the Report, not as the returned error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	startTime := time.Now()

	for _, s := range r.sessions {
		s.Seal()
	}

	report := &Report{
		RunID:   ulid.Make(),
		Results: make([]Result, len(r.regs)),
	}
	logger := r.options.Logger.With("run_id", report.RunID.String())
	logger.DebugContext(ctx, "run started", "tests", len(r.regs), "workers", r.options.Workers)

	out := newConsole(r.options.Output, r.options.NoColor, r.options.Workers == 1)
	out.header(len(r.regs))

	onlyMode := false
	for _, reg := range r.regs {
		if reg.Only && !reg.Ignore {
			onlyMode = true
			break
		}
	}

	var cancelled bool
	if r.options.Workers == 1 {
		cancelled = r.runSequential(ctx, report, out, onlyMode)
	} else {
		cancelled = r.runParallel(ctx, report, out, onlyMode)
	}

	report.Duration = time.Since(startTime)
	out.summary(report)

	counts := report.Counts()
	logger.DebugContext(ctx, "run finished",
		"passed", counts.Passed, "failed", counts.Failed, "skipped", counts.Skipped,
		"duration", report.Duration)

	if cancelled {
		return report, ErrRunCancelled
	}
	return report, nil
}

func (r *Runner) runSequential(ctx context.Context, report *Report, out *console, onlyMode bool) bool {
	cancelled := false
	stopped := false

	for i, reg := range r.regs {
		if !cancelled && ctx.Err() != nil {
			cancelled = true
		}

		out.start(reg.Name)
		if cancelled || stopped || skip(reg, onlyMode) {
			report.Results[i] = skipped(reg)
			out.finish(report.Results[i])
			continue
		}

		report.Results[i] = execute(ctx, reg)
		out.finish(report.Results[i])

		if r.options.FailFast && report.Results[i].Status == StatusFailed {
			stopped = true
		}
	}

	return cancelled
}

func (r *Runner) runParallel(ctx context.Context, report *Report, out *console, onlyMode bool) bool {
	sem := semaphore.NewWeighted(int64(r.options.Workers))
	g, gCtx := errgroup.WithContext(ctx)

	var (
		stopped   atomic.Bool
		cancelled atomic.Bool
		mu        sync.Mutex
	)

	for i, reg := range r.regs {
		if skip(reg, onlyMode) {
			report.Results[i] = skipped(reg)
			out.finish(report.Results[i])
			continue
		}

		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				cancelled.Store(true)
				mu.Lock()
				report.Results[i] = skipped(reg)
				mu.Unlock()
				out.finish(skipped(reg))
				return nil
			}
			defer sem.Release(1)

			var res Result
			if stopped.Load() {
				res = skipped(reg)
			} else {
				res = execute(gCtx, reg)
			}

			if r.options.FailFast && res.Status == StatusFailed {
				stopped.Store(true)
			}

			mu.Lock()
			report.Results[i] = res
			mu.Unlock()
			out.finish(res)
			return nil
		})
	}

	_ = g.Wait()

	return cancelled.Load()
}

func skip(reg lifecycle.Registration, onlyMode bool) bool {
	return reg.Ignore || (onlyMode && !reg.Only)
}

func skipped(reg lifecycle.Registration) Result {
	return Result{Name: reg.Name, Path: reg.Path, Status: StatusSkipped}
}

func execute(ctx context.Context, reg lifecycle.Registration) Result {
	start := time.Now()
	err := call(ctx, reg.Fn)

	res := Result{
		Duration: time.Since(start),
		Err:      err,
		Name:     reg.Name,
		Path:     reg.Path,
		Status:   StatusPassed,
	}
	if err != nil {
		res.Status = StatusFailed
	}
	return res
}

// call guards against registrations submitted without a Session, whose Fn
// does not recover panics itself.
func call(ctx context.Context, fn lifecycle.Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", lifecycle.ErrPanic, r)
		}
	}()
	return fn(ctx)
}

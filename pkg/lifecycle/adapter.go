package lifecycle

import (
	"context"
	"errors"
	"log/slog"
)

// execution wraps one test body with the hooks of its captured chain.
type execution struct {
	chain  []*scope
	body   Func
	only   bool
	logger *slog.Logger
}

// run executes setup, body and teardown. Teardown always runs, including
// when setup or the body fails, panics or exits the goroutine. The first
// setup or body failure is returned ahead of any teardown failures.
func (e *execution) run(ctx context.Context) (err error) {
	entered := 0

	defer func() {
		for _, sc := range e.chain {
			sc.complete(e.only)
		}
		errs := append([]error{err}, e.teardown(ctx, entered)...)
		err = errors.Join(errs...)
	}()

	if err := e.setup(ctx, &entered); err != nil {
		return err
	}
	return invoke(ctx, e.body)
}

// setup walks the chain outer to inner. entered counts the scopes whose
// hooks were attempted, so teardown can pair AfterEach with BeforeEach.
func (e *execution) setup(ctx context.Context, entered *int) error {
	for i, sc := range e.chain {
		*entered = i + 1
		e.logger.DebugContext(ctx, "scope entered", "scope", sc.name)

		if err := sc.setup(ctx); err != nil {
			return err
		}
		if err := sc.run(ctx, HookBeforeEach); err != nil {
			return err
		}
	}
	return nil
}

// teardown walks the chain inner to outer. AfterEach runs for entered
// scopes; AfterAll runs for every scope whose tests all completed.
func (e *execution) teardown(ctx context.Context, entered int) []error {
	var errs []error
	for i := len(e.chain) - 1; i >= 0; i-- {
		sc := e.chain[i]

		if i < entered {
			if err := sc.run(ctx, HookAfterEach); err != nil {
				errs = append(errs, err)
			}
		}

		if sc.claimTeardown() {
			e.logger.DebugContext(ctx, "teardown-once fired", "scope", sc.name)
			if err := sc.run(ctx, HookAfterAll); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

func invoke(ctx context.Context, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return fn(ctx)
}

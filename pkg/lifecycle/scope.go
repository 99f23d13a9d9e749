package lifecycle

import (
	"context"
	"log/slog"
	"sync"

	"github.com/specvital/scopekit/pkg/domain"
)

// Counts is a snapshot of a scope's completion counters.
type Counts struct {
	// Expected is the number of non-ignored tests nested in the scope.
	Expected int
	// Completed is the number of those tests that finished executing.
	Completed int
	// ExpectedOnly is the number of nested tests flagged Only.
	ExpectedOnly int
	// CompletedOnly is the number of flagged tests that finished executing.
	CompletedOnly int
}

// scope is one nesting level: the root or a group.
//
// Expected counts are written during registration only. Completed counts and
// latches are written by the execution adapter and guarded by mu.
type scope struct {
	name  string
	hooks hookSlots
	log   *slog.Logger

	// first is true until a leaf test is named under this scope.
	first bool

	// Registered children, kept for Outline.
	suites []*scope
	tests  []domain.Test

	setupOnce sync.Once

	mu            sync.Mutex
	counts        Counts
	teardownFired bool
}

func newScope(name string, log *slog.Logger) *scope {
	return &scope{
		name:  name,
		log:   log,
		first: true,
	}
}

func (s *scope) expect(only bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts.Expected++
	if only {
		s.counts.ExpectedOnly++
	}
}

func (s *scope) complete(only bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts.Completed++
	if only {
		s.counts.CompletedOnly++
	}
}

func (s *scope) snapshot() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// setup runs BeforeAll for the first test that reaches the scope. Callers
// arriving while BeforeAll is running block until it returns; only the caller
// that ran it sees its error.
func (s *scope) setup(ctx context.Context) error {
	var err error
	s.setupOnce.Do(func() {
		err = s.run(ctx, HookBeforeAll)
	})
	return err
}

// claimTeardown reports whether the caller should run AfterAll now. It
// returns true at most once per scope.
func (s *scope) claimTeardown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.teardownFired {
		return false
	}

	c := s.counts
	if c.Completed == c.Expected || (c.ExpectedOnly > 0 && c.CompletedOnly == c.ExpectedOnly) {
		s.teardownFired = true
		return true
	}
	return false
}

// run invokes the hook of the given kind, if set, converting failures and
// panics into a *HookError.
func (s *scope) run(ctx context.Context, kind HookKind) (err error) {
	fn := s.hooks.get(kind)
	if fn == nil {
		return nil
	}

	s.log.DebugContext(ctx, "hook fired", "scope", s.name, "hook", kind.String())

	defer func() {
		if r := recover(); r != nil {
			err = &HookError{Err: recovered(r), Kind: kind, Scope: s.name}
		}
	}()

	if hookErr := fn(ctx); hookErr != nil {
		return &HookError{Err: hookErr, Kind: kind, Scope: s.name}
	}
	return nil
}

// outline converts the scope and its registered children into a suite.
func (s *scope) outline() domain.TestSuite {
	suite := domain.TestSuite{
		Hooks: s.hooks.names(),
		Name:  s.name,
		Tests: append([]domain.Test(nil), s.tests...),
	}
	for _, child := range s.suites {
		suite.Suites = append(suite.Suites, child.outline())
	}
	return suite
}

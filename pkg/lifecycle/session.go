package lifecycle

import (
	"fmt"
	"log/slog"

	"github.com/specvital/scopekit/pkg/domain"
)

// Session collects group, test and hook registrations and submits one flat
// Registration per test to its Backend.
//
// A Session is not safe for concurrent registration. Registration must be
// complete, and the session sealed, before any Registration.Fn runs.
type Session struct {
	backend Backend
	logger  *slog.Logger
	options *Options
	stack   *stack
	sealed  bool
}

// NewSession creates a session submitting to backend.
func NewSession(backend Backend, opts ...Option) *Session {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)

	return &Session{
		backend: backend,
		logger:  options.Logger,
		options: options,
		stack:   newStack(newScope("", options.Logger)),
	}
}

// Validate reports configuration errors such as malformed patterns.
func (s *Session) Validate() error {
	if err := ValidatePatterns(s.options.Patterns); err != nil {
		return fmt.Errorf("validating patterns: %w", err)
	}
	return nil
}

// Group opens a new scope, runs body to register its contents, and closes
// the scope again. Every test registered by body counts toward the group.
func (s *Session) Group(name string, body func()) {
	if s.sealed {
		s.logger.Warn("group registered after seal", "group", name)
		return
	}

	s.stack.push(newScope(name, s.logger))
	defer s.stack.pop()

	if body != nil {
		body()
	}
}

// Test registers a test body under the current group.
func (s *Session) Test(name string, fn Func) error {
	return s.TestDef(Definition{Name: name, Fn: fn})
}

// Ignore registers a skipped test under the current group.
func (s *Session) Ignore(name string, fn Func) error {
	return s.TestDef(Definition{Name: name, Fn: fn, Ignore: true})
}

// TestDef registers a structured test definition under the current group.
func (s *Session) TestDef(def Definition) error {
	if s.sealed {
		return fmt.Errorf("%w: test %q", ErrSealed, def.Name)
	}
	if def.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDefinition)
	}
	if def.Fn == nil {
		return fmt.Errorf("%w: test %q has no function", ErrInvalidDefinition, def.Name)
	}

	path := append(s.stack.path(), def.Name)
	ignore := def.Ignore || !MatchPath(s.options.Patterns, path)
	only := def.Only && !ignore

	chain := s.stack.chain()
	if !ignore {
		for _, sc := range chain {
			sc.expect(only)
		}
	}

	name := s.options.Namer.Name(s.stack.frames(), def.Name)

	current := s.stack.current()
	current.tests = append(current.tests, domain.Test{Name: def.Name, Status: statusOf(ignore, only)})

	s.logger.Debug("test registered", "name", name, "ignored", ignore, "only", only)

	fn := def.Fn
	if !ignore {
		fn = (&execution{chain: chain, body: def.Fn, only: only, logger: s.logger}).run
	}

	s.backend.Register(Registration{
		Name:   name,
		Path:   path,
		Fn:     fn,
		Ignore: ignore,
		Only:   def.Only,
		Labels: def.Labels,
	})
	return nil
}

// BeforeAll sets the hook run before the first test of the current group.
func (s *Session) BeforeAll(fn Hook) {
	s.setHook(HookBeforeAll, fn)
}

// BeforeEach sets the hook run before every test of the current group.
func (s *Session) BeforeEach(fn Hook) {
	s.setHook(HookBeforeEach, fn)
}

// AfterEach sets the hook run after every test of the current group.
func (s *Session) AfterEach(fn Hook) {
	s.setHook(HookAfterEach, fn)
}

// AfterAll sets the hook run after the last test of the current group.
func (s *Session) AfterAll(fn Hook) {
	s.setHook(HookAfterAll, fn)
}

func (s *Session) setHook(kind HookKind, fn Hook) {
	if s.sealed {
		s.logger.Warn("hook registered after seal", "hook", kind.String())
		return
	}
	s.stack.current().hooks.set(kind, fn)
}

// Seal ends the registration phase. It is safe to call more than once.
func (s *Session) Seal() {
	s.sealed = true
}

// Sealed reports whether Seal was called.
func (s *Session) Sealed() bool {
	return s.sealed
}

// Root returns the counters of the root scope.
func (s *Session) Root() Counts {
	return s.stack.root.snapshot()
}

// Outline returns the tree of groups and tests registered so far.
// Groups that are still open are not included.
func (s *Session) Outline() domain.TestFile {
	root := s.stack.root.outline()
	return domain.TestFile{
		Hooks:  root.Hooks,
		Suites: root.Suites,
		Tests:  root.Tests,
	}
}

func statusOf(ignore, only bool) domain.TestStatus {
	switch {
	case ignore:
		return domain.TestStatusSkipped
	case only:
		return domain.TestStatusFocused
	default:
		return domain.TestStatusActive
	}
}

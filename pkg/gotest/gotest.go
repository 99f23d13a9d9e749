// Package gotest runs a lifecycle session as subtests of a *testing.T.
//
//	func TestUsers(t *testing.T) {
//	    gotest.Run(t, func(s *lifecycle.Session) {
//	        s.BeforeAll(connect)
//	        s.Group("create", func() {
//	            require.NoError(t, s.Test("valid", createValid))
//	        })
//	    })
//	}
//
// Subtests run in registration order. Names go through testing's own
// rewriting, so the default flat namer is the best fit.
package gotest

import (
	"context"
	"testing"

	"github.com/specvital/scopekit/pkg/lifecycle"
)

type testKey struct{}

// T returns the subtest running the current test body, or nil when ctx does
// not come from Run.
func T(ctx context.Context) *testing.T {
	t, _ := ctx.Value(testKey{}).(*testing.T)
	return t
}

// backend buffers registrations until the session is sealed, since t.Run
// would otherwise execute each test while the session is still registering.
type backend struct {
	regs []lifecycle.Registration
}

func (b *backend) Register(r lifecycle.Registration) {
	b.regs = append(b.regs, r)
}

func (b *backend) onlyMode() bool {
	for _, r := range b.regs {
		if r.Only && !r.Ignore {
			return true
		}
	}
	return false
}

// Run registers the session built by build and executes every test as a
// subtest of t. Ignored tests, and unfocused tests when any test is flagged
// Only, are skipped.
func Run(t *testing.T, build func(s *lifecycle.Session), opts ...lifecycle.Option) {
	t.Helper()

	b := &backend{}
	s := lifecycle.NewSession(b, opts...)
	if err := s.Validate(); err != nil {
		t.Fatalf("invalid session: %v", err)
	}

	build(s)
	s.Seal()

	onlyMode := b.onlyMode()
	for _, reg := range b.regs {
		t.Run(reg.Name, func(t *testing.T) {
			if reg.Ignore {
				t.Skip("ignored")
			}
			if onlyMode && !reg.Only {
				t.Skip("not focused")
			}

			ctx := context.WithValue(t.Context(), testKey{}, t)
			if err := reg.Fn(ctx); err != nil {
				t.Error(err)
			}
		})
	}
}

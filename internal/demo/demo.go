// Package demo registers a small nested suite that shows the order in which
// lifecycle hooks fire around global, grouped and ignored tests.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/specvital/scopekit/pkg/lifecycle"
)

// DefaultDelay is how long the slow tests wait before logging.
const DefaultDelay = 100 * time.Millisecond

// Suite writes one quoted message per hook and test body to Out.
type Suite struct {
	Delay time.Duration
	Out   io.Writer

	mu sync.Mutex
}

// New returns a suite writing to w with DefaultDelay.
func New(w io.Writer) *Suite {
	return &Suite{Delay: DefaultDelay, Out: w}
}

func (d *Suite) log(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.Out, " '%s' ", msg)
}

func (d *Suite) say(msg string) func(context.Context) error {
	return func(context.Context) error {
		d.log(msg)
		return nil
	}
}

// slow logs msg after Delay, or returns early if ctx is done.
func (d *Suite) slow(msg string) func(context.Context) error {
	return func(ctx context.Context) error {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		d.log(msg)
		return nil
	}
}

// Register declares the suite on s.
func (d *Suite) Register(s *lifecycle.Session) error {
	var errs []error
	add := func(err error) {
		errs = append(errs, err)
	}

	s.BeforeAll(d.say("before all global"))
	s.BeforeEach(d.say("before each global"))
	s.AfterEach(d.say("after each global"))
	s.AfterAll(d.say("after all global"))

	add(s.Test("1", d.say("1")))
	add(s.TestDef(lifecycle.Definition{Name: "2", Fn: d.say("2"), Ignore: true}))
	add(s.Test("3", d.slow("3")))

	s.Group("group 1", func() {
		s.BeforeAll(d.say("before all group 1"))
		s.BeforeEach(d.say("before each group 1"))
		s.AfterEach(d.say("after each group 1"))
		s.AfterAll(d.say("after all group 1"))

		add(s.Test("1", d.say("1")))
		add(s.TestDef(lifecycle.Definition{Name: "2", Fn: d.say("2"), Ignore: true}))
		add(s.Test("3", d.slow("3")))
	})

	s.Group("group 2", func() {
		s.BeforeAll(d.say("before all group 2"))
		s.BeforeEach(d.say("before each group 2"))
		s.AfterEach(d.say("after each group 2"))
		s.AfterAll(d.say("after all group 2"))

		add(s.Test("1", d.say("1")))

		s.Group("group 3", func() {
			s.BeforeAll(d.say("before all group 3"))
			s.BeforeEach(d.say("before each group 3"))
			s.AfterEach(d.say("after each group 3"))
			s.AfterAll(d.say("after all group 3"))

			add(s.Test("1", d.say("1")))
			add(s.TestDef(lifecycle.Definition{Name: "2", Fn: d.say("2"), Ignore: true}))
			add(s.Test("3", d.slow("3")))
		})

		add(s.Test("3", d.slow("3")))
	})

	return errors.Join(errs...)
}

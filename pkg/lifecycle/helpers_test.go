package lifecycle

import (
	"context"
	"sync"
)

// recorder is a Backend that keeps registrations in submission order.
type recorder struct {
	regs []Registration
}

func (r *recorder) Register(reg Registration) {
	r.regs = append(r.regs, reg)
}

func (r *recorder) find(name string) Registration {
	for _, reg := range r.regs {
		if reg.Name == name {
			return reg
		}
	}
	panic("registration not found: " + name)
}

// runAll runs every non-ignored registration in submission order.
func (r *recorder) runAll(ctx context.Context) []error {
	var errs []error
	for _, reg := range r.regs {
		if reg.Ignore {
			continue
		}
		if err := reg.Fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// journal records hook and body invocations.
type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) add(event string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

func (j *journal) hook(event string) Hook {
	return func(context.Context) error {
		j.add(event)
		return nil
	}
}

func (j *journal) body(event string) Func {
	return func(context.Context) error {
		j.add(event)
		return nil
	}
}

func (j *journal) count(event string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, e := range j.events {
		if e == event {
			n++
		}
	}
	return n
}

func (j *journal) filter(keep func(string) bool) []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []string
	for _, e := range j.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (j *journal) hooks(s *Session, scope string) {
	s.BeforeAll(j.hook("before all " + scope))
	s.BeforeEach(j.hook("before each " + scope))
	s.AfterEach(j.hook("after each " + scope))
	s.AfterAll(j.hook("after all " + scope))
}

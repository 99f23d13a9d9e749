package lifecycle

// stack is the chain of groups open during registration, outermost first.
// The root scope is never on the stack itself.
type stack struct {
	root   *scope
	scopes []*scope
}

func newStack(root *scope) *stack {
	return &stack{root: root}
}

func (st *stack) push(s *scope) {
	st.scopes = append(st.scopes, s)
}

// pop closes the innermost group and attaches it to its parent for Outline.
func (st *stack) pop() *scope {
	n := len(st.scopes)
	if n == 0 {
		return nil
	}

	s := st.scopes[n-1]
	st.scopes[n-1] = nil
	st.scopes = st.scopes[:n-1]

	parent := st.current()
	parent.suites = append(parent.suites, s)
	return s
}

// current returns the innermost open group, or root when none is open.
func (st *stack) current() *scope {
	if len(st.scopes) == 0 {
		return st.root
	}
	return st.scopes[len(st.scopes)-1]
}

// chain returns root followed by the open groups, outer to inner. The
// returned slice is a copy and stays valid after the stack changes.
func (st *stack) chain() []*scope {
	chain := make([]*scope, 0, len(st.scopes)+1)
	chain = append(chain, st.root)
	return append(chain, st.scopes...)
}

// path returns the names of the open groups, outer to inner.
func (st *stack) path() []string {
	path := make([]string, 0, len(st.scopes)+1)
	for _, s := range st.scopes {
		path = append(path, s.name)
	}
	return path
}

// frames describes the open groups for a Namer and clears their first flag.
func (st *stack) frames() []Frame {
	frames := make([]Frame, len(st.scopes))
	for i, s := range st.scopes {
		frames[i] = Frame{Name: s.name, Depth: i, First: s.first}
		s.first = false
	}
	return frames
}

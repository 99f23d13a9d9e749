package lifecycle

// Definition is the structured form of a test registration.
type Definition struct {
	// Name is the leaf test name. Required.
	Name string

	// Fn is the test body. Required.
	Fn Func

	// Ignore registers the test as skipped. Ignored tests do not count toward
	// their scopes and never run hooks.
	Ignore bool

	// Only flags the test as focused. When any test of a run is focused,
	// backends run focused tests only, and a scope's AfterAll fires once all
	// of its focused tests completed.
	Only bool

	// Labels are forwarded to the backend unchanged.
	Labels map[string]string
}

// Registration is the flat test handed to a Backend.
type Registration struct {
	// Name is the display name produced by the session's Namer.
	Name string

	// Path holds the enclosing group names followed by the leaf name.
	Path []string

	// Fn runs setup hooks, the test body and teardown hooks.
	Fn Func

	// Ignore is set for ignored tests and tests not selected by patterns.
	Ignore bool

	// Only mirrors Definition.Only.
	Only bool

	// Labels mirrors Definition.Labels.
	Labels map[string]string
}

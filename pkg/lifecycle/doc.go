// Package lifecycle turns a nested group/test authoring API into flat test
// registrations for a backend that only knows individually named tests.
//
// A Session collects registrations synchronously:
//
//	s := lifecycle.NewSession(backend)
//	s.BeforeAll(openDB)
//	s.Group("users", func() {
//	    s.BeforeEach(resetTables)
//	    s.Test("create", testCreate)
//	    s.Ignore("delete", testDelete)
//	})
//	s.Seal()
//
// Every leaf test is submitted to the backend as one Registration whose Fn
// runs the setup hooks of its enclosing scopes outer-to-inner, the test body,
// and the teardown hooks inner-to-outer. BeforeAll runs before the first test
// of a scope executes and AfterAll after the last one completes, based on the
// number of tests each scope counted at registration time.
//
// Backends may execute registrations on any goroutine once the session is
// sealed. Counters are synchronized, but hooks of scopes shared by tests that
// truly overlap are not serialized: an AfterAll may run while a sibling
// branch is still inside its own BeforeAll.
package lifecycle

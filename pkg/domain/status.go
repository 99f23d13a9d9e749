// Package domain defines the types shared by the runtime registrar and the
// static outline scanner to describe a tree of groups and tests.
package domain

// TestStatus represents the execution behavior of a test or group.
type TestStatus string

const (
	// TestStatusActive indicates a normal test that runs and counts toward its
	// enclosing scopes.
	TestStatusActive TestStatus = "active"
	// TestStatusSkipped indicates a test intentionally excluded from execution,
	// either through Ignore or because a name filter did not select it.
	TestStatusSkipped TestStatus = "skipped"
	// TestStatusFocused indicates a test flagged "only".
	// CI should warn when focused tests are committed.
	TestStatusFocused TestStatus = "focused"
)

// Runs reports whether a test with this status is expected to execute.
func (s TestStatus) Runs() bool {
	return s == TestStatusActive || s == TestStatusFocused
}

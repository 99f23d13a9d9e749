package domain

// Hook names as they appear in TestSuite.Hooks and TestFile.Hooks.
const (
	HookBeforeAll  = "beforeAll"
	HookBeforeEach = "beforeEach"
	HookAfterEach  = "afterEach"
	HookAfterAll   = "afterAll"
)

// Test is a single leaf test.
type Test struct {
	Location Location   `json:"location"`
	Name     string     `json:"name"`
	Status   TestStatus `json:"status"`
}

// TestSuite is a group of tests and nested groups.
type TestSuite struct {
	// Hooks lists the lifecycle hooks declared directly on this group.
	Hooks    []string    `json:"hooks,omitempty"`
	Location Location    `json:"location"`
	Name     string      `json:"name"`
	Suites   []TestSuite `json:"suites,omitempty"`
	Tests    []Test      `json:"tests,omitempty"`
}

// CountTests returns the number of tests nested under the suite.
func (s *TestSuite) CountTests() int {
	count := len(s.Tests)
	for _, sub := range s.Suites {
		count += sub.CountTests()
	}
	return count
}

// CountActive returns the number of nested tests that are expected to run.
func (s *TestSuite) CountActive() int {
	count := 0
	for _, t := range s.Tests {
		if t.Status.Runs() {
			count++
		}
	}
	for _, sub := range s.Suites {
		count += sub.CountActive()
	}
	return count
}

// Find returns the direct child suite with the given name.
func (s *TestSuite) Find(name string) *TestSuite {
	for i := range s.Suites {
		if s.Suites[i].Name == name {
			return &s.Suites[i]
		}
	}
	return nil
}

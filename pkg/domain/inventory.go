package domain

// TestFile is the outline of one registration unit: a source file for the
// static scanner, or a whole session for the runtime registrar.
type TestFile struct {
	// Hooks lists the lifecycle hooks declared on the root scope.
	Hooks []string `json:"hooks,omitempty"`
	// Package is the Go package name of the source file, when known.
	Package string `json:"package,omitempty"`
	// Path is the file path. Empty for runtime outlines.
	Path string `json:"path,omitempty"`
	// Suites contains the top-level groups.
	Suites []TestSuite `json:"suites,omitempty"`
	// Tests contains the tests registered outside any group.
	Tests []Test `json:"tests,omitempty"`
}

// CountTests returns the total number of tests in this file.
func (f *TestFile) CountTests() int {
	count := len(f.Tests)
	for _, s := range f.Suites {
		count += s.CountTests()
	}
	return count
}

// CountActive returns the number of tests expected to run.
func (f *TestFile) CountActive() int {
	root := TestSuite{Suites: f.Suites, Tests: f.Tests}
	return root.CountActive()
}

// Inventory represents a collection of outlined test files.
type Inventory struct {
	// Files contains all outlined files.
	Files []TestFile `json:"files"`
	// RootPath is the root directory that was scanned.
	RootPath string `json:"rootPath"`
}

// CountTests returns the total number of tests across all files.
func (inv Inventory) CountTests() int {
	count := 0
	for _, f := range inv.Files {
		count += f.CountTests()
	}
	return count
}

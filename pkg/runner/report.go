package runner

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Status is the outcome of one registration.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one registration.
type Result struct {
	// Duration is the time spent in the registration's Fn.
	Duration time.Duration

	// Err is the error returned by a failed test.
	Err error

	// Name is the registration display name.
	Name string

	// Path is the group path and leaf name of the test.
	Path []string

	// Status is the test outcome.
	Status Status
}

// Counts summarizes results by status.
type Counts struct {
	Passed  int
	Failed  int
	Skipped int
}

// Report is the outcome of a Run.
type Report struct {
	// Duration is the total run duration.
	Duration time.Duration

	// Results holds one entry per registration, in registration order.
	Results []Result

	// RunID identifies the run in logs.
	RunID ulid.ULID
}

// Counts returns the number of results per status.
func (r *Report) Counts() Counts {
	var c Counts
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			c.Passed++
		case StatusFailed:
			c.Failed++
		case StatusSkipped:
			c.Skipped++
		}
	}
	return c
}

// Failed reports whether any test failed.
func (r *Report) Failed() bool {
	return r.Counts().Failed > 0
}

// Err joins the errors of all failed tests, each prefixed with its name.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
		}
	}
	return errors.Join(errs...)
}

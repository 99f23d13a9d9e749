package runner

import (
	"io"
	"log/slog"
)

const (
	// DefaultWorkers runs registrations one at a time.
	DefaultWorkers = 1
	// MaxWorkers is the maximum number of concurrent tests allowed.
	MaxWorkers = 1024
)

// Options configures a Runner.
type Options struct {
	// FailFast stops scheduling tests after the first failure. Tests that
	// were not started are reported as skipped.
	FailFast bool

	// Logger receives debug records about the run. If nil, records are
	// discarded.
	Logger *slog.Logger

	// NoColor disables colored status words in Output.
	NoColor bool

	// Output receives one line per test and a summary. If nil, nothing is
	// printed.
	Output io.Writer

	// Workers is the number of tests run concurrently.
	// Zero or negative values use DefaultWorkers.
	Workers int
}

// Option is a functional option for configuring Runner.
type Option func(*Options)

// WithWorkers sets the number of concurrent tests.
// Negative values are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.Workers = n
		}
	}
}

// WithFailFast enables or disables stopping after the first failure.
func WithFailFast(enabled bool) Option {
	return func(o *Options) {
		o.FailFast = enabled
	}
}

// WithOutput sets the writer for progress lines.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// WithNoColor disables colored output.
func WithNoColor(disabled bool) Option {
	return func(o *Options) {
		o.NoColor = disabled
	}
}

// WithLogger sets the runner logger. Nil is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

func applyDefaults(opts *Options) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Workers > MaxWorkers {
		opts.Workers = MaxWorkers
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
}

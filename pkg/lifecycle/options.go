package lifecycle

import "log/slog"

// Options configures a Session.
type Options struct {
	// Logger receives debug records about registration and hook execution.
	// If nil, records are discarded.
	Logger *slog.Logger

	// Namer derives display names. If nil, a JoinNamer with DefaultSeparator
	// is used.
	Namer Namer

	// Patterns selects tests by their slash-joined group path using doublestar
	// globs. Tests that match none are registered as ignored.
	// Empty means every test is selected.
	Patterns []string
}

// Option is a functional option for configuring a Session.
type Option func(*Options)

// WithLogger sets the session logger. Nil is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithNamer sets the display-name strategy.
func WithNamer(namer Namer) Option {
	return func(o *Options) {
		o.Namer = namer
	}
}

// WithSeparator selects a JoinNamer with the given separator.
func WithSeparator(separator string) Option {
	return func(o *Options) {
		o.Namer = JoinNamer{Separator: separator}
	}
}

// WithPatterns sets glob patterns that select which tests run.
func WithPatterns(patterns ...string) Option {
	return func(o *Options) {
		o.Patterns = patterns
	}
}

func applyDefaults(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Namer == nil {
		opts.Namer = JoinNamer{Separator: DefaultSeparator}
	}
}

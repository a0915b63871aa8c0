package merger

import (
	"log/slog"

	"github.com/davidvella/merger/monitoring"
)

// options defines all configuration options for a session.
type options struct {
	logger *slog.Logger
	stats  monitoring.Stats

	initialCapacity int // Source array capacity on Start
	maxSources      int // Upper bound on accepted sources, 0 for none
}

// Option is a function that configures the session options.
type Option func(*options)

// WithLogger sets the logger. Sessions log nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithStats sets the statistics sink.
func WithStats(s monitoring.Stats) Option {
	return func(o *options) {
		if s != nil {
			o.stats = s
		}
	}
}

// WithInitialCapacity sets the source array capacity allocated by Start.
// The array doubles when it fills up.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.initialCapacity = n
		}
	}
}

// WithMaxSources limits the number of sources a single Start accepts.
// Exceeding the limit fails Start with a *ResourceError.
func WithMaxSources(n int) Option {
	return func(o *options) {
		o.maxSources = n
	}
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		stats:           monitoring.NoopStats(),
		initialCapacity: 8,
		maxSources:      0,
	}
}

package roboguice

import (
	"github.com/go-logr/logr"

	"github.com/mstian06/roboguice/metrics"
)

type options struct {
	log      logr.Logger
	metrics  *metrics.Collector
	scope    *ContextScope
	defaults bool
}

// Option configures a ContextScope or an Assembler.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMetrics sets the metrics collector. A nil collector records nothing.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// WithScope makes an Assembler bind context-scoped types to an existing scope
// instead of creating its own.
func WithScope(s *ContextScope) Option {
	return func(o *options) {
		o.scope = s
	}
}

// WithDefaults makes an Assembler plan DefaultDefinitions ahead of the
// definitions it is given. A given definition replaces a default of the same type.
func WithDefaults() Option {
	return func(o *options) {
		o.defaults = true
	}
}

func buildOptions(opts []Option) options {
	o := options{log: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

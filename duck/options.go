package duck

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Cache.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
	config     Config
}

func defaultOptions() options {
	return options{config: DefaultConfig()}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRegisterer registers the cache metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithPublicOnly restricts resolution to exported target members.
func WithPublicOnly(publicOnly bool) Option {
	return func(o *options) {
		o.config.PublicOnly = publicOnly
	}
}

// WithMaxCandidates caps the suggestions reported for unresolved members.
func WithMaxCandidates(n int) Option {
	return func(o *options) {
		o.config.MaxCandidates = n
	}
}

package builder

import "github.com/born-ml/bornir/internal/frontend"

// Option configures a Builder.
type Option func(*Builder)

// WithStrict makes the first per-node error abort the build.
func WithStrict(strict bool) Option {
	return func(b *Builder) { b.strict = strict }
}

// WithWorkers sets how many goroutines extract nodes. n <= 1 is sequential.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// WithPolicy replaces the normalization policy.
func WithPolicy(p *frontend.Policy) Option {
	return func(b *Builder) { b.policy = p }
}

// WithMetrics records conversion metrics.
func WithMetrics(m *Metrics) Option {
	return func(b *Builder) { b.metrics = m }
}

package routines

import (
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/routines/metrics"
)

// config holds per-launch configuration assembled from options.
type config struct {
	// limiter is an explicit permit source. It takes precedence over
	// maxConcurrency and bypasses the shared limiter pool; the caller owns
	// its lifecycle.
	limiter Limiter

	// maxConcurrency, when positive, resolves a pooled limiter shared by
	// every launch using the same value.
	maxConcurrency int

	// name identifies the operation in failure reports.
	name string

	// metadata is attached to failure reports. Snapshotted when the option
	// is applied; later mutation of the caller's map has no effect.
	metadata map[string]string

	// handler overrides the process-wide default failure handler for this launch.
	handler Handler

	// counter, when set, is incremented before scheduling and decremented on
	// every exit path of the routine.
	counter *Counter

	// provider records launch/active/failure/duration instruments.
	// Nil means no metrics are recorded.
	provider metrics.Provider
}

func defaultConfig() config {
	return config{}
}

// Option configures a single launch. Options returning an error reject the
// launch synchronously before anything is scheduled.
type Option func(*config) error

// WithLimiter uses l as the permit source for this launch. The caller owns
// l's lifecycle; the shared limiter pool is bypassed.
func WithLimiter(l Limiter) Option {
	return func(cfg *config) error { cfg.limiter = l; return nil }
}

// WithMaxConcurrency caps how many routines launched with the same n run
// concurrently, process-wide. The backing limiter is shared through a pooled
// cache keyed by n. n must be positive.
func WithMaxConcurrency(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return errorc.With(ErrInvalidLimit, errorc.String("", "WithMaxConcurrency requires n > 0"))
		}
		cfg.maxConcurrency = n
		return nil
	}
}

// WithName attaches an operation name to failure reports.
func WithName(name string) Option {
	return func(cfg *config) error { cfg.name = name; return nil }
}

// WithMetadata attaches free-form metadata to failure reports. The map is
// copied when the option is applied.
func WithMetadata(m map[string]string) Option {
	return func(cfg *config) error {
		if len(m) == 0 {
			return nil
		}
		if cfg.metadata == nil {
			cfg.metadata = make(map[string]string, len(m))
		}
		for k, v := range m {
			cfg.metadata[k] = v
		}
		return nil
	}
}

// WithHandler overrides the process-wide default failure handler for this launch.
func WithHandler(h Handler) Option {
	return func(cfg *config) error { cfg.handler = h; return nil }
}

// WithCounter associates the launch with c: incremented before the routine is
// scheduled, decremented when it exits, on success and failure alike.
func WithCounter(c *Counter) Option {
	return func(cfg *config) error { cfg.counter = c; return nil }
}

// WithMetrics records launch metrics through p.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error { cfg.provider = p; return nil }
}

// applyOptions assembles a config from defaults plus opts. Nil options are
// skipped; the first failing option aborts.
func applyOptions(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// resolveLimiter picks the permit source for a launch: an explicit limiter
// wins, then a pooled limiter for a positive max-concurrency, then none.
func (cfg *config) resolveLimiter() Limiter {
	switch {
	case cfg.limiter != nil:
		return cfg.limiter
	case cfg.maxConcurrency > 0:
		n := cfg.maxConcurrency
		return sharedLimiters.getOrCreate(n, func() *limiter {
			l, _ := newLimiter(n) // n validated by WithMaxConcurrency
			return l
		})
	default:
		return nil
	}
}

// instruments bundles the metric instruments touched by a launch.
type instruments struct {
	launched metrics.Counter
	failures metrics.Counter
	active   metrics.UpDownCounter
	duration metrics.Histogram
}

func (cfg *config) instruments() instruments {
	p := cfg.provider
	if p == nil {
		p = metrics.NewNoopProvider()
	}
	return instruments{
		launched: p.Counter("routines_launched_total"),
		failures: p.Counter("routines_failures_total"),
		active:   p.UpDownCounter("routines_active"),
		duration: p.Histogram("routines_duration_seconds", metrics.WithUnit("seconds")),
	}
}

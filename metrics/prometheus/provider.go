// Package prometheus adapts a Prometheus registry to the metrics.Provider
// interface so routine launch metrics can be scraped alongside application
// collectors.
package prometheus

import (
	"errors"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/ygrebnov/routines/metrics"
)

// Options controls collector configuration.
type Options struct {
	// DurationBuckets overrides the histogram buckets; prom.DefBuckets when empty.
	DurationBuckets []float64
}

// Provider implements metrics.Provider on top of Prometheus collectors.
// Instruments are registered once per name and reused afterwards.
type Provider struct {
	namespace string
	reg       prom.Registerer
	buckets   []float64

	mu         sync.Mutex
	counters   map[string]prom.Counter
	gauges     map[string]prom.Gauge
	histograms map[string]prom.Histogram
}

var _ metrics.Provider = (*Provider)(nil)

// NewProvider creates a Provider registering collectors with reg under
// namespace. An empty namespace defaults to "routines"; a nil reg defaults to
// the global prom.DefaultRegisterer.
func NewProvider(namespace string, reg prom.Registerer, opts Options) *Provider {
	if namespace == "" {
		namespace = "routines"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}
	return &Provider{
		namespace:  namespace,
		reg:        reg,
		buckets:    buckets,
		counters:   make(map[string]prom.Counter),
		gauges:     make(map[string]prom.Gauge),
		histograms: make(map[string]prom.Histogram),
	}
}

// Counter returns a monotonic counter registered under name.
func (p *Provider) Counter(name string, opts ...metrics.InstrumentOption) metrics.Counter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.counters[name]; ok {
		return counter{c}
	}
	cfg := applyOptions(opts)
	c := prom.NewCounter(prom.CounterOpts{
		Namespace: p.namespace,
		Name:      name,
		Help:      cfg.Description,
	})
	if existing, ok := register(p.reg, c); ok {
		c = existing.(prom.Counter)
	}
	p.counters[name] = c
	return counter{c}
}

// UpDownCounter returns a gauge registered under name.
func (p *Provider) UpDownCounter(name string, opts ...metrics.InstrumentOption) metrics.UpDownCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.gauges[name]; ok {
		return gauge{g}
	}
	cfg := applyOptions(opts)
	g := prom.NewGauge(prom.GaugeOpts{
		Namespace: p.namespace,
		Name:      name,
		Help:      cfg.Description,
	})
	if existing, ok := register(p.reg, g); ok {
		g = existing.(prom.Gauge)
	}
	p.gauges[name] = g
	return gauge{g}
}

// Histogram returns a histogram registered under name using the configured buckets.
func (p *Provider) Histogram(name string, opts ...metrics.InstrumentOption) metrics.Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.histograms[name]; ok {
		return histogram{h}
	}
	cfg := applyOptions(opts)
	h := prom.NewHistogram(prom.HistogramOpts{
		Namespace: p.namespace,
		Name:      name,
		Help:      cfg.Description,
		Buckets:   p.buckets,
	})
	if existing, ok := register(p.reg, h); ok {
		h = existing.(prom.Histogram)
	}
	p.histograms[name] = h
	return histogram{h}
}

// register attempts to register c, returning the already registered collector
// when one exists under the same descriptor.
func register(reg prom.Registerer, c prom.Collector) (prom.Collector, bool) {
	err := reg.Register(c)
	if err == nil {
		return nil, false
	}
	var are prom.AlreadyRegisteredError
	if errors.As(err, &are) {
		return are.ExistingCollector, true
	}
	// Invalid descriptor; keep the unregistered collector so recording
	// still works even though it will not be scraped.
	return nil, false
}

func applyOptions(opts []metrics.InstrumentOption) metrics.InstrumentConfig {
	var cfg metrics.InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}

type counter struct{ c prom.Counter }

func (w counter) Add(n int64) {
	if n < 0 {
		return
	}
	w.c.Add(float64(n))
}

type gauge struct{ g prom.Gauge }

func (w gauge) Add(n int64) { w.g.Add(float64(n)) }

type histogram struct{ h prom.Histogram }

func (w histogram) Record(v float64) { w.h.Observe(v) }

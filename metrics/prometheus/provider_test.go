package prometheus

import (
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/routines/metrics"
)

func TestProvider_CounterRegistersAndRecords(t *testing.T) {
	reg := prom.NewRegistry()
	p := NewProvider("testns", reg, Options{})

	c := p.Counter("routines_launched_total", metrics.WithDescription("Total launches."))
	c.Add(3)
	c.Add(2)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Equal(t, "testns_routines_launched_total", families[0].GetName())

	// Negative deltas are dropped instead of panicking the recorder.
	c.Add(-1)
	require.Equal(t, float64(5), testutil.ToFloat64(p.counters["routines_launched_total"]))
}

func TestProvider_GaugeMovesBothWays(t *testing.T) {
	reg := prom.NewRegistry()
	p := NewProvider("testns", reg, Options{})

	g := p.UpDownCounter("routines_active")
	g.Add(4)
	g.Add(-3)

	require.Equal(t, float64(1), testutil.ToFloat64(p.gauges["routines_active"]))
}

func TestProvider_HistogramObserves(t *testing.T) {
	reg := prom.NewRegistry()
	p := NewProvider("testns", reg, Options{DurationBuckets: []float64{0.1, 1, 10}})

	h := p.Histogram("routines_duration_seconds")
	h.Record(0.05)
	h.Record(5)

	count := testutil.CollectAndCount(p.histograms["routines_duration_seconds"])
	require.Equal(t, 1, count)
}

func TestProvider_ReusesInstrumentsByName(t *testing.T) {
	reg := prom.NewRegistry()
	p := NewProvider("testns", reg, Options{})

	a := p.Counter("routines_launched_total")
	b := p.Counter("routines_launched_total")
	require.Equal(t, a, b)

	// Only one collector ends up in the registry.
	a.Add(1)
	b.Add(1)
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Equal(t, float64(2), testutil.ToFloat64(p.counters["routines_launched_total"]))
}

func TestProvider_Defaults(t *testing.T) {
	p := NewProvider("", nil, Options{})
	require.Equal(t, "routines", p.namespace)
	require.NotNil(t, p.reg)
	require.Equal(t, prom.DefBuckets, p.buckets)
}

func TestProvider_SharedRegistryAcrossProviders(t *testing.T) {
	reg := prom.NewRegistry()
	p1 := NewProvider("testns", reg, Options{})
	p2 := NewProvider("testns", reg, Options{})

	// The second provider reuses the collector already registered by the first.
	p1.Counter("routines_failures_total").Add(1)
	p2.Counter("routines_failures_total").Add(1)

	require.Equal(t, float64(2), testutil.ToFloat64(p2.counters["routines_failures_total"]))
}

var _ metrics.Provider = (*Provider)(nil)

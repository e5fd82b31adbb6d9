// Package prom adapts a Prometheus registry to the observability
// MetricFactory interface.
package prom

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xraph/paylater/observability"
)

// Factory creates Prometheus-backed counters and histograms. Metric names
// are dot-separated in the engine ("paylater.invoice.opened") and converted
// to the Prometheus convention ("paylater_invoice_opened").
type Factory struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	histograms map[string]prometheus.Histogram
}

var _ observability.MetricFactory = (*Factory)(nil)

// NewFactory creates a Factory registering on reg. A nil reg uses the
// default registerer.
func NewFactory(reg prometheus.Registerer) *Factory {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Factory{
		reg:        reg,
		counters:   make(map[string]prometheus.Counter),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// Counter implements observability.MetricFactory.
func (f *Factory) Counter(name string) observability.Counter {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.counters[name]
	if !ok {
		c = promauto.With(f.reg).NewCounter(prometheus.CounterOpts{
			Name: promName(name) + "_total",
			Help: "PayLater counter " + name,
		})
		f.counters[name] = c
	}
	return counter{c}
}

// Histogram implements observability.MetricFactory.
func (f *Factory) Histogram(name string) observability.Histogram {
	f.mu.Lock()
	defer f.mu.Unlock()

	h, ok := f.histograms[name]
	if !ok {
		h = promauto.With(f.reg).NewHistogram(prometheus.HistogramOpts{
			Name:    promName(name),
			Help:    "PayLater histogram " + name,
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		})
		f.histograms[name] = h
	}
	return histogram{h}
}

type counter struct{ c prometheus.Counter }

func (w counter) Inc()          { w.c.Inc() }
func (w counter) Add(v float64) { w.c.Add(v) }

type histogram struct{ h prometheus.Histogram }

func (w histogram) Observe(v float64) { w.h.Observe(v) }

func promName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

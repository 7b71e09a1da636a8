package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusProvider implements Provider by registering one Prometheus
// collector per distinct instrument name on first use, the same
// register-on-first-call pattern as the registry-backed exporters seen
// elsewhere in this stack, but generalized to Provider's open-ended
// Counter/UpDownCounter/Histogram names instead of a fixed metric set.
type PrometheusProvider struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// NewPrometheusProvider builds a Provider backed by a fresh Prometheus
// registry.
func NewPrometheusProvider() *PrometheusProvider {
	return &PrometheusProvider{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// Handler returns the HTTP handler serving this provider's metrics in
// Prometheus text exposition format.
func (p *PrometheusProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func instrumentConfig(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.counters[name]; ok {
		return prometheusCounter{c}
	}
	cfg := instrumentConfig(opts)
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help(cfg, name)})
	p.registry.MustRegister(c)
	p.counters[name] = c
	return prometheusCounter{c}
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if g, ok := p.gauges[name]; ok {
		return prometheusGauge{g}
	}
	cfg := instrumentConfig(opts)
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help(cfg, name)})
	p.registry.MustRegister(g)
	p.gauges[name] = g
	return prometheusGauge{g}
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.histograms[name]; ok {
		return prometheusHistogram{h}
	}
	cfg := instrumentConfig(opts)
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help(cfg, name)})
	p.registry.MustRegister(h)
	p.histograms[name] = h
	return prometheusHistogram{h}
}

func help(cfg InstrumentConfig, name string) string {
	if cfg.Description != "" {
		return cfg.Description
	}
	return name
}

type prometheusCounter struct{ c prometheus.Counter }

func (p prometheusCounter) Add(n int64) { p.c.Add(float64(n)) }

type prometheusGauge struct{ g prometheus.Gauge }

func (p prometheusGauge) Add(n int64) { p.g.Add(float64(n)) }

type prometheusHistogram struct{ h prometheus.Histogram }

func (p prometheusHistogram) Record(v float64) { p.h.Observe(v) }

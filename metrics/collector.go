// Package metrics provides Prometheus metrics for context scopes and binding resolution.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Label values
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultOK    = "ok"
	ResultError = "error"

	StateActive = "active"
	StateNoOp   = "noop"
)

// Collector records scope and resolution metrics. A nil *Collector is valid
// and records nothing.
type Collector struct {
	scopeCache     *prometheus.CounterVec
	activeContexts prometheus.Gauge
	bindings       *prometheus.GaugeVec
	resolutions    *prometheus.CounterVec
	usageUnknown   prometheus.Gauge
	shutdownErrors prometheus.Counter
}

// NewCollector creates a collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		scopeCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roboguice_scope_cache_total",
				Help: "Context scope cache lookups by result",
			},
			[]string{"result"},
		),
		activeContexts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "roboguice_active_contexts",
				Help: "Number of context handles currently entered",
			},
		),
		bindings: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "roboguice_bindings",
				Help: "Configured bindings by state",
			},
			[]string{"state"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roboguice_resolutions_total",
				Help: "Binding resolutions by result",
			},
			[]string{"result"},
		),
		usageUnknown: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "roboguice_usage_registry_unknown",
				Help: "1 when the usage registry could not be loaded and filtering fell back to allow-all",
			},
		),
		shutdownErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "roboguice_shutdown_failures_total",
				Help: "Context-bound instances whose shutdown failed or panicked",
			},
		),
	}

	for _, m := range []prometheus.Collector{c.scopeCache, c.activeContexts, c.bindings, c.resolutions, c.usageUnknown, c.shutdownErrors} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ScopeHit records a context scope cache hit.
func (c *Collector) ScopeHit() {
	if c == nil {
		return
	}
	c.scopeCache.WithLabelValues(ResultHit).Inc()
}

// ScopeMiss records a context scope cache miss.
func (c *Collector) ScopeMiss() {
	if c == nil {
		return
	}
	c.scopeCache.WithLabelValues(ResultMiss).Inc()
}

// ContextEntered increments the active contexts gauge.
func (c *Collector) ContextEntered() {
	if c == nil {
		return
	}
	c.activeContexts.Inc()
}

// ContextExited decrements the active contexts gauge.
func (c *Collector) ContextExited() {
	if c == nil {
		return
	}
	c.activeContexts.Dec()
}

// SetBindings records the configured binding counts.
func (c *Collector) SetBindings(active, noop int) {
	if c == nil {
		return
	}
	c.bindings.WithLabelValues(StateActive).Set(float64(active))
	c.bindings.WithLabelValues(StateNoOp).Set(float64(noop))
}

// Resolution records one binding resolution.
func (c *Collector) Resolution(err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.resolutions.WithLabelValues(ResultError).Inc()
		return
	}
	c.resolutions.WithLabelValues(ResultOK).Inc()
}

// SetUsageUnknown records whether usage filtering fell back to allow-all.
func (c *Collector) SetUsageUnknown(unknown bool) {
	if c == nil {
		return
	}
	if unknown {
		c.usageUnknown.Set(1)
		return
	}
	c.usageUnknown.Set(0)
}

// ShutdownFailed records a failed instance shutdown.
func (c *Collector) ShutdownFailed() {
	if c == nil {
		return
	}
	c.shutdownErrors.Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"veridian-hq/covenant/pkg/config"
)

// LoaderMetrics tracks module loading and contract validation.
//
// Metrics:
//   - covenant_loader_module_loads_total: Module loads by result
//   - covenant_loader_load_duration_seconds: Load duration
//   - covenant_loader_symbol_verdicts_total: Contract verdicts by status
//   - covenant_loader_test_targets_total: Test-suite targets by result
type LoaderMetrics struct {
	loadsTotal    *prometheus.CounterVec
	loadDuration  *prometheus.HistogramVec
	verdictsTotal *prometheus.CounterVec
	targetsTotal  *prometheus.CounterVec
}

// NewLoaderMetrics creates and registers loader metrics with the registry.
func NewLoaderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LoaderMetrics {
	m := &LoaderMetrics{
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "module_loads_total",
				Help:      "Total number of module loads",
			},
			[]string{"result"},
		),

		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "load_duration_seconds",
				Help:      "Duration of module load and validation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
			[]string{"module"},
		),

		verdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "symbol_verdicts_total",
				Help:      "Total number of per-symbol contract verdicts",
			},
			[]string{"status"},
		),

		targetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "test_targets_total",
				Help:      "Total number of test-suite targets executed",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.loadsTotal,
		m.loadDuration,
		m.verdictsTotal,
		m.targetsTotal,
	)

	return m
}

// RecordLoad records a completed module load.
func (m *LoaderMetrics) RecordLoad(module, result string, duration time.Duration) {
	m.loadsTotal.WithLabelValues(result).Inc()
	m.loadDuration.WithLabelValues(module).Observe(duration.Seconds())
}

// RecordVerdict records one symbol's contract verdict.
func (m *LoaderMetrics) RecordVerdict(status string) {
	m.verdictsTotal.WithLabelValues(status).Inc()
}

// RecordTarget records one test-suite target outcome.
func (m *LoaderMetrics) RecordTarget(passed bool) {
	result := "pass"
	if !passed {
		result = "fail"
	}
	m.targetsTotal.WithLabelValues(result).Inc()
}

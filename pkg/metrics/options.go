package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager. Options given invalid values leave the
// talentmatch defaults in place.
type Option func(*Manager)

// WithNamespace replaces the "talentmatch" namespace that leads every
// ranking, repository and HTTP series name.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace = strings.TrimSpace(namespace); namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem replaces the "ranking" subsystem segment.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem = strings.TrimSpace(subsystem); subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets the millisecond buckets shared by the request,
// stage, repository and HTTP latency histograms. Buckets must be strictly
// increasing; anything else is ignored rather than panicking at
// registration. GC pause buckets are fixed.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) == 0 {
			return
		}
		for i := 1; i < len(buckets); i++ {
			if buckets[i] <= buckets[i-1] {
				return
			}
		}
		m.histogramBuckets = append([]float64(nil), buckets...)
	}
}

// WithMetricsEnabled(false) keeps every recorder callable but registers the
// collectors on a private registry, so /metrics shows nothing from it.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets how often the system gauges (memory, goroutines,
// GC pauses) should be sampled by the caller.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithCustomLabels attaches constant labels such as env or region to every
// series. The map is copied and entries with an empty name are dropped.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if labels == nil {
			return
		}
		cp := make(map[string]string, len(labels))
		for k, v := range labels {
			if k != "" {
				cp[k] = v
			}
		}
		m.customLabels = cp
	}
}

// WithMetricPrefix prefixes each metric name after the subsystem, e.g.
// "canary" yields talentmatch_ranking_canary_requests_total. A missing
// trailing underscore is added.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix == "" {
			return
		}
		if !strings.HasSuffix(prefix, "_") {
			prefix += "_"
		}
		m.metricPrefix = prefix
	}
}

// WithPrometheusRegistry registers collectors on registry instead of the
// default registerer. The process-wide manager uses the registry that
// GetRegistry returns.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

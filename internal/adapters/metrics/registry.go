// Package metrics exposes Prometheus instrumentation for the engine:
// command dispatch timings and per-pass generation outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "warroom"
	subsystem = "engine"
)

// Registry is the global Prometheus registry. Nil until InitRegistry is
// called, which is how metrics stay disabled by default.
var Registry *prometheus.Registry

// InitRegistry initializes the Prometheus registry. Call once at startup
// when metrics are enabled.
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// IsEnabled reports whether metrics collection is enabled.
func IsEnabled() bool {
	return Registry != nil
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CommandMetricsCollector records command and query execution through
// the mediator.
type CommandMetricsCollector struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a command metrics collector.
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Command execution duration distribution",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
			[]string{"command", "status"},
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Total number of commands executed by type and status",
			},
			[]string{"command", "status"},
		),
	}
}

// Register registers the collectors with the global registry. A nil
// registry means metrics are disabled and registration is a no-op.
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, collector := range []prometheus.Collector{c.commandDuration, c.commandsTotal} {
		if err := Registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommandExecution records one mediator dispatch.
func (c *CommandMetricsCollector) RecordCommandExecution(command string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	c.commandDuration.WithLabelValues(command, status).Observe(duration)
	c.commandsTotal.WithLabelValues(command, status).Inc()
}

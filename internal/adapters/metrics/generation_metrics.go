package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/castlebay/warroom-go/internal/application/warplan"
)

// GenerationMetricsCollector records the outcome of assignment
// generation passes.
type GenerationMetricsCollector struct {
	generationsTotal *prometheus.CounterVec
	targetsScored    prometheus.Counter
	assignments      *prometheus.CounterVec
	squadsBuilt      prometheus.Counter
}

// NewGenerationMetricsCollector creates a generation metrics collector.
func NewGenerationMetricsCollector() *GenerationMetricsCollector {
	return &GenerationMetricsCollector{
		generationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "generations_total",
				Help:      "Total number of generation passes by status",
			},
			[]string{"status"},
		),
		targetsScored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "targets_scored_total",
				Help:      "Total number of targets priority-scored across passes",
			},
		),
		assignments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "assignments_total",
				Help:      "Assignment rows touched per pass by outcome",
			},
			[]string{"outcome"},
		),
		squadsBuilt: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "squads_built_total",
				Help:      "Total number of squads built across passes",
			},
		),
	}
}

// Register registers the collectors with the global registry. A nil
// registry means metrics are disabled and registration is a no-op.
func (c *GenerationMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	collectors := []prometheus.Collector{
		c.generationsTotal,
		c.targetsScored,
		c.assignments,
		c.squadsBuilt,
	}
	for _, collector := range collectors {
		if err := Registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RecordGeneration records one completed generation pass. A nil result
// with a non-nil error records a failed pass.
func (c *GenerationMetricsCollector) RecordGeneration(result *warplan.GenerationResult, err error) {
	if err != nil {
		c.generationsTotal.WithLabelValues("failure").Inc()
		return
	}
	c.generationsTotal.WithLabelValues("success").Inc()
	if result == nil {
		return
	}
	c.targetsScored.Add(float64(result.TargetsScored))
	c.assignments.WithLabelValues("proposed").Add(float64(result.AssignmentsProposed))
	c.assignments.WithLabelValues("preserved").Add(float64(result.AssignmentsPreserved))
	c.assignments.WithLabelValues("removed").Add(float64(result.AssignmentsRemoved))
	c.squadsBuilt.Add(float64(result.SquadsBuilt))
}

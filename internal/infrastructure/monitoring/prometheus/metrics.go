// Package prometheus exposes the pipeline's training and evaluation metrics
// through a private Prometheus registry.  One PipelineMetrics instance is
// shared across all runs of a pipeline invocation.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics records run, epoch, and evaluation observations.  The nil
// receiver is a valid no-op, so callers need not branch on metrics being
// disabled.
type PipelineMetrics struct {
	registry *prometheus.Registry

	runsTotal    *prometheus.CounterVec
	epochsTotal  *prometheus.CounterVec
	batchesTotal *prometheus.CounterVec
	epochLoss    *prometheus.GaugeVec
	evalStat     *prometheus.GaugeVec
	runDuration  *prometheus.HistogramVec
}

// NewPipelineMetrics builds the metric set under the given namespace on a
// fresh registry.
func NewPipelineMetrics(namespace string) *PipelineMetrics {
	m := &PipelineMetrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed training runs by dataset, policy, and outcome.",
		}, []string{"dataset", "policy", "outcome"}),
		epochsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "epochs_total",
			Help:      "Training epochs completed by dataset and policy.",
		}, []string{"dataset", "policy"}),
		batchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Training batches processed by dataset and policy.",
		}, []string{"dataset", "policy"}),
		epochLoss: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "epoch_loss",
			Help:      "Mean squared error of the most recent epoch.",
		}, []string{"dataset", "policy"}),
		evalStat: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "evaluation_statistic",
			Help:      "Held-out evaluation statistics of the most recent run.",
		}, []string{"dataset", "policy", "statistic"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of one (dataset, policy) run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"dataset", "policy"}),
	}

	m.registry.MustRegister(
		m.runsTotal,
		m.epochsTotal,
		m.batchesTotal,
		m.epochLoss,
		m.evalStat,
		m.runDuration,
	)
	return m
}

// Handler returns an HTTP handler serving the exposition format for this
// registry only.
func (m *PipelineMetrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEpoch records one completed epoch.
func (m *PipelineMetrics) ObserveEpoch(dataset, policy string, loss float64, batches int) {
	if m == nil {
		return
	}
	m.epochsTotal.WithLabelValues(dataset, policy).Inc()
	m.batchesTotal.WithLabelValues(dataset, policy).Add(float64(batches))
	m.epochLoss.WithLabelValues(dataset, policy).Set(loss)
}

// ObserveRun records the outcome and duration of one run.
func (m *PipelineMetrics) ObserveRun(dataset, policy string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.runsTotal.WithLabelValues(dataset, policy, outcome).Inc()
	m.runDuration.WithLabelValues(dataset, policy).Observe(elapsed.Seconds())
}

// ObserveEvaluation records one named evaluation statistic.
func (m *PipelineMetrics) ObserveEvaluation(dataset, policy, statistic string, value float64) {
	if m == nil {
		return
	}
	m.evalStat.WithLabelValues(dataset, policy, statistic).Set(value)
}

// Registry exposes the underlying registry for scrape wiring and tests.
func (m *PipelineMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

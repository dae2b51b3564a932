// Package metrics exposes Prometheus collectors for summarization runs and
// model calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsum"

// Metrics holds every collector on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal          *prometheus.CounterVec
	runDuration        *prometheus.HistogramVec
	runsActive         prometheus.Gauge
	pagesTotal         *prometheus.CounterVec
	chunksTotal        prometheus.Counter
	generationFailures prometheus.Counter
	llmCallDuration    *prometheus.HistogramVec
	llmCallsTotal      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Summarization runs by format and final status",
		}, []string{"format", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of summarization runs",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"format"}),
		runsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_active",
			Help:      "Runs currently being processed",
		}),
		pagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages seen by the accumulator, by decision",
		}, []string{"decision"}), // keep, skip_empty, skip_low_value
		chunksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Chunks flushed for summarization",
		}),
		generationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_generation_failures_total",
			Help:      "Chunks whose summary was replaced by the failure sentinel",
		}),
		llmCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "Duration of model API calls",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"op", "model"}),
		llmCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "Model API calls by outcome",
		}, []string{"op", "model", "status"}), // status: success, error
	}

	m.registry.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.runsActive,
		m.pagesTotal,
		m.chunksTotal,
		m.generationFailures,
		m.llmCallDuration,
		m.llmCallsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveLLMCall implements llm.Observer.
func (m *Metrics) ObserveLLMCall(op, model string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.llmCallDuration.WithLabelValues(op, model).Observe(d.Seconds())
	m.llmCallsTotal.WithLabelValues(op, model, status).Inc()
}

// RunStarted marks a run as in progress.
func (m *Metrics) RunStarted() { m.runsActive.Inc() }

// RunFinished records the outcome of a run started with RunStarted.
func (m *Metrics) RunFinished(format, status string, d time.Duration) {
	m.runsActive.Dec()
	m.runsTotal.WithLabelValues(format, status).Inc()
	m.runDuration.WithLabelValues(format).Observe(d.Seconds())
}

// ObservePages adds page decision counts from one run.
func (m *Metrics) ObservePages(kept, skippedEmpty, skippedLowValue int) {
	m.pagesTotal.WithLabelValues("keep").Add(float64(kept))
	m.pagesTotal.WithLabelValues("skip_empty").Add(float64(skippedEmpty))
	m.pagesTotal.WithLabelValues("skip_low_value").Add(float64(skippedLowValue))
}

// ObserveChunk counts one summarized chunk.
func (m *Metrics) ObserveChunk(failed bool) {
	m.chunksTotal.Inc()
	if failed {
		m.generationFailures.Inc()
	}
}

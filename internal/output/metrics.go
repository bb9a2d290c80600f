/*
PURPOSE:
  Prometheus counters and gauges for one run, exported as a node_exporter
  textfile when metrics_file is set.

REQUIREMENTS:
  Implementation-discovered:
  - A private registry keeps Go runtime collectors out of the file.
  - Every series carries the model and backend as constant labels.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Observe per row, WriteTextfile at the end)

ERROR HANDLING:
  - WriteTextfile returns the registry or filesystem error.

USAGE:
  m := output.NewMetrics(cfg.Model, cfg.Backend)
  m.Observe(row, invocationFailed)
  m.WriteTextfile("result/npu_bench.prom")
*/

package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/daryltucker/npu-bench/internal/model"
)

// Metrics counts what happened during a run and exports it in the
// Prometheus textfile format (node_exporter textfile collector).
type Metrics struct {
	registry *prometheus.Registry

	Questions          prometheus.Counter
	ExtractionFailures prometheus.Counter
	InvocationFailures prometheus.Counter
	LastPrefillMS      prometheus.Gauge
	LastDecodeMS       prometheus.Gauge
}

// NewMetrics creates the run metrics labelled with the model and backend.
func NewMetrics(modelName, backend string) *Metrics {
	labels := prometheus.Labels{"model": modelName, "backend": backend}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Questions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "npu_bench_questions_total",
			Help:        "Questions sent to the on-device runner",
			ConstLabels: labels,
		}),
		ExtractionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "npu_bench_extraction_failures_total",
			Help:        "Questions whose prefill or decode duration could not be extracted",
			ConstLabels: labels,
		}),
		InvocationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "npu_bench_invocation_failures_total",
			Help:        "Runner or bridge invocations that failed to start, exited non-zero or timed out",
			ConstLabels: labels,
		}),
		LastPrefillMS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "npu_bench_last_prefill_ms",
			Help:        "Prefill duration of the most recent successfully parsed question",
			ConstLabels: labels,
		}),
		LastDecodeMS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "npu_bench_last_decode_ms",
			Help:        "Decode duration of the most recent successfully parsed question",
			ConstLabels: labels,
		}),
	}
	m.registry.MustRegister(m.Questions, m.ExtractionFailures, m.InvocationFailures, m.LastPrefillMS, m.LastDecodeMS)
	return m
}

// Observe records one processed question.
func (m *Metrics) Observe(r model.Row, invocationFailed bool) {
	m.Questions.Inc()
	if invocationFailed {
		m.InvocationFailures.Inc()
	}
	if !r.Complete() {
		m.ExtractionFailures.Inc()
	}
	if r.PrefillMS.OK {
		m.LastPrefillMS.Set(r.PrefillMS.Num)
	}
	if r.DecodeMS.OK {
		m.LastDecodeMS.Set(r.DecodeMS.Num)
	}
}

// WriteTextfile atomically writes all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

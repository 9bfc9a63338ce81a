package prometheus

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slok/csflow/internal/metrics"
)

const namespace = "csflow"

// Recorder is a Prometheus metrics.Recorder.
type Recorder struct {
	registry *prometheus.Registry

	apiRequestDuration *prometheus.HistogramVec
	pollCycles         *prometheus.CounterVec
	forceApplyRetries  prometheus.Counter
	runDuration        *prometheus.HistogramVec
}

var _ metrics.Recorder = &Recorder{}

// NewRecorder returns a new Prometheus recorder registered on its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		apiRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "The duration of the remote API requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "code", "success"},
		),
		pollCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "changeset",
				Name:      "poll_cycles_total",
				Help:      "Total number of change set poll cycles by reported status and outcome.",
			},
			[]string{"status", "outcome"},
		),
		forceApplyRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "changeset",
				Name:      "force_apply_retries_total",
				Help:      "Total number of force apply retries due to dependent values not settled.",
			},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "workflow",
				Name:      "run_duration_seconds",
				Help:      "The duration of the workflow runs.",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600},
			},
			[]string{"apply_mode", "success"},
		),
	}

	r.registry.MustRegister(
		r.apiRequestDuration,
		r.pollCycles,
		r.forceApplyRetries,
		r.runDuration,
	)

	return r
}

// Registry returns the registry where the metrics are registered.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteToTextfile writes the metrics in the Prometheus text format into a file (node exporter textfile collector).
func (r *Recorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("could not write metrics textfile: %w", err)
	}
	return nil
}

func (r *Recorder) ObserveAPIRequest(_ context.Context, method string, statusCode int, success bool, duration time.Duration) {
	r.apiRequestDuration.WithLabelValues(method, strconv.Itoa(statusCode), strconv.FormatBool(success)).Observe(duration.Seconds())
}

func (r *Recorder) IncPollCycle(_ context.Context, status string, outcome string) {
	r.pollCycles.WithLabelValues(status, outcome).Inc()
}

func (r *Recorder) IncForceApplyRetry(_ context.Context) {
	r.forceApplyRetries.Inc()
}

func (r *Recorder) ObserveWorkflowRun(_ context.Context, applyMode string, success bool, duration time.Duration) {
	r.runDuration.WithLabelValues(applyMode, strconv.FormatBool(success)).Observe(duration.Seconds())
}

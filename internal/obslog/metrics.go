package obslog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics the engine's control plane exposes.
type Metrics struct {
	// Run metrics: one run is one attach-compute-detach cycle.
	RunsTotal    *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
	RunErrors    *prometheus.CounterVec

	// Kernel metrics, labeled by metric/dimensions.
	KernelDuration *prometheus.HistogramVec
	DatapointsSeen *prometheus.GaugeVec

	// Worker pool metrics.
	WorkersActive prometheus.Gauge
	RowsProcessed prometheus.Counter

	// Shared memory metrics.
	ShmAttachDuration prometheus.Histogram
	ShmBytesMapped    prometheus.Gauge

	// Control plane request metrics.
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// System metrics.
	GoroutinesCount prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_runs_total",
				Help: "Total number of attach-compute-detach runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "engine_run_duration_seconds",
				Help:    "Total run duration in seconds, attach to detach",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"metric", "dimensions"},
		),
		RunErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_run_errors_total",
				Help: "Total number of run failures by kind",
			},
			[]string{"kind"},
		),

		KernelDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "engine_kernel_duration_seconds",
				Help:    "Kernel computation duration in seconds, by metric and dimensions",
				Buckets: []float64{.001, .01, .1, .5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"metric", "dimensions"},
		),
		DatapointsSeen: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "engine_datapoints",
				Help: "Datapoint count of the most recent run, by metric and dimensions",
			},
			[]string{"metric", "dimensions"},
		),

		WorkersActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "engine_workers_active",
				Help: "Worker goroutines in the current fork-join pool",
			},
		),
		RowsProcessed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "engine_rows_processed_total",
				Help: "Total number of neighbor rows computed",
			},
		),

		ShmAttachDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "engine_shm_attach_duration_seconds",
				Help:    "Time spent attaching the shared memory segment",
				Buckets: []float64{.0001, .001, .01, .1, 1},
			},
		),
		ShmBytesMapped: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "engine_shm_bytes_mapped",
				Help: "Size in bytes of the currently mapped shared segment",
			},
		),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_control_plane_requests_total",
				Help: "Total control plane HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "engine_control_plane_request_duration_seconds",
				Help:    "Control plane HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method"},
		),

		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "engine_goroutines",
				Help: "Current number of goroutines",
			},
		),
	}
}

// RecordRun records the outcome and duration of one attach-compute-detach
// cycle.
func (m *Metrics) RecordRun(metric, dimensions, outcome string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.WithLabelValues(metric, dimensions).Observe(duration.Seconds())
}

// RecordRunError records a fatal error kind that aborted a run.
func (m *Metrics) RecordRunError(kind string) {
	m.RunErrors.WithLabelValues(kind).Inc()
}

// RecordKernel records a kernel's computation duration and the dataset size
// it ran over.
func (m *Metrics) RecordKernel(metric, dimensions string, duration time.Duration, datapoints int) {
	m.KernelDuration.WithLabelValues(metric, dimensions).Observe(duration.Seconds())
	m.DatapointsSeen.WithLabelValues(metric, dimensions).Set(float64(datapoints))
}

// RecordRowsProcessed adds n to the rows-processed counter.
func (m *Metrics) RecordRowsProcessed(n int) {
	m.RowsProcessed.Add(float64(n))
}

// SetWorkersActive reports the current fork-join pool's worker count.
func (m *Metrics) SetWorkersActive(n int) {
	m.WorkersActive.Set(float64(n))
}

// RecordShmAttach records the time taken to attach a segment and its size.
func (m *Metrics) RecordShmAttach(duration time.Duration, bytes int) {
	m.ShmAttachDuration.Observe(duration.Seconds())
	m.ShmBytesMapped.Set(float64(bytes))
}

// RecordRequest records a control plane HTTP request.
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// UpdateGoroutineCount updates goroutine count.
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

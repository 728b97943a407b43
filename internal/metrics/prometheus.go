package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector adapts a Recorder's counters into a
// prometheus.Collector, the way GoogleCloudPlatform-gcsfuse exposes its
// GCS request/byte counters: package-level Desc values built once,
// populated from the live Recorder on every Collect call rather than
// mirrored into separate prometheus.Counter instances, so a caller can
// register this collector once and never has to keep the two in sync by
// hand.
type PrometheusCollector struct {
	recorder *Recorder
	gauges   func() (active, queueDepth, workers int)

	completedDesc *prometheus.Desc
	failedDesc    *prometheus.Desc
	restartsDesc  *prometheus.Desc
	execTimeDesc  *prometheus.Desc
	activeDesc    *prometheus.Desc
	queueDesc     *prometheus.Desc
	workersDesc   *prometheus.Desc
}

// NewPrometheusCollector wraps recorder for Prometheus scraping. gauges
// supplies the live values (active jobs, queue depth, worker count) the
// Recorder itself does not own; the pool passes a closure over its own
// state. The returned collector should be registered once with a
// prometheus.Registry (or the default one via prometheus.MustRegister).
func NewPrometheusCollector(recorder *Recorder, gauges func() (active, queueDepth, workers int)) *PrometheusCollector {
	return &PrometheusCollector{
		recorder: recorder,
		gauges:   gauges,
		completedDesc: prometheus.NewDesc(
			"taskpool_completed_jobs_total", "Number of jobs that completed successfully.", nil, nil),
		failedDesc: prometheus.NewDesc(
			"taskpool_failed_jobs_total", "Number of jobs that failed (timeout, cancellation, crash, or user error).", nil, nil),
		restartsDesc: prometheus.NewDesc(
			"taskpool_worker_restarts_total", "Number of times a worker has been terminated and replaced.", nil, nil),
		execTimeDesc: prometheus.NewDesc(
			"taskpool_execution_seconds_total", "Total wall-clock time spent executing completed jobs.", nil, nil),
		activeDesc: prometheus.NewDesc(
			"taskpool_active_jobs", "Number of jobs currently bound to a worker.", nil, nil),
		queueDesc: prometheus.NewDesc(
			"taskpool_queue_depth", "Number of jobs currently queued.", nil, nil),
		workersDesc: prometheus.NewDesc(
			"taskpool_worker_count", "Current number of worker handles.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.completedDesc
	ch <- c.failedDesc
	ch <- c.restartsDesc
	ch <- c.execTimeDesc
	ch <- c.activeDesc
	ch <- c.queueDesc
	ch <- c.workersDesc
}

// Collect implements prometheus.Collector, reading a fresh snapshot of
// the underlying Recorder's counters on every scrape.
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	active, queueDepth, workers := c.gauges()
	snap := c.recorder.Snapshot(active, queueDepth, workers)

	ch <- prometheus.MustNewConstMetric(c.completedDesc, prometheus.CounterValue, float64(snap.CompletedJobs))
	ch <- prometheus.MustNewConstMetric(c.failedDesc, prometheus.CounterValue, float64(snap.FailedJobs))
	ch <- prometheus.MustNewConstMetric(c.restartsDesc, prometheus.CounterValue, float64(snap.WorkerRestarts))
	ch <- prometheus.MustNewConstMetric(c.execTimeDesc, prometheus.CounterValue, snap.TotalExecutionTime.Seconds())
	ch <- prometheus.MustNewConstMetric(c.activeDesc, prometheus.GaugeValue, float64(snap.ActiveJobs))
	ch <- prometheus.MustNewConstMetric(c.queueDesc, prometheus.GaugeValue, float64(snap.QueueDepth))
	ch <- prometheus.MustNewConstMetric(c.workersDesc, prometheus.GaugeValue, float64(snap.WorkerCount))
}

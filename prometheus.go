package taskpool

import (
	"github.com/osmike/taskpool/internal/metrics"
	promclient "github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector returns a prometheus.Collector reporting this pool's
// counters and gauges, ready to hand to a Registry's MustRegister.
func (p *Pool) PrometheusCollector() promclient.Collector {
	return metrics.NewPrometheusCollector(p.inner.Recorder(), p.inner.Gauges)
}

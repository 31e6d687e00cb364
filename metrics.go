package adwin

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments an AdaptiveMean with Prometheus counters and
// gauges, registered once and updated inline on every Fit. Each instance
// is labeled by a caller-supplied stream key; an AdaptiveMean reports to
// the Metrics in its Config, and streams created by internal/adwinmgr
// all share the Metrics of the Manager's Config.
type Metrics struct {
	fitTotal   prometheus.Counter
	driftTotal prometheus.Counter
	meanGauge  prometheus.Gauge
	nobsGauge  prometheus.Gauge
}

// NewMetrics creates and registers the four collectors for one stream
// key against the given registerer (pass prometheus.DefaultRegisterer
// for an init()-time MustRegister, or a prometheus.NewRegistry() in
// tests to avoid global collisions).
func NewMetrics(reg prometheus.Registerer, streamKey string) *Metrics {
	labels := prometheus.Labels{"stream": streamKey}
	m := &Metrics{
		fitTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "adwin_fit_total",
			Help:        "Total number of samples ingested.",
			ConstLabels: labels,
		}),
		driftTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "adwin_drift_total",
			Help:        "Total number of drift events that pruned the window.",
			ConstLabels: labels,
		}),
		meanGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "adwin_mean",
			Help:        "Current windowed mean estimate.",
			ConstLabels: labels,
		}),
		nobsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "adwin_nobs",
			Help:        "Current number of live samples in the window.",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(m.fitTotal, m.driftTotal, m.meanGauge, m.nobsGauge)
	return m
}

func (m *Metrics) observeFit(nobs float64, mean float64) {
	if m == nil {
		return
	}
	m.fitTotal.Inc()
	m.nobsGauge.Set(nobs)
	m.meanGauge.Set(mean)
}

func (m *Metrics) observeDrift() {
	if m == nil {
		return
	}
	m.driftTotal.Inc()
}

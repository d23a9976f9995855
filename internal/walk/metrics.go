package walk

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts walk results in a private registry. There is no scrape
// endpoint; the counters are written out as a node_exporter textfile.
type Metrics struct {
	registry *prometheus.Registry

	Files   *prometheus.CounterVec
	Failed  prometheus.Counter
	LastRun prometheus.Gauge
}

// NewMetrics returns counters labelled with the running command.
func NewMetrics(command string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.Files = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "media_dater_files_total",
			Help:        "Files visited, by result",
			ConstLabels: prometheus.Labels{"command": command},
		},
		[]string{"result"},
	)
	m.Failed = m.Files.WithLabelValues("failed")

	m.LastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "media_dater_last_run_timestamp_seconds",
			Help:        "Unix time the last walk finished",
			ConstLabels: prometheus.Labels{"command": command},
		},
	)

	m.registry.MustRegister(m.Files, m.LastRun)
	return m
}

func (m *Metrics) observe(s Status) {
	switch s {
	case Updated:
		m.Files.WithLabelValues("updated").Inc()
	case Unchanged:
		m.Files.WithLabelValues("unchanged").Inc()
	case Ignored:
		m.Files.WithLabelValues("ignored").Inc()
	case Skipped:
		m.Files.WithLabelValues("skipped").Inc()
	}
}

// WriteTextfile stamps the finish time and writes every metric to path in
// the Prometheus text format.
func (m *Metrics) WriteTextfile(path string, now time.Time) error {
	m.LastRun.Set(float64(now.Unix()))
	return prometheus.WriteToTextfile(path, m.registry)
}

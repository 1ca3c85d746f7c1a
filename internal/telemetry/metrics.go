package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rejar"

// Metrics are the run counters of the rewrite engine. A build step is
// short lived, so they are usually exported with WriteTextfile rather
// than scraped.
type Metrics struct {
	Registry *prometheus.Registry

	Entries   *prometheus.CounterVec // by disposition: copied|transformed
	Rewritten prometheus.Counter
	BytesIn   prometheus.Counter
	BytesOut  prometheus.Counter
	Runs      *prometheus.CounterVec // by result: success|failure
	Duration  prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Archive entries written to the destination.",
		}, []string{"disposition"}),
		Rewritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_rewritten_total",
			Help:      "Compiled units whose bytes were changed by the chain.",
		}),
		BytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payload_bytes_read_total",
			Help:      "Uncompressed payload bytes read from source archives.",
		}),
		BytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payload_bytes_written_total",
			Help:      "Uncompressed payload bytes written to the destination.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed engine runs.",
		}, []string{"result"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of engine runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	m.Registry.MustRegister(m.Entries, m.Rewritten, m.BytesIn, m.BytesOut, m.Runs, m.Duration)
	return m
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

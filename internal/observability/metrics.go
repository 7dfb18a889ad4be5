package observability

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for a tool run. Runs are short
// batch jobs, so metrics are exported by writing a textfile snapshot rather
// than serving a scrape endpoint.
type Metrics struct {
	StationsLoaded   prometheus.Counter
	StationsSelected prometheus.Gauge
	RunErrors        *prometheus.CounterVec // labels: stage={load,select,write_stations,configure,write_config}
	StageDuration    *prometheus.HistogramVec
	VolumeSpan       *prometheus.GaugeVec // labels: axis={east,north,depth}

	// Utility metrics.
	WaveformFilesCopied prometheus.Counter
	XMLStationsKept     prometheus.Gauge
	ConfigsPublished    prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates all collectors and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.StationsLoaded,
		m.StationsSelected,
		m.RunErrors,
		m.StageDuration,
		m.VolumeSpan,
		m.WaveformFilesCopied,
		m.XMLStationsKept,
		m.ConfigsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// WriteTextfile writes the registered metrics to path in the Prometheus text
// format, for pickup by the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m.registry == nil {
		return errors.New("write metrics textfile: metrics are not registered")
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func newMetrics() *Metrics {
	return &Metrics{
		StationsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netprep",
			Name:      "stations_loaded_total",
			Help:      "Stations read from the input table.",
		}),
		StationsSelected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netprep",
			Name:      "stations_selected",
			Help:      "Stations in the selected subset of the last run.",
		}),
		RunErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netprep",
			Name:      "run_errors_total",
			Help:      "Run failures by pipeline stage.",
		}, []string{"stage"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "netprep",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage"}),
		VolumeSpan: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "netprep",
			Name:      "volume_span_meters",
			Help:      "Span of the derived search volume per axis.",
		}, []string{"axis"}),
		WaveformFilesCopied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netprep",
			Name:      "waveform_files_copied_total",
			Help:      "Waveform files copied for selected stations.",
		}),
		XMLStationsKept: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netprep",
			Name:      "stationxml_stations_kept",
			Help:      "Stations kept in the filtered StationXML inventory.",
		}),
		ConfigsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netprep",
			Name:      "volume_configs_published_total",
			Help:      "Search volume records written to output sinks.",
		}),
	}
}

// Flush writes the textfile snapshot when path is set. Failures are logged,
// not returned.
func (m *Metrics) Flush(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		logger.Error("metrics snapshot failed", "path", path, "error", err)
		return
	}
	logger.Debug("metrics snapshot written", "path", path)
}

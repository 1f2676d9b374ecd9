package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bikeshare-analyzer/internal/logging"
)

type Collector struct {
	reg *prometheus.Registry

	FilesLoaded  prometheus.Counter
	RowsAccepted prometheus.Counter
	RowsSkipped  *prometheus.CounterVec // reason label: too_few_fields|bad_timestamp|other

	Stations prometheus.Gauge
	Seasons  prometheus.Gauge

	FileLoadDuration prometheus.Histogram
	ReportDuration   prometheus.Histogram

	ReportsPublished  prometheus.Counter
	ReportPublishErrs prometheus.Counter
	NATSConnected     prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		FilesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_files_loaded_total",
			Help: "Total CSV files loaded.",
		}),
		RowsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_rows_accepted_total",
			Help: "Total rows parsed into rides.",
		}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_rows_skipped_total",
			Help: "Total rows dropped, by reason.",
		}, []string{"reason"}),
		Stations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analyzer_stations",
			Help: "Number of distinct stations seen in the run.",
		}),
		Seasons: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analyzer_seasons",
			Help: "Number of season buckets with at least one ride.",
		}),
		FileLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyzer_file_load_duration_seconds",
			Help:    "Duration to read and fold one CSV file.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		ReportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyzer_report_duration_seconds",
			Help:    "Duration to build all reports from the aggregated data.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_reports_published_total",
			Help: "Total report messages published to NATS.",
		}),
		ReportPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_report_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analyzer_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		c.FilesLoaded, c.RowsAccepted, c.RowsSkipped,
		c.Stations, c.Seasons,
		c.FileLoadDuration, c.ReportDuration,
		c.ReportsPublished, c.ReportPublishErrs, c.NATSConnected,
	)
	return c
}

// RowAccepted, RowSkipped and FileLoaded satisfy ingest.Metrics.
func (c *Collector) RowAccepted()             { c.RowsAccepted.Inc() }
func (c *Collector) RowSkipped(reason string) { c.RowsSkipped.WithLabelValues(reason).Inc() }
func (c *Collector) FileLoaded(d time.Duration) {
	c.FilesLoaded.Inc()
	c.FileLoadDuration.Observe(d.Seconds())
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("metrics server error")
		}
	}()
	logging.Info().Str("addr", addr).Msg("metrics listening")
	return srv
}

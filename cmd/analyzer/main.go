package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"bikeshare-analyzer/internal/aggregate"
	"bikeshare-analyzer/internal/config"
	"bikeshare-analyzer/internal/console"
	"bikeshare-analyzer/internal/ingest"
	"bikeshare-analyzer/internal/logging"
	"bikeshare-analyzer/internal/metrics"
	"bikeshare-analyzer/internal/publisher"
	"bikeshare-analyzer/internal/report"
)

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("config error")
	}
	flag.StringVar(&cfg.DataDir, "dir", cfg.DataDir, "Directory scanned recursively for ride CSV files")
	flag.Parse()

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	runID := uuid.NewString()
	logging.With("run_id", runID)

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Metrics setup
	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector()
		srv := mcol.Serve(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	summary, err := analyze(ctx, cfg.DataDir, mcol)
	if errors.Is(err, ingest.ErrNoFiles) {
		logging.Warn().Str("dir", cfg.DataDir).Msg("no csv files found")
		return
	}
	if err != nil {
		logging.Fatal().Err(err).Msg("analysis failed")
	}

	if err := console.Print(os.Stdout, summary); err != nil {
		logging.Error().Err(err).Msg("print reports")
	}

	if cfg.NATSURL != "" {
		if err := publish(cfg, runID, summary, mcol); err != nil {
			logging.Fatal().Err(err).Msg("publish reports")
		}
	}

	if mcol != nil && cfg.MetricsHold {
		logging.Info().Msg("holding metrics endpoint until interrupted")
		<-ctx.Done()
	}
	logging.Info().Msg("done")
}

// analyze loads every CSV under dir in one pass and builds the reports.
func analyze(ctx context.Context, dir string, mcol *metrics.Collector) (*report.Summary, error) {
	agg := aggregate.New()
	loader := ingest.NewLoader(agg, wrapIngestMetrics(mcol))

	stats, err := loader.LoadDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	logging.Info().
		Int("files", stats.Files).
		Int("rows", stats.Rows).
		Int("rides", agg.Len()).
		Int("skipped", agg.Skipped()).
		Interface("skipped_by_reason", agg.SkippedByReason()).
		Msg("ingest complete")

	start := time.Now()
	ds := agg.Snapshot()
	summary := report.Build(ds)
	if mcol != nil {
		mcol.ReportDuration.Observe(time.Since(start).Seconds())
		mcol.Stations.Set(float64(len(ds.Stations)))
		mcol.Seasons.Set(float64(len(summary.Seasonal)))
	}
	logging.Info().Int("stations", summary.Stations).Msg("reports built")
	return summary, nil
}

func publish(cfg *config.Config, runID string, s *report.Summary, mcol *metrics.Collector) error {
	pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
	if err != nil {
		return err
	}
	defer pub.Close()
	if err := pub.PublishSummary(runID, s); err != nil {
		return err
	}
	logging.Info().Str("subject", cfg.NATSSubject).Msg("reports published")
	return nil
}

// wrapIngestMetrics avoids handing the loader a typed nil.
func wrapIngestMetrics(c *metrics.Collector) ingest.Metrics {
	if c == nil {
		return nil
	}
	return c
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) PublishedInc()  { p.c.ReportsPublished.Inc() }
func (p *pubMetrics) PublishErrInc() { p.c.ReportPublishErrs.Inc() }
func (p *pubMetrics) SetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"bikeshare-analyzer/internal/logging"
)

type Config struct {
	DataDir         string
	LogLevel        string
	LogFormat       string
	MetricsAddr     string
	MetricsHold     bool
	NATSURL         string
	NATSSubject     string
	LogNATSSubjects bool
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	// Directory scanned recursively for *.csv; DATA_DIR wins over BIKE_DATA_DIR
	cfg.DataDir = firstNonEmpty(os.Getenv("DATA_DIR"), os.Getenv("BIKE_DATA_DIR"), ".")

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "json"))
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q", cfg.LogFormat)
	}

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	hold, err := envBool("METRICS_HOLD")
	if err != nil {
		return nil, err
	}
	cfg.MetricsHold = hold

	// NATS server URL. Empty disables report publishing.
	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.NATSSubject = getenvDefault("NATS_SUBJECT", "bikeshare.reports")

	logSubjects, err := envBool("LOG_NATS_SUBJECTS")
	if err != nil {
		return nil, err
	}
	cfg.LogNATSSubjects = logSubjects

	return cfg, nil
}

func envBool(k string) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s: %q", k, v)
	}
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

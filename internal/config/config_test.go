package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configVars = []string{
	"DATA_DIR", "BIKE_DATA_DIR", "LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR",
	"METRICS_HOLD", "NATS_URL", "NATS_SUBJECT", "LOG_NATS_SUBJECTS",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them after
// the test. Empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	// keep a developer's .env out of the test
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, k := range configVars {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{
		DataDir:     ".",
		LogLevel:    "info",
		LogFormat:   "json",
		NATSSubject: "bikeshare.reports",
	}, cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BIKE_DATA_DIR", "/ignored")
	t.Setenv("DATA_DIR", "/data/divvy")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "Console")
	t.Setenv("METRICS_ADDR", ":9102")
	t.Setenv("METRICS_HOLD", "yes")
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")
	t.Setenv("NATS_SUBJECT", "divvy.reports")
	t.Setenv("LOG_NATS_SUBJECTS", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/divvy", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, ":9102", cfg.MetricsAddr)
	assert.True(t, cfg.MetricsHold)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATSURL)
	assert.Equal(t, "divvy.reports", cfg.NATSSubject)
	assert.True(t, cfg.LogNATSSubjects)
}

func TestLoad_FallbackDataDir(t *testing.T) {
	clearEnv(t)
	t.Setenv("BIKE_DATA_DIR", "/srv/rides")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/rides", cfg.DataDir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"LOG_LEVEL", "chatty"},
		{"LOG_FORMAT", "xml"},
		{"METRICS_HOLD", "maybe"},
		{"LOG_NATS_SUBJECTS", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

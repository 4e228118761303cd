package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/activity-weather-insights/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Level(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level    string
		format   string
		enabled  slog.Level
		disabled slog.Level
	}{
		{"debug", "json", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", "text", slog.LevelInfo, slog.LevelDebug},
		{"warn", "json", slog.LevelWarn, slog.LevelInfo},
		{"error", "text", slog.LevelError, slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format})

			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tt.enabled))
			assert.False(t, logger.Enabled(ctx, tt.disabled))
		})
	}
}

func TestNewLogger_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "info", LogFormat: "json"})
	assert.Same(t, logger, slog.Default())
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.EventsSkipped.WithLabelValues("bad_timestamp").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.EventsSkipped.WithLabelValues("bad_timestamp")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.EventsSkipped.WithLabelValues("bad_timestamp")))
}

package infrastructure

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppulse/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for input, want := range cases {
		assert.Equal(t, want, parseLogLevel(input), "level %q", input)
	}
}

func TestTraceID(t *testing.T) {
	t.Run("round trips through context", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "trace-123")
		assert.Equal(t, "trace-123", GetTraceID(ctx))
	})

	t.Run("absent trace id is empty", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
	})

	t.Run("ensure generates once", func(t *testing.T) {
		ctx := EnsureTraceID(context.Background())
		first := GetTraceID(ctx)
		require.NotEmpty(t, first)

		again := EnsureTraceID(ctx)
		assert.Equal(t, first, GetTraceID(again))
	})

	t.Run("generated ids are unique", func(t *testing.T) {
		assert.NotEqual(t, GenerateTraceID(), GenerateTraceID())
	})
}

func TestCreateLogger(t *testing.T) {
	t.Run("console output", func(t *testing.T) {
		logger, err := createLogger(config.LoggingConfig{Level: "info", Output: "console"})
		require.NoError(t, err)
		require.NotNil(t, logger)

		// Handler must survive context without a trace id.
		logger.InfoContext(context.Background(), "hello")
	})

	t.Run("file output creates the log file", func(t *testing.T) {
		path := t.TempDir() + "/logs/app.log"
		logger, err := createLogger(config.LoggingConfig{
			Level:    "debug",
			Output:   "file",
			FilePath: path,
		})
		require.NoError(t, err)
		logger.Info("to file")
		require.NoError(t, CloseLogFile())
	})

	t.Run("unknown output falls back to console", func(t *testing.T) {
		logger, err := createLogger(config.LoggingConfig{Level: "info", Output: "carrier-pigeon"})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})
}

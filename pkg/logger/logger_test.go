package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gridkit/pkg/logger"
)

func TestLoad(t *testing.T) {
	// No t.Parallel: t.Setenv is incompatible with parallel tests.

	t.Run("defaults", func(t *testing.T) {
		cfg, err := logger.Load()
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, logger.FormatText, cfg.Format)
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "json")

		cfg, err := logger.Load()
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Level)
		assert.Equal(t, logger.FormatJSON, cfg.Format)
	})

	t.Run("invalid level fails", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loudest")
		_, err := logger.Load()
		require.Error(t, err)
	})

	t.Run("invalid format fails", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "xml")
		_, err := logger.Load()
		require.Error(t, err)
	})
}

func TestNewWithOutput(t *testing.T) {
	t.Parallel()

	t.Run("json format with static attrs", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithOutput(
			logger.Config{Level: "info", Format: logger.FormatJSON},
			&buf,
			slog.String("component", "grid"),
		)
		log.Info("hello")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "hello", record["msg"])
		assert.Equal(t, "grid", record["component"])
	})

	t.Run("level filters records", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithOutput(logger.Config{Level: "warn", Format: logger.FormatText}, &buf)
		log.Info("quiet")
		assert.Empty(t, buf.String())
		log.Warn("loud")
		assert.Contains(t, buf.String(), "loud")
	})
}

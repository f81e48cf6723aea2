package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewComponentLogger(&buf, "info", "database")

	log.Debug().Msg("hidden")
	log.Info().Str("path", "runs.db").Msg("Using local SQLite DB")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Using local SQLite DB")
	assert.Contains(t, out, "component=database")
	assert.Contains(t, out, "path=runs.db")
}

func TestNewComponentLogger_NilWriter(t *testing.T) {
	log := NewComponentLogger(nil, "debug", "influx")
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestParseZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.TraceLevel, parseZerologLevel("trace"))
	assert.Equal(t, zerolog.WarnLevel, parseZerologLevel("WARN"))
	assert.Equal(t, zerolog.InfoLevel, parseZerologLevel("bogus"))
}

func TestContextHandler_RunFromContext(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewTextHandler(&buf, nil), func() []slog.Attr {
		return []slog.Attr{slog.String("currentRun", "provider")}
	})
	logger := slog.New(h)

	logger.InfoContext(WithRun(context.Background(), "ctx-run"), "from ctx")
	assert.Contains(t, buf.String(), "currentRun=ctx-run")
	assert.NotContains(t, buf.String(), "currentRun=provider")

	buf.Reset()
	logger.Info("from provider")
	assert.Contains(t, buf.String(), "currentRun=provider")

	_, ok := RunFromContext(context.Background())
	assert.False(t, ok)
}

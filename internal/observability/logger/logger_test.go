package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	obscontext "github.com/whizlyai/whizly/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildZapConfig(t *testing.T) {
	cfg, err := buildZapConfig(Config{Level: "warn", Format: "Console"})
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Encoding)
	assert.Equal(t, zapcore.WarnLevel, cfg.Level.Level())

	cfg, err = buildZapConfig(Config{Debug: true})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Encoding)
	assert.True(t, cfg.Development)

	_, err = buildZapConfig(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestWithContextAddsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-9")
	ctx = obscontext.WithOrgID(ctx, "1001")
	WithContext(ctx, base).Info("payment recorded")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "1001", fields["org_id"])
	assert.NotContains(t, fields, "trace_id")

	assert.Same(t, base, WithContext(context.Background(), base))
}

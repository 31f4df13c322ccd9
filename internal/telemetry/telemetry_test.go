package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NoDSN(t *testing.T) {
	shutdown, err := Init(Config{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestStartSpan_WithoutSentry(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "service.ask", SpanAttributes{Operation: "ask", Source: "notion"})
	require.NotNil(t, span)
	assert.NotNil(t, ctx)
	span.SetError(errors.New("boom"))
	span.End()
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(true)
	require.NoError(t, err)
	logger.Debug("debug enabled")

	logger, err = NewLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
}

func TestSpan_ZeroValueIsInert(t *testing.T) {
	var span Span
	span.SetOutcome("fallback")
	span.SetError(errors.New("boom"))
	span.End()
}

func TestInit_InvalidDSNFallsBackToNoop(t *testing.T) {
	shutdown, err := Init(Config{DSN: "not a dsn"})
	require.NoError(t, err)
	shutdown()
}

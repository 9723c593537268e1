package logging_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Su-informatics-lab/llm-drug-effect/internal/infrastructure/monitoring/logging"
)

func newObservedLogger(t *testing.T) (logging.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.NewLoggerFromCore(core), logs
}

func TestLogger_EmitsTypedFields(t *testing.T) {
	t.Parallel()
	l, logs := newObservedLogger(t)

	l.Info("chunk submitted",
		logging.Int("chunk_size", 4),
		logging.String("model", "meta-llama/Meta-Llama-3-8B-Instruct"),
		logging.Float64("temperature", 0.6),
		logging.Bool("reasoning", true),
		logging.Duration("elapsed", 2*time.Second),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "chunk submitted", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 4, fields["chunk_size"])
	assert.Equal(t, "meta-llama/Meta-Llama-3-8B-Instruct", fields["model"])
	assert.Equal(t, 0.6, fields["temperature"])
	assert.Equal(t, true, fields["reasoning"])
}

func TestLogger_ErrField(t *testing.T) {
	t.Parallel()
	l, logs := newObservedLogger(t)

	l.Warn("cache unavailable", logging.Err(errors.New("connection refused")))
	l.Warn("nil error", logging.Err(nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "connection refused", entries[0].ContextMap()["error"])
	assert.Equal(t, "<nil>", entries[1].ContextMap()["error"])
}

func TestLogger_WithAttachesFieldsToChildOnly(t *testing.T) {
	t.Parallel()
	l, logs := newObservedLogger(t)

	child := l.With(logging.String("run_id", "abc123"))
	child.Info("from child")
	l.Info("from parent")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc123", entries[0].ContextMap()["run_id"])
	assert.NotContains(t, entries[1].ContextMap(), "run_id")
}

func TestLogger_Named(t *testing.T) {
	t.Parallel()
	l, logs := newObservedLogger(t)

	l.Named("runner").Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "runner", entries[0].LoggerName)
}

func TestNewLogger_DefaultsAreValid(t *testing.T) {
	t.Parallel()
	l, err := logging.NewLogger(logging.LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestSetDefault_IgnoresNil(t *testing.T) {
	logging.SetDefault(nil)
	assert.NotNil(t, logging.Default())
}

//Personal.AI order the ending

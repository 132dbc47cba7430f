package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Level(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("not-a-level")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	FromContext(ctx).Info("slots listed")
	assert.Equal(t, 1, logs.Len())
}

func TestStdAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := NewStdAdapter(zap.New(core))
	a.Printf("connected to %s\n", "broker-1")
	a.Println("closing")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "connected to broker-1", entries[0].Message)
	assert.Equal(t, "closing", entries[1].Message)
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit_RejectsBadLevel(t *testing.T) {
	err := Init("loud", "json")
	require.Error(t, err)
}

func TestInit_JSON(t *testing.T) {
	require.NoError(t, Init("warn", "json"))
	defer Set(zap.NewNop())

	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, L().Core().Enabled(zapcore.WarnLevel))
}

func TestHelpers_WriteToGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	defer Set(zap.NewNop())

	Debug("d")
	Info("i", zap.String("k", "v"))
	Warn("w")
	Error("e")

	require.Equal(t, 4, logs.Len())
	entry := logs.FilterMessage("i").All()[0]
	assert.Equal(t, "v", entry.ContextMap()["k"])
}

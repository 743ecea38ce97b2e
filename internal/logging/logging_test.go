package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"info", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"error", zapcore.ErrorLevel},
		{"0", zapcore.InfoLevel},
		{"1", zapcore.DebugLevel},
		{"2", zapcore.Level(-2)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
	_, err = ParseLevel("-1")
	assert.Error(t, err)
	_, err = ParseLevel("200")
	assert.Error(t, err)

	got, err := ParseLevel("127")
	require.NoError(t, err)
	assert.Equal(t, zapcore.Level(-127), got)
}

func TestNewVerbosity(t *testing.T) {
	log, err := New("info", false)
	require.NoError(t, err)
	assert.True(t, log.Enabled())
	assert.False(t, log.V(1).Enabled())

	log, err = New("2", true)
	require.NoError(t, err)
	assert.True(t, log.V(2).Enabled())
	assert.False(t, log.V(3).Enabled())

	_, err = New("loud", false)
	assert.Error(t, err)
}

func TestNewWithCore(t *testing.T) {
	core, logs := observer.New(zapcore.Level(-1))
	log := NewWithCore(core)

	log.V(1).Info("operation table built", "operations", 3)
	log.V(2).Info("dropped")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "operation table built", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["operations"])
}

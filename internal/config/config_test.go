package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorbridge/internal/native"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, native.DefaultPrintOptions, c.PrintOptions())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("TENSORBRIDGE_DEFAULT_DTYPE", "double")
	t.Setenv("TENSORBRIDGE_LOG_LEVEL", "2")
	t.Setenv("TENSORBRIDGE_LOG_DEVELOPMENT", "true")
	t.Setenv("TENSORBRIDGE_PRINT_PRECISION", "2")
	t.Setenv("TENSORBRIDGE_RANDOM_SEED", "42")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "double", c.DefaultDType)
	assert.Equal(t, "2", c.LogLevel)
	assert.True(t, c.LogDevelopment)
	assert.Equal(t, int64(2), c.PrintPrecision)
	assert.Equal(t, uint64(42), c.RandomSeed)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"integer dtype", "TENSORBRIDGE_DEFAULT_DTYPE", "int32"},
		{"unknown dtype", "TENSORBRIDGE_DEFAULT_DTYPE", "float128"},
		{"not a number", "TENSORBRIDGE_PRINT_PRECISION", "four"},
		{"zero width", "TENSORBRIDGE_PRINT_LINEWIDTH", "0"},
		{"nan threshold", "TENSORBRIDGE_PRINT_THRESHOLD", "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("TENSORBRIDGE_PRINT_EDGEITEMS", "5")
	c, err := Load()
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--default-dtype=float64", "--seed=9"}))

	assert.Equal(t, "float64", c.DefaultDType)
	assert.Equal(t, uint64(9), c.RandomSeed)
	assert.Equal(t, int64(5), c.PrintEdgeItems, "unset flags keep the environment value")
	require.NoError(t, c.Validate())
}

// Package config loads bridge settings from TENSORBRIDGE_* environment
// variables. Command-line flags may override them.
package config

import (
	"fmt"
	"math"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"

	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Prefix is prepended to every variable name, e.g. TENSORBRIDGE_LOG_LEVEL.
const Prefix = "TENSORBRIDGE"

type Config struct {
	// DefaultDType is used by creation operations when the options carry no
	// dtype. It must name a floating point type.
	DefaultDType string `envconfig:"DEFAULT_DTYPE" default:"float32"`

	// LogLevel is a zap level name (debug, info, warn, error) or a logr
	// verbosity such as "2".
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`

	PrintPrecision int64   `envconfig:"PRINT_PRECISION" default:"4"`
	PrintThreshold float64 `envconfig:"PRINT_THRESHOLD" default:"1000"`
	PrintEdgeItems int64   `envconfig:"PRINT_EDGEITEMS" default:"3"`
	PrintLineWidth int64   `envconfig:"PRINT_LINEWIDTH" default:"80"`

	// RandomSeed seeds the random kernels. Zero seeds from the clock.
	RandomSeed uint64 `envconfig:"RANDOM_SEED" default:"0"`
}

// Default returns the configuration Load produces from an empty
// environment.
func Default() Config {
	return Config{
		DefaultDType:   "float32",
		LogLevel:       "info",
		PrintPrecision: 4,
		PrintThreshold: 1000,
		PrintEdgeItems: 3,
		PrintLineWidth: 80,
	}
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return Config{}, fmt.Errorf("reading %s_* environment: %w", Prefix, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values envconfig cannot check by type alone.
func (c Config) Validate() error {
	dt, ok := tensor.ParseDataType(c.DefaultDType)
	if !ok {
		return fmt.Errorf("default dtype: unknown type %q", c.DefaultDType)
	}
	if !dt.IsFloatingPoint() {
		return fmt.Errorf("default dtype: %s is not a floating point type", dt)
	}
	switch {
	case c.PrintPrecision < 0:
		return fmt.Errorf("print precision must not be negative, got %d", c.PrintPrecision)
	case math.IsNaN(c.PrintThreshold) || c.PrintThreshold < 0:
		return fmt.Errorf("print threshold must be a non-negative number, got %v", c.PrintThreshold)
	case c.PrintEdgeItems < 0:
		return fmt.Errorf("print edge items must not be negative, got %d", c.PrintEdgeItems)
	case c.PrintLineWidth <= 0:
		return fmt.Errorf("print line width must be positive, got %d", c.PrintLineWidth)
	}
	return nil
}

// BindFlags registers a flag for every setting, defaulting to the current
// values so that flags override the environment.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.DefaultDType, "default-dtype", c.DefaultDType, "dtype used by creation operations when none is given")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level name or logr verbosity")
	fs.BoolVar(&c.LogDevelopment, "log-development", c.LogDevelopment, "human readable development logging")
	fs.Int64Var(&c.PrintPrecision, "print-precision", c.PrintPrecision, "digits after the decimal point in repr")
	fs.Float64Var(&c.PrintThreshold, "print-threshold", c.PrintThreshold, "element count above which repr summarizes")
	fs.Int64Var(&c.PrintEdgeItems, "print-edgeitems", c.PrintEdgeItems, "items kept at each edge of a summarized dimension")
	fs.Int64Var(&c.PrintLineWidth, "print-linewidth", c.PrintLineWidth, "characters per repr line")
	fs.Uint64Var(&c.RandomSeed, "seed", c.RandomSeed, "random seed, 0 seeds from the clock")
}

// PrintOptions returns the repr defaults.
func (c Config) PrintOptions() native.PrintOptions {
	return native.PrintOptions{
		Precision: c.PrintPrecision,
		Threshold: c.PrintThreshold,
		EdgeItems: c.PrintEdgeItems,
		LineWidth: c.PrintLineWidth,
	}
}

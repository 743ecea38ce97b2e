// Package logging builds the logr.Logger handed to the bridge packages,
// backed by zap.
package logging

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel accepts a zap level name or a non-negative logr verbosity.
// Verbosity n enables V(n) messages, which zapr writes at zap level -n.
func ParseLevel(s string) (zapcore.Level, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > math.MaxInt8 {
			return 0, fmt.Errorf("log verbosity must be between 0 and %d, got %d", math.MaxInt8, n)
		}
		return zapcore.Level(-n), nil
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

// New returns a zap-backed logger writing to stderr. Development loggers
// use the console encoder.
func New(level string, development bool) (logr.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil

	z, err := cfg.Build()
	if err != nil {
		return logr.Discard(), fmt.Errorf("building logger: %w", err)
	}
	return zapr.NewLogger(z), nil
}

// NewWithCore wraps an existing zap core, for callers that route logs
// somewhere other than stderr.
func NewWithCore(core zapcore.Core) logr.Logger {
	return zapr.NewLogger(zap.New(core))
}

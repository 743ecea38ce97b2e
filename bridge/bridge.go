// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bridge

import (
	"fmt"

	"github.com/go-logr/logr"

	_ "github.com/born-ml/tensorbridge/internal/backend/cpu" // registers the cpu kernels
	"github.com/born-ml/tensorbridge/internal/config"
	"github.com/born-ml/tensorbridge/internal/dispatch"
	"github.com/born-ml/tensorbridge/internal/errs"
	"github.com/born-ml/tensorbridge/internal/logging"
	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/ops"
	"github.com/born-ml/tensorbridge/internal/resource"
	"github.com/born-ml/tensorbridge/internal/term"
)

// Config holds the bridge settings; see LoadConfig.
type Config = config.Config

// Error types returned by Call.
type (
	DecodeError          = errs.DecodeError
	NativeOperationError = errs.NativeOperationError
	UnsupportedTypeError = errs.UnsupportedTypeError
)

var (
	// ErrUnknownOperation is returned when Call is given a name no
	// operation is registered under.
	ErrUnknownOperation = errs.ErrUnknownOperation
	// ErrReleasedTensor is returned for tensors whose handle was released.
	ErrReleasedTensor = errs.ErrReleasedTensor
)

// NotConverted is returned in place of values whose type the bridge
// cannot represent.
const NotConverted = errs.NotConverted

// LoadConfig reads TENSORBRIDGE_* environment variables.
func LoadConfig() (Config, error) {
	return config.Load()
}

// DefaultConfig returns the configuration of an empty environment.
func DefaultConfig() Config {
	return config.Default()
}

// Options configures Open.
type Options struct {
	// Config defaults to DefaultConfig when zero.
	Config Config
	// Logger is used as given when set, including logr.Discard(). When nil a
	// zap logger is built from Config.LogLevel.
	Logger *logr.Logger
}

// Bridge is a loaded library with its operation table.
type Bridge struct {
	cfg        Config
	log        logr.Logger
	dispatcher *dispatch.Dispatcher
}

// Open loads the native library and builds the operation table.
func Open(opts Options) (*Bridge, error) {
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var log logr.Logger
	if opts.Logger != nil {
		log = *opts.Logger
	} else {
		var err error
		if log, err = logging.New(cfg.LogLevel, cfg.LogDevelopment); err != nil {
			return nil, err
		}
	}

	lib, err := native.Open(native.Options{
		DefaultDType: cfg.DefaultDType,
		Seed:         cfg.RandomSeed,
		Print:        cfg.PrintOptions(),
		Logger:       log.WithName("native"),
	})
	if err != nil {
		return nil, fmt.Errorf("opening native library: %w", err)
	}
	res := resource.New(resource.Options{Logger: log.WithName("resource")})
	d, err := dispatch.New(lib, res, ops.Table(), dispatch.Options{Logger: log.WithName("dispatch")})
	if err != nil {
		return nil, fmt.Errorf("building operation table: %w", err)
	}
	return &Bridge{cfg: cfg, log: log, dispatcher: d}, nil
}

// Call runs the named operation on host terms.
func (b *Bridge) Call(name string, args ...term.Term) (term.Term, error) {
	return b.dispatcher.Call(name, args...)
}

// CallWithReference is Call with the reference marker stored in every
// tensor of the result.
func (b *Bridge) CallWithReference(name string, ref term.Term, args ...term.Term) (term.Term, error) {
	return b.dispatcher.CallWithReference(name, ref, args...)
}

// Release frees the tensor behind t without waiting for the collector.
// Calls that already decoded t are unaffected; later calls taking t fail
// with ErrReleasedTensor. Releasing twice is a no-op.
func (b *Bridge) Release(t term.Term) error {
	return b.dispatcher.Resources().Release(t)
}

// Config returns the configuration the bridge was opened with.
func (b *Bridge) Config() Config { return b.cfg }

// Logger returns the bridge's root logger.
func (b *Bridge) Logger() logr.Logger { return b.log }

// Arg describes one declared argument.
type Arg struct {
	Name string
	Kind string
}

// Op describes a registered operation.
type Op struct {
	Name    string
	Args    []Arg
	Returns string
}

// Ops lists the registered operations in declaration order.
func (b *Bridge) Ops() []Op {
	table := b.dispatcher.Ops()
	out := make([]Op, len(table))
	for i, op := range table {
		args := make([]Arg, len(op.Args))
		for j, a := range op.Args {
			args[j] = Arg{Name: a.Name, Kind: a.Kind.String()}
		}
		out[i] = Op{Name: op.Name, Args: args, Returns: op.Returns.String()}
	}
	return out
}

// Raise returns the term the host raises for err.
func Raise(err error) term.Term {
	return errs.Raise(err)
}

// LiveTensors reports how many native tensors are currently allocated
// across all bridges in the process.
func LiveTensors() int64 {
	return native.LiveTensors()
}

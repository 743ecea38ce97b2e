// Package native is the call surface of the wrapped tensor library.
//
// Every exposed operation is a method on Library that takes native argument
// types (Scalar, TensorOptions, TorchIndex, ...) and returns either a result
// or an *Exception. Kernels signal failures by panicking; the methods here
// recover those panics so nothing escapes the library boundary.
package native

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Options configures a Library.
type Options struct {
	// DefaultDType names the dtype creation operations use when none is
	// given. It must be a floating type; empty means float32.
	DefaultDType string
	// Seed seeds the random kernels; zero picks a time-based seed.
	Seed uint64
	// Print holds the defaults for Repr when the caller passes none.
	Print PrintOptions
	Logger logr.Logger
}

// DefaultPrintOptions mirrors the native library's printing defaults.
var DefaultPrintOptions = PrintOptions{
	Precision: 4,
	Threshold: 1000,
	EdgeItems: 3,
	LineWidth: 80,
}

// Library holds the instantiated backends and defaults.
type Library struct {
	backends     map[tensor.DeviceType]tensor.Backend
	defaultDType tensor.DataType
	print        PrintOptions
	log          logr.Logger
}

// Open instantiates every registered backend.
func Open(opts Options) (*Library, error) {
	dtype := tensor.Float32
	if opts.DefaultDType != "" {
		dt, ok := tensor.ParseDataType(opts.DefaultDType)
		if !ok {
			return nil, fmt.Errorf("unknown default dtype %q", opts.DefaultDType)
		}
		if !dt.IsFloatingPoint() {
			return nil, fmt.Errorf("default dtype must be a floating point type, got %s", dt)
		}
		dtype = dt
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	printOpts := opts.Print
	if printOpts == (PrintOptions{}) {
		printOpts = DefaultPrintOptions
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	backendsMu.RLock()
	defer backendsMu.RUnlock()

	l := &Library{
		backends:     make(map[tensor.DeviceType]tensor.Backend, len(backends)),
		defaultDType: dtype,
		print:        printOpts,
		log:          log,
	}
	for dt, f := range backends {
		l.backends[dt] = f(seed)
		log.V(1).Info("backend loaded", "device", dt.String())
	}
	return l, nil
}

// DefaultDType returns the dtype used for creation when none is given.
func (l *Library) DefaultDType() tensor.DataType {
	return l.defaultDType
}

// PrintDefaults returns the printing options Repr falls back to.
func (l *Library) PrintDefaults() PrintOptions {
	return l.print
}

// backend returns the kernels for dev, panicking the way the library does
// when a device family was not compiled in.
func (l *Library) backend(dev tensor.Device) tensor.Backend {
	b, ok := l.backends[dev.Type]
	if !ok {
		panic(fmt.Sprintf("%s backend is not available", dev.Type))
	}
	return b
}

// kernels returns the backend owning the tensors, which must share a device.
func (l *Library) kernels(ts ...*Tensor) tensor.Backend {
	dev := ts[0].raw.Device()
	for _, t := range ts[1:] {
		if d := t.raw.Device(); d != dev {
			panic(fmt.Sprintf("Expected all tensors to be on the same device, but found at least two devices, %s and %s!", dev, d))
		}
	}
	return l.backend(dev)
}

// Package cpu implements the pure Go CPU backend behind the bridge.
package cpu

import (
	"math/rand/v2"
	"sync"

	"github.com/born-ml/tensorbridge/internal/parallel"
	"github.com/born-ml/tensorbridge/internal/tensor"
)

// CPUBackend implements tensor kernels on the host CPU.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// New creates a new CPU backend whose random kernels are seeded with seed.
func New(seed uint64) *CPUBackend {
	return &CPUBackend{
		device: tensor.DefaultCPU,
		par:    parallel.DefaultConfig(),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device family.
func (cpu *CPUBackend) Device() tensor.DeviceType {
	return cpu.device.Type
}

// Seed resets the random generator.
func (cpu *CPUBackend) Seed(seed uint64) {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()
	cpu.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (cpu *CPUBackend) alloc(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	return tensor.MustNewRaw(shape, dtype, cpu.device)
}

// scalarTypeName returns the name kernels use for dtypes in error messages.
func scalarTypeName(dt tensor.DataType) string {
	switch dt {
	case tensor.Bool:
		return "Bool"
	case tensor.Uint8:
		return "Byte"
	case tensor.Int8:
		return "Char"
	case tensor.Int16:
		return "Short"
	case tensor.Int32:
		return "Int"
	case tensor.Int64:
		return "Long"
	case tensor.Uint16:
		return "UInt16"
	case tensor.Uint32:
		return "UInt32"
	case tensor.Uint64:
		return "UInt64"
	case tensor.Float16:
		return "Half"
	case tensor.BFloat16:
		return "BFloat16"
	case tensor.Float32:
		return "Float"
	case tensor.Float64:
		return "Double"
	case tensor.Complex64:
		return "ComplexFloat"
	case tensor.Complex128:
		return "ComplexDouble"
	}
	return "Undefined"
}

var _ tensor.Backend = (*CPUBackend)(nil)

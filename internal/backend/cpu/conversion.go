package cpu

import (
	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Cast converts tensor to a different data type. Casting to the current
// type returns a view sharing the buffer.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype && !x.IsConj() {
		return x.Clone()
	}
	return cpu.mapUnary(x, dtype, func(v tensor.Value) tensor.Value { return v })
}

// ResolveConj materializes a lazily conjugated tensor. Tensors without the
// conjugate bit are returned as shared views.
func (cpu *CPUBackend) ResolveConj(x *tensor.RawTensor) *tensor.RawTensor {
	if !x.IsConj() {
		return x.Clone()
	}
	result := cpu.mapUnary(x, x.DType(), func(v tensor.Value) tensor.Value { return v })
	return result.SetRequiresGrad(x.RequiresGrad())
}

package cpu

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Compare performs an element-wise comparison with broadcasting and returns
// a bool tensor. Ordering comparisons are undefined for complex operands.
func (cpu *CPUBackend) Compare(op tensor.CompareOp, a, b *tensor.RawTensor) *tensor.RawTensor {
	compute := tensor.PromoteTypes(a.DType(), b.DType())
	if compute.IsComplex() && op != tensor.OpEq && op != tensor.OpNe {
		panic(fmt.Sprintf("\"%s_cpu\" not implemented for '%s'", op, scalarTypeName(compute)))
	}

	return cpu.mapBinary(a, b, compute, tensor.Bool, func(x, y tensor.Value) tensor.Value {
		return tensor.BoolValue(compareValues(op, x, y))
	})
}

func compareValues(op tensor.CompareOp, x, y tensor.Value) bool {
	var c int
	switch dt := x.Type; {
	case dt.IsComplex():
		eq := x.Complex() == y.Complex()
		if op == tensor.OpEq {
			return eq
		}
		return !eq
	case dt.IsFloatingPoint():
		a, b := x.Float(), y.Float()
		if math.IsNaN(a) || math.IsNaN(b) {
			return op == tensor.OpNe
		}
		c = cmpOrdered(a, b)
	case dt.IsUnsigned():
		c = cmpOrdered(x.Uint(), y.Uint())
	default:
		c = cmpOrdered(x.Int(), y.Int())
	}

	switch op {
	case tensor.OpEq:
		return c == 0
	case tensor.OpNe:
		return c != 0
	case tensor.OpGt:
		return c > 0
	case tensor.OpGe:
		return c >= 0
	case tensor.OpLt:
		return c < 0
	default:
		return c <= 0
	}
}

func cmpOrdered[T int64 | uint64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Classify applies a floating-point classification element-wise.
func (cpu *CPUBackend) Classify(op tensor.ClassifyOp, x *tensor.RawTensor) *tensor.RawTensor {
	dt := x.DType()
	if dt.IsComplex() && (op == tensor.OpIsPosInf || op == tensor.OpIsNegInf) {
		panic(fmt.Sprintf("%s does not support complex inputs.", op))
	}

	return cpu.mapUnary(x, tensor.Bool, func(v tensor.Value) tensor.Value {
		switch {
		case dt.IsComplex():
			c := v.Complex()
			switch op {
			case tensor.OpIsNaN:
				return tensor.BoolValue(cmplx.IsNaN(c))
			case tensor.OpIsInf:
				return tensor.BoolValue(cmplx.IsInf(c))
			case tensor.OpIsFinite:
				return tensor.BoolValue(!cmplx.IsNaN(c) && !cmplx.IsInf(c))
			default:
				return tensor.BoolValue(imag(c) == 0)
			}
		case dt.IsFloatingPoint():
			f := v.Float()
			switch op {
			case tensor.OpIsNaN:
				return tensor.BoolValue(math.IsNaN(f))
			case tensor.OpIsInf:
				return tensor.BoolValue(math.IsInf(f, 0))
			case tensor.OpIsPosInf:
				return tensor.BoolValue(math.IsInf(f, 1))
			case tensor.OpIsNegInf:
				return tensor.BoolValue(math.IsInf(f, -1))
			case tensor.OpIsFinite:
				return tensor.BoolValue(!math.IsNaN(f) && !math.IsInf(f, 0))
			default:
				return tensor.BoolValue(true)
			}
		}
		return tensor.BoolValue(op == tensor.OpIsFinite || op == tensor.OpIsReal)
	})
}

// IsClose reports |a - b| <= atol + rtol*|b| element-wise. Infinities are
// close only to themselves; NaNs are close to each other when equalNaN.
func (cpu *CPUBackend) IsClose(a, b *tensor.RawTensor, rtol, atol float64, equalNaN bool) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s did not match %s", scalarTypeName(a.DType()), scalarTypeName(b.DType())))
	}
	if rtol < 0 {
		panic(fmt.Sprintf("rtol must be greater than or equal to zero, but got %g", rtol))
	}
	if atol < 0 {
		panic(fmt.Sprintf("atol must be greater than or equal to zero, but got %g", atol))
	}

	compute := a.DType()
	if !compute.IsComplex() {
		compute = tensor.Float64
	}
	return cpu.mapBinary(a, b, compute, tensor.Bool, func(x, y tensor.Value) tensor.Value {
		cx, cy := x.Complex(), y.Complex()
		if x.IsNaN() || y.IsNaN() {
			return tensor.BoolValue(equalNaN && x.IsNaN() && y.IsNaN())
		}
		if cx == cy {
			return tensor.BoolValue(true)
		}
		if cmplx.IsInf(cx) || cmplx.IsInf(cy) {
			return tensor.BoolValue(false)
		}
		return tensor.BoolValue(cmplx.Abs(cx-cy) <= atol+rtol*cmplx.Abs(cy))
	})
}

// IsIn tests each element of elements for membership in test.
func (cpu *CPUBackend) IsIn(elements, test *tensor.RawTensor) *tensor.RawTensor {
	compute := tensor.PromoteTypes(elements.DType(), test.DType())
	if compute.IsComplex() {
		panic(fmt.Sprintf("\"isin_default_cpu\" not implemented for '%s'", scalarTypeName(compute)))
	}

	candidates := make([]tensor.Value, test.NumElements())
	for i := range candidates {
		candidates[i] = test.At(i).Convert(compute)
	}

	return cpu.mapUnary(elements, tensor.Bool, func(v tensor.Value) tensor.Value {
		v = v.Convert(compute)
		for _, c := range candidates {
			if compareValues(tensor.OpEq, v, c) {
				return tensor.BoolValue(true)
			}
		}
		return tensor.BoolValue(false)
	})
}

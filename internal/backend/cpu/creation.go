package cpu

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Full creates a tensor of the given shape filled with value.
func (cpu *CPUBackend) Full(shape tensor.Shape, value tensor.Value, dtype tensor.DataType) *tensor.RawTensor {
	result := cpu.alloc(shape, dtype)
	v := value.Convert(dtype)
	for i := 0; i < result.NumElements(); i++ {
		result.SetAt(i, v)
	}
	return result
}

// Rand samples uniform [0, 1) values, or standard normal values when normal
// is set. Complex tensors draw both components independently.
func (cpu *CPUBackend) Rand(shape tensor.Shape, dtype tensor.DataType, normal bool) *tensor.RawTensor {
	if !dtype.IsFloatingPoint() && !dtype.IsComplex() {
		if normal {
			panic(fmt.Sprintf("\"normal_kernel_cpu\" not implemented for '%s'", scalarTypeName(dtype)))
		}
		panic(fmt.Sprintf("\"check_uniform_bounds\" not implemented for '%s'", scalarTypeName(dtype)))
	}

	result := cpu.alloc(shape, dtype)

	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	draw := cpu.rng.Float64
	if normal {
		draw = cpu.rng.NormFloat64
	}
	for i := 0; i < result.NumElements(); i++ {
		if dtype.IsComplex() {
			re, im := draw(), draw()
			if normal {
				re, im = re/math.Sqrt2, im/math.Sqrt2
			}
			result.SetAt(i, tensor.ComplexValue(complex(re, im), dtype))
			continue
		}
		result.SetAt(i, tensor.FloatValue(draw(), dtype))
	}
	return result
}

// RandInt samples integers uniformly from [low, high).
func (cpu *CPUBackend) RandInt(low, high int64, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	if low >= high {
		panic(fmt.Sprintf("random_ expects 'from' to be less than 'to', but got from=%d >= to=%d", low, high))
	}
	if dtype.IsComplex() {
		panic(fmt.Sprintf("\"random_from_to\" not implemented for '%s'", scalarTypeName(dtype)))
	}

	result := cpu.alloc(shape, dtype)

	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	span := uint64(high - low)
	for i := 0; i < result.NumElements(); i++ {
		v := low + int64(cpu.rng.Uint64N(span))
		result.SetAt(i, tensor.IntValue(v, tensor.Int64))
	}
	return result
}

// Eye creates an n×m matrix with ones on the main diagonal.
func (cpu *CPUBackend) Eye(n, m int, dtype tensor.DataType) *tensor.RawTensor {
	if n < 0 {
		panic(fmt.Sprintf("n must be greater or equal to 0, got %d", n))
	}
	if m < 0 {
		panic(fmt.Sprintf("m must be greater or equal to 0, got %d", m))
	}

	result := cpu.alloc(tensor.Shape{n, m}, dtype)
	one := tensor.IntValue(1, tensor.Int64)
	for i := 0; i < min(n, m); i++ {
		result.SetAt(i*m+i, one)
	}
	return result
}

// Arange creates values from start (inclusive) to end (exclusive) spaced by
// step. Integral bounds are stepped exactly; anything else steps in double
// precision.
func (cpu *CPUBackend) Arange(start, end, step tensor.Value, dtype tensor.DataType) *tensor.RawTensor {
	s, e, st := start.Float(), end.Float(), step.Float()
	if st == 0 {
		panic("step must be nonzero")
	}
	if math.IsNaN(s) || math.IsNaN(e) || math.IsInf(s, 0) || math.IsInf(e, 0) {
		panic(fmt.Sprintf("unsupported range: %v -> %v", s, e))
	}
	if (st > 0 && e < s) || (st < 0 && e > s) {
		panic("upper bound and larger bound inconsistent with step sign")
	}

	n := int(math.Ceil((e - s) / st))
	result := cpu.alloc(tensor.Shape{n}, dtype)

	exact := start.Type.IsIntegral(true) && end.Type.IsIntegral(true) && step.Type.IsIntegral(true)
	for i := 0; i < n; i++ {
		if exact {
			result.SetAt(i, tensor.IntValue(start.Int()+int64(i)*step.Int(), tensor.Int64))
			continue
		}
		result.SetAt(i, tensor.FloatValue(s+float64(i)*st, tensor.Float64))
	}
	return result
}

// Linspace creates steps values evenly spaced from start to end inclusive.
func (cpu *CPUBackend) Linspace(start, end tensor.Value, steps int, dtype tensor.DataType) *tensor.RawTensor {
	return cpu.fillSpan("linspace", start, end, steps, dtype, func(v float64) float64 { return v })
}

// Logspace creates steps values base^x for x evenly spaced from start to end.
func (cpu *CPUBackend) Logspace(start, end tensor.Value, steps int, base tensor.Value, dtype tensor.DataType) *tensor.RawTensor {
	b := base.Float()
	return cpu.fillSpan("logspace", start, end, steps, dtype, func(v float64) float64 { return math.Pow(b, v) })
}

func (cpu *CPUBackend) fillSpan(op string, start, end tensor.Value, steps int, dtype tensor.DataType, fn func(float64) float64) *tensor.RawTensor {
	if steps < 0 {
		panic("number of steps must be non-negative")
	}

	span := make([]float64, steps)
	switch steps {
	case 0:
	case 1:
		span[0] = start.Float()
	default:
		floats.Span(span, start.Float(), end.Float())
	}

	result := cpu.alloc(tensor.Shape{steps}, dtype)
	for i, v := range span {
		result.SetAt(i, tensor.FloatValue(fn(v), tensor.Float64))
	}
	return result
}

// FromValues builds a tensor from flat row-major values.
func (cpu *CPUBackend) FromValues(values []tensor.Value, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	if len(values) != shape.NumElements() {
		panic(fmt.Sprintf("shape '%v' is invalid for input of size %d", []int(shape), len(values)))
	}
	result := cpu.alloc(shape, dtype)
	for i, v := range values {
		result.SetAt(i, v)
	}
	return result
}

// Complex combines real and imaginary float tensors.
func (cpu *CPUBackend) Complex(re, im *tensor.RawTensor) *tensor.RawTensor {
	out := complexResultType(re, im)
	return cpu.mapBinary(re, im, re.DType(), out, func(x, y tensor.Value) tensor.Value {
		return tensor.ComplexValue(complex(x.Float(), y.Float()), out)
	})
}

// Polar builds complex values from magnitude and angle tensors.
func (cpu *CPUBackend) Polar(abs, angle *tensor.RawTensor) *tensor.RawTensor {
	out := complexResultType(abs, angle)
	return cpu.mapBinary(abs, angle, abs.DType(), out, func(x, y tensor.Value) tensor.Value {
		return tensor.ComplexValue(cmplx.Rect(x.Float(), y.Float()), out)
	})
}

func complexResultType(a, b *tensor.RawTensor) tensor.DataType {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("Expected object of scalar type %s but got scalar type %s for second argument",
			scalarTypeName(a.DType()), scalarTypeName(b.DType())))
	}
	switch a.DType() {
	case tensor.Float16, tensor.Float32, tensor.Float64:
	default:
		panic(fmt.Sprintf("Expected both inputs to be Half, Float or Double tensors but got %s and %s",
			scalarTypeName(a.DType()), scalarTypeName(b.DType())))
	}
	out, _ := a.DType().ToComplex()
	return out
}

// ViewAsComplex reinterprets a trailing dimension of size 2 as complex pairs.
func (cpu *CPUBackend) ViewAsComplex(x *tensor.RawTensor) *tensor.RawTensor {
	dt := x.DType()
	if dt != tensor.Float32 && dt != tensor.Float64 && dt != tensor.Float16 {
		panic(fmt.Sprintf("view_as_complex is only supported for half, float and double tensors, but got a tensor of scalar type: %s",
			scalarTypeName(dt)))
	}
	shape := x.Shape()
	if len(shape) == 0 || shape[len(shape)-1] != 2 {
		panic("Tensor must have a last dimension of size 2")
	}

	out, _ := dt.ToComplex()
	result := cpu.alloc(shape[:len(shape)-1].Clone(), out)
	for i := 0; i < result.NumElements(); i++ {
		re, im := x.At(2*i).Float(), x.At(2*i+1).Float()
		result.SetAt(i, tensor.ComplexValue(complex(re, im), out))
	}
	return result
}

// Real returns the real part of a complex tensor, or a view of a real one.
func (cpu *CPUBackend) Real(x *tensor.RawTensor) *tensor.RawTensor {
	if !x.DType().IsComplex() {
		return x.Clone()
	}
	out := x.DType().ToReal()
	return cpu.mapUnary(x, out, func(v tensor.Value) tensor.Value {
		return tensor.FloatValue(real(v.Complex()), out)
	})
}

// Imag returns the imaginary part of a complex tensor.
func (cpu *CPUBackend) Imag(x *tensor.RawTensor) *tensor.RawTensor {
	if !x.DType().IsComplex() {
		panic("imag is not implemented for tensors with non-complex dtypes.")
	}
	out := x.DType().ToReal()
	return cpu.mapUnary(x, out, func(v tensor.Value) tensor.Value {
		return tensor.FloatValue(imag(v.Complex()), out)
	})
}

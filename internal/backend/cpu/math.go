package cpu

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Binary performs an element-wise arithmetic op with NumPy-style
// broadcasting. Operands are computed in their promoted type; true division
// of integral operands produces float32.
func (cpu *CPUBackend) Binary(op tensor.BinaryOp, a, b *tensor.RawTensor) *tensor.RawTensor {
	compute := tensor.PromoteTypes(a.DType(), b.DType())

	switch op {
	case tensor.OpSub:
		if a.DType() == tensor.Bool && b.DType() == tensor.Bool {
			panic("Subtraction, the `-` operator, with two bool tensors is not supported. " +
				"Use the `^` or `logical_xor()` operator instead.")
		}
	case tensor.OpDiv:
		if compute.IsIntegral(true) {
			compute = tensor.Float32
		}
	case tensor.OpMaximum, tensor.OpMinimum, tensor.OpFMax, tensor.OpFMin:
		if compute.IsComplex() {
			panic(fmt.Sprintf("%s not implemented for complex tensors.", op))
		}
	}

	fn := binaryKernel(op, compute)
	return cpu.mapBinary(a, b, compute, compute, fn)
}

func binaryKernel(op tensor.BinaryOp, dt tensor.DataType) func(x, y tensor.Value) tensor.Value {
	switch {
	case dt.IsComplex():
		return func(x, y tensor.Value) tensor.Value {
			a, b := x.Complex(), y.Complex()
			switch op {
			case tensor.OpAdd:
				return tensor.ComplexValue(a+b, dt)
			case tensor.OpSub:
				return tensor.ComplexValue(a-b, dt)
			case tensor.OpMul:
				return tensor.ComplexValue(a*b, dt)
			default:
				return tensor.ComplexValue(a/b, dt)
			}
		}
	case dt.IsFloatingPoint():
		return func(x, y tensor.Value) tensor.Value {
			return tensor.FloatValue(floatBinary(op, x.Float(), y.Float()), dt)
		}
	case dt == tensor.Bool:
		return func(x, y tensor.Value) tensor.Value {
			a, b := x.Bool(), y.Bool()
			switch op {
			case tensor.OpAdd, tensor.OpMaximum, tensor.OpFMax:
				return tensor.BoolValue(a || b)
			default:
				return tensor.BoolValue(a && b)
			}
		}
	case dt.IsUnsigned():
		return func(x, y tensor.Value) tensor.Value {
			a, b := x.Uint(), y.Uint()
			switch op {
			case tensor.OpAdd:
				return tensor.UintValue(a+b, dt)
			case tensor.OpSub:
				return tensor.UintValue(a-b, dt)
			case tensor.OpMul:
				return tensor.UintValue(a*b, dt)
			case tensor.OpMaximum, tensor.OpFMax:
				return tensor.UintValue(max(a, b), dt)
			default:
				return tensor.UintValue(min(a, b), dt)
			}
		}
	default:
		return func(x, y tensor.Value) tensor.Value {
			a, b := x.Int(), y.Int()
			switch op {
			case tensor.OpAdd:
				return tensor.IntValue(a+b, dt)
			case tensor.OpSub:
				return tensor.IntValue(a-b, dt)
			case tensor.OpMul:
				return tensor.IntValue(a*b, dt)
			case tensor.OpMaximum, tensor.OpFMax:
				return tensor.IntValue(max(a, b), dt)
			default:
				return tensor.IntValue(min(a, b), dt)
			}
		}
	}
}

func floatBinary(op tensor.BinaryOp, a, b float64) float64 {
	switch op {
	case tensor.OpAdd:
		return a + b
	case tensor.OpSub:
		return a - b
	case tensor.OpMul:
		return a * b
	case tensor.OpDiv:
		return a / b
	case tensor.OpMaximum:
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.NaN()
		}
		return math.Max(a, b)
	case tensor.OpMinimum:
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.NaN()
		}
		return math.Min(a, b)
	case tensor.OpFMax:
		switch {
		case math.IsNaN(a):
			return b
		case math.IsNaN(b):
			return a
		}
		return math.Max(a, b)
	case tensor.OpFMin:
		switch {
		case math.IsNaN(a):
			return b
		case math.IsNaN(b):
			return a
		}
		return math.Min(a, b)
	}
	panic(fmt.Sprintf("unknown binary op %d", int(op)))
}

// Unary performs an element-wise math op. Transcendental functions promote
// integral inputs to float32; abs of a complex tensor yields its real type.
func (cpu *CPUBackend) Unary(op tensor.UnaryOp, x *tensor.RawTensor) *tensor.RawTensor {
	dt := x.DType()

	switch op {
	case tensor.OpNeg:
		if dt == tensor.Bool {
			panic("Negation, the `-` operator, on a bool tensor is not supported. " +
				"If you are trying to invert a mask, use the `~` or `logical_not()` operator instead.")
		}
		return cpu.mapUnary(x, dt, func(v tensor.Value) tensor.Value {
			switch {
			case dt.IsComplex():
				return tensor.ComplexValue(-v.Complex(), dt)
			case dt.IsFloatingPoint():
				return tensor.FloatValue(-v.Float(), dt)
			case dt.IsUnsigned():
				return tensor.UintValue(-v.Uint(), dt)
			}
			return tensor.IntValue(-v.Int(), dt)
		})

	case tensor.OpAbs:
		out := dt.ToReal()
		return cpu.mapUnary(x, out, func(v tensor.Value) tensor.Value {
			switch {
			case dt.IsComplex():
				return tensor.FloatValue(cmplx.Abs(v.Complex()), out)
			case dt.IsFloatingPoint():
				return tensor.FloatValue(math.Abs(v.Float()), out)
			case dt.IsSigned():
				i := v.Int()
				if i < 0 {
					i = -i
				}
				return tensor.IntValue(i, out)
			}
			return v
		})
	}

	out := dt
	if dt.IsIntegral(true) {
		out = tensor.Float32
	}
	if out.IsComplex() {
		fn := complexUnary(op)
		return cpu.mapUnary(x, out, func(v tensor.Value) tensor.Value {
			return tensor.ComplexValue(fn(v.Complex()), out)
		})
	}
	fn := floatUnary(op)
	return cpu.mapUnary(x, out, func(v tensor.Value) tensor.Value {
		return tensor.FloatValue(fn(v.Float()), out)
	})
}

func floatUnary(op tensor.UnaryOp) func(float64) float64 {
	switch op {
	case tensor.OpExp:
		return math.Exp
	case tensor.OpLog:
		return math.Log
	case tensor.OpSqrt:
		return math.Sqrt
	case tensor.OpSin:
		return math.Sin
	case tensor.OpCos:
		return math.Cos
	}
	panic(fmt.Sprintf("unknown unary op %d", int(op)))
}

func complexUnary(op tensor.UnaryOp) func(complex128) complex128 {
	switch op {
	case tensor.OpExp:
		return cmplx.Exp
	case tensor.OpLog:
		return cmplx.Log
	case tensor.OpSqrt:
		return cmplx.Sqrt
	case tensor.OpSin:
		return cmplx.Sin
	case tensor.OpCos:
		return cmplx.Cos
	}
	panic(fmt.Sprintf("unknown unary op %d", int(op)))
}

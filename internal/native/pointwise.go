package native

import (
	"github.com/born-ml/tensorbridge/internal/tensor"
)

func (l *Library) binary(op tensor.BinaryOp, a, b *Tensor) (*Tensor, error) {
	return invoke(op.String(), func() *Tensor {
		return newTensor(l.kernels(a, b).Binary(op, a.raw, b.raw))
	})
}

func (l *Library) unary(op tensor.UnaryOp, t *Tensor) (*Tensor, error) {
	return invoke(op.String(), func() *Tensor {
		return newTensor(l.kernels(t).Unary(op, t.raw))
	})
}

// Add returns a + b with broadcasting.
func (l *Library) Add(a, b *Tensor) (*Tensor, error) { return l.binary(tensor.OpAdd, a, b) }

// Sub returns a - b with broadcasting.
func (l *Library) Sub(a, b *Tensor) (*Tensor, error) { return l.binary(tensor.OpSub, a, b) }

// Mul returns a * b with broadcasting.
func (l *Library) Mul(a, b *Tensor) (*Tensor, error) { return l.binary(tensor.OpMul, a, b) }

// Div returns the true quotient a / b.
func (l *Library) Div(a, b *Tensor) (*Tensor, error) { return l.binary(tensor.OpDiv, a, b) }

func (l *Library) Neg(t *Tensor) (*Tensor, error)  { return l.unary(tensor.OpNeg, t) }
func (l *Library) Abs(t *Tensor) (*Tensor, error)  { return l.unary(tensor.OpAbs, t) }
func (l *Library) Exp(t *Tensor) (*Tensor, error)  { return l.unary(tensor.OpExp, t) }
func (l *Library) Log(t *Tensor) (*Tensor, error)  { return l.unary(tensor.OpLog, t) }
func (l *Library) Sqrt(t *Tensor) (*Tensor, error) { return l.unary(tensor.OpSqrt, t) }
func (l *Library) Sin(t *Tensor) (*Tensor, error)  { return l.unary(tensor.OpSin, t) }
func (l *Library) Cos(t *Tensor) (*Tensor, error)  { return l.unary(tensor.OpCos, t) }

// Maximum returns the element-wise maximum, propagating NaN.
func (l *Library) Maximum(a, b *Tensor) (*Tensor, error) { return l.binary(tensor.OpMaximum, a, b) }

// Minimum returns the element-wise minimum, propagating NaN.
func (l *Library) Minimum(a, b *Tensor) (*Tensor, error) { return l.binary(tensor.OpMinimum, a, b) }

// FMax returns the element-wise maximum, ignoring NaN.
func (l *Library) FMax(a, b *Tensor) (*Tensor, error) { return l.binary(tensor.OpFMax, a, b) }

// FMin returns the element-wise minimum, ignoring NaN.
func (l *Library) FMin(a, b *Tensor) (*Tensor, error) { return l.binary(tensor.OpFMin, a, b) }

package native

import (
	"fmt"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Empty creates an uninitialized tensor. Storage is zero-filled.
func (l *Library) Empty(size []int64, opts TensorOptions) (*Tensor, error) {
	return l.fill("empty", size, opts, tensor.IntValue(0, tensor.Int64))
}

// Zeros creates a tensor filled with zeros.
func (l *Library) Zeros(size []int64, opts TensorOptions) (*Tensor, error) {
	return l.fill("zeros", size, opts, tensor.IntValue(0, tensor.Int64))
}

// Ones creates a tensor filled with ones.
func (l *Library) Ones(size []int64, opts TensorOptions) (*Tensor, error) {
	return l.fill("ones", size, opts, tensor.IntValue(1, tensor.Int64))
}

func (l *Library) fill(op string, size []int64, opts TensorOptions, v tensor.Value) (*Tensor, error) {
	return invoke(op, func() *Tensor {
		shape := shapeOf(size)
		c := l.resolve(opts, len(shape))
		return c.finish(c.backend.Full(shape, v, c.dtype))
	})
}

// Full creates a tensor filled with value. Without an explicit dtype the
// dtype is inferred from the scalar.
func (l *Library) Full(size []int64, value Scalar, opts TensorOptions) (*Tensor, error) {
	return invoke("full", func() *Tensor {
		shape := shapeOf(size)
		c := l.resolve(opts, len(shape))
		v := value.mustValue()
		if !c.dtypeSet {
			c.dtype = l.inferType(v)
		}
		return c.finish(c.backend.Full(shape, v, c.dtype))
	})
}

// Rand samples from the uniform distribution on [0, 1).
func (l *Library) Rand(size []int64, opts TensorOptions) (*Tensor, error) {
	return l.random("rand", size, opts, false)
}

// Randn samples from the standard normal distribution.
func (l *Library) Randn(size []int64, opts TensorOptions) (*Tensor, error) {
	return l.random("randn", size, opts, true)
}

func (l *Library) random(op string, size []int64, opts TensorOptions, normal bool) (*Tensor, error) {
	return invoke(op, func() *Tensor {
		shape := shapeOf(size)
		c := l.resolve(opts, len(shape))
		return c.finish(c.backend.Rand(shape, c.dtype, normal))
	})
}

// RandInt samples integers uniformly from [low, high). The dtype defaults
// to int64.
func (l *Library) RandInt(low, high int64, size []int64, opts TensorOptions) (*Tensor, error) {
	return invoke("randint", func() *Tensor {
		shape := shapeOf(size)
		c := l.resolve(opts, len(shape))
		if !c.dtypeSet {
			c.dtype = tensor.Int64
		}
		return c.finish(c.backend.RandInt(low, high, shape, c.dtype))
	})
}

// Eye creates an n×m identity matrix.
func (l *Library) Eye(n, m int64, opts TensorOptions) (*Tensor, error) {
	return invoke("eye", func() *Tensor {
		c := l.resolve(opts, 2)
		return c.finish(c.backend.Eye(int(n), int(m), c.dtype))
	})
}

// Arange creates a 1-D range. Without an explicit dtype, integral bounds
// produce int64 and anything else the default dtype.
func (l *Library) Arange(start, end, step Scalar, opts TensorOptions) (*Tensor, error) {
	return invoke("arange", func() *Tensor {
		c := l.resolve(opts, 1)
		s, e, st := start.mustValue(), end.mustValue(), step.mustValue()
		if s.Type.IsComplex() || e.Type.IsComplex() || st.Type.IsComplex() {
			panic("arange: complex bounds are not supported")
		}
		if !c.dtypeSet {
			c.dtype = l.inferType(s, e, st)
			if c.dtype == tensor.Bool {
				c.dtype = tensor.Int64
			}
		}
		return c.finish(c.backend.Arange(s, e, st, c.dtype))
	})
}

// Linspace creates steps evenly spaced values from start to end.
func (l *Library) Linspace(start, end Scalar, steps int64, opts TensorOptions) (*Tensor, error) {
	return invoke("linspace", func() *Tensor {
		c := l.resolve(opts, 1)
		return c.finish(c.backend.Linspace(start.mustValue(), end.mustValue(), int(steps), c.dtype))
	})
}

// Logspace creates steps values spaced evenly on a log scale.
func (l *Library) Logspace(start, end Scalar, steps int64, base Scalar, opts TensorOptions) (*Tensor, error) {
	return invoke("logspace", func() *Tensor {
		c := l.resolve(opts, 1)
		return c.finish(c.backend.Logspace(start.mustValue(), end.mustValue(), int(steps), base.mustValue(), c.dtype))
	})
}

// Tensor builds a tensor from a scalar list. The dtype is taken from the
// options, then from the list, and is otherwise inferred from the values.
func (l *Library) Tensor(list ScalarList, opts TensorOptions) (*Tensor, error) {
	return invoke("tensor", func() *Tensor {
		shape := shapeOf(list.Size)
		c := l.resolve(opts, len(shape))

		values := make([]tensor.Value, len(list.Scalars))
		for i, s := range list.Scalars {
			values[i] = s.mustValue()
		}
		if !c.dtypeSet {
			if dt, ok := tensor.ParseDataType(list.DType); ok {
				c.dtype = dt
			} else if len(values) > 0 {
				c.dtype = l.inferType(values...)
			}
		}
		if len(values) != shape.NumElements() {
			panic(fmt.Sprintf("shape '%v' is invalid for input of size %d", []int(shape), len(values)))
		}
		return c.finish(c.backend.FromValues(values, shape, c.dtype))
	})
}

// Complex builds a complex tensor from real and imaginary parts.
func (l *Library) Complex(re, im *Tensor) (*Tensor, error) {
	return invoke("complex", func() *Tensor {
		return newTensor(l.kernels(re, im).Complex(re.raw, im.raw))
	})
}

// Polar builds a complex tensor from magnitudes and angles.
func (l *Library) Polar(abs, angle *Tensor) (*Tensor, error) {
	return invoke("polar", func() *Tensor {
		return newTensor(l.kernels(abs, angle).Polar(abs.raw, angle.raw))
	})
}

// ViewAsComplex reinterprets a trailing dimension of size 2 as complex.
func (l *Library) ViewAsComplex(t *Tensor) (*Tensor, error) {
	return invoke("view_as_complex", func() *Tensor {
		return newTensor(l.kernels(t).ViewAsComplex(t.raw))
	})
}

// likeOptions fills unset options from t: its dtype and device.
func likeOptions(t *Tensor, opts TensorOptions) TensorOptions {
	if _, ok := tensor.ParseDataType(opts.DType); !ok {
		opts.DType = t.ScalarType().String()
	}
	if opts.Device == (Device{}) {
		opts.Device = t.Device()
	}
	return opts
}

// EmptyLike creates an empty tensor shaped like t.
func (l *Library) EmptyLike(t *Tensor, opts TensorOptions) (*Tensor, error) {
	return l.Empty(t.Sizes(), likeOptions(t, opts))
}

// ZerosLike creates a zero tensor shaped like t.
func (l *Library) ZerosLike(t *Tensor, opts TensorOptions) (*Tensor, error) {
	return l.Zeros(t.Sizes(), likeOptions(t, opts))
}

// OnesLike creates a tensor of ones shaped like t.
func (l *Library) OnesLike(t *Tensor, opts TensorOptions) (*Tensor, error) {
	return l.Ones(t.Sizes(), likeOptions(t, opts))
}

// RandLike samples a uniform tensor shaped like t.
func (l *Library) RandLike(t *Tensor, opts TensorOptions) (*Tensor, error) {
	return l.Rand(t.Sizes(), likeOptions(t, opts))
}

// RandnLike samples a normal tensor shaped like t.
func (l *Library) RandnLike(t *Tensor, opts TensorOptions) (*Tensor, error) {
	return l.Randn(t.Sizes(), likeOptions(t, opts))
}

// FullLike fills a tensor shaped like t with value.
func (l *Library) FullLike(t *Tensor, value Scalar, opts TensorOptions) (*Tensor, error) {
	return l.Full(t.Sizes(), value, likeOptions(t, opts))
}

// RandIntLike samples integers into a tensor shaped like t.
func (l *Library) RandIntLike(t *Tensor, low, high int64, opts TensorOptions) (*Tensor, error) {
	return l.RandInt(low, high, t.Sizes(), likeOptions(t, opts))
}

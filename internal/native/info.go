package native

import (
	"fmt"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Size returns the tensor's extents.
func (l *Library) Size(t *Tensor) []int64 {
	return t.Sizes()
}

// Device returns the tensor's device.
func (l *Library) Device(t *Tensor) Device {
	return t.Device()
}

// DType returns the canonical dtype name of t.
func (l *Library) DType(t *Tensor) string {
	return t.ScalarType().String()
}

// RequiresGrad reports the tensor's gradient flag.
func (l *Library) RequiresGrad(t *Tensor) bool {
	return t.raw.RequiresGrad()
}

// Numel returns the element count.
func (l *Library) Numel(t *Tensor) int64 {
	return int64(t.raw.NumElements())
}

// Layout returns the tensor's layout name.
func (l *Library) Layout(t *Tensor) string {
	return t.raw.Layout().String()
}

// MemoryFormat returns the suggested memory format of t. Every tensor this
// library produces is contiguous.
func (l *Library) MemoryFormat(t *Tensor) string {
	return tensor.Contiguous.String()
}

// IsComplex reports whether t has a complex dtype.
func (l *Library) IsComplex(t *Tensor) bool {
	return t.ScalarType().IsComplex()
}

// IsFloatingPoint reports whether t has a real floating dtype.
func (l *Library) IsFloatingPoint(t *Tensor) bool {
	return t.ScalarType().IsFloatingPoint()
}

// IsConj reports whether t is a lazily conjugated view.
func (l *Library) IsConj(t *Tensor) bool {
	return t.raw.IsConj()
}

// IsNonzero returns the truth value of a single-element tensor.
func (l *Library) IsNonzero(t *Tensor) (bool, error) {
	return invoke("is_nonzero", func() bool {
		switch n := t.raw.NumElements(); {
		case n == 0:
			panic("Boolean value of Tensor with no values is ambiguous")
		case n > 1:
			panic("Boolean value of Tensor with more than one value is ambiguous")
		}
		return t.raw.At(0).Bool()
	})
}

// Item returns the single element of t as a scalar.
func (l *Library) Item(t *Tensor) (Scalar, error) {
	return invoke("item", func() Scalar {
		if n := t.raw.NumElements(); n != 1 {
			panic(fmt.Sprintf("a Tensor with %d elements cannot be converted to Scalar", n))
		}
		return ScalarOf(t.raw.At(0))
	})
}

// ToList flattens t into scalars plus its shape.
func (l *Library) ToList(t *Tensor) ScalarList {
	n := t.raw.NumElements()
	list := ScalarList{
		Scalars: make([]Scalar, n),
		Size:    t.Sizes(),
		DType:   t.ScalarType().String(),
	}
	for i := 0; i < n; i++ {
		list.Scalars[i] = ScalarOf(t.raw.At(i))
	}
	return list
}

// Real returns the real part of t.
func (l *Library) Real(t *Tensor) (*Tensor, error) {
	return invoke("real", func() *Tensor {
		return newTensor(l.kernels(t).Real(t.raw))
	})
}

// Imag returns the imaginary part of a complex tensor.
func (l *Library) Imag(t *Tensor) (*Tensor, error) {
	return invoke("imag", func() *Tensor {
		return newTensor(l.kernels(t).Imag(t.raw))
	})
}

// Repr renders t with the given print options; zero options select the
// library defaults.
func (l *Library) Repr(t *Tensor, opts PrintOptions) (string, error) {
	opts = opts.WithDefaults(l.print)
	return invoke("repr", func() string {
		return formatTensor(t.raw, opts)
	})
}

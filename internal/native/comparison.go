package native

import (
	"github.com/born-ml/tensorbridge/internal/tensor"
)

func (l *Library) compare(op tensor.CompareOp, a, b *Tensor) (*Tensor, error) {
	return invoke(op.String(), func() *Tensor {
		return newTensor(l.kernels(a, b).Compare(op, a.raw, b.raw))
	})
}

func (l *Library) classify(op tensor.ClassifyOp, t *Tensor) (*Tensor, error) {
	return invoke(op.String(), func() *Tensor {
		return newTensor(l.kernels(t).Classify(op, t.raw))
	})
}

func (l *Library) Eq(a, b *Tensor) (*Tensor, error) { return l.compare(tensor.OpEq, a, b) }
func (l *Library) Ne(a, b *Tensor) (*Tensor, error) { return l.compare(tensor.OpNe, a, b) }
func (l *Library) Gt(a, b *Tensor) (*Tensor, error) { return l.compare(tensor.OpGt, a, b) }
func (l *Library) Ge(a, b *Tensor) (*Tensor, error) { return l.compare(tensor.OpGe, a, b) }
func (l *Library) Lt(a, b *Tensor) (*Tensor, error) { return l.compare(tensor.OpLt, a, b) }
func (l *Library) Le(a, b *Tensor) (*Tensor, error) { return l.compare(tensor.OpLe, a, b) }

func (l *Library) IsNaN(t *Tensor) (*Tensor, error)    { return l.classify(tensor.OpIsNaN, t) }
func (l *Library) IsInf(t *Tensor) (*Tensor, error)    { return l.classify(tensor.OpIsInf, t) }
func (l *Library) IsPosInf(t *Tensor) (*Tensor, error) { return l.classify(tensor.OpIsPosInf, t) }
func (l *Library) IsNegInf(t *Tensor) (*Tensor, error) { return l.classify(tensor.OpIsNegInf, t) }
func (l *Library) IsFinite(t *Tensor) (*Tensor, error) { return l.classify(tensor.OpIsFinite, t) }
func (l *Library) IsReal(t *Tensor) (*Tensor, error)   { return l.classify(tensor.OpIsReal, t) }

// IsClose compares a and b element-wise within |a-b| <= atol + rtol*|b|.
func (l *Library) IsClose(a, b *Tensor, rtol, atol float64, equalNaN bool) (*Tensor, error) {
	return invoke("isclose", func() *Tensor {
		return newTensor(l.kernels(a, b).IsClose(a.raw, b.raw, rtol, atol, equalNaN))
	})
}

// AllClose reports whether every element of a is close to b.
func (l *Library) AllClose(a, b *Tensor, rtol, atol float64, equalNaN bool) (bool, error) {
	return invoke("allclose", func() bool {
		k := l.kernels(a, b)
		near := k.IsClose(a.raw, b.raw, rtol, atol, equalNaN)
		defer near.Release()
		all := k.Reduce(tensor.OpAll, near, nil, false)
		defer all.Release()
		return all.At(0).Bool()
	})
}

// Equal reports whether a and b have the same shape and elements.
func (l *Library) Equal(a, b *Tensor) (bool, error) {
	return invoke("equal", func() bool {
		k := l.kernels(a, b)
		if !a.raw.Shape().Equal(b.raw.Shape()) {
			return false
		}
		eq := k.Compare(tensor.OpEq, a.raw, b.raw)
		defer eq.Release()
		all := k.Reduce(tensor.OpAll, eq, nil, false)
		defer all.Release()
		return all.At(0).Bool()
	})
}

// IsIn tests each element of elements for membership in test.
func (l *Library) IsIn(elements, test *Tensor) (*Tensor, error) {
	return invoke("isin", func() *Tensor {
		return newTensor(l.kernels(elements, test).IsIn(elements.raw, test.raw))
	})
}

// Sort sorts t along dim and returns the values and their source indices.
func (l *Library) Sort(t *Tensor, dim int64, descending, stable bool) ([2]*Tensor, error) {
	return invoke("sort", func() [2]*Tensor {
		v, i := l.kernels(t).Sort(t.raw, int(dim), descending, stable)
		return [2]*Tensor{newTensor(v), newTensor(i)}
	})
}

// ArgSort returns the indices that sort t along dim.
func (l *Library) ArgSort(t *Tensor, dim int64, descending, stable bool) (*Tensor, error) {
	return invoke("argsort", func() *Tensor {
		v, i := l.kernels(t).Sort(t.raw, int(dim), descending, stable)
		v.Release()
		return newTensor(i)
	})
}

// MSort sorts t along its first dimension.
func (l *Library) MSort(t *Tensor) (*Tensor, error) {
	return invoke("msort", func() *Tensor {
		v, i := l.kernels(t).Sort(t.raw, 0, false, false)
		i.Release()
		return newTensor(v)
	})
}

// TopK returns the k largest (or smallest) elements along dim.
func (l *Library) TopK(t *Tensor, k, dim int64, largest, sorted bool) ([2]*Tensor, error) {
	return invoke("topk", func() [2]*Tensor {
		v, i := l.kernels(t).TopK(t.raw, int(k), int(dim), largest, sorted)
		return [2]*Tensor{newTensor(v), newTensor(i)}
	})
}

// KthValue returns the k-th smallest element along dim, counting from one.
func (l *Library) KthValue(t *Tensor, k, dim int64, keepDim bool) ([2]*Tensor, error) {
	return invoke("kthvalue", func() [2]*Tensor {
		v, i := l.kernels(t).KthValue(t.raw, int(k), int(dim), keepDim)
		return [2]*Tensor{newTensor(v), newTensor(i)}
	})
}

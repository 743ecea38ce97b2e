package native

import (
	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Unsqueeze inserts a dimension of size one at dim.
func (l *Library) Unsqueeze(t *Tensor, dim int64) (*Tensor, error) {
	return invoke("unsqueeze", func() *Tensor {
		return newTensor(l.kernels(t).Unsqueeze(t.raw, int(dim)))
	})
}

// Reshape returns t with a new shape; one extent may be -1.
func (l *Library) Reshape(t *Tensor, size []int64) (*Tensor, error) {
	return invoke("reshape", func() *Tensor {
		shape := make(tensor.Shape, len(size))
		for i, n := range size {
			shape[i] = int(n)
		}
		return newTensor(l.kernels(t).Reshape(t.raw, shape))
	})
}

// Squeeze removes dimensions of size one, or only dim when given.
func (l *Library) Squeeze(t *Tensor, dim *int64) (*Tensor, error) {
	return invoke("squeeze", func() *Tensor {
		return newTensor(l.kernels(t).Squeeze(t.raw, intPtr(dim)))
	})
}

// Transpose swaps two dimensions.
func (l *Library) Transpose(t *Tensor, dim0, dim1 int64) (*Tensor, error) {
	return invoke("transpose", func() *Tensor {
		return newTensor(l.kernels(t).Transpose(t.raw, int(dim0), int(dim1)))
	})
}

// Cat concatenates tensors along dim.
func (l *Library) Cat(ts []*Tensor, dim int64) (*Tensor, error) {
	return invoke("cat", func() *Tensor {
		if len(ts) == 0 {
			panic("torch.cat(): expected a non-empty list of Tensors")
		}
		raws := make([]*tensor.RawTensor, len(ts))
		for i, t := range ts {
			raws[i] = t.raw
		}
		return newTensor(l.kernels(ts...).Cat(raws, int(dim)))
	})
}

// Index selects elements of t.
func (l *Library) Index(t *Tensor, index TorchIndex) (*Tensor, error) {
	return invoke("index", func() *Tensor {
		return newTensor(l.kernels(t).Index(t.raw, index.entries()))
	})
}

// IndexPut returns a copy of t with the indexed positions set to value. t
// itself is left unchanged.
func (l *Library) IndexPut(t *Tensor, index TorchIndex, value TensorOrScalar) (*Tensor, error) {
	return invoke("index_put", func() *Tensor {
		b := l.kernels(t)
		switch {
		case value.Tensor != nil:
			l.kernels(t, value.Tensor)
			return newTensor(b.IndexPut(t.raw, index.entries(), value.Tensor.raw))
		case value.Scalar != nil:
			fill := b.Full(tensor.Shape{}, value.Scalar.mustValue(), t.ScalarType())
			defer fill.Release()
			return newTensor(b.IndexPut(t.raw, index.entries(), fill))
		default:
			panic("index_put(): expected a tensor or a scalar value")
		}
	})
}

// Conj returns a lazily conjugated view of t. Real tensors are returned as
// plain views.
func (l *Library) Conj(t *Tensor) (*Tensor, error) {
	return invoke("conj", func() *Tensor {
		if !t.ScalarType().IsComplex() {
			return newTensor(t.raw.Clone())
		}
		return newTensor(t.raw.ConjView())
	})
}

// ResolveConj materializes a conjugated view.
func (l *Library) ResolveConj(t *Tensor) (*Tensor, error) {
	return invoke("resolve_conj", func() *Tensor {
		return newTensor(l.kernels(t).ResolveConj(t.raw))
	})
}

func intPtr(v *int64) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

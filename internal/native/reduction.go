package native

import (
	"github.com/born-ml/tensorbridge/internal/tensor"
)

// reduce applies op over dim, or over every dimension when dim is nil.
func (l *Library) reduce(op tensor.ReduceOp, t *Tensor, dim *int64, keepDim bool) (*Tensor, error) {
	return invoke(op.String(), func() *Tensor {
		var dims []int
		if dim != nil {
			dims = []int{int(*dim)}
		}
		return newTensor(l.kernels(t).Reduce(op, t.raw, dims, keepDim))
	})
}

// All tests whether every element is non-zero.
func (l *Library) All(t *Tensor, dim *int64, keepDim bool) (*Tensor, error) {
	return l.reduce(tensor.OpAll, t, dim, keepDim)
}

// Any tests whether some element is non-zero.
func (l *Library) Any(t *Tensor, dim *int64, keepDim bool) (*Tensor, error) {
	return l.reduce(tensor.OpAny, t, dim, keepDim)
}

// Sum adds elements; integral inputs accumulate into int64.
func (l *Library) Sum(t *Tensor, dim *int64, keepDim bool) (*Tensor, error) {
	return l.reduce(tensor.OpSum, t, dim, keepDim)
}

// Mean averages elements of a floating or complex tensor.
func (l *Library) Mean(t *Tensor, dim *int64, keepDim bool) (*Tensor, error) {
	return l.reduce(tensor.OpMean, t, dim, keepDim)
}

// CountNonzero counts non-zero elements.
func (l *Library) CountNonzero(t *Tensor, dim *int64) (*Tensor, error) {
	return l.reduce(tensor.OpCountNonzero, t, dim, false)
}

// AMax returns the maximum over dims, or over everything when dims is empty.
func (l *Library) AMax(t *Tensor, dims []int64, keepDim bool) (*Tensor, error) {
	return l.extreme(tensor.OpAMax, t, dims, keepDim)
}

// AMin returns the minimum over dims, or over everything when dims is empty.
func (l *Library) AMin(t *Tensor, dims []int64, keepDim bool) (*Tensor, error) {
	return l.extreme(tensor.OpAMin, t, dims, keepDim)
}

func (l *Library) extreme(op tensor.ReduceOp, t *Tensor, dims []int64, keepDim bool) (*Tensor, error) {
	return invoke(op.String(), func() *Tensor {
		ds := make([]int, len(dims))
		for i, d := range dims {
			ds[i] = int(d)
		}
		return newTensor(l.kernels(t).Reduce(op, t.raw, ds, keepDim))
	})
}

// ArgMax returns the index of the maximum along dim, or into the flattened
// tensor when dim is nil.
func (l *Library) ArgMax(t *Tensor, dim *int64, keepDim bool) (*Tensor, error) {
	return l.argReduce(tensor.OpArgMax, t, dim, keepDim)
}

// ArgMin returns the index of the minimum along dim, or into the flattened
// tensor when dim is nil.
func (l *Library) ArgMin(t *Tensor, dim *int64, keepDim bool) (*Tensor, error) {
	return l.argReduce(tensor.OpArgMin, t, dim, keepDim)
}

func (l *Library) argReduce(op tensor.ReduceOp, t *Tensor, dim *int64, keepDim bool) (*Tensor, error) {
	return invoke(op.String(), func() *Tensor {
		return newTensor(l.kernels(t).ArgReduce(op, t.raw, intPtr(dim), keepDim))
	})
}

// Max returns the maximum values along dim and their indices.
func (l *Library) Max(t *Tensor, dim int64, keepDim bool) ([2]*Tensor, error) {
	return l.maxMin("max", t, dim, keepDim, false)
}

// Min returns the minimum values along dim and their indices.
func (l *Library) Min(t *Tensor, dim int64, keepDim bool) ([2]*Tensor, error) {
	return l.maxMin("min", t, dim, keepDim, true)
}

func (l *Library) maxMin(op string, t *Tensor, dim int64, keepDim, isMin bool) ([2]*Tensor, error) {
	return invoke(op, func() [2]*Tensor {
		v, i := l.kernels(t).MaxMin(t.raw, int(dim), keepDim, isMin)
		return [2]*Tensor{newTensor(v), newTensor(i)}
	})
}

// Std returns the standard deviation with the given Bessel correction.
func (l *Library) Std(t *Tensor, dim *int64, correction int64, keepDim bool) (*Tensor, error) {
	return invoke("std", func() *Tensor {
		return newTensor(l.kernels(t).VarStd(t.raw, intPtr(dim), int(correction), keepDim, true))
	})
}

// Var returns the variance with the given Bessel correction.
func (l *Library) Var(t *Tensor, dim *int64, correction int64, keepDim bool) (*Tensor, error) {
	return invoke("var", func() *Tensor {
		return newTensor(l.kernels(t).VarStd(t.raw, intPtr(dim), int(correction), keepDim, false))
	})
}

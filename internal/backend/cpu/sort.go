package cpu

import (
	"fmt"
	"slices"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// sortLane returns the positions 0..len(idx)-1 ordered by the values of x at
// idx. NaN sorts above every number, as it does in the native library.
func sortLane(x *tensor.RawTensor, idx []int, descending, stable bool) []int {
	vals := make([]tensor.Value, len(idx))
	order := make([]int, len(idx))
	for k, i := range idx {
		vals[k] = x.At(i)
		order[k] = k
	}

	cmp := func(a, b int) int {
		va, vb := vals[a], vals[b]
		var c int
		switch {
		case va.IsNaN() && vb.IsNaN():
			c = 0
		case va.IsNaN():
			c = 1
		case vb.IsNaN():
			c = -1
		case compareValues(tensor.OpLt, va, vb):
			c = -1
		case compareValues(tensor.OpGt, va, vb):
			c = 1
		}
		if descending {
			c = -c
		}
		return c
	}

	if stable {
		slices.SortStableFunc(order, cmp)
	} else {
		slices.SortFunc(order, cmp)
	}
	return order
}

// forEachLane invokes fn for every 1-D lane of shape along dim with the
// flat indices of the lane's elements and the lane's (outer, inner) pair.
func forEachLane(shape tensor.Shape, dim int, fn func(lane []int, o, in int)) {
	outer, size, inner := lanes(shape, dim)
	lane := make([]int, size)
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			for k := range lane {
				lane[k] = (o*size+k)*inner + in
			}
			fn(lane, o, in)
		}
	}
}

func (cpu *CPUBackend) laneDim(op string, x *tensor.RawTensor, dim int) int {
	if x.DType().IsComplex() {
		panic(fmt.Sprintf("%s(): is not implemented for complex tensors", op))
	}
	d, err := x.Shape().NormalizeDim(dim)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Sort sorts x along dim, returning the sorted values and their original
// positions.
func (cpu *CPUBackend) Sort(x *tensor.RawTensor, dim int, descending, stable bool) (values, indices *tensor.RawTensor) {
	d := cpu.laneDim("sort", x, dim)
	values = cpu.alloc(x.Shape(), x.DType())
	indices = cpu.alloc(x.Shape(), tensor.Int64)
	if len(x.Shape()) == 0 {
		values.SetAt(0, x.At(0))
		return values, indices
	}

	forEachLane(x.Shape(), d, func(lane []int, _, _ int) {
		for k, pos := range sortLane(x, lane, descending, stable) {
			values.SetAt(lane[k], x.At(lane[pos]))
			indices.SetAt(lane[k], tensor.IntValue(int64(pos), tensor.Int64))
		}
	})
	return values, indices
}

// TopK returns the k largest (or smallest) elements along dim.
func (cpu *CPUBackend) TopK(x *tensor.RawTensor, k, dim int, largest, sorted bool) (values, indices *tensor.RawTensor) {
	d := cpu.laneDim("topk", x, dim)
	shape := x.Shape()
	size := 1
	if len(shape) > 0 {
		size = shape[d]
	}
	if k < 0 || k > size {
		panic("selected index k out of range")
	}

	outShape := shape.Clone()
	if len(shape) == 0 {
		values = cpu.alloc(outShape, x.DType())
		indices = cpu.alloc(outShape, tensor.Int64)
		values.SetAt(0, x.At(0))
		return values, indices
	}
	outShape[d] = k
	values = cpu.alloc(outShape, x.DType())
	indices = cpu.alloc(outShape, tensor.Int64)

	_, _, inner := lanes(shape, d)
	forEachLane(shape, d, func(lane []int, o, in int) {
		order := sortLane(x, lane, largest, true)
		for j := 0; j < k; j++ {
			out := (o*k+j)*inner + in
			values.SetAt(out, x.At(lane[order[j]]))
			indices.SetAt(out, tensor.IntValue(int64(order[j]), tensor.Int64))
		}
	})
	return values, indices
}

// KthValue returns the k-th smallest element (1-based) along dim.
func (cpu *CPUBackend) KthValue(x *tensor.RawTensor, k, dim int, keepDim bool) (values, indices *tensor.RawTensor) {
	d := cpu.laneDim("kthvalue", x, dim)
	shape := x.Shape()
	size := 1
	if len(shape) > 0 {
		size = shape[d]
	}
	if k < 1 || k > size {
		panic(fmt.Sprintf("kthvalue(): selected number k out of range for dimension %d", d))
	}
	if len(shape) == 0 {
		values = cpu.alloc(tensor.Shape{}, x.DType())
		values.SetAt(0, x.At(0))
		return values, cpu.alloc(tensor.Shape{}, tensor.Int64)
	}

	mask := make([]bool, len(shape))
	mask[d] = true
	outShape := reducedShape(shape, mask, keepDim)
	values = cpu.alloc(outShape, x.DType())
	indices = cpu.alloc(outShape, tensor.Int64)

	_, _, inner := lanes(shape, d)
	forEachLane(shape, d, func(lane []int, o, in int) {
		order := sortLane(x, lane, false, true)
		pos := order[k-1]
		values.SetAt(o*inner+in, x.At(lane[pos]))
		indices.SetAt(o*inner+in, tensor.IntValue(int64(pos), tensor.Int64))
	})
	return values, indices
}

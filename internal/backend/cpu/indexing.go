package cpu

import (
	"fmt"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

type axisKind int

const (
	axisNew axisKind = iota
	axisRange
	axisGather
)

// axis is one output dimension of an index plan. Gather axes come from a
// tensor index and are iterated flat, then expanded to the index's shape.
type axis struct {
	kind        axisKind
	size        int
	srcDim      int
	start, step int
	srcDims     []int
	coords      [][]int
	shape       tensor.Shape
}

type indexPlan struct {
	axes  []axis
	fixed map[int]int
	shape tensor.Shape
}

func fullAxis(dim, size int) axis {
	return axis{kind: axisRange, size: size, srcDim: dim, step: 1}
}

// planIndex resolves an index expression against shape. Every failure is
// reported by panicking with the native library's message.
func planIndex(shape tensor.Shape, entries []tensor.IndexEntry) *indexPlan {
	rank := len(shape)
	consumed, ellipses, tensors := 0, 0, 0
	for _, e := range entries {
		switch e.Kind {
		case tensor.IndexInteger, tensor.IndexSlice:
			consumed++
		case tensor.IndexTensor:
			tensors++
			if e.Tensor.DType() == tensor.Bool {
				consumed += len(e.Tensor.Shape())
			} else {
				consumed++
			}
		case tensor.IndexEllipsis:
			ellipses++
		}
	}
	if ellipses > 1 {
		panic("an index can only have a single ellipsis ('...')")
	}
	if tensors > 1 {
		panic("index: indexing with more than one tensor is not supported on cpu")
	}
	if consumed > rank {
		panic(fmt.Sprintf("too many indices for tensor of dimension %d", rank))
	}

	p := &indexPlan{fixed: map[int]int{}}
	dim := 0
	for _, e := range entries {
		switch e.Kind {
		case tensor.IndexNone:
			p.axes = append(p.axes, axis{kind: axisNew, size: 1})

		case tensor.IndexBoolean:
			size := 0
			if e.Boolean {
				size = 1
			}
			p.axes = append(p.axes, axis{kind: axisNew, size: size})

		case tensor.IndexEllipsis:
			for n := rank - consumed; n > 0; n-- {
				p.axes = append(p.axes, fullAxis(dim, shape[dim]))
				dim++
			}

		case tensor.IndexInteger:
			p.fixed[dim] = wrapIndex(e.Integer, dim, shape[dim])
			dim++

		case tensor.IndexSlice:
			start, n, step := resolveSlice(e, shape[dim])
			p.axes = append(p.axes, axis{kind: axisRange, size: n, srcDim: dim, start: start, step: step})
			dim++

		case tensor.IndexTensor:
			t := e.Tensor
			switch {
			case t.DType() == tensor.Bool:
				p.axes = append(p.axes, maskAxis(shape, dim, t))
				dim += len(t.Shape())
			case t.DType().IsIntegral(false):
				coords := make([][]int, t.NumElements())
				for i := range coords {
					coords[i] = []int{wrapIndex(t.At(i).Int(), dim, shape[dim])}
				}
				p.axes = append(p.axes, axis{
					kind: axisGather, size: len(coords), srcDims: []int{dim}, coords: coords, shape: t.Shape().Clone(),
				})
				dim++
			default:
				panic("tensors used as indices must be long, int, byte or bool tensors")
			}
		}
	}
	for ; dim < rank; dim++ {
		p.axes = append(p.axes, fullAxis(dim, shape[dim]))
	}

	for _, a := range p.axes {
		if a.kind == axisGather {
			p.shape = append(p.shape, a.shape...)
			continue
		}
		p.shape = append(p.shape, a.size)
	}
	if p.shape == nil {
		p.shape = tensor.Shape{}
	}
	return p
}

func wrapIndex(i int64, dim, size int) int {
	if i < -int64(size) || i >= int64(size) {
		panic(fmt.Sprintf("index %d is out of bounds for dimension %d with size %d", i, dim, size))
	}
	if i < 0 {
		i += int64(size)
	}
	return int(i)
}

// resolveSlice clamps slice bounds the way sequence slicing does and returns
// the first coordinate, the element count and the step.
func resolveSlice(e tensor.IndexEntry, size int) (start, n, step int) {
	step = 1
	if e.Step != nil {
		step = int(*e.Step)
	}
	if step <= 0 {
		panic("step must be greater than zero")
	}

	clamp := func(v *int64, def int) int {
		if v == nil {
			return def
		}
		i := int(*v)
		if i < 0 {
			i += size
		}
		return max(0, min(i, size))
	}
	start = clamp(e.Start, 0)
	stop := clamp(e.Stop, size)
	if stop > start {
		n = (stop - start + step - 1) / step
	}
	return start, n, step
}

func maskAxis(shape tensor.Shape, dim int, mask *tensor.RawTensor) axis {
	ms := mask.Shape()
	for j, n := range ms {
		if dim+j >= len(shape) || shape[dim+j] != n {
			panic(fmt.Sprintf("The shape of the mask %v at index %d does not match the shape of the indexed tensor %v at index %d",
				[]int(ms), j, []int(shape), dim+j))
		}
	}

	srcDims := make([]int, len(ms))
	for j := range srcDims {
		srcDims[j] = dim + j
	}
	var coords [][]int
	for i := 0; i < mask.NumElements(); i++ {
		if mask.At(i).Bool() {
			coords = append(coords, ms.Unravel(i))
		}
	}
	return axis{kind: axisGather, size: len(coords), srcDims: srcDims, coords: coords, shape: tensor.Shape{len(coords)}}
}

// sizes returns the flat iteration extents of the plan's axes.
func (p *indexPlan) sizes() tensor.Shape {
	s := make(tensor.Shape, len(p.axes))
	for i, a := range p.axes {
		s[i] = a.size
	}
	return s
}

// forEach calls fn with the flat output position and the source flat index
// of every element selected by the plan.
func (p *indexPlan) forEach(src *tensor.RawTensor, fn func(out, in int)) {
	sizes := p.sizes()
	strides := src.Strides()
	coords := make([]int, len(src.Shape()))
	for d, c := range p.fixed {
		coords[d] = c
	}

	total := sizes.NumElements()
	for i := 0; i < total; i++ {
		pos := sizes.Unravel(i)
		for k, a := range p.axes {
			switch a.kind {
			case axisRange:
				coords[a.srcDim] = a.start + pos[k]*a.step
			case axisGather:
				for j, d := range a.srcDims {
					coords[d] = a.coords[pos[k]][j]
				}
			}
		}
		in := 0
		for d, c := range coords {
			in += c * strides[d]
		}
		fn(i, in)
	}
}

// Index selects elements of x with a multi-dimensional index expression.
func (cpu *CPUBackend) Index(x *tensor.RawTensor, index []tensor.IndexEntry) *tensor.RawTensor {
	p := planIndex(x.Shape(), index)
	result := cpu.alloc(p.shape, x.DType())
	p.forEach(x, func(out, in int) {
		result.SetAt(out, x.At(in))
	})
	return result.SetRequiresGrad(x.RequiresGrad())
}

// IndexPut returns a copy of x with the indexed positions replaced by values,
// which must broadcast to the shape of the indexing result. x itself is
// never modified.
func (cpu *CPUBackend) IndexPut(x *tensor.RawTensor, index []tensor.IndexEntry, values *tensor.RawTensor) *tensor.RawTensor {
	p := planIndex(x.Shape(), index)

	bshape, _, err := tensor.BroadcastShapes(values.Shape(), p.shape)
	if err != nil || !bshape.Equal(p.shape) {
		panic(fmt.Sprintf("shape mismatch: value tensor of shape %v cannot be broadcast to indexing result of shape %v",
			[]int(values.Shape()), []int(p.shape)))
	}

	result := cpu.mapUnary(x, x.DType(), func(v tensor.Value) tensor.Value { return v })
	outStrides := p.shape.ComputeStrides()
	valStrides := computeBroadcastStridesForShape(values.Shape(), p.shape)
	p.forEach(x, func(out, in int) {
		result.SetAt(in, values.At(computeFlatIndex(out, outStrides, valStrides)))
	})
	return result.SetRequiresGrad(x.RequiresGrad())
}

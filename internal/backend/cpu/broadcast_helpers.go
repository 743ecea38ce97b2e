package cpu

import (
	"fmt"

	"github.com/born-ml/tensorbridge/internal/parallel"
	"github.com/born-ml/tensorbridge/internal/tensor"
)

// computeBroadcastStridesForShape computes strides for broadcasting a shape to outShape.
// Returns strides where dimensions of size 1 have stride 0 (for broadcasting).
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	// Pad input shape with 1s on the left
	offset := outDim - len(inShape)
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		if inIdx < 0 || inShape[inIdx] == 1 {
			continue
		}
		strides[i] = origStrides[inIdx]
	}

	return strides
}

// computeFlatIndex computes the flat index in the source array for a given output index.
// outStrides: strides of the output shape.
// inStrides: broadcast-adjusted strides of the input shape.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		if outStrides[i] == 0 {
			continue
		}
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}

// mapUnary applies fn to every element of x, producing a tensor of type out.
func (cpu *CPUBackend) mapUnary(x *tensor.RawTensor, out tensor.DataType, fn func(tensor.Value) tensor.Value) *tensor.RawTensor {
	result := cpu.alloc(x.Shape(), out)
	parallel.For(x.NumElements(), cpu.par, func(i int) {
		result.SetAt(i, fn(x.At(i)))
	})
	return result
}

// mapBinary broadcasts a against b, converts both operands to compute and
// stores fn's result as out.
func (cpu *CPUBackend) mapBinary(a, b *tensor.RawTensor, compute, out tensor.DataType, fn func(x, y tensor.Value) tensor.Value) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(err.Error())
	}

	result := cpu.alloc(outShape, out)
	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(a.Shape(), outShape)
	bStrides := computeBroadcastStridesForShape(b.Shape(), outShape)

	parallel.For(result.NumElements(), cpu.par, func(i int) {
		x := a.At(computeFlatIndex(i, outStrides, aStrides)).Convert(compute)
		y := b.At(computeFlatIndex(i, outStrides, bStrides)).Convert(compute)
		result.SetAt(i, fn(x, y))
	})
	return result
}

// lanes splits shape around dim into outer × size × inner so that the
// elements along dim for lane (o, in) sit at (o*size+k)*inner + in.
func lanes(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for d := 0; d < dim; d++ {
		outer *= shape[d]
	}
	for d := dim + 1; d < len(shape); d++ {
		inner *= shape[d]
	}
	return outer, shape[dim], inner
}

// reducedShape removes (or collapses to 1 when keepDim) the dims in mask.
func reducedShape(shape tensor.Shape, mask []bool, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for d, n := range shape {
		switch {
		case !mask[d]:
			out = append(out, n)
		case keepDim:
			out = append(out, 1)
		}
	}
	return out
}

// dimMask normalizes dims against shape. An empty dims list selects all.
func dimMask(op string, shape tensor.Shape, dims []int) []bool {
	mask := make([]bool, len(shape))
	if len(dims) == 0 {
		for d := range mask {
			mask[d] = true
		}
		return mask
	}
	for _, dim := range dims {
		d, err := shape.NormalizeDim(dim)
		if err != nil {
			panic(err.Error())
		}
		if len(shape) == 0 {
			continue
		}
		if mask[d] {
			panic(fmt.Sprintf("%s(): dim %d appears multiple times in the list of dims", op, d))
		}
		mask[d] = true
	}
	return mask
}

// groupBy buckets the flat indices of x by their position in the reduced
// output.
func groupBy(shape tensor.Shape, mask []bool, keepDim bool) (tensor.Shape, [][]int) {
	outShape := reducedShape(shape, mask, keepDim)
	groups := make([][]int, outShape.NumElements())

	keptShape := make(tensor.Shape, 0, len(shape))
	for d, n := range shape {
		if !mask[d] {
			keptShape = append(keptShape, n)
		}
	}
	keptStrides := keptShape.ComputeStrides()

	total := shape.NumElements()
	for i := 0; i < total; i++ {
		coords := shape.Unravel(i)
		out, k := 0, 0
		for d, c := range coords {
			if mask[d] {
				continue
			}
			out += c * keptStrides[k]
			k++
		}
		groups[out] = append(groups[out], i)
	}
	return outShape, groups
}

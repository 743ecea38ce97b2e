package cpu

import (
	"fmt"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Reshape returns a view of x with a new shape. A single -1 entry is
// inferred from the remaining dimensions.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	shape = shape.Clone()
	infer := -1
	known := 1
	for i, n := range shape {
		switch {
		case n == -1:
			if infer >= 0 {
				panic("only one dimension can be inferred")
			}
			infer = i
		case n < 0:
			panic(fmt.Sprintf("invalid shape dimension %d", n))
		default:
			known *= n
		}
	}
	if infer >= 0 {
		if known == 0 || x.NumElements()%known != 0 {
			panic(fmt.Sprintf("shape '%v' is invalid for input of size %d", []int(shape), x.NumElements()))
		}
		shape[infer] = x.NumElements() / known
	}

	view, err := x.View(shape)
	if err != nil {
		panic(err.Error())
	}
	return view
}

// Unsqueeze inserts a dimension of size 1 at dim.
//
// Example:
//
//	x.shape = [3, 4]
//	Unsqueeze(x, 0) -> [1, 3, 4]
//	Unsqueeze(x, -1) -> [3, 4, 1]
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	d, err := (append(shape.Clone(), 1)).NormalizeDim(dim)
	if err != nil {
		panic(err.Error())
	}

	newShape := make(tensor.Shape, 0, len(shape)+1)
	newShape = append(newShape, shape[:d]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[d:]...)

	return cpu.Reshape(x, newShape)
}

// Squeeze removes dimensions of size 1. With a nil dim every such dimension
// is removed; otherwise only dim, and only if it has size 1.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim *int) *tensor.RawTensor {
	shape := x.Shape()
	newShape := make(tensor.Shape, 0, len(shape))

	if dim == nil {
		for _, n := range shape {
			if n != 1 {
				newShape = append(newShape, n)
			}
		}
		return cpu.Reshape(x, newShape)
	}

	d, err := shape.NormalizeDim(*dim)
	if err != nil {
		panic(err.Error())
	}
	for i, n := range shape {
		if i == d && n == 1 {
			continue
		}
		newShape = append(newShape, n)
	}
	return cpu.Reshape(x, newShape)
}

// Transpose swaps two dimensions, materializing the result contiguously.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor, dim0, dim1 int) *tensor.RawTensor {
	shape := x.Shape()
	d0, err := shape.NormalizeDim(dim0)
	if err != nil {
		panic(err.Error())
	}
	d1, err := shape.NormalizeDim(dim1)
	if err != nil {
		panic(err.Error())
	}
	if len(shape) == 0 || d0 == d1 {
		return x.Clone()
	}

	outShape := shape.Clone()
	outShape[d0], outShape[d1] = outShape[d1], outShape[d0]
	result := cpu.alloc(outShape, x.DType())

	srcStrides := x.Strides()
	for i := 0; i < result.NumElements(); i++ {
		coords := outShape.Unravel(i)
		coords[d0], coords[d1] = coords[d1], coords[d0]
		src := 0
		for d, c := range coords {
			src += c * srcStrides[d]
		}
		result.SetAt(i, x.At(src))
	}
	return result.SetRequiresGrad(x.RequiresGrad())
}

// Cat concatenates tensors along a dimension.
//
// All tensors must have the same shape except along the concatenation
// dimension. The result dtype is the promotion of all inputs.
//
// Example:
//
//	a = [[1, 2], [3, 4]]  // shape [2, 2]
//	b = [[5, 6]]          // shape [1, 2]
//	Cat([a, b], dim=0) = [[1, 2], [3, 4], [5, 6]]  // shape [3, 2]
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("torch.cat(): expected a non-empty list of Tensors")
	}

	first := tensors[0].Shape()
	if len(first) == 0 {
		panic("zero-dimensional tensor (at position 0) cannot be concatenated")
	}
	d, err := first.NormalizeDim(dim)
	if err != nil {
		panic(err.Error())
	}

	dtype := tensors[0].DType()
	total := 0
	for i, t := range tensors {
		s := t.Shape()
		if len(s) == 0 {
			panic(fmt.Sprintf("zero-dimensional tensor (at position %d) cannot be concatenated", i))
		}
		if len(s) != len(first) {
			panic(fmt.Sprintf("Tensors must have same number of dimensions: got %d and %d", len(first), len(s)))
		}
		for j := range s {
			if j != d && s[j] != first[j] {
				panic(fmt.Sprintf("Sizes of tensors must match except in dimension %d. "+
					"Expected size %d but got size %d for tensor number %d in the list.", d, first[j], s[j], i))
			}
		}
		total += s[d]
		dtype = tensor.PromoteTypes(dtype, t.DType())
	}

	outShape := first.Clone()
	outShape[d] = total
	result := cpu.alloc(outShape, dtype)

	outer, _, inner := lanes(outShape, d)
	offset := 0
	for _, t := range tensors {
		n := t.Shape()[d]
		for o := 0; o < outer; o++ {
			for k := 0; k < n*inner; k++ {
				result.SetAt((o*total+offset)*inner+k, t.At(o*n*inner+k))
			}
		}
		offset += n
	}
	return result
}

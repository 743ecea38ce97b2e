package tensor

import (
	"fmt"
	"math"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1 // Scalar has 1 element
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid: every dimension is >= 0 and the
// element count fits in an int.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("Trying to create tensor with negative dimension %d: %v (dim %d)", dim, []int(s), i)
		}
	}
	if _, ok := s.checkedNumElements(); !ok {
		return fmt.Errorf("numel: integer multiplication overflow for sizes %v", []int(s))
	}
	return nil
}

// checkedNumElements is NumElements for non-negative dimensions, reporting
// false when the product overflows. A zero dimension makes the count 0
// whatever the other dimensions are.
func (s Shape) checkedNumElements() (int, bool) {
	n := 1
	overflow := false
	for _, dim := range s {
		if dim == 0 {
			return 0, true
		}
		if n > math.MaxInt/dim {
			overflow = true
		}
		n *= dim
	}
	return n, !overflow
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// NormalizeDim wraps a possibly negative dimension into [0, rank).
func (s Shape) NormalizeDim(dim int) (int, error) {
	return normalizeDim(dim, len(s))
}

func normalizeDim(dim, rank int) (int, error) {
	lo, hi := -rank, rank-1
	if rank == 0 {
		lo, hi = -1, 0
	}
	if dim < lo || dim > hi {
		return 0, fmt.Errorf("Dimension out of range (expected to be in range of [%d, %d], but got %d)", lo, hi, dim)
	}
	if dim < 0 {
		dim += rank
	}
	if dim < 0 {
		dim = 0
	}
	return dim, nil
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Shapes are compared right to left; dimensions are compatible when equal or
// when one of them is 1, and missing dimensions are treated as 1.
//
// Returns the broadcasted shape, a flag indicating if broadcasting is needed, and an error if incompatible.
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(3, 4) + (3, 5) → nil, false, Error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := len(a) != len(b)

	for i := 0; i < maxLen; i++ {
		aIdx := len(a) - 1 - i
		bIdx := len(b) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = a[aIdx]
		}

		bDim := 1
		if bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf(
				"The size of tensor a (%d) must match the size of tensor b (%d) at non-singleton dimension %d",
				aDim, bDim, maxLen-1-i)
		}
	}
	if err := result.Validate(); err != nil {
		return nil, false, err
	}

	return result, needsBroadcast, nil
}

// BroadcastIndex maps a flat index in the broadcast output shape back to a
// flat index into a source tensor of shape src.
func BroadcastIndex(flat int, out, src Shape) int {
	srcStrides := src.ComputeStrides()
	offset := len(out) - len(src)
	idx := 0
	for d := len(out) - 1; d >= 0; d-- {
		coord := flat % out[d]
		flat /= out[d]
		sd := d - offset
		if sd < 0 {
			continue
		}
		if src[sd] != 1 {
			idx += coord * srcStrides[sd]
		}
	}
	return idx
}

// Unravel converts a flat row-major index into coordinates.
func (s Shape) Unravel(flat int) []int {
	coords := make([]int, len(s))
	for d := len(s) - 1; d >= 0; d-- {
		if s[d] == 0 {
			continue
		}
		coords[d] = flat % s[d]
		flat /= s[d]
	}
	return coords
}

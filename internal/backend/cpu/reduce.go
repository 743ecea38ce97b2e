package cpu

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Reduce reduces x over dims (all dims when empty).
//
// Output types follow the reduction: sum widens bool and integer inputs to
// int64, mean requires a floating or complex input, all/any produce bool,
// count_nonzero produces int64 and amax/amin keep the input type.
func (cpu *CPUBackend) Reduce(op tensor.ReduceOp, x *tensor.RawTensor, dims []int, keepDim bool) *tensor.RawTensor {
	dt := x.DType()
	mask := dimMask(op.String(), x.Shape(), dims)
	outShape, groups := groupBy(x.Shape(), mask, keepDim)

	var out tensor.DataType
	switch op {
	case tensor.OpSum:
		out = dt
		if dt.IsIntegral(true) {
			out = tensor.Int64
		}
	case tensor.OpMean:
		if dt.IsIntegral(true) {
			panic(fmt.Sprintf("mean(): could not infer output dtype. Input dtype must be either a floating point "+
				"or complex dtype. Got: %s", scalarTypeName(dt)))
		}
		out = dt
	case tensor.OpAll, tensor.OpAny:
		out = tensor.Bool
	case tensor.OpCountNonzero:
		out = tensor.Int64
	case tensor.OpAMax, tensor.OpAMin:
		if dt.IsComplex() {
			panic(fmt.Sprintf("%s(): does not support complex input", op))
		}
		out = dt
		if x.NumElements() == 0 {
			panic(fmt.Sprintf("%s(): Expected reduction dim to be specified for input.numel() == 0. "+
				"Specify the reduction dim with the 'dim' argument.", op))
		}
	default:
		panic(fmt.Sprintf("unsupported reduction %s", op))
	}

	result := cpu.alloc(outShape, out)
	for g, idx := range groups {
		result.SetAt(g, reduceGroup(op, x, idx, out))
	}
	return result
}

func reduceGroup(op tensor.ReduceOp, x *tensor.RawTensor, idx []int, out tensor.DataType) tensor.Value {
	dt := x.DType()
	switch op {
	case tensor.OpAll, tensor.OpAny, tensor.OpCountNonzero:
		n := 0
		for _, i := range idx {
			if x.At(i).Bool() {
				n++
			}
		}
		switch op {
		case tensor.OpAll:
			return tensor.BoolValue(n == len(idx))
		case tensor.OpAny:
			return tensor.BoolValue(n > 0)
		}
		return tensor.IntValue(int64(n), tensor.Int64)

	case tensor.OpAMax, tensor.OpAMin:
		best := x.At(idx[0])
		for _, i := range idx[1:] {
			v := x.At(i)
			if best.IsNaN() {
				break
			}
			if v.IsNaN() {
				best = v
				continue
			}
			c := compareValues(tensor.OpGt, v, best)
			if op == tensor.OpAMin {
				c = compareValues(tensor.OpLt, v, best)
			}
			if c {
				best = v
			}
		}
		return best
	}

	switch {
	case dt.IsComplex():
		var sum complex128
		for _, i := range idx {
			sum += x.At(i).Complex()
		}
		if op == tensor.OpMean {
			sum /= complex(float64(len(idx)), 0)
		}
		return tensor.ComplexValue(sum, out)
	case dt.IsFloatingPoint():
		xs := gather(x, idx)
		if op == tensor.OpMean {
			if len(xs) == 0 {
				return tensor.FloatValue(math.NaN(), out)
			}
			return tensor.FloatValue(stat.Mean(xs, nil), out)
		}
		return tensor.FloatValue(floats.Sum(xs), out)
	case dt.IsUnsigned():
		var sum uint64
		for _, i := range idx {
			sum += x.At(i).Uint()
		}
		return tensor.UintValue(sum, out)
	}
	var sum int64
	for _, i := range idx {
		sum += x.At(i).Int()
	}
	return tensor.IntValue(sum, out)
}

func gather(x *tensor.RawTensor, idx []int) []float64 {
	xs := make([]float64, len(idx))
	for k, i := range idx {
		xs[k] = x.At(i).Float()
	}
	return xs
}

// ArgReduce returns int64 indices of the max (argmax) or min (argmin)
// element. With a nil dim the input is treated as flattened. NaN compares
// greater than every number and the first extreme wins ties.
func (cpu *CPUBackend) ArgReduce(op tensor.ReduceOp, x *tensor.RawTensor, dim *int, keepDim bool) *tensor.RawTensor {
	if x.DType().IsComplex() {
		panic(fmt.Sprintf("\"%s_cpu\" not implemented for '%s'", op, scalarTypeName(x.DType())))
	}
	isMin := op == tensor.OpArgMin

	if dim == nil {
		if x.NumElements() == 0 {
			panic(fmt.Sprintf("%s(): Expected reduction dim to be specified for input.numel() == 0.", op))
		}
		flat := make([]int, x.NumElements())
		for i := range flat {
			flat[i] = i
		}
		best := extreme(x, flat, isMin)

		shape := tensor.Shape{}
		if keepDim {
			shape = make(tensor.Shape, len(x.Shape()))
			for d := range shape {
				shape[d] = 1
			}
		}
		result := cpu.alloc(shape, tensor.Int64)
		result.SetAt(0, tensor.IntValue(int64(best), tensor.Int64))
		return result
	}

	_, indices := cpu.MaxMin(x, *dim, keepDim, isMin)
	return indices
}

// MaxMin returns the max (or min) values along dim together with their
// int64 positions.
func (cpu *CPUBackend) MaxMin(x *tensor.RawTensor, dim int, keepDim, isMin bool) (values, indices *tensor.RawTensor) {
	name := "max"
	if isMin {
		name = "min"
	}
	if x.DType().IsComplex() {
		panic(fmt.Sprintf("%s(): does not support complex input", name))
	}

	shape := x.Shape()
	d, err := shape.NormalizeDim(dim)
	if err != nil {
		panic(err.Error())
	}
	if len(shape) == 0 {
		return x.Clone(), cpu.alloc(tensor.Shape{}, tensor.Int64)
	}
	if shape[d] == 0 {
		panic(fmt.Sprintf("%s(): Expected reduction dim %d to have non-zero size.", name, d))
	}

	mask := make([]bool, len(shape))
	mask[d] = true
	outShape := reducedShape(shape, mask, keepDim)
	values = cpu.alloc(outShape, x.DType())
	indices = cpu.alloc(outShape, tensor.Int64)

	outer, size, inner := lanes(shape, d)
	lane := make([]int, size)
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			for k := range lane {
				lane[k] = (o*size+k)*inner + in
			}
			best := extreme(x, lane, isMin)
			values.SetAt(o*inner+in, x.At(lane[best]))
			indices.SetAt(o*inner+in, tensor.IntValue(int64(best), tensor.Int64))
		}
	}
	return values, indices
}

// extreme returns the position in idx of the largest (or smallest) element.
func extreme(x *tensor.RawTensor, idx []int, isMin bool) int {
	best := 0
	bv := x.At(idx[0])
	for k := 1; k < len(idx) && !bv.IsNaN(); k++ {
		v := x.At(idx[k])
		if v.IsNaN() {
			return k
		}
		op := tensor.OpGt
		if isMin {
			op = tensor.OpLt
		}
		if compareValues(op, v, bv) {
			best, bv = k, v
		}
	}
	return best
}

// VarStd computes the variance (or standard deviation) with the given
// degrees-of-freedom correction.
func (cpu *CPUBackend) VarStd(x *tensor.RawTensor, dim *int, correction int, keepDim, std bool) *tensor.RawTensor {
	name := "var"
	if std {
		name = "std"
	}
	dt := x.DType()
	if !dt.IsFloatingPoint() {
		panic(fmt.Sprintf("%s only supports floating-point dtypes", name))
	}

	var dims []int
	if dim != nil {
		dims = []int{*dim}
	}
	mask := dimMask(name, x.Shape(), dims)
	outShape, groups := groupBy(x.Shape(), mask, keepDim)

	result := cpu.alloc(outShape, dt)
	for g, idx := range groups {
		xs := gather(x, idx)
		n := float64(len(xs))
		v := math.NaN()
		if len(xs) > 0 {
			v = stat.PopVariance(xs, nil) * n / (n - float64(correction))
			if n-float64(correction) <= 0 {
				v = math.NaN()
			}
		}
		if std {
			v = math.Sqrt(v)
		}
		result.SetAt(g, tensor.FloatValue(v, dt))
	}
	return result
}

package native_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/tensor"
)

func vec(t *testing.T, lib *native.Library, dtype string, vals ...float64) *native.Tensor {
	t.Helper()
	scalars := make([]native.Scalar, len(vals))
	for i, v := range vals {
		scalars[i] = f64(v)
	}
	x, err := lib.Tensor(list(dtype, []int64{int64(len(vals))}, scalars...), native.DefaultTensorOptions)
	require.NoError(t, err)
	return x
}

func ptr(v int64) *int64 { return &v }

func TestPointwise(t *testing.T) {
	lib := open(t)
	a := vec(t, lib, "float32", 1, 4, 9)
	b := vec(t, lib, "float32", 1, 2, 3)

	sum, err := lib.Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 6, 12}, floats(t, lib, sum))

	diff, err := lib.Sub(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 6}, floats(t, lib, diff))

	prod, err := lib.Mul(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 8, 27}, floats(t, lib, prod))

	quot, err := lib.Div(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, floats(t, lib, quot))

	root, err := lib.Sqrt(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, floats(t, lib, root))

	neg, err := lib.Neg(b)
	require.NoError(t, err)
	abs, err := lib.Abs(neg)
	require.NoError(t, err)
	assert.Equal(t, floats(t, lib, b), floats(t, lib, abs))

	zero := vec(t, lib, "float64", 0)
	for name, fn := range map[string]func(*native.Tensor) (*native.Tensor, error){
		"exp": lib.Exp, "cos": lib.Cos,
	} {
		out, err := fn(zero)
		require.NoError(t, err, name)
		assert.Equal(t, []float64{1}, floats(t, lib, out), name)
	}
	for name, fn := range map[string]func(*native.Tensor) (*native.Tensor, error){
		"sin": lib.Sin,
	} {
		out, err := fn(zero)
		require.NoError(t, err, name)
		assert.Equal(t, []float64{0}, floats(t, lib, out), name)
	}

	one := vec(t, lib, "float64", 1)
	ln, err := lib.Log(one)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, floats(t, lib, ln))
}

func TestMaximumPropagatesNaN(t *testing.T) {
	lib := open(t)
	a := vec(t, lib, "float64", 1, math.NaN())
	b := vec(t, lib, "float64", 2, 0)

	m, err := lib.Maximum(a, b)
	require.NoError(t, err)
	got := floats(t, lib, m)
	assert.Equal(t, 2.0, got[0])
	assert.True(t, math.IsNaN(got[1]))

	f, err := lib.FMax(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0}, floats(t, lib, f))

	mn, err := lib.Minimum(a, b)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(floats(t, lib, mn)[1]))

	fmn, err := lib.FMin(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, floats(t, lib, fmn))
}

func TestComparison(t *testing.T) {
	lib := open(t)
	a := vec(t, lib, "float32", 1, 2, 3)
	b := vec(t, lib, "float32", 3, 2, 1)

	cases := []struct {
		name string
		fn   func(a, b *native.Tensor) (*native.Tensor, error)
		want []int64
	}{
		{"eq", lib.Eq, []int64{0, 1, 0}},
		{"ne", lib.Ne, []int64{1, 0, 1}},
		{"gt", lib.Gt, []int64{0, 0, 1}},
		{"ge", lib.Ge, []int64{0, 1, 1}},
		{"lt", lib.Lt, []int64{1, 0, 0}},
		{"le", lib.Le, []int64{1, 1, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := tc.fn(a, b)
			require.NoError(t, err)
			assert.Equal(t, "bool", lib.DType(out))
			assert.Equal(t, tc.want, ints(t, lib, out))
		})
	}

	eq, err := lib.Equal(a, a)
	require.NoError(t, err)
	assert.True(t, eq)
	eq, err = lib.Equal(a, b)
	require.NoError(t, err)
	assert.False(t, eq)
	eq, err = lib.Equal(a, vec(t, lib, "float32", 1, 2))
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestCloseness(t *testing.T) {
	lib := open(t)
	a := vec(t, lib, "float64", 1, 2, math.NaN())
	b := vec(t, lib, "float64", 1+1e-9, 2.5, math.NaN())

	c, err := lib.IsClose(a, b, 1e-5, 1e-8, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 0, 0}, ints(t, lib, c))

	c, err = lib.IsClose(a, b, 1e-5, 1e-8, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 0, 1}, ints(t, lib, c))

	all, err := lib.AllClose(a, a, 1e-5, 1e-8, true)
	require.NoError(t, err)
	assert.True(t, all)
	all, err = lib.AllClose(a, b, 1e-5, 1e-8, true)
	require.NoError(t, err)
	assert.False(t, all)

	in, err := lib.IsIn(vec(t, lib, "float64", 1, 5), vec(t, lib, "float64", 5, 6))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1}, ints(t, lib, in))
}

func TestClassification(t *testing.T) {
	lib := open(t)
	x := vec(t, lib, "float64", 1, math.Inf(1), math.Inf(-1), math.NaN())

	cases := []struct {
		name string
		fn   func(*native.Tensor) (*native.Tensor, error)
		want []int64
	}{
		{"isnan", lib.IsNaN, []int64{0, 0, 0, 1}},
		{"isinf", lib.IsInf, []int64{0, 1, 1, 0}},
		{"isposinf", lib.IsPosInf, []int64{0, 1, 0, 0}},
		{"isneginf", lib.IsNegInf, []int64{0, 0, 1, 0}},
		{"isfinite", lib.IsFinite, []int64{1, 0, 0, 0}},
		{"isreal", lib.IsReal, []int64{1, 1, 1, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := tc.fn(x)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ints(t, lib, out))
		})
	}
}

func TestSorting(t *testing.T) {
	lib := open(t)
	x := vec(t, lib, "float32", 3, 1, 2)

	sorted, err := lib.Sort(x, -1, false, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, floats(t, lib, sorted[0]))
	assert.Equal(t, []int64{1, 2, 0}, ints(t, lib, sorted[1]))

	idx, err := lib.ArgSort(x, 0, true, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 2, 1}, ints(t, lib, idx))

	ms, err := lib.MSort(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, floats(t, lib, ms))

	top, err := lib.TopK(x, 2, 0, true, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2}, floats(t, lib, top[0]))
	assert.Equal(t, []int64{0, 2}, ints(t, lib, top[1]))

	_, err = lib.TopK(x, 4, 0, true, true)
	require.Error(t, err)

	kth, err := lib.KthValue(x, 2, 0, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, floats(t, lib, kth[0]))
	assert.Equal(t, []int64{2}, ints(t, lib, kth[1]))
}

func TestReductions(t *testing.T) {
	lib := open(t)
	x, err := lib.Tensor(list("float32", []int64{2, 3},
		f64(1), f64(2), f64(3), f64(4), f64(5), f64(6)), native.DefaultTensorOptions)
	require.NoError(t, err)

	sum, err := lib.Sum(x, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{21}, floats(t, lib, sum))

	rows, err := lib.Sum(x, ptr(1), true)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, lib.Size(rows))
	assert.Equal(t, []float64{6, 15}, floats(t, lib, rows))

	mean, err := lib.Mean(x, ptr(0), false)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 3.5, 4.5}, floats(t, lib, mean))

	amax, err := lib.AMax(x, []int64{0, 1}, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, floats(t, lib, amax))

	amin, err := lib.AMin(x, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, floats(t, lib, amin))

	argmax, err := lib.ArgMax(x, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ints(t, lib, argmax))

	argmin, err := lib.ArgMin(x, ptr(1), false)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0}, ints(t, lib, argmin))

	mx, err := lib.Max(x, 1, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6}, floats(t, lib, mx[0]))
	assert.Equal(t, []int64{2, 2}, ints(t, lib, mx[1]))

	mn, err := lib.Min(x, 0, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, lib.Size(mn[0]))

	v, err := lib.Var(x, nil, 1, false)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, floats(t, lib, v)[0], 1e-6)

	s, err := lib.Std(x, ptr(1), 0, false)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Sqrt(2.0 / 3), math.Sqrt(2.0 / 3)}, floats(t, lib, s), 1e-6)

	nz, err := lib.CountNonzero(vec(t, lib, "float32", 0, 1, 2, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ints(t, lib, nz))

	all, err := lib.All(x, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ints(t, lib, all))

	anyv, err := lib.Any(vec(t, lib, "float32", 0, 0), nil, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, ints(t, lib, anyv))

	_, err = lib.Mean(vec(t, lib, "int64", 1, 2), nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mean(): could not infer output dtype")
}

func TestManipulation(t *testing.T) {
	lib := open(t)
	x, err := lib.Arange(i64(0), i64(6), i64(1), native.DefaultTensorOptions)
	require.NoError(t, err)

	r, err := lib.Reshape(x, []int64{2, -1})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, lib.Size(r))

	tr, err := lib.Transpose(r, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, lib.Size(tr))
	assert.Equal(t, []int64{0, 3, 1, 4, 2, 5}, ints(t, lib, tr))

	u, err := lib.Unsqueeze(x, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 6}, lib.Size(u))

	sq, err := lib.Squeeze(u, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, lib.Size(sq))

	c, err := lib.Cat([]*native.Tensor{r, r}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3}, lib.Size(c))

	_, err = lib.Cat(nil, 0)
	require.Error(t, err)

	_, err = lib.Reshape(x, []int64{4, -1})
	require.Error(t, err)
}

func TestIndexing(t *testing.T) {
	lib := open(t)
	x, err := lib.Arange(i64(0), i64(6), i64(1), native.DefaultTensorOptions)
	require.NoError(t, err)
	m, err := lib.Reshape(x, []int64{2, 3})
	require.NoError(t, err)

	row, err := lib.Index(m, native.TorchIndex{{Kind: tensor.IndexInteger, Integer: 1}})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 5}, ints(t, lib, row))

	step := int64(2)
	cols, err := lib.Index(m, native.TorchIndex{
		{Kind: tensor.IndexEllipsis},
		{Kind: tensor.IndexSlice, Step: &step},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2}, lib.Size(cols))
	assert.Equal(t, []int64{0, 2, 3, 5}, ints(t, lib, cols))

	_, err = lib.Index(m, native.TorchIndex{{Kind: tensor.IndexInteger, Integer: 5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 5 is out of bounds for dimension 0 with size 2")

	nine := i64(9)
	put, err := lib.IndexPut(m, native.TorchIndex{{Kind: tensor.IndexInteger, Integer: 0}},
		native.TensorOrScalar{Scalar: &nine})
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 9, 9, 3, 4, 5}, ints(t, lib, put))
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5}, ints(t, lib, m))

	_, err = lib.IndexPut(m, nil, native.TensorOrScalar{})
	require.Error(t, err)
}

func TestInfo(t *testing.T) {
	lib := open(t)

	one := vec(t, lib, "float64", 2.5)
	item, err := lib.Item(one)
	require.NoError(t, err)
	v, err := item.Value()
	require.NoError(t, err)
	assert.Equal(t, 2.5, v.Float())

	nz, err := lib.IsNonzero(one)
	require.NoError(t, err)
	assert.True(t, nz)

	many := vec(t, lib, "float64", 1, 2)
	_, err = lib.Item(many)
	require.Error(t, err)
	_, err = lib.IsNonzero(many)
	require.Error(t, err)

	assert.True(t, lib.IsFloatingPoint(one))
	assert.False(t, lib.IsComplex(one))

	half := vec(t, lib, "float16", 1.5)
	item, err = lib.Item(half)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, item.Type)
}

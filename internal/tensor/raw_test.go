package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRawZeroFilled(t *testing.T) {
	raw, err := NewRaw(Shape{3, 2}, Int64, DefaultCPU)
	require.NoError(t, err)

	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 48, raw.ByteSize())
	assert.Equal(t, []int{2, 1}, raw.Strides())
	for i := 0; i < raw.NumElements(); i++ {
		assert.Equal(t, int64(0), raw.At(i).Int())
	}
}

func TestNewRawZeroSizedDim(t *testing.T) {
	raw, err := NewRaw(Shape{0, 3}, Float32, DefaultCPU)
	require.NoError(t, err)
	assert.Equal(t, 0, raw.NumElements())
	assert.Empty(t, raw.Data())
}

func TestNewRawNegativeDim(t *testing.T) {
	_, err := NewRaw(Shape{2, -1}, Float32, DefaultCPU)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative dimension -1")
}

func TestNewRawElementCountOverflow(t *testing.T) {
	_, err := NewRaw(Shape{1 << 32, 1 << 32}, Float32, DefaultCPU)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numel: integer multiplication overflow")

	_, err = NewRaw(Shape{math.MaxInt / 2}, Float64, DefaultCPU)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Storage size calculation overflowed")

	// A zero dimension wins over an overflowing product.
	raw, err := NewRaw(Shape{1 << 40, 1 << 40, 0}, Float32, DefaultCPU)
	require.NoError(t, err)
	assert.Equal(t, 0, raw.NumElements())
}

func TestRawTensorViewRejectsOverflow(t *testing.T) {
	raw := MustNewRaw(Shape{0}, Float32, DefaultCPU)
	_, err := raw.View(Shape{1 << 32, 1 << 32})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numel: integer multiplication overflow")
}

func TestRawTensorRelease(t *testing.T) {
	raw := MustNewRaw(Shape{2, 2}, Float32, DefaultCPU)
	assert.True(t, raw.IsUnique())

	view := raw.Clone()
	assert.False(t, raw.IsUnique())
	assert.Equal(t, 2, raw.RefCount())

	view.Release()
	assert.True(t, raw.IsUnique())
	raw.Release()
	assert.Equal(t, 0, raw.RefCount())
}

func TestRawTensorViewSharesBuffer(t *testing.T) {
	raw := MustNewRaw(Shape{2, 3}, Int32, DefaultCPU)
	for i := 0; i < 6; i++ {
		raw.SetAt(i, IntValue(int64(i), Int64))
	}

	view, err := raw.View(Shape{3, 2})
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, view.Shape())
	assert.Equal(t, int64(5), view.At(5).Int())
	assert.Equal(t, 2, raw.RefCount())

	_, err = raw.View(Shape{4})
	require.Error(t, err)
	assert.Equal(t, "shape '[4]' is invalid for input of size 6", err.Error())
}

func TestRawTensorConjView(t *testing.T) {
	raw := MustNewRaw(Shape{1}, Complex64, DefaultCPU)
	raw.SetAt(0, ComplexValue(complex(1, 2), Complex128))

	c := raw.ConjView()
	assert.True(t, c.IsConj())
	assert.False(t, raw.IsConj())
	assert.Equal(t, complex(1, -2), c.At(0).Complex())
	assert.Equal(t, complex(1, 2), raw.At(0).Complex())
}

func TestRawTensorWithFlags(t *testing.T) {
	raw := MustNewRaw(Shape{2}, Float32, DefaultCPU)
	g := raw.WithFlags(true)
	assert.True(t, g.RequiresGrad())
	assert.False(t, raw.RequiresGrad())
}

func TestElementRoundTrip(t *testing.T) {
	tests := []struct {
		dtype DataType
		in    Value
		check func(t *testing.T, v Value)
	}{
		{Bool, BoolValue(true), func(t *testing.T, v Value) { assert.True(t, v.Bool()) }},
		{Uint8, UintValue(255, Uint64), func(t *testing.T, v Value) { assert.Equal(t, uint64(255), v.Uint()) }},
		{Int8, IntValue(-128, Int64), func(t *testing.T, v Value) { assert.Equal(t, int64(-128), v.Int()) }},
		{Int16, IntValue(-300, Int64), func(t *testing.T, v Value) { assert.Equal(t, int64(-300), v.Int()) }},
		{Int32, IntValue(math.MinInt32, Int64), func(t *testing.T, v Value) { assert.Equal(t, int64(math.MinInt32), v.Int()) }},
		{Int64, IntValue(math.MaxInt64, Int64), func(t *testing.T, v Value) { assert.Equal(t, int64(math.MaxInt64), v.Int()) }},
		{Uint64, UintValue(math.MaxUint64, Uint64), func(t *testing.T, v Value) { assert.Equal(t, uint64(math.MaxUint64), v.Uint()) }},
		{Float16, FloatValue(0.5, Float64), func(t *testing.T, v Value) { assert.Equal(t, 0.5, v.Float()) }},
		{BFloat16, FloatValue(-2, Float64), func(t *testing.T, v Value) { assert.Equal(t, -2.0, v.Float()) }},
		{Float32, FloatValue(1.25, Float64), func(t *testing.T, v Value) { assert.Equal(t, 1.25, v.Float()) }},
		{Float64, FloatValue(math.Pi, Float64), func(t *testing.T, v Value) { assert.Equal(t, math.Pi, v.Float()) }},
		{Complex128, ComplexValue(complex(3, -4), Complex128), func(t *testing.T, v Value) {
			assert.Equal(t, complex(3, -4), v.Complex())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.dtype.String(), func(t *testing.T) {
			raw := MustNewRaw(Shape{1}, tt.dtype, DefaultCPU)
			raw.SetAt(0, tt.in)
			v := raw.At(0)
			assert.Equal(t, tt.dtype, v.Type)
			tt.check(t, v)
		})
	}
}

func TestValueConvert(t *testing.T) {
	assert.Equal(t, int64(2), FloatValue(2.9, Float64).Convert(Int64).Int())
	assert.Equal(t, int64(-2), FloatValue(-2.9, Float64).Convert(Int32).Int())
	assert.True(t, IntValue(7, Int64).Convert(Bool).Bool())
	assert.False(t, FloatValue(0, Float32).Convert(Bool).Bool())
	assert.Equal(t, complex(3, 0), IntValue(3, Int64).Convert(Complex64).Complex())
	assert.True(t, FloatValue(math.NaN(), Float64).IsNaN())
}

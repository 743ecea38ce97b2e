package codec

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorbridge/internal/errs"
	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/tensor"
	"github.com/born-ml/tensorbridge/internal/term"
)

func requireReason(t *testing.T, err error, reason string) {
	t.Helper()
	var derr *errs.DecodeError
	require.True(t, errors.As(err, &derr), "expected a decode error, got %v", err)
	assert.Equal(t, reason, derr.Reason)
}

func TestSizeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for n := 0; n <= 8; n++ {
		for range 16 {
			size := make([]int64, n)
			for i := range size {
				size[i] = int64(rng.Uint64())
			}
			got, err := DecodeSize(EncodeSize(size))
			require.NoError(t, err)
			assert.Equal(t, size, got)
		}
	}
}

func TestDecodeSize(t *testing.T) {
	got, err := DecodeSize(term.MustParse("[2, 3, 4]"))
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4}, got)

	got, err = DecodeSize(term.MustParse("{}"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = DecodeSize(term.MustParse("[2, :a]"))
	requireReason(t, err, errs.InvalidSize)

	_, err = DecodeSize(term.MustParse("{1.5}"))
	requireReason(t, err, errs.InvalidSize)

	_, err = DecodeSize(term.NewInt(3))
	requireReason(t, err, errs.InvalidSize)
}

func TestDevice(t *testing.T) {
	tests := []struct {
		src  string
		want native.Device
	}{
		{`"cuda:1"`, native.Device{Name: "cuda", Index: 1}},
		{`"cpu"`, native.Device{Name: "cpu", Index: -1}},
		{":cpu", native.CPU},
		{"{:cuda, 0}", native.Device{Name: "cuda", Index: 0}},
		{"{:mps, -1}", native.Device{Name: "mps", Index: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := DecodeDevice(term.MustParse(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			back, err := DecodeDevice(EncodeDevice(got))
			require.NoError(t, err)
			assert.Equal(t, got, back)
		})
	}

	assert.Equal(t, term.Atom("cpu"), EncodeDevice(native.CPU))
	if diff := cmp.Diff(term.MustParse("{:cuda, 1}"), EncodeDevice(native.Device{Name: "cuda", Index: 1})); diff != "" {
		t.Errorf("EncodeDevice mismatch (-want +got):\n%s", diff)
	}

	for _, src := range []string{`"cuda:x"`, `"cuda:"`, "nil", "7", "{:cuda, :one}"} {
		t.Run("rejects "+src, func(t *testing.T) {
			_, err := DecodeDevice(term.MustParse(src))
			requireReason(t, err, errs.InvalidDevice)
		})
	}

	_, err := DecodeDevice(term.Binary("cuda:x"))
	assert.Contains(t, err.Error(), `device index "x" is not an integer`)
}

func TestNesting(t *testing.T) {
	tests := []struct {
		name string
		src  string
		size []int64
	}{
		{"2d", "[[1, 2, 3], [4, 5, 6]]", []int64{2, 3}},
		{"3d", "[[[1, 2], [3, 4]], [[5, 6], [7, 8]], [[9, 10], [11, 12]]]", []int64{3, 2, 2}},
		{"degenerate dim", "[[[1], [2]], [[3], [4]]]", []int64{2, 2, 1}},
		{"single element", "[[7]]", []int64{1, 1}},
		{"flat", "[1, 2]", []int64{2}},
		{"bare", "5", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nested := term.MustParse(tt.src)
			flat, size, err := Flatten(nested)
			require.NoError(t, err)
			assert.Equal(t, tt.size, size)
			if diff := cmp.Diff(nested, Nest(flat, size)); diff != "" {
				t.Errorf("Nest(Flatten(x)) mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		flat, size, err := Flatten(term.List{})
		require.NoError(t, err)
		assert.Empty(t, flat)
		assert.Equal(t, []int64{0}, size)
		assert.Equal(t, term.List{}, Nest(nil, []int64{2, 0}))
	})

	t.Run("ragged", func(t *testing.T) {
		_, _, err := Flatten(term.MustParse("[[1, 2], [3]]"))
		requireReason(t, err, errs.InvalidList)
	})
}

func TestScalarList(t *testing.T) {
	t.Run("nested list", func(t *testing.T) {
		src := term.MustParse("[[1, 2, 3], [4, 5, 6]]")
		l, err := DecodeScalarList(src)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 3}, l.Size)
		assert.Len(t, l.Scalars, 6)
		assert.Empty(t, l.DType)

		back, err := EncodeScalarList(l)
		require.NoError(t, err)
		if diff := cmp.Diff(src, back); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("list wrapper", func(t *testing.T) {
		src := term.MustParse("%ExTorch.Utils.ListWrapper{list: [1, 2.5, :nan, 4], size: {2, 2}, dtype: :double}")
		l, err := DecodeScalarList(src)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 2}, l.Size)
		assert.Equal(t, "double", l.DType)
		for _, s := range l.Scalars {
			assert.Equal(t, tensor.Float64, s.Type)
		}

		back, err := EncodeScalarList(l)
		require.NoError(t, err)
		if diff := cmp.Diff(term.MustParse("[[1.0, 2.5], [:nan, 4.0]]"), back); diff != "" {
			t.Errorf("EncodeScalarList mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("wrapper without size", func(t *testing.T) {
		l, err := DecodeScalarList(term.MustParse("%ExTorch.Utils.ListWrapper{list: [true, false], size: nil, dtype: nil}"))
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, l.Size)
		assert.Equal(t, tensor.Bool, l.Scalars[0].Type)
	})

	t.Run("bad element", func(t *testing.T) {
		_, err := DecodeScalarList(term.MustParse(`[1, "two"]`))
		requireReason(t, err, errs.InvalidScalarType)
	})
}

func TestDecodeIndex(t *testing.T) {
	marker := &native.Tensor{}
	resolveAll := func(term.Term) (*native.Tensor, bool, error) { return marker, true, nil }
	resolveNone := func(term.Term) (*native.Tensor, bool, error) { return nil, false, nil }

	idx, err := DecodeIndex(term.MustParse(
		"[nil, :ellipsis, true, 0, -2, %ExTorch.Index.Slice{start: 1, stop: 9, step: 2, mask: 5}]"), resolveNone)
	require.NoError(t, err)
	require.Len(t, idx, 6)
	assert.Equal(t, tensor.IndexNone, idx[0].Kind)
	assert.Equal(t, tensor.IndexEllipsis, idx[1].Kind)
	assert.Equal(t, tensor.IndexBoolean, idx[2].Kind)
	assert.True(t, idx[2].Boolean)
	assert.Equal(t, tensor.IndexInteger, idx[3].Kind)
	assert.Equal(t, int64(0), idx[3].Integer)
	assert.Equal(t, int64(-2), idx[4].Integer)

	slice := idx[5]
	assert.Equal(t, tensor.IndexSlice, slice.Kind)
	require.NotNil(t, slice.Start)
	assert.Equal(t, int64(1), *slice.Start)
	assert.Nil(t, slice.Stop, "stop bit is not set in the mask")
	require.NotNil(t, slice.Step)
	assert.Equal(t, int64(2), *slice.Step)

	t.Run("integer wins over tensor", func(t *testing.T) {
		idx, err := DecodeIndex(term.MustParse("[0]"), resolveAll)
		require.NoError(t, err)
		assert.Equal(t, tensor.IndexInteger, idx[0].Kind)
		assert.Nil(t, idx[0].Tensor)
	})

	t.Run("single element", func(t *testing.T) {
		idx, err := DecodeIndex(term.NewInt(3), resolveNone)
		require.NoError(t, err)
		require.Len(t, idx, 1)
		assert.Equal(t, int64(3), idx[0].Integer)
	})

	t.Run("tensor entry", func(t *testing.T) {
		idx, err := DecodeIndex(term.MustParse(`["handle"]`), resolveAll)
		require.NoError(t, err)
		assert.Equal(t, tensor.IndexTensor, idx[0].Kind)
		assert.Same(t, marker, idx[0].Tensor)
	})

	t.Run("slice without mask", func(t *testing.T) {
		idx, err := DecodeIndex(term.MustParse("[%ExTorch.Index.Slice{start: nil, stop: 4}]"), resolveNone)
		require.NoError(t, err)
		assert.Nil(t, idx[0].Start)
		require.NotNil(t, idx[0].Stop)
		assert.Equal(t, int64(4), *idx[0].Stop)
	})

	t.Run("slice encoding", func(t *testing.T) {
		stop := int64(4)
		s := EncodeSlice(nil, &stop, nil)
		got, ok := s.(term.Struct).Get("mask")
		require.True(t, ok)
		assert.Equal(t, term.NewInt(SliceStop), got)
	})

	for _, src := range []string{`["x"]`, "[:foo]", "[1.5]", "[[1]]"} {
		t.Run("rejects "+src, func(t *testing.T) {
			_, err := DecodeIndex(term.MustParse(src), resolveNone)
			requireReason(t, err, errs.InvalidIndexType)
		})
	}
}

func TestOptions(t *testing.T) {
	want := native.TensorOptions{
		DType:        "int64",
		Layout:       "strided",
		Device:       native.Device{Name: "cuda", Index: 1},
		RequiresGrad: true,
		MemoryFormat: "contiguous",
	}

	t.Run("struct", func(t *testing.T) {
		got, err := DecodeOptions(term.MustParse(
			`%ExTorch.Tensor.Options{dtype: :int64, layout: :strided, device: "cuda:1", requires_grad: true, pin_memory: false, memory_format: :contiguous}`))
		require.NoError(t, err)
		assert.Equal(t, want, got)

		back, err := DecodeOptions(EncodeOptions(got))
		require.NoError(t, err)
		assert.Equal(t, got, back)
	})

	t.Run("positional", func(t *testing.T) {
		got, err := DecodeOptionsPositional([]term.Term{
			term.Atom("int64"), term.Atom("strided"), term.Tuple{term.Atom("cuda"), term.NewInt(1)},
			term.True, term.False, term.Atom("contiguous"),
		})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("partial struct keeps defaults", func(t *testing.T) {
		got, err := DecodeOptions(term.MustParse("%ExTorch.Tensor.Options{dtype: :float64}"))
		require.NoError(t, err)
		assert.Equal(t, "float64", got.DType)
		assert.Equal(t, native.CPU, got.Device)
		assert.Equal(t, "strided", got.Layout)
	})

	t.Run("nil", func(t *testing.T) {
		got, err := DecodeOptions(term.Nil)
		require.NoError(t, err)
		assert.Equal(t, native.DefaultTensorOptions, got)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := DecodeOptionsPositional([]term.Term{term.Nil})
		requireReason(t, err, errs.InvalidOptions)

		_, err = DecodeOptions(term.MustParse("%ExTorch.Tensor.Options{requires_grad: 1}"))
		requireReason(t, err, errs.InvalidBool)
		assert.Contains(t, err.Error(), "requires_grad")

		_, err = DecodeOptions(term.MustParse("%ExTorch.Tensor.Options{color: :red}"))
		requireReason(t, err, errs.InvalidOptions)

		_, err = DecodeOptions(term.MustParse("%ExTorch.Complex{real: 1, imaginary: 2}"))
		requireReason(t, err, errs.InvalidOptions)
	})
}

func TestPrintOptions(t *testing.T) {
	got, err := DecodePrintOptions(term.Nil)
	require.NoError(t, err)
	assert.Equal(t, native.PrintOptions{}, got)

	got, err = DecodePrintOptions(term.MustParse("%ExTorch.Utils.PrintOptions{precision: 2, sci_mode: false}"))
	require.NoError(t, err)
	assert.Equal(t, native.PrintOptions{
		Precision: 2,
		SciMode:   native.SciModeOff,
		Set:       native.PrintPrecision | native.PrintSciMode,
	}, got)

	got, err = DecodePrintOptions(term.MustParse("%ExTorch.Utils.PrintOptions{}"))
	require.NoError(t, err)
	assert.Equal(t, native.PrintOptions{}, got)

	got, err = DecodePrintOptions(term.MustParse("%ExTorch.Utils.PrintOptions{threshold: :inf, sci_mode: true}"))
	require.NoError(t, err)
	assert.Equal(t, native.SciModeOn, got.SciMode)

	_, err = DecodePrintOptions(term.MustParse("%ExTorch.Utils.PrintOptions{sci_mode: :maybe}"))
	requireReason(t, err, errs.InvalidPrintOptions)
}

func TestComplex(t *testing.T) {
	c, err := DecodeComplex(term.MustParse("{1, :ninf}"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, real(c))
	assert.True(t, imag(c) < 0)

	_, err = DecodeComplex(term.MustParse("%ExTorch.Complex{real: 1.0}"))
	requireReason(t, err, errs.InvalidComplex)
}

func TestPrimitives(t *testing.T) {
	_, err := DecodeInt(term.MustParse("99999999999999999999"))
	requireReason(t, err, errs.InvalidInteger)

	opt, err := DecodeOptionalInt(term.Nil)
	require.NoError(t, err)
	assert.Nil(t, opt)

	f, err := DecodeFloat(term.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, 4.0, f)

	_, err = DecodeString(term.Atom("x"))
	requireReason(t, err, errs.InvalidString)

	_, err = DecodeAtomString(term.Binary("x"))
	requireReason(t, err, errs.InvalidAtom)
	assert.Equal(t, term.Atom("float32"), EncodeAtomString("float32"))
}

package dispatch

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/born-ml/tensorbridge/internal/backend/cpu"
	"github.com/born-ml/tensorbridge/internal/errs"
	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/resource"
	"github.com/born-ml/tensorbridge/internal/tensor"
	"github.com/born-ml/tensorbridge/internal/term"
)

var testOps = []Op{
	{
		Name:    "ones",
		Args:    []Arg{{Name: "size", Kind: Size}, {Name: "options", Kind: TensorOptions}},
		Returns: Tensor,
		Call: func(l *native.Library, a Args) (any, error) {
			return l.Ones(a.Size(0), a.Options(1))
		},
	},
	{
		Name:    "mul",
		Args:    []Arg{{Name: "input", Kind: Tensor}, {Name: "other", Kind: Tensor}},
		Returns: Tensor,
		Call: func(l *native.Library, a Args) (any, error) {
			return l.Mul(a.Tensor(0), a.Tensor(1))
		},
	},
	{
		Name:    "size",
		Args:    []Arg{{Name: "input", Kind: Tensor}},
		Returns: Size,
		Call: func(l *native.Library, a Args) (any, error) {
			return l.Size(a.Tensor(0)), nil
		},
	},
	{
		Name:    "opaque",
		Returns: Scalar,
		Call: func(*native.Library, Args) (any, error) {
			return native.Scalar{Repr: []byte{1}, Type: tensor.DataType(99)}, nil
		},
	},
}

func setup(t *testing.T) *Dispatcher {
	t.Helper()
	lib, err := native.Open(native.Options{Seed: 11})
	require.NoError(t, err)
	d, err := New(lib, resource.New(resource.Options{}), testOps, Options{})
	require.NoError(t, err)
	return d
}

func dtypeOf(t *testing.T, out term.Term) term.Term {
	t.Helper()
	s, ok := out.(term.Struct)
	require.True(t, ok, "expected a tensor struct, got %v", out)
	dt, ok := s.Get("dtype")
	require.True(t, ok)
	return dt
}

func TestCallOptions(t *testing.T) {
	d := setup(t)

	tests := []struct {
		name string
		args []term.Term
		want term.Atom
	}{
		{"omitted", []term.Term{term.MustParse("{2}")}, "float32"},
		{"nil", []term.Term{term.MustParse("{2}"), term.Nil}, "float32"},
		{"struct", []term.Term{
			term.MustParse("{2}"),
			term.MustParse(`%ExTorch.Tensor.Options{dtype: :float64}`),
		}, "float64"},
		{"positional", []term.Term{
			term.MustParse("{2}"),
			term.Atom("int32"), term.Atom("strided"), term.Atom("cpu"),
			term.False, term.False, term.Atom("contiguous"),
		}, "int32"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := d.Call("ones", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dtypeOf(t, out))
		})
	}
}

func TestCallResultRoundTrips(t *testing.T) {
	d := setup(t)

	x, err := d.Call("ones", term.MustParse("{2, 3}"))
	require.NoError(t, err)
	size, err := d.Call("size", x)
	require.NoError(t, err)
	assert.True(t, term.Equal(term.MustParse("{2, 3}"), size))
}

func TestCallNativeErrorIsSingleLine(t *testing.T) {
	d := setup(t)

	a, err := d.Call("ones", term.MustParse("{2, 3}"))
	require.NoError(t, err)
	b, err := d.Call("ones", term.MustParse("{4}"))
	require.NoError(t, err)

	_, err = d.Call("mul", a, b)
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "\n"))

	var nerr *errs.NativeOperationError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t,
		"The size of tensor a (3) must match the size of tensor b (4) at non-singleton dimension 1",
		nerr.Message)
	assert.Equal(t, term.Binary(nerr.Message), errs.Raise(err))
}

func TestCallDecodeErrors(t *testing.T) {
	d := setup(t)
	x, err := d.Call("ones", term.MustParse("{2}"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		op     string
		args   []term.Term
		reason term.Atom
	}{
		{"missing", "mul", []term.Term{x}, errs.InvalidArity},
		{"extra", "size", []term.Term{x, x}, errs.InvalidArity},
		{"not a tensor", "size", []term.Term{term.NewInt(3)}, errs.InvalidTensor},
		{"bad size", "ones", []term.Term{term.MustParse(`"2"`)}, errs.InvalidSize},
		{"unknown option", "ones", []term.Term{
			term.MustParse("{2}"),
			term.MustParse(`%ExTorch.Tensor.Options{colour: :red}`),
		}, errs.InvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Call(tt.op, tt.args...)
			require.Error(t, err)
			var derr *errs.DecodeError
			require.True(t, errors.As(err, &derr), "got %v", err)
			assert.Equal(t, tt.reason, errs.Raise(err))
		})
	}
}

func TestCallUnknownOperation(t *testing.T) {
	d := setup(t)
	_, err := d.Call("frobnicate")
	assert.ErrorIs(t, err, errs.ErrUnknownOperation)
}

func TestCallReleasesArguments(t *testing.T) {
	d := setup(t)

	out, err := d.Call("ones", term.MustParse("{3}"))
	require.NoError(t, err)
	x, err := d.Resources().Decode(out)
	require.NoError(t, err)
	x.Release()
	require.Equal(t, int64(1), x.RefCount())

	_, err = d.Call("mul", out, out)
	require.NoError(t, err)
	assert.Equal(t, int64(1), x.RefCount())

	_, err = d.Call("mul", out, term.NewInt(1))
	require.Error(t, err)
	assert.Equal(t, int64(1), x.RefCount(), "released on decode failure too")
}

func TestCallReference(t *testing.T) {
	d := setup(t)
	ref := term.NewRef()

	out, err := d.CallWithReference("ones", ref, term.MustParse("{1}"))
	require.NoError(t, err)
	got, ok := resource.Reference(out)
	require.True(t, ok)
	assert.True(t, term.Equal(ref, got))
}

func TestNotConverted(t *testing.T) {
	var logged []string
	log := funcr.New(func(prefix, args string) { logged = append(logged, args) }, funcr.Options{Verbosity: 1})

	lib, err := native.Open(native.Options{Seed: 11})
	require.NoError(t, err)
	d, err := New(lib, resource.New(resource.Options{}), testOps, Options{Logger: log})
	require.NoError(t, err)

	out, err := d.Call("opaque")
	require.NoError(t, err)
	assert.Equal(t, errs.NotConverted, out)
	require.NotEmpty(t, logged)
	assert.Contains(t, logged[len(logged)-1], "value not converted")
}

func TestNewValidates(t *testing.T) {
	lib, err := native.Open(native.Options{Seed: 11})
	require.NoError(t, err)
	res := resource.New(resource.Options{})

	_, err = New(lib, res, []Op{testOps[0], testOps[0]}, Options{})
	assert.ErrorContains(t, err, "declared twice")

	_, err = New(lib, res, []Op{{Name: "noop", Returns: Bool}}, Options{})
	assert.ErrorContains(t, err, "no implementation")

	call := func(*native.Library, Args) (any, error) { return nil, nil }
	_, err = New(lib, res, []Op{{Name: "bad", Returns: TensorIndex, Call: call}}, Options{})
	assert.ErrorContains(t, err, "no encoder")

	_, err = New(lib, res, []Op{{
		Name:    "bad",
		Args:    []Arg{{Name: "pair", Kind: TensorTuple}},
		Returns: Bool,
		Call:    call,
	}}, Options{})
	assert.ErrorContains(t, err, "no decoder")
}

func TestOpsKeepDeclarationOrder(t *testing.T) {
	d := setup(t)
	var names []string
	for _, op := range d.Ops() {
		names = append(names, op.Name)
	}
	assert.Equal(t, []string{"ones", "mul", "size", "opaque"}, names)

	op, ok := d.Lookup("mul")
	require.True(t, ok)
	assert.Equal(t, Tensor, op.Args[0].Kind)
	assert.Equal(t, "Tensor", Tensor.String())
}

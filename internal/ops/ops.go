// Package ops declares every operation the bridge exposes: its name, the
// kinds of its arguments, its return kind and the native call behind it.
package ops

import (
	"slices"

	"github.com/born-ml/tensorbridge/internal/dispatch"
	"github.com/born-ml/tensorbridge/internal/native"
)

// Table returns the full operation table, grouped the way the native
// library documents its functions.
func Table() []dispatch.Op {
	return slices.Concat(
		info(),
		creation(),
		manipulation(),
		pointwise(),
		comparison(),
		reduction(),
	)
}

type (
	unaryFn  func(*native.Library, *native.Tensor) (*native.Tensor, error)
	binaryFn func(*native.Library, *native.Tensor, *native.Tensor) (*native.Tensor, error)
	createFn func(*native.Library, []int64, native.TensorOptions) (*native.Tensor, error)
	likeFn   func(*native.Library, *native.Tensor, native.TensorOptions) (*native.Tensor, error)
	reduceFn func(*native.Library, *native.Tensor, *int64, bool) (*native.Tensor, error)
	flagFn   func(*native.Library, *native.Tensor) bool
)

func arg(name string, kind dispatch.Kind) dispatch.Arg {
	return dispatch.Arg{Name: name, Kind: kind}
}

var (
	input   = arg("input", dispatch.Tensor)
	other   = arg("other", dispatch.Tensor)
	options = arg("options", dispatch.TensorOptions)
	keepDim = arg("keepdim", dispatch.Bool)
	optDim  = arg("dim", dispatch.OptionalInt)
	dim     = arg("dim", dispatch.Int)
)

func unary(name string, f unaryFn) dispatch.Op {
	return dispatch.Op{
		Name:    name,
		Args:    []dispatch.Arg{input},
		Returns: dispatch.Tensor,
		Call: func(l *native.Library, a dispatch.Args) (any, error) {
			return f(l, a.Tensor(0))
		},
	}
}

func binary(name string, f binaryFn) dispatch.Op {
	return dispatch.Op{
		Name:    name,
		Args:    []dispatch.Arg{input, other},
		Returns: dispatch.Tensor,
		Call: func(l *native.Library, a dispatch.Args) (any, error) {
			return f(l, a.Tensor(0), a.Tensor(1))
		},
	}
}

func create(name string, f createFn) dispatch.Op {
	return dispatch.Op{
		Name:    name,
		Args:    []dispatch.Arg{arg("size", dispatch.Size), options},
		Returns: dispatch.Tensor,
		Call: func(l *native.Library, a dispatch.Args) (any, error) {
			return f(l, a.Size(0), a.Options(1))
		},
	}
}

func like(name string, f likeFn) dispatch.Op {
	return dispatch.Op{
		Name:    name,
		Args:    []dispatch.Arg{input, options},
		Returns: dispatch.Tensor,
		Call: func(l *native.Library, a dispatch.Args) (any, error) {
			return f(l, a.Tensor(0), a.Options(1))
		},
	}
}

func reduce(name string, f reduceFn) dispatch.Op {
	return dispatch.Op{
		Name:    name,
		Args:    []dispatch.Arg{input, optDim, keepDim},
		Returns: dispatch.Tensor,
		Call: func(l *native.Library, a dispatch.Args) (any, error) {
			return f(l, a.Tensor(0), a.OptionalInt(1), a.Bool(2))
		},
	}
}

func flag(name string, f flagFn) dispatch.Op {
	return dispatch.Op{
		Name:    name,
		Args:    []dispatch.Arg{input},
		Returns: dispatch.Bool,
		Call: func(l *native.Library, a dispatch.Args) (any, error) {
			return f(l, a.Tensor(0)), nil
		},
	}
}

package ops

import (
	"github.com/born-ml/tensorbridge/internal/dispatch"
	"github.com/born-ml/tensorbridge/internal/native"
)

func info() []dispatch.Op {
	return []dispatch.Op{
		{
			Name:    "repr",
			Args:    []dispatch.Arg{input, arg("print_options", dispatch.PrintOptions)},
			Returns: dispatch.String,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Repr(a.Tensor(0), a.PrintOptions(1))
			},
		},
		{
			Name:    "size",
			Args:    []dispatch.Arg{input},
			Returns: dispatch.Size,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Size(a.Tensor(0)), nil
			},
		},
		{
			Name:    "device",
			Args:    []dispatch.Arg{input},
			Returns: dispatch.Device,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Device(a.Tensor(0)), nil
			},
		},
		{
			Name:    "dtype",
			Args:    []dispatch.Arg{input},
			Returns: dispatch.AtomString,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.DType(a.Tensor(0)), nil
			},
		},
		{
			Name:    "layout",
			Args:    []dispatch.Arg{input},
			Returns: dispatch.AtomString,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Layout(a.Tensor(0)), nil
			},
		},
		{
			Name:    "memory_format",
			Args:    []dispatch.Arg{input},
			Returns: dispatch.AtomString,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.MemoryFormat(a.Tensor(0)), nil
			},
		},
		{
			Name:    "numel",
			Args:    []dispatch.Arg{input},
			Returns: dispatch.Int,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Numel(a.Tensor(0)), nil
			},
		},
		{
			Name:    "to_list",
			Args:    []dispatch.Arg{input},
			Returns: dispatch.ScalarList,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.ToList(a.Tensor(0)), nil
			},
		},
		{
			Name:    "item",
			Args:    []dispatch.Arg{input},
			Returns: dispatch.Scalar,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Item(a.Tensor(0))
			},
		},
		{
			Name:    "is_nonzero",
			Args:    []dispatch.Arg{input},
			Returns: dispatch.Bool,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.IsNonzero(a.Tensor(0))
			},
		},
		flag("requires_grad", (*native.Library).RequiresGrad),
		flag("is_complex", (*native.Library).IsComplex),
		flag("is_floating_point", (*native.Library).IsFloatingPoint),
		flag("is_conj", (*native.Library).IsConj),
		unary("real", (*native.Library).Real),
		unary("imag", (*native.Library).Imag),
	}
}

package ops

import (
	"github.com/born-ml/tensorbridge/internal/dispatch"
	"github.com/born-ml/tensorbridge/internal/native"
)

func reduction() []dispatch.Op {
	return []dispatch.Op{
		reduce("all", (*native.Library).All),
		reduce("any", (*native.Library).Any),
		reduce("sum", (*native.Library).Sum),
		reduce("mean", (*native.Library).Mean),
		reduce("argmax", (*native.Library).ArgMax),
		reduce("argmin", (*native.Library).ArgMin),
		{
			Name:    "count_nonzero",
			Args:    []dispatch.Arg{input, optDim},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.CountNonzero(a.Tensor(0), a.OptionalInt(1))
			},
		},
		{
			Name:    "amax",
			Args:    []dispatch.Arg{input, arg("dims", dispatch.Size), keepDim},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.AMax(a.Tensor(0), a.Size(1), a.Bool(2))
			},
		},
		{
			Name:    "amin",
			Args:    []dispatch.Arg{input, arg("dims", dispatch.Size), keepDim},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.AMin(a.Tensor(0), a.Size(1), a.Bool(2))
			},
		},
		{
			Name:    "max",
			Args:    []dispatch.Arg{input, dim, keepDim},
			Returns: dispatch.TensorTuple,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Max(a.Tensor(0), a.Int(1), a.Bool(2))
			},
		},
		{
			Name:    "min",
			Args:    []dispatch.Arg{input, dim, keepDim},
			Returns: dispatch.TensorTuple,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Min(a.Tensor(0), a.Int(1), a.Bool(2))
			},
		},
		{
			Name:    "std",
			Args:    []dispatch.Arg{input, optDim, arg("correction", dispatch.Int), keepDim},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Std(a.Tensor(0), a.OptionalInt(1), a.Int(2), a.Bool(3))
			},
		},
		{
			Name:    "var",
			Args:    []dispatch.Arg{input, optDim, arg("correction", dispatch.Int), keepDim},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Var(a.Tensor(0), a.OptionalInt(1), a.Int(2), a.Bool(3))
			},
		},
	}
}

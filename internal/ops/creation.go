package ops

import (
	"github.com/born-ml/tensorbridge/internal/dispatch"
	"github.com/born-ml/tensorbridge/internal/native"
)

func creation() []dispatch.Op {
	return []dispatch.Op{
		create("empty", (*native.Library).Empty),
		create("zeros", (*native.Library).Zeros),
		create("ones", (*native.Library).Ones),
		create("rand", (*native.Library).Rand),
		create("randn", (*native.Library).Randn),
		{
			Name:    "randint",
			Args:    []dispatch.Arg{arg("low", dispatch.Int), arg("high", dispatch.Int), arg("size", dispatch.Size), options},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.RandInt(a.Int(0), a.Int(1), a.Size(2), a.Options(3))
			},
		},
		{
			Name:    "full",
			Args:    []dispatch.Arg{arg("size", dispatch.Size), arg("fill_value", dispatch.Scalar), options},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Full(a.Size(0), a.Scalar(1), a.Options(2))
			},
		},
		{
			Name:    "eye",
			Args:    []dispatch.Arg{arg("n", dispatch.Int), arg("m", dispatch.Int), options},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Eye(a.Int(0), a.Int(1), a.Options(2))
			},
		},
		{
			Name:    "arange",
			Args:    []dispatch.Arg{arg("start", dispatch.Scalar), arg("end", dispatch.Scalar), arg("step", dispatch.Scalar), options},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Arange(a.Scalar(0), a.Scalar(1), a.Scalar(2), a.Options(3))
			},
		},
		{
			Name:    "linspace",
			Args:    []dispatch.Arg{arg("start", dispatch.Scalar), arg("end", dispatch.Scalar), arg("steps", dispatch.Int), options},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Linspace(a.Scalar(0), a.Scalar(1), a.Int(2), a.Options(3))
			},
		},
		{
			Name: "logspace",
			Args: []dispatch.Arg{
				arg("start", dispatch.Scalar), arg("end", dispatch.Scalar), arg("steps", dispatch.Int),
				arg("base", dispatch.Scalar), options,
			},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Logspace(a.Scalar(0), a.Scalar(1), a.Int(2), a.Scalar(3), a.Options(4))
			},
		},
		{
			Name:    "tensor",
			Args:    []dispatch.Arg{arg("list", dispatch.ScalarList), options},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Tensor(a.ScalarList(0), a.Options(1))
			},
		},
		{
			Name:    "complex",
			Args:    []dispatch.Arg{arg("real", dispatch.Tensor), arg("imag", dispatch.Tensor)},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Complex(a.Tensor(0), a.Tensor(1))
			},
		},
		{
			Name:    "polar",
			Args:    []dispatch.Arg{arg("abs", dispatch.Tensor), arg("angle", dispatch.Tensor)},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Polar(a.Tensor(0), a.Tensor(1))
			},
		},
		unary("view_as_complex", (*native.Library).ViewAsComplex),
		like("empty_like", (*native.Library).EmptyLike),
		like("zeros_like", (*native.Library).ZerosLike),
		like("ones_like", (*native.Library).OnesLike),
		like("rand_like", (*native.Library).RandLike),
		like("randn_like", (*native.Library).RandnLike),
		{
			Name:    "full_like",
			Args:    []dispatch.Arg{input, arg("fill_value", dispatch.Scalar), options},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.FullLike(a.Tensor(0), a.Scalar(1), a.Options(2))
			},
		},
		{
			Name:    "randint_like",
			Args:    []dispatch.Arg{input, arg("low", dispatch.Int), arg("high", dispatch.Int), options},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.RandIntLike(a.Tensor(0), a.Int(1), a.Int(2), a.Options(3))
			},
		},
	}
}

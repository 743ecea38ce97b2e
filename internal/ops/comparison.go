package ops

import (
	"github.com/born-ml/tensorbridge/internal/dispatch"
	"github.com/born-ml/tensorbridge/internal/native"
)

var (
	rtol     = arg("rtol", dispatch.Float)
	atol     = arg("atol", dispatch.Float)
	equalNaN = arg("equal_nan", dispatch.Bool)
)

func comparison() []dispatch.Op {
	return []dispatch.Op{
		binary("eq", (*native.Library).Eq),
		binary("ne", (*native.Library).Ne),
		binary("gt", (*native.Library).Gt),
		binary("ge", (*native.Library).Ge),
		binary("lt", (*native.Library).Lt),
		binary("le", (*native.Library).Le),
		binary("maximum", (*native.Library).Maximum),
		binary("minimum", (*native.Library).Minimum),
		binary("fmax", (*native.Library).FMax),
		binary("fmin", (*native.Library).FMin),
		binary("isin", (*native.Library).IsIn),
		unary("isnan", (*native.Library).IsNaN),
		unary("isinf", (*native.Library).IsInf),
		unary("isposinf", (*native.Library).IsPosInf),
		unary("isneginf", (*native.Library).IsNegInf),
		unary("isfinite", (*native.Library).IsFinite),
		unary("isreal", (*native.Library).IsReal),
		{
			Name:    "isclose",
			Args:    []dispatch.Arg{input, other, rtol, atol, equalNaN},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.IsClose(a.Tensor(0), a.Tensor(1), a.Float(2), a.Float(3), a.Bool(4))
			},
		},
		{
			Name:    "allclose",
			Args:    []dispatch.Arg{input, other, rtol, atol, equalNaN},
			Returns: dispatch.Bool,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.AllClose(a.Tensor(0), a.Tensor(1), a.Float(2), a.Float(3), a.Bool(4))
			},
		},
		{
			Name:    "equal",
			Args:    []dispatch.Arg{input, other},
			Returns: dispatch.Bool,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Equal(a.Tensor(0), a.Tensor(1))
			},
		},
		{
			Name:    "sort",
			Args:    []dispatch.Arg{input, dim, arg("descending", dispatch.Bool), arg("stable", dispatch.Bool)},
			Returns: dispatch.TensorTuple,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Sort(a.Tensor(0), a.Int(1), a.Bool(2), a.Bool(3))
			},
		},
		{
			Name:    "argsort",
			Args:    []dispatch.Arg{input, dim, arg("descending", dispatch.Bool), arg("stable", dispatch.Bool)},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.ArgSort(a.Tensor(0), a.Int(1), a.Bool(2), a.Bool(3))
			},
		},
		unary("msort", (*native.Library).MSort),
		{
			Name: "topk",
			Args: []dispatch.Arg{
				input, arg("k", dispatch.Int), dim,
				arg("largest", dispatch.Bool), arg("sorted", dispatch.Bool),
			},
			Returns: dispatch.TensorTuple,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.TopK(a.Tensor(0), a.Int(1), a.Int(2), a.Bool(3), a.Bool(4))
			},
		},
		{
			Name:    "kthvalue",
			Args:    []dispatch.Arg{input, arg("k", dispatch.Int), dim, keepDim},
			Returns: dispatch.TensorTuple,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.KthValue(a.Tensor(0), a.Int(1), a.Int(2), a.Bool(3))
			},
		},
	}
}

package ops

import (
	"github.com/born-ml/tensorbridge/internal/dispatch"
	"github.com/born-ml/tensorbridge/internal/native"
)

func manipulation() []dispatch.Op {
	return []dispatch.Op{
		{
			Name:    "unsqueeze",
			Args:    []dispatch.Arg{input, dim},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Unsqueeze(a.Tensor(0), a.Int(1))
			},
		},
		{
			Name:    "reshape",
			Args:    []dispatch.Arg{input, arg("shape", dispatch.Size)},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Reshape(a.Tensor(0), a.Size(1))
			},
		},
		{
			Name:    "squeeze",
			Args:    []dispatch.Arg{input, optDim},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Squeeze(a.Tensor(0), a.OptionalInt(1))
			},
		},
		{
			Name:    "transpose",
			Args:    []dispatch.Arg{input, arg("dim0", dispatch.Int), arg("dim1", dispatch.Int)},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Transpose(a.Tensor(0), a.Int(1), a.Int(2))
			},
		},
		{
			Name:    "cat",
			Args:    []dispatch.Arg{arg("tensors", dispatch.TensorList), dim},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Cat(a.Tensors(0), a.Int(1))
			},
		},
		{
			Name:    "index",
			Args:    []dispatch.Arg{input, arg("indices", dispatch.TensorIndex)},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.Index(a.Tensor(0), a.Index(1))
			},
		},
		{
			Name:    "index_put",
			Args:    []dispatch.Arg{input, arg("indices", dispatch.TensorIndex), arg("value", dispatch.TensorOrScalar)},
			Returns: dispatch.Tensor,
			Call: func(l *native.Library, a dispatch.Args) (any, error) {
				return l.IndexPut(a.Tensor(0), a.Index(1), a.TensorOrScalar(2))
			},
		},
		unary("conj", (*native.Library).Conj),
		unary("resolve_conj", (*native.Library).ResolveConj),
	}
}

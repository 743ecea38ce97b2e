package ops

import (
	"github.com/born-ml/tensorbridge/internal/dispatch"
	"github.com/born-ml/tensorbridge/internal/native"
)

func pointwise() []dispatch.Op {
	return []dispatch.Op{
		binary("add", (*native.Library).Add),
		binary("sub", (*native.Library).Sub),
		binary("mul", (*native.Library).Mul),
		binary("div", (*native.Library).Div),
		unary("neg", (*native.Library).Neg),
		unary("abs", (*native.Library).Abs),
		unary("exp", (*native.Library).Exp),
		unary("log", (*native.Library).Log),
		unary("sqrt", (*native.Library).Sqrt),
		unary("sin", (*native.Library).Sin),
		unary("cos", (*native.Library).Cos),
	}
}

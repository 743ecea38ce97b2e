package dispatch

import (
	"github.com/born-ml/tensorbridge/internal/codec"
	"github.com/born-ml/tensorbridge/internal/errs"
	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/term"
)

type decodeFunc func(c *call, ts []term.Term) (v any, consumed int, err error)

type encodeFunc func(c *call, v any) (term.Term, error)

type strategy struct {
	decode decodeFunc
	encode encodeFunc
}

// strategies is the kind-to-codec table. A nil side means the kind is not
// valid in that position.
var strategies = map[Kind]strategy{
	Tensor: {
		decode: one(func(c *call, t term.Term) (*native.Tensor, error) { return c.tensor(t) }),
		encode: func(c *call, v any) (term.Term, error) { return c.wrap(v.(*native.Tensor)), nil },
	},
	OptionalTensor: {
		decode: one(func(c *call, t term.Term) (*native.Tensor, error) {
			if term.IsNil(t) {
				return nil, nil
			}
			return c.tensor(t)
		}),
		encode: func(c *call, v any) (term.Term, error) {
			t, _ := v.(*native.Tensor)
			if t == nil {
				return term.Nil, nil
			}
			return c.wrap(t), nil
		},
	},
	TensorList: {
		decode: one(decodeTensorList),
		encode: func(c *call, v any) (term.Term, error) {
			ts := v.([]*native.Tensor)
			out := make(term.List, len(ts))
			for i, t := range ts {
				out[i] = c.wrap(t)
			}
			return out, nil
		},
	},
	TensorTuple: {
		encode: func(c *call, v any) (term.Term, error) {
			ts := v.([2]*native.Tensor)
			return term.Tuple{c.wrap(ts[0]), c.wrap(ts[1])}, nil
		},
	},
	Size: {
		decode: one(pure(codec.DecodeSize)),
		encode: func(_ *call, v any) (term.Term, error) { return codec.EncodeSize(v.([]int64)), nil },
	},
	Scalar: {
		decode: one(pure(codec.DecodeScalar)),
		encode: func(c *call, v any) (term.Term, error) {
			t, err := codec.EncodeScalar(v.(native.Scalar))
			if err != nil {
				return c.notConverted(err)
			}
			return t, nil
		},
	},
	ScalarList: {
		decode: one(pure(codec.DecodeScalarList)),
		encode: func(c *call, v any) (term.Term, error) {
			t, err := codec.EncodeScalarList(v.(native.ScalarList))
			if err != nil {
				return c.notConverted(err)
			}
			return t, nil
		},
	},
	TensorOptions: {
		decode: decodeOptions,
		encode: func(_ *call, v any) (term.Term, error) { return codec.EncodeOptions(v.(native.TensorOptions)), nil },
	},
	TensorIndex: {
		decode: one(func(c *call, t term.Term) (native.TorchIndex, error) { return codec.DecodeIndex(t, c.resolve) }),
	},
	TensorOrScalar: {
		decode: one(decodeTensorOrScalar),
	},
	Device: {
		decode: one(pure(codec.DecodeDevice)),
		encode: func(_ *call, v any) (term.Term, error) { return codec.EncodeDevice(v.(native.Device)), nil },
	},
	AtomString: {
		decode: one(pure(codec.DecodeAtomString)),
		encode: func(_ *call, v any) (term.Term, error) { return codec.EncodeAtomString(v.(string)), nil },
	},
	Int: {
		decode: one(pure(codec.DecodeInt)),
		encode: func(_ *call, v any) (term.Term, error) { return term.NewInt(v.(int64)), nil },
	},
	OptionalInt: {
		decode: one(pure(codec.DecodeOptionalInt)),
		encode: func(_ *call, v any) (term.Term, error) {
			if p := v.(*int64); p != nil {
				return term.NewInt(*p), nil
			}
			return term.Nil, nil
		},
	},
	Float: {
		decode: one(pure(codec.DecodeFloat)),
		encode: func(_ *call, v any) (term.Term, error) { return codec.EncodeFloat(v.(float64)), nil },
	},
	Bool: {
		decode: one(pure(codec.DecodeBool)),
		encode: func(_ *call, v any) (term.Term, error) { return term.Bool(v.(bool)), nil },
	},
	String: {
		decode: one(pure(codec.DecodeString)),
		encode: func(_ *call, v any) (term.Term, error) { return term.Binary(v.(string)), nil },
	},
	PrintOptions: {
		decode: func(_ *call, ts []term.Term) (any, int, error) {
			if len(ts) == 0 {
				return native.PrintOptions{}, 0, nil
			}
			o, err := codec.DecodePrintOptions(ts[0])
			return o, 1, err
		},
	},
	Complex: {
		decode: one(pure(codec.DecodeComplex)),
		encode: func(_ *call, v any) (term.Term, error) { return codec.EncodeComplex(v.(complex128)), nil },
	},
}

// one adapts a single-term decoder.
func one[T any](f func(c *call, t term.Term) (T, error)) decodeFunc {
	return func(c *call, ts []term.Term) (any, int, error) {
		v, err := f(c, ts[0])
		if err != nil {
			return nil, 0, err
		}
		return v, 1, nil
	}
}

func pure[T any](f func(term.Term) (T, error)) func(*call, term.Term) (T, error) {
	return func(_ *call, t term.Term) (T, error) { return f(t) }
}

// decodeOptions takes a single options struct, or the six positional values
// when a non-struct term starts a block long enough to hold them. With no
// terms left the default options apply.
func decodeOptions(_ *call, ts []term.Term) (any, int, error) {
	if len(ts) == 0 {
		return native.DefaultTensorOptions, 0, nil
	}
	if n := len(codec.OptionFields); len(ts) >= n {
		if _, isStruct := ts[0].(term.Struct); !isStruct {
			o, err := codec.DecodeOptionsPositional(ts[:n])
			return o, n, err
		}
	}
	o, err := codec.DecodeOptions(ts[0])
	return o, 1, err
}

func decodeTensorList(c *call, t term.Term) ([]*native.Tensor, error) {
	l, ok := t.(term.List)
	if !ok {
		tup, isTuple := t.(term.Tuple)
		if !isTuple {
			return nil, &errs.DecodeError{Reason: errs.InvalidList, Kind: "tensor list", Term: t}
		}
		l = term.List(tup)
	}
	out := make([]*native.Tensor, len(l))
	for i, e := range l {
		x, err := c.tensor(e)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func decodeTensorOrScalar(c *call, t term.Term) (native.TensorOrScalar, error) {
	x, ok, err := c.resolve(t)
	if err != nil {
		return native.TensorOrScalar{}, err
	}
	if ok {
		return native.TensorOrScalar{Tensor: x}, nil
	}
	s, err := codec.DecodeScalar(t)
	if err != nil {
		return native.TensorOrScalar{}, err
	}
	return native.TensorOrScalar{Scalar: &s}, nil
}

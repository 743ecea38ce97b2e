// Package codec converts host terms into the typed values the native library
// takes and converts its results back into terms.
//
// Every decoder is an ordered list of candidate parsers: the first candidate
// that accepts the term wins and the decoder fails with a *errs.DecodeError
// when none does.
package codec

import (
	"fmt"
	"math"

	"github.com/born-ml/tensorbridge/internal/errs"
	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/tensor"
	"github.com/born-ml/tensorbridge/internal/term"
)

// Special float atoms.
const (
	AtomNaN    = term.Atom("nan")
	AtomInf    = term.Atom("inf")
	AtomNegInf = term.Atom("ninf")
)

type scalarCandidate func(term.Term) (native.Scalar, bool)

// untypedCandidates is the order in which DecodeScalar tries to read a term
// that carries no explicit type.
var untypedCandidates = []scalarCandidate{
	boolScalar,
	signedScalar(tensor.Int8, math.MinInt8, math.MaxInt8),
	signedScalar(tensor.Int16, math.MinInt16, math.MaxInt16),
	signedScalar(tensor.Int32, math.MinInt32, math.MaxInt32),
	signedScalar(tensor.Int64, math.MinInt64, math.MaxInt64),
	unsignedScalar(tensor.Uint8, math.MaxUint8),
	unsignedScalar(tensor.Uint16, math.MaxUint16),
	unsignedScalar(tensor.Uint32, math.MaxUint32),
	unsignedScalar(tensor.Uint64, math.MaxUint64),
	float32Scalar,
	float64Scalar,
	complexScalar(tensor.Complex128, false),
	specialScalar(tensor.Float32),
}

// DecodeScalar reads a term with no explicit type: bool, then signed
// integers by ascending width, then unsigned integers, floats, complex
// values and finally the special float atoms.
func DecodeScalar(t term.Term) (native.Scalar, error) {
	for _, c := range untypedCandidates {
		if s, ok := c(t); ok {
			return s, nil
		}
	}
	return native.Scalar{}, fail(errs.InvalidScalarType, "scalar", t, "")
}

// DecodeScalarAs reads t strictly as the type named by dtype. Names resolve
// through the dtype alias table and unknown names fall back to float32.
func DecodeScalarAs(t term.Term, dtype string) (native.Scalar, error) {
	dt, ok := tensor.ParseDataType(dtype)
	if !ok {
		dt = tensor.Float32
	}
	if s, ok := typedCandidate(dt)(t); ok {
		return s, nil
	}
	return native.Scalar{}, fail(errs.InvalidScalarType, dt.String()+" scalar", t, "")
}

func typedCandidate(dt tensor.DataType) scalarCandidate {
	switch dt {
	case tensor.Bool:
		return boolScalar
	case tensor.Int8:
		return signedScalar(dt, math.MinInt8, math.MaxInt8)
	case tensor.Int16:
		return signedScalar(dt, math.MinInt16, math.MaxInt16)
	case tensor.Int32:
		return signedScalar(dt, math.MinInt32, math.MaxInt32)
	case tensor.Int64:
		return signedScalar(dt, math.MinInt64, math.MaxInt64)
	case tensor.Uint8:
		return unsignedScalar(dt, math.MaxUint8)
	case tensor.Uint16:
		return unsignedScalar(dt, math.MaxUint16)
	case tensor.Uint32:
		return unsignedScalar(dt, math.MaxUint32)
	case tensor.Uint64:
		return unsignedScalar(dt, math.MaxUint64)
	case tensor.Complex64, tensor.Complex128:
		return complexScalar(dt, true)
	default:
		return realScalar(dt)
	}
}

func boolScalar(t term.Term) (native.Scalar, bool) {
	b, err := DecodeBool(t)
	if err != nil {
		return native.Scalar{}, false
	}
	return native.ScalarOf(tensor.BoolValue(b)), true
}

func signedScalar(dt tensor.DataType, lo, hi int64) scalarCandidate {
	return func(t term.Term) (native.Scalar, bool) {
		i, ok := t.(term.Int)
		if !ok || !i.InRange(lo, hi) {
			return native.Scalar{}, false
		}
		v, _ := i.Int64()
		return native.ScalarOf(tensor.IntValue(v, dt)), true
	}
}

func unsignedScalar(dt tensor.DataType, hi uint64) scalarCandidate {
	return func(t term.Term) (native.Scalar, bool) {
		i, ok := t.(term.Int)
		if !ok {
			return native.Scalar{}, false
		}
		u, ok := i.Uint64()
		if !ok || u > hi {
			return native.Scalar{}, false
		}
		return native.ScalarOf(tensor.UintValue(u, dt)), true
	}
}

// float32Scalar accepts floats that survive a round trip through float32.
func float32Scalar(t term.Term) (native.Scalar, bool) {
	f, ok := t.(term.Float)
	if !ok {
		return native.Scalar{}, false
	}
	x := float64(f)
	if !math.IsNaN(x) && float64(float32(x)) != x {
		return native.Scalar{}, false
	}
	return native.ScalarOf(tensor.FloatValue(x, tensor.Float32)), true
}

func float64Scalar(t term.Term) (native.Scalar, bool) {
	f, ok := t.(term.Float)
	if !ok {
		return native.Scalar{}, false
	}
	return native.ScalarOf(tensor.FloatValue(float64(f), tensor.Float64)), true
}

func specialScalar(dt tensor.DataType) scalarCandidate {
	return func(t term.Term) (native.Scalar, bool) {
		f, ok := specialFloat(t)
		if !ok {
			return native.Scalar{}, false
		}
		return halfAware(tensor.FloatValue(f, dt)), true
	}
}

// realScalar reads a floating point target. Integers and the special atoms
// are accepted as well.
func realScalar(dt tensor.DataType) scalarCandidate {
	return func(t term.Term) (native.Scalar, bool) {
		f, err := DecodeFloat(t)
		if err != nil {
			return native.Scalar{}, false
		}
		return halfAware(tensor.FloatValue(f, dt)), true
	}
}

// halfAware keeps the 2-byte layout of coerced float16 and bfloat16 values.
func halfAware(v tensor.Value) native.Scalar {
	if v.Type == tensor.Float16 || v.Type == tensor.BFloat16 {
		return native.Scalar{Repr: tensor.EncodeValue(v), Type: v.Type}
	}
	return native.ScalarOf(v)
}

// complexScalar reads a complex pair. With acceptReal a plain real number,
// special atoms included, is taken as the real part.
func complexScalar(dt tensor.DataType, acceptReal bool) scalarCandidate {
	return func(t term.Term) (native.Scalar, bool) {
		c, err := DecodeComplex(t)
		if err != nil {
			if !acceptReal {
				return native.Scalar{}, false
			}
			f, ferr := DecodeFloat(t)
			if ferr != nil {
				return native.Scalar{}, false
			}
			c = complex(f, 0)
		}
		return native.ScalarOf(tensor.ComplexValue(c, dt)), true
	}
}

func specialFloat(t term.Term) (float64, bool) {
	a, ok := t.(term.Atom)
	if !ok {
		return 0, false
	}
	switch a {
	case AtomNaN:
		return math.NaN(), true
	case AtomInf:
		return math.Inf(1), true
	case AtomNegInf:
		return math.Inf(-1), true
	}
	return 0, false
}

// EncodeFloat returns f as a term, using the special atoms for NaN and the
// infinities.
func EncodeFloat(f float64) term.Term {
	switch {
	case math.IsNaN(f):
		return AtomNaN
	case math.IsInf(f, 1):
		return AtomInf
	case math.IsInf(f, -1):
		return AtomNegInf
	}
	return term.Float(f)
}

// EncodeScalar converts s back into a term. A scalar whose tag is unknown
// encodes as errs.NotConverted together with an *errs.UnsupportedTypeError.
func EncodeScalar(s native.Scalar) (term.Term, error) {
	if !s.Type.Valid() {
		return errs.NotConverted, &errs.UnsupportedTypeError{Tag: fmt.Sprintf("dtype(%d)", int(s.Type))}
	}
	v, err := s.Value()
	if err != nil {
		return nil, err
	}
	switch dt := s.Type; {
	case dt == tensor.Bool:
		return term.Bool(v.Bool()), nil
	case dt.IsSigned():
		return term.NewInt(v.Int()), nil
	case dt.IsUnsigned():
		return term.NewUint(v.Uint()), nil
	case dt.IsComplex():
		return EncodeComplex(v.Complex()), nil
	default:
		return EncodeFloat(v.Float()), nil
	}
}

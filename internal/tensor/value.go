package tensor

import (
	"math"
	"math/cmplx"
)

// Value is a single dynamically typed element. Integers keep their exact
// 64-bit value; floats and complex numbers are carried in double precision.
type Value struct {
	Type DataType
	i    int64
	u    uint64
	f    float64
	c    complex128
}

// BoolValue returns a bool element.
func BoolValue(b bool) Value {
	v := Value{Type: Bool}
	if b {
		v.i, v.u, v.f, v.c = 1, 1, 1, 1
	}
	return v
}

// IntValue returns a signed integer element of type dt.
func IntValue(i int64, dt DataType) Value {
	return Value{Type: dt, i: i, u: uint64(i), f: float64(i), c: complex(float64(i), 0)}
}

// UintValue returns an unsigned integer element of type dt.
func UintValue(u uint64, dt DataType) Value {
	return Value{Type: dt, i: int64(u), u: u, f: float64(u), c: complex(float64(u), 0)}
}

// FloatValue returns a floating element of type dt.
func FloatValue(f float64, dt DataType) Value {
	return Value{Type: dt, i: saturate(f), u: saturateU(f), f: f, c: complex(f, 0)}
}

// ComplexValue returns a complex element of type dt.
func ComplexValue(c complex128, dt DataType) Value {
	r := real(c)
	return Value{Type: dt, i: saturate(r), u: saturateU(r), f: r, c: c}
}

func saturate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func saturateU(f float64) uint64 {
	switch {
	case math.IsNaN(f) || f <= 0:
		if f < 0 {
			return uint64(int64(f))
		}
		return 0
	case f >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(f)
}

// Int returns the element as int64.
func (v Value) Int() int64 { return v.i }

// Uint returns the element as uint64.
func (v Value) Uint() uint64 { return v.u }

// Float returns the element as float64 (real part for complex values).
func (v Value) Float() float64 { return v.f }

// Complex returns the element as complex128.
func (v Value) Complex() complex128 { return v.c }

// Bool returns whether the element is non-zero.
func (v Value) Bool() bool {
	switch {
	case v.Type.IsComplex():
		return v.c != 0
	case v.Type.IsFloatingPoint():
		return v.f != 0
	case v.Type.IsUnsigned():
		return v.u != 0
	}
	return v.i != 0
}

// IsNaN reports whether any component is NaN.
func (v Value) IsNaN() bool {
	if v.Type.IsComplex() {
		return cmplx.IsNaN(v.c)
	}
	return v.Type.IsFloatingPoint() && math.IsNaN(v.f)
}

// Convert re-types the element to dt, truncating the way a C cast would.
func (v Value) Convert(dt DataType) Value {
	if v.Type == dt {
		return v
	}
	switch {
	case dt == Bool:
		return BoolValue(v.Bool())
	case dt.IsComplex():
		return ComplexValue(v.c, dt)
	case dt.IsFloatingPoint():
		return FloatValue(v.f, dt)
	case v.Type.IsFloatingPoint() || v.Type.IsComplex():
		if dt.IsUnsigned() {
			return UintValue(v.u, dt)
		}
		return IntValue(v.i, dt)
	case dt.IsUnsigned():
		return UintValue(v.u, dt)
	default:
		return IntValue(v.i, dt)
	}
}

package tensor

import (
	"encoding/binary"
	"math"

	bfloat16 "github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

var ne = binary.NativeEndian

// At returns the element at flat index i.
func (r *RawTensor) At(i int) Value {
	v := decodeElement(r.dtype, r.elem(i))
	if r.conj && r.dtype.IsComplex() {
		c := v.Complex()
		v = ComplexValue(complex(real(c), -imag(c)), r.dtype)
	}
	return v
}

// SetAt stores v (converted to the tensor's dtype) at flat index i.
func (r *RawTensor) SetAt(i int, v Value) {
	encodeElement(r.elem(i), v.Convert(r.dtype))
}

func (r *RawTensor) elem(i int) []byte {
	size := r.dtype.Size()
	start := r.offset + i*size
	return r.buffer.data[start : start+size]
}

func decodeElement(dt DataType, b []byte) Value {
	switch dt {
	case Bool:
		return BoolValue(b[0] != 0)
	case Uint8:
		return UintValue(uint64(b[0]), dt)
	case Int8:
		return IntValue(int64(int8(b[0])), dt)
	case Int16:
		return IntValue(int64(int16(ne.Uint16(b))), dt)
	case Int32:
		return IntValue(int64(int32(ne.Uint32(b))), dt)
	case Int64:
		return IntValue(int64(ne.Uint64(b)), dt)
	case Uint16:
		return UintValue(uint64(ne.Uint16(b)), dt)
	case Uint32:
		return UintValue(uint64(ne.Uint32(b)), dt)
	case Uint64:
		return UintValue(ne.Uint64(b), dt)
	case Float16:
		return FloatValue(float64(float16.Frombits(ne.Uint16(b)).Float32()), dt)
	case BFloat16:
		return FloatValue(float64(bfloat16.DecodeFloat32(b)[0]), dt)
	case Float32:
		return FloatValue(float64(math.Float32frombits(ne.Uint32(b))), dt)
	case Float64:
		return FloatValue(math.Float64frombits(ne.Uint64(b)), dt)
	case Complex64:
		re := math.Float32frombits(ne.Uint32(b[:4]))
		im := math.Float32frombits(ne.Uint32(b[4:]))
		return ComplexValue(complex(float64(re), float64(im)), dt)
	case Complex128:
		re := math.Float64frombits(ne.Uint64(b[:8]))
		im := math.Float64frombits(ne.Uint64(b[8:]))
		return ComplexValue(complex(re, im), dt)
	}
	panic("unknown data type " + dt.String())
}

func encodeElement(b []byte, v Value) {
	switch v.Type {
	case Bool:
		b[0] = 0
		if v.Bool() {
			b[0] = 1
		}
	case Uint8, Int8:
		b[0] = byte(v.u)
	case Int16, Uint16:
		ne.PutUint16(b, uint16(v.u))
	case Int32, Uint32:
		ne.PutUint32(b, uint32(v.u))
	case Int64, Uint64:
		ne.PutUint64(b, v.u)
	case Float16:
		ne.PutUint16(b, float16.Fromfloat32(float32(v.f)).Bits())
	case BFloat16:
		copy(b, bfloat16.EncodeFloat32([]float32{float32(v.f)}))
	case Float32:
		ne.PutUint32(b, math.Float32bits(float32(v.f)))
	case Float64:
		ne.PutUint64(b, math.Float64bits(v.f))
	case Complex64:
		ne.PutUint32(b[:4], math.Float32bits(float32(real(v.c))))
		ne.PutUint32(b[4:], math.Float32bits(float32(imag(v.c))))
	case Complex128:
		ne.PutUint64(b[:8], math.Float64bits(real(v.c)))
		ne.PutUint64(b[8:], math.Float64bits(imag(v.c)))
	default:
		panic("unknown data type " + v.Type.String())
	}
}

// DecodeValue reads one element of type dt from its native byte layout.
func DecodeValue(dt DataType, b []byte) Value {
	return decodeElement(dt, b)
}

// EncodeValue returns the native byte layout of v.
func EncodeValue(v Value) []byte {
	b := make([]byte, v.Type.Size())
	encodeElement(b, v)
	return b
}

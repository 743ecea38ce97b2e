// Package tensor provides the native tensor storage used behind the bridge:
// reference-counted buffers, runtime data types, shapes, devices and the
// Backend interface that compute kernels implement.
package tensor

import "fmt"

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Bool DataType = iota
	Uint8
	Int8
	Int16
	Int32
	Int64
	Uint16
	Uint32
	Uint64
	Float16
	BFloat16
	Float32
	Float64
	Complex64
	Complex128
)

var dtypeNames = [...]string{
	Bool:       "bool",
	Uint8:      "uint8",
	Int8:       "int8",
	Int16:      "int16",
	Int32:      "int32",
	Int64:      "int64",
	Uint16:     "uint16",
	Uint32:     "uint32",
	Uint64:     "uint64",
	Float16:    "float16",
	BFloat16:   "bfloat16",
	Float32:    "float32",
	Float64:    "float64",
	Complex64:  "complex64",
	Complex128: "complex128",
}

// dtypeAliases maps every accepted dtype spelling to its canonical type.
// Built once at init and never mutated afterwards.
var dtypeAliases = map[string]DataType{
	"byte":           Uint8,
	"char":           Int8,
	"short":          Int16,
	"int":            Int32,
	"long":           Int64,
	"half":           Float16,
	"float":          Float32,
	"double":         Float64,
	"cfloat":         Complex64,
	"cdouble":        Complex128,
	"complex_float":  Complex64,
	"complex_double": Complex128,
}

func init() {
	for dt, name := range dtypeNames {
		dtypeAliases[name] = DataType(dt)
	}
}

// ParseDataType resolves a dtype name or alias.
func ParseDataType(name string) (DataType, bool) {
	dt, ok := dtypeAliases[name]
	return dt, ok
}

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Bool, Uint8, Int8:
		return 1
	case Int16, Uint16, Float16, BFloat16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64, Complex64:
		return 8
	case Complex128:
		return 16
	default:
		panic(fmt.Sprintf("unknown data type %d", int(dt)))
	}
}

// Valid reports whether dt is one of the declared data types.
func (dt DataType) Valid() bool {
	return dt >= 0 && int(dt) < len(dtypeNames)
}

// String returns the canonical name for the data type.
func (dt DataType) String() string {
	if dt.Valid() {
		return dtypeNames[dt]
	}
	return "unknown"
}

// IsFloatingPoint reports whether dt is a real floating type.
func (dt DataType) IsFloatingPoint() bool {
	switch dt {
	case Float16, BFloat16, Float32, Float64:
		return true
	}
	return false
}

// IsComplex reports whether dt is a complex type.
func (dt DataType) IsComplex() bool {
	return dt == Complex64 || dt == Complex128
}

// IsSigned reports whether dt is a signed integer type.
func (dt DataType) IsSigned() bool {
	switch dt {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// IsUnsigned reports whether dt is an unsigned integer type.
func (dt DataType) IsUnsigned() bool {
	switch dt {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsIntegral reports whether dt is an integer type, optionally counting bool.
func (dt DataType) IsIntegral(includeBool bool) bool {
	return dt.IsSigned() || dt.IsUnsigned() || (includeBool && dt == Bool)
}

// ToReal maps a complex type to the matching real type and leaves others.
func (dt DataType) ToReal() DataType {
	switch dt {
	case Complex64:
		return Float32
	case Complex128:
		return Float64
	}
	return dt
}

// ToComplex maps a real floating type to the matching complex type.
func (dt DataType) ToComplex() (DataType, bool) {
	switch dt {
	case Float16, BFloat16, Float32, Complex64:
		return Complex64, true
	case Float64, Complex128:
		return Complex128, true
	}
	return dt, false
}

// PromoteTypes returns the common type two operands are computed in.
//
// Categories rank bool < integer < floating < complex; within a category the
// wider type wins. Mixing a signed and an unsigned integer widens to a
// signed type able to hold both (capped at int64), and float16 mixed with
// bfloat16 yields float32.
func PromoteTypes(a, b DataType) DataType {
	if a == b {
		return a
	}
	switch {
	case a.IsComplex() || b.IsComplex():
		if a == Complex128 || b == Complex128 || a == Float64 || b == Float64 {
			return Complex128
		}
		return Complex64
	case a.IsFloatingPoint() || b.IsFloatingPoint():
		if !a.IsFloatingPoint() {
			return b
		}
		if !b.IsFloatingPoint() {
			return a
		}
		if a.Size() == b.Size() {
			return Float32
		}
		if a.Size() > b.Size() {
			return a
		}
		return b
	case a == Bool:
		return b
	case b == Bool:
		return a
	case a.IsSigned() == b.IsSigned():
		if a.Size() >= b.Size() {
			return a
		}
		return b
	}

	signed, unsigned := a, b
	if b.IsSigned() {
		signed, unsigned = b, a
	}
	size := signed.Size()
	if need := 2 * unsigned.Size(); need > size {
		size = need
	}
	switch {
	case size <= 2:
		return Int16
	case size <= 4:
		return Int32
	default:
		return Int64
	}
}

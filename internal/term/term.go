// Package term provides the host-runtime value model that crosses the bridge.
//
// A Term is an immutable dynamic value: atoms, arbitrary-precision integers,
// floats, binaries, tuples, lists, module-tagged structs, opaque references
// and resource cells. Decoders in the codec package inspect terms; encoders
// build them.
package term

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies the dynamic type of a Term.
type Kind int

// Term kinds.
const (
	KindAtom Kind = iota
	KindInt
	KindFloat
	KindBinary
	KindTuple
	KindList
	KindStruct
	KindRef
	KindResource
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindAtom:
		return "atom"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBinary:
		return "binary"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindStruct:
		return "struct"
	case KindRef:
		return "reference"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Term is a host-runtime dynamic value.
type Term interface {
	fmt.Stringer
	Kind() Kind
}

// Atom is a named constant. nil, true and false are atoms.
type Atom string

// Well-known atoms.
const (
	Nil   Atom = "nil"
	True  Atom = "true"
	False Atom = "false"
)

// Kind implements Term.
func (Atom) Kind() Kind { return KindAtom }

// String renders the atom in literal syntax.
func (a Atom) String() string {
	switch a {
	case Nil, True, False:
		return string(a)
	}
	if isPlainAtom(string(a)) {
		return ":" + string(a)
	}
	return ":" + strconv.Quote(string(a))
}

func isPlainAtom(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && ((r >= '0' && r <= '9') || r == '?' || r == '!'):
		default:
			return false
		}
	}
	return true
}

// Bool returns the atom for b.
func Bool(b bool) Atom {
	if b {
		return True
	}
	return False
}

// IsNil reports whether t is the nil atom.
func IsNil(t Term) bool {
	a, ok := t.(Atom)
	return ok && a == Nil
}

// Int is an arbitrary-precision integer. The zero value is 0.
type Int struct {
	v *big.Int
}

// NewInt returns an Int holding i.
func NewInt(i int64) Int {
	return Int{v: big.NewInt(i)}
}

// NewUint returns an Int holding u.
func NewUint(u uint64) Int {
	return Int{v: new(big.Int).SetUint64(u)}
}

// NewBigInt returns an Int holding a copy of b.
func NewBigInt(b *big.Int) Int {
	return Int{v: new(big.Int).Set(b)}
}

func (i Int) big() *big.Int {
	if i.v == nil {
		return new(big.Int)
	}
	return i.v
}

// Kind implements Term.
func (Int) Kind() Kind { return KindInt }

// String renders the integer in base 10.
func (i Int) String() string {
	return i.big().String()
}

// Big returns a copy of the underlying value.
func (i Int) Big() *big.Int {
	return new(big.Int).Set(i.big())
}

// Int64 returns the value and whether it fits in an int64.
func (i Int) Int64() (int64, bool) {
	b := i.big()
	if !b.IsInt64() {
		return 0, false
	}
	return b.Int64(), true
}

// Uint64 returns the value and whether it fits in a uint64.
func (i Int) Uint64() (uint64, bool) {
	b := i.big()
	if !b.IsUint64() {
		return 0, false
	}
	return b.Uint64(), true
}

// InRange reports whether lo <= i <= hi.
func (i Int) InRange(lo, hi int64) bool {
	v, ok := i.Int64()
	return ok && v >= lo && v <= hi
}

// Equal reports whether two integers hold the same value.
func (i Int) Equal(o Int) bool {
	return i.big().Cmp(o.big()) == 0
}

// Float is a 64-bit IEEE float term.
type Float float64

// Kind implements Term.
func (Float) Kind() Kind { return KindFloat }

// String renders the float, always with a fractional part or exponent.
func (f Float) String() string {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Binary is a byte string.
type Binary string

// Kind implements Term.
func (Binary) Kind() Kind { return KindBinary }

// String renders the binary as a quoted literal.
func (b Binary) String() string { return strconv.Quote(string(b)) }

// Tuple is a fixed-arity sequence.
type Tuple []Term

// Kind implements Term.
func (Tuple) Kind() Kind { return KindTuple }

// String renders the tuple literal.
func (t Tuple) String() string { return "{" + join(t) + "}" }

// List is a variable-length sequence.
type List []Term

// Kind implements Term.
func (List) Kind() Kind { return KindList }

// String renders the list literal.
func (l List) String() string { return "[" + join(l) + "]" }

func join(ts []Term) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Ref is an opaque, unique reference marker.
type Ref struct {
	id uuid.UUID
}

// NewRef mints a fresh reference.
func NewRef() Ref {
	return Ref{id: uuid.New()}
}

// Kind implements Term.
func (Ref) Kind() Kind { return KindRef }

// String renders the reference.
func (r Ref) String() string { return "#Reference<" + r.id.String() + ">" }

// Equal reports whether both references were minted together.
func (r Ref) Equal(o Ref) bool { return r.id == o.id }

// Resource is a host-visible cell around a native object. The object is
// owned by whoever created the cell; the term only carries it.
type Resource struct {
	obj any
}

// NewResource wraps obj in a resource term.
func NewResource(obj any) Resource {
	return Resource{obj: obj}
}

// Kind implements Term.
func (Resource) Kind() Kind { return KindResource }

// Object returns the wrapped native object.
func (r Resource) Object() any { return r.obj }

// String renders the resource.
func (r Resource) String() string { return fmt.Sprintf("#Resource<%p>", r.obj) }

// Equal reports whether both cells wrap the same object.
func (r Resource) Equal(o Resource) bool { return r.obj == o.obj }

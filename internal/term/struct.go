package term

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Field is a single struct field.
type Field struct {
	Key   Atom
	Value Term
}

// F is shorthand for building a Field.
func F(key string, value Term) Field {
	return Field{Key: Atom(key), Value: value}
}

// Struct is a module-tagged map with a fixed field order.
type Struct struct {
	module string
	fields *orderedmap.OrderedMap[Atom, Term]
}

// NewStruct builds a struct of the given module. Later duplicates of a key
// overwrite earlier ones but keep the first position.
func NewStruct(module string, fields ...Field) Struct {
	m := orderedmap.New[Atom, Term]()
	for _, f := range fields {
		m.Set(f.Key, f.Value)
	}
	return Struct{module: module, fields: m}
}

// Kind implements Term.
func (Struct) Kind() Kind { return KindStruct }

// Module returns the struct's module name.
func (s Struct) Module() string { return s.module }

// Len returns the number of fields.
func (s Struct) Len() int {
	if s.fields == nil {
		return 0
	}
	return s.fields.Len()
}

// Get returns the value stored under key.
func (s Struct) Get(key string) (Term, bool) {
	if s.fields == nil {
		return nil, false
	}
	return s.fields.Get(Atom(key))
}

// Fields returns the fields in declaration order.
func (s Struct) Fields() []Field {
	out := make([]Field, 0, s.Len())
	if s.fields == nil {
		return out
	}
	for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Field{Key: pair.Key, Value: pair.Value})
	}
	return out
}

// With returns a copy of s with key set to value.
func (s Struct) With(key string, value Term) Struct {
	fields := append(s.Fields(), F(key, value))
	return NewStruct(s.module, fields...)
}

// String renders the struct literal.
func (s Struct) String() string {
	var b strings.Builder
	b.WriteString("%")
	b.WriteString(s.module)
	b.WriteString("{")
	for i, f := range s.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(f.Key))
		b.WriteString(": ")
		b.WriteString(f.Value.String())
	}
	b.WriteString("}")
	return b.String()
}

// Equal reports whether both structs share module, field order and values.
func (s Struct) Equal(o Struct) bool {
	if s.module != o.module || s.Len() != o.Len() {
		return false
	}
	a, b := s.Fields(), o.Fields()
	for i := range a {
		if a[i].Key != b[i].Key || !Equal(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

// Equal compares two terms structurally. Floats compare by value, so NaN is
// never equal to itself.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Atom:
		return x == b.(Atom)
	case Int:
		return x.Equal(b.(Int))
	case Float:
		return x == b.(Float)
	case Binary:
		return x == b.(Binary)
	case Tuple:
		return equalSeq(x, b.(Tuple))
	case List:
		return equalSeq(x, b.(List))
	case Struct:
		return x.Equal(b.(Struct))
	case Ref:
		return x.Equal(b.(Ref))
	case Resource:
		return x.Equal(b.(Resource))
	}
	return false
}

func equalSeq(a, b []Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

package term

import (
	"math"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Plain converts a term into plain Go values suitable for JSON encoding.
// Atoms become ":name" strings, non-finite floats become their special atom
// names, structs become ordered maps led by "__struct__".
func Plain(t Term) any {
	switch x := t.(type) {
	case Atom:
		switch x {
		case Nil:
			return nil
		case True:
			return true
		case False:
			return false
		}
		return ":" + string(x)
	case Int:
		if v, ok := x.Int64(); ok {
			return v
		}
		return x.Big()
	case Float:
		f := float64(x)
		switch {
		case math.IsNaN(f):
			return ":nan"
		case math.IsInf(f, 1):
			return ":inf"
		case math.IsInf(f, -1):
			return ":ninf"
		}
		return f
	case Binary:
		return string(x)
	case Tuple:
		return plainSeq(x)
	case List:
		return plainSeq(x)
	case Struct:
		m := orderedmap.New[string, any]()
		m.Set("__struct__", x.Module())
		for _, f := range x.Fields() {
			m.Set(string(f.Key), Plain(f.Value))
		}
		return m
	case Ref, Resource:
		return x.String()
	}
	return nil
}

func plainSeq(ts []Term) []any {
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = Plain(t)
	}
	return out
}

package dispatch

// Kind tags an argument or return value with the codec strategy it uses.
type Kind int

// Argument and return kinds.
const (
	Tensor Kind = iota
	OptionalTensor
	TensorList
	TensorTuple
	Size
	Scalar
	ScalarList
	TensorOptions
	TensorIndex
	TensorOrScalar
	Device
	AtomString
	Int
	OptionalInt
	Float
	Bool
	String
	PrintOptions
	Complex
)

var kindNames = [...]string{
	Tensor:         "Tensor",
	OptionalTensor: "Tensor?",
	TensorList:     "[Tensor]",
	TensorTuple:    "{Tensor, Tensor}",
	Size:           "Size",
	Scalar:         "Scalar",
	ScalarList:     "ScalarList",
	TensorOptions:  "TensorOptions",
	TensorIndex:    "TensorIndex",
	TensorOrScalar: "Tensor|Scalar",
	Device:         "Device",
	AtomString:     "Atom",
	Int:            "Int",
	OptionalInt:    "Int?",
	Float:          "Float",
	Bool:           "Bool",
	String:         "String",
	PrintOptions:   "PrintOptions",
	Complex:        "Complex",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// defaultable kinds may be left off the end of an argument list.
func (k Kind) defaultable() bool {
	return k == TensorOptions || k == PrintOptions
}

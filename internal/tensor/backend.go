package tensor

// Backend defines the kernels a compute device must provide. Kernels never
// mutate their inputs: every call returns a fresh tensor or a view sharing
// the input buffer. Invalid arguments are reported by panicking with a
// message whose first line summarises the failure.
//
// Implementations:
//   - backend/cpu: pure Go
type Backend interface {
	Name() string
	Device() DeviceType

	// Creation
	Full(shape Shape, value Value, dtype DataType) *RawTensor
	Rand(shape Shape, dtype DataType, normal bool) *RawTensor
	RandInt(low, high int64, shape Shape, dtype DataType) *RawTensor
	Eye(n, m int, dtype DataType) *RawTensor
	Arange(start, end, step Value, dtype DataType) *RawTensor
	Linspace(start, end Value, steps int, dtype DataType) *RawTensor
	Logspace(start, end Value, steps int, base Value, dtype DataType) *RawTensor
	FromValues(values []Value, shape Shape, dtype DataType) *RawTensor
	Complex(re, im *RawTensor) *RawTensor
	Polar(abs, angle *RawTensor) *RawTensor
	ViewAsComplex(x *RawTensor) *RawTensor
	Real(x *RawTensor) *RawTensor
	Imag(x *RawTensor) *RawTensor

	// Pointwise
	Binary(op BinaryOp, a, b *RawTensor) *RawTensor
	Unary(op UnaryOp, x *RawTensor) *RawTensor
	Compare(op CompareOp, a, b *RawTensor) *RawTensor
	Classify(op ClassifyOp, x *RawTensor) *RawTensor
	IsClose(a, b *RawTensor, rtol, atol float64, equalNaN bool) *RawTensor
	IsIn(elements, test *RawTensor) *RawTensor
	Cast(x *RawTensor, dtype DataType) *RawTensor
	ResolveConj(x *RawTensor) *RawTensor

	// Reduction
	Reduce(op ReduceOp, x *RawTensor, dims []int, keepDim bool) *RawTensor
	ArgReduce(op ReduceOp, x *RawTensor, dim *int, keepDim bool) *RawTensor
	MaxMin(x *RawTensor, dim int, keepDim, isMin bool) (values, indices *RawTensor)
	VarStd(x *RawTensor, dim *int, correction int, keepDim, std bool) *RawTensor
	Sort(x *RawTensor, dim int, descending, stable bool) (values, indices *RawTensor)
	TopK(x *RawTensor, k, dim int, largest, sorted bool) (values, indices *RawTensor)
	KthValue(x *RawTensor, k, dim int, keepDim bool) (values, indices *RawTensor)

	// Manipulation
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor
	Squeeze(x *RawTensor, dim *int) *RawTensor
	Transpose(x *RawTensor, dim0, dim1 int) *RawTensor
	Cat(xs []*RawTensor, dim int) *RawTensor
	Index(x *RawTensor, index []IndexEntry) *RawTensor
	IndexPut(x *RawTensor, index []IndexEntry, values *RawTensor) *RawTensor
}

// BinaryOp selects an element-wise arithmetic kernel.
type BinaryOp int

// Binary operations.
const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMaximum
	OpMinimum
	OpFMax
	OpFMin
)

var binaryOpNames = [...]string{"add", "sub", "mul", "div", "maximum", "minimum", "fmax", "fmin"}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// UnaryOp selects an element-wise math kernel.
type UnaryOp int

// Unary operations.
const (
	OpNeg UnaryOp = iota
	OpAbs
	OpExp
	OpLog
	OpSqrt
	OpSin
	OpCos
)

var unaryOpNames = [...]string{"neg", "abs", "exp", "log", "sqrt", "sin", "cos"}

func (op UnaryOp) String() string { return unaryOpNames[op] }

// CompareOp selects an element-wise comparison returning bool.
type CompareOp int

// Comparison operations.
const (
	OpEq CompareOp = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

var compareOpNames = [...]string{"eq", "ne", "gt", "ge", "lt", "le"}

func (op CompareOp) String() string { return compareOpNames[op] }

// ClassifyOp selects an element-wise float classification returning bool.
type ClassifyOp int

// Classification operations.
const (
	OpIsNaN ClassifyOp = iota
	OpIsInf
	OpIsPosInf
	OpIsNegInf
	OpIsFinite
	OpIsReal
)

var classifyOpNames = [...]string{"isnan", "isinf", "isposinf", "isneginf", "isfinite", "isreal"}

func (op ClassifyOp) String() string { return classifyOpNames[op] }

// ReduceOp selects a reduction.
type ReduceOp int

// Reductions.
const (
	OpSum ReduceOp = iota
	OpMean
	OpAll
	OpAny
	OpAMax
	OpAMin
	OpCountNonzero
	OpArgMax
	OpArgMin
)

var reduceOpNames = [...]string{"sum", "mean", "all", "any", "amax", "amin", "count_nonzero", "argmax", "argmin"}

func (op ReduceOp) String() string { return reduceOpNames[op] }

package dispatch

import "github.com/born-ml/tensorbridge/internal/native"

// Args holds the decoded arguments of a call, one entry per declared
// argument. The accessors assert the type the declared kind decodes to.
type Args []any

func (a Args) Tensor(i int) *native.Tensor { return a[i].(*native.Tensor) }

// OptionalTensor returns nil for an omitted tensor.
func (a Args) OptionalTensor(i int) *native.Tensor {
	t, _ := a[i].(*native.Tensor)
	return t
}

func (a Args) Tensors(i int) []*native.Tensor { return a[i].([]*native.Tensor) }

func (a Args) Size(i int) []int64 { return a[i].([]int64) }

func (a Args) Scalar(i int) native.Scalar { return a[i].(native.Scalar) }

func (a Args) ScalarList(i int) native.ScalarList { return a[i].(native.ScalarList) }

func (a Args) Options(i int) native.TensorOptions { return a[i].(native.TensorOptions) }

func (a Args) Index(i int) native.TorchIndex { return a[i].(native.TorchIndex) }

func (a Args) TensorOrScalar(i int) native.TensorOrScalar { return a[i].(native.TensorOrScalar) }

func (a Args) Device(i int) native.Device { return a[i].(native.Device) }

func (a Args) Atom(i int) string { return a[i].(string) }

func (a Args) Int(i int) int64 { return a[i].(int64) }

// OptionalInt returns nil when the argument was nil.
func (a Args) OptionalInt(i int) *int64 { return a[i].(*int64) }

func (a Args) Float(i int) float64 { return a[i].(float64) }

func (a Args) Bool(i int) bool { return a[i].(bool) }

func (a Args) String(i int) string { return a[i].(string) }

func (a Args) PrintOptions(i int) native.PrintOptions { return a[i].(native.PrintOptions) }

func (a Args) Complex(i int) complex128 { return a[i].(complex128) }

package native

import (
	"fmt"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// Device is a backend name plus an ordinal; Index -1 selects the default
// device of the backend.
type Device struct {
	Name  string
	Index int64
}

// CPU is the default CPU device.
var CPU = Device{Name: "cpu", Index: -1}

func (d Device) String() string {
	if d.Index < 0 {
		return d.Name
	}
	return fmt.Sprintf("%s:%d", d.Name, d.Index)
}

// resolve maps the device onto a device family, panicking on unknown names.
func (d Device) resolve() tensor.Device {
	dt, ok := tensor.ParseDeviceType(d.Name)
	if !ok {
		panic(fmt.Sprintf("Expected one of cpu, cuda, hip, fpga, vulkan, xla, mps, webgpu device type at start of device string: %s", d.Name))
	}
	if d.Index < -1 {
		panic(fmt.Sprintf("Device index must be -1 or non-negative, got %d", d.Index))
	}
	return tensor.Device{Type: dt, Index: int(d.Index)}
}

// Scalar is a tagged fixed-width value. Repr holds the native byte layout
// of Type, except for complex types which always carry two float64 values
// (real, then imaginary) regardless of their precision.
type Scalar struct {
	Repr []byte
	Type tensor.DataType
}

// ScalarOf packs a value into its wire form. Half-precision values are
// widened to float32, as the library reports them.
func ScalarOf(v tensor.Value) Scalar {
	switch {
	case v.Type == tensor.Float16 || v.Type == tensor.BFloat16:
		v = v.Convert(tensor.Float32)
	case v.Type.IsComplex():
		c := v.Complex()
		re := tensor.EncodeValue(tensor.FloatValue(real(c), tensor.Float64))
		im := tensor.EncodeValue(tensor.FloatValue(imag(c), tensor.Float64))
		return Scalar{Repr: append(re, im...), Type: v.Type}
	}
	return Scalar{Repr: tensor.EncodeValue(v), Type: v.Type}
}

// Width returns the byte length Repr must have for Type.
func (s Scalar) Width() int {
	if s.Type.IsComplex() {
		return 16
	}
	return s.Type.Size()
}

// Value unpacks the scalar.
func (s Scalar) Value() (tensor.Value, error) {
	if len(s.Repr) != s.Width() {
		return tensor.Value{}, fmt.Errorf("scalar of type %s needs %d bytes, got %d", s.Type, s.Width(), len(s.Repr))
	}
	if s.Type.IsComplex() {
		re := tensor.DecodeValue(tensor.Float64, s.Repr[:8]).Float()
		im := tensor.DecodeValue(tensor.Float64, s.Repr[8:]).Float()
		return tensor.ComplexValue(complex(re, im), s.Type), nil
	}
	return tensor.DecodeValue(s.Type, s.Repr), nil
}

func (s Scalar) mustValue() tensor.Value {
	v, err := s.Value()
	if err != nil {
		panic(err.Error())
	}
	return v
}

// ScalarList is a flat row-major list of scalars and the shape it nests into.
type ScalarList struct {
	Scalars []Scalar
	Size    []int64
	// DType names the element type requested for the list; empty infers it.
	DType string
}

// IndexEntry is one element of a TorchIndex. Slice bounds are nil when the
// corresponding bound was omitted.
type IndexEntry struct {
	Kind    tensor.IndexKind
	Integer int64
	Boolean bool
	Start   *int64
	Stop    *int64
	Step    *int64
	Tensor  *Tensor
}

// TorchIndex is a multi-dimensional index expression.
type TorchIndex []IndexEntry

func (idx TorchIndex) entries() []tensor.IndexEntry {
	out := make([]tensor.IndexEntry, len(idx))
	for i, e := range idx {
		out[i] = tensor.IndexEntry{
			Kind: e.Kind, Integer: e.Integer, Boolean: e.Boolean,
			Start: e.Start, Stop: e.Stop, Step: e.Step,
		}
		if e.Tensor != nil {
			out[i].Tensor = e.Tensor.raw
		}
	}
	return out
}

// TensorOptions carries the creation options by name, the way the library
// receives them.
type TensorOptions struct {
	DType        string
	Layout       string
	Device       Device
	RequiresGrad bool
	PinMemory    bool
	MemoryFormat string
}

// DefaultTensorOptions are the options of a plain creation call.
var DefaultTensorOptions = TensorOptions{
	DType:        "nil",
	Layout:       "strided",
	Device:       CPU,
	MemoryFormat: "contiguous",
}

// Sci mode settings of PrintOptions.
const (
	SciModeUnset int64 = iota
	SciModeOn
	SciModeOff
)

// PrintField names one field of PrintOptions.
type PrintField uint8

const (
	PrintPrecision PrintField = 1 << iota
	PrintThreshold
	PrintEdgeItems
	PrintLineWidth
	PrintSciMode
)

// PrintOptions controls Repr. SciMode is SciModeUnset, SciModeOn or
// SciModeOff.
//
// Set lists the fields given explicitly; the others are filled from the
// library defaults. Options with an empty Set are complete as they are,
// except for the zero value, which selects the defaults outright.
type PrintOptions struct {
	Precision int64
	Threshold float64
	EdgeItems int64
	LineWidth int64
	SciMode   int64
	Set       PrintField
}

// WithDefaults completes o from d.
func (o PrintOptions) WithDefaults(d PrintOptions) PrintOptions {
	switch {
	case o == PrintOptions{}:
		return d
	case o.Set == 0:
		return o
	}
	out := d
	out.Set = 0
	if o.Set&PrintPrecision != 0 {
		out.Precision = o.Precision
	}
	if o.Set&PrintThreshold != 0 {
		out.Threshold = o.Threshold
	}
	if o.Set&PrintEdgeItems != 0 {
		out.EdgeItems = o.EdgeItems
	}
	if o.Set&PrintLineWidth != 0 {
		out.LineWidth = o.LineWidth
	}
	if o.Set&PrintSciMode != 0 {
		out.SciMode = o.SciMode
	}
	return out
}

// TensorOrScalar holds exactly one of a tensor or a scalar operand.
type TensorOrScalar struct {
	Tensor *Tensor
	Scalar *Scalar
}

type creation struct {
	dtype        tensor.DataType
	dtypeSet     bool
	device       tensor.Device
	backend      tensor.Backend
	requiresGrad bool
}

// resolve interprets options for a tensor of the given rank. Unknown dtype
// names fall back to the default dtype and unknown layouts and memory
// formats to their defaults; devices must be known.
func (l *Library) resolve(opts TensorOptions, rank int) creation {
	c := creation{dtype: l.defaultDType}
	if dt, ok := tensor.ParseDataType(opts.DType); ok {
		c.dtype, c.dtypeSet = dt, true
	}

	if layout, ok := tensor.ParseLayout(opts.Layout); ok && layout == tensor.Sparse {
		panic("sparse layout is not supported by this build")
	}

	c.device = opts.Device.resolve()
	c.backend = l.backend(c.device)

	if opts.PinMemory {
		panic("Need to provide pin_memory allocator to use pin memory.")
	}

	switch mf, _ := tensor.ParseMemoryFormat(opts.MemoryFormat); mf {
	case tensor.ChannelsLast:
		if rank != 4 {
			panic("required rank 4 tensor to use channels_last format")
		}
	case tensor.ChannelsLast3d:
		if rank != 5 {
			panic("required rank 5 tensor to use channels_last_3d format")
		}
	}

	c.requiresGrad = opts.RequiresGrad
	return c
}

// finish applies the requires-grad flag once the dtype is final.
func (c creation) finish(raw *tensor.RawTensor) *Tensor {
	if c.requiresGrad {
		dt := raw.DType()
		if !dt.IsFloatingPoint() && !dt.IsComplex() {
			raw.Release()
			panic("Only Tensors of floating point and complex dtype can require gradients")
		}
		raw.SetRequiresGrad(true)
	}
	return newTensor(raw)
}

// inferType picks the dtype a scalar implies when none is requested: bool
// for bool, int64 for integers, the default dtype for floats and its complex
// counterpart for complex values.
func (l *Library) inferType(vals ...tensor.Value) tensor.DataType {
	out := tensor.Bool
	for _, v := range vals {
		var dt tensor.DataType
		switch {
		case v.Type.IsComplex():
			dt, _ = l.defaultDType.ToComplex()
		case v.Type.IsFloatingPoint():
			dt = l.defaultDType
		case v.Type == tensor.Bool:
			dt = tensor.Bool
		default:
			dt = tensor.Int64
		}
		out = tensor.PromoteTypes(out, dt)
	}
	return out
}

func shapeOf(size []int64) tensor.Shape {
	shape := make(tensor.Shape, len(size))
	for i, n := range size {
		shape[i] = int(n)
	}
	if err := shape.Validate(); err != nil {
		panic(err.Error())
	}
	return shape
}

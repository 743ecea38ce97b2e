package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/born-ml/tensorbridge/internal/errs"
	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/tensor"
	"github.com/born-ml/tensorbridge/internal/term"
)

// Host struct modules.
const (
	TensorModule       = "ExTorch.Tensor"
	OptionsModule      = "ExTorch.Tensor.Options"
	ComplexModule      = "ExTorch.Complex"
	ListWrapperModule  = "ExTorch.Utils.ListWrapper"
	SliceModule        = "ExTorch.Index.Slice"
	PrintOptionsModule = "ExTorch.Utils.PrintOptions"
)

// Slice mask bits.
const (
	SliceStart = 1 << iota
	SliceStop
	SliceStep
)

// Index atoms.
const (
	AtomEllipsis = term.Atom("ellipsis")
)

func fail(reason, kind string, t term.Term, details string) error {
	return &errs.DecodeError{Reason: reason, Kind: kind, Term: t, Details: details}
}

// DecodeBool reads the atoms true and false.
func DecodeBool(t term.Term) (bool, error) {
	switch t {
	case term.True:
		return true, nil
	case term.False:
		return false, nil
	}
	return false, fail(errs.InvalidBool, "bool", t, "")
}

// DecodeInt reads an integer that fits in 64 bits.
func DecodeInt(t term.Term) (int64, error) {
	if i, ok := t.(term.Int); ok {
		if v, ok := i.Int64(); ok {
			return v, nil
		}
		return 0, fail(errs.InvalidInteger, "int", t, "out of int64 range")
	}
	return 0, fail(errs.InvalidInteger, "int", t, "")
}

// DecodeOptionalInt reads nil as an absent integer.
func DecodeOptionalInt(t term.Term) (*int64, error) {
	if term.IsNil(t) {
		return nil, nil
	}
	v, err := DecodeInt(t)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DecodeFloat reads a float, an integer or one of the special float atoms.
func DecodeFloat(t term.Term) (float64, error) {
	switch v := t.(type) {
	case term.Float:
		return float64(v), nil
	case term.Int:
		f, _ := v.Big().Float64()
		return f, nil
	}
	if f, ok := specialFloat(t); ok {
		return f, nil
	}
	return 0, fail(errs.InvalidFloat, "float", t, "")
}

// DecodeString reads a binary.
func DecodeString(t term.Term) (string, error) {
	if b, ok := t.(term.Binary); ok {
		return string(b), nil
	}
	return "", fail(errs.InvalidString, "string", t, "")
}

// DecodeAtomString reads an atom as its name.
func DecodeAtomString(t term.Term) (string, error) {
	if a, ok := t.(term.Atom); ok {
		return string(a), nil
	}
	return "", fail(errs.InvalidAtom, "atom", t, "")
}

// EncodeAtomString returns the atom named s.
func EncodeAtomString(s string) term.Term { return term.Atom(s) }

// DecodeComplex reads an ExTorch.Complex struct or a {real, imaginary}
// pair. Each part may be a special float atom.
func DecodeComplex(t term.Term) (complex128, error) {
	var re, im term.Term
	switch v := t.(type) {
	case term.Struct:
		if v.Module() != ComplexModule {
			return 0, fail(errs.InvalidComplex, "complex", t, "unexpected struct "+v.Module())
		}
		var ok bool
		if re, ok = v.Get("real"); !ok {
			return 0, fail(errs.InvalidComplex, "complex", t, "missing real part")
		}
		if im, ok = v.Get("imaginary"); !ok {
			return 0, fail(errs.InvalidComplex, "complex", t, "missing imaginary part")
		}
	case term.Tuple:
		if len(v) != 2 {
			return 0, fail(errs.InvalidComplex, "complex", t, "")
		}
		re, im = v[0], v[1]
	default:
		return 0, fail(errs.InvalidComplex, "complex", t, "")
	}
	r, err := DecodeFloat(re)
	if err != nil {
		return 0, fail(errs.InvalidComplex, "complex", t, "real part is not a number")
	}
	i, err := DecodeFloat(im)
	if err != nil {
		return 0, fail(errs.InvalidComplex, "complex", t, "imaginary part is not a number")
	}
	return complex(r, i), nil
}

// EncodeComplex returns an ExTorch.Complex struct.
func EncodeComplex(c complex128) term.Term {
	return term.NewStruct(ComplexModule,
		term.F("real", EncodeFloat(real(c))),
		term.F("imaginary", EncodeFloat(imag(c))),
	)
}

// DecodeSize reads a tuple or a list of integers.
func DecodeSize(t term.Term) ([]int64, error) {
	var elems []term.Term
	switch v := t.(type) {
	case term.Tuple:
		elems = v
	case term.List:
		elems = v
	default:
		return nil, fail(errs.InvalidSize, "size", t, "")
	}
	size := make([]int64, len(elems))
	for i, e := range elems {
		n, err := DecodeInt(e)
		if err != nil {
			return nil, fail(errs.InvalidSize, "size", t, fmt.Sprintf("dimension %d is not an integer", i))
		}
		size[i] = n
	}
	return size, nil
}

// EncodeSize returns size as a tuple.
func EncodeSize(size []int64) term.Term {
	out := make(term.Tuple, len(size))
	for i, n := range size {
		out[i] = term.NewInt(n)
	}
	return out
}

type deviceCandidate func(term.Term) (native.Device, bool, error)

var deviceCandidates = []deviceCandidate{deviceTuple, deviceAtom, deviceString}

// DecodeDevice reads a {name, index} tuple, a bare backend atom or a
// "name" / "name:index" string.
func DecodeDevice(t term.Term) (native.Device, error) {
	for _, c := range deviceCandidates {
		d, ok, err := c(t)
		if err != nil {
			return native.Device{}, err
		}
		if ok {
			return d, nil
		}
	}
	return native.Device{}, fail(errs.InvalidDevice, "device", t, "")
}

func deviceTuple(t term.Term) (native.Device, bool, error) {
	tup, ok := t.(term.Tuple)
	if !ok || len(tup) != 2 {
		return native.Device{}, false, nil
	}
	name, ok := tup[0].(term.Atom)
	if !ok {
		return native.Device{}, false, nil
	}
	idx, err := DecodeInt(tup[1])
	if err != nil {
		return native.Device{}, false, nil
	}
	return native.Device{Name: string(name), Index: idx}, true, nil
}

func deviceAtom(t term.Term) (native.Device, bool, error) {
	a, ok := t.(term.Atom)
	if !ok || term.IsNil(t) {
		return native.Device{}, false, nil
	}
	return native.Device{Name: string(a), Index: -1}, true, nil
}

func deviceString(t term.Term) (native.Device, bool, error) {
	b, ok := t.(term.Binary)
	if !ok {
		return native.Device{}, false, nil
	}
	name, idx, found := strings.Cut(string(b), ":")
	if !found {
		return native.Device{Name: name, Index: -1}, true, nil
	}
	n, err := strconv.ParseInt(idx, 10, 64)
	if err != nil {
		return native.Device{}, false, fail(errs.InvalidDevice, "device", t,
			fmt.Sprintf("device index %q is not an integer", idx))
	}
	return native.Device{Name: name, Index: n}, true, nil
}

// EncodeDevice returns the bare backend atom for a default index and a
// {name, index} tuple otherwise.
func EncodeDevice(d native.Device) term.Term {
	if d.Index == -1 {
		return term.Atom(d.Name)
	}
	return term.Tuple{term.Atom(d.Name), term.NewInt(d.Index)}
}

// Flatten walks a nested list and returns its leaves in row-major order
// together with its shape. Sibling lists must have equal shapes. A term
// that is not a list is a single leaf of shape [].
func Flatten(t term.Term) ([]term.Term, []int64, error) {
	l, ok := t.(term.List)
	if !ok {
		return []term.Term{t}, []int64{}, nil
	}
	if len(l) == 0 {
		return nil, []int64{0}, nil
	}
	var flat []term.Term
	var inner []int64
	for i, e := range l {
		leaves, shape, err := Flatten(e)
		if err != nil {
			return nil, nil, err
		}
		if i == 0 {
			inner = shape
		} else if !sameShape(inner, shape) {
			return nil, nil, fail(errs.InvalidList, "nested list", t,
				fmt.Sprintf("element %d has shape %v, expected %v", i, shape, inner))
		}
		flat = append(flat, leaves...)
	}
	return flat, append([]int64{int64(len(l))}, inner...), nil
}

func sameShape(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Nest folds a flat sequence into nested lists, grouping from the innermost
// dimension outwards. An empty sequence nests to the empty list and a
// rank-0 size returns the single element itself.
func Nest(flat []term.Term, size []int64) term.Term {
	if len(flat) == 0 {
		return term.List{}
	}
	if len(size) == 0 {
		return flat[0]
	}
	level := flat
	for d := len(size) - 1; d >= 1; d-- {
		n := int(size[d])
		if n <= 0 {
			return term.List{}
		}
		next := make([]term.Term, 0, len(level)/n)
		for i := 0; i+n <= len(level); i += n {
			next = append(next, term.List(level[i:i+n:i+n]))
		}
		level = next
	}
	return term.List(level)
}

// DecodeScalarList reads an ExTorch.Utils.ListWrapper struct or a plain
// (possibly nested) list of scalars.
func DecodeScalarList(t term.Term) (native.ScalarList, error) {
	if s, ok := t.(term.Struct); ok && s.Module() == ListWrapperModule {
		return decodeListWrapper(s)
	}
	flat, size, err := Flatten(t)
	if err != nil {
		return native.ScalarList{}, err
	}
	scalars, err := decodeScalars(flat, "")
	if err != nil {
		return native.ScalarList{}, err
	}
	return native.ScalarList{Scalars: scalars, Size: size}, nil
}

func decodeListWrapper(s term.Struct) (native.ScalarList, error) {
	lt, ok := s.Get("list")
	if !ok {
		return native.ScalarList{}, fail(errs.InvalidList, "list wrapper", s, "missing list")
	}
	flat, ok := lt.(term.List)
	if !ok {
		return native.ScalarList{}, fail(errs.InvalidList, "list wrapper", s, "list is not a list")
	}
	var size []int64
	if st, ok := s.Get("size"); ok && !term.IsNil(st) {
		var err error
		if size, err = DecodeSize(st); err != nil {
			return native.ScalarList{}, err
		}
	} else {
		size = []int64{int64(len(flat))}
	}
	var dtype string
	if dt, ok := s.Get("dtype"); ok && !term.IsNil(dt) {
		var err error
		if dtype, err = DecodeAtomString(dt); err != nil {
			return native.ScalarList{}, err
		}
	}
	scalars, err := decodeScalars(flat, dtype)
	if err != nil {
		return native.ScalarList{}, err
	}
	return native.ScalarList{Scalars: scalars, Size: size, DType: dtype}, nil
}

func decodeScalars(flat []term.Term, dtype string) ([]native.Scalar, error) {
	out := make([]native.Scalar, len(flat))
	for i, e := range flat {
		var err error
		if dtype == "" {
			out[i], err = DecodeScalar(e)
		} else {
			out[i], err = DecodeScalarAs(e, dtype)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EncodeScalarList nests the encoded scalars of l by l.Size.
func EncodeScalarList(l native.ScalarList) (term.Term, error) {
	flat := make([]term.Term, len(l.Scalars))
	for i, s := range l.Scalars {
		t, err := EncodeScalar(s)
		if err != nil {
			return nil, err
		}
		flat[i] = t
	}
	return Nest(flat, l.Size), nil
}

// TensorResolver maps a term to the tensor it refers to. It reports
// ok=false when the term does not refer to a tensor at all.
type TensorResolver func(term.Term) (t *native.Tensor, ok bool, err error)

// DecodeIndex reads a list or tuple of index elements. Any other term is a
// one-element index.
func DecodeIndex(t term.Term, resolve TensorResolver) (native.TorchIndex, error) {
	var elems []term.Term
	switch v := t.(type) {
	case term.List:
		elems = v
	case term.Tuple:
		elems = v
	default:
		elems = []term.Term{t}
	}
	idx := make(native.TorchIndex, len(elems))
	for i, e := range elems {
		entry, err := decodeIndexEntry(e, resolve)
		if err != nil {
			return nil, err
		}
		idx[i] = entry
	}
	return idx, nil
}

func decodeIndexEntry(t term.Term, resolve TensorResolver) (native.IndexEntry, error) {
	switch v := t.(type) {
	case term.Atom:
		switch v {
		case term.Nil:
			return native.IndexEntry{Kind: tensor.IndexNone}, nil
		case AtomEllipsis:
			return native.IndexEntry{Kind: tensor.IndexEllipsis}, nil
		case term.True, term.False:
			return native.IndexEntry{Kind: tensor.IndexBoolean, Boolean: v == term.True}, nil
		}
	case term.Int:
		if n, ok := v.Int64(); ok {
			return native.IndexEntry{Kind: tensor.IndexInteger, Integer: n}, nil
		}
	case term.Struct:
		if v.Module() == SliceModule {
			return decodeSlice(v)
		}
	}
	if resolve != nil {
		x, ok, err := resolve(t)
		if err != nil {
			return native.IndexEntry{}, err
		}
		if ok {
			return native.IndexEntry{Kind: tensor.IndexTensor, Tensor: x}, nil
		}
	}
	return native.IndexEntry{}, fail(errs.InvalidIndexType, "index", t, "")
}

func decodeSlice(s term.Struct) (native.IndexEntry, error) {
	entry := native.IndexEntry{Kind: tensor.IndexSlice}
	mask := int64(-1)
	if m, ok := s.Get("mask"); ok && !term.IsNil(m) {
		v, err := DecodeInt(m)
		if err != nil {
			return entry, fail(errs.InvalidIndexType, "slice", s, "mask is not an integer")
		}
		mask = v
	}
	bounds := []struct {
		key string
		bit int64
		dst **int64
	}{
		{"start", SliceStart, &entry.Start},
		{"stop", SliceStop, &entry.Stop},
		{"step", SliceStep, &entry.Step},
	}
	for _, b := range bounds {
		if mask >= 0 && mask&b.bit == 0 {
			continue
		}
		v, ok := s.Get(b.key)
		if !ok {
			continue
		}
		n, err := DecodeOptionalInt(v)
		if err != nil {
			return entry, fail(errs.InvalidIndexType, "slice", s, b.key+" is not an integer")
		}
		*b.dst = n
	}
	return entry, nil
}

// EncodeSlice builds an ExTorch.Index.Slice struct. Nil bounds are omitted
// from the mask.
func EncodeSlice(start, stop, step *int64) term.Term {
	var mask int64
	field := func(key string, bit int64, v *int64) term.Field {
		if v == nil {
			return term.F(key, term.Nil)
		}
		mask |= bit
		return term.F(key, term.NewInt(*v))
	}
	fields := []term.Field{
		field("start", SliceStart, start),
		field("stop", SliceStop, stop),
		field("step", SliceStep, step),
	}
	return term.NewStruct(SliceModule, append(fields, term.F("mask", term.NewInt(mask)))...)
}

// DecodeOptions reads an ExTorch.Tensor.Options struct. Missing fields keep
// their defaults and nil selects the default options.
func DecodeOptions(t term.Term) (native.TensorOptions, error) {
	opts := native.DefaultTensorOptions
	if term.IsNil(t) {
		return opts, nil
	}
	s, ok := t.(term.Struct)
	if !ok || s.Module() != OptionsModule {
		return opts, fail(errs.InvalidOptions, "tensor options", t, "")
	}
	for _, f := range s.Fields() {
		if err := setOption(&opts, string(f.Key), f.Value); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// OptionFields is the field order of ExTorch.Tensor.Options and of the
// positional options block.
var OptionFields = []string{"dtype", "layout", "device", "requires_grad", "pin_memory", "memory_format"}

// DecodeOptionsPositional reads the six positional option arguments.
func DecodeOptionsPositional(ts []term.Term) (native.TensorOptions, error) {
	opts := native.DefaultTensorOptions
	if len(ts) != len(OptionFields) {
		return opts, fail(errs.InvalidOptions, "tensor options", term.List(ts),
			fmt.Sprintf("expected %d positional values, got %d", len(OptionFields), len(ts)))
	}
	for i, key := range OptionFields {
		if err := setOption(&opts, key, ts[i]); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func setOption(opts *native.TensorOptions, key string, v term.Term) error {
	var err error
	switch key {
	case "dtype":
		opts.DType, err = DecodeAtomString(v)
	case "layout":
		opts.Layout, err = DecodeAtomString(v)
	case "device":
		opts.Device, err = DecodeDevice(v)
	case "requires_grad":
		opts.RequiresGrad, err = DecodeBool(v)
	case "pin_memory":
		opts.PinMemory, err = DecodeBool(v)
	case "memory_format":
		opts.MemoryFormat, err = DecodeAtomString(v)
	default:
		return fail(errs.InvalidOptions, "tensor options", v, "unknown field "+key)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// EncodeOptions returns opts as an ExTorch.Tensor.Options struct.
func EncodeOptions(opts native.TensorOptions) term.Term {
	return term.NewStruct(OptionsModule,
		term.F("dtype", term.Atom(opts.DType)),
		term.F("layout", term.Atom(opts.Layout)),
		term.F("device", EncodeDevice(opts.Device)),
		term.F("requires_grad", term.Bool(opts.RequiresGrad)),
		term.F("pin_memory", term.Bool(opts.PinMemory)),
		term.F("memory_format", term.Atom(opts.MemoryFormat)),
	)
}

// DecodePrintOptions reads an ExTorch.Utils.PrintOptions struct. nil yields
// zero options, which select the library's print defaults; fields missing
// from the struct are left out of Set and take those defaults too. sci_mode
// nil, true and false map to SciModeUnset, SciModeOn and SciModeOff.
func DecodePrintOptions(t term.Term) (native.PrintOptions, error) {
	var opts native.PrintOptions
	if term.IsNil(t) {
		return opts, nil
	}
	s, ok := t.(term.Struct)
	if !ok || s.Module() != PrintOptionsModule {
		return opts, fail(errs.InvalidPrintOptions, "print options", t, "")
	}
	for _, f := range s.Fields() {
		var err error
		switch f.Key {
		case "precision":
			opts.Precision, err = DecodeInt(f.Value)
			opts.Set |= native.PrintPrecision
		case "threshold":
			opts.Threshold, err = DecodeFloat(f.Value)
			opts.Set |= native.PrintThreshold
		case "edgeitems":
			opts.EdgeItems, err = DecodeInt(f.Value)
			opts.Set |= native.PrintEdgeItems
		case "linewidth":
			opts.LineWidth, err = DecodeInt(f.Value)
			opts.Set |= native.PrintLineWidth
		case "sci_mode":
			opts.Set |= native.PrintSciMode
			switch f.Value {
			case term.Nil:
				opts.SciMode = native.SciModeUnset
			case term.True:
				opts.SciMode = native.SciModeOn
			case term.False:
				opts.SciMode = native.SciModeOff
			default:
				err = fail(errs.InvalidPrintOptions, "sci_mode", f.Value, "")
			}
		default:
			err = fail(errs.InvalidPrintOptions, "print options", t, "unknown field "+string(f.Key))
		}
		if err != nil {
			return opts, fmt.Errorf("%s: %w", f.Key, err)
		}
	}
	if math.IsNaN(opts.Threshold) {
		return opts, fail(errs.InvalidPrintOptions, "print options", t, "threshold is NaN")
	}
	return opts, nil
}

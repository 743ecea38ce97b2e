package tensor

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// tensorBuffer is a reference-counted shared buffer. Views and reshapes
// share one buffer; the bytes are dropped when the last holder releases.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count.
func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

// isUnique returns true if this buffer has only one reference.
func (tb *tensorBuffer) isUnique() bool {
	return tb.refCount.Load() == 1
}

// RawTensor is the low-level tensor representation. A RawTensor is never
// mutated once a kernel has returned it; operations build new tensors, and
// views share the buffer through reference counting.
type RawTensor struct {
	buffer       *tensorBuffer
	shape        Shape
	stride       []int
	dtype        DataType
	device       Device
	offset       int
	layout       Layout
	requiresGrad bool
	conj         bool
}

// NewRaw creates a new zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if n := shape.NumElements(); n > math.MaxInt/dtype.Size() {
		return nil, fmt.Errorf("Storage size calculation overflowed with sizes=%v", []int(shape))
	}

	return &RawTensor{
		buffer: newTensorBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// MustNewRaw is NewRaw for kernels, which report failures by panicking.
func MustNewRaw(shape Shape, dtype DataType, device Device) *RawTensor {
	r, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(err.Error())
	}
	return r
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides (in elements).
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// Layout returns the storage layout.
func (r *RawTensor) Layout() Layout {
	return r.layout
}

// RequiresGrad reports whether the tensor was created with gradient tracking.
func (r *RawTensor) RequiresGrad() bool {
	return r.requiresGrad
}

// IsConj reports whether the tensor is a lazily conjugated view.
func (r *RawTensor) IsConj() bool {
	return r.conj
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.buffer.data[r.offset : r.offset+r.ByteSize()]
}

// WithFlags returns a view sharing the buffer with the given creation flags.
func (r *RawTensor) WithFlags(requiresGrad bool) *RawTensor {
	v := r.Clone()
	v.requiresGrad = requiresGrad
	return v
}

// SetRequiresGrad sets the gradient flag on a tensor no other holder has
// seen yet, such as a freshly allocated kernel result.
func (r *RawTensor) SetRequiresGrad(requiresGrad bool) *RawTensor {
	r.requiresGrad = requiresGrad
	return r
}

// View returns a tensor sharing the buffer under a new shape with the same
// element count.
func (r *RawTensor) View(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("shape '%v' is invalid for input of size %d", []int(shape), r.NumElements())
	}
	v := r.Clone()
	v.shape = shape.Clone()
	v.stride = shape.ComputeStrides()
	return v, nil
}

// ConjView returns a view with the conjugate bit flipped.
func (r *RawTensor) ConjView() *RawTensor {
	v := r.Clone()
	v.conj = !r.conj
	return v
}

// Clone creates a shallow copy of the RawTensor (shares buffer with reference counting).
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer:       r.buffer,
		shape:        r.shape.Clone(),
		stride:       append([]int(nil), r.stride...),
		dtype:        r.dtype,
		device:       r.device,
		offset:       r.offset,
		layout:       r.layout,
		requiresGrad: r.requiresGrad,
		conj:         r.conj,
	}
}

// Release decrements the reference count and deallocates if it reaches 0.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}

// RefCount returns the number of holders of the underlying buffer.
func (r *RawTensor) RefCount() int {
	return int(r.buffer.refCount.Load())
}

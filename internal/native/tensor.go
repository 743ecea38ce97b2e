package native

import (
	"sync/atomic"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

var liveTensors atomic.Int64

// LiveTensors returns the number of tensor handles not yet fully released.
func LiveTensors() int64 {
	return liveTensors.Load()
}

// Tensor is a shared native tensor handle. Ownership is shared through an
// atomic reference count, so a handle may be retained and released from any
// goroutine. The tensor data itself is never mutated after creation.
type Tensor struct {
	raw  *tensor.RawTensor
	refs atomic.Int64
}

func newTensor(raw *tensor.RawTensor) *Tensor {
	t := &Tensor{raw: raw}
	t.refs.Store(1)
	liveTensors.Add(1)
	return t
}

// Retain adds a reference and returns t.
func (t *Tensor) Retain() *Tensor {
	t.refs.Add(1)
	return t
}

// TryRetain adds a reference unless the handle has already been freed.
func (t *Tensor) TryRetain() bool {
	for {
		n := t.refs.Load()
		if n <= 0 {
			return false
		}
		if t.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference; the storage is freed with the last one.
func (t *Tensor) Release() {
	if t.refs.Add(-1) == 0 {
		t.raw.Release()
		liveTensors.Add(-1)
	}
}

// RefCount returns the number of holders of the handle.
func (t *Tensor) RefCount() int64 {
	return t.refs.Load()
}

// Raw exposes the underlying storage.
func (t *Tensor) Raw() *tensor.RawTensor {
	return t.raw
}

// Sizes returns the tensor shape as int64 extents.
func (t *Tensor) Sizes() []int64 {
	shape := t.raw.Shape()
	out := make([]int64, len(shape))
	for i, n := range shape {
		out[i] = int64(n)
	}
	return out
}

// ScalarType returns the element type.
func (t *Tensor) ScalarType() tensor.DataType {
	return t.raw.DType()
}

// Device returns the device the tensor lives on.
func (t *Tensor) Device() Device {
	d := t.raw.Device()
	return Device{Name: d.Type.String(), Index: int64(d.Index)}
}

// Package resource wraps native tensor handles into collector-tracked cells
// and converts them to and from the host's ExTorch.Tensor struct.
package resource

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/born-ml/tensorbridge/internal/codec"
	"github.com/born-ml/tensorbridge/internal/errs"
	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/term"
)

// TypeName is the name the tensor handle type is registered under.
const TypeName = "TensorStruct"

// handle owns one reference of a native tensor. It is kept apart from Cell
// so the cleanup attached to the cell does not keep the cell reachable.
type handle struct {
	t        *native.Tensor
	released atomic.Bool
}

func (h *handle) release() bool {
	if h.released.CompareAndSwap(false, true) {
		h.t.Release()
		return true
	}
	return false
}

// Cell is the host-visible wrapper around a native tensor handle. Size,
// dtype and device are captured once at wrap time.
type Cell struct {
	h      *handle
	size   []int64
	dtype  string
	device native.Device
}

// Acquire returns a new reference to the wrapped handle, which the caller
// releases. It fails with errs.ErrReleasedTensor after an explicit Release.
// A reference taken before a concurrent Release keeps the storage alive
// until the caller releases it.
func (c *Cell) Acquire() (*native.Tensor, error) {
	if c.h.released.Load() || !c.h.t.TryRetain() {
		return nil, errs.ErrReleasedTensor
	}
	return c.h.t, nil
}

func (c *Cell) Size() []int64 { return append([]int64(nil), c.size...) }

func (c *Cell) DType() string { return c.dtype }

func (c *Cell) Device() native.Device { return c.device }

// Release drops the cell's reference ahead of collection. It reports whether
// this call dropped it, so calling it more than once is safe.
func (c *Cell) Release() bool {
	return c.h.release()
}

// Options configures a Manager.
type Options struct {
	Logger logr.Logger
}

// Manager wraps and unwraps tensor handles.
type Manager struct {
	log      logr.Logger
	register sync.Once
}

// New returns a Manager.
func New(opts Options) *Manager {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Manager{log: log}
}

// Load registers the tensor handle type with the collector. Only the first
// call has an effect.
func (m *Manager) Load() {
	m.register.Do(func() {
		m.log.Info("resource type registered", "type", TypeName)
	})
}

// Wrap takes over the caller's reference to t and returns a cell whose
// collection releases it.
func (m *Manager) Wrap(t *native.Tensor) *Cell {
	m.Load()
	h := &handle{t: t}
	c := &Cell{
		h:      h,
		size:   t.Sizes(),
		dtype:  t.ScalarType().String(),
		device: t.Device(),
	}
	log := m.log
	runtime.AddCleanup(c, func(h *handle) {
		if h.release() {
			log.V(2).Info("tensor handle finalized")
		}
	}, h)
	return c
}

// Encode wraps t and builds its ExTorch.Tensor struct. ref is used as the
// reference marker; nil mints a fresh reference.
func (m *Manager) Encode(t *native.Tensor, ref term.Term) term.Struct {
	c := m.Wrap(t)
	if ref == nil || term.IsNil(ref) {
		ref = term.NewRef()
	}
	return term.NewStruct(codec.TensorModule,
		term.F("resource", term.NewResource(c)),
		term.F("reference", ref),
		term.F("size", codec.EncodeSize(c.size)),
		term.F("dtype", term.Atom(c.dtype)),
		term.F("device", codec.EncodeDevice(c.device)),
	)
}

// Cell returns the cell behind an ExTorch.Tensor struct or a bare resource
// term.
func (m *Manager) Cell(t term.Term) (*Cell, error) {
	c, ok, err := cellOf(t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &errs.DecodeError{Reason: errs.InvalidTensor, Kind: "tensor", Term: t}
	}
	return c, nil
}

// Decode acquires the native handle behind t. The caller releases it.
func (m *Manager) Decode(t term.Term) (*native.Tensor, error) {
	c, err := m.Cell(t)
	if err != nil {
		return nil, err
	}
	return c.Acquire()
}

// Resolve is Decode reporting ok=false for terms that are not tensors at
// all, so it can serve as a codec.TensorResolver.
func (m *Manager) Resolve(t term.Term) (*native.Tensor, bool, error) {
	c, ok, err := cellOf(t)
	if err != nil || !ok {
		return nil, ok, err
	}
	x, err := c.Acquire()
	return x, true, err
}

func cellOf(t term.Term) (*Cell, bool, error) {
	switch v := t.(type) {
	case term.Struct:
		if v.Module() != codec.TensorModule {
			return nil, false, nil
		}
		res, ok := v.Get("resource")
		if !ok {
			return nil, false, &errs.DecodeError{Reason: errs.InvalidTensor, Kind: "tensor", Term: t, Details: "missing resource"}
		}
		c, ok, _ := cellOf(res)
		if !ok {
			return nil, false, &errs.DecodeError{Reason: errs.InvalidTensor, Kind: "tensor", Term: t, Details: "resource is not a tensor handle"}
		}
		return c, true, nil
	case term.Resource:
		c, ok := v.Object().(*Cell)
		return c, ok, nil
	}
	return nil, false, nil
}

// Release drops the handle behind an ExTorch.Tensor struct or bare resource
// term ahead of collection. Later decodes of the term fail with
// errs.ErrReleasedTensor; calls already holding the tensor finish first.
func (m *Manager) Release(t term.Term) error {
	c, err := m.Cell(t)
	if err != nil {
		return err
	}
	if c.Release() {
		m.log.V(2).Info("tensor handle released")
	}
	return nil
}

// Reference returns the reference marker of an ExTorch.Tensor struct.
func Reference(t term.Term) (term.Term, bool) {
	s, ok := t.(term.Struct)
	if !ok || s.Module() != codec.TensorModule {
		return nil, false
	}
	return s.Get("reference")
}

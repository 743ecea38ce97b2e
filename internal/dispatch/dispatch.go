// Package dispatch turns a declarative operation table into host entry
// points. A call decodes each declared argument with the strategy of its
// kind, runs the native function and encodes the result with the strategy
// of the return kind.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/born-ml/tensorbridge/internal/errs"
	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/resource"
	"github.com/born-ml/tensorbridge/internal/term"
)

// Arg declares one argument of an operation.
type Arg struct {
	Name string
	Kind Kind
}

// Op declares an exposed operation.
type Op struct {
	Name    string
	Args    []Arg
	Returns Kind
	Call    func(l *native.Library, a Args) (any, error)
}

// Options configures a Dispatcher.
type Options struct {
	Logger logr.Logger
}

// Dispatcher runs operations by name.
type Dispatcher struct {
	lib *native.Library
	res *resource.Manager
	ops *orderedmap.OrderedMap[string, *Op]
	log logr.Logger
}

// New builds a dispatcher over ops. Operation names must be unique and every
// kind used must have a strategy.
func New(lib *native.Library, res *resource.Manager, ops []Op, opts Options) (*Dispatcher, error) {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	d := &Dispatcher{
		lib: lib,
		res: res,
		ops: orderedmap.New[string, *Op](),
		log: log,
	}
	for i := range ops {
		op := &ops[i]
		if op.Call == nil {
			return nil, fmt.Errorf("operation %s has no implementation", op.Name)
		}
		if _, ok := strategies[op.Returns]; !ok || strategies[op.Returns].encode == nil {
			return nil, fmt.Errorf("operation %s: no encoder for return kind %s", op.Name, op.Returns)
		}
		for _, a := range op.Args {
			if s, ok := strategies[a.Kind]; !ok || s.decode == nil {
				return nil, fmt.Errorf("operation %s: no decoder for argument %s of kind %s", op.Name, a.Name, a.Kind)
			}
		}
		if _, dup := d.ops.Set(op.Name, op); dup {
			return nil, fmt.Errorf("operation %s declared twice", op.Name)
		}
	}
	res.Load()
	log.V(1).Info("operation table built", "operations", d.ops.Len())
	return d, nil
}

// Lookup returns the operation registered under name.
func (d *Dispatcher) Lookup(name string) (*Op, bool) {
	return d.ops.Get(name)
}

// Ops returns the operations in declaration order.
func (d *Dispatcher) Ops() []*Op {
	out := make([]*Op, 0, d.ops.Len())
	for pair := d.ops.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Library returns the native library calls run against.
func (d *Dispatcher) Library() *native.Library { return d.lib }

// Resources returns the handle manager results are wrapped with.
func (d *Dispatcher) Resources() *resource.Manager { return d.res }

// Call runs the operation name on host terms. Tensor results carry freshly
// minted reference markers.
func (d *Dispatcher) Call(name string, args ...term.Term) (term.Term, error) {
	return d.CallWithReference(name, nil, args...)
}

// CallWithReference is Call with a caller-supplied reference marker for the
// tensors in the result.
func (d *Dispatcher) CallWithReference(name string, ref term.Term, args ...term.Term) (term.Term, error) {
	op, ok := d.ops.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownOperation, name)
	}
	c := &call{d: d, op: op, ref: ref}
	defer c.release()

	decoded, err := c.decode(args)
	if err != nil {
		return nil, err
	}
	out, err := op.Call(d.lib, decoded)
	if err != nil {
		return nil, errs.Translate(op.Name, err)
	}
	return strategies[op.Returns].encode(c, out)
}

// call carries the state of one invocation: the tensors acquired while
// decoding are released once the call returns.
type call struct {
	d        *Dispatcher
	op       *Op
	ref      term.Term
	acquired []*native.Tensor
}

func (c *call) release() {
	for _, t := range c.acquired {
		t.Release()
	}
	c.acquired = nil
}

func (c *call) tensor(t term.Term) (*native.Tensor, error) {
	x, err := c.d.res.Decode(t)
	if err != nil {
		return nil, err
	}
	c.acquired = append(c.acquired, x)
	return x, nil
}

func (c *call) resolve(t term.Term) (*native.Tensor, bool, error) {
	x, ok, err := c.d.res.Resolve(t)
	if err != nil || !ok {
		return nil, ok, err
	}
	c.acquired = append(c.acquired, x)
	return x, true, nil
}

func (c *call) decode(ts []term.Term) (Args, error) {
	out := make(Args, len(c.op.Args))
	pos := 0
	for i, a := range c.op.Args {
		rest := ts[pos:]
		if len(rest) == 0 && !a.Kind.defaultable() {
			return nil, c.arity(len(ts))
		}
		v, n, err := strategies[a.Kind].decode(c, rest)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %s: %w", c.op.Name, a.Name, err)
		}
		out[i] = v
		pos += n
	}
	if pos != len(ts) {
		return nil, c.arity(len(ts))
	}
	return out, nil
}

func (c *call) arity(got int) error {
	return &errs.DecodeError{
		Reason:  errs.InvalidArity,
		Kind:    c.op.Name,
		Details: fmt.Sprintf("expected %d arguments, got %d", len(c.op.Args), got),
	}
}

// notConverted is the encode fallback for values the codec does not know.
func (c *call) notConverted(err error) (term.Term, error) {
	var uerr *errs.UnsupportedTypeError
	if errors.As(err, &uerr) {
		c.d.log.V(1).Info("value not converted", "op", c.op.Name, "tag", uerr.Tag)
		return errs.NotConverted, nil
	}
	return nil, err
}

func (c *call) wrap(t *native.Tensor) term.Term {
	return c.d.res.Encode(t, c.ref)
}


// Package errs defines the errors the bridge returns to the host and the
// translator that turns native exceptions into them.
package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/term"
)

// Decode failure reasons. They are raised to the host as atoms.
const (
	InvalidScalarType   = "invalid_scalar_type"
	InvalidIndexType    = "invalid_index_type"
	InvalidDevice       = "invalid_device"
	InvalidSize         = "invalid_size"
	InvalidAtom         = "invalid_atom"
	InvalidBool         = "invalid_bool"
	InvalidInteger      = "invalid_integer"
	InvalidFloat        = "invalid_float"
	InvalidString       = "invalid_string"
	InvalidComplex      = "invalid_complex"
	InvalidList         = "invalid_list"
	InvalidOptions      = "invalid_options"
	InvalidPrintOptions = "invalid_print_options"
	InvalidTensor       = "invalid_tensor"
	InvalidArity        = "invalid_arity"
)

// NotConverted is the atom emitted in place of a value whose type tag the
// encoder does not know.
const NotConverted = term.Atom("not_converted")

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrReleasedTensor   = errors.New("tensor handle was already released")
)

// Raisable is implemented by errors that carry the term raised on the host.
type Raisable interface {
	error
	Raise() term.Term
}

// DecodeError reports a host term that matches none of the accepted shapes
// of the target kind.
type DecodeError struct {
	Reason  string    // one of the Invalid* reasons
	Kind    string    // target kind, e.g. "scalar" or "device"
	Term    term.Term // offending term
	Details string
	Err     error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Reason)
	if e.Kind != "" {
		fmt.Fprintf(&b, ": cannot decode %s", e.Kind)
	}
	if e.Term != nil {
		fmt.Fprintf(&b, " from %s", e.Term)
	}
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Raise returns the reason atom.
func (e *DecodeError) Raise() term.Term { return term.Atom(e.Reason) }

// NativeOperationError is a failure raised by the native library while
// running an operation. Message is the first line of the native message.
type NativeOperationError struct {
	Op      string
	Message string
	Err     error
}

func (e *NativeOperationError) Error() string {
	return e.Message
}

func (e *NativeOperationError) Unwrap() error { return e.Err }

// Raise returns the summary as a binary.
func (e *NativeOperationError) Raise() term.Term { return term.Binary(e.Message) }

// UnsupportedTypeError reports an encoder meeting a type tag it does not
// know. Encoders return it next to the NotConverted sentinel.
type UnsupportedTypeError struct {
	Tag string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type tag %q", e.Tag)
}

// Raise returns the sentinel atom.
func (e *UnsupportedTypeError) Raise() term.Term { return NotConverted }

// FirstLine returns msg up to its first newline.
func FirstLine(msg string) string {
	line, _, _ := strings.Cut(msg, "\n")
	return line
}

// Translate converts a failure of a native call into a host error. Errors
// that are already host errors pass through unchanged.
func Translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var r Raisable
	if errors.As(err, &r) {
		return err
	}
	var exc *native.Exception
	if errors.As(err, &exc) {
		return &NativeOperationError{Op: exc.Op, Message: FirstLine(exc.Error()), Err: err}
	}
	return &NativeOperationError{Op: op, Message: FirstLine(err.Error()), Err: err}
}

// Raise returns the host term for err. Errors that are not Raisable are
// raised as their first message line.
func Raise(err error) term.Term {
	var r Raisable
	if errors.As(err, &r) {
		return r.Raise()
	}
	return term.Binary(FirstLine(err.Error()))
}

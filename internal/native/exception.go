package native

import (
	"fmt"
	"runtime"
	"strings"
)

// Exception is the error raised by the native library. Its message has a
// one-line summary followed by the frames that raised it.
type Exception struct {
	Msg   string
	Op    string
	Trace []string
}

func (e *Exception) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	fmt.Fprintf(&b, "\nException raised from %s (most recent call first):", e.Op)
	for i, frame := range e.Trace {
		fmt.Fprintf(&b, "\nframe #%d: %s", i, frame)
	}
	return b.String()
}

// Summary returns the first line of the message.
func (e *Exception) Summary() string {
	msg, _, _ := strings.Cut(e.Msg, "\n")
	return msg
}

func newException(op string, r any) *Exception {
	var msg string
	switch v := r.(type) {
	case string:
		msg = v
	case error:
		msg = v.Error()
	default:
		msg = fmt.Sprint(v)
	}

	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var trace []string
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "runtime.") {
			trace = append(trace, fmt.Sprintf("%s (%s:%d)", f.Function, f.File, f.Line))
		}
		if !more {
			break
		}
	}
	return &Exception{Msg: msg, Op: op, Trace: trace}
}

// invoke runs fn and converts a panic raised inside it into an *Exception.
func invoke[T any](op string, fn func() T) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			res, err = zero, newException(op, r)
		}
	}()
	return fn(), nil
}

// Package errors extends the standard library errors package with annotated errors.
//
// Annotated errors carry the call site where they were wrapped and a list of [slog.Attr] that are emitted when the
// error is logged with [SlogError].
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

// Re-exports so that callers only need to import this package.
//
//nolint:gochecknoglobals // aliases to the standard library.
var (
	Is     = stderrors.Is
	As     = stderrors.As
	Unwrap = stderrors.Unwrap
	Join   = stderrors.Join
	New    = stderrors.New
)

type sentinelError struct {
	msg string
}

func (e *sentinelError) Error() string {
	return e.msg
}

// NewSentinel creates an error meant to be declared as a package level variable and compared with [Is].
//
// Sentinels don't capture a stack trace because the declaration site is not interesting.
func NewSentinel(msg string) error {
	return &sentinelError{msg: msg}
}

type annotatedError struct {
	msg         string
	err         error
	annotations []slog.Attr
	source      string
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// Wrap annotates err with msg, the caller's source location and optional attributes.
//
// The attributes are logged under "error.annotations" by [SlogError].
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:         msg,
		err:         err,
		annotations: attrs,
		source:      callerSource(3), //nolint:mnd // skip runtime.Callers, callerSource and Wrap.
	}
}

// DecoratePanic converts a value returned by recover() to an error that points to where the panic happened.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	return &annotatedError{
		msg:         "panic",
		err:         fmt.Errorf("%v", excp),
		annotations: nil,
		source:      panicSource(),
	}
}

// SlogError converts err into a [slog.Attr] group containing the message, the annotations of every wrapped
// annotated error and the source of the innermost one.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	var (
		annotations []any
		source      string
	)
	collect(err, func(ae *annotatedError) {
		for _, a := range ae.annotations {
			annotations = append(annotations, a)
		}
		if ae.source != "" {
			source = ae.source
		}
	})

	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	return slog.Group("error", attrs...)
}

// collect walks the error tree depth first, outermost error first.
func collect(err error, visit func(*annotatedError)) {
	if err == nil {
		return
	}
	if ae, ok := err.(*annotatedError); ok { //nolint:errorlint // we walk the tree manually.
		visit(ae)
	}
	switch u := err.(type) { //nolint:errorlint // we walk the tree manually.
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			collect(e, visit)
		}
	case interface{ Unwrap() error }:
		collect(u.Unwrap(), visit)
	}
}

func callerSource(skip int) string {
	pcs := make([]uintptr, 1)
	if runtime.Callers(skip, pcs) == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames(pcs).Next()
	return formatFrame(frame)
}

// panicSource returns the first frame after runtime.gopanic, i.e. the line that panicked.
func panicSource() string {
	const depth = 32
	pcs := make([]uintptr, depth)
	n := runtime.Callers(2, pcs) //nolint:mnd // skip runtime.Callers and panicSource.
	frames := runtime.CallersFrames(pcs[:n])
	var (
		afterPanic bool
		fallback   string
	)
	for {
		frame, more := frames.Next()
		switch {
		case frame.Function == "runtime.gopanic":
			afterPanic = true
		case afterPanic && !strings.HasPrefix(frame.Function, "runtime."):
			return formatFrame(frame)
		case fallback == "" && !strings.Contains(frame.File, "annotatederror.go"):
			fallback = formatFrame(frame)
		}
		if !more {
			return fallback
		}
	}
}

func formatFrame(frame runtime.Frame) string {
	if frame.File == "" {
		return ""
	}
	return frame.File + ":" + strconv.Itoa(frame.Line)
}

package cmd

import (
	"log/slog"
	"strings"
)

// Error represents a command error with structured logging support.
// Errors derived from a sentinel with [Error.Wrap] or [Error.With] still
// match it with errors.Is.
type Error struct {
	base  *Error
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns a new sentinel error.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.base = e

	return e
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t != nil && e.base == t.base
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		base:  e.base,
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		base:  e.base,
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

var (
	ErrReadConfig   = NewError("read configuration file")
	ErrWriteConfig  = NewError("write configuration file")
	ErrFileExists   = NewError("file exists (use --force to overwrite)")
	ErrReadTemplate = NewError("read template")
	ErrReadContext  = NewError("read context file")
	ErrContextType  = NewError("unsupported context file type")
	ErrSetValue     = NewError("invalid --set value")
	ErrWriteOutput  = NewError("write output")
	ErrYAMLMarshal  = NewError("marshal YAML")
)

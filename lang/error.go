package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Error categories. Every error returned by [Tokenize], [Parse], [Compile] or
// a render matches exactly one of these with [errors.Is].
var (
	ErrLex     = NewError("lex error")
	ErrSyntax  = NewError("syntax error")
	ErrRuntime = NewError("runtime error")
)

// Lex errors.
var (
	ErrUnterminatedString  = NewError("unterminated string literal")
	ErrUnterminatedComment = NewError("unterminated comment")
	ErrUnexpectedChar      = NewError("unexpected character")
	ErrUnterminatedRaw     = NewError("unterminated raw block")
)

// Syntax errors.
var (
	ErrUnexpectedToken = NewError("unexpected token")
	ErrInvalidTarget   = NewError("invalid assignment target")
	ErrArgumentOrder   = NewError("invalid argument order")
	ErrLoopControl     = NewError("loop control outside of loop")
)

// Runtime errors.
var (
	ErrTypeMismatch   = NewError("unsupported operand types")
	ErrUnknownFilter  = NewError("unknown filter")
	ErrUnknownTest    = NewError("unknown test")
	ErrDivisionByZero = NewError("division by zero")
	ErrZeroStep       = NewError("slice step cannot be zero")
	ErrArity          = NewError("mismatched number of values to unpack")
	ErrNotIterable    = NewError("value is not iterable")
	ErrNotCallable    = NewError("value is not callable")
	ErrArgument       = NewError("invalid argument")
	ErrCallDepth      = NewError("maximum call depth exceeded")
	ErrRaised         = NewError("template raised an exception")
	ErrReadInput      = NewError("failed to read input")
)

// Position identifies a location in template source.
// Line and Column are 1-based; Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// IsZero reports whether p carries no location.
func (p Position) IsZero() bool { return p.Line == 0 && p.Offset == 0 }

// String returns "line L, column C", or "offset N" when the line is unknown.
func (p Position) String() string {
	if p.Line == 0 {
		return "offset " + strconv.Itoa(p.Offset)
	}

	return "line " + strconv.Itoa(p.Line) + ", column " + strconv.Itoa(p.Column)
}

// positionAt computes the line and column of a byte offset in source.
func positionAt(source string, offset int) Position {
	offset = min(max(offset, 0), len(source))

	line := 1 + strings.Count(source[:offset], "\n")
	col := offset + 1

	if nl := strings.LastIndexByte(source[:offset], '\n'); nl >= 0 {
		col = offset - nl
	}

	return Position{Offset: offset, Line: line, Column: col}
}

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel with [Error.With], [Error.Wrap] or
// [Error.At] still match that sentinel with [errors.Is].
type Error struct {
	base  *Error
	err   error // Wrapped error (for errors.Unwrap)
	msg   string
	attrs []slog.Attr
	pos   Position
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.base = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.base = e

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format:
	//
	//   1. "<msg> at <pos>: <err>"
	//   2. "<msg>: <err>"
	//   3. "<msg>"
	//   4. "<err>"
	var b strings.Builder

	b.WriteString(e.msg)

	if !e.pos.IsZero() {
		if b.Len() > 0 {
			b.WriteString(" at ")
		}

		b.WriteString(e.pos.String())
	}

	if e.err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}

		b.WriteString(e.err.Error())
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return e.base == t.base
}

// Position returns the source location attached to e, if any.
// Wrapped errors are searched when e carries no location itself.
func (e *Error) Position() Position {
	if !e.pos.IsZero() {
		return e.pos
	}

	var inner *Error
	if errors.As(e.err, &inner) {
		return inner.Position()
	}

	return Position{}
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if !e.pos.IsZero() {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		base:  e.base,
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
		pos:   e.pos,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		base:  e.base,
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		pos:   e.pos,
	}
}

// At returns a copy of e located at pos.
func (e *Error) At(pos Position) *Error {
	return &Error{
		base:  e.base,
		msg:   e.msg,
		err:   e.err,
		attrs: e.attrs,
		pos:   pos,
	}
}

// Detail returns a copy of e wrapping a plain message.
func (e *Error) Detail(msg string) *Error {
	return e.Wrap(errors.New(msg))
}

// runtimeError builds a runtime error of the given kind.
func runtimeError(kind *Error, detail string, attrs ...slog.Attr) *Error {
	cause := kind.With(attrs...)
	if detail != "" {
		cause = cause.Detail(detail)
	}

	return ErrRuntime.Wrap(cause)
}

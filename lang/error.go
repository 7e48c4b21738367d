package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every error returned by this package unwraps to one of these, so callers
// can match on the failure kind with errors.Is regardless of the concrete
// error type carrying the position.
var (
	ErrReadInput        = NewError("failed to read input")
	ErrInvalidBinding   = NewError("invalid binding")
	ErrMaxDepthExceeded = NewError("maximum nesting depth exceeded")

	// Lexical errors.
	ErrUnexpectedCharacter = NewError("unexpected character")
	ErrUnterminatedString  = NewError("unterminated string")
	ErrMalformedNumber     = NewError("malformed number")

	// Syntax errors.
	ErrUnexpectedToken    = NewError("unexpected token")
	ErrMissingInitializer = NewError("missing initializer")
	ErrDuplicateKey       = NewError("duplicate object key")
	ErrInvalidAssignment  = NewError("invalid assignment target")

	// Runtime errors.
	ErrUndefinedName  = NewError("undefined name")
	ErrReassignConst  = NewError("assignment to constant")
	ErrTypeMismatch   = NewError("type mismatch")
	ErrDivisionByZero = NewError("division by zero")
	ErrUndefinedKey   = NewError("undefined key")
	ErrNumberRange    = NewError("number out of range")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	kind  *Error      // sentinel this error was derived from
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	pos   *Position
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.kind = e

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 3)

	if e.pos != nil {
		part = append(part, e.pos.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.kind != nil && e.kind == t.kind
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos != nil {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		kind:  e.kind,
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
		kind:  e.kind,
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		pos:   e.pos,
	}
}

// WithPosition returns a copy of the error located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   e.err,
		attrs: e.attrs,
		pos:   &pos,
	}
}

// Position returns the source position attached to the error, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// LexError reports the first unrecognized input found by the lexer.
type LexError struct {
	Kind *Error
	Pos  Position
	Char rune // offending character, or 0 at end of input
}

func (e *LexError) Error() string {
	if e.Char == 0 {
		return e.Pos.String() + ": " + e.Kind.msg
	}

	return fmt.Sprintf("%s: %s %s", e.Pos, e.Kind.msg, strconv.QuoteRune(e.Char))
}

func (e *LexError) Unwrap() error { return e.Kind }

// Position returns where the error occurred.
func (e *LexError) Position() Position { return e.Pos }

// LogValue implements slog.LogValuer.
func (e *LexError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Kind.msg),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
		slog.String("char", string(e.Char)),
	)
}

// ParseError reports malformed token sequences.
type ParseError struct {
	Kind     *Error
	Pos      Position
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Pos.String())
	sb.WriteString(": ")
	sb.WriteString(e.Kind.msg)

	if e.Found != "" {
		sb.WriteString(" ")
		sb.WriteString(strconv.Quote(e.Found))
	}

	if e.Expected != "" {
		sb.WriteString(", expected ")
		sb.WriteString(e.Expected)
	}

	return sb.String()
}

func (e *ParseError) Unwrap() error { return e.Kind }

// Position returns where the error occurred.
func (e *ParseError) Position() Position { return e.Pos }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Kind.msg),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
		slog.String("expected", e.Expected),
		slog.String("found", e.Found),
	)
}

// RuntimeError reports a semantic failure during evaluation.
type RuntimeError struct {
	Kind    *Error
	Pos     Position
	Message string
}

func (e *RuntimeError) Error() string {
	if e.Message == "" {
		return e.Pos.String() + ": " + e.Kind.msg
	}

	return e.Pos.String() + ": " + e.Kind.msg + ": " + e.Message
}

func (e *RuntimeError) Unwrap() error { return e.Kind }

// Position returns the position of the expression that failed.
func (e *RuntimeError) Position() Position { return e.Pos }

// LogValue implements slog.LogValuer.
func (e *RuntimeError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Kind.msg),
		slog.String("message", e.Message),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
	)
}

func runtimeError(kind *Error, pos Position, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Kind:    kind,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// Report formats err for display with the offending line of source and a
// caret under the failing column. Errors without a position are returned
// as-is.
func Report(source string, err error) string {
	if err == nil {
		return ""
	}

	var located interface{ Position() Position }
	if !errors.As(err, &located) {
		return "error: " + err.Error()
	}

	pos := located.Position()
	lines := strings.Split(source, "\n")

	var buf strings.Builder

	// Write error location and description
	buf.WriteString("error at line ")
	buf.WriteString(strconv.Itoa(pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(pos.Column))
	buf.WriteString(": ")
	buf.WriteString(describe(err))
	buf.WriteString("\n")

	// Show the offending line if within bounds
	if pos.Line > 0 && pos.Line <= len(lines) {
		line := strings.TrimRight(lines[pos.Line-1], "\r")

		buf.WriteString("  ")
		buf.WriteString(strconv.Itoa(pos.Line))
		buf.WriteString(" | ")
		buf.WriteString(line)
		buf.WriteString("\n")

		// +5 accounts for: 2 leading spaces + " | " (3 chars)
		padding := strings.Repeat(" ", len(strconv.Itoa(pos.Line))+5)
		if pos.Column > 0 {
			padding += strings.Repeat(" ", pos.Column-1)
		}

		buf.WriteString(padding + "^\n")
	}

	return buf.String()
}

// describe returns the error text without its leading position prefix.
func describe(err error) string {
	s := err.Error()

	var located interface{ Position() Position }
	if errors.As(err, &located) {
		s = strings.TrimPrefix(s, located.Position().String()+": ")
	}

	return s
}

package errors

import (
	"fmt"
	"strings"

	"mercator-hq/mpl-builtins/pkg/mpl/ast"
)

// ErrorType categorizes a builtin failure.
type ErrorType string

const (
	ErrorTypeArity     ErrorType = "arity"     // Wrong number of arguments
	ErrorTypeType      ErrorType = "type"      // Argument of the wrong kind
	ErrorTypeDecode    ErrorType = "decode"    // Malformed base64/hex input
	ErrorTypeParse     ErrorType = "parse"     // Malformed JSON, YAML or URL query text
	ErrorTypeSchema    ErrorType = "schema"    // Malformed JSON schema
	ErrorTypeSerialize ErrorType = "serialize" // Value could not be encoded
)

// Sentinels for errors.Is. They match any *Error of the same type.
var (
	ErrArity     = &Error{Type: ErrorTypeArity}
	ErrType      = &Error{Type: ErrorTypeType}
	ErrDecode    = &Error{Type: ErrorTypeDecode}
	ErrParse     = &Error{Type: ErrorTypeParse}
	ErrSchema    = &Error{Type: ErrorTypeSchema}
	ErrSerialize = &Error{Type: ErrorTypeSerialize}
)

// Error is a builtin failure anchored to the expression that caused it.
type Error struct {
	Type       ErrorType // Category of error
	Message    string    // Error message
	Span       ast.Span  // Call or argument the error is attributed to
	Context    string    // Source excerpt around the span
	Suggestion string    // Suggested fix (optional)
	Cause      error     // Underlying codec error (optional)
}

// New creates an error anchored at span with source context attached.
func New(errType ErrorType, span ast.Span, format string, args ...interface{}) *Error {
	return AddContextToError(&Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	})
}

// Wrap is New with an underlying cause. The cause's text is appended to the
// message.
func Wrap(errType ErrorType, span ast.Span, cause error, message string) *Error {
	err := New(errType, span, "%s", message)
	err.Cause = cause
	return err
}

// Error implements the error interface.
// It returns a formatted error message with location and context.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	sb.WriteString("\n")

	if e.Span.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Span.String()))
	}

	if e.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// Summary returns the message and cause on one line, without location or
// context. It is what soft failures embed in their results.
func (e *Error) Summary() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is one of the type sentinels matching e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Span.Source == nil {
		return t.Type == e.Type
	}
	return t == e
}

// WithSuggestion sets the suggestion and returns the error.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// NewArityError reports a call with the wrong number of arguments.
func NewArityError(span ast.Span, name string, expected, provided int) *Error {
	noun := "arguments"
	if expected == 1 {
		noun = "argument"
	}
	return New(ErrorTypeArity, span, "`%s` expects %d %s, %d provided", name, expected, noun, provided)
}

// NewTypeError reports an argument of the wrong kind. The span should be the
// argument's, not the call's.
func NewTypeError(span ast.Span, name, expected, got string) *Error {
	return New(ErrorTypeType, span, "`%s` expects %s argument. Got `%s` instead", name, expected, got)
}

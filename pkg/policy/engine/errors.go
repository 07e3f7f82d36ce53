package engine

import (
	"errors"
	"fmt"

	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
)

// Common sentinel errors
var (
	// ErrUnknownBuiltin indicates a name that does not resolve in the active
	// registry. Names of disabled families fail the same way.
	ErrUnknownBuiltin = errors.New("unknown builtin")

	// ErrArgumentsTooLarge indicates a call whose encoded arguments exceed
	// the configured limit.
	ErrArgumentsTooLarge = errors.New("builtin arguments too large")

	// ErrInvalidConfig indicates invalid dispatcher configuration.
	ErrInvalidConfig = errors.New("invalid dispatcher configuration")
)

// Error kinds reported to metrics, traces and evidence for failures that do
// not come from a builtin.
const (
	KindUnknownBuiltin = "unknown_builtin"
	KindArgumentSize   = "argument_size"
	KindInternal       = "internal"
)

// UnknownBuiltinError is returned for a name missing from the registry.
type UnknownBuiltinError struct {
	Name       string
	Span       ast.Span
	Suggestion string
}

// Error returns the error message.
func (e *UnknownBuiltinError) Error() string {
	msg := fmt.Sprintf("unknown builtin %q", e.Name)
	if e.Span.IsValid() {
		msg = e.Span.String() + ": " + msg
	}
	if e.Suggestion != "" {
		msg += " (" + e.Suggestion + ")"
	}
	return msg
}

// Unwrap returns ErrUnknownBuiltin.
func (e *UnknownBuiltinError) Unwrap() error {
	return ErrUnknownBuiltin
}

// ArgumentsTooLargeError is returned when a call's encoded arguments exceed
// MaxArgumentBytes.
type ArgumentsTooLargeError struct {
	Name  string
	Size  int
	Limit int
}

// Error returns the error message.
func (e *ArgumentsTooLargeError) Error() string {
	return fmt.Sprintf("arguments to %s are %d bytes, limit is %d", e.Name, e.Size, e.Limit)
}

// Unwrap returns ErrArgumentsTooLarge.
func (e *ArgumentsTooLargeError) Unwrap() error {
	return ErrArgumentsTooLarge
}

// ReloadError indicates a registry reload failure. The previous registry
// stays active.
type ReloadError struct {
	Cause error
}

// Error returns the error message.
func (e *ReloadError) Error() string {
	return fmt.Sprintf("builtin registry reload failed: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ReloadError) Unwrap() error {
	return e.Cause
}

// ErrorKind classifies err for metrics labels and evidence records.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var mplErr *mplerrors.Error
	switch {
	case errors.As(err, &mplErr):
		return string(mplErr.Type)
	case errors.Is(err, ErrUnknownBuiltin):
		return KindUnknownBuiltin
	case errors.Is(err, ErrArgumentsTooLarge):
		return KindArgumentSize
	default:
		return KindInternal
	}
}

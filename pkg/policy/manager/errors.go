package manager

import "fmt"

// LoadError represents a configuration file that could not be read,
// parsed or validated. The previously loaded configuration stays active.
type LoadError struct {
	// FilePath is the path to the file that failed to load
	FilePath string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load configuration %q: %v", e.FilePath, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ApplyError represents a configuration that loaded but was rejected by the
// reloader.
type ApplyError struct {
	FilePath string
	Cause    error
}

// Error implements the error interface.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("failed to apply configuration %q: %v", e.FilePath, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ApplyError) Unwrap() error {
	return e.Cause
}

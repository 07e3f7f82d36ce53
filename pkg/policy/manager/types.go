package manager

import (
	"time"

	"mercator-hq/mpl-builtins/pkg/config"
)

// Reloader applies a new builtins configuration. *engine.Dispatcher
// satisfies it.
type Reloader interface {
	Reload(cfg config.BuiltinsConfig) error
}

// ReloadEvent represents a file system change event that triggers a reload.
type ReloadEvent struct {
	// Type is the event type (create, modify, delete)
	Type ReloadEventType

	// FilePath is the path to the file that changed
	FilePath string

	// Timestamp is when the event occurred
	Timestamp time.Time
}

// ReloadEventType represents the type of file system change.
type ReloadEventType int

const (
	// ReloadEventCreate indicates the file was created or renamed into place
	ReloadEventCreate ReloadEventType = iota

	// ReloadEventModify indicates an existing file was modified
	ReloadEventModify

	// ReloadEventDelete indicates the file was deleted or renamed away
	ReloadEventDelete
)

// String returns a string representation of the event type.
func (t ReloadEventType) String() string {
	switch t {
	case ReloadEventCreate:
		return "create"
	case ReloadEventModify:
		return "modify"
	case ReloadEventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Status describes the outcome of the most recent reload.
type Status struct {
	// Path is the watched configuration file
	Path string `json:"path"`

	// LastLoadTime is when the configuration was last loaded successfully
	LastLoadTime time.Time `json:"last_load_time"`

	// LastAttemptTime is when a reload was last attempted
	LastAttemptTime time.Time `json:"last_attempt_time"`

	// LastError is the error of the last attempt, empty on success
	LastError string `json:"last_error,omitempty"`

	// Reloads counts successful reloads after the initial load
	Reloads int `json:"reloads"`
}

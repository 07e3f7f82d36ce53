package evidence

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound is returned by Get for an unknown record ID.
	ErrRecordNotFound = errors.New("evidence record not found")

	// ErrRecorderClosed is returned by Record after Close.
	ErrRecorderClosed = errors.New("evidence recorder is closed")
)

// StorageError wraps a failure of a storage backend.
type StorageError struct {
	Backend   string // "sqlite" or "memory"
	Operation string // "store", "query", "delete"...
	Cause     error
}

func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("evidence %s: %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// QueryError reports a query that was rejected before it reached storage.
type QueryError struct {
	Query *Query
	Cause error
}

func NewQueryError(query *Query, cause error) *QueryError {
	return &QueryError{Query: query, Cause: cause}
}

func (e *QueryError) Error() string {
	return "invalid evidence query: " + e.Cause.Error()
}

func (e *QueryError) Unwrap() error { return e.Cause }

// RecorderError reports a record the recorder failed to persist. RecordID
// is empty when the failure is not tied to one record.
type RecorderError struct {
	RecordID string
	Cause    error
}

func NewRecorderError(recordID string, cause error) *RecorderError {
	return &RecorderError{RecordID: recordID, Cause: cause}
}

func (e *RecorderError) Error() string {
	if e.RecordID == "" {
		return "evidence recorder: " + e.Cause.Error()
	}
	return fmt.Sprintf("evidence recorder: record %s: %v", e.RecordID, e.Cause)
}

func (e *RecorderError) Unwrap() error { return e.Cause }

// RetentionError reports a failed pruning run.
type RetentionError struct {
	RetentionDays int
	Cause         error
}

func NewRetentionError(retentionDays int, cause error) *RetentionError {
	return &RetentionError{RetentionDays: retentionDays, Cause: cause}
}

func (e *RetentionError) Error() string {
	return fmt.Sprintf("evidence retention (%d days): %v", e.RetentionDays, e.Cause)
}

func (e *RetentionError) Unwrap() error { return e.Cause }

// ExportError reports a failed export. RecordCount is the batch size, or the
// records streamed so far.
type ExportError struct {
	Format      string
	RecordCount int
	Cause       error
}

func NewExportError(format string, recordCount int, cause error) *ExportError {
	return &ExportError{Format: format, RecordCount: recordCount, Cause: cause}
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("evidence %s export (%d records): %v", e.Format, e.RecordCount, e.Cause)
}

func (e *ExportError) Unwrap() error { return e.Cause }

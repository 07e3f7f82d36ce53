package evidence

import (
	"context"
	"io"
	"time"
)

// Outcome of a builtin call.
const (
	// OutcomeOK means the builtin returned a value.
	OutcomeOK = "ok"

	// OutcomeError means the builtin or the dispatcher raised an error.
	OutcomeError = "error"

	// OutcomeSoftError means a schema builtin returned [false, message]
	// instead of raising.
	OutcomeSoftError = "soft_error"
)

// EvidenceRecord is the audit entry for a single builtin invocation. It
// never stores raw arguments, only a SHA-256 of their JSON encoding.
type EvidenceRecord struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // From serve request or CLI invocation

	// Timestamps
	CallTime     time.Time     `json:"call_time"`     // When the call started
	Duration     time.Duration `json:"duration"`      // Wall time of the builtin
	RecordedTime time.Time     `json:"recorded_time"` // When evidence was written

	// Call
	Builtin  string `json:"builtin"`   // Name as called
	Family   string `json:"family"`    // Empty for unknown names
	Arity    int    `json:"arity"`     // Declared arity, 0 for unknown names
	ArgCount int    `json:"arg_count"` // Arguments actually passed
	Strict   bool   `json:"strict"`    // Strict flag of the call
	Source   string `json:"source"`    // Policy file of the call span
	Line     int    `json:"line"`      // Line of the call span
	Column   int    `json:"column"`    // Column of the call span

	// Arguments
	ArgsHash  string `json:"args_hash"`  // SHA-256 of the JSON-encoded arguments
	ArgsBytes int    `json:"args_bytes"` // Size of the JSON-encoded arguments

	// Result
	Outcome      string `json:"outcome"`       // ok, error, soft_error
	ErrorKind    string `json:"error_kind"`    // arity, type, decode, parse, schema, serialize, unknown_builtin, ...
	ErrorMessage string `json:"error_message"` // Truncated error or soft failure message
}

// Query defines filter parameters for querying evidence records.
type Query struct {
	// Time range
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	Builtin   string `json:"builtin,omitempty"`    // Exact builtin name
	Family    string `json:"family,omitempty"`     // Builtin family
	Outcome   string `json:"outcome,omitempty"`    // ok, error, soft_error
	ErrorKind string `json:"error_kind,omitempty"` // Error kind
	RequestID string `json:"request_id,omitempty"` // Request ID
	Strict    *bool  `json:"strict,omitempty"`     // Strict flag

	// Duration thresholds
	MinDuration *time.Duration `json:"min_duration,omitempty"`
	MaxDuration *time.Duration `json:"max_duration,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`    // "call_time", "duration", "builtin"
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for evidence storage backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Store persists an evidence record.
	Store(ctx context.Context, record *EvidenceRecord) error

	// Query retrieves evidence records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*EvidenceRecord, error)

	// QueryStream returns a channel of evidence records for memory-efficient
	// streaming. Both channels are closed when the query completes; errCh
	// carries at most one error.
	QueryStream(ctx context.Context, query *Query) (<-chan *EvidenceRecord, <-chan error, error)

	// Count returns the number of evidence records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes evidence records matching the query filters.
	// Returns the number of records deleted.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Ping reports whether the backend is usable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the storage backend.
	Close() error
}

// Exporter defines the interface for exporting evidence records to various formats.
type Exporter interface {
	// Export writes evidence records to the provided writer in the exporter's format.
	Export(ctx context.Context, records []*EvidenceRecord, w io.Writer) error
}

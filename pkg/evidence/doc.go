// Package evidence defines the audit trail of builtin calls.
//
// Every call dispatched through the engine can produce one EvidenceRecord:
// which builtin ran, where in the policy source it was called, how long it
// took and how it ended (ok, error or soft_error). Arguments are never
// stored; the record keeps a SHA-256 of their JSON encoding and its size.
//
// The subpackages split the work:
//
//   - recorder: asynchronous, non-blocking writes from the dispatcher
//   - storage: memory and SQLite backends (modernc or mattn driver)
//   - query: validation and defaults for Query
//   - retention: age and count based pruning on a cron schedule
//   - export: JSON, JSON Lines and CSV output for `evidence query`
//
// # Recording Flow
//
//	engine.Call
//	     ↓
//	recorder.Record (drops when the buffer is full)
//	     ↓
//	worker: build record, hash arguments, truncate message
//	     ↓
//	Storage.Store
//
// # Querying
//
//	q := &evidence.Query{Builtin: "hex.decode", Outcome: evidence.OutcomeError}
//	records, err := store.Query(ctx, q)
package evidence

// Package recorder turns finished builtin calls into evidence records and
// writes them to a storage backend in the background.
//
// # Recording Flow
//
//  1. The dispatcher finishes a builtin call
//  2. Record builds an EvidenceRecord (UUID, outcome, SHA-256 of the
//     JSON-encoded arguments) and enqueues it without blocking
//  3. A single worker writes queued records to storage
//
// When the buffer is full the record is dropped, logged and reported to the
// Observer. Close drains the buffer before returning.
//
// # Basic Usage
//
//	rec := recorder.NewRecorder(store, recorder.FromConfig(cfg.Evidence),
//	    recorder.WithLogger(logger.Slog()),
//	    recorder.WithObserver(collector),
//	)
//	defer rec.Close()
//
//	_ = rec.Record(ctx, &recorder.Call{Builtin: "hex.decode", Outcome: evidence.OutcomeOK})
package recorder

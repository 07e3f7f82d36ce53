// Package storage provides storage backends for evidence records.
//
//   - SQLite: durable storage for the serve command, through either the pure
//     Go driver (modernc.org/sqlite, driver name "sqlite") or the cgo driver
//     (github.com/mattn/go-sqlite3, driver name "sqlite3")
//   - Memory: process-local storage for short runs and tests
//
// # SQLite Backend
//
//   - WAL mode and busy timeout set through the DSN so every pooled
//     connection gets them
//   - Timestamps and durations stored as integer nanoseconds
//   - Indexes on call time, builtin, outcome and request ID
//   - Sorting restricted to a fixed set of columns
//
// # Usage
//
//	store, err := storage.New(cfg.Evidence)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	records, err := store.Query(ctx, &evidence.Query{Builtin: "hex.decode", Limit: 20})
package storage

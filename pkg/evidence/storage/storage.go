package storage

import (
	"errors"
	"fmt"

	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/evidence"
)

// Backend names accepted in evidence.backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

var errMissingID = errors.New("record ID is required")

// New opens the backend selected by cfg.Backend.
func New(cfg config.EvidenceConfig) (evidence.Storage, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStorage(), nil
	case BackendSQLite, "":
		return NewSQLiteStorage(SQLiteConfigFrom(cfg.SQLite))
	default:
		return nil, fmt.Errorf("unsupported evidence backend %q (valid: %s, %s)", cfg.Backend, BackendMemory, BackendSQLite)
	}
}

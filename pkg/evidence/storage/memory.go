package storage

import (
	"context"
	"sync"

	"mercator-hq/mpl-builtins/pkg/evidence"
)

// MemoryStorage implements the Storage interface in process memory. Records
// are lost on exit; it backs `backend: memory` and the tests.
type MemoryStorage struct {
	records map[string]*evidence.EvidenceRecord
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*evidence.EvidenceRecord),
	}
}

// Store persists an evidence record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *evidence.EvidenceRecord) error {
	if record == nil || record.ID == "" {
		return evidence.NewStorageError("memory", "store", errMissingID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Create a copy to avoid mutation
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves evidence records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.EvidenceRecord, error) {
	return paginate(s.matching(query), query), nil
}

// QueryStream streams matching records over a channel.
func (s *MemoryStorage) QueryStream(ctx context.Context, query *evidence.Query) (<-chan *evidence.EvidenceRecord, <-chan error, error) {
	records := paginate(s.matching(query), query)

	recordsCh := make(chan *evidence.EvidenceRecord, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		for _, record := range records {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of evidence records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *evidence.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes evidence records matching the query filters.
// Pagination fields are ignored.
func (s *MemoryStorage) Delete(ctx context.Context, query *evidence.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if matchesQuery(record, query) {
			delete(s.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Ping always succeeds.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*evidence.EvidenceRecord)
	return nil
}

// GetByID retrieves a single evidence record by ID.
func (s *MemoryStorage) GetByID(id string) (*evidence.EvidenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, evidence.ErrRecordNotFound
	}

	recordCopy := *record
	return &recordCopy, nil
}

// Size returns the number of records in storage.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// matching returns sorted copies of all matching records.
func (s *MemoryStorage) matching(query *evidence.Query) []*evidence.EvidenceRecord {
	s.mu.RLock()
	results := make([]*evidence.EvidenceRecord, 0, len(s.records))
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}
	s.mu.RUnlock()

	sortRecords(results, query)
	return results
}

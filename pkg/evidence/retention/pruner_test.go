package retention

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/evidence"
	"mercator-hq/mpl-builtins/pkg/evidence/storage"
)

var fixedNow = time.Date(2026, 6, 15, 3, 0, 0, 0, time.UTC)

type countingObserver struct {
	pruned atomic.Int64
	calls  atomic.Int64
}

func (o *countingObserver) RecordEvidencePruned(n int64) {
	o.pruned.Add(n)
	o.calls.Add(1)
}

func storeAged(t *testing.T, s evidence.Storage, id string, age time.Duration) {
	t.Helper()
	err := s.Store(context.Background(), &evidence.EvidenceRecord{
		ID:       id,
		CallTime: fixedNow.Add(-age),
		Builtin:  "hex.encode",
		Family:   "hex",
		Outcome:  evidence.OutcomeOK,
	})
	if err != nil {
		t.Fatalf("Store(%s) error = %v", id, err)
	}
}

func remainingIDs(t *testing.T, s *storage.MemoryStorage) map[string]bool {
	t.Helper()
	records, err := s.Query(context.Background(), &evidence.Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	ids := make(map[string]bool, len(records))
	for _, r := range records {
		ids[r.ID] = true
	}
	return ids
}

func TestPruner_PruneOldRecords(t *testing.T) {
	store := storage.NewMemoryStorage()
	day := 24 * time.Hour
	storeAged(t, store, "old-1", 10*day)
	storeAged(t, store, "old-2", 8*day)
	storeAged(t, store, "recent-1", 5*day)
	storeAged(t, store, "recent-2", 3*day)

	observer := &countingObserver{}
	pruner := NewPruner(store, &Config{RetentionDays: 7}, withClock(func() time.Time { return fixedNow }), WithObserver(observer))

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() = %d, want 2", deleted)
	}

	ids := remainingIDs(t, store)
	if !ids["recent-1"] || !ids["recent-2"] || len(ids) != 2 {
		t.Errorf("remaining = %v", ids)
	}
	if observer.pruned.Load() != 2 || observer.calls.Load() != 1 {
		t.Errorf("observer saw %d records in %d calls", observer.pruned.Load(), observer.calls.Load())
	}
}

func TestPruner_RetentionDisabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	storeAged(t, store, "ancient", 3650*24*time.Hour)

	observer := &countingObserver{}
	pruner := NewPruner(store, &Config{RetentionDays: 0}, WithObserver(observer))

	deleted, err := pruner.Prune(context.Background())
	if err != nil || deleted != 0 {
		t.Fatalf("Prune() = %d, %v; want 0, nil", deleted, err)
	}
	if store.Size() != 1 {
		t.Errorf("record deleted with retention disabled")
	}
	if observer.calls.Load() != 0 {
		t.Error("observer notified for an empty prune")
	}
}

func TestPruner_EmptyStorage(t *testing.T) {
	pruner := NewPruner(storage.NewMemoryStorage(), &Config{RetentionDays: 1, MaxRecords: 5})

	deleted, err := pruner.Prune(context.Background())
	if err != nil || deleted != 0 {
		t.Errorf("Prune() = %d, %v; want 0, nil", deleted, err)
	}
}

func TestPruner_PruneByCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	for i := 0; i < 10; i++ {
		storeAged(t, store, fmt.Sprintf("rec-%d", i), time.Duration(10-i)*time.Hour)
	}

	pruner := NewPruner(store, &Config{MaxRecords: 4}, withClock(func() time.Time { return fixedNow }))

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 6 {
		t.Errorf("Prune() = %d, want 6", deleted)
	}

	ids := remainingIDs(t, store)
	for i := 6; i < 10; i++ {
		if !ids[fmt.Sprintf("rec-%d", i)] {
			t.Errorf("newest record rec-%d was pruned", i)
		}
	}
}

func TestPruner_CountWithinLimit(t *testing.T) {
	store := storage.NewMemoryStorage()
	storeAged(t, store, "a", time.Hour)
	storeAged(t, store, "b", 2*time.Hour)

	pruner := NewPruner(store, &Config{MaxRecords: 2})

	deleted, err := pruner.Prune(context.Background())
	if err != nil || deleted != 0 {
		t.Errorf("Prune() = %d, %v; want 0, nil", deleted, err)
	}
}

func TestPruner_BothAgeAndCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	day := 24 * time.Hour
	storeAged(t, store, "expired", 40*day)
	storeAged(t, store, "old", 4*day)
	storeAged(t, store, "mid", 3*day)
	storeAged(t, store, "new", 1*day)

	observer := &countingObserver{}
	pruner := NewPruner(store, &Config{RetentionDays: 30, MaxRecords: 2},
		withClock(func() time.Time { return fixedNow }), WithObserver(observer))

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() = %d, want 2", deleted)
	}

	ids := remainingIDs(t, store)
	if !ids["mid"] || !ids["new"] || len(ids) != 2 {
		t.Errorf("remaining = %v", ids)
	}
	if observer.pruned.Load() != 2 {
		t.Errorf("observer pruned = %d, want 2", observer.pruned.Load())
	}
}

type failingStorage struct {
	*storage.MemoryStorage
}

func (failingStorage) Delete(ctx context.Context, q *evidence.Query) (int64, error) {
	return 0, errors.New("database is locked")
}

func TestPruner_DeleteError(t *testing.T) {
	pruner := NewPruner(failingStorage{storage.NewMemoryStorage()}, &Config{RetentionDays: 7})

	_, err := pruner.Prune(context.Background())
	var retentionErr *evidence.RetentionError
	if !errors.As(err, &retentionErr) {
		t.Fatalf("expected RetentionError, got %v", err)
	}
	if retentionErr.RetentionDays != 7 {
		t.Errorf("RetentionDays = %d, want 7", retentionErr.RetentionDays)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.RetentionConfig{Days: 14, PruneSchedule: "@daily", MaxRecords: 1000})
	if cfg.RetentionDays != 14 || cfg.PruneSchedule != "@daily" || cfg.MaxRecords != 1000 {
		t.Errorf("FromConfig() = %+v", cfg)
	}

	def := DefaultConfig()
	if def.RetentionDays != config.DefaultEvidenceRetentionDays || def.PruneSchedule == "" {
		t.Errorf("DefaultConfig() = %+v", def)
	}
}

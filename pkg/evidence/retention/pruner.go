package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/evidence"
	"mercator-hq/mpl-builtins/pkg/evidence/storage"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain call records.
	// 0 means keep records forever (no pruning by age).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: config.DefaultEvidenceRetentionDays,
		PruneSchedule: config.DefaultEvidenceRetentionSchedule,
		MaxRecords:    config.DefaultEvidenceRetentionMaxRecords,
	}
}

// FromConfig converts the evidence.retention configuration section.
func FromConfig(cfg config.RetentionConfig) *Config {
	return &Config{
		RetentionDays: cfg.Days,
		PruneSchedule: cfg.PruneSchedule,
		MaxRecords:    cfg.MaxRecords,
	}
}

// Observer is notified of how many records each prune removed.
// *metrics.Collector satisfies it.
type Observer interface {
	RecordEvidencePruned(n int64)
}

// Option configures a Pruner.
type Option func(*Pruner)

// WithLogger sets the pruner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pruner) {
		if logger != nil {
			p.logger = logger.With("component", "evidence.retention")
		}
	}
}

// WithObserver reports pruned counts to o.
func WithObserver(o Observer) Option {
	return func(p *Pruner) {
		p.observer = o
	}
}

// withClock overrides time.Now in tests.
func withClock(now func() time.Time) Option {
	return func(p *Pruner) {
		p.now = now
	}
}

// Pruner enforces retention policies on evidence records.
type Pruner struct {
	storage   evidence.Storage
	config    *Config
	logger    *slog.Logger
	observer  Observer
	now       func() time.Time
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(store evidence.Storage, cfg *Config, opts ...Option) *Pruner {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	pruner := &Pruner{
		storage: store,
		config:  cfg,
		logger:  slog.Default().With("component", "evidence.retention"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(pruner)
	}

	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes call records older than the retention period, then the
// oldest records beyond MaxRecords. It returns the total deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64
	defer func() {
		if p.observer != nil && totalDeleted > 0 {
			p.observer.RecordEvidencePruned(totalDeleted)
		}
	}()

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if totalDeleted == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("evidence pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records whose call time is before the cutoff.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	deleted, err := p.storage.Delete(ctx, &evidence.Query{EndTime: &cutoff})
	if err != nil {
		return 0, evidence.NewRetentionError(p.config.RetentionDays, err)
	}

	return deleted, nil
}

// pruneByCount deletes the oldest records when the total exceeds
// MaxRecords. Records sharing the cutoff call time are removed together.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &evidence.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	if count <= p.config.MaxRecords {
		p.logger.Debug("record count within limit",
			"current", count,
			"max", p.config.MaxRecords,
		)
		return 0, nil
	}

	toDelete := count - p.config.MaxRecords

	p.logger.Info("record count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"to_delete", toDelete,
	)

	oldest, err := p.storage.Query(ctx, &evidence.Query{
		SortBy:    storage.SortByCallTime,
		SortOrder: "asc",
		Limit:     int(toDelete),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query records: %w", err)
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	cutoff := oldest[len(oldest)-1].CallTime

	deleted, err := p.storage.Delete(ctx, &evidence.Query{EndTime: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}

	return deleted, nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}

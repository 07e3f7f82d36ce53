// Package retention prunes old builtin call records.
//
// Two limits apply, in order: records older than RetentionDays are deleted,
// then the oldest records beyond MaxRecords. Either limit is disabled by
// setting it to zero. A Scheduler runs Prune on a cron expression
// (robfig/cron standard syntax, descriptors such as "@every 1h" included)
// and skips a tick while the previous prune is still running.
//
//	pruner := retention.NewPruner(store, retention.FromConfig(cfg.Evidence.Retention),
//	    retention.WithLogger(logger.Slog()),
//	    retention.WithObserver(collector),
//	)
//	if err := pruner.Start(ctx); err != nil {
//	    return err
//	}
//	defer pruner.Stop()
package retention

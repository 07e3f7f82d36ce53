package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mercator-hq/mpl-builtins/pkg/cli"
	"mercator-hq/mpl-builtins/pkg/evidence"
	"mercator-hq/mpl-builtins/pkg/evidence/export"
	"mercator-hq/mpl-builtins/pkg/evidence/query"
	"mercator-hq/mpl-builtins/pkg/evidence/retention"
	"mercator-hq/mpl-builtins/pkg/evidence/storage"
)

// formatText prints a table instead of exporting records.
const formatText = "text"

var evidenceFlags struct {
	backend   string
	timeRange string
	since     time.Duration
	builtin   string
	family    string
	outcome   string
	errorKind string
	requestID string
	limit     int
	offset    int
	sortBy    string
	sortOrder string
	format    string
	output    string
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Query the builtin call audit log",
	Long: `Query, export and prune recorded builtin calls.

Calls are recorded when evidence.enabled is set. Records hold the builtin,
its outcome, error kind and a hash of the arguments, never the arguments
themselves.

Subcommands:
  query   - List or export recorded calls
  prune   - Apply the retention policy once`,
}

var evidenceQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query recorded builtin calls",
	Long: `Query recorded builtin calls with filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-10-01T00:00:00Z/2026-10-02T00:00:00Z"

Examples:
  # Recent failures
  mpl-builtins evidence query --outcome error --since 1h

  # All schema calls as CSV
  mpl-builtins evidence query --family jsonschema --format csv -o calls.csv

  # Calls of one serve request
  mpl-builtins evidence query --request-id 6f1c... --format json`,
	Args: cobra.NoArgs,
	RunE: queryEvidence,
}

var evidencePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete records beyond the retention policy",
	Long: `Delete records older than evidence.retention.days and, when
evidence.retention.max_records is set, the oldest records beyond it.`,
	Args: cobra.NoArgs,
	RunE: pruneEvidence,
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
	evidenceCmd.AddCommand(evidenceQueryCmd, evidencePruneCmd)

	evidenceCmd.PersistentFlags().StringVar(&evidenceFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")

	f := evidenceQueryCmd.Flags()
	f.StringVar(&evidenceFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	f.DurationVar(&evidenceFlags.since, "since", 0, "only calls newer than this duration (e.g. 1h)")
	f.StringVar(&evidenceFlags.builtin, "builtin", "", "filter by builtin name")
	f.StringVar(&evidenceFlags.family, "family", "", "filter by builtin family")
	f.StringVar(&evidenceFlags.outcome, "outcome", "", "filter by outcome (ok, error, soft_error)")
	f.StringVar(&evidenceFlags.errorKind, "error-kind", "", "filter by error kind (e.g. decode, unknown_builtin)")
	f.StringVar(&evidenceFlags.requestID, "request-id", "", "filter by request ID")
	f.IntVar(&evidenceFlags.limit, "limit", 0, "max results (default from evidence.query.default_limit)")
	f.IntVar(&evidenceFlags.offset, "offset", 0, "pagination offset")
	f.StringVar(&evidenceFlags.sortBy, "sort-by", "", "sort field: call_time, duration, builtin")
	f.StringVar(&evidenceFlags.sortOrder, "sort-order", "", "sort order: asc, desc")
	f.StringVar(&evidenceFlags.format, "format", formatText, "output format: text, json, jsonl, csv")
	f.StringVarP(&evidenceFlags.output, "output", "o", "", "output file (default: stdout)")
}

func openEvidenceStore() (evidence.Storage, error) {
	cfg := appConfig.Evidence
	if evidenceFlags.backend != "" {
		cfg.Backend = evidenceFlags.backend
	}
	if cfg.Backend == storage.BackendMemory {
		return nil, fmt.Errorf("the memory backend holds no records outside a running process")
	}
	return storage.New(cfg)
}

func queryEvidence(cmd *cobra.Command, args []string) error {
	q, err := buildEvidenceQuery(time.Now())
	if err != nil {
		return err
	}

	validator := query.NewValidator(appConfig.Evidence.Query)
	validator.ApplyDefaults(q)
	if err := validator.Validate(q); err != nil {
		return err
	}

	store, err := openEvidenceStore()
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	out := cmd.OutOrStdout()
	var progress cli.ProgressReporter
	if evidenceFlags.output != "" {
		file, err := os.Create(evidenceFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
		progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "records")
	}

	if evidenceFlags.format == formatText {
		records, err := store.Query(ctx, q)
		if err != nil {
			return cli.NewCommandError("evidence", fmt.Errorf("query failed: %w", err))
		}
		return cli.NewFormatter(cli.FormatText).FormatTo(out, evidenceTable(records))
	}

	exporter, err := export.New(evidenceFlags.format)
	if err != nil {
		return err
	}

	if progress != nil {
		total, err := store.Count(ctx, q)
		if err != nil {
			return cli.NewCommandError("evidence", fmt.Errorf("count failed: %w", err))
		}
		if rest := total - int64(q.Offset); rest < int64(q.Limit) {
			total = max(rest, 0)
		} else {
			total = int64(q.Limit)
		}
		progress.Start(total)
	}

	if err := exportRecords(ctx, store, q, exporter, out, progress); err != nil {
		if progress != nil {
			progress.Error(err)
		}
		return cli.NewCommandError("evidence", err)
	}
	if progress != nil {
		progress.Finish()
	}
	return nil
}

// exportRecords streams the query result through the exporter, counting
// records on progress when it is set.
func exportRecords(ctx context.Context, store evidence.Storage, q *evidence.Query, exporter export.StreamExporter, w io.Writer, progress cli.ProgressReporter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recordsCh, errCh, err := store.QueryStream(ctx, q)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if progress != nil {
		counted := make(chan *evidence.EvidenceRecord)
		go func(in <-chan *evidence.EvidenceRecord) {
			defer close(counted)
			var n int64
			for record := range in {
				select {
				case counted <- record:
				case <-ctx.Done():
					return
				}
				n++
				progress.Update(n)
			}
		}(recordsCh)
		recordsCh = counted
	}

	if err := exporter.ExportStream(ctx, recordsCh, w); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return nil
}

// buildEvidenceQuery turns the query flags into a Query. now anchors --since.
func buildEvidenceQuery(now time.Time) (*evidence.Query, error) {
	q := &evidence.Query{
		Builtin:   evidenceFlags.builtin,
		Family:    evidenceFlags.family,
		Outcome:   evidenceFlags.outcome,
		ErrorKind: evidenceFlags.errorKind,
		RequestID: evidenceFlags.requestID,
		Limit:     evidenceFlags.limit,
		Offset:    evidenceFlags.offset,
		SortBy:    evidenceFlags.sortBy,
		SortOrder: evidenceFlags.sortOrder,
	}

	if evidenceFlags.timeRange != "" && evidenceFlags.since > 0 {
		return nil, fmt.Errorf("--time-range and --since are mutually exclusive")
	}

	if evidenceFlags.timeRange != "" {
		start, end, err := parseTimeRange(evidenceFlags.timeRange)
		if err != nil {
			return nil, err
		}
		q.StartTime, q.EndTime = &start, &end
	}
	if evidenceFlags.since > 0 {
		start := now.Add(-evidenceFlags.since)
		q.StartTime = &start
	}

	return q, nil
}

func parseTimeRange(s string) (time.Time, time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid time range format (expected: start/end)")
	}

	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}
	return start, end, nil
}

func evidenceTable(records []*evidence.EvidenceRecord) *cli.Table {
	table := &cli.Table{Headers: []string{"call_time", "builtin", "outcome", "error_kind", "duration_us", "args", "request_id"}}
	for _, r := range records {
		table.Rows = append(table.Rows, []string{
			r.CallTime.UTC().Format(time.RFC3339Nano),
			r.Builtin,
			r.Outcome,
			r.ErrorKind,
			strconv.FormatInt(r.Duration.Microseconds(), 10),
			humanize.Bytes(uint64(r.ArgsBytes)),
			r.RequestID,
		})
	}
	return table
}

func pruneEvidence(cmd *cobra.Command, args []string) error {
	store, err := openEvidenceStore()
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}
	defer store.Close()

	pruner := retention.NewPruner(store, retention.FromConfig(appConfig.Evidence.Retention),
		retention.WithLogger(appLogger.Slog()),
	)
	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d records\n", deleted)
	return nil
}

package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"mercator-hq/mpl-builtins/pkg/evidence"
)

// CSVExporter exports evidence records to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes evidence records to the provided writer in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []*evidence.EvidenceRecord, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(headerRow); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(recordToRow(record)); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return evidence.NewExportError("csv", len(records), err)
	}
	return nil
}

// ExportStream exports evidence records from a channel to CSV format,
// flushing every 100 rows.
func (e *CSVExporter) ExportStream(ctx context.Context, recordsCh <-chan *evidence.EvidenceRecord, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow); err != nil {
			return evidence.NewExportError("csv", 0, err)
		}
	}

	recordCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return evidence.NewExportError("csv", recordCount, err)
				}
				return nil
			}

			if err := writer.Write(recordToRow(record)); err != nil {
				return evidence.NewExportError("csv", recordCount, err)
			}

			recordCount++
			if recordCount%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return evidence.NewExportError("csv", recordCount, err)
				}
			}
		}
	}
}

var headerRow = []string{
	"id", "request_id",
	"call_time", "duration_us", "recorded_time",
	"builtin", "family", "arity", "arg_count", "strict",
	"source", "line", "column",
	"args_hash", "args_bytes",
	"outcome", "error_kind", "error_message",
}

// recordToRow converts an evidence record to a CSV row.
func recordToRow(record *evidence.EvidenceRecord) []string {
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	}

	return []string{
		record.ID,
		record.RequestID,
		formatTime(record.CallTime),
		strconv.FormatInt(record.Duration.Microseconds(), 10),
		formatTime(record.RecordedTime),
		record.Builtin,
		record.Family,
		strconv.Itoa(record.Arity),
		strconv.Itoa(record.ArgCount),
		strconv.FormatBool(record.Strict),
		record.Source,
		strconv.Itoa(record.Line),
		strconv.Itoa(record.Column),
		record.ArgsHash,
		strconv.Itoa(record.ArgsBytes),
		record.Outcome,
		record.ErrorKind,
		record.ErrorMessage,
	}
}

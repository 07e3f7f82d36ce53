package export

import (
	"context"
	"io"

	jsoniter "github.com/json-iterator/go"

	"mercator-hq/mpl-builtins/pkg/evidence"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONExporter exports evidence records to JSON format.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool

	// Lines writes one compact object per line instead of an array.
	Lines bool
}

// NewJSONExporter creates a new JSON array exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// NewJSONLinesExporter creates an exporter that writes one record per line.
func NewJSONLinesExporter() *JSONExporter {
	return &JSONExporter{
		Lines: true,
	}
}

// Export writes evidence records to the provided writer. Array output is
// always a JSON array, even for zero or one record.
func (e *JSONExporter) Export(ctx context.Context, records []*evidence.EvidenceRecord, w io.Writer) error {
	ch := make(chan *evidence.EvidenceRecord, len(records))
	for _, record := range records {
		ch <- record
	}
	close(ch)

	return e.ExportStream(ctx, ch, w)
}

// ExportStream exports evidence records from a channel without holding
// the whole result set in memory.
func (e *JSONExporter) ExportStream(ctx context.Context, recordsCh <-chan *evidence.EvidenceRecord, w io.Writer) error {
	if !e.Lines {
		if _, err := w.Write([]byte("[")); err != nil {
			return evidence.NewExportError("json", 0, err)
		}
	}

	first := true
	recordCount := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				return e.finish(w, recordCount)
			}

			if err := e.writeSeparator(w, first); err != nil {
				return evidence.NewExportError("json", recordCount, err)
			}
			first = false

			data, err := e.serializeRecord(record)
			if err != nil {
				return evidence.NewExportError("json", recordCount, err)
			}
			if _, err := w.Write(data); err != nil {
				return evidence.NewExportError("json", recordCount, err)
			}

			recordCount++
		}
	}
}

func (e *JSONExporter) writeSeparator(w io.Writer, first bool) error {
	var sep string
	switch {
	case e.Lines:
		if !first {
			sep = "\n"
		}
	case e.Pretty && first:
		sep = "\n  "
	case e.Pretty:
		sep = ",\n  "
	case !first:
		sep = ","
	}
	if sep == "" {
		return nil
	}
	_, err := io.WriteString(w, sep)
	return err
}

func (e *JSONExporter) finish(w io.Writer, recordCount int) error {
	var tail string
	switch {
	case e.Lines && recordCount > 0:
		tail = "\n"
	case e.Lines:
		return nil
	case e.Pretty && recordCount > 0:
		tail = "\n]\n"
	default:
		tail = "]\n"
	}
	if _, err := io.WriteString(w, tail); err != nil {
		return evidence.NewExportError("json", recordCount, err)
	}
	return nil
}

// serializeRecord serializes a single evidence record to JSON.
func (e *JSONExporter) serializeRecord(record *evidence.EvidenceRecord) ([]byte, error) {
	if e.Pretty && !e.Lines {
		return json.MarshalIndent(record, "  ", "  ")
	}
	return json.Marshal(record)
}

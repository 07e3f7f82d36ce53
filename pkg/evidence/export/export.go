package export

import (
	"context"
	"fmt"
	"io"

	"mercator-hq/mpl-builtins/pkg/evidence"
)

// Output formats accepted by New.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// StreamExporter is an Exporter that can also consume a record channel.
type StreamExporter interface {
	evidence.Exporter
	ExportStream(ctx context.Context, recordsCh <-chan *evidence.EvidenceRecord, w io.Writer) error
}

// New returns the exporter for format.
func New(format string) (StreamExporter, error) {
	switch format {
	case FormatJSON, "":
		return NewJSONExporter(true), nil
	case FormatJSONL:
		return NewJSONLinesExporter(), nil
	case FormatCSV:
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (valid: %s, %s, %s)", format, FormatJSON, FormatJSONL, FormatCSV)
	}
}

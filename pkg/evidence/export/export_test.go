package export

import (
	"bytes"
	"context"
	"encoding/csv"
	stdjson "encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"mercator-hq/mpl-builtins/pkg/evidence"
)

func sampleRecords() []*evidence.EvidenceRecord {
	callTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []*evidence.EvidenceRecord{
		{
			ID:        "rec-1",
			RequestID: "req-1",
			CallTime:  callTime,
			Duration:  1500 * time.Microsecond,
			Builtin:   "hex.decode",
			Family:    "hex",
			Arity:     1,
			ArgCount:  1,
			Strict:    true,
			Source:    "policy.mpl",
			Line:      3,
			Column:    7,
			ArgsHash:  "deadbeef",
			ArgsBytes: 6,
			Outcome:   evidence.OutcomeError,
			ErrorKind: "decode",
			// commas and quotes must survive CSV escaping
			ErrorMessage: `invalid hex, got "zz"`,
		},
		{
			ID:        "rec-2",
			RequestID: "req-1",
			CallTime:  callTime.Add(time.Second),
			Duration:  20 * time.Microsecond,
			Builtin:   "json.verify_schema",
			Family:    "jsonschema",
			Arity:     2,
			ArgCount:  2,
			Outcome:   evidence.OutcomeSoftError,
		},
	}
}

func TestJSONExporter_Array(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer
		if err := NewJSONExporter(pretty).Export(context.Background(), sampleRecords(), &buf); err != nil {
			t.Fatalf("Export(pretty=%v) error = %v", pretty, err)
		}

		var decoded []map[string]interface{}
		if err := stdjson.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not a JSON array (pretty=%v): %v\n%s", pretty, err, buf.String())
		}
		if len(decoded) != 2 {
			t.Fatalf("decoded %d records, want 2", len(decoded))
		}
		if decoded[0]["builtin"] != "hex.decode" || decoded[1]["outcome"] != "soft_error" {
			t.Errorf("unexpected records: %v", decoded)
		}
		if pretty && !strings.Contains(buf.String(), "\n  {") {
			t.Errorf("pretty output not indented:\n%s", buf.String())
		}
	}
}

func TestJSONExporter_SingleRecordIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).Export(context.Background(), sampleRecords()[:1], &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "[{") {
		t.Errorf("single record output = %q, want array", buf.String())
	}
}

func TestJSONExporter_Empty(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer
		if err := NewJSONExporter(pretty).Export(context.Background(), nil, &buf); err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("empty output = %q, want []", buf.String())
		}
	}
}

func TestJSONLinesExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONLinesExporter().Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	for _, line := range lines {
		var rec evidence.EvidenceRecord
		if err := stdjson.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("line %q is not a record: %v", line, err)
		}
	}

	buf.Reset()
	if err := NewJSONLinesExporter().Export(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Export(empty) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty JSON lines output = %q", buf.String())
	}
}

func TestJSONExporter_StreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan *evidence.EvidenceRecord)
	var buf bytes.Buffer
	err := NewJSONExporter(false).ExportStream(ctx, ch, &buf)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExportStream() error = %v, want context.Canceled", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestJSONExporter_WriteError(t *testing.T) {
	err := NewJSONExporter(false).Export(context.Background(), sampleRecords(), failingWriter{})
	var exportErr *evidence.ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("expected ExportError, got %v", err)
	}
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(true).Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}

	header := rows[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %q", name)
		return -1
	}

	first := rows[1]
	if first[col("builtin")] != "hex.decode" {
		t.Errorf("builtin = %q", first[col("builtin")])
	}
	if first[col("duration_us")] != "1500" {
		t.Errorf("duration_us = %q, want 1500", first[col("duration_us")])
	}
	if first[col("strict")] != "true" {
		t.Errorf("strict = %q", first[col("strict")])
	}
	if first[col("call_time")] != "2026-03-01T12:00:00Z" {
		t.Errorf("call_time = %q", first[col("call_time")])
	}
	if first[col("error_message")] != `invalid hex, got "zz"` {
		t.Errorf("error_message = %q", first[col("error_message")])
	}
	if rows[2][col("recorded_time")] != "" {
		t.Errorf("zero recorded_time should be empty, got %q", rows[2][col("recorded_time")])
	}
}

func TestCSVExporter_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(false).Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if strings.HasPrefix(buf.String(), "id,") {
		t.Error("header written when IncludeHeader is false")
	}
}

func TestCSVExporter_Stream(t *testing.T) {
	ch := make(chan *evidence.EvidenceRecord, 250)
	for i := 0; i < 250; i++ {
		ch <- sampleRecords()[i%2]
	}
	close(ch)

	var buf bytes.Buffer
	if err := NewCSVExporter(true).ExportStream(context.Background(), ch, &buf); err != nil {
		t.Fatalf("ExportStream() error = %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 251 {
		t.Errorf("got %d rows, want 251", len(rows))
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format  string
		want    interface{}
		wantErr bool
	}{
		{format: "", want: &JSONExporter{}},
		{format: FormatJSON, want: &JSONExporter{}},
		{format: FormatJSONL, want: &JSONExporter{}},
		{format: FormatCSV, want: &CSVExporter{}},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := New(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v", tt.format, err)
			}
			if tt.wantErr {
				return
			}
			switch tt.want.(type) {
			case *JSONExporter:
				if _, ok := got.(*JSONExporter); !ok {
					t.Errorf("New(%q) = %T", tt.format, got)
				}
			case *CSVExporter:
				if _, ok := got.(*CSVExporter); !ok {
					t.Errorf("New(%q) = %T", tt.format, got)
				}
			}
		})
	}

	jl, _ := New(FormatJSONL)
	if !jl.(*JSONExporter).Lines {
		t.Error("jsonl exporter should write lines")
	}
}

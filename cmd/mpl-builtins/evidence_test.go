package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/mpl-builtins/pkg/cli"
	"mercator-hq/mpl-builtins/pkg/evidence"
	"mercator-hq/mpl-builtins/pkg/evidence/export"
	"mercator-hq/mpl-builtins/pkg/evidence/storage"
)

func TestBuildEvidenceQuery(t *testing.T) {
	defer resetFlags(rootCmd)
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	t.Run("since", func(t *testing.T) {
		resetFlags(rootCmd)
		evidenceFlags.since = time.Hour
		evidenceFlags.outcome = evidence.OutcomeError

		q, err := buildEvidenceQuery(now)
		if err != nil {
			t.Fatalf("buildEvidenceQuery() error = %v", err)
		}
		if q.StartTime == nil || !q.StartTime.Equal(now.Add(-time.Hour)) {
			t.Errorf("StartTime = %v", q.StartTime)
		}
		if q.EndTime != nil {
			t.Errorf("EndTime = %v, want nil", q.EndTime)
		}
		if q.Outcome != evidence.OutcomeError {
			t.Errorf("Outcome = %q", q.Outcome)
		}
	})

	t.Run("time range", func(t *testing.T) {
		resetFlags(rootCmd)
		evidenceFlags.timeRange = "2026-10-01T00:00:00Z/2026-10-02T00:00:00Z"

		q, err := buildEvidenceQuery(now)
		if err != nil {
			t.Fatalf("buildEvidenceQuery() error = %v", err)
		}
		if q.StartTime.Day() != 1 || q.EndTime.Day() != 2 {
			t.Errorf("range = %v/%v", q.StartTime, q.EndTime)
		}
	})

	t.Run("mutually exclusive", func(t *testing.T) {
		resetFlags(rootCmd)
		evidenceFlags.timeRange = "2026-10-01T00:00:00Z/2026-10-02T00:00:00Z"
		evidenceFlags.since = time.Hour

		if _, err := buildEvidenceQuery(now); err == nil {
			t.Error("expected error")
		}
	})
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2026-10-01T00:00:00Z/2026-10-02T00:00:00Z", false},
		{"2026-10-01T00:00:00Z", true},
		{"yesterday/today", true},
		{"2026-10-01T00:00:00Z/tomorrow", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, _, err := parseTimeRange(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseTimeRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestEvidenceTable(t *testing.T) {
	records := []*evidence.EvidenceRecord{{
		RequestID: "req-1",
		CallTime:  time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Microsecond,
		Builtin:   "base64.decode",
		Outcome:   evidence.OutcomeError,
		ErrorKind: "decode",
		ArgsBytes: 1500,
	}}

	table := evidenceTable(records)
	want := []string{"2026-10-17T08:00:00Z", "base64.decode", "error", "decode", "1500", "1.5 kB", "req-1"}
	if strings.Join(table.Rows[0], "|") != strings.Join(want, "|") {
		t.Errorf("row = %v, want %v", table.Rows[0], want)
	}
}

func TestExportRecords(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	base := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.Store(ctx, &evidence.EvidenceRecord{
			ID:       fmt.Sprintf("rec-%d", i),
			CallTime: base.Add(time.Duration(i) * time.Minute),
			Builtin:  "hex.encode",
			Family:   "hex",
			Outcome:  evidence.OutcomeOK,
		})
		if err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	exporter, err := export.New(export.FormatJSONL)
	if err != nil {
		t.Fatalf("export.New() error = %v", err)
	}

	var out, progressOut bytes.Buffer
	progress := cli.NewProgressReporter(&progressOut, "records")
	progress.Start(3)

	q := &evidence.Query{Limit: 10, SortBy: "call_time", SortOrder: "asc"}
	if err := exportRecords(ctx, store, q, exporter, &out, progress); err != nil {
		t.Fatalf("exportRecords() error = %v", err)
	}
	progress.Finish()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], `"id":"rec-0"`) {
		t.Errorf("first line = %s", lines[0])
	}
	if !strings.Contains(progressOut.String(), "3/3 records") {
		t.Errorf("progress output = %q", progressOut.String())
	}
}

func TestEvidenceCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "evidence.db")
	cfgPath := writeConfigFile(t, fmt.Sprintf(`evidence:
  enabled: true
  backend: sqlite
  sqlite:
    path: %q
`, dbPath))

	if _, err := executeCommand(t, nil, "--config", cfgPath, "call", "hex.encode", `"hi"`); err != nil {
		t.Fatalf("call error = %v", err)
	}
	if _, err := executeCommand(t, nil, "--config", cfgPath, "call", "base64.decode", `"@@"`); err == nil {
		t.Fatal("expected call error")
	}

	out, err := executeCommand(t, nil, "--config", cfgPath, "evidence", "query", "--format", "jsonl")
	if err != nil {
		t.Fatalf("evidence query error = %v", err)
	}
	if n := strings.Count(out, "\n"); n != 2 {
		t.Errorf("records = %d, want 2:\n%s", n, out)
	}

	out, err = executeCommand(t, nil, "--config", cfgPath, "evidence", "query", "--outcome", "error")
	if err != nil {
		t.Fatalf("evidence query error = %v", err)
	}
	if !strings.Contains(out, "base64.decode") || strings.Contains(out, "hex.encode") {
		t.Errorf("filtered table:\n%s", out)
	}

	csvPath := filepath.Join(t.TempDir(), "calls.csv")
	if _, err := executeCommand(t, nil, "--config", cfgPath, "evidence", "query", "--format", "csv", "-o", csvPath); err != nil {
		t.Fatalf("evidence export error = %v", err)
	}

	out, err = executeCommand(t, nil, "--config", cfgPath, "evidence", "prune")
	if err != nil {
		t.Fatalf("evidence prune error = %v", err)
	}
	if out != "Deleted 0 records\n" {
		t.Errorf("prune output = %q", out)
	}

	if _, err := executeCommand(t, nil, "--config", cfgPath, "evidence", "query", "--backend", "memory"); err == nil {
		t.Error("expected error for memory backend")
	}
}

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "records")

	progress.Start(100)
	progress.Update(50)
	progress.Finish()

	output := buf.String()
	if !strings.Contains(output, " 50.0% [") || !strings.Contains(output, "50/100 records") {
		t.Errorf("expected intermediate line in output: %q", output)
	}
	if !strings.Contains(output, "100.0% ["+strings.Repeat("=", barWidth)+"] 100/100 records") {
		t.Errorf("expected completed line in output: %q", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Errorf("expected Finish to end the line: %q", output)
	}
}

func TestSimpleProgress_RedrawOnPercentChange(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "records")

	progress.Start(1000)
	for i := int64(1); i <= 9; i++ {
		progress.Update(i)
	}
	progress.Update(10)

	// 0% on Start, nothing for 1..9 (still 0%), 1% at 10
	if n := strings.Count(buf.String(), "\r"); n != 2 {
		t.Errorf("expected 2 redraws, got %d: %q", n, buf.String())
	}
}

func TestSimpleProgress_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "")

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if buf.String() != "\n" {
		t.Errorf("expected only a newline for zero total, got %q", buf.String())
	}
}

func TestSimpleProgress_OverCount(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "records")

	progress.Start(10)
	progress.Update(25)

	if !strings.Contains(buf.String(), " 10/10 records") {
		t.Errorf("expected count clamped to total: %q", buf.String())
	}
}

func TestSimpleProgress_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "records")

	progress.Start(100)
	progress.Error(errors.New("disk full"))

	if !strings.Contains(buf.String(), "\nError: disk full\n") {
		t.Errorf("expected error in output: %q", buf.String())
	}
}

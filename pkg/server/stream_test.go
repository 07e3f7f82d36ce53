package server

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"mercator-hq/mpl-builtins/pkg/evidence"
)

func decodeResponses(t *testing.T, out *bytes.Buffer) []Response {
	t.Helper()
	var responses []Response
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("response line is not JSON: %v\n%s", err, scanner.Text())
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestServeLines(t *testing.T) {
	h := newTestHandler(t)

	in := strings.NewReader(strings.Join([]string{
		`{"id": "1", "builtin": "hex.encode", "args": ["hi"]}`,
		``,
		`not json`,
		`{"id": "3", "builtin": "yaml.unmarshal", "args": ["a: [1, 2]\nb: x"]}`,
		`   `,
		`{"id": "4", "builtin": "hex.decode", "args": ["zz"]}`,
	}, "\n"))

	var out bytes.Buffer
	if err := h.ServeLines(context.Background(), in, &out); err != nil {
		t.Fatalf("ServeLines() error = %v", err)
	}

	responses := decodeResponses(t, &out)
	if len(responses) != 4 {
		t.Fatalf("got %d responses, want 4", len(responses))
	}

	if responses[0].ID != "1" || responses[0].Outcome != evidence.OutcomeOK {
		t.Errorf("response 1 = %+v", responses[0])
	}
	if responses[1].Error == nil || responses[1].Error.Type != ErrorTypeRequest {
		t.Errorf("malformed line response = %+v", responses[1])
	}
	if responses[2].ID != "3" || responses[2].Outcome != evidence.OutcomeOK || responses[2].Result == nil {
		t.Errorf("response 3 = %+v", responses[2])
	}
	if responses[3].ID != "4" || responses[3].Error == nil || responses[3].Error.Type != "decode" {
		t.Errorf("response 4 = %+v", responses[3])
	}
}

func TestServeLines_ResultEncoding(t *testing.T) {
	h := newTestHandler(t)

	in := strings.NewReader(`{"id": "x", "builtin": "hex.encode", "args": ["hi"]}` + "\n")
	var out bytes.Buffer
	if err := h.ServeLines(context.Background(), in, &out); err != nil {
		t.Fatalf("ServeLines() error = %v", err)
	}

	want := `{"id":"x","outcome":"ok","result":"6869"}` + "\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestServeLines_CancelledContext(t *testing.T) {
	h := newTestHandler(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := strings.NewReader(`{"builtin": "hex.encode", "args": ["hi"]}` + "\n")
	var out bytes.Buffer
	if err := h.ServeLines(ctx, in, &out); err != nil {
		t.Fatalf("ServeLines() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output after cancel, got %q", out.String())
	}
}

func TestServeLines_LineTooLong(t *testing.T) {
	h := newTestHandler(t)

	in := strings.NewReader(strings.Repeat("x", MaxLineBytes+1))
	var out bytes.Buffer
	if err := h.ServeLines(context.Background(), in, &out); err == nil {
		t.Error("expected error for oversized line")
	}
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"mercator-hq/mpl-builtins/pkg/config"
)

func newTestLogger(t *testing.T, cfg Config) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg.Writer = &buf
	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return logger, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}},
		{name: "debug json", cfg: Config{Level: "debug", Format: "json"}},
		{name: "warn console", cfg: Config{Level: "WARN", Format: "console"}},
		{name: "invalid level", cfg: Config{Level: "verbose"}, wantErr: true},
		{name: "invalid format", cfg: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "warn", Format: "json"})

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	logger.Warn("warn message", "builtin", "hex.decode")
	entry := decodeLine(t, buf)
	if entry["msg"] != "warn message" {
		t.Errorf("msg = %v, want %q", entry["msg"], "warn message")
	}
	if entry["builtin"] != "hex.decode" {
		t.Errorf("builtin = %v, want %q", entry["builtin"], "hex.decode")
	}
}

func TestLogger_ContextFields(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info"})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithBuiltin(ctx, "json.unmarshal")
	ctx = WithPolicy(ctx, "policies/main.mpl")
	logger.InfoContext(ctx, "call finished")

	entry := decodeLine(t, buf)
	want := map[string]string{
		"request_id": "req-1",
		"builtin":    "json.unmarshal",
		"policy":     "policies/main.mpl",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %q", k, entry[k], v)
		}
	}
}

func TestLogger_WithComponent(t *testing.T) {
	logger, buf := newTestLogger(t, Config{})
	logger.WithComponent("dispatcher").Info("registry loaded", "builtins", 17)

	entry := decodeLine(t, buf)
	if entry["component"] != "dispatcher" {
		t.Errorf("component = %v, want dispatcher", entry["component"])
	}
	if entry["builtins"] != float64(17) {
		t.Errorf("builtins = %v, want 17", entry["builtins"])
	}
}

func TestLogger_Redaction(t *testing.T) {
	logger, buf := newTestLogger(t, Config{RedactPII: true})

	logger.Info("decoded", "arg", "Bearer abc.def.ghi", "token", "supersecret")
	entry := decodeLine(t, buf)

	if entry["arg"] != "Bearer ***" {
		t.Errorf("arg = %v, want %q", entry["arg"], "Bearer ***")
	}
	if entry["token"] != "supe***" {
		t.Errorf("token = %v, want %q", entry["token"], "supe***")
	}
}

func TestLogger_SlogIsRedacted(t *testing.T) {
	logger, buf := newTestLogger(t, Config{RedactPII: true})

	logger.Slog().Info("raw", "email", "someone@example.com")
	entry := decodeLine(t, buf)
	if entry["email"] != "***@example.com" {
		t.Errorf("email = %v, want %q", entry["email"], "***@example.com")
	}
}

func TestLogger_Preview(t *testing.T) {
	logger, _ := newTestLogger(t, Config{RedactPII: true})

	got := logger.Preview("contact someone@example.com now", 0)
	if got != "contact ***@example.com now" {
		t.Errorf("Preview() = %q", got)
	}

	got = logger.Preview(strings.Repeat("a", 10), 4)
	if got != "aaaa…" {
		t.Errorf("Preview() = %q, want %q", got, "aaaa…")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:     "debug",
		Format:    "text",
		AddSource: true,
		RedactPII: true,
		RedactPatterns: []config.RedactPattern{
			{Name: "ticket", Pattern: `TICKET-\d+`, Replacement: "TICKET-***"},
		},
	}
	var buf bytes.Buffer
	lc := FromConfig(cfg, &buf)
	if lc.Level != "debug" || lc.Format != "text" || !lc.AddSource || !lc.RedactPII {
		t.Errorf("FromConfig() = %+v", lc)
	}
	if len(lc.RedactPatterns) != 1 {
		t.Fatalf("expected 1 redact pattern, got %d", len(lc.RedactPatterns))
	}

	logger, err := New(lc)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("lookup", "ref", "TICKET-1234")
	if !strings.Contains(buf.String(), "ref=TICKET-***") {
		t.Errorf("expected custom pattern to apply, got %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("dropped")
	if logger.Slog().Enabled(context.Background(), logger.Level()-1) {
		t.Error("discard logger should not enable any level")
	}
}

package logging

import (
	"log/slog"
	"testing"

	"mercator-hq/mpl-builtins/pkg/config"
)

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "aGVsbG8=", "aGVsbG8="},
		{"bearer", "Authorization: Bearer abc123", "Authorization: Bearer ***"},
		{"jwt", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", "eyJ***"},
		{"api key", "key sk-abcdef123", "key sk-***"},
		{"email", "mail user@example.com", "mail ***@example.com"},
		{"password", "password=hunter2", "password: ***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_CustomPatterns(t *testing.T) {
	r := NewRedactor([]config.RedactPattern{
		{Name: "bad", Pattern: `(`, Replacement: "x"},
		{Name: "acct", Pattern: `ACCT-\d+`, Replacement: "ACCT-***"},
	})

	if got := r.RedactString("ACCT-42"); got != "ACCT-***" {
		t.Errorf("RedactString() = %q, want %q", got, "ACCT-***")
	}
}

func TestRedactor_RedactArgs(t *testing.T) {
	r := NewRedactor(nil)
	args := []any{"secret", "abcdefgh", "count", 3, "note", "user@example.com"}

	got := r.RedactArgs(args...)
	if got[1] != "abcd***" {
		t.Errorf("secret = %v, want abcd***", got[1])
	}
	if got[3] != 3 {
		t.Errorf("count = %v, want 3", got[3])
	}
	if got[5] != "***@example.com" {
		t.Errorf("note = %v", got[5])
	}
	if args[1] != "abcdefgh" {
		t.Error("RedactArgs must not modify its input")
	}
}

func TestRedactor_ReplaceAttr(t *testing.T) {
	r := NewRedactor(nil)

	a := r.ReplaceAttr(nil, slog.String("api_key", "sk"))
	if a.Value.String() != "***" {
		t.Errorf("api_key = %q, want ***", a.Value.String())
	}

	a = r.ReplaceAttr(nil, slog.Int("size", 12))
	if a.Value.Int64() != 12 {
		t.Errorf("non-string attr changed: %v", a.Value)
	}

	a = r.ReplaceAttr(nil, slog.String(slog.MessageKey, "user@example.com"))
	if a.Value.String() != "user@example.com" {
		t.Errorf("message should not be redacted, got %q", a.Value.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		max  int
		want string
	}{
		{"hello", 0, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel…"},
		{"héllo", 2, "h…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
		}
	}
}

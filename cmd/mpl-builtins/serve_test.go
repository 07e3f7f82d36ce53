package main

import (
	"strings"
	"testing"
	"time"

	"mercator-hq/mpl-builtins/pkg/config"
)

func TestServeCommand_Stdin(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		`{"id": "1", "builtin": "hex.encode", "args": ["hi"]}`,
		`{"id": "2", "builtin": "hex.encod", "args": ["hi"]}`,
	}, "\n"))

	out, err := executeCommand(t, in, "serve", "--listen", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("serve error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("responses = %d, want 2:\n%s", len(lines), out)
	}
	if lines[0] != `{"id":"1","outcome":"ok","result":"6869"}` {
		t.Errorf("response 1 = %s", lines[0])
	}
	if !strings.Contains(lines[1], `"outcome":"error"`) || !strings.Contains(lines[1], `"type":"unknown_builtin"`) {
		t.Errorf("response 2 = %s", lines[1])
	}
}

func TestShutdownTimeout(t *testing.T) {
	cfg := &config.Config{}
	if got := shutdownTimeout(cfg); got != config.DefaultServeShutdownTimeout {
		t.Errorf("shutdownTimeout() = %v, want default", got)
	}

	cfg.Serve.ShutdownTimeout = 3 * time.Second
	if got := shutdownTimeout(cfg); got != 3*time.Second {
		t.Errorf("shutdownTimeout() = %v, want 3s", got)
	}
}

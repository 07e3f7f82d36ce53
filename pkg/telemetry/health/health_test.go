package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChecker_ReadinessNoChecks(t *testing.T) {
	checker := New(0)

	status := checker.CheckReadiness(context.Background())
	if status.Status != StatusReady {
		t.Errorf("Status = %q, want %q", status.Status, StatusReady)
	}
	if len(status.Checks) != 0 {
		t.Errorf("expected no checks, got %v", status.Checks)
	}
}

func TestChecker_ReadinessAggregation(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("registry", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("evidence", func(ctx context.Context) error { return errors.New("database is locked") })

	status := checker.CheckReadiness(context.Background())
	if status.Status != StatusDegraded {
		t.Errorf("Status = %q, want %q", status.Status, StatusDegraded)
	}
	if got := status.Checks["registry"].Status; got != StatusOK {
		t.Errorf("registry = %q", got)
	}
	ev := status.Checks["evidence"]
	if ev.Status != StatusUnhealthy || ev.Message != "database is locked" {
		t.Errorf("evidence = %+v", ev)
	}

	checker.UnregisterCheck("evidence")
	if got := checker.CheckReadiness(context.Background()).Status; got != StatusReady {
		t.Errorf("after unregister Status = %q", got)
	}
}

func TestChecker_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		<-release
		return nil
	})

	status := checker.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow = %+v", result)
	}
}

func TestChecker_ListChecks(t *testing.T) {
	checker := New(0)
	checker.RegisterCheck("registry", func(context.Context) error { return nil })
	checker.RegisterCheck("evidence", func(context.Context) error { return nil })

	got := checker.ListChecks()
	if len(got) != 2 || got[0] != "evidence" || got[1] != "registry" {
		t.Errorf("ListChecks() = %v", got)
	}
}

func TestHandlers(t *testing.T) {
	checker := New(time.Second)
	mux := http.NewServeMux()
	Register(mux, checker, VersionInfo{Version: "1.0.0", Commit: "abc"})

	tests := []struct {
		name   string
		method string
		path   string
		setup  func()
		want   int
	}{
		{name: "liveness", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "liveness head", method: http.MethodHead, path: "/health", want: http.StatusOK},
		{name: "post rejected", method: http.MethodPost, path: "/health", want: http.StatusMethodNotAllowed},
		{name: "ready", method: http.MethodGet, path: "/ready", want: http.StatusOK},
		{name: "version", method: http.MethodGet, path: "/version", want: http.StatusOK},
		{
			name:   "not ready",
			method: http.MethodGet,
			path:   "/ready",
			setup: func() {
				checker.RegisterCheck("registry", func(context.Context) error { return errors.New("no registry loaded") })
			},
			want: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestVersionHandler_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1.0.0", "abc", "today")(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if info.Version != "1.0.0" || info.Commit != "abc" || info.GoVersion == "" {
		t.Errorf("info = %+v", info)
	}
}

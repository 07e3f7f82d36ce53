package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestReloadEventType_String(t *testing.T) {
	tests := []struct {
		typ  ReloadEventType
		want string
	}{
		{ReloadEventCreate, "create"},
		{ReloadEventModify, "modify"},
		{ReloadEventDelete, "delete"},
		{ReloadEventType(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("ReloadEventType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestNewFileWatcher_RequiresPath(t *testing.T) {
	if _, err := NewFileWatcher(nil, nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewFileWatcher(&FileWatcherConfig{}, nil); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestFileWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")
	writeFile(t, target, "{}\n")

	fw, err := NewFileWatcher(&FileWatcherConfig{
		Path:             target,
		DebounceInterval: 20 * time.Millisecond,
	}, quietLogger())
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	var (
		mu     sync.Mutex
		events []ReloadEvent
	)
	done := make(chan error, 1)
	go func() {
		done <- fw.Watch(context.Background(), func(e ReloadEvent) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		})
	}()
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "other.yaml"), "x: 1\n")
	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	if len(events) != 0 {
		t.Errorf("got events for sibling file: %+v", events)
	}
	mu.Unlock()

	writeFile(t, target, "builtins: {}\n")
	eventually(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1
	})
	mu.Lock()
	if events[0].FilePath != target {
		t.Errorf("FilePath = %q, want %q", events[0].FilePath, target)
	}
	mu.Unlock()

	fw.Stop()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
	// second stop is a no-op
	fw.Stop()
}

func TestFileWatcher_SeesReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")
	writeFile(t, target, "{}\n")

	fw, err := NewFileWatcher(&FileWatcherConfig{Path: target, DebounceInterval: 20 * time.Millisecond}, quietLogger())
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	var got atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Watch(ctx, func(e ReloadEvent) {
		if e.Type == ReloadEventCreate {
			got.Add(1)
		}
	})
	time.Sleep(100 * time.Millisecond)

	tmp := filepath.Join(dir, ".config.yaml.swp")
	writeFile(t, tmp, "builtins: {strict: true}\n")
	if err := os.Rename(tmp, target); err != nil {
		t.Fatalf("rename: %v", err)
	}

	eventually(t, 3*time.Second, func() bool { return got.Load() >= 1 })
}

func TestFileWatcher_StopBeforeWatch(t *testing.T) {
	fw, err := NewFileWatcher(&FileWatcherConfig{Path: filepath.Join(t.TempDir(), "c.yaml")}, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}
	fw.Stop()
	if err := fw.Watch(context.Background(), func(ReloadEvent) {}); err == nil {
		t.Error("expected Watch to fail after Stop")
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	eventually(t, time.Second, func() bool { return calls.Load() == 1 })

	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("callback ran %d times after Stop", got)
	}
}

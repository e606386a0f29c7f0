package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recordingInvalidator struct {
	mu    sync.Mutex
	paths []string
	ch    chan string
}

func newRecordingInvalidator() *recordingInvalidator {
	return &recordingInvalidator{ch: make(chan string, 16)}
}

func (r *recordingInvalidator) Invalidate(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	r.ch <- path
}

func TestModuleFor(t *testing.T) {
	w := &Watcher{config: DefaultConfig("/src")}

	tests := []struct {
		file   string
		want   string
		wantOK bool
	}{
		{"/src/validators.dsl", "validators.dsl", true},
		{"/src/checks/net.dsl", "checks/net.dsl", true},
		{"/src/validators.contract.json", "validators.dsl", true},
		{"/src/checks/net.contract.json", "checks/net.dsl", true},
		{"/src/notes.txt", "", false},
		{"/src/contracts.db", "", false},
	}
	for _, tt := range tests {
		got, ok := w.moduleFor(tt.file)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("moduleFor(%q) = %q, %v, want %q, %v", tt.file, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	fired := 0
	for i := 0; i < 5; i++ {
		d.Trigger(func() {
			mu.Lock()
			fired++
			mu.Unlock()
		})
	}

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired != 1 {
		t.Errorf("fired = %d, want 1 coalesced callback", fired)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.Trigger(func() { fired <- struct{}{} })
	d.Stop()

	select {
	case <-fired:
		t.Error("stopped debouncer should not fire")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherInvalidatesOnSourceChange(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "validators.dsl")
	if err := os.WriteFile(source, []byte("a : 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	inv := newRecordingInvalidator()
	cfg := DefaultConfig(root)
	cfg.DebounceInterval = 20 * time.Millisecond

	w, err := New(cfg, inv, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx)
	defer w.Stop()

	// Give the watcher time to register the tree before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(source, []byte("a : 2;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-inv.ch:
		if path != "validators.dsl" {
			t.Errorf("invalidated %q, want validators.dsl", path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for invalidation")
	}
}

func TestWatcherMapsContractFileToModule(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "checks.dsl"), []byte("a : 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	inv := newRecordingInvalidator()
	cfg := DefaultConfig(root)
	cfg.DebounceInterval = 20 * time.Millisecond

	w, err := New(cfg, inv, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx)
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, "checks.contract.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-inv.ch:
		if path != "checks.dsl" {
			t.Errorf("invalidated %q, want checks.dsl", path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for invalidation")
	}
}

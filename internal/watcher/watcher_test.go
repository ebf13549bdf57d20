package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_WatchUnwatch(t *testing.T) {
	w, err := New(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	// Watching the same path twice is a no-op, not an error.
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch (again): %v", err)
	}
	if err := w.Unwatch(dir); err != nil {
		t.Fatalf("Unwatch: %v", err)
	}
	// Unwatching something never watched is a no-op.
	if err := w.Unwatch(dir); err != nil {
		t.Fatalf("Unwatch (again): %v", err)
	}
}

func TestWatcher_EmitsDebouncedNotification(t *testing.T) {
	w, err := New(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case changed := <-w.Events():
		if changed != dir {
			t.Errorf("notified dir = %s, want %s", changed, dir)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a watcher notification")
	}
}

func TestWatcher_Retarget(t *testing.T) {
	w, err := New(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	dirA := t.TempDir()
	dirB := t.TempDir()

	if err := w.Watch(dirA); err != nil {
		t.Fatalf("Watch dirA: %v", err)
	}
	if err := w.Retarget(dirA, dirB); err != nil {
		t.Fatalf("Retarget: %v", err)
	}

	w.mu.Lock()
	watchingA, watchingB := w.watching[dirA], w.watching[dirB]
	w.mu.Unlock()
	if watchingA {
		t.Error("dirA should no longer be watched after Retarget")
	}
	if !watchingB {
		t.Error("dirB should be watched after Retarget")
	}
}

func TestWatcher_Retarget_SamePathIsNoop(t *testing.T) {
	w, err := New(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := w.Retarget(dir, dir); err != nil {
		t.Fatalf("Retarget(same, same): %v", err)
	}
	w.mu.Lock()
	watching := w.watching[dir]
	w.mu.Unlock()
	if !watching {
		t.Error("dir should remain watched when Retarget is a no-op")
	}
}

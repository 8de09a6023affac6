package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFolderWatcherChanged(t *testing.T) {
	dir := t.TempDir()
	w := NewFolderWatcher(dir, time.Hour)
	if w == nil {
		t.Fatal("expected a watcher")
	}
	if w.Changed() {
		t.Fatal("fresh watcher must not report a change")
	}

	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(dir, later, later); err != nil {
		t.Fatal(err)
	}
	if !w.Changed() {
		t.Fatal("expected a change after the folder mtime moved")
	}
	w.ResetBaseline()
	if w.Changed() {
		t.Fatal("reset baseline should clear the change")
	}
}

func TestFolderWatcherMissingDir(t *testing.T) {
	if w := NewFolderWatcher(filepath.Join(t.TempDir(), "gone"), time.Second); w != nil {
		t.Fatal("expected nil for a missing folder")
	}
}

func TestFolderWatcherCallback(t *testing.T) {
	dir := t.TempDir()
	w := NewFolderWatcher(dir, 10*time.Millisecond)
	fired := make(chan struct{}, 1)
	w.OnChange(func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	later := time.Now().Add(time.Minute)
	os.Chtimes(dir, later, later)

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not called")
	}
}

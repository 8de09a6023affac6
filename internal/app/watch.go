package app

import (
	"os"
	"sync"
	"time"
)

// FolderWatcher polls the open folder and calls back when its listing
// changes, so new photos copied in from a camera show up in the navigator.
type FolderWatcher struct {
	dir           string
	baseline      time.Time
	checkInterval time.Duration

	mu       sync.Mutex
	stopCh   chan struct{}
	running  bool
	onChange func()
}

// NewFolderWatcher creates a watcher for dir. Returns nil if dir cannot be
// read.
func NewFolderWatcher(dir string, checkInterval time.Duration) *FolderWatcher {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}
	if checkInterval <= 0 {
		checkInterval = 2 * time.Second
	}
	return &FolderWatcher{
		dir:           dir,
		baseline:      info.ModTime(),
		checkInterval: checkInterval,
	}
}

// OnChange sets the callback. It is called from a background goroutine, so
// UI updates must be marshalled with fyne.Do.
func (w *FolderWatcher) OnChange(callback func()) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Dir returns the watched folder.
func (w *FolderWatcher) Dir() string {
	return w.dir
}

// Start begins polling in a background goroutine.
func (w *FolderWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.stopCh = make(chan struct{})
	w.running = true
	go w.watchLoop(w.stopCh)
}

// Stop stops the watcher goroutine.
func (w *FolderWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
}

func (w *FolderWatcher) watchLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !w.Changed() {
				continue
			}
			w.ResetBaseline()
			w.mu.Lock()
			cb := w.onChange
			w.mu.Unlock()
			if cb != nil {
				cb()
			}
		}
	}
}

// Changed reports whether the folder was modified since the baseline.
// Adding, removing or renaming entries updates a directory's mtime.
func (w *FolderWatcher) Changed() bool {
	info, err := os.Stat(w.dir)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return info.ModTime().After(w.baseline)
}

// ResetBaseline takes the folder's current mtime as unchanged.
func (w *FolderWatcher) ResetBaseline() {
	if info, err := os.Stat(w.dir); err == nil {
		w.mu.Lock()
		w.baseline = info.ModTime()
		w.mu.Unlock()
	}
}

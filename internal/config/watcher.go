package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the tuning file and dispatches reloaded tuning documents
// to a callback. The parent directory is watched rather than the file
// itself: editors and config-management tools typically replace the file,
// which would silently kill a direct file watch.
type Watcher struct {
	path     string
	callback func(*TuningFile)
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher creates a watcher for the tuning file at path.
func NewWatcher(path string, callback func(*TuningFile)) *Watcher {
	return &Watcher{
		path:     path,
		callback: callback,
		done:     make(chan struct{}),
	}
}

// Start begins watching. Call Stop to clean up.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("config: failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = fw

	go w.loop()
	log.Printf("config: watching %s for tuning changes", w.path)
	return nil
}

// Stop shuts down the watcher.
func (w *Watcher) Stop() {
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 &&
				filepath.Clean(evt.Name) == filepath.Clean(w.path) {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config: watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	tuning, err := LoadTuningFile(w.path)
	if err != nil {
		// Keep running with the previous tuning; a half-written file will
		// fire another event once the writer finishes.
		log.Printf("config: tuning reload failed: %v", err)
		return
	}
	if w.callback != nil {
		w.callback(tuning)
	}
}

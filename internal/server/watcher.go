package server

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a directory tree for changes and emits a payload-free
// signal on its Signals channel whenever any file under the root is
// written, created, removed, or renamed. Which file changed is observed
// and discarded; subscribers only need to know that something changed.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	signals chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher creates a Watcher for the directory tree rooted at root.
func NewWatcher(root string) *Watcher {
	return &Watcher{
		root:    root,
		signals: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start registers OS filesystem watches recursively under the root and
// begins emitting change signals. It returns only after every watch has
// been established, so callers can sequence "accept connections" strictly
// after it and no change can be lost in a startup gap. It fails if the
// root does not exist or watches cannot be registered.
func (w *Watcher) Start() error {
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root %s: not a directory", w.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating filesystem watcher: %w", err)
	}
	w.watcher = fsw

	if err := w.addRecursive(w.root); err != nil {
		fsw.Close()
		return fmt.Errorf("watching %s: %w", w.root, err)
	}

	go w.run()
	return nil
}

// Signals returns the stream of raw change signals. The channel is closed
// when the watcher stops.
func (w *Watcher) Signals() <-chan struct{} {
	return w.signals
}

// run is the watcher event loop. Transient per-notification errors are
// logged and do not stop the watch.
func (w *Watcher) run() {
	defer close(w.signals)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Only write, create, remove, and rename indicate content changes.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if isIgnored(event.Name) {
				continue
			}

			// If a new directory appears, watch it recursively too.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						log.Printf("warning: failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}

			// Non-blocking: a pending signal already means "changed".
			select {
			case w.signals <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)

		case <-w.done:
			_ = w.watcher.Close()
			return
		}
	}
}

// Stop stops the watch and closes the signal channel. Safe to call more
// than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
}

// addRecursive adds a directory and all its subdirectories to the watcher.
// Ignored subtrees (.git) are skipped entirely.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// isIgnored reports whether a changed path should not produce a signal.
// Editor droppings (Emacs auto-save and backup files) and git metadata
// churn constantly without the served content actually changing.
func isIgnored(path string) bool {
	return isAutoSave(path) || isBackup(path) || isGitMetadata(path)
}

// isAutoSave reports whether path names an Emacs auto-save file (.#foo).
func isAutoSave(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".#")
}

// isBackup reports whether path names an editor backup file (foo~).
func isBackup(path string) bool {
	return strings.HasSuffix(path, "~")
}

// isGitMetadata reports whether path lies inside a .git directory.
func isGitMetadata(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".git" {
			return true
		}
	}
	return false
}

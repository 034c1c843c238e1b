// Package watch implements the bonus "watch" command (SPEC_FULL.md
// §13): re-run status on every filesystem event under the working tree.
package watch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"gitlet/internal/repo"
)

// ignoreDirs lists directories a watch loop must never react to; the
// repository's own directory must always be skipped to avoid triggering
// on its own writes.
var ignoreDirs = map[string]bool{
	repo.DirName: true,
	".git":       true,
}

// Watcher re-prints status() on every relevant filesystem event.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	onChange func()
}

// New creates a Watcher rooted at root. It does not call onChange
// itself; Run does, once up front and again for every non-ignored event.
// Events are not debounced.
func New(root string, log *zap.Logger, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fw.Add(root); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}
	return &Watcher{root: root, watcher: fw, log: log, onChange: onChange}, nil
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run blocks, invoking onChange once up front and again on every
// non-ignored filesystem event, until the watcher is closed.
func (w *Watcher) Run() {
	w.onChange()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		w.log.Error("resolving event path", zap.Error(err))
		return
	}
	if w.shouldIgnore(rel) {
		return
	}
	w.onChange()
}

func (w *Watcher) shouldIgnore(relPath string) bool {
	if relPath == "" || relPath == "." {
		return true
	}
	first := relPath
	if idx := indexOfSeparator(relPath); idx >= 0 {
		first = relPath[:idx]
	}
	return ignoreDirs[first]
}

func indexOfSeparator(path string) int {
	for i, c := range path {
		if os.IsPathSeparator(uint8(c)) {
			return i
		}
	}
	return -1
}

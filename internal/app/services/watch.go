// Package services holds long running helpers used by the TUI.
package services

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is the debounce window used when none is configured.
const DefaultWatchDebounce = 600 * time.Millisecond

// GitWatchService watches the git directory and the worktree and signals
// when the status may have changed.
type GitWatchService struct {
	Started     bool
	Waiting     bool
	GitDir      string
	Root        string
	Debounce    time.Duration
	Events      chan struct{}
	Done        chan struct{}
	Paths       map[string]struct{}
	Mu          sync.Mutex
	Watcher     *fsnotify.Watcher
	LastRefresh time.Time
	logf        func(string, ...any)
}

// NewGitWatchService creates a watcher for the repository rooted at root
// whose git directory is gitDir.
func NewGitWatchService(gitDir, root string, debounce time.Duration, logf func(string, ...any)) *GitWatchService {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	return &GitWatchService{
		GitDir:   gitDir,
		Root:     root,
		Debounce: debounce,
		logf:     logf,
	}
}

// Start registers the watches and starts the event goroutine. It returns
// false without error when the service is already running or the git
// directory is unknown.
func (w *GitWatchService) Start() (bool, error) {
	if w.Started || w.GitDir == "" {
		return false, nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, err
	}

	w.Started = true
	w.Watcher = watcher
	w.Events = make(chan struct{}, 1)
	w.Done = make(chan struct{})
	w.Paths = make(map[string]struct{})

	w.addWatchDir(w.GitDir)
	w.addWatchTree(filepath.Join(w.GitDir, "refs"))
	if w.Root != "" {
		w.addWatchTree(w.Root)
	}

	go w.run()
	return true, nil
}

// Stop stops the watcher and closes channels.
func (w *GitWatchService) Stop() {
	if !w.Started {
		return
	}
	close(w.Done)
	w.Started = false
	if w.Watcher != nil {
		_ = w.Watcher.Close()
	}
}

// NextEvent returns the event channel unless a listener is already waiting.
func (w *GitWatchService) NextEvent() <-chan struct{} {
	if w.Events == nil || w.Waiting {
		return nil
	}
	w.Waiting = true
	return w.Events
}

// ResetWaiting clears the waiting flag after an event is processed.
func (w *GitWatchService) ResetWaiting() {
	w.Waiting = false
}

// ShouldRefresh applies the debounce window.
func (w *GitWatchService) ShouldRefresh(now time.Time) bool {
	if !w.LastRefresh.IsZero() && now.Sub(w.LastRefresh) < w.Debounce {
		return false
	}
	w.LastRefresh = now
	return true
}

// Signal notifies listeners of watcher activity. Signals coalesce while
// one is pending.
func (w *GitWatchService) Signal() {
	select {
	case <-w.Done:
		return
	default:
	}
	select {
	case w.Events <- struct{}{}:
	default:
	}
}

// Relevant reports whether a change to path can affect the status list.
// Lock files and object writes are noise.
func (w *GitWatchService) Relevant(path string) bool {
	if path == "" || strings.HasSuffix(path, ".lock") {
		return false
	}
	objects := filepath.Join(w.GitDir, "objects")
	if path == objects || strings.HasPrefix(path, objects+string(filepath.Separator)) {
		return false
	}
	return true
}

func (w *GitWatchService) run() {
	for {
		select {
		case <-w.Done:
			return
		case event, ok := <-w.Watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.Relevant(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.maybeWatchNewDir(event.Name)
			}
			w.Signal()
		case err, ok := <-w.Watcher.Errors:
			if !ok {
				return
			}
			w.debugf("git watcher error: %v", err)
		}
	}
}

func (w *GitWatchService) maybeWatchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	w.addWatchTree(path)
}

func (w *GitWatchService) addWatchDir(path string) {
	if path == "" {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	w.Mu.Lock()
	defer w.Mu.Unlock()

	if _, ok := w.Paths[path]; ok {
		return
	}
	if err := w.Watcher.Add(path); err != nil {
		w.debugf("git watcher add failed for %s: %v", path, err)
		return
	}
	w.Paths[path] = struct{}{}
}

// addWatchTree watches root and its subdirectories. The git directory is
// skipped when walking the worktree since only parts of it are watched.
func (w *GitWatchService) addWatchTree(root string) {
	if root == "" {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && (path == w.GitDir || d.Name() == ".git") {
			return filepath.SkipDir
		}
		w.addWatchDir(path)
		return nil
	})
}

func (w *GitWatchService) debugf(format string, args ...any) {
	if w.logf == nil {
		return
	}
	w.logf(format, args...)
}

// Package watch turns OS file notifications into reparse requests for the
// CLI watch mode. Events for the same path arriving within one poll
// interval are coalesced.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is one source file change.
type Event struct {
	Path string
}

// Watcher wraps fsnotify with suffix filtering and coalescing.
type Watcher struct {
	w        *fsnotify.Watcher
	evC      chan Event
	erC      chan error
	suffixes []string
	debounce time.Duration
}

// New creates a watcher reporting changes to files with the given suffixes
// (e.g. ".aster"). An empty suffix list reports everything.
func New(suffixes ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &Watcher{
		w:        w,
		evC:      make(chan Event, 128),
		erC:      make(chan error, 1),
		suffixes: suffixes,
		debounce: 100 * time.Millisecond,
	}
	go fw.loop()
	return fw, nil
}

// Add starts watching a file or directory.
func (fw *Watcher) Add(path string) error { return fw.w.Add(path) }

// Events returns the change channel.
func (fw *Watcher) Events() <-chan Event { return fw.evC }

// Errors returns the error channel.
func (fw *Watcher) Errors() <-chan error { return fw.erC }

// Close stops the watcher.
func (fw *Watcher) Close() error { return fw.w.Close() }

func (fw *Watcher) loop() {
	pending := map[string]time.Time{}
	ticker := time.NewTicker(fw.debounce)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !fw.wants(ev.Name) {
				continue
			}
			pending[ev.Name] = time.Now()
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			select {
			case fw.erC <- err:
			default:
			}
		case now := <-ticker.C:
			for path, seen := range pending {
				if now.Sub(seen) < fw.debounce {
					continue
				}
				delete(pending, path)
				fw.evC <- Event{Path: path}
			}
		}
	}
}

func (fw *Watcher) wants(path string) bool {
	if len(fw.suffixes) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, s := range fw.suffixes {
		if ext == s {
			return true
		}
	}
	return false
}

package sessions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports filesystem changes under the session root. It only
// signals that something changed; rescanning stays an explicit user action.
type Watcher struct {
	fsw    *fsnotify.Watcher
	events chan struct{}
}

// NewWatcher watches the session root and its project directories.
// Events are coalesced: bursts of writes produce a single notification.
func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fsw.Add(root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	// Best effort on project directories; a project created later is
	// still caught by the root watch.
	if entries, err := os.ReadDir(root); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				fsw.Add(filepath.Join(root, entry.Name()))
			}
		}
	}

	return &Watcher{
		fsw:    fsw,
		events: make(chan struct{}, 1),
	}, nil
}

// Close releases the underlying fsnotify watcher. Safe to call while Run
// is still draining; Run exits when the event channel closes.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Events returns the coalesced change channel.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Run forwards fsnotify events until the context is cancelled, debouncing
// bursts into a single signal.
func (w *Watcher) Run(ctx context.Context) {
	const quiet = 500 * time.Millisecond

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.fsw.Close()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// New project directory: start watching its contents.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.fsw.Add(ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(quiet)
			} else {
				timer.Reset(quiet)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case w.events <- struct{}{}:
			default:
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

package syncjournal

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces bursts of filesystem events (a save
// followed immediately by its atomic rename, multiple index writes in
// one batch) into a single notification, per §4.11.
const debounceWindow = 250 * time.Millisecond

// tempFileMarker is the marker storage.WriteAtomic's scratch file name
// contains before the final rename (`<name>.tmp-<random>`); the
// watcher must never react to it.
const tempFileMarker = ".tmp-"

// EventKind classifies a coalesced filesystem change for a watched
// vault directory.
type EventKind int

const (
	// EventPendingOps fires when a file under sync/pending/ changed.
	EventPendingOps EventKind = iota
	// EventIndexChanged fires when a refs/*.jsonl.enc file changed,
	// meaning cached note/notebook listings are stale.
	EventIndexChanged
	// EventKeyringChanged fires when the workspace keyring file
	// changed on disk; writes made by this process are not told apart
	// from external ones.
	EventKeyringChanged
)

// Watcher watches a vault's sync/pending and refs directories (and
// optionally the workspace keyring file) for external changes, and
// emits debounced, classified events.
type Watcher struct {
	fsw     *fsnotify.Watcher
	events  chan EventKind
	errors  chan error
	done    chan struct{}
	keyring string
}

// NewWatcher creates a watcher over the given directories. keyringPath
// may be empty if the workspace keyring isn't being watched.
func NewWatcher(pendingDir, refsDir, keyringPath string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(pendingDir); err != nil {
		fsw.Close()
		return nil, err
	}

	if err := fsw.Add(refsDir); err != nil {
		fsw.Close()
		return nil, err
	}

	if keyringPath != "" {
		if err := fsw.Add(filepath.Dir(keyringPath)); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fsw:     fsw,
		events:  make(chan EventKind, 8),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
		keyring: keyringPath,
	}

	go w.run(pendingDir, refsDir)

	return w, nil
}

// Events delivers coalesced, classified change notifications.
func (w *Watcher) Events() <-chan EventKind { return w.events }

// Errors delivers errors encountered while watching.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) run(pendingDir, refsDir string) {
	var (
		pendingTimer *time.Timer
		indexTimer   *time.Timer
		keyringTimer *time.Timer
	)

	fire := func(kind EventKind) {
		select {
		case w.events <- kind:
		default:
		}
	}

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if isTempFile(ev.Name) {
				continue
			}

			switch {
			case w.keyring != "" && ev.Name == w.keyring:
				keyringTimer = debounce(keyringTimer, func() { fire(EventKeyringChanged) })
			case strings.HasPrefix(ev.Name, pendingDir):
				pendingTimer = debounce(pendingTimer, func() { fire(EventPendingOps) })
			case strings.HasPrefix(ev.Name, refsDir):
				indexTimer = debounce(indexTimer, func() { fire(EventIndexChanged) })
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// debounce stops any previously scheduled timer and schedules fn to
// run after debounceWindow, returning the new timer.
func debounce(prev *time.Timer, fn func()) *time.Timer {
	if prev != nil {
		prev.Stop()
	}

	return time.AfterFunc(debounceWindow, fn)
}

// isTempFile reports whether name is a write-atomic scratch file that
// watchers must ignore rather than treat as a content change.
func isTempFile(name string) bool {
	return strings.Contains(filepath.Base(name), tempFileMarker)
}

package filetracker

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher bridges filesystem change notifications into Tracker.MarkUserEdited
// calls, so Tracker.TakeRecentlyModified reflects real edits made
// outside the tool loop (an external editor, a build step) instead of
// requiring the host to poll os.Stat on every tracked path.
type Watcher struct {
	fsw     *fsnotify.Watcher
	tracker *Tracker
	log     zerolog.Logger
	done    chan struct{}
}

// NewWatcher starts watching dirs for write/create/rename events and
// forwards them to tracker. The caller must call Close when done.
func NewWatcher(tracker *Tracker, log zerolog.Logger, dirs ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{fsw: fsw, tracker: tracker, log: log, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			path := filepath.Clean(event.Name)
			w.tracker.MarkUserEdited(path)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("filesystem watcher error")
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher and releases its underlying resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

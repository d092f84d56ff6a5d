// Package filetracker maintains the append-only, per-task log of which
// files the model has seen or touched, read by internal/promptbuild for
// the system prompt's read-files list and recently-modified list.
package filetracker

import (
	"os"
	"sync"
	"time"
)

// Source identifies how a file entered the tracker's log.
type Source string

const (
	SourceReadTool     Source = "read_tool"
	SourceUserEdited   Source = "user_edited"
	SourceClineEdited  Source = "cline_edited"
	SourceFileMentioned Source = "file_mentioned"
)

// State is whether an entry is still the freshest record for its path.
type State string

const (
	StateActive State = "active"
	StateStale  State = "stale"
)

// Entry is one append-only log record. A path accumulates one Entry per
// touch; only the latest entry for a given path is State==active.
type Entry struct {
	Path           string
	Source         Source
	State          State
	ClineReadDate  *time.Time
	ClineEditDate  *time.Time
	UserEditDate   *time.Time
	Mtime          *time.Time
	Size           int64
	RecordedAt     time.Time
}

// Tracker is an in-memory, append-only log of Entry values for a single
// task. All methods are safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	entries []Entry
	// recentlyModified holds paths reported externally (e.g. by a watcher)
	// since the last call to TakeRecentlyModified.
	recentlyModified map[string]struct{}
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{recentlyModified: map[string]struct{}{}}
}

// clock is overridable in tests; production code always uses time.Now.
var clock = time.Now

// record appends a new entry for path, marking any prior entries for the
// same path stale.
func (t *Tracker) record(path string, source Source, mutate func(e *Entry)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].Path == path && t.entries[i].State == StateActive {
			t.entries[i].State = StateStale
		}
	}

	e := Entry{Path: path, Source: source, State: StateActive, RecordedAt: clock()}
	if mutate != nil {
		mutate(&e)
	}
	t.entries = append(t.entries, e)
}

// MarkRead records that the read_file (or equivalent) tool returned path's
// content to the model.
func (t *Tracker) MarkRead(path string) {
	now := clock()
	if fi, err := os.Stat(path); err == nil {
		mt := fi.ModTime()
		size := fi.Size()
		t.record(path, SourceReadTool, func(e *Entry) {
			e.ClineReadDate = &now
			e.Mtime = &mt
			e.Size = size
		})
		return
	}
	t.record(path, SourceReadTool, func(e *Entry) { e.ClineReadDate = &now })
}

// MarkEditedByCline records that a tool (write_to_file/replace_in_file)
// modified path on the model's behalf.
func (t *Tracker) MarkEditedByCline(path string) {
	now := clock()
	if fi, err := os.Stat(path); err == nil {
		mt := fi.ModTime()
		size := fi.Size()
		t.record(path, SourceClineEdited, func(e *Entry) {
			e.ClineEditDate = &now
			e.Mtime = &mt
			e.Size = size
		})
		return
	}
	t.record(path, SourceClineEdited, func(e *Entry) { e.ClineEditDate = &now })
}

// MarkMentioned records that path was referenced via an inline @file
// mention in user input, without being read by a tool.
func (t *Tracker) MarkMentioned(path string) {
	t.record(path, SourceFileMentioned, nil)
}

// MarkUserEdited records an edit the tracker learned about from outside
// the tool loop (e.g. a filesystem watcher or an editor integration).
func (t *Tracker) MarkUserEdited(path string) {
	now := clock()
	t.record(path, SourceUserEdited, func(e *Entry) { e.UserEditDate = &now })

	t.mu.Lock()
	t.recentlyModified[path] = struct{}{}
	t.mu.Unlock()
}

// IsFileInContext reports whether path has an active entry, i.e. its
// latest content is believed to already be present somewhere in the
// conversation.
func (t *Tracker) IsFileInContext(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Path == path {
			return t.entries[i].State == StateActive
		}
	}
	return false
}

// GetReadFiles returns the set of paths whose latest active entry came
// from a read (SourceReadTool or SourceFileMentioned).
func (t *Tracker) GetReadFiles() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	latest := map[string]Entry{}
	for _, e := range t.entries {
		if e.State == StateActive {
			latest[e.Path] = e
		}
	}
	var out []string
	for path, e := range latest {
		if e.Source == SourceReadTool || e.Source == SourceFileMentioned {
			out = append(out, path)
		}
	}
	return out
}

// TakeRecentlyModified returns and clears the set of paths that were
// marked user-edited since the previous call (or since New).
func (t *Tracker) TakeRecentlyModified() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, len(t.recentlyModified))
	for path := range t.recentlyModified {
		out = append(out, path)
	}
	t.recentlyModified = map[string]struct{}{}
	return out
}

// Entries returns a snapshot copy of the full append-only log, in record
// order, for persistence.
func (t *Tracker) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

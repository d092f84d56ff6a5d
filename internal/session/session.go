// Package session manages conversation session persistence.
//
// Each session is stored as a directory of four files under
// ~/.agentcore/projects/<hash>/sessions/<id>/:
//
//	metadata.json         - identity and timing (model, cwd, created/updated)
//	history.json           - the immutable message history
//	context-updates.json   - the context manager's overlay (deleted range + updates)
//	task-metadata.json     - counters that matter across a resumed run (mistake
//	                          counts, auto-approval streak, focus chain checklist)
//
// Splitting these apart (rather than one combined <id>.json) lets a
// host update task-level counters without rewriting the full,
// potentially large, history on every turn, and lets tooling inspect or
// diff one concern (e.g. just the overlay) without parsing the rest.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	ctxmgr "github.com/kestrel-dev/agentcore/internal/context"
	"github.com/kestrel-dev/agentcore/internal/executor"
)

// Metadata is a session's identity record, persisted as metadata.json.
type Metadata struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	CWD       string    `json:"cwd"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// persistedUpdate and persistedBlockUpdates mirror internal/context's
// unexported UpdateMap internals closely enough to round-trip it through
// JSON, since the overlay itself deliberately doesn't expose its map.
type persistedUpdate struct {
	Timestamp       int64             `json:"timestamp"`
	Kind            int               `json:"kind"`
	ReplacementText string            `json:"replacement_text"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

type persistedBlockUpdates struct {
	MessageIndex int               `json:"message_index"`
	BlockIndex   int               `json:"block_index"`
	EditType     int               `json:"edit_type"`
	Updates      []persistedUpdate `json:"updates"`
}

// ContextUpdates is the context manager's overlay plus deletion range,
// persisted as context-updates.json.
type ContextUpdates struct {
	DeletedRangeStart int                     `json:"deleted_range_start"`
	DeletedRangeEnd   int                     `json:"deleted_range_end"`
	DeletedRangeSet   bool                    `json:"deleted_range_set"`
	TotalTokens       int                     `json:"total_tokens"`
	Entries           []persistedBlockUpdates `json:"entries"`
}

// TaskMetadata is the subset of a run's in-memory TaskState worth
// carrying across a resumed session: counters that change how the next
// turn's prompt and mistake handling behave.
type TaskMetadata struct {
	ConsecutiveMistakeCount      int    `json:"consecutive_mistake_count"`
	ConsecutiveAutoApprovalCount int    `json:"consecutive_auto_approval_count"`
	APIRequestCount              int    `json:"api_request_count"`
	DidEditFile                  bool   `json:"did_edit_file"`
	CurrentFocusChainChecklist   string `json:"current_focus_chain_checklist,omitempty"`
}

// Session is a fully loaded session, combining all four files.
type Session struct {
	Metadata Metadata
	History  []ctxmgr.Message
	Context  ContextUpdates
	Task     TaskMetadata
}

// Store manages reading and writing sessions to disk.
type Store struct {
	dir string // e.g. ~/.agentcore/projects/<hash>/sessions/
}

// NewStore creates a session store for the given working directory.
// Sessions are stored under ~/.agentcore/projects/<cwd-hash>/sessions/.
func NewStore(cwd string) (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	h := sha256.Sum256([]byte(cwd))
	projectHash := hex.EncodeToString(h[:16]) // 32 hex chars

	dir := filepath.Join(home, ".agentcore", "projects", projectHash, "sessions")
	return &Store{dir: dir}, nil
}

// NewStoreWithDir creates a session store at a specific directory (for testing).
func NewStoreWithDir(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the session storage directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) sessionDir(id string) string {
	return filepath.Join(s.dir, id)
}

// Save persists a session to disk as its four constituent files. It
// creates the session's directory if needed and stamps UpdatedAt.
func (s *Store) Save(sess *Session) error {
	dir := s.sessionDir(sess.Metadata.ID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	sess.Metadata.UpdatedAt = time.Now()
	if sess.Metadata.CreatedAt.IsZero() {
		sess.Metadata.CreatedAt = sess.Metadata.UpdatedAt
	}

	if err := writeJSON(filepath.Join(dir, "metadata.json"), sess.Metadata); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "history.json"), sess.History); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "context-updates.json"), sess.Context); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "task-metadata.json"), sess.Task); err != nil {
		return err
	}
	return nil
}

// Load reads a session by ID from disk.
func (s *Store) Load(id string) (*Session, error) {
	dir := s.sessionDir(id)

	var sess Session
	if err := readJSON(filepath.Join(dir, "metadata.json"), &sess.Metadata); err != nil {
		return nil, fmt.Errorf("loading metadata: %w", err)
	}
	if err := readJSON(filepath.Join(dir, "history.json"), &sess.History); err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if err := readJSON(filepath.Join(dir, "context-updates.json"), &sess.Context); err != nil {
		return nil, fmt.Errorf("loading context updates: %w", err)
	}
	if err := readJSON(filepath.Join(dir, "task-metadata.json"), &sess.Task); err != nil {
		return nil, fmt.Errorf("loading task metadata: %w", err)
	}
	return &sess, nil
}

// Delete removes a session's directory and all four of its files.
func (s *Store) Delete(id string) error {
	dir := s.sessionDir(id)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("session %s not found: %w", id, err)
	}
	return os.RemoveAll(dir)
}

// MostRecent returns the session with the latest UpdatedAt timestamp.
func (s *Store) MostRecent() (*Session, error) {
	sessions, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions found")
	}

	// Sessions from List() are sorted by UpdatedAt descending.
	return sessions[0], nil
}

// List returns all sessions sorted by UpdatedAt (newest first). Entries
// missing one or more of the four files, or holding unparseable JSON,
// are skipped as corrupt.
func (s *Store) List() ([]*Session, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session directory: %w", err)
	}

	var sessions []*Session
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sess, err := s.Load(entry.Name())
		if err != nil {
			continue // skip corrupt sessions
		}
		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Metadata.UpdatedAt.After(sessions[j].Metadata.UpdatedAt)
	})

	return sessions, nil
}

// GenerateID creates a new session ID: a nanosecond timestamp prefix
// followed by a UUID to keep concurrent `chat` invocations collision-free.
// `sessions list` does not sort by ID; Store.List orders by UpdatedAt.
func GenerateID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString())
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// FromConversationAndTask converts an in-memory executor.Conversation
// and executor.TaskState into the persisted shapes Save writes,
// flattening the overlay's internal map into a flat entry slice.
func FromConversationAndTask(conv *executor.Conversation, task *executor.TaskState) (history []ctxmgr.Message, ctxUpdates ContextUpdates, taskMeta TaskMetadata) {
	history = conv.History

	ctxUpdates = ContextUpdates{
		DeletedRangeStart: conv.DeletedRange.Start,
		DeletedRangeEnd:   conv.DeletedRange.End,
		DeletedRangeSet:   conv.DeletedRange.IsSet(),
		TotalTokens:       conv.TotalTokens,
		Entries:           flattenUpdates(conv.Updates),
	}

	if task != nil {
		taskMeta = TaskMetadata{
			ConsecutiveMistakeCount:      task.ConsecutiveMistakeCount,
			ConsecutiveAutoApprovalCount: task.ConsecutiveAutoApprovalCount,
			APIRequestCount:              task.APIRequestCount,
			DidEditFile:                  task.DidEditFile,
			CurrentFocusChainChecklist:   task.CurrentFocusChainChecklist,
		}
	}
	return history, ctxUpdates, taskMeta
}

// ToConversation rebuilds an executor.Conversation from a loaded
// Session, restoring the deletion range and overlay.
func ToConversation(sess *Session) *executor.Conversation {
	updates := ctxmgr.NewUpdateMap()
	for _, e := range sess.Context.Entries {
		for _, u := range e.Updates {
			updates.Add(e.MessageIndex, e.BlockIndex, ctxmgr.EditType(e.EditType), ctxmgr.Update{
				Timestamp:       u.Timestamp,
				Kind:            ctxmgr.UpdateKind(u.Kind),
				ReplacementText: u.ReplacementText,
				Metadata:        u.Metadata,
			})
		}
	}

	deletedRange := ctxmgr.NoDeletionRange
	if sess.Context.DeletedRangeSet {
		deletedRange = ctxmgr.NewDeletionRange(sess.Context.DeletedRangeStart, sess.Context.DeletedRangeEnd)
	}

	return &executor.Conversation{
		History:      sess.History,
		DeletedRange: deletedRange,
		Updates:      updates,
		TotalTokens:  sess.Context.TotalTokens,
	}
}

func flattenUpdates(m *ctxmgr.UpdateMap) []persistedBlockUpdates {
	if m == nil {
		return nil
	}
	entries := m.Entries()
	out := make([]persistedBlockUpdates, 0, len(entries))
	for _, e := range entries {
		updates := make([]persistedUpdate, 0, len(e.Updates))
		for _, u := range e.Updates {
			updates = append(updates, persistedUpdate{
				Timestamp:       u.Timestamp,
				Kind:            int(u.Kind),
				ReplacementText: u.ReplacementText,
				Metadata:        u.Metadata,
			})
		}
		out = append(out, persistedBlockUpdates{
			MessageIndex: e.MessageIndex,
			BlockIndex:   e.BlockIndex,
			EditType:     int(e.EditType),
			Updates:      updates,
		})
	}
	return out
}

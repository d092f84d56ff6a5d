package executor

import (
	"sync"

	ctxmgr "github.com/kestrel-dev/agentcore/internal/context"
)

// defaultMistakeThreshold is the number of consecutive tool-call mistakes
// (missing parameters, denied paths/commands, tool-reported errors) that
// triggers the "too many mistakes" feedback notice.
const defaultMistakeThreshold = 3

// TaskState is the orchestrator's in-memory status for one run. Unlike
// Conversation (history, deleted range, token count), which survives
// across runs, TaskState is created fresh by Run and discarded when it
// returns.
type TaskState struct {
	// mu guards every field below when the optional parallel dispatcher
	// (parallel.go) mutates state from more than one goroutine; the
	// default sequential dispatch never contends on it.
	mu sync.Mutex

	// PartialStreamChars is not updated or read by Run; it stays zero
	// unless a caller sets it.
	PartialStreamChars int

	// PendingUserText is not updated or read by Run, which collects the
	// notices and tool results for the next turn's synthetic user
	// message in local variables.
	PendingUserText []string

	DidRejectTool     bool
	DidAlreadyUseTool bool
	DidEditFile       bool

	ConsecutiveMistakeCount      int
	ConsecutiveAutoApprovalCount int
	APIRequestCount              int

	// Abort is not set or read by Run, which detects cancellation by
	// checking ctx.Err().
	Abort bool

	CurrentFocusChainChecklist string
}

// NewTaskState returns a fresh, zeroed TaskState.
func NewTaskState() *TaskState {
	return &TaskState{}
}

// withLock runs fn while holding state's mutex, the one place every
// mutation of TaskState's fields is expected to go through once more
// than one goroutine can reach it (the parallel dispatcher).
func (s *TaskState) withLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Conversation is the persistent state a Run call reads and mutates:
// the message history, the context manager's deletion range and overlay,
// and the last-observed token total. A host normally loads this from
// internal/session and saves it back after each Run.
type Conversation struct {
	History     []ctxmgr.Message
	DeletedRange ctxmgr.DeletionRange
	Updates     *ctxmgr.UpdateMap
	TotalTokens int
}

// NewConversation returns an empty conversation with a fresh overlay.
func NewConversation() *Conversation {
	return &Conversation{Updates: ctxmgr.NewUpdateMap()}
}

package executor

import "context"

// Kind is the closed vocabulary shared by Say and Ask events.
type Kind string

const (
	KindText             Kind = "text"
	KindTool             Kind = "tool"
	KindCommand          Kind = "command"
	KindCommandOutput    Kind = "command_output"
	KindCompletionResult Kind = "completion_result"
	KindError            Kind = "error"
	KindUserFeedback     Kind = "user_feedback"
	KindFollowup         Kind = "followup"
	KindAPIReqStarted    Kind = "api_req_started"
)

// Ask response discriminants.
const (
	AskYes     = "yesButtonClicked"
	AskNo      = "noButtonClicked"
	AskMessage = "messageResponse"
)

// AskResponse is what the host returns from Ask.
type AskResponse struct {
	Response string
	Text     string
	Images   []string
	Files    []string
}

// Host is the set of callbacks the executor drives the surrounding
// application through: emitting messages, soliciting approval/answers,
// and consulting the standing auto-approve policy. A CLI, a TUI, and a
// test harness all implement this the same way a terminal coding agent's
// host process would.
type Host interface {
	// Say emits a message event. partial is true for an in-progress
	// streamed chunk, false for the final/complete emission.
	Say(kind Kind, text string, partial bool)

	// Ask solicits user input and blocks until the host responds or ctx
	// is canceled.
	Ask(ctx context.Context, kind Kind, text string) (AskResponse, error)

	// ShouldAutoApprove reports the host's standing policy for a tool
	// name, consulted before falling back to an interactive Ask.
	ShouldAutoApprove(toolName string) bool
}

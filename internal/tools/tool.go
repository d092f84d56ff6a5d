// Package tools implements the registry and concrete handlers for every
// tool name the assistant parser can produce.
package tools

import (
	"context"

	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/filetracker"
	"github.com/kestrel-dev/agentcore/internal/mcp"
)

// ContentKind distinguishes the two kinds of content a ToolResponse can
// carry back to the model.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentImage
)

// Content is one ordered piece of a tool's result.
type Content struct {
	Kind ContentKind
	// Text holds the payload for ContentText, or a caption for ContentImage.
	Text string
	// ImageData holds base64-encoded bytes for ContentImage.
	ImageData string
	// MediaType is the image MIME type, set only for ContentImage.
	MediaType string
}

// ToolResponse is what every handler returns: an ordered sequence of
// content pieces, and whether the handler itself detected a non-fatal
// problem the model should see and correct (IsError never stops the
// executor's turn loop, it just marks the content as a tool error result).
type ToolResponse struct {
	Content []Content
	IsError bool
}

// TextResponse is a convenience constructor for the common single-text-
// block result.
func TextResponse(text string) ToolResponse {
	return ToolResponse{Content: []Content{{Kind: ContentText, Text: text}}}
}

// ErrorResponse is a convenience constructor for a single-text-block
// result marked as an error.
func ErrorResponse(text string) ToolResponse {
	return ToolResponse{Content: []Content{{Kind: ContentText, Text: text}}, IsError: true}
}

// ToolContext carries the per-call collaborators a handler needs: the
// working directory, cancellation, the file tracker, and the approval
// gate. It is constructed fresh by the executor for every tool call.
type ToolContext struct {
	Context context.Context

	// Cwd is the task's working directory; all relative paths in tool
	// params are resolved against it.
	Cwd string

	// Tracker receives file-touch notifications; internal/promptbuild
	// reads it for the system prompt's read-files and recently-modified
	// lists.
	Tracker *filetracker.Tracker

	// Approve is consulted by Registry.Execute before a tool whose
	// RequiresApproval reports true. It returns true if the action may
	// proceed.
	Approve ApprovalFunc

	// Env overrides/extends the inherited process environment for
	// execute_command, sourced from settings.json's "env" block. Nil means
	// no overrides beyond the process's own environment.
	Env map[string]string

	// TaskID identifies the owning task. No built-in handler reads it.
	TaskID string

	// MCP resolves use_mcp_tool/access_mcp_resource/load_mcp_documentation
	// calls against connected servers. Nil means no MCP servers are
	// configured for this task.
	MCP *mcp.Manager

	// Compress runs the context manager's two-phase shrink early, outside
	// its normal trigger point, and reports how many characters it freed.
	// Wired by the executor; nil in tests that don't need it.
	Compress func() (freedChars int, err error)

	// Summarize produces a short natural-language summary of the task so
	// far, for handoff into a new_task call or a standalone summary.
	// Wired by the executor; nil in tests that don't need it.
	Summarize func() (string, error)
}

// ApprovalFunc asks the host whether an action requiring approval may
// proceed. toolName and description are shown to the user/host.
type ApprovalFunc func(toolName, description string) (approved bool, err error)

// Tool is the uniform contract every handler implements.
type Tool struct {
	Name        assistant.ToolName
	Description string
	// RequiresApproval reports whether this tool call needs approval gating
	// before its side effect runs. Some tools (execute_command) decide this
	// dynamically from their own params (requires_approval); others are
	// fixed.
	RequiresApproval func(params map[string]string) bool
	// Execute runs the tool's side effect and produces its result. It must
	// never panic; all failure modes are reported through ToolResponse or a
	// returned error for truly unrecoverable conditions (e.g. context
	// cancellation).
	Execute func(tc *ToolContext, params map[string]string) (ToolResponse, error)
}

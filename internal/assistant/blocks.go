// Package assistant implements the single-pass, resumable parser that turns
// a streamed assistant message — free text interleaved with XML-like tool
// call tags — into an ordered sequence of typed content blocks.
package assistant

// BlockKind distinguishes the two kinds of content a parsed message can
// contain.
type BlockKind int

const (
	// KindText marks a block of free-form text meant to be shown to the user.
	KindText BlockKind = iota
	// KindToolUse marks a block describing a requested tool invocation.
	KindToolUse
)

// ToolName is a tool identifier drawn from the closed enum in the wire
// format. Unknown opening tags are never treated as tool names — they
// fall through to plain text.
type ToolName string

const (
	ToolReadFile                ToolName = "read_file"
	ToolWriteToFile             ToolName = "write_to_file"
	ToolReplaceInFile           ToolName = "replace_in_file"
	ToolExecuteCommand          ToolName = "execute_command"
	ToolSearchFiles             ToolName = "search_files"
	ToolListFiles               ToolName = "list_files"
	ToolListCodeDefinitionNames ToolName = "list_code_definition_names"
	ToolAskFollowupQuestion     ToolName = "ask_followup_question"
	ToolAttemptCompletion       ToolName = "attempt_completion"
	ToolPlanModeRespond         ToolName = "plan_mode_respond"
	ToolNewTask                 ToolName = "new_task"
	ToolWebFetch                ToolName = "web_fetch"
	ToolUseMCPTool              ToolName = "use_mcp_tool"
	ToolAccessMCPResource       ToolName = "access_mcp_resource"
	ToolLoadMCPDocumentation    ToolName = "load_mcp_documentation"
	ToolBrowserAction           ToolName = "browser_action"
	ToolFocusChain              ToolName = "focus_chain"
)

// toolParams lists the known parameter tags accepted inside each tool, in
// the order they're documented to the model. A parameter name not in this
// set for a given tool is never opened as a param tag; it is accumulated as
// part of the tool's text content instead (spec §3 invariant).
var toolParams = map[ToolName][]string{
	ToolReadFile:                {"path"},
	ToolWriteToFile:             {"path", "content"},
	ToolReplaceInFile:           {"path", "diff"},
	ToolExecuteCommand:          {"command", "requires_approval", "timeout"},
	ToolSearchFiles:             {"path", "regex", "file_pattern"},
	ToolListFiles:               {"path", "recursive"},
	ToolListCodeDefinitionNames: {"path"},
	ToolAskFollowupQuestion:     {"question", "options"},
	ToolAttemptCompletion:       {"result", "command"},
	ToolPlanModeRespond:         {"response", "options"},
	ToolNewTask:                 {"context"},
	ToolWebFetch:                {"url"},
	ToolUseMCPTool:              {"server_name", "tool_name", "arguments"},
	ToolAccessMCPResource:       {"server_name", "uri"},
	ToolLoadMCPDocumentation:    {},
	ToolBrowserAction:           {"action", "coordinate", "text", "url"},
	ToolFocusChain:              {"checklist"},
}

// allToolNames is the closed enum of recognized tool opening tags, computed
// once from toolParams' keys so there's a single source of truth.
var allToolNames = func() []ToolName {
	names := make([]ToolName, 0, len(toolParams))
	for name := range toolParams {
		names = append(names, name)
	}
	return names
}()

// Params returns the known parameter tags for name, in documented order,
// or nil for an unrecognized tool. Callers (the prompt builder) must not
// mutate the returned slice.
func Params(name ToolName) []string {
	return toolParams[name]
}

// AllToolNames returns the closed enum of recognized tool names. Order is
// unspecified; callers that need a stable order should sort the result.
func AllToolNames() []ToolName {
	out := make([]ToolName, len(allToolNames))
	copy(out, allToolNames)
	return out
}

// Block is one element of a parsed assistant message.
type Block struct {
	Kind BlockKind

	// Text holds the block's text when Kind == KindText.
	Text string

	// Tool holds the tool name when Kind == KindToolUse.
	Tool ToolName
	// Params holds the tool's parameter values, keyed by parameter name.
	Params map[string]string

	// Partial is true when the parser reached end-of-input before seeing
	// this block's closing tag. Only the last block in a sequence may be
	// partial.
	Partial bool
}

// NewText returns a text block carrying text and the given partial flag.
// It does not special-case empty text.
func NewText(text string, partial bool) Block {
	return Block{Kind: KindText, Text: text, Partial: partial}
}

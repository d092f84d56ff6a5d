// Package executor implements the orchestrator state machine: the
// per-turn sequence of compose-prompt, stream, parse, dispatch-one-tool,
// loop, grounded on the teacher's conversation.Loop but rewired for a
// model stream that yields plain text (no native tool_use blocks) and an
// assistant-message parser that recovers tool calls from that text.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kestrel-dev/agentcore/internal/apierrors"
	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/checkpoint"
	ctxmgr "github.com/kestrel-dev/agentcore/internal/context"
	"github.com/kestrel-dev/agentcore/internal/filetracker"
	"github.com/kestrel-dev/agentcore/internal/hooks"
	"github.com/kestrel-dev/agentcore/internal/llm"
	"github.com/kestrel-dev/agentcore/internal/mcp"
	"github.com/kestrel-dev/agentcore/internal/promptbuild"
	"github.com/kestrel-dev/agentcore/internal/tools"
)

// ModelClient is the subset of *llm.Client the executor depends on, so
// tests can substitute a fake without an HTTP round trip.
type ModelClient interface {
	CreateMessageStream(ctx context.Context, req *llm.CreateMessageRequest, handler llm.StreamHandler) (*llm.MessageResponse, error)
	Model() string
}

// Config wires an Executor's collaborators together. LLM, Registry, and
// Host are required; every other field is optional or has a default.
type Config struct {
	LLM      ModelClient
	Registry *tools.Registry
	Host     Host
	Window   int // model's raw context window, for MaxAllowed headroom

	Cwd          string
	Tracker      *filetracker.Tracker
	MCP          *mcp.Manager
	Instructions string

	// Env overrides/extends the environment execute_command spawns its
	// subprocess with, sourced from settings.json's "env" block.
	Env map[string]string

	// Hooks fires PreToolUse/PostToolUse/UserPromptSubmit lifecycle
	// hooks from settings.json. Nil disables hooks entirely.
	Hooks *hooks.Runner

	Retry llm.RetryPolicy

	// ErrorLog records every tool failure, classified into the
	// apierrors taxonomy, to a per-day log file. Nil disables logging.
	ErrorLog *apierrors.Recorder

	// Checkpoints snapshots workspace state before each tool call. Nil
	// resolves to checkpoint.NopCheckpointer{}.
	Checkpoints checkpoint.Checkpointer

	// MistakeThreshold overrides defaultMistakeThreshold when non-zero.
	MistakeThreshold int

	// ParallelToolsEnabled turns on the stratified concurrent dispatcher
	// (parallel.go) instead of the default "first tool only" behavior.
	// Off by default per spec §5.
	ParallelToolsEnabled bool

	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

// Executor runs the per-turn orchestration loop against one Conversation.
type Executor struct {
	cfg Config
}

// New returns an Executor. It panics if a required Config field is unset,
// since those are programmer errors, not runtime conditions.
func New(cfg Config) *Executor {
	if cfg.LLM == nil || cfg.Registry == nil || cfg.Host == nil {
		panic("executor: LLM, Registry, and Host are required")
	}
	if cfg.Window == 0 {
		cfg.Window = 200_000
	}
	if cfg.MistakeThreshold == 0 {
		cfg.MistakeThreshold = defaultMistakeThreshold
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Checkpoints == nil {
		cfg.Checkpoints = checkpoint.NopCheckpointer{}
	}
	return &Executor{cfg: cfg}
}

// Result is what Run returns once the loop reaches a stopping point:
// attempt_completion, no tool dispatched (awaiting the next user
// message), or an aborted run.
type Result struct {
	Completed      bool
	CompletionText string
	DemoCommand    string
	Aborted        bool
}

const tooManyMistakesNotice = "You have made several consecutive tool-call mistakes. Stop and reconsider your approach, or ask the user for guidance, before trying again."

// Run drives the loop described in spec §4.G starting from userMessage
// (may be empty when resuming a conversation whose last turn already
// ended with a tool dispatch — callers should not normally do this;
// Conversation already carries forward any pending tool-result text).
func (e *Executor) Run(ctx context.Context, conv *Conversation, userMessage string) (*Result, error) {
	state := NewTaskState()
	pending := userMessage

	for {
		if ctx.Err() != nil {
			return &Result{Aborted: true}, nil
		}

		state.APIRequestCount++
		e.maybeShrink(conv)

		if pending != "" {
			pending = e.runUserPromptSubmitHook(ctx, pending)
			conv.History = append(conv.History, ctxmgr.Text(ctxmgr.RoleUser, pending))
			pending = ""
		}

		if state.ConsecutiveMistakeCount >= e.cfg.MistakeThreshold {
			conv.History = append(conv.History, ctxmgr.Text(ctxmgr.RoleUser, tooManyMistakesNotice))
			state.ConsecutiveMistakeCount = 0
		}

		e.cfg.Host.Say(KindAPIReqStarted, "", false)

		resp, err := e.callModel(ctx, conv)
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			return &Result{Aborted: true}, nil
		}

		conv.TotalTokens = resp.Usage.InputTokens + resp.Usage.CacheReadInputTokens + resp.Usage.OutputTokens
		conv.History = append(conv.History, ctxmgr.Text(ctxmgr.RoleAssistant, resp.Text))
		e.cfg.Host.Say(KindText, resp.Text, false)

		blocks := assistant.Parse(resp.Text)

		result, notices, err := e.dispatchTools(ctx, blocks, state, conv)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}

		if !state.DidAlreadyUseTool {
			// No tool call this turn: return control to the caller,
			// who will supply the next user message.
			return &Result{}, nil
		}

		pending = strings.Join(notices, "\n\n")
	}
}

func (e *Executor) maybeShrink(conv *Conversation) {
	if !ctxmgr.ShouldShrink(conv.TotalTokens, e.cfg.Window) {
		return
	}
	res := ctxmgr.Shrink(conv.History, e.cfg.Window, conv.TotalTokens, conv.DeletedRange, conv.Updates, e.cfg.Now().Unix())
	conv.DeletedRange = res.DeletedRange
	conv.Updates = res.Updates
}

func (e *Executor) callModel(ctx context.Context, conv *Conversation) (*llm.MessageResponse, error) {
	visible := ctxmgr.GetTruncatedMessages(conv.History, conv.DeletedRange, conv.Updates)

	sysBlocks := promptbuild.BuildSystemPrompt(&promptbuild.Context{
		Cwd:          e.cfg.Cwd,
		Model:        e.cfg.LLM.Model(),
		Registry:     e.cfg.Registry,
		Tracker:      e.cfg.Tracker,
		Now:          e.cfg.Now(),
		Instructions: e.cfg.Instructions,
	})
	reqMsgs := promptbuild.RenderMessages(visible)

	if promptbuild.IsCachingEnabled(e.cfg.LLM.Model()) {
		sysBlocks = promptbuild.WithSystemPromptCaching(sysBlocks)
		reqMsgs = promptbuild.WithMessageCaching(reqMsgs)
	}

	req := &llm.CreateMessageRequest{Messages: reqMsgs, System: sysBlocks}
	handler := newStreamSink(e.cfg.Host)

	var resp *llm.MessageResponse
	err := llm.CallWithRetry(ctx, e.cfg.Retry, func() error {
		r, err := e.cfg.LLM.CreateMessageStream(ctx, req, handler)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}
	return resp, nil
}

// dispatchTools runs the tool-dispatch portion of the per-turn sequence
// (spec step 6-8). It returns a non-nil *Result only when the turn ends
// the whole run (attempt_completion or abort); otherwise it returns the
// notices to fold into the next synthetic user message.
func (e *Executor) dispatchTools(ctx context.Context, blocks []assistant.Block, state *TaskState, conv *Conversation) (*Result, []string, error) {
	state.DidAlreadyUseTool = false
	var notices []string

	if e.cfg.ParallelToolsEnabled {
		return e.dispatchParallel(ctx, blocks, state, conv)
	}

	for _, blk := range blocks {
		if blk.Kind != assistant.KindToolUse {
			continue
		}
		if ctx.Err() != nil {
			return &Result{Aborted: true}, nil, nil
		}
		if state.DidAlreadyUseTool {
			notices = append(notices, fmt.Sprintf("[%s was skipped: only one tool may be used per message]", blk.Tool))
			continue
		}
		state.DidAlreadyUseTool = true

		text, completion := e.runOne(ctx, blk, state, conv)
		notices = append(notices, text)
		if completion != nil {
			return completion, nil, nil
		}
	}

	return nil, notices, nil
}

// runOne dispatches a single tool call and returns the text to fold back
// into the conversation, plus a non-nil Result if this call was
// attempt_completion.
func (e *Executor) runOne(ctx context.Context, blk assistant.Block, state *TaskState, conv *Conversation) (string, *Result) {
	e.cfg.Checkpoints.Save(ctx, string(blk.Tool))

	input := hookInput(blk.Params)
	if err := e.runPreToolUseHook(ctx, blk.Tool, input); err != nil {
		return fmt.Sprintf("[Result for %s]\n%s", blk.Tool, err.Error()), nil
	}

	tc := e.newToolContext(ctx, state, conv)
	resp, err := e.cfg.Registry.Execute(blk.Tool, blk.Params, tc)
	if err != nil {
		// Context cancellation or another truly unrecoverable condition;
		// surface it as a tool error result rather than aborting the
		// whole dispatch loop, per §4.D step 7.
		resp = tools.ErrorResponse(err.Error())
	}

	if resp.IsError && e.cfg.ErrorLog != nil {
		e.cfg.ErrorLog.Record(string(blk.Tool), apierrors.ClassifyToolFailure(string(blk.Tool), responseText(resp)))
	}

	e.runPostToolUseHook(ctx, blk.Tool, input, responseText(resp), resp.IsError)

	state.withLock(func() {
		if resp.IsError {
			state.ConsecutiveMistakeCount++
			return
		}
		state.ConsecutiveMistakeCount = 0
		switch blk.Tool {
		case assistant.ToolWriteToFile, assistant.ToolReplaceInFile:
			state.DidEditFile = true
		case assistant.ToolFocusChain:
			state.CurrentFocusChainChecklist = blk.Params["checklist"]
		}
	})

	e.cfg.Host.Say(KindTool, fmt.Sprintf("%s -> %s", blk.Tool, responseText(resp)), false)

	if blk.Tool == assistant.ToolAttemptCompletion && !resp.IsError {
		return responseText(resp), &Result{
			Completed:      true,
			CompletionText: blk.Params["result"],
			DemoCommand:    blk.Params["command"],
		}
	}

	return fmt.Sprintf("[Result for %s]\n%s", blk.Tool, responseText(resp)), nil
}

func responseText(resp tools.ToolResponse) string {
	var parts []string
	for _, c := range resp.Content {
		if c.Kind == tools.ContentText {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// runUserPromptSubmitHook runs UserPromptSubmit hooks and folds any
// prompt-hook injections into the message itself, since Run only keeps
// a single pending string around.
func (e *Executor) runUserPromptSubmitHook(ctx context.Context, message string) string {
	if e.cfg.Hooks == nil {
		return message
	}
	result, err := e.cfg.Hooks.RunUserPromptSubmit(ctx, message)
	if err != nil {
		return message
	}
	msg := result.Message
	for _, inject := range e.cfg.Hooks.PendingInjections() {
		msg += "\n\n" + inject
	}
	return msg
}

// runPreToolUseHook returns a non-nil error when a PreToolUse hook
// blocks the tool call; the caller should skip Execute and surface the
// error as the tool's result text instead.
func (e *Executor) runPreToolUseHook(ctx context.Context, tool assistant.ToolName, input json.RawMessage) error {
	if e.cfg.Hooks == nil {
		return nil
	}
	return e.cfg.Hooks.RunPreToolUse(ctx, string(tool), input)
}

func (e *Executor) runPostToolUseHook(ctx context.Context, tool assistant.ToolName, input json.RawMessage, output string, isError bool) {
	if e.cfg.Hooks == nil {
		return
	}
	e.cfg.Hooks.RunPostToolUse(ctx, string(tool), input, output, isError)
}

// hookInput marshals a tool's string-keyed params for the hook env vars.
// Marshal failure is impossible for a map[string]string; the empty
// object is a harmless fallback if it ever happened.
func hookInput(params map[string]string) json.RawMessage {
	data, err := json.Marshal(params)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

func (e *Executor) newToolContext(ctx context.Context, state *TaskState, conv *Conversation) *tools.ToolContext {
	return &tools.ToolContext{
		Context: ctx,
		Cwd:     e.cfg.Cwd,
		Tracker: e.cfg.Tracker,
		MCP:     e.cfg.MCP,
		Env:     e.cfg.Env,
		Approve: e.newApproveFunc(ctx, state),
		Compress: func() (int, error) {
			before := approxHistoryChars(conv.History)
			e.maybeForceShrink(conv)
			after := approxHistoryChars(ctxmgr.GetTruncatedMessages(conv.History, conv.DeletedRange, conv.Updates))
			return before - after, nil
		},
		Summarize: func() (string, error) {
			return summarizeConversation(conv.History), nil
		},
	}
}

// summarizeConversation produces a naive extractive summary: the most
// recent few text blocks, truncated. A real implementation would issue a
// dedicated model call; this runtime keeps the tool usable without a
// second network round trip.
func summarizeConversation(history []ctxmgr.Message) string {
	const maxBlocks = 4
	const maxChars = 600

	var recent []string
	for i := len(history) - 1; i >= 0 && len(recent) < maxBlocks; i-- {
		for _, b := range history[i].Content {
			if b.Kind == ctxmgr.BlockText && b.Text != "" {
				recent = append([]string{b.Text}, recent...)
				break
			}
		}
	}

	summary := strings.Join(recent, " ")
	if len(summary) > maxChars {
		summary = summary[:maxChars] + "..."
	}
	if summary == "" {
		return "no progress to summarize yet"
	}
	return summary
}

// newApproveFunc returns the ApprovalFunc the registry consults before a
// gated tool's side effect runs: auto-approve per the host's policy, or
// ask and record a rejection on the task state (spec's didRejectTool).
func (e *Executor) newApproveFunc(ctx context.Context, state *TaskState) tools.ApprovalFunc {
	return func(toolName, description string) (bool, error) {
		if e.cfg.Host.ShouldAutoApprove(toolName) {
			state.withLock(func() { state.ConsecutiveAutoApprovalCount++ })
			return true, nil
		}
		state.withLock(func() { state.ConsecutiveAutoApprovalCount = 0 })

		ans, err := e.cfg.Host.Ask(ctx, KindTool, description)
		if err != nil {
			return false, err
		}
		if ans.Response != AskYes {
			state.withLock(func() { state.DidRejectTool = true })
			return false, nil
		}
		return true, nil
	}
}

// maybeForceShrink runs Shrink unconditionally, for the compress_conversation
// tool's explicit "free up space now" request.
func (e *Executor) maybeForceShrink(conv *Conversation) {
	res := ctxmgr.Shrink(conv.History, e.cfg.Window, e.cfg.Window, conv.DeletedRange, conv.Updates, e.cfg.Now().Unix())
	conv.DeletedRange = res.DeletedRange
	conv.Updates = res.Updates
}

func approxHistoryChars(msgs []ctxmgr.Message) int {
	total := 0
	for _, m := range msgs {
		for _, b := range m.Content {
			total += len(b.Text)
		}
	}
	return total
}

package tools

import (
	"strings"

	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/toolsafety"
)

// This file groups the tool handlers whose effect is entirely about
// conversation control flow rather than filesystem or process side
// effects: they format their params back for the host to act on, and the
// executor's turn loop interprets their presence specially (ending the
// task, prompting the user, etc.) rather than just chaining to the next
// turn.

func init() {
	Default.Register(Tool{
		Name:        assistant.ToolAskFollowupQuestion,
		Description: "Ask the user a clarifying question before proceeding.",
		Execute:     executeAskFollowupQuestion,
	})
	Default.Register(Tool{
		Name:        assistant.ToolAttemptCompletion,
		Description: "Present the final result of the task to the user.",
		Execute:     executeAttemptCompletion,
	})
	Default.Register(Tool{
		Name:        assistant.ToolPlanModeRespond,
		Description: "Respond to the user while in plan mode, without taking action.",
		Execute:     executePlanModeRespond,
	})
	Default.Register(Tool{
		Name:        assistant.ToolNewTask,
		Description: "Start a new task, carrying forward the given context.",
		Execute:     executeNewTask,
	})
	Default.Register(Tool{
		Name:        assistant.ToolFocusChain,
		Description: "Register an in-progress checklist for the current task.",
		Execute:     executeFocusChain,
	})
	Default.Register(Tool{
		Name:        assistant.ToolBrowserAction,
		Description: "Control a browser session.",
		Execute:     executeBrowserAction,
	})
}

func executeAskFollowupQuestion(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("ask_followup_question", params, "question"); err != nil {
		return ErrorResponse(err.Error()), nil
	}
	return TextResponse(params["question"]), nil
}

func executeAttemptCompletion(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("attempt_completion", params, "result"); err != nil {
		return ErrorResponse(err.Error()), nil
	}
	text := params["result"]
	if cmd := strings.TrimSpace(params["command"]); cmd != "" {
		text += "\n\ndemo command: " + cmd
	}
	return TextResponse(text), nil
}

func executePlanModeRespond(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("plan_mode_respond", params, "response"); err != nil {
		return ErrorResponse(err.Error()), nil
	}
	return TextResponse(params["response"]), nil
}

func executeNewTask(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("new_task", params, "context"); err != nil {
		return ErrorResponse(err.Error()), nil
	}
	return TextResponse("new task queued with carried-forward context"), nil
}

func executeFocusChain(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("focus_chain", params, "checklist"); err != nil {
		return ErrorResponse(err.Error()), nil
	}
	return TextResponse("checklist updated"), nil
}

func executeBrowserAction(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	return ErrorResponse("browser control is not available in this runtime"), nil
}

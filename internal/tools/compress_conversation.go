package tools

import (
	"fmt"

	"github.com/kestrel-dev/agentcore/internal/assistant"
)

func init() {
	Default.Register(Tool{
		Name:        "compress_conversation",
		Description: "Force an immediate context-window compression pass.",
		Execute:     executeCompressConversation,
	})
	Default.Register(Tool{
		Name:        "summarize_task",
		Description: "Produce a short summary of the task's progress so far.",
		Execute:     executeSummarizeTask,
	})
}

func executeCompressConversation(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if tc.Compress == nil {
		return ErrorResponse("compression is not available in this context"), nil
	}
	freed, err := tc.Compress()
	if err != nil {
		return ErrorResponse(fmt.Sprintf("compression failed: %v", err)), nil
	}
	return TextResponse(fmt.Sprintf("freed %d characters from the conversation", freed)), nil
}

func executeSummarizeTask(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if tc.Summarize == nil {
		return ErrorResponse("summarization is not available in this context"), nil
	}
	summary, err := tc.Summarize()
	if err != nil {
		return ErrorResponse(fmt.Sprintf("summarization failed: %v", err)), nil
	}
	return TextResponse(summary), nil
}

// ToolCompressConversation and ToolSummarizeTask name the two
// executor-internal tools for other packages; assistant's own tool-name
// constants do not include them (they are not part of the model-facing
// wire format's tag vocabulary).
const (
	ToolCompressConversation assistant.ToolName = "compress_conversation"
	ToolSummarizeTask        assistant.ToolName = "summarize_task"
)

package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/kestrel-dev/agentcore/internal/assistant"
)

func TestRegistryExecuteUnknownTool(t *testing.T) {
	r := NewRegistry()
	resp, err := r.Execute("not_a_tool", nil, &ToolContext{Context: context.Background()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsError {
		t.Fatal("expected IsError for unknown tool")
	}
}

func TestRegistryApprovalGateDenied(t *testing.T) {
	r := NewRegistry()
	r.Register(Tool{
		Name:             "needs_approval",
		RequiresApproval: func(map[string]string) bool { return true },
		Execute: func(tc *ToolContext, params map[string]string) (ToolResponse, error) {
			return TextResponse("should not run"), nil
		},
	})

	tc := &ToolContext{
		Context: context.Background(),
		Approve: func(string, string) (bool, error) { return false, nil },
	}
	resp, err := r.Execute("needs_approval", nil, tc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsError {
		t.Fatal("expected IsError when approval denied")
	}
}

func TestRegistryApprovalGateApproved(t *testing.T) {
	r := NewRegistry()
	ran := false
	r.Register(Tool{
		Name:             "needs_approval",
		RequiresApproval: func(map[string]string) bool { return true },
		Execute: func(tc *ToolContext, params map[string]string) (ToolResponse, error) {
			ran = true
			return TextResponse("ok"), nil
		},
	})

	tc := &ToolContext{
		Context: context.Background(),
		Approve: func(string, string) (bool, error) { return true, nil },
	}
	if _, err := r.Execute("needs_approval", nil, tc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatal("expected handler to run after approval")
	}
}

func TestRegistryApprovalErrorPropagates(t *testing.T) {
	r := NewRegistry()
	r.Register(Tool{
		Name:             "needs_approval",
		RequiresApproval: func(map[string]string) bool { return true },
		Execute: func(tc *ToolContext, params map[string]string) (ToolResponse, error) {
			return TextResponse("ok"), nil
		},
	})

	wantErr := errors.New("host unavailable")
	tc := &ToolContext{
		Context: context.Background(),
		Approve: func(string, string) (bool, error) { return false, wantErr },
	}
	if _, err := r.Execute("needs_approval", nil, tc); !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
}

func TestRegistrationOrderPreservedOnReRegister(t *testing.T) {
	r := NewRegistry()
	r.Register(Tool{Name: "a"})
	r.Register(Tool{Name: "b"})
	r.Register(Tool{Name: "a"})

	var names []assistant.ToolName
	for _, tool := range r.Ordered() {
		names = append(names, tool.Name)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("got %v, want [a b]", names)
	}
}

func TestDefaultRegistryHasAllSpecTools(t *testing.T) {
	want := []assistant.ToolName{
		assistant.ToolReadFile, assistant.ToolWriteToFile, assistant.ToolReplaceInFile,
		assistant.ToolExecuteCommand, assistant.ToolSearchFiles, assistant.ToolListFiles,
		assistant.ToolListCodeDefinitionNames, assistant.ToolAskFollowupQuestion,
		assistant.ToolAttemptCompletion, assistant.ToolPlanModeRespond, assistant.ToolNewTask,
		assistant.ToolWebFetch, assistant.ToolUseMCPTool, assistant.ToolAccessMCPResource,
		assistant.ToolLoadMCPDocumentation, assistant.ToolBrowserAction, assistant.ToolFocusChain,
	}
	for _, name := range want {
		if _, ok := Default.Get(name); !ok {
			t.Errorf("Default registry missing handler for %q", name)
		}
	}
}

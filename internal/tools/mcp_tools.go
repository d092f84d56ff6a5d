package tools

import (
	"encoding/json"
	"fmt"

	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/toolsafety"
)

func init() {
	Default.Register(Tool{
		Name:        assistant.ToolUseMCPTool,
		Description: "Call a tool exposed by a connected MCP server.",
		Execute:     executeUseMCPTool,
	})
	Default.Register(Tool{
		Name:        assistant.ToolAccessMCPResource,
		Description: "Read a resource exposed by a connected MCP server.",
		Execute:     executeAccessMCPResource,
	})
	Default.Register(Tool{
		Name:        assistant.ToolLoadMCPDocumentation,
		Description: "List the tools and resources a connected MCP server exposes.",
		Execute:     executeLoadMCPDocumentation,
	})
}

func executeUseMCPTool(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("use_mcp_tool", params, "server_name", "tool_name"); err != nil {
		return ErrorResponse(err.Error()), nil
	}
	if tc.MCP == nil {
		return ErrorResponse("no MCP servers are configured"), nil
	}
	server, ok := tc.MCP.Get(params["server_name"])
	if !ok {
		return ErrorResponse(fmt.Sprintf("unknown MCP server %q", params["server_name"])), nil
	}

	var args json.RawMessage
	if raw := params["arguments"]; raw != "" {
		if !json.Valid([]byte(raw)) {
			return ErrorResponse("arguments must be valid JSON"), nil
		}
		args = json.RawMessage(raw)
	}

	text, err := server.CallTool(tc.Context, params["tool_name"], args)
	if err != nil {
		return ErrorResponse(fmt.Sprintf("MCP tool call failed: %v", err)), nil
	}
	return TextResponse(text), nil
}

func executeAccessMCPResource(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("access_mcp_resource", params, "server_name", "uri"); err != nil {
		return ErrorResponse(err.Error()), nil
	}
	if tc.MCP == nil {
		return ErrorResponse("no MCP servers are configured"), nil
	}
	server, ok := tc.MCP.Get(params["server_name"])
	if !ok {
		return ErrorResponse(fmt.Sprintf("unknown MCP server %q", params["server_name"])), nil
	}

	text, err := server.ReadResource(tc.Context, params["uri"])
	if err != nil {
		return ErrorResponse(fmt.Sprintf("MCP resource read failed: %v", err)), nil
	}
	return TextResponse(text), nil
}

func executeLoadMCPDocumentation(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if tc.MCP == nil {
		return TextResponse("no MCP servers are configured"), nil
	}

	var sb []byte
	for _, name := range tc.MCP.Names() {
		server, _ := tc.MCP.Get(name)
		toolList, err := server.ListTools(tc.Context)
		if err != nil {
			sb = append(sb, []byte(fmt.Sprintf("%s: error listing tools: %v\n", name, err))...)
			continue
		}
		sb = append(sb, []byte(fmt.Sprintf("%s:\n", name))...)
		for _, t := range toolList {
			sb = append(sb, []byte(fmt.Sprintf("  %s: %s\n", t.Name, t.Description))...)
		}
	}
	if len(sb) == 0 {
		return TextResponse("no MCP servers are configured"), nil
	}
	return TextResponse(string(sb)), nil
}

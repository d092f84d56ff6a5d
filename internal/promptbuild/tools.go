package promptbuild

import (
	"fmt"
	"strings"

	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/tools"
)

// requiredParams lists, per tool, which of assistant.Params(name) must be
// present for a call to validate — mirrors each handler's own
// toolsafety.AssertRequired call, kept here only for prompt rendering.
// The exception is browser_action: its handler checks no parameters and
// always reports that browser control is unavailable.
// The handlers themselves remain the source of truth for enforcement;
// this map only has to stay honest for the docs to be useful.
var requiredParams = map[assistant.ToolName][]string{
	assistant.ToolReadFile:                {"path"},
	assistant.ToolWriteToFile:             {"path", "content"},
	assistant.ToolReplaceInFile:           {"path", "diff"},
	assistant.ToolExecuteCommand:          {"command"},
	assistant.ToolSearchFiles:             {"path", "regex"},
	assistant.ToolListFiles:               {"path"},
	assistant.ToolListCodeDefinitionNames: {"path"},
	assistant.ToolAskFollowupQuestion:     {"question"},
	assistant.ToolAttemptCompletion:       {"result"},
	assistant.ToolPlanModeRespond:         {"response"},
	assistant.ToolNewTask:                 {"context"},
	assistant.ToolWebFetch:                {"url"},
	assistant.ToolUseMCPTool:              {"server_name", "tool_name"},
	assistant.ToolAccessMCPResource:       {"server_name", "uri"},
	assistant.ToolLoadMCPDocumentation:    {},
	assistant.ToolBrowserAction:           {"action"},
	assistant.ToolFocusChain:              {"checklist"},
}

// toolExamples gives one illustrative call per tool. Tools with no entry
// get a generic example generated from their parameter list.
var toolExamples = map[assistant.ToolName]string{
	assistant.ToolReadFile:      "<read_file>\n<path>src/main.go</path>\n</read_file>",
	assistant.ToolWriteToFile:   "<write_to_file>\n<path>src/main.go</path>\n<content>\npackage main\n</content>\n</write_to_file>",
	assistant.ToolExecuteCommand: "<execute_command>\n<command>go build ./...</command>\n<requires_approval>false</requires_approval>\n</execute_command>",
	assistant.ToolReplaceInFile: "<replace_in_file>\n<path>src/main.go</path>\n<diff>\n" +
		tools.SearchMarker + "\nold line\n" + tools.DividerMarker + "\nnew line\n" + tools.ReplaceMarker +
		"\n</diff>\n</replace_in_file>",
}

// replaceInFileDiffFormat spells out the diff param's block syntax in
// full, since the model only ever sees one short example otherwise and
// the marker lines (SEARCH.../=======/...REPLACE) are easy to garble.
var replaceInFileDiffFormat = fmt.Sprintf(
	"The diff parameter is one or more blocks, each shaped like:\n"+
		"%s\n(exact text to find)\n%s\n(text to replace it with)\n%s\n"+
		"Each block replaces the first occurrence of its search text, in document order. "+
		"The search text must match the file byte-for-byte, including whitespace.",
	tools.SearchMarker, tools.DividerMarker, tools.ReplaceMarker,
)

// RenderToolCatalogue renders reg's registered tools, in registration
// order, as the XML-tag documentation block the model needs to emit
// valid tool calls: one section per tool naming its required and
// optional parameters and an example invocation. This is the only place
// that needs to know about both internal/tools (for descriptions) and
// internal/assistant (for the parameter vocabulary the parser actually
// recognizes) — the two must never drift, which is why the parameter
// list comes from assistant.Params rather than a duplicate table.
func RenderToolCatalogue(reg *tools.Registry) string {
	var b strings.Builder
	b.WriteString("# Tools\n\n")
	b.WriteString("Tool calls use XML-like tags. Only one tool may be used per message, and you must wait for the result before using another.\n\n")

	for _, t := range reg.Ordered() {
		writeToolSection(&b, t)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeToolSection(b *strings.Builder, t tools.Tool) {
	params := assistant.Params(t.Name)
	required := requiredSet(t.Name)

	fmt.Fprintf(b, "## %s\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(b, "%s\n", t.Description)
	}

	if len(params) > 0 {
		b.WriteString("Parameters:\n")
		for _, p := range params {
			tag := "optional"
			if required[p] {
				tag = "required"
			}
			fmt.Fprintf(b, "- %s (%s)\n", p, tag)
		}
	}

	if t.Name == assistant.ToolReplaceInFile {
		fmt.Fprintf(b, "%s\n", replaceInFileDiffFormat)
	}

	if ex, ok := toolExamples[t.Name]; ok {
		b.WriteString("Example:\n")
		b.WriteString(ex)
		b.WriteString("\n")
	} else {
		b.WriteString("Example:\n")
		b.WriteString(genericExample(t.Name, params))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func requiredSet(name assistant.ToolName) map[string]bool {
	out := map[string]bool{}
	for _, p := range requiredParams[name] {
		out[p] = true
	}
	return out
}

// genericExample builds a minimal example call from a tool's parameter
// list, for tools not given a hand-written example above.
func genericExample(name assistant.ToolName, params []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s>\n", name)
	for _, p := range params {
		fmt.Fprintf(&b, "<%s>...</%s>\n", p, p)
	}
	fmt.Fprintf(&b, "</%s>", name)
	return b.String()
}

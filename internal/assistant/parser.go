package assistant

import "strings"

// toolOpenTag and toolCloseTag are precomputed once so the scan loop
// never allocates a tag string per character.
var (
	toolOpenTag  = map[string]ToolName{}
	toolCloseTag = map[ToolName]string{}
)

func init() {
	for _, name := range allToolNames {
		toolOpenTag["<"+string(name)+">"] = name
		toolCloseTag[name] = "</" + string(name) + ">"
	}
}

func paramOpenTag(name string) string  { return "<" + name + ">" }
func paramCloseTag(name string) string { return "</" + name + ">" }

// Parse converts a (possibly truncated) assistant message string into an
// ordered sequence of content blocks. It never errors: malformed or
// mid-stream input simply yields whatever blocks can be recovered, with the
// trailing block (if any) carrying Partial=true.
//
// This is a single forward pass over s, O(len(s)). At every byte offset i
// the scan asks "does a known tag end exactly here?" by comparing the
// trailing slice of s[:i+1] against each candidate tag — never re-scanning
// earlier input.
func Parse(s string) []Block {
	var blocks []Block

	textStart := 0
	toolStart := 0
	var currentTool ToolName
	var currentParam string
	paramValueStart := 0
	var params map[string]string

	endsWith := func(i int, tag string) bool {
		n := len(tag)
		return i+1 >= n && s[i+1-n:i+1] == tag
	}

	for i := 0; i < len(s); i++ {
		switch {
		case currentParam != "":
			// Inside a parameter value: only a matching close tag ends it.
			closeTag := paramCloseTag(currentParam)
			if endsWith(i, closeTag) {
				value := strings.TrimSpace(s[paramValueStart : i+1-len(closeTag)])
				params[currentParam] = value
				currentParam = ""
			}

		case currentTool != "":
			// Inside a tool, not inside a parameter: a known parameter open
			// tag takes precedence over the tool's own close tag.
			matchedParam := false
			for _, name := range toolParams[currentTool] {
				if endsWith(i, paramOpenTag(name)) {
					currentParam = name
					paramValueStart = i + 1
					matchedParam = true
					break
				}
			}
			if matchedParam {
				continue
			}
			if closeTag := toolCloseTag[currentTool]; endsWith(i, closeTag) {
				inner := s[toolStart : i+1-len(closeTag)]
				blocks = append(blocks, finalizeTool(currentTool, params, inner, false))
				currentTool = ""
				params = nil
				textStart = i + 1
			}

		default:
			// Outside any tool: look for a tool opening tag.
			for openTag, name := range toolOpenTag {
				if endsWith(i, openTag) {
					if text := strings.TrimSpace(s[textStart : i+1-len(openTag)]); text != "" {
						blocks = append(blocks, NewText(text, false))
					}
					currentTool = name
					toolStart = i + 1
					params = map[string]string{}
					break
				}
			}
		}
	}

	// End of input: finalize whatever is still open.
	switch {
	case currentParam != "":
		params[currentParam] = strings.TrimSpace(s[paramValueStart:])
		blocks = append(blocks, finalizeTool(currentTool, params, s[toolStart:], true))

	case currentTool != "":
		blocks = append(blocks, finalizeTool(currentTool, params, s[toolStart:], true))

	default:
		if text := strings.TrimSpace(s[textStart:]); text != "" {
			blocks = append(blocks, NewText(text, true))
		}
	}

	return blocks
}

// finalizeTool builds a ToolUse block, applying write_to_file's special
// content-marker rescan: if the accumulated inner slice contains a
// <content> opening tag, the outermost <content>...</content> pair (first
// open, last close) wins over whatever the incremental param scan found —
// this tolerates file content that itself contains the literal marker.
func finalizeTool(name ToolName, params map[string]string, inner string, partial bool) Block {
	if params == nil {
		params = map[string]string{}
	}
	if name == ToolWriteToFile {
		const openTag = "<content>"
		const closeTag = "</content>"
		if openIdx := strings.Index(inner, openTag); openIdx >= 0 {
			if closeIdx := strings.LastIndex(inner, closeTag); closeIdx > openIdx {
				start := openIdx + len(openTag)
				params["content"] = strings.TrimSpace(inner[start:closeIdx])
			}
		}
	}
	return Block{Kind: KindToolUse, Tool: name, Params: params, Partial: partial}
}

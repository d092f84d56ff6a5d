package promptbuild

import (
	"fmt"
	"sort"
	"strings"

	ctxmgr "github.com/kestrel-dev/agentcore/internal/context"
	"github.com/kestrel-dev/agentcore/internal/llm"
)

// RenderMessages flattens history's blocks into the plain-text wire
// format internal/llm sends: tool calls render as the same XML-like tags
// the model itself emits them in (so a replayed assistant turn round-trips
// through internal/assistant.Parse unchanged), and tool results render as
// a labeled text blob. Nothing here talks to the network; it only decides
// what bytes represent a Message.
func RenderMessages(history []ctxmgr.Message) []llm.RequestMessage {
	out := make([]llm.RequestMessage, 0, len(history))
	for _, m := range history {
		out = append(out, llm.RequestMessage{
			Role:    string(m.Role),
			Content: renderBlocks(m.Content),
		})
	}
	return out
}

func renderBlocks(blocks []ctxmgr.Block) string {
	var parts []string
	for _, b := range blocks {
		switch b.Kind {
		case ctxmgr.BlockText:
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		case ctxmgr.BlockToolUse:
			parts = append(parts, renderToolUse(b))
		case ctxmgr.BlockToolResult:
			parts = append(parts, fmt.Sprintf("[Tool result for %s]\n%s", b.ResultForID, b.Text))
		case ctxmgr.BlockImage:
			parts = append(parts, fmt.Sprintf("[image: %s, omitted from text transcript]", b.MediaType))
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderToolUse(b ctxmgr.Block) string {
	keys := make([]string, 0, len(b.Input))
	for k := range b.Input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var s strings.Builder
	fmt.Fprintf(&s, "<%s>\n", b.Name)
	for _, k := range keys {
		fmt.Fprintf(&s, "<%s>%s</%s>\n", k, b.Input[k], k)
	}
	fmt.Fprintf(&s, "</%s>", b.Name)
	return s.String()
}

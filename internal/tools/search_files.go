package tools

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/ripgrep"
	"github.com/kestrel-dev/agentcore/internal/toolsafety"
)

func init() {
	Default.Register(Tool{
		Name:        assistant.ToolSearchFiles,
		Description: "Search files under a directory for a regex pattern.",
		Execute:     executeSearchFiles,
	})
}

func executeSearchFiles(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("search_files", params, "path", "regex"); err != nil {
		return ErrorResponse(err.Error()), nil
	}
	path := params["path"]
	if err := toolsafety.CheckPath(path); err != nil {
		return ErrorResponse(err.Error()), nil
	}

	dir := path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(tc.Cwd, path)
	}

	matches, err := ripgrep.Search(tc.Context, dir, params["regex"], params["file_pattern"])
	if err != nil {
		return ErrorResponse(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(matches) == 0 {
		return TextResponse("no matches found"), nil
	}

	var sb strings.Builder
	for _, m := range matches {
		rel, err := filepath.Rel(tc.Cwd, m.Path)
		if err != nil {
			rel = m.Path
		}
		fmt.Fprintf(&sb, "%s:%d: %s\n", rel, m.Line, m.Text)
	}
	return TextResponse(strings.TrimRight(sb.String(), "\n")), nil
}

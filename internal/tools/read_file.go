package tools

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/toolsafety"
)

func init() {
	Default.Register(Tool{
		Name:        assistant.ToolReadFile,
		Description: "Read the full contents of a file at the given path.",
		Execute:     executeReadFile,
	})
}

func executeReadFile(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("read_file", params, "path"); err != nil {
		return ErrorResponse(err.Error()), nil
	}
	path := params["path"]
	if err := toolsafety.CheckPath(path); err != nil {
		return ErrorResponse(err.Error()), nil
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(tc.Cwd, path)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return ErrorResponse(fmt.Sprintf("could not read %s: %v", path, err)), nil
	}

	if tc.Tracker != nil {
		tc.Tracker.MarkRead(full)
	}

	return TextResponse(string(data)), nil
}

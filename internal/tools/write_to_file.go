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
		Name:             assistant.ToolWriteToFile,
		Description:      "Write content to a file, creating it or overwriting it entirely.",
		RequiresApproval: func(map[string]string) bool { return true },
		Execute:          executeWriteToFile,
	})
}

func executeWriteToFile(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("write_to_file", params, "path", "content"); err != nil {
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

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return ErrorResponse(fmt.Sprintf("could not create directory for %s: %v", path, err)), nil
	}
	if err := os.WriteFile(full, []byte(params["content"]), 0o644); err != nil {
		return ErrorResponse(fmt.Sprintf("could not write %s: %v", path, err)), nil
	}

	if tc.Tracker != nil {
		tc.Tracker.MarkEditedByCline(full)
	}

	return TextResponse(fmt.Sprintf("wrote %d bytes to %s", len(params["content"]), path)), nil
}

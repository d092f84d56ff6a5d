package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/toolsafety"
)

func init() {
	Default.Register(Tool{
		Name:        assistant.ToolListFiles,
		Description: "List files and directories at a given path.",
		Execute:     executeListFiles,
	})
}

func executeListFiles(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("list_files", params, "path"); err != nil {
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
	recursive := params["recursive"] == "true"

	var entries []string
	if recursive {
		err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
			if err != nil || p == dir {
				return nil
			}
			rel, _ := filepath.Rel(dir, p)
			if d.IsDir() {
				entries = append(entries, rel+"/")
			} else {
				entries = append(entries, rel)
			}
			return nil
		})
		if err != nil {
			return ErrorResponse(fmt.Sprintf("could not list %s: %v", path, err)), nil
		}
	} else {
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			return ErrorResponse(fmt.Sprintf("could not list %s: %v", path, err)), nil
		}
		for _, d := range dirEntries {
			if d.IsDir() {
				entries = append(entries, d.Name()+"/")
			} else {
				entries = append(entries, d.Name())
			}
		}
	}

	sort.Strings(entries)
	if len(entries) == 0 {
		return TextResponse("(empty directory)"), nil
	}
	return TextResponse(strings.Join(entries, "\n")), nil
}

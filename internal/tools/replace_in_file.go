package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/toolsafety"
)

func init() {
	Default.Register(Tool{
		Name:             assistant.ToolReplaceInFile,
		Description:      "Apply one or more SEARCH/REPLACE blocks to an existing file.",
		RequiresApproval: func(map[string]string) bool { return true },
		Execute:          executeReplaceInFile,
	})
}

// Marker lines delimiting a SEARCH/REPLACE block in a replace_in_file
// diff param. Exported so internal/promptbuild can render the exact
// syntax this parser requires instead of a generic placeholder.
const (
	SearchMarker  = "<<<<<<< SEARCH"
	DividerMarker = "======="
	ReplaceMarker = ">>>>>>> REPLACE"
)

// diffBlock is one SEARCH/REPLACE pair from a replace_in_file diff param.
type diffBlock struct {
	Search  string
	Replace string
}

// parseDiffBlocks splits a diff param into its ordered SEARCH/REPLACE
// blocks. It returns an error naming the malformed block on a marker
// mismatch rather than guessing at recovery.
func parseDiffBlocks(diff string) ([]diffBlock, error) {
	lines := strings.Split(diff, "\n")
	var blocks []diffBlock

	i := 0
	for i < len(lines) {
		line := strings.TrimRight(lines[i], "\r")
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		if strings.TrimSpace(line) != SearchMarker {
			return nil, fmt.Errorf("expected %q, got %q at line %d", SearchMarker, line, i+1)
		}
		i++

		var searchLines []string
		for i < len(lines) && strings.TrimSpace(strings.TrimRight(lines[i], "\r")) != DividerMarker {
			searchLines = append(searchLines, lines[i])
			i++
		}
		if i >= len(lines) {
			return nil, fmt.Errorf("unterminated SEARCH block (missing %q)", DividerMarker)
		}
		i++ // skip divider

		var replaceLines []string
		for i < len(lines) && strings.TrimSpace(strings.TrimRight(lines[i], "\r")) != ReplaceMarker {
			replaceLines = append(replaceLines, lines[i])
			i++
		}
		if i >= len(lines) {
			return nil, fmt.Errorf("unterminated REPLACE block (missing %q)", ReplaceMarker)
		}
		i++ // skip replace marker

		blocks = append(blocks, diffBlock{
			Search:  strings.Join(searchLines, "\n"),
			Replace: strings.Join(replaceLines, "\n"),
		})
	}
	return blocks, nil
}

// applyDiffBlocks applies each block's search->replace against content in
// order, replacing only the first occurrence of Search. An empty Search
// matches at the very start of the file (used for pure insertions into a
// new or empty file). Blocks apply atomically: if any block's Search is
// absent, the whole diff is rejected and no write happens.
func applyDiffBlocks(content string, blocks []diffBlock) (string, error) {
	for idx, b := range blocks {
		if b.Search == "" {
			content = b.Replace + content
			continue
		}
		if !strings.Contains(content, b.Search) {
			return "", fmt.Errorf("block %d: search content not found in file", idx+1)
		}
		content = strings.Replace(content, b.Search, b.Replace, 1)
	}
	return content, nil
}

func executeReplaceInFile(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("replace_in_file", params, "path", "diff"); err != nil {
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

	existing, err := os.ReadFile(full)
	if err != nil && !os.IsNotExist(err) {
		return ErrorResponse(fmt.Sprintf("could not read %s: %v", path, err)), nil
	}

	blocks, err := parseDiffBlocks(params["diff"])
	if err != nil {
		return ErrorResponse(fmt.Sprintf("malformed diff: %v", err)), nil
	}

	updated, err := applyDiffBlocks(string(existing), blocks)
	if err != nil {
		return ErrorResponse(fmt.Sprintf("could not apply diff to %s: %v", path, err)), nil
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return ErrorResponse(fmt.Sprintf("could not create directory for %s: %v", path, err)), nil
	}
	if err := os.WriteFile(full, []byte(updated), 0o644); err != nil {
		return ErrorResponse(fmt.Sprintf("could not write %s: %v", path, err)), nil
	}

	if tc.Tracker != nil {
		tc.Tracker.MarkEditedByCline(full)
	}

	return TextResponse(updated), nil
}

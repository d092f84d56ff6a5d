package tools

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/toolsafety"
)

func init() {
	Default.Register(Tool{
		Name:        assistant.ToolListCodeDefinitionNames,
		Description: "List top-level function, type, and class definitions under a path.",
		Execute:     executeListCodeDefinitionNames,
	})
}

// definitionPatterns maps a file extension to the regexes used to spot a
// top-level definition on a single line. Matching is intentionally
// line-based and coarse, not a real parse, the same tradeoff ctags-style
// tools make for speed across many languages.
var definitionPatterns = map[string][]*regexp.Regexp{
	".go": {
		regexp.MustCompile(`^func\s+(?:\([^)]*\)\s+)?(\w+)`),
		regexp.MustCompile(`^type\s+(\w+)\s+(?:struct|interface)\b`),
	},
	".ts": {
		regexp.MustCompile(`^export\s+(?:async\s+)?function\s+(\w+)`),
		regexp.MustCompile(`^export\s+(?:default\s+)?class\s+(\w+)`),
		regexp.MustCompile(`^export\s+interface\s+(\w+)`),
	},
	".tsx": {
		regexp.MustCompile(`^export\s+(?:async\s+)?function\s+(\w+)`),
		regexp.MustCompile(`^export\s+(?:default\s+)?class\s+(\w+)`),
	},
	".js": {
		regexp.MustCompile(`^function\s+(\w+)`),
		regexp.MustCompile(`^class\s+(\w+)`),
	},
	".py": {
		regexp.MustCompile(`^def\s+(\w+)`),
		regexp.MustCompile(`^class\s+(\w+)`),
	},
	".java": {
		regexp.MustCompile(`^\s*(?:public|private|protected)\s+(?:static\s+)?(?:class|interface)\s+(\w+)`),
	},
	".rs": {
		regexp.MustCompile(`^(?:pub\s+)?fn\s+(\w+)`),
		regexp.MustCompile(`^(?:pub\s+)?struct\s+(\w+)`),
		regexp.MustCompile(`^(?:pub\s+)?enum\s+(\w+)`),
	},
}

// genericDefinitionPattern is the fallback for extensions not in
// definitionPatterns: a loose catch for "function NAME" style lines.
var genericDefinitionPattern = regexp.MustCompile(`\bfunction\s+(\w+)|^\s*def\s+(\w+)`)

func executeListCodeDefinitionNames(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("list_code_definition_names", params, "path"); err != nil {
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

	results := map[string][]string{}
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		names := scanDefinitions(p)
		if len(names) > 0 {
			rel, _ := filepath.Rel(dir, p)
			results[rel] = names
		}
		return nil
	})
	if err != nil {
		return ErrorResponse(fmt.Sprintf("could not scan %s: %v", path, err)), nil
	}

	if len(results) == 0 {
		return TextResponse("no definitions found"), nil
	}

	var files []string
	for f := range results {
		files = append(files, f)
	}
	sort.Strings(files)

	var sb strings.Builder
	for _, f := range files {
		fmt.Fprintf(&sb, "%s:\n", f)
		for _, n := range results[f] {
			fmt.Fprintf(&sb, "  %s\n", n)
		}
	}
	return TextResponse(strings.TrimRight(sb.String(), "\n")), nil
}

func scanDefinitions(path string) []string {
	patterns, ok := definitionPatterns[filepath.Ext(path)]
	useGeneric := !ok

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if useGeneric {
			if m := genericDefinitionPattern.FindStringSubmatch(line); m != nil {
				names = append(names, firstNonEmpty(m[1:]))
			}
			continue
		}
		for _, re := range patterns {
			if m := re.FindStringSubmatch(line); m != nil {
				names = append(names, m[len(m)-1])
				break
			}
		}
	}
	return names
}

func firstNonEmpty(ss []string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadInstructions reads and merges AGENTCORE.md content for a working
// directory: the user-level file and rules under ~/.agentcore, then the
// project-level file and rules under cwd/.agentcore, then a bare
// AGENTCORE.md at cwd itself (the common case for a single-repo project).
// Sections are joined in ascending priority order so project instructions
// follow and can restate/override user ones when the model reads them.
func LoadInstructions(cwd string) string {
	var sections []string

	if home, err := os.UserHomeDir(); err == nil {
		if content := loadInstructionFile(filepath.Join(home, ".agentcore", "AGENTCORE.md"), nil); content != "" {
			sections = append(sections, content)
		}
		if rules := loadRulesDir(filepath.Join(home, ".agentcore", "rules")); rules != "" {
			sections = append(sections, rules)
		}
	}

	if content := loadInstructionFile(filepath.Join(cwd, ".agentcore", "AGENTCORE.md"), nil); content != "" {
		sections = append(sections, content)
	}
	if rules := loadRulesDir(filepath.Join(cwd, ".agentcore", "rules")); rules != "" {
		sections = append(sections, rules)
	}
	if content := loadInstructionFile(filepath.Join(cwd, "AGENTCORE.md"), nil); content != "" {
		sections = append(sections, content)
	}

	return strings.Join(sections, "\n\n---\n\n")
}

// loadInstructionFile reads an AGENTCORE.md file and resolves @path imports.
// The visited set prevents import cycles.
func loadInstructionFile(path string, visited map[string]bool) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	if visited == nil {
		visited = make(map[string]bool)
	}
	if visited[absPath] {
		return ""
	}
	visited[absPath] = true

	data, err := os.ReadFile(absPath)
	if err != nil {
		return ""
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return ""
	}

	return resolveImports(content, filepath.Dir(absPath), visited)
}

// resolveImports processes @path directives in AGENTCORE.md content. Each
// directive must stand alone on its own line; paths are resolved relative
// to the directory containing the file being processed.
func resolveImports(content string, baseDir string, visited map[string]bool) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if !strings.HasPrefix(trimmed, "@") || len(trimmed) <= 1 {
			result = append(result, line)
			continue
		}

		importPath := trimmed[1:]
		if !filepath.IsAbs(importPath) {
			importPath = filepath.Join(baseDir, importPath)
		}

		info, err := os.Stat(importPath)
		if err != nil {
			// Keep the directive text as-is when the target doesn't exist.
			result = append(result, line)
			continue
		}

		if info.IsDir() {
			if dirContent := loadRulesDir(importPath); dirContent != "" {
				result = append(result, dirContent)
			}
			continue
		}

		if imported := loadInstructionFile(importPath, visited); imported != "" {
			result = append(result, imported)
		}
	}

	return strings.Join(result, "\n")
}

// loadRulesDir loads all .md files from a rules directory, sorted
// alphabetically. It does not recurse into subdirectories.
func loadRulesDir(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var sections []string
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if content := strings.TrimSpace(string(data)); content != "" {
			sections = append(sections, content)
		}
	}

	return strings.Join(sections, "\n\n")
}

// Package promptbuild assembles the system prompt the executor sends with
// every turn: stable identity/behavior sections, the tool catalogue
// rendered from the live registry, and per-task environment details
// (working directory, already-read files, recently-modified files).
// Sections are split across two blocks so prompt caching (cache.go) can
// treat the stable block as a cacheable prefix.
package promptbuild

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/kestrel-dev/agentcore/internal/filetracker"
	"github.com/kestrel-dev/agentcore/internal/llm"
	"github.com/kestrel-dev/agentcore/internal/tools"
)

// Context holds everything a PromptSection may need.
type Context struct {
	Cwd       string
	Model     string
	Registry  *tools.Registry
	Tracker   *filetracker.Tracker
	Now       time.Time
	// Instructions is optional free-form user/project guidance (the
	// CLAUDE.md-equivalent loaded by internal/config), appended to the
	// project-specific block.
	Instructions string
}

// Section generates part of the system prompt. An empty return skips it.
type Section func(ctx *Context) string

// coreSections make up the stable, cache-friendly first block: identity,
// behavior rules, and the tool catalogue. None of these depend on
// per-task state.
var coreSections = []Section{
	sectionIdentity,
	sectionDoingTasks,
	sectionActionCare,
	sectionToneStyle,
	sectionToolCatalogue,
}

// taskSections make up the second, per-task block: environment details
// and file-tracker state that change every turn.
var taskSections = []Section{
	sectionEnvironment,
	sectionFileContext,
	sectionInstructions,
}

// BuildSystemPrompt renders both blocks as llm.SystemBlock values, ready
// for cache-control annotation by WithSystemPromptCaching.
func BuildSystemPrompt(ctx *Context) []llm.SystemBlock {
	var blocks []llm.SystemBlock
	if core := render(coreSections, ctx); core != "" {
		blocks = append(blocks, llm.SystemBlock{Type: "text", Text: core})
	}
	if task := render(taskSections, ctx); task != "" {
		blocks = append(blocks, llm.SystemBlock{Type: "text", Text: task})
	}
	return blocks
}

func render(sections []Section, ctx *Context) string {
	var parts []string
	for _, s := range sections {
		if text := s(ctx); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func sectionIdentity(_ *Context) string {
	return `You are an interactive agent that helps users with software engineering tasks in their terminal. Use the tools available to you to read, search, and modify the user's codebase.

IMPORTANT: Never generate or guess URLs unless the user gave them to you or they come from local files.`
}

func sectionDoingTasks(_ *Context) string {
	items := []string{
		`Don't add features, refactor code, or make improvements beyond what was asked. A bug fix doesn't need surrounding cleanup.`,
		"Don't add error handling or validation for scenarios that can't happen. Trust the guarantees the runtime and filesystem already give you.",
		"Read a file before proposing changes to it.",
		"Prefer editing an existing file over creating a new one.",
	}
	return "# Doing tasks\n" + bullets(items)
}

func sectionActionCare(_ *Context) string {
	return `# Acting with care

Local, reversible actions (reading files, running tests) need no confirmation. Destructive or hard-to-reverse actions (deleting files, force-pushing, dropping data) go through the approval gate before their side effect runs — do not try to route around it.`
}

func sectionToneStyle(_ *Context) string {
	items := []string{
		"Only one tool call per message; wait for its result before the next.",
		"Keep responses short. Reference code as path:line when useful.",
	}
	return "# Tone and style\n" + bullets(items)
}

func sectionToolCatalogue(ctx *Context) string {
	if ctx.Registry == nil {
		return ""
	}
	return RenderToolCatalogue(ctx.Registry)
}

func sectionEnvironment(ctx *Context) string {
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	items := []string{
		fmt.Sprintf("Working directory: %s", ctx.Cwd),
		fmt.Sprintf("Platform: %s", runtime.GOOS),
		fmt.Sprintf("Current time: %s", now.Format(time.RFC3339)),
	}
	if ctx.Model != "" {
		items = append(items, fmt.Sprintf("Model: %s", ctx.Model))
	}
	return "# Environment\n" + bullets(items)
}

// sectionFileContext renders the already-read and recently-modified file
// lists the file tracker has accumulated, per spec 4.F's stated use: a
// prompt augmentation so the model doesn't re-read files it already saw
// and notices files changed behind its back.
func sectionFileContext(ctx *Context) string {
	if ctx.Tracker == nil {
		return ""
	}
	var b strings.Builder

	read := sortedCopy(ctx.Tracker.GetReadFiles())
	if len(read) > 0 {
		b.WriteString("# Files already read\n")
		b.WriteString(bullets(read))
	}

	modified := sortedCopy(ctx.Tracker.TakeRecentlyModified())
	if len(modified) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("# Recently modified outside the tool loop\n")
		b.WriteString(bullets(modified))
	}

	return b.String()
}

func sectionInstructions(ctx *Context) string {
	if ctx.Instructions == "" {
		return ""
	}
	return "# Project instructions\n\n" + ctx.Instructions
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// Package skills implements skill discovery and parsing. A skill's
// trigger appears in the text ActiveSkillContent renders; this package
// registers no slash commands.
//
// Skills are markdown files with YAML frontmatter located in:
//   - ~/.agentcore/skills/ (user-level, all projects)
//   - .agentcore/skills/   (project-level)
package skills

// Skill represents a loaded skill definition.
type Skill struct {
	Name        string // skill name from frontmatter
	Description string // short description from frontmatter
	Trigger     string // slash command trigger, e.g. "/commit"
	Content     string // markdown body (instructions/prompt)
	FilePath    string // source file path for debugging
}

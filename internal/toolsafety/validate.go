// Package toolsafety implements the stateless pre-execution checks every
// tool handler runs before touching the filesystem or a subprocess:
// required-parameter assertions, path safety, and command safety.
package toolsafety

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MissingParamError names the single missing parameter that failed
// AssertRequired. Tool handlers format it into the "missing parameter"
// message they feed back to the model.
type MissingParamError struct {
	Tool  string
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("%s is missing required parameter %q", e.Tool, e.Param)
}

// AssertRequired checks that every name in names has a non-empty value in
// params. It returns the first missing parameter as a *MissingParamError,
// or nil if all are present.
func AssertRequired(tool string, params map[string]string, names ...string) error {
	for _, name := range names {
		if strings.TrimSpace(params[name]) == "" {
			return &MissingParamError{Tool: tool, Param: name}
		}
	}
	return nil
}

// deniedPathGlobs are glob patterns (doublestar syntax) for paths that are
// never safe to touch regardless of auto-approval policy. Patterns are
// matched against both the raw relative path and its cleaned form so a
// leading "./" or trailing slash can't slip past.
var deniedPathGlobs = []string{
	"/etc/**", "/etc",
	"/sys/**", "/sys",
	"/proc/**", "/proc",
	"/dev/**", "/dev",
	"/root/**", "/root",
	"**/System32/**",
	"**/.ssh/**", "**/.ssh",
	"**/.aws/**", "**/.aws",
	"**/.env", "**/.env.*",
	"**/id_rsa", "**/id_rsa.*", "**/id_ed25519", "**/id_ed25519.*",
	"**/*.pem", "**/*_secret*", "**/*secret_key*",
}

// PathDeniedError reports why CheckPath rejected a path.
type PathDeniedError struct {
	Path   string
	Reason string
}

func (e *PathDeniedError) Error() string {
	return fmt.Sprintf("access denied for %q: %s", e.Path, e.Reason)
}

// CheckPath rejects empty paths, parent-traversal segments, and a denylist
// of system directories and secret-bearing filenames. It never touches the
// filesystem — it's a pure string check so it runs identically whether or
// not the path exists.
func CheckPath(relPath string) error {
	if strings.TrimSpace(relPath) == "" {
		return &PathDeniedError{Path: relPath, Reason: "empty path"}
	}

	cleaned := strings.ReplaceAll(relPath, "\\", "/")
	for _, seg := range strings.Split(cleaned, "/") {
		if seg == ".." {
			return &PathDeniedError{Path: relPath, Reason: "parent-traversal segment"}
		}
	}

	for _, pattern := range deniedPathGlobs {
		if ok, _ := doublestar.Match(pattern, cleaned); ok {
			return &PathDeniedError{Path: relPath, Reason: "system or credential path"}
		}
		// Also match against the path with any leading "./" stripped so
		// relative mentions of these directories are caught too.
		if trimmed := strings.TrimPrefix(cleaned, "./"); trimmed != cleaned {
			if ok, _ := doublestar.Match(pattern, trimmed); ok {
				return &PathDeniedError{Path: relPath, Reason: "system or credential path"}
			}
		}
	}
	return nil
}

// CommandDeniedError reports why CheckCommand rejected a command.
type CommandDeniedError struct {
	Command string
	Pattern string
}

func (e *CommandDeniedError) Error() string {
	return fmt.Sprintf("command denied: matches destructive pattern %q", e.Pattern)
}

// deniedCommandPatterns are substrings (case-insensitive) whose presence in
// a command marks it as destructive enough to refuse regardless of
// auto-approval policy.
var deniedCommandPatterns = []string{
	"rm -rf /",
	"rm -rf ~",
	"rm -rf *",
	"mkfs",
	"mkfs.",
	"dd if=/dev/zero of=/dev/",
	"dd if=/dev/random of=/dev/",
	":(){ :|:& };:", // fork bomb
	"chmod -r 777 /",
	"chmod 777 /",
	"| sh",
	"| bash",
	"curl | sh",
	"curl | bash",
	"shutdown",
	"poweroff",
	"reboot",
	"passwd ",
	"userdel ",
	"useradd ",
	"usermod ",
}

// CheckCommand rejects a denylist of destructive shell command patterns.
// Matching is substring-based and case-insensitive, matching the spec's
// "denylist of destructive patterns" description; it is intentionally
// conservative rather than a full shell-semantics parser.
func CheckCommand(command string) error {
	lower := strings.ToLower(command)
	for _, pattern := range deniedCommandPatterns {
		if strings.Contains(lower, pattern) {
			return &CommandDeniedError{Command: command, Pattern: pattern}
		}
	}
	return nil
}

package apierrors

import "strings"

// ClassifyToolFailure turns a tool handler's error-result text into a
// typed taxonomy error, best-effort, by matching the fixed phrases the
// handlers in internal/tools and internal/toolsafety already use. It
// exists so the executor's single dispatch chokepoint (runOne) can
// classify and log every tool failure without every handler needing to
// return a typed error of its own.
func ClassifyToolFailure(tool, message string) error {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "missing required parameter"):
		return &ValidationError{Kind: MissingParameter, Tool: tool, Message: message}
	case strings.Contains(lower, "user denied permission"):
		return &SecurityError{Kind: CommandDenied, Subject: tool, Message: message}
	case strings.Contains(lower, "access denied"):
		return &SecurityError{Kind: PathDenied, Subject: tool, Message: message}
	case strings.Contains(lower, "no such file"), strings.Contains(lower, "could not read"):
		return &FileError{Kind: FileNotFound, Message: message}
	case strings.Contains(lower, "permission denied"):
		return &FileError{Kind: FilePermission, Message: message}
	case strings.Contains(lower, "could not write"):
		return &FileError{Kind: FileWrite, Message: message}
	case strings.Contains(lower, "command not found"), strings.Contains(lower, "executable file not found"):
		return &CommandError{Kind: CommandNotFound, Command: tool, Message: message}
	case strings.Contains(lower, "timed out"), strings.Contains(lower, "timeout"):
		return &CommandError{Kind: CommandTimeout, Command: tool, Message: message}
	case strings.Contains(lower, "exit status"), strings.Contains(lower, "nonzero exit"):
		return &CommandError{Kind: CommandNonZeroExit, Command: tool, Message: message}
	case strings.Contains(lower, "unknown tool"):
		return &ValidationError{Kind: InvalidArgument, Tool: tool, Message: message}
	default:
		return &BareError{Kind: Unknown, Message: message}
	}
}

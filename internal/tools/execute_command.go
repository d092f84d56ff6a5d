package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/toolsafety"
)

func init() {
	Default.Register(Tool{
		Name:        assistant.ToolExecuteCommand,
		Description: "Execute a shell command in the task's working directory.",
		RequiresApproval: func(params map[string]string) bool {
			return params["requires_approval"] != "false"
		},
		Execute: executeExecuteCommand,
	})
}

const defaultCommandTimeout = 2 * time.Minute

func executeExecuteCommand(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("execute_command", params, "command"); err != nil {
		return ErrorResponse(err.Error()), nil
	}
	command := params["command"]
	if err := toolsafety.CheckCommand(command); err != nil {
		return ErrorResponse(err.Error()), nil
	}

	timeout := defaultCommandTimeout
	if raw := params["timeout"]; raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	ctx, cancel := context.WithTimeout(tc.Context, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = tc.Cwd
	if len(tc.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range tc.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	out, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(out))

	if ctx.Err() == context.DeadlineExceeded {
		return ErrorResponse(fmt.Sprintf("command timed out after %s\noutput so far:\n%s", timeout, trimmed)), nil
	}
	if err != nil {
		return ErrorResponse(fmt.Sprintf("command exited with error: %v\noutput:\n%s", err, trimmed)), nil
	}
	if trimmed == "" {
		trimmed = "(command produced no output)"
	}
	return TextResponse(trimmed), nil
}

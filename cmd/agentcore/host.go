package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kestrel-dev/agentcore/internal/config"
	"github.com/kestrel-dev/agentcore/internal/executor"
)

var (
	styleText    = lipgloss.NewStyle()
	styleTool    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	styleCommand = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleAsk     = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// terminalHost implements executor.Host for an interactive or piped
// terminal session: Say renders events through lipgloss styles matching
// their Kind, Ask prompts on stdin, and ShouldAutoApprove consults a
// config.RuleBasedPermissionHandler before falling back to interactive
// approval.
type terminalHost struct {
	perm        *config.RuleBasedPermissionHandler
	autoApprove bool
	reader      *bufio.Reader
}

func newTerminalHost(perm *config.RuleBasedPermissionHandler, autoApprove bool) *terminalHost {
	return &terminalHost{perm: perm, autoApprove: autoApprove, reader: bufio.NewReader(os.Stdin)}
}

func (h *terminalHost) Say(kind executor.Kind, text string, partial bool) {
	if text == "" {
		return
	}
	switch kind {
	case executor.KindText:
		if !partial {
			fmt.Println(styleText.Render(text))
		} else {
			fmt.Print(text)
		}
	case executor.KindTool:
		fmt.Println(styleTool.Render("tool> " + text))
	case executor.KindCommand:
		fmt.Println(styleCommand.Render("$ " + text))
	case executor.KindCommandOutput:
		fmt.Println(text)
	case executor.KindCompletionResult:
		fmt.Println(styleDone.Render("✓ " + text))
	case executor.KindError:
		fmt.Fprintln(os.Stderr, styleError.Render("error: "+text))
	case executor.KindUserFeedback:
		fmt.Println(styleAsk.Render(text))
	case executor.KindFollowup:
		fmt.Println(styleAsk.Render("? " + text))
	case executor.KindAPIReqStarted:
		// No per-request banner in print/chat mode; left for a future TUI.
	default:
		fmt.Println(text)
	}
}

func (h *terminalHost) Ask(ctx context.Context, kind executor.Kind, text string) (executor.AskResponse, error) {
	if ctx.Err() != nil {
		return executor.AskResponse{}, ctx.Err()
	}
	fmt.Println(styleAsk.Render(text))
	fmt.Print(styleDim.Render("[y]es / [n]o / or type a reply: "))

	line, err := h.reader.ReadString('\n')
	if err != nil {
		return executor.AskResponse{Response: executor.AskNo}, nil
	}
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "y", "yes", "":
		return executor.AskResponse{Response: executor.AskYes}, nil
	case "n", "no":
		return executor.AskResponse{Response: executor.AskNo}, nil
	default:
		return executor.AskResponse{Response: executor.AskMessage, Text: line}, nil
	}
}

// ReadLine prints prompt and reads one line from the same buffered
// reader Ask uses, so interleaving interactive Ask prompts and
// between-turn user input never double-buffers stdin.
func (h *terminalHost) ReadLine(prompt string) string {
	fmt.Print(prompt)
	line, err := h.reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func (h *terminalHost) ShouldAutoApprove(toolName string) bool {
	if h.autoApprove {
		return true
	}
	if h.perm == nil {
		return false
	}
	if ctx := h.perm.GetPermissionContext(); ctx != nil {
		switch ctx.GetMode() {
		case config.ModeBypassPermissions, config.ModeDontAsk:
			return true
		}
	}
	return h.perm.CheckPermission(toolName, nil).Behavior == config.BehaviorAllow
}

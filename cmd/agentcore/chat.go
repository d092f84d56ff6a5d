package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kestrel-dev/agentcore/internal/executor"
	"github.com/kestrel-dev/agentcore/internal/session"
	"github.com/kestrel-dev/agentcore/internal/tools"
)

func newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a message to the agent and stream its reply",
		Args:  cobra.ArbitraryArgs,
		RunE:  runChat,
	}
	return cmd
}

// runChat is also the root command's default action: `agentcore <msg>`
// behaves exactly like `agentcore chat <msg>`, matching spec §6's
// illustrative `chat <msg> [--session id] [--tools] [--auto-approve]`.
func runChat(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	toolsEnabled, _ := cmd.Flags().GetBool("tools")
	parallelTools, _ := cmd.Flags().GetBool("parallel-tools")
	sessionID, _ := cmd.Flags().GetString("session")

	if !toolsEnabled {
		// An empty registry still round-trips through the dispatcher's
		// unknown-tool path (§4.C): every ToolUse block comes back as a
		// descriptive error result instead of running anything.
		rt.registry = tools.NewRegistry()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	conv := executor.NewConversation()
	var sess *session.Session
	if rt.store != nil && sessionID != "" {
		if loaded, loadErr := rt.store.Load(sessionID); loadErr == nil {
			conv = session.ToConversation(loaded)
			sess = loaded
		}
	}
	if sess == nil {
		sess = &session.Session{Metadata: session.Metadata{
			ID:    firstNonEmpty(sessionID, session.GenerateID()),
			Model: rt.client.Model(),
			CWD:   rt.cwd,
		}}
	}

	_ = rt.hooksRunner.RunSessionStart(ctx)
	defer func() { _ = rt.hooksRunner.RunStop(ctx) }()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	message := strings.Join(args, " ")
	if message == "" && !interactive {
		data, readErr := io.ReadAll(os.Stdin)
		if readErr == nil {
			message = strings.TrimSpace(string(data))
		}
	}
	if message == "" && interactive {
		message = rt.host.ReadLine("> ")
	}

	exec := executor.New(rt.executorConfig(parallelTools))

	for message != "" {
		res, runErr := exec.Run(ctx, conv, message)
		if runErr != nil {
			return fmt.Errorf("running turn: %w", runErr)
		}
		rt.saveSession(sess, conv, nil)

		if res.Aborted {
			fmt.Fprintln(os.Stderr, "aborted")
			return nil
		}
		if res.Completed {
			return nil
		}
		if !interactive {
			return nil
		}
		message = rt.host.ReadLine("> ")
	}
	return nil
}

func (rt *runtime) saveSession(sess *session.Session, conv *executor.Conversation, task *executor.TaskState) {
	if rt.store == nil {
		return
	}
	history, ctxUpdates, taskMeta := session.FromConversationAndTask(conv, task)
	sess.History = history
	sess.Context = ctxUpdates
	sess.Task = taskMeta
	if err := rt.store.Save(sess); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save session: %v\n", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Command agentcore is the CLI entry point for the runtime core: the
// illustrative surface of spec §6 (chat, sessions, history, read,
// config), wired with cobra the way the teacher's own cmd/claude wired
// flag-based subcommands, but rebuilt against the new package set since
// nearly every import the teacher's main.go used (conversation, api,
// auth, tui) was itself replaced.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "agentcore [message]",
		Short:   "Interactive AI coding agent runtime",
		Version: version,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, args)
		},
	}

	root.PersistentFlags().String("model", "", "Model to use (opus, sonnet, haiku, or a full model ID)")
	root.PersistentFlags().String("session", "", "Session ID to resume or create")
	root.PersistentFlags().Bool("tools", true, "Enable tool dispatch (disable for a plain chat turn)")
	root.PersistentFlags().Bool("auto-approve", false, "Auto-approve every tool call without prompting")
	root.PersistentFlags().String("permission-mode", "", "default, plan, acceptEdits, bypassPermissions, dontAsk")
	root.PersistentFlags().Bool("parallel-tools", false, "Enable the stratified concurrent tool dispatcher")

	root.AddCommand(
		newChatCommand(),
		newSessionsCommand(),
		newHistoryCommand(),
		newReadCommand(),
		newConfigCommand(),
	)
	return root
}

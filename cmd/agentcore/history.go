package main

import (
	"fmt"

	"github.com/spf13/cobra"

	ctxmgr "github.com/kestrel-dev/agentcore/internal/context"
)

// newHistoryCommand implements spec §6's `history [id]`: with no id it
// prints the most recently updated session's transcript, matching
// `--continue`'s resume target in the teacher's own cmd/claude.
func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history [id]",
		Short: "Print a session's message transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := currentStore()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				s, err := store.Load(args[0])
				if err != nil {
					return fmt.Errorf("loading session %s: %w", args[0], err)
				}
				printHistory(s.History)
				return nil
			}
			s, err := store.MostRecent()
			if err != nil {
				return fmt.Errorf("no sessions found: %w", err)
			}
			printHistory(s.History)
			return nil
		},
	}
}

func printHistory(history []ctxmgr.Message) {
	for i, msg := range history {
		fmt.Printf("--- [%d] %s ---\n", i, msg.Role)
		for _, block := range msg.Content {
			switch block.Kind {
			case ctxmgr.BlockText:
				fmt.Println(block.Text)
			case ctxmgr.BlockToolUse:
				fmt.Printf("[tool call: %s]\n", block.Name)
			case ctxmgr.BlockToolResult:
				fmt.Printf("[tool result]\n%s\n", block.Text)
			case ctxmgr.BlockImage:
				fmt.Println("[image]")
			}
		}
	}
}

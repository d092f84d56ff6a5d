package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrel-dev/agentcore/internal/session"
)

// newSessionsCommand implements spec §6's `sessions list/show/delete`,
// grounded directly on internal/session.Store's List/Load/Save surface.
func newSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List, show, or delete saved sessions",
	}
	cmd.AddCommand(newSessionsListCommand(), newSessionsShowCommand(), newSessionsDeleteCommand())
	return cmd
}

func newSessionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions saved for the current working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := currentStore()
			if err != nil {
				return err
			}
			sessions, err := store.List()
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Println("no saved sessions")
				return nil
			}
			for _, sess := range sessions {
				fmt.Printf("%s\t%s\t%s\tupdated %s\n",
					sess.Metadata.ID, sess.Metadata.Model, sess.Metadata.CWD,
					sess.Metadata.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newSessionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a session's metadata and task counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := currentStore()
			if err != nil {
				return err
			}
			sess, err := store.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading session %s: %w", args[0], err)
			}
			fmt.Printf("id:         %s\n", sess.Metadata.ID)
			fmt.Printf("model:      %s\n", sess.Metadata.Model)
			fmt.Printf("cwd:        %s\n", sess.Metadata.CWD)
			fmt.Printf("created:    %s\n", sess.Metadata.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("updated:    %s\n", sess.Metadata.UpdatedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("messages:   %d\n", len(sess.History))
			fmt.Printf("mistakes:   %d\n", sess.Task.ConsecutiveMistakeCount)
			fmt.Printf("api calls:  %d\n", sess.Task.APIRequestCount)
			return nil
		},
	}
}

func newSessionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := currentStore()
			if err != nil {
				return err
			}
			return store.Delete(args[0])
		},
	}
}

func currentStore() (*session.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return session.NewStore(cwd)
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kestrel-dev/agentcore/internal/toolsafety"
)

// newReadCommand implements spec §6's `read <file>`: a thin CLI wrapper
// around the same path-safety check the read_file tool applies, so a
// denylisted path (e.g. a ".." traversal, a system directory or a
// credential file) is refused
// the same way it would be if the agent tried to read it mid-turn.
func newReadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read <file>",
		Short: "Print a file's contents, enforcing the same path safety rules as the read_file tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := toolsafety.CheckPath(path); err != nil {
				return err
			}
			full := path
			if !filepath.IsAbs(full) {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
				full = filepath.Join(cwd, path)
			}
			data, err := os.ReadFile(full)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

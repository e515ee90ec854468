package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/searchd/internal/daemon"
	"github.com/Aman-CERP/searchd/internal/output"
	"github.com/Aman-CERP/searchd/internal/task"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Create versioned, portable dumps (component H)",
	}
	cmd.AddCommand(newDumpCreateCmd())
	return cmd
}

func newDumpCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a dump creation task against the running daemon",
		Long: `create registers a dump_creation task: documents and settings
rendered to JSON rather than bbolt's binary format, so the result can
be read by a later engine version through its forward-only migrator
chain, unlike a snapshot's private binary copy.

Like snapshot create, this goes through the daemon's scheduler rather
than opening storage directly, since the scheduler already holds every
index's environment open.`,
		RunE: func(c *cobra.Command, args []string) error {
			client, err := daemonClient()
			if err != nil {
				return err
			}
			t, err := client.RegisterTask(c.Context(), daemon.TaskRegisterParams{
				Content: task.Content{Kind: task.ContentDumpCreation},
			})
			if err != nil {
				return err
			}
			output.New(c.OutOrStdout()).Success(fmt.Sprintf("registered task %d: dump creation", t.ID))
			return nil
		},
	}
	return cmd
}

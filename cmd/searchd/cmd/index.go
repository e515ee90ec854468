package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/searchd/internal/daemon"
	"github.com/Aman-CERP/searchd/internal/output"
	"github.com/Aman-CERP/searchd/internal/task"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Create, update, delete, and inspect indexes",
	}
	cmd.AddCommand(newIndexCreateCmd())
	cmd.AddCommand(newIndexDeleteCmd())
	cmd.AddCommand(newIndexStatsCmd())
	return cmd
}

func newIndexCreateCmd() *cobra.Command {
	var primaryKey string
	cmd := &cobra.Command{
		Use:   "create <uid>",
		Short: "Register an index creation task (component F/G)",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			client, err := daemonClient()
			if err != nil {
				return err
			}
			t, err := client.RegisterTask(c.Context(), daemon.TaskRegisterParams{
				IndexUID: args[0],
				Content: task.Content{
					Kind:       task.ContentIndexCreation,
					PrimaryKey: primaryKey,
				},
			})
			if err != nil {
				return err
			}
			output.New(c.OutOrStdout()).Success(fmt.Sprintf("registered task %d: create index %q", t.ID, args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&primaryKey, "primary-key", "", "primary key field name")
	return cmd
}

func newIndexDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <uid>",
		Short: "Register an index deletion task",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			client, err := daemonClient()
			if err != nil {
				return err
			}
			t, err := client.RegisterTask(c.Context(), daemon.TaskRegisterParams{
				IndexUID: args[0],
				Content:  task.Content{Kind: task.ContentIndexDeletion},
			})
			if err != nil {
				return err
			}
			output.New(c.OutOrStdout()).Success(fmt.Sprintf("registered task %d: delete index %q", t.ID, args[0]))
			return nil
		},
	}
	return cmd
}

func newIndexStatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats <uid>",
		Short: "Report one index's document count",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			client, err := daemonClient()
			if err != nil {
				return err
			}
			stats, err := client.IndexStats(c.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			w := output.New(c.OutOrStdout())
			w.Statusf("•", "%s: %d documents", stats.IndexUID, stats.DocumentCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/searchd/internal/daemon"
	"github.com/Aman-CERP/searchd/internal/output"
	"github.com/Aman-CERP/searchd/internal/task"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect and cancel tasks (component F)",
	}
	cmd.AddCommand(newTaskGetCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskCancelCmd())
	return cmd
}

// daemonClient builds a daemon.Client from the resolved configuration.
func daemonClient() (*daemon.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return daemon.NewClient(daemon.Config{
		SocketPath: cfg.Daemon.SocketPath,
		Timeout:    cfg.Daemon.TimeoutDuration(),
	}), nil
}

func newTaskGetCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get one task by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q: %w", args[0], err)
			}
			client, err := daemonClient()
			if err != nil {
				return err
			}
			t, err := client.GetTask(c.Context(), task.ID(id))
			if err != nil {
				return err
			}
			return printTask(c, t, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var (
		indexUID string
		limit    int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(c *cobra.Command, args []string) error {
			client, err := daemonClient()
			if err != nil {
				return err
			}
			tasks, err := client.ListTasks(c.Context(), daemon.TaskListParams{
				IndexUID: indexUID,
				Limit:    limit,
			})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}
			w := output.New(c.OutOrStdout())
			for _, t := range tasks {
				w.Statusf("•", "task %d  index=%s  kind=%s  status=%s", t.ID, t.IndexUID, t.Content.Kind, t.Status())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&indexUID, "index", "", "filter by index uid")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum tasks to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newTaskCancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a task that has not yet executed",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q: %w", args[0], err)
			}
			client, err := daemonClient()
			if err != nil {
				return err
			}
			// by is set to the same id: the CLI cancels on the
			// operator's behalf, not on behalf of another task.
			t, err := client.CancelTask(c.Context(), task.ID(id), task.ID(id))
			if err != nil {
				return err
			}
			w := output.New(c.OutOrStdout())
			w.Success(fmt.Sprintf("task %d canceled", t.ID))
			return nil
		},
	}
	return cmd
}

func printTask(c *cobra.Command, t *task.Task, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(c.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	}
	w := output.New(c.OutOrStdout())
	w.Statusf("•", "task %d", t.ID)
	w.Statusf(" ", "index:  %s", t.IndexUID)
	w.Statusf(" ", "kind:   %s", t.Content.Kind)
	w.Statusf(" ", "status: %s", t.Status())
	return nil
}

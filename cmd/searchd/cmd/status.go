package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/searchd/internal/output"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether the daemon is running and its pending backlog",
		RunE: func(c *cobra.Command, args []string) error {
			client, err := daemonClient()
			if err != nil {
				return err
			}
			if !client.IsRunning() {
				if asJSON {
					enc := json.NewEncoder(c.OutOrStdout())
					return enc.Encode(map[string]any{"running": false})
				}
				output.New(c.OutOrStdout()).Warning("daemon is not running")
				return nil
			}

			status, err := client.Status(c.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}

			w := output.New(c.OutOrStdout())
			w.Success("daemon is running")
			w.Statusf(" ", "pid:           %d", status.PID)
			w.Statusf(" ", "uptime:        %s", status.Uptime)
			w.Statusf(" ", "pending tasks: %d", status.PendingTasks)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

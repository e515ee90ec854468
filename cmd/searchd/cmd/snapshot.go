package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/searchd/internal/daemon"
	"github.com/Aman-CERP/searchd/internal/output"
	"github.com/Aman-CERP/searchd/internal/snapshot"
	"github.com/Aman-CERP/searchd/internal/task"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Create and restore live snapshots (component H)",
	}
	cmd.AddCommand(newSnapshotCreateCmd())
	cmd.AddCommand(newSnapshotRestoreCmd())
	return cmd
}

func newSnapshotCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a snapshot creation task against the running daemon",
		Long: `create registers a snapshot_creation task, which the scheduler
executes on its single-writer loop the same as any other batch: only
one process may hold an index's storage environment at a time, so a
snapshot is always taken by the daemon that already has every
environment open, never by a separate CLI process.

The resulting archive's path is logged by the daemon, not returned in
the task record; check the daemon log or list the configured snapshot
directory once the task reports succeeded.`,
		RunE: func(c *cobra.Command, args []string) error {
			client, err := daemonClient()
			if err != nil {
				return err
			}
			t, err := client.RegisterTask(c.Context(), daemon.TaskRegisterParams{
				Content: task.Content{Kind: task.ContentSnapshotCreation},
			})
			if err != nil {
				return err
			}
			output.New(c.OutOrStdout()).Success(fmt.Sprintf("registered task %d: snapshot creation", t.ID))
			return nil
		},
	}
	return cmd
}

func newSnapshotRestoreCmd() *cobra.Command {
	var (
		ignoreIfDataDirExists bool
		ignoreMissingSnapshot bool
	)
	cmd := &cobra.Command{
		Use:   "restore <snapshot-path>",
		Short: "Restore a data directory from a snapshot archive (daemon must be stopped)",
		Long: `restore extracts a snapshot archive directly into the configured
data directory. It must run while no daemon holds that data directory's
storage environments open — this is the one operation the CLI performs
without going through the daemon's socket, matching the cold,
pre-daemon restore-on-boot step 'searchd serve' itself runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := daemonClient()
			if err == nil && client.IsRunning() {
				return fmt.Errorf("refusing to restore: the daemon appears to be running against %s; stop it first", cfg.DataDir)
			}
			if err := snapshot.Restore(snapshot.RestoreOptions{
				DataDir:               cfg.DataDir,
				SnapshotPath:          args[0],
				IgnoreIfDataDirExists: ignoreIfDataDirExists,
				IgnoreMissingSnapshot: ignoreMissingSnapshot,
			}); err != nil {
				return err
			}
			output.New(c.OutOrStdout()).Success(fmt.Sprintf("restored %s into %s", args[0], cfg.DataDir))
			return nil
		},
	}
	cmd.Flags().BoolVar(&ignoreIfDataDirExists, "ignore-if-data-dir-exists", false, "no-op instead of erroring if the data directory already holds an environment")
	cmd.Flags().BoolVar(&ignoreMissingSnapshot, "ignore-missing-snapshot", false, "no-op instead of erroring if the snapshot archive is missing")
	return cmd
}

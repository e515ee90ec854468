package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/searchd/configs"
	"github.com/Aman-CERP/searchd/internal/output"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an instance configuration file in the current directory",
		Long: `Create .searchd.yaml in the current directory.

The instance config describes a single searchd instance: where its
data directory lives, how its indexing pipeline is bounded, how often
its scheduler polls for pending tasks, and its snapshot/dump schedule.
Run this once per directory you intend to 'searchd serve' from.

Machine-wide settings (daemon socket/PID paths, logging destination)
live in the separate user config instead (see 'searchd config init').`,
		Example: `  # Create .searchd.yaml in the current directory
  searchd init

  # Overwrite an existing .searchd.yaml
  searchd init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing instance configuration")

	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	yamlPath := filepath.Join(cwd, ".searchd.yaml")
	ymlPath := filepath.Join(cwd, ".searchd.yml")

	if !force {
		if _, err := os.Stat(yamlPath); err == nil {
			out.Warning("Instance configuration already exists")
			out.Statusf("📁", "Location: %s", yamlPath)
			out.Status("💡", "Use --force to overwrite")
			return nil
		}
		if _, err := os.Stat(ymlPath); err == nil {
			out.Warning("Instance configuration already exists")
			out.Statusf("📁", "Location: %s", ymlPath)
			out.Status("💡", "Use --force to overwrite")
			return nil
		}
	}

	if err := os.WriteFile(yamlPath, []byte(configs.InstanceConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write .searchd.yaml: %w", err)
	}

	out.Success("Created instance configuration")
	out.Statusf("📁", "Location: %s", yamlPath)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Edit data_dir and other settings to taste")
	out.Status("", "  2. Run 'searchd serve' from this directory")
	out.Status("", "  3. Run 'searchd doctor' to verify the instance is healthy")

	return nil
}

// Package cmd provides the CLI commands for searchd.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/searchd/internal/config"
	"github.com/Aman-CERP/searchd/internal/logging"
	"github.com/Aman-CERP/searchd/pkg/version"
)

// dataDirFlag holds the --data-dir override shared by every subcommand
// that needs to locate the engine's data directory.
var dataDirFlag string

// debugMode enables debug logging to the configured log file for the
// duration of one invocation.
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the searchd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searchd",
		Short: "Embeddable full-text search engine daemon",
		Long: `searchd is a local-first, embeddable full-text search engine.

It stores every request as a durable task (component F), batches and
applies tasks from a single scheduler goroutine (component G), and
serves reads and writes over a unix socket and an MCP stdio transport.

Run 'searchd serve' to start the daemon, then use the other
subcommands — or an MCP-capable client — against it.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("searchd version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Engine data directory (defaults to config/env resolution)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to the configured log file")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newDocumentCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newSnapshotCmd())
	cmd.AddCommand(newDumpCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// startLogging enables debug logging when --debug is set.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// loadConfig resolves the effective configuration for the current
// invocation, honoring --data-dir when set.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, err
	}

	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}

	return cfg, nil
}

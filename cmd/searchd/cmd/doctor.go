package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/searchd/internal/daemon"
	"github.com/Aman-CERP/searchd/internal/diagnostics"
)

func newDoctorCmd() *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check instance health and diagnose issues",
		Long: `Run diagnostics to verify a searchd instance is healthy.

Checks:
  - Instance configuration (.searchd.yaml) present
  - Data directory exists and is writable
  - Disk space (100MB minimum)
  - Daemon reachability over its unix socket
  - PID file consistency

Use --verbose for detailed diagnostic information.
Use --json for machine-readable output.`,
		Example: `  # Run diagnostics
  searchd doctor

  # Verbose output with details
  searchd doctor --verbose

  # JSON output for scripting
  searchd doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, verbose, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runDoctor(cmd *cobra.Command, verbose, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := daemonClient()
	if err != nil {
		return err
	}

	in := diagnostics.Inputs{
		DataDir:    cfg.DataDir,
		SocketPath: cfg.Daemon.SocketPath,
		PIDPath:    cfg.Daemon.PIDPath,
	}

	if _, err := os.Stat(filepath.Join(cwdOrEmpty(), ".searchd.yaml")); err == nil {
		in.InstanceConfig = filepath.Join(cwdOrEmpty(), ".searchd.yaml")
	} else if _, err := os.Stat(filepath.Join(cwdOrEmpty(), ".searchd.yml")); err == nil {
		in.InstanceConfig = filepath.Join(cwdOrEmpty(), ".searchd.yml")
	}

	in.DaemonRunning = client.IsRunning()
	if pid, err := daemon.NewPIDFile(cfg.Daemon.PIDPath).Read(); err == nil {
		in.DaemonPID = pid
	}

	checker := diagnostics.New(
		diagnostics.WithVerbose(verbose),
		diagnostics.WithOutput(cmd.OutOrStdout()),
	)

	results := checker.RunAll(in)

	if jsonOutput {
		return outputDoctorJSON(cmd, checker, results)
	}

	checker.PrintResults(results)

	if checker.HasCriticalFailures(results) {
		return &doctorError{message: "instance health check failed"}
	}

	return nil
}

func cwdOrEmpty() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return cwd
}

// doctorError is a custom error for doctor command failures.
type doctorError struct {
	message string
}

func (e *doctorError) Error() string {
	return e.message
}

type doctorJSONOutput struct {
	Status string                  `json:"status"`
	Checks []doctorJSONCheckResult `json:"checks"`
}

type doctorJSONCheckResult struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Required bool   `json:"required"`
	Details  string `json:"details,omitempty"`
}

func outputDoctorJSON(cmd *cobra.Command, checker *diagnostics.Checker, results []diagnostics.CheckResult) error {
	out := doctorJSONOutput{
		Status: checker.SummaryStatus(results),
		Checks: make([]doctorJSONCheckResult, len(results)),
	}

	for i, r := range results {
		out.Checks[i] = doctorJSONCheckResult{
			Name:     r.Name,
			Status:   r.Status.String(),
			Message:  r.Message,
			Required: r.Required,
			Details:  r.Details,
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/searchd/internal/config"
	"github.com/Aman-CERP/searchd/internal/daemon"
	"github.com/Aman-CERP/searchd/internal/mcp"
	"github.com/Aman-CERP/searchd/internal/scheduler"
	"github.com/Aman-CERP/searchd/internal/snapshot"
	"github.com/Aman-CERP/searchd/internal/task"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func newServeCmd() *cobra.Command {
	var noMCP bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon: scheduler, unix socket, and MCP stdio server",
		Long: `serve restores from the latest snapshot if configured (a cold,
pre-daemon step), opens the task store and
index environments, starts the scheduler's single-writer batch loop, and
exposes it over a unix socket (for the other searchd subcommands) and,
unless --no-mcp is set, an MCP server over stdio.

It runs until interrupted (SIGINT/SIGTERM), then drains in-flight work
up to daemon.shutdown_grace_period before exiting.`,
		RunE: func(c *cobra.Command, args []string) error {
			return runServe(c.Context(), !noMCP)
		},
	}

	cmd.Flags().BoolVar(&noMCP, "no-mcp", false, "disable the MCP stdio server even if daemon.mcp_enabled is true")
	return cmd
}

func runServe(ctx context.Context, mcpRequested bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Snapshot.Enabled || cfg.Snapshot.Dir != "" {
		latest := latestSnapshotPath(cfg.Snapshot.Dir)
		if latest != "" || !cfg.Snapshot.IgnoreMissingSnapshot {
			restoreErr := snapshot.Restore(snapshot.RestoreOptions{
				DataDir:               cfg.DataDir,
				SnapshotPath:          latest,
				IgnoreIfDataDirExists: cfg.Snapshot.IgnoreIfDataDirExists,
				IgnoreMissingSnapshot: cfg.Snapshot.IgnoreMissingSnapshot,
			})
			if restoreErr != nil {
				return fmt.Errorf("restore on boot: %w", restoreErr)
			}
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	payloadDir := filepath.Join(cfg.DataDir, "payloads")
	if err := os.MkdirAll(payloadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create payload directory: %w", err)
	}

	tasks, err := task.Open(filepath.Join(cfg.DataDir, "tasks.db"))
	if err != nil {
		return fmt.Errorf("failed to open task store: %w", err)
	}
	defer tasks.Close()

	indexes := scheduler.NewIndexManager(cfg.DataDir)
	defer indexes.CloseAll()

	sched := scheduler.New(tasks, indexes, payloadDir, cfg.Indexing.ExtractionCacheCapacity)
	sched.IdleInterval = cfg.Scheduler.Duration()

	instanceName := filepath.Base(cfg.DataDir)
	sched.ConfigureSnapshot(cfg.DataDir, cfg.Snapshot.Dir, cfg.Dump.Dir, instanceName)

	schedDone := make(chan error, 1)
	go func() { schedDone <- sched.Run(ctx) }()

	daemonCfg := daemon.Config{
		SocketPath:          cfg.Daemon.SocketPath,
		PIDPath:             cfg.Daemon.PIDPath,
		Timeout:             cfg.Daemon.TimeoutDuration(),
		ShutdownGracePeriod: cfg.Daemon.ShutdownGraceDuration(),
	}
	if err := daemonCfg.EnsureDir(); err != nil {
		return err
	}

	pidFile := daemon.NewPIDFile(daemonCfg.PIDPath)
	if err := pidFile.Write(); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	defer pidFile.Remove()

	handler := daemon.NewHandler(tasks, indexes)
	server := daemon.NewServer(daemonCfg.SocketPath, handler)

	serverDone := make(chan error, 1)
	go func() { serverDone <- server.ListenAndServe(ctx) }()

	var mcpDone chan error
	if mcpRequested && cfg.Daemon.MCPEnabled {
		mcpSrv := mcp.NewServer(tasks, indexes, payloadDir)
		mcpDone = make(chan error, 1)
		go func() {
			mcpDone <- mcpSrv.MCPServer().Run(ctx, &sdkmcp.StdioTransport{})
		}()
	}

	slog.Info("searchd serving",
		slog.String("data_dir", cfg.DataDir),
		slog.String("socket", daemonCfg.SocketPath),
		slog.Bool("mcp_enabled", mcpDone != nil),
	)

	<-ctx.Done()
	slog.Info("shutting down")

	_ = server.Close()
	<-schedDone
	<-serverDone
	if mcpDone != nil {
		<-mcpDone
	}

	return nil
}

// latestSnapshotPath finds the most recently modified *.snapshot file
// in dir, or "" if dir doesn't exist or holds none.
func latestSnapshotPath(dir string) string {
	if dir == "" {
		return ""
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestMod int64
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".snapshot" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().Unix(); best == "" || mod > bestMod {
			best = filepath.Join(dir, e.Name())
			bestMod = mod
		}
	}
	return best
}

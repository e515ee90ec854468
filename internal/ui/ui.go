// Package ui provides terminal UI components for rendering scheduler
// batch progress and index status.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage represents a phase of batch execution, mirroring the step names
// scheduler.Progress publishes (see internal/scheduler/progress.go) plus
// the queued/complete bookends a CLI observer needs around them.
type Stage int

const (
	// StageQueued is the waiting-for-admission phase, before a batch has
	// been formed from the pending backlog.
	StageQueued Stage = iota
	// StageBatched is the brief window between batch formation and the
	// first task reaching task.EventProcessing.
	StageBatched
	// StageProcessing covers the scheduler's "processing" step: writing
	// Batched/Processing events and expanding tasks into document changes.
	StageProcessing
	// StageIndexing covers the "indexing" step: running the indexing
	// pipeline against the accumulated document changes.
	StageIndexing
	// StageComplete indicates the batch reached a terminal state.
	StageComplete
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "Queued"
	case StageBatched:
		return "Batched"
	case StageProcessing:
		return "Processing"
	case StageIndexing:
		return "Indexing"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Icon returns the short stage icon for plain text output.
func (s Stage) Icon() string {
	switch s {
	case StageQueued:
		return "QUEUE"
	case StageBatched:
		return "BATCH"
	case StageProcessing:
		return "PROC"
	case StageIndexing:
		return "INDEX"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// ProgressEvent represents a progress update, shaped after
// scheduler.BatchProgress (BatchID, IndexUID, Step, Current, Total) plus
// the Stage/Message a renderer needs to pick a display mode.
type ProgressEvent struct {
	Stage    Stage
	Current  int
	Total    int
	BatchID  uint64
	IndexUID string
	Message  string
}

// ErrorEvent represents an error encountered while executing a batch.
type ErrorEvent struct {
	IndexUID string
	TaskID   uint64
	Err      error
	IsWarn   bool
}

// StageTimings tracks duration for each batch-execution phase.
type StageTimings struct {
	Batched    time.Duration // Batch formation to first task Processing
	Processing time.Duration // Event writes + task expansion into changes
	Indexing   time.Duration // Indexing pipeline run
}

// CompletionStats contains final statistics for a completed batch (or a
// run of batches, when accumulated by a caller across ticks).
type CompletionStats struct {
	Batches   int
	Documents uint64 // Documents indexed or deleted
	Duration  time.Duration
	Errors    int
	Warnings  int
	Stages    StageTimings
}

// Renderer defines the interface for progress display.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// UpdateProgress updates progress display.
	UpdateProgress(event ProgressEvent)

	// AddError adds an error to display.
	AddError(event ErrorEvent)

	// Complete marks rendering as complete with summary.
	Complete(stats CompletionStats)

	// Stop stops the renderer and cleans up.
	Stop() error
}

// Config configures the UI renderer.
type Config struct {
	Output       io.Writer
	ForcePlain   bool
	NoColor      bool
	SpinnerStyle string
	DataDir      string // Daemon data directory to display in header
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithSpinnerStyle sets the spinner style.
func WithSpinnerStyle(style string) ConfigOption {
	return func(c *Config) {
		c.SpinnerStyle = style
	}
}

// WithDataDir sets the daemon data directory to display in header.
func WithDataDir(dir string) ConfigOption {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Output:       output,
		ForcePlain:   false,
		NoColor:      false,
		SpinnerStyle: "dots",
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// NewRenderer creates an appropriate renderer based on config and environment.
// It returns a TUI renderer for interactive terminals, and a plain text
// renderer for CI environments, pipes, or when --no-tui is specified.
func NewRenderer(cfg Config) Renderer {
	// Force plain mode if requested
	if cfg.ForcePlain {
		return NewPlainRenderer(cfg)
	}

	// Use plain mode for non-TTY outputs
	if !IsTTY(cfg.Output) {
		return NewPlainRenderer(cfg)
	}

	// Use plain mode in CI environments
	if DetectCI() {
		return NewPlainRenderer(cfg)
	}

	// Try TUI mode, fall back to plain on failure
	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}

	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	// Check if it's a file that's a terminal
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

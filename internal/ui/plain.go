package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// PlainRenderer outputs plain text progress (for CI/pipes).
type PlainRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
	stage   Stage
	errors  []ErrorEvent
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:     cfg.Output,
		noColor: cfg.NoColor,
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stage = event.Stage

	// Format: [STAGE] current/total - message or index uid
	var msg string
	if event.Message != "" {
		msg = event.Message
	} else if event.IndexUID != "" {
		msg = event.IndexUID
	}

	if event.Total > 0 {
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d - %s\n", event.Stage.Icon(), event.Current, event.Total, msg)
	} else if msg != "" {
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), msg)
	}
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, event)

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
	}

	if event.IndexUID != "" {
		_, _ = fmt.Fprintf(r.out, "%s: %s: %v\n", prefix, event.IndexUID, event.Err)
	} else {
		_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
	}
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "Complete: %d batches, %d documents in %s",
		stats.Batches, stats.Documents, stats.Duration.Round(100*millisecond))

	if stats.Errors > 0 || stats.Warnings > 0 {
		_, _ = fmt.Fprintf(r.out, " (%d errors, %d warnings)", stats.Errors, stats.Warnings)
	}

	_, _ = fmt.Fprintln(r.out)

	// Show detailed stage breakdown if available
	if stats.Stages.Processing > 0 || stats.Stages.Indexing > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, "Stage Breakdown:")
		if stats.Stages.Batched > 0 {
			_, _ = fmt.Fprintf(r.out, "  Batched:    %s (admission)\n", stats.Stages.Batched.Round(100*millisecond))
		}
		_, _ = fmt.Fprintf(r.out, "  Processing: %s (event writes + expansion)\n", stats.Stages.Processing.Round(100*millisecond))
		if stats.Stages.Indexing > 0 && stats.Documents > 0 {
			docsPerSec := float64(stats.Documents) / stats.Stages.Indexing.Seconds()
			_, _ = fmt.Fprintf(r.out, "  Indexing:   %s (%d documents @ %.1f/sec)\n",
				stats.Stages.Indexing.Round(100*millisecond), stats.Documents, docsPerSec)
		}
	}
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

const millisecond = 1000000 // nanoseconds

package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// StatusInfo contains index health information.
type StatusInfo struct {
	// Index stats
	IndexUID      string    `json:"index_uid"`
	DocumentCount int       `json:"document_count"`
	FieldCount    int       `json:"field_count"`
	LastModified  time.Time `json:"last_modified"`

	// Storage size (bytes), the index environment's bbolt file
	StoreSize int64 `json:"store_size"`

	// Component status
	DictionaryTrained bool   `json:"dictionary_trained"`
	SchedulerStatus   string `json:"scheduler_status"` // "running", "stopped", "n/a"
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out     io.Writer
	styles  Styles
	noColor bool
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:     out,
		styles:  GetStyles(noColor),
		noColor: noColor,
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	// Header
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Index Status: "+info.IndexUID))

	// Index stats
	_, _ = fmt.Fprintf(r.out, "  Documents:     %d\n", info.DocumentCount)
	_, _ = fmt.Fprintf(r.out, "  Fields:        %d\n", info.FieldCount)
	if !info.LastModified.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Last modified: %s\n", formatTime(info.LastModified))
	}
	_, _ = fmt.Fprintln(r.out)

	// Storage size
	_, _ = fmt.Fprintln(r.out, "  Storage:")
	_, _ = fmt.Fprintf(r.out, "    Store: %s\n", FormatBytes(info.StoreSize))
	_, _ = fmt.Fprintln(r.out)

	// Codec status
	_, _ = fmt.Fprintln(r.out, "  Codec:")
	_, _ = fmt.Fprintf(r.out, "    Dictionary trained: %s\n", r.renderBool(info.DictionaryTrained))
	_, _ = fmt.Fprintln(r.out)

	// Scheduler status
	if info.SchedulerStatus != "" && info.SchedulerStatus != "n/a" {
		_, _ = fmt.Fprintf(r.out, "  Scheduler: %s\n", r.renderStatus(info.SchedulerStatus))
	}

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// renderBool formats a boolean as a colored yes/no.
func (r *StatusRenderer) renderBool(b bool) string {
	if b {
		return r.styles.Success.Render("yes")
	}
	return r.styles.Dim.Render("no")
}

// renderStatus formats a status string with color.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "ready", "running":
		return r.styles.Success.Render(status)
	case "offline", "stopped":
		return r.styles.Warning.Render(status)
	case "error":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// formatTime formats a time for display.
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

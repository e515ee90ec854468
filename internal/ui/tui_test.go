package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTUIRenderer_ReturnsNilForNonTTY(t *testing.T) {
	// Given: a non-TTY buffer
	buf := &bytes.Buffer{}
	cfg := NewConfig(buf)

	// When: creating TUI renderer
	r, err := NewTUIRenderer(cfg)

	// Then: returns error (can't create TUI for non-TTY)
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestBatchModel_InitialView(t *testing.T) {
	// Given: a new batch model with properly initialized tracker
	tracker := NewProgressTracker()
	model := newBatchModel(tracker, "")

	// When: getting initial view
	view := model.View()

	// Then: view contains stage indicators
	assert.Contains(t, view, "Queued")
}

func TestBatchModel_StageIndicators(t *testing.T) {
	// Given: a model at different stages
	tracker := NewProgressTracker()
	model := newBatchModel(tracker, "")

	// When: rendering at queued stage
	tracker.SetStage(StageQueued, 100)
	view := model.View()

	// Then: all stage indicators are shown (short names)
	assert.Contains(t, view, "Queued")
	assert.Contains(t, view, "Batched")
	assert.Contains(t, view, "Process")
	assert.Contains(t, view, "Index")
}

func TestBatchModel_ProgressDisplay(t *testing.T) {
	// Given: a model with progress
	tracker := NewProgressTracker()
	tracker.SetStage(StageQueued, 100)
	tracker.Update(50, "movies")

	model := newBatchModel(tracker, "")

	// When: rendering view
	view := model.View()

	// Then: progress is shown
	assert.Contains(t, view, "50")
	assert.Contains(t, view, "100")
}

func TestBatchModel_IndexUIDDisplay(t *testing.T) {
	// Given: a model with a current index uid
	tracker := NewProgressTracker()
	tracker.SetStage(StageQueued, 100)
	tracker.Update(1, "user-reviews")

	model := newBatchModel(tracker, "")

	// When: rendering view
	view := model.View()

	// Then: index uid is shown (possibly truncated)
	assert.Contains(t, view, "user-reviews")
}

func TestBatchModel_ErrorDisplay(t *testing.T) {
	// Given: a model with errors
	tracker := NewProgressTracker()
	tracker.AddError(ErrorEvent{
		IndexUID: "broken-index",
		Err:      assert.AnError,
		IsWarn:   false,
	})
	tracker.AddError(ErrorEvent{
		IndexUID: "warning-index",
		Err:      assert.AnError,
		IsWarn:   true,
	})

	model := newBatchModel(tracker, "")

	// When: rendering view
	view := model.View()

	// Then: error count is shown
	assert.Contains(t, view, "1")
}

func TestBatchModel_CompletionState(t *testing.T) {
	// Given: a completed model
	tracker := NewProgressTracker()
	tracker.SetStage(StageComplete, 0)

	model := newBatchModel(tracker, "")
	model.complete = true
	model.stats = CompletionStats{
		Batches:   100,
		Documents: 500,
	}

	// When: rendering view
	view := model.View()

	// Then: shows completion
	assert.Contains(t, view, "Complete")
}

func TestTruncateLabel_Short(t *testing.T) {
	// Given: a short label
	label := "movies"

	// When: truncating
	result := truncateLabel(label, 50)

	// Then: unchanged
	assert.Equal(t, label, result)
}

func TestTruncateLabel_Long(t *testing.T) {
	// Given: a long label
	label := "very-long-index-uid-that-does-not-fit-on-one-line"

	// When: truncating to 30 chars
	result := truncateLabel(label, 30)

	// Then: truncated with ellipsis
	assert.LessOrEqual(t, len(result), 30)
	assert.Contains(t, result, "...")
}

func TestTruncateLabel_Empty(t *testing.T) {
	// Given: empty label
	label := ""

	// When: truncating
	result := truncateLabel(label, 50)

	// Then: returns empty
	assert.Equal(t, "", result)
}

func TestTUIRenderer_InterfaceCompliance(t *testing.T) {
	// Ensure TUIRenderer implements Renderer
	var _ Renderer = (*TUIRenderer)(nil)
}

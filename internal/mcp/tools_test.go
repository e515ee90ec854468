package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/searchd/internal/task"
)

func TestToTaskSummary_FailedCarriesError(t *testing.T) {
	tk := &task.Task{
		ID:       5,
		IndexUID: "movies",
		Content:  task.Content{Kind: task.ContentDocumentDeletion},
		Events: []task.Event{
			{Kind: task.EventCreated},
			{Kind: task.EventFailed, Error: "document not found"},
		},
	}
	summary := toTaskSummary(tk)
	assert.Equal(t, uint64(5), summary.ID)
	assert.Equal(t, "failed", summary.Status)
	assert.Equal(t, "document not found", summary.Error)
}

func TestToTaskSummary_SucceededHasNoError(t *testing.T) {
	tk := &task.Task{
		ID:      6,
		Content: task.Content{Kind: task.ContentIndexCreation},
		Events: []task.Event{
			{Kind: task.EventCreated},
			{Kind: task.EventSucceeded},
		},
	}
	summary := toTaskSummary(tk)
	assert.Equal(t, "succeeded", summary.Status)
	assert.Empty(t, summary.Error)
}

func TestParseStatus(t *testing.T) {
	cases := map[string]task.Status{
		"enqueued":   task.StatusEnqueued,
		"batched":    task.StatusBatched,
		"processing": task.StatusProcessing,
		"succeeded":  task.StatusSucceeded,
		"failed":     task.StatusFailed,
	}
	for name, want := range cases {
		got, ok := parseStatus(name)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := parseStatus("bogus")
	assert.False(t, ok)
}

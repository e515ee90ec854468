package mcp

import (
	"github.com/Aman-CERP/searchd/internal/store"
	"github.com/Aman-CERP/searchd/internal/task"
)

// DocumentAddInput defines the input schema for the document_add tool.
type DocumentAddInput struct {
	IndexUID           string           `json:"index_uid" jsonschema:"the index to add or update documents in"`
	Documents          []map[string]any `json:"documents" jsonschema:"the documents to add or update, as a JSON array"`
	PrimaryKey         string           `json:"primary_key,omitempty" jsonschema:"the primary key field, required the first time an index is populated"`
	AllowIndexCreation bool             `json:"allow_index_creation,omitempty" jsonschema:"create the index if it does not already exist"`
}

// DocumentDeleteInput defines the input schema for the document_delete tool.
type DocumentDeleteInput struct {
	IndexUID    string   `json:"index_uid" jsonschema:"the index to delete documents from"`
	DocumentIDs []string `json:"document_ids" jsonschema:"external document ids to delete"`
}

// DocumentGetInput defines the input schema for the document_get tool.
type DocumentGetInput struct {
	IndexUID   string   `json:"index_uid" jsonschema:"the index to read from"`
	ExternalID string   `json:"external_id" jsonschema:"the document's external id"`
	Fields     []string `json:"fields,omitempty" jsonschema:"attributes to include, dotted paths allowed; omit for all"`
	Skip       []string `json:"skip,omitempty" jsonschema:"attributes to exclude, takes precedence over fields"`
}

// DocumentGetOutput defines the output schema for the document_get tool.
type DocumentGetOutput struct {
	Document map[string]any `json:"document"`
}

// DocumentSearchInput defines the input schema for the document_search
// tool. This is filter-based retrieval over a committed index, not a
// ranked relevance query: the engine builds inverted indexes
// (component E) but no ranking/scoring component consumes them, so
// this tool can only return documents a boolean filter expression
// accepts.
type DocumentSearchInput struct {
	IndexUID string `json:"index_uid" jsonschema:"the index to search"`
	Filter   string `json:"filter,omitempty" jsonschema:"a boolean filter expression, e.g. 'genre = scifi AND year > 2000'; omit to match every document"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of documents to return, default 20, max 200"`
}

// DocumentSearchOutput defines the output schema for the document_search tool.
type DocumentSearchOutput struct {
	Documents []map[string]any `json:"documents"`
	Truncated bool             `json:"truncated" jsonschema:"true if more documents matched than limit allowed returning"`
}

// TaskGetInput defines the input schema for the task_get tool.
type TaskGetInput struct {
	ID uint64 `json:"id" jsonschema:"the task id"`
}

// TaskListInput defines the input schema for the task_list tool.
type TaskListInput struct {
	IndexUID string `json:"index_uid,omitempty" jsonschema:"filter to tasks targeting this index"`
	Status   string `json:"status,omitempty" jsonschema:"filter to one status: enqueued, batched, processing, succeeded, failed"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of tasks to return, default 20"`
}

// TaskListOutput defines the output schema for the task_list tool.
type TaskListOutput struct {
	Tasks []TaskSummary `json:"tasks"`
}

// TaskSummary is a flattened, MCP-friendly view of a task.Task.
type TaskSummary struct {
	ID       uint64 `json:"id"`
	IndexUID string `json:"index_uid"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

func toTaskSummary(t *task.Task) TaskSummary {
	s := TaskSummary{
		ID:       uint64(t.ID),
		IndexUID: t.IndexUID,
		Kind:     t.Content.Kind.String(),
		Status:   t.Status().String(),
	}
	if len(t.Events) > 0 {
		if last := t.Events[len(t.Events)-1]; last.Kind == task.EventFailed {
			s.Error = last.Error
		}
	}
	return s
}

// IndexStatsInput defines the input schema for the index_stats tool.
type IndexStatsInput struct {
	IndexUID string `json:"index_uid" jsonschema:"the index to report on"`
}

// IndexStatsOutput defines the output schema for the index_stats tool.
type IndexStatsOutput struct {
	IndexUID      string `json:"index_uid"`
	DocumentCount int    `json:"document_count"`
}

func parseStatus(s string) (task.Status, bool) {
	switch s {
	case "enqueued":
		return task.StatusEnqueued, true
	case "batched":
		return task.StatusBatched, true
	case "processing":
		return task.StatusProcessing, true
	case "succeeded":
		return task.StatusSucceeded, true
	case "failed":
		return task.StatusFailed, true
	default:
		return 0, false
	}
}

// retrieveVectorsDefault is what every MCP-facing projection uses: an AI
// client has no use for raw embedding vectors, so they're hidden rather
// than surfaced by default.
const retrieveVectorsDefault = store.RetrieveVectorsHide

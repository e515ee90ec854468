package daemon

import (
	"fmt"

	"github.com/Aman-CERP/searchd/internal/store"
	"github.com/Aman-CERP/searchd/internal/task"
	"github.com/Aman-CERP/searchd/internal/validation"
)

// JSON-RPC 2.0 method names, one per scheduler/store operation the
// socket exposes to the CLI.
const (
	MethodPing         = "ping"
	MethodStatus       = "status"
	MethodTaskRegister = "task.register"
	MethodTaskGet      = "task.get"
	MethodTaskList     = "task.list"
	MethodTaskCancel   = "task.cancel"
	MethodDocumentGet    = "document.get"
	MethodDocumentSearch = "document.search"
	MethodIndexStats     = "index.stats"
)

// DefaultDocumentSearchLimit and MaxDocumentSearchLimit bound
// document.search's linear scan, mirroring the MCP tool surface's
// document_search limits (a filtered scan, not a ranked search).
const (
	DefaultDocumentSearchLimit = 20
	MaxDocumentSearchLimit     = 200
)

// Standard JSON-RPC 2.0 error codes.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      string `json:"id"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      string `json:"id"`
}

// Error represents a JSON-RPC 2.0 error. Code carries the engine's own
// error taxonomy (component I) when the failure came from one of the
// domain operations rather than the transport itself.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// NewSuccessResponse creates a successful response.
func NewSuccessResponse(id string, result any) Response {
	return Response{JSONRPC: "2.0", Result: result, ID: id}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id string, code int, message string) Response {
	return Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: code, Message: message},
		ID:      id,
	}
}

// TaskRegisterParams mirrors task.RegisterOptions over the wire.
type TaskRegisterParams struct {
	IndexUID    string       `json:"index_uid"`
	Content     task.Content `json:"content"`
	RequestedID *task.ID     `json:"requested_id,omitempty"`
	DryRun      bool         `json:"dry_run,omitempty"`
}

// Validate checks that required fields are present and, where the
// content kind carries one, that index_uid/document ids/filter are
// well-formed.
func (p *TaskRegisterParams) Validate() error {
	needsIndex := p.Content.Kind != task.ContentDumpCreation && p.Content.Kind != task.ContentSnapshotCreation
	if needsIndex {
		if p.IndexUID == "" {
			return fmt.Errorf("index_uid is required")
		}
		if err := validation.IndexUID(p.IndexUID); err != nil {
			return err
		}
	}

	switch p.Content.Kind {
	case task.ContentDocumentDeletion:
		for _, id := range p.Content.DocumentIDs {
			if err := validation.DocumentID(id); err != nil {
				return err
			}
		}
	case task.ContentDocumentDeletionByFilter:
		if _, err := validation.ParseFilter(p.Content.Filter); err != nil {
			return err
		}
	case task.ContentDocumentAdditionOrUpdate:
		if p.Content.PrimaryKey != "" {
			if err := validation.PrimaryKeyName(p.Content.PrimaryKey); err != nil {
				return err
			}
		}
	}
	return nil
}

// TaskGetParams identifies one task.
type TaskGetParams struct {
	ID task.ID `json:"id"`
}

// Validate checks that id was actually supplied: task ids start at 1,
// so the JSON-absent zero value is never a real task.
func (p *TaskGetParams) Validate() error {
	if p.ID == 0 {
		return fmt.Errorf("id is required")
	}
	return nil
}

// TaskListParams mirrors task.ListFilter and task.Pagination.
type TaskListParams struct {
	IndexUID string             `json:"index_uid,omitempty"`
	Statuses []task.Status      `json:"statuses,omitempty"`
	Kinds    []task.ContentKind `json:"kinds,omitempty"`
	Limit    int                `json:"limit,omitempty"`
	Before   task.ID            `json:"before,omitempty"`
}

// TaskCancelParams identifies the task to cancel and who asked.
type TaskCancelParams struct {
	ID task.ID `json:"id"`
	By task.ID `json:"by"`
}

// Validate checks that id was actually supplied.
func (p *TaskCancelParams) Validate() error {
	if p.ID == 0 {
		return fmt.Errorf("id is required")
	}
	return nil
}

// DocumentGetParams projects one document by its external id.
type DocumentGetParams struct {
	IndexUID        string                    `json:"index_uid"`
	ExternalID      string                    `json:"external_id"`
	Fields          []string                  `json:"fields,omitempty"`
	Skip            []string                  `json:"skip,omitempty"`
	RetrieveVectors store.RetrieveVectorsMode `json:"retrieve_vectors,omitempty"`
}

// Validate checks that required fields are present.
func (p *DocumentGetParams) Validate() error {
	if p.IndexUID == "" {
		return fmt.Errorf("index_uid is required")
	}
	if err := validation.IndexUID(p.IndexUID); err != nil {
		return err
	}
	if p.ExternalID == "" {
		return fmt.Errorf("external_id is required")
	}
	return validation.DocumentID(p.ExternalID)
}

// DocumentSearchParams mirrors mcp.DocumentSearchInput: filter-based
// retrieval over a committed index, not ranked search.
type DocumentSearchParams struct {
	IndexUID string `json:"index_uid"`
	Filter   string `json:"filter,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Validate checks that required fields are present and, if supplied,
// that the filter expression parses.
func (p *DocumentSearchParams) Validate() error {
	if p.IndexUID == "" {
		return fmt.Errorf("index_uid is required")
	}
	if err := validation.IndexUID(p.IndexUID); err != nil {
		return err
	}
	if p.Filter != "" {
		if _, err := validation.ParseFilter(p.Filter); err != nil {
			return err
		}
	}
	return nil
}

// DocumentSearchResult mirrors mcp.DocumentSearchOutput.
type DocumentSearchResult struct {
	Documents []map[string]any `json:"documents"`
	Truncated bool             `json:"truncated"`
}

// IndexStatsParams identifies the index to report on.
type IndexStatsParams struct {
	IndexUID string `json:"index_uid"`
}

// Validate checks that required fields are present.
func (p *IndexStatsParams) Validate() error {
	if p.IndexUID == "" {
		return fmt.Errorf("index_uid is required")
	}
	if err := validation.IndexUID(p.IndexUID); err != nil {
		return err
	}
	return nil
}

// IndexStatsResult reports one index's document count
// "Index": the set of documents it owns).
type IndexStatsResult struct {
	IndexUID      string `json:"index_uid"`
	DocumentCount int    `json:"document_count"`
}

// StatusResult contains daemon status information.
type StatusResult struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	Uptime       string `json:"uptime"`
	PendingTasks int    `json:"pending_tasks"`
}

// PingResult is the response to a ping request.
type PingResult struct {
	Pong bool `json:"pong"`
}

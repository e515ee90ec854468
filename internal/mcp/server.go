package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
	"github.com/Aman-CERP/searchd/internal/scheduler"
	"github.com/Aman-CERP/searchd/internal/store"
	"github.com/Aman-CERP/searchd/internal/task"
	"github.com/Aman-CERP/searchd/internal/validation"
	"github.com/Aman-CERP/searchd/pkg/version"
)

// Server is the MCP server fronting the engine: it registers tools for
// document ingestion, task status, and filter-based document retrieval,
// delegating every mutation to the task store (component F) so the
// scheduler's single-writer discipline is never bypassed.
type Server struct {
	mcp        *mcp.Server
	tasks      *task.Store
	indexes    *scheduler.IndexManager
	payloadDir string
	logger     *slog.Logger
}

// DefaultDocumentSearchLimit and MaxDocumentSearchLimit bound
// document_search's linear scan.
const (
	DefaultDocumentSearchLimit = 20
	MaxDocumentSearchLimit     = 200
)

// NewServer returns an MCP server wired to tasks/indexes, using
// payloadDir as the staging directory for document_add payload files:
// the caller writes the bytes, the scheduler reads and deletes them.
func NewServer(tasks *task.Store, indexes *scheduler.IndexManager, payloadDir string) *Server {
	s := &Server{
		tasks:      tasks,
		indexes:    indexes,
		payloadDir: payloadDir,
		logger:     slog.Default(),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "searchd",
		Version: version.Version,
	}, nil)

	s.registerTools()
	return s
}

// MCPServer returns the underlying SDK server, for wiring into a
// transport (stdio or otherwise) at the call site.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "document_add",
		Description: "Add or update documents in an index. Documents are queued as a task and indexed asynchronously; poll task_get with the returned task id to see when indexing completes.",
	}, s.handleDocumentAdd)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "document_delete",
		Description: "Delete documents from an index by external id.",
	}, s.handleDocumentDelete)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "document_get",
		Description: "Fetch one document from an index by its external id, with optional attribute selection.",
	}, s.handleDocumentGet)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "document_search",
		Description: "Retrieve documents from an index matching a boolean filter expression (field = value, >, <, EXISTS, IN [...], AND/OR, parentheses). This is filter-based retrieval, not ranked relevance search: there is no query scoring, so results are returned in storage order, not by relevance.",
	}, s.handleDocumentSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "task_get",
		Description: "Check the status and result of one previously submitted task.",
	}, s.handleTaskGet)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "task_list",
		Description: "List submitted tasks, optionally filtered by index or status.",
	}, s.handleTaskList)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_stats",
		Description: "Report the document count of one index.",
	}, s.handleIndexStats)
}

func (s *Server) handleDocumentAdd(ctx context.Context, _ *mcp.CallToolRequest, input DocumentAddInput) (
	*mcp.CallToolResult, TaskSummary, error,
) {
	if err := validation.IndexUID(input.IndexUID); err != nil {
		return nil, TaskSummary{}, NewInvalidParamsError(err.Error())
	}
	if len(input.Documents) == 0 {
		return nil, TaskSummary{}, NewInvalidParamsError("documents must contain at least one document")
	}
	if input.PrimaryKey != "" {
		if err := validation.PrimaryKeyName(input.PrimaryKey); err != nil {
			return nil, TaskSummary{}, NewInvalidParamsError(err.Error())
		}
	}

	raw, err := json.Marshal(input.Documents)
	if err != nil {
		return nil, TaskSummary{}, MapError(engerrors.New(engerrors.CodeMalformedPayload, "failed to encode documents", err))
	}

	contentUUID, path := scheduler.PayloadFile(s.payloadDir)
	if err := os.MkdirAll(s.payloadDir, 0o755); err != nil {
		return nil, TaskSummary{}, MapError(engerrors.New(engerrors.CodeInternal, "failed to create payload directory", err))
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return nil, TaskSummary{}, MapError(engerrors.New(engerrors.CodeInternal, "failed to write payload file", err))
	}

	t, err := s.tasks.Register(task.RegisterOptions{
		IndexUID: input.IndexUID,
		Content: task.Content{
			Kind:               task.ContentDocumentAdditionOrUpdate,
			ContentUUID:        contentUUID,
			Format:             "json",
			PrimaryKey:         input.PrimaryKey,
			DocumentsCount:     uint64(len(input.Documents)),
			AllowIndexCreation: input.AllowIndexCreation,
		},
	})
	if err != nil {
		_ = os.Remove(path)
		return nil, TaskSummary{}, MapError(err)
	}
	return nil, toTaskSummary(t), nil
}

func (s *Server) handleDocumentDelete(ctx context.Context, _ *mcp.CallToolRequest, input DocumentDeleteInput) (
	*mcp.CallToolResult, TaskSummary, error,
) {
	if err := validation.IndexUID(input.IndexUID); err != nil {
		return nil, TaskSummary{}, NewInvalidParamsError(err.Error())
	}
	if len(input.DocumentIDs) == 0 {
		return nil, TaskSummary{}, NewInvalidParamsError("document_ids must contain at least one id")
	}
	for _, id := range input.DocumentIDs {
		if err := validation.DocumentID(id); err != nil {
			return nil, TaskSummary{}, NewInvalidParamsError(err.Error())
		}
	}

	t, err := s.tasks.Register(task.RegisterOptions{
		IndexUID: input.IndexUID,
		Content: task.Content{
			Kind:        task.ContentDocumentDeletion,
			DocumentIDs: input.DocumentIDs,
		},
	})
	if err != nil {
		return nil, TaskSummary{}, MapError(err)
	}
	return nil, toTaskSummary(t), nil
}

func (s *Server) handleDocumentGet(ctx context.Context, _ *mcp.CallToolRequest, input DocumentGetInput) (
	*mcp.CallToolResult, DocumentGetOutput, error,
) {
	if err := validation.IndexUID(input.IndexUID); err != nil {
		return nil, DocumentGetOutput{}, NewInvalidParamsError(err.Error())
	}
	if err := validation.DocumentID(input.ExternalID); err != nil {
		return nil, DocumentGetOutput{}, NewInvalidParamsError(err.Error())
	}

	doc, err := s.projectByExternalID(input.IndexUID, input.ExternalID, input.Fields, input.Skip)
	if err != nil {
		return nil, DocumentGetOutput{}, MapError(err)
	}
	return nil, DocumentGetOutput{Document: doc}, nil
}

func (s *Server) handleDocumentSearch(ctx context.Context, _ *mcp.CallToolRequest, input DocumentSearchInput) (
	*mcp.CallToolResult, DocumentSearchOutput, error,
) {
	if err := validation.IndexUID(input.IndexUID); err != nil {
		return nil, DocumentSearchOutput{}, NewInvalidParamsError(err.Error())
	}

	var expr *validation.FilterExpr
	if input.Filter != "" {
		parsed, err := validation.ParseFilter(input.Filter)
		if err != nil {
			return nil, DocumentSearchOutput{}, NewInvalidParamsError(err.Error())
		}
		expr = parsed
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultDocumentSearchLimit
	}
	if limit > MaxDocumentSearchLimit {
		limit = MaxDocumentSearchLimit
	}

	idx, fields, err := s.indexes.Open(input.IndexUID)
	if err != nil {
		return nil, DocumentSearchOutput{}, MapError(err)
	}
	dict, err := idx.LoadDictionary()
	if err != nil {
		return nil, DocumentSearchOutput{}, MapError(err)
	}

	var out DocumentSearchOutput
	var iterErr error
	err = idx.Iter(func(entry store.IterEntry) bool {
		doc, derr := projectEntry(entry, dict, fields)
		if derr != nil {
			iterErr = derr
			return false
		}
		if validation.EvalFilter(expr, doc) {
			if len(out.Documents) >= limit {
				out.Truncated = true
				return false
			}
			out.Documents = append(out.Documents, doc)
		}
		return true
	})
	if err != nil {
		return nil, DocumentSearchOutput{}, MapError(err)
	}
	if iterErr != nil {
		return nil, DocumentSearchOutput{}, MapError(iterErr)
	}
	return nil, out, nil
}

func (s *Server) handleTaskGet(ctx context.Context, _ *mcp.CallToolRequest, input TaskGetInput) (
	*mcp.CallToolResult, TaskSummary, error,
) {
	if input.ID == 0 {
		return nil, TaskSummary{}, NewInvalidParamsError("id is required")
	}
	t, err := s.tasks.Get(task.ID(input.ID))
	if err != nil {
		return nil, TaskSummary{}, MapError(err)
	}
	return nil, toTaskSummary(t), nil
}

func (s *Server) handleTaskList(ctx context.Context, _ *mcp.CallToolRequest, input TaskListInput) (
	*mcp.CallToolResult, TaskListOutput, error,
) {
	filter := task.ListFilter{IndexUID: input.IndexUID}
	if input.Status != "" {
		st, ok := parseStatus(input.Status)
		if !ok {
			return nil, TaskListOutput{}, NewInvalidParamsError(fmt.Sprintf("unknown status %q", input.Status))
		}
		filter.Statuses = []task.Status{st}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultDocumentSearchLimit
	}

	tasks, err := s.tasks.List(filter, task.Pagination{Limit: limit})
	if err != nil {
		return nil, TaskListOutput{}, MapError(err)
	}

	out := TaskListOutput{Tasks: make([]TaskSummary, 0, len(tasks))}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, toTaskSummary(t))
	}
	return nil, out, nil
}

func (s *Server) handleIndexStats(ctx context.Context, _ *mcp.CallToolRequest, input IndexStatsInput) (
	*mcp.CallToolResult, IndexStatsOutput, error,
) {
	if err := validation.IndexUID(input.IndexUID); err != nil {
		return nil, IndexStatsOutput{}, NewInvalidParamsError(err.Error())
	}
	idx, _, err := s.indexes.Open(input.IndexUID)
	if err != nil {
		return nil, IndexStatsOutput{}, MapError(err)
	}
	n, err := idx.Count()
	if err != nil {
		return nil, IndexStatsOutput{}, MapError(err)
	}
	return nil, IndexStatsOutput{IndexUID: input.IndexUID, DocumentCount: n}, nil
}

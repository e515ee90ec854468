package daemon

import (
	"github.com/Aman-CERP/searchd/internal/codec"
	engerrors "github.com/Aman-CERP/searchd/internal/errors"
	"github.com/Aman-CERP/searchd/internal/scheduler"
	"github.com/Aman-CERP/searchd/internal/store"
	"github.com/Aman-CERP/searchd/internal/task"
	"github.com/Aman-CERP/searchd/internal/validation"
)

// Handler implements RequestHandler against the live task store and
// index manager a running scheduler owns. It never writes directly to
// an index's document tables itself — task.register is the only
// mutating path, exactly as the scheduler's single-writer discipline
// requires.
type Handler struct {
	Tasks   *task.Store
	Indexes *scheduler.IndexManager
}

// NewHandler returns a Handler wired to the given task store and index
// manager, normally the same ones a *scheduler.Scheduler is running
// against.
func NewHandler(tasks *task.Store, indexes *scheduler.IndexManager) *Handler {
	return &Handler{Tasks: tasks, Indexes: indexes}
}

// HandleTaskRegister registers a new task.
func (h *Handler) HandleTaskRegister(p TaskRegisterParams) (*task.Task, error) {
	return h.Tasks.Register(task.RegisterOptions{
		IndexUID:    p.IndexUID,
		Content:     p.Content,
		RequestedID: p.RequestedID,
		DryRun:      p.DryRun,
	})
}

// HandleTaskGet returns one task by id.
func (h *Handler) HandleTaskGet(p TaskGetParams) (*task.Task, error) {
	return h.Tasks.Get(p.ID)
}

// HandleTaskList returns tasks matching the given filter and page.
func (h *Handler) HandleTaskList(p TaskListParams) ([]*task.Task, error) {
	return h.Tasks.List(task.ListFilter{
		IndexUID: p.IndexUID,
		Statuses: p.Statuses,
		Kinds:    p.Kinds,
	}, task.Pagination{Limit: p.Limit, Before: p.Before})
}

// HandleTaskCancel cancels a not-yet-executing task.
func (h *Handler) HandleTaskCancel(p TaskCancelParams) (*task.Task, error) {
	return h.Tasks.Cancel(p.ID, p.By)
}

// HandleDocumentGet projects one document by its external id.
func (h *Handler) HandleDocumentGet(p DocumentGetParams) (map[string]any, error) {
	idx, fields, err := h.Indexes.Open(p.IndexUID)
	if err != nil {
		return nil, err
	}

	internalID, found, err := idx.ExternalIDLookup(p.ExternalID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, engerrors.New(engerrors.CodeDocumentNotFound, "document not found", nil).
			WithDetail("index_uid", p.IndexUID).WithDetail("external_id", p.ExternalID)
	}

	cr, err := idx.Get(internalID)
	if err != nil {
		return nil, err
	}

	dict, err := idx.LoadDictionary()
	if err != nil {
		return nil, err
	}

	var kv *codec.KVReader
	if dict.Trained {
		var buf []byte
		kv, err = cr.DecompressWith(&buf, dict.Bytes)
		if err != nil {
			return nil, err
		}
	} else {
		kv = cr.AsNonCompressed()
	}

	return store.Project(kv, fields, store.ProjectOptions{
		Fields:          p.Fields,
		Skip:            p.Skip,
		RetrieveVectors: p.RetrieveVectors,
	})
}

// HandleDocumentSearch scans an index for documents matching an
// optional filter expression (a linear scan in document id order, not a
// ranked search — the engine builds inverted indexes (component E) but
// no ranking/scoring component consumes them).
func (h *Handler) HandleDocumentSearch(p DocumentSearchParams) (DocumentSearchResult, error) {
	var expr *validation.FilterExpr
	if p.Filter != "" {
		parsed, err := validation.ParseFilter(p.Filter)
		if err != nil {
			return DocumentSearchResult{}, err
		}
		expr = parsed
	}

	limit := p.Limit
	if limit <= 0 {
		limit = DefaultDocumentSearchLimit
	}
	if limit > MaxDocumentSearchLimit {
		limit = MaxDocumentSearchLimit
	}

	idx, fields, err := h.Indexes.Open(p.IndexUID)
	if err != nil {
		return DocumentSearchResult{}, err
	}
	dict, err := idx.LoadDictionary()
	if err != nil {
		return DocumentSearchResult{}, err
	}

	var result DocumentSearchResult
	var iterErr error
	err = idx.Iter(func(entry store.IterEntry) bool {
		var kv *codec.KVReader
		if dict.Trained {
			var buf []byte
			kv, iterErr = entry.View.DecompressWith(&buf, dict.Bytes)
		} else {
			kv = entry.View.AsNonCompressed()
		}
		if iterErr != nil {
			return false
		}
		doc, derr := store.Project(kv, fields, store.ProjectOptions{})
		if derr != nil {
			iterErr = derr
			return false
		}
		if validation.EvalFilter(expr, doc) {
			if len(result.Documents) >= limit {
				result.Truncated = true
				return false
			}
			result.Documents = append(result.Documents, doc)
		}
		return true
	})
	if err != nil {
		return DocumentSearchResult{}, err
	}
	if iterErr != nil {
		return DocumentSearchResult{}, iterErr
	}
	return result, nil
}

// HandleIndexStats reports one index's document count.
func (h *Handler) HandleIndexStats(p IndexStatsParams) (IndexStatsResult, error) {
	idx, _, err := h.Indexes.Open(p.IndexUID)
	if err != nil {
		return IndexStatsResult{}, err
	}
	n, err := idx.Count()
	if err != nil {
		return IndexStatsResult{}, err
	}
	return IndexStatsResult{IndexUID: p.IndexUID, DocumentCount: n}, nil
}

// PendingTaskCount reports the backlog size GetStatus folds into
// StatusResult.
func (h *Handler) PendingTaskCount() int {
	pending, err := h.Tasks.List(task.ListFilter{
		Statuses: []task.Status{task.StatusEnqueued, task.StatusBatched},
	}, task.Pagination{})
	if err != nil {
		return 0
	}
	return len(pending)
}

package task

import (
	"sort"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

// RegisterOptions configures Register.
type RegisterOptions struct {
	Content Content
	// IndexUID is the target index; empty for tasks that are not
	// scoped to one index (none currently are, but kept general).
	IndexUID string
	// RequestedID, if non-nil, pins the task's id instead of
	// allocating the next one. Must be strictly greater than every
	// existing task id.
	RequestedID *ID
	// DryRun validates the request and returns the Task that would be
	// created, without writing any state or reserving a payload file.
	DryRun bool
}

// Register allocates a new task (or validates a caller-requested id),
// appends its Created event, and persists it — unless DryRun is set, in
// which case nothing is written.
func (s *Store) Register(opts RegisterOptions) (*Task, error) {
	var result *Task

	err := s.db.Update(func(tx *bbolt.Tx) error {
		highest, any := highestTaskIDTx(tx)

		var id ID
		switch {
		case opts.RequestedID != nil:
			if any && *opts.RequestedID <= highest {
				return engerrors.New(engerrors.CodeInvalidState, "requested task id is not greater than every existing task id", nil).
					WithDetail("requested_id", idString(*opts.RequestedID))
			}
			id = *opts.RequestedID
		case any:
			id = highest + 1
		default:
			id = 1
		}

		t := &Task{
			ID:       id,
			IndexUID: opts.IndexUID,
			Content:  opts.Content,
			Events:   []Event{{Kind: EventCreated, Timestamp: time.Now()}},
		}

		if opts.DryRun {
			result = t
			return nil
		}

		result = t
		if err := putTaskTx(tx, t); err != nil {
			return err
		}
		return reindexStatusTx(tx, nil, t)
	})
	if err != nil {
		if _, ok := err.(*engerrors.EngineError); ok {
			return nil, err
		}
		return nil, engerrors.New(engerrors.CodeInternal, "failed to register task", err)
	}

	return result, nil
}

// Get returns the task with id, or CodeTaskNotFound if none exists.
func (s *Store) Get(id ID) (*Task, error) {
	var t *Task
	err := s.db.View(func(tx *bbolt.Tx) error {
		found, ok, err := getTaskTx(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return engerrors.New(engerrors.CodeTaskNotFound, "task not found", nil).WithDetail("task_id", idString(id))
		}
		t = found
		return nil
	})
	if err != nil {
		if ee, ok := err.(*engerrors.EngineError); ok {
			return nil, ee
		}
		return nil, engerrors.New(engerrors.CodeInternal, "failed to read task", err)
	}
	return t, nil
}

// ListFilter narrows List's result set. A nil/empty field imposes no
// constraint on that dimension.
type ListFilter struct {
	IndexUID string
	Statuses []Status
	Kinds    []ContentKind
}

// Pagination bounds the result of List.
type Pagination struct {
	// Limit caps the number of returned tasks. Zero means unlimited.
	Limit int
	// Before, if non-zero, excludes tasks with id >= Before (keyset
	// pagination walking backwards from the newest task).
	Before ID
}

// List returns tasks matching filter, newest-first, under one
// snapshot transaction.
func (s *Store) List(filter ListFilter, page Pagination) ([]*Task, error) {
	var out []*Task

	err := s.db.View(func(tx *bbolt.Tx) error {
		ids, err := candidateIDsTx(tx, filter)
		if err != nil {
			return err
		}

		sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

		for _, id := range ids {
			if page.Before != 0 && id >= page.Before {
				continue
			}
			t, ok, err := getTaskTx(tx, id)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if !matchesFilter(t, filter) {
				continue
			}
			out = append(out, t)
			if page.Limit > 0 && len(out) >= page.Limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, engerrors.New(engerrors.CodeInternal, "failed to list tasks", err)
	}
	return out, nil
}

// candidateIDsTx narrows the id set using the first secondary index
// that applies, in fixed order (index uid, then a single kind, then a
// single status), falling back to a full primary scan when none does. The result may contain ids that
// don't satisfy every filter dimension (e.g. when both IndexUID and
// Statuses are set); matchesFilter re-checks after loading each task.
func candidateIDsTx(tx *bbolt.Tx, filter ListFilter) ([]ID, error) {
	if filter.IndexUID != "" {
		return scanScopedBucketTx(tx.Bucket(bucketByIndex), filter.IndexUID), nil
	}
	if len(filter.Kinds) == 1 {
		return scanScopedBucketTx(tx.Bucket(bucketByKind), filter.Kinds[0].String()), nil
	}
	if len(filter.Statuses) == 1 {
		return scanScopedBucketTx(tx.Bucket(bucketByStatus), filter.Statuses[0].String()), nil
	}

	var ids []ID
	return ids, tx.Bucket(bucketTasks).ForEach(func(k, _ []byte) error {
		ids = append(ids, idFromKey(k))
		return nil
	})
}

func scanScopedBucketTx(b *bbolt.Bucket, scope string) []ID {
	prefix := append([]byte(scope), 0)
	var ids []ID
	c := b.Cursor()
	for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
		ids = append(ids, idFromKey(k[len(prefix):]))
	}
	return ids
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

func matchesFilter(t *Task, filter ListFilter) bool {
	if filter.IndexUID != "" && t.IndexUID != filter.IndexUID {
		return false
	}
	if len(filter.Kinds) > 0 && !containsKind(filter.Kinds, t.Content.Kind) {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status()) {
		return false
	}
	return true
}

func containsKind(kinds []ContentKind, k ContentKind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}

func containsStatus(statuses []Status, s Status) bool {
	for _, c := range statuses {
		if c == s {
			return true
		}
	}
	return false
}

// AppendEvent appends event to task id's history, rejecting the append
// if the task is already finished. A task's events are strictly
// time-ordered: the timestamp is always stamped by the store itself
// rather than trusted from the caller, which is what keeps that
// ordering trivially true.
func (s *Store) AppendEvent(id ID, event Event) (*Task, error) {
	var result *Task

	err := s.db.Update(func(tx *bbolt.Tx) error {
		t, ok, err := getTaskTx(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return engerrors.New(engerrors.CodeTaskNotFound, "task not found", nil).WithDetail("task_id", idString(id))
		}
		if t.Finished() {
			return engerrors.New(engerrors.CodeInvalidState, "cannot append an event to a finished task", nil).WithDetail("task_id", idString(id))
		}

		event.Timestamp = time.Now()
		before := *t
		t.Events = append(t.Events, event)
		if err := putTaskTx(tx, t); err != nil {
			return err
		}
		if err := reindexStatusTx(tx, &before, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		if ee, ok := err.(*engerrors.EngineError); ok {
			return nil, ee
		}
		return nil, engerrors.New(engerrors.CodeInternal, "failed to append task event", err)
	}
	return result, nil
}

// Cancel marks task id for cancellation. A task that already finished
// or is executing cannot be cancelled: Cancel rejects the request with
// CodeInvalidTaskCancellation and leaves the task untouched. Otherwise
// the task, still waiting in the queue, is failed immediately
// recording who canceled it.
func (s *Store) Cancel(id ID, by ID) (*Task, error) {
	var result *Task

	err := s.db.Update(func(tx *bbolt.Tx) error {
		t, ok, err := getTaskTx(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return engerrors.New(engerrors.CodeTaskNotFound, "task not found", nil).WithDetail("task_id", idString(id))
		}

		switch t.Status() {
		case StatusSucceeded, StatusFailed, StatusProcessing:
			return engerrors.New(engerrors.CodeInvalidTaskCancellation, "task cannot be cancelled as it is already finished or being processed", nil).
				WithDetail("task_id", idString(id))
		}

		before := *t
		t.CanceledBy = &by
		t.Events = append(t.Events, Event{
			Kind:      EventFailed,
			Timestamp: time.Now(),
			Error:     "canceled_by_user",
		})

		if err := putTaskTx(tx, t); err != nil {
			return err
		}
		if err := reindexStatusTx(tx, &before, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		if ee, ok := err.(*engerrors.EngineError); ok {
			return nil, ee
		}
		return nil, engerrors.New(engerrors.CodeInternal, "failed to cancel task", err)
	}
	return result, nil
}

func idString(id ID) string {
	return strconv.FormatUint(uint64(id), 10)
}

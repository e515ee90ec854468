// Package scheduler implements the scheduler/batcher (component G): the
// single-writer loop that turns a backlog of registered tasks into
// atomically executed batches against the document store and indexing
// pipeline.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Aman-CERP/searchd/internal/codec"
	engerrors "github.com/Aman-CERP/searchd/internal/errors"
	"github.com/Aman-CERP/searchd/internal/indexpipeline"
	"github.com/Aman-CERP/searchd/internal/store"
	"github.com/Aman-CERP/searchd/internal/task"
	"github.com/Aman-CERP/searchd/internal/telemetry"
)

// SnapshotFunc and DumpFunc are the pluggable hooks component H wires in;
// the scheduler only knows it must run one of them inside a dump/snapshot
// batch and record the resulting archive path.
type SnapshotFunc func(ctx context.Context) (path string, err error)
type DumpFunc func(ctx context.Context) (path string, err error)

// Scheduler owns the task store and the index environments it drives,
// and runs the single-writer batch-execution loop.
type Scheduler struct {
	Tasks      *task.Store
	Indexes    *IndexManager
	PayloadDir string

	CacheCapacity int
	IdleInterval  time.Duration

	Jobs     chan Job
	Progress *Progress

	Snapshot SnapshotFunc
	Dump     DumpFunc

	Metrics *telemetry.Metrics

	nextBatchID uint64
}

// New returns a Scheduler ready for Run. cacheCapacity bounds every
// index's per-batch extraction LRU (component D).
func New(tasks *task.Store, indexes *IndexManager, payloadDir string, cacheCapacity int) *Scheduler {
	return &Scheduler{
		Tasks:         tasks,
		Indexes:       indexes,
		PayloadDir:    payloadDir,
		CacheCapacity: cacheCapacity,
		IdleInterval:  200 * time.Millisecond,
		Jobs:          make(chan Job, 16),
		Progress:      NewProgress(),
		Metrics:       telemetry.New(),
	}
}

// Run is the single-writer loop: if a volatile job is pending, execute
// it first; otherwise, consult an admission policy to form a batch of
// compatible tasks and execute that instead. It blocks until ctx is
// canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-s.Jobs:
			s.runJob(job)
			continue
		default:
		}

		ran, err := s.tick(ctx)
		if err != nil {
			slog.Error("batch execution failed", slog.String("error", err.Error()))
		}
		if ran {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-s.Jobs:
			s.runJob(job)
		case <-time.After(s.IdleInterval):
		}
	}
}

// runJob executes one volatile priority request and reports the result
// on its reply channel, if any.
func (s *Scheduler) runJob(j Job) {
	var result JobResult
	switch j.Kind {
	case JobDump:
		if s.Dump == nil {
			result.Err = engerrors.New(engerrors.CodeInternal, "dump engine not configured", nil)
		} else {
			result.Path, result.Err = s.Dump(context.Background())
		}
	default:
		result.Err = engerrors.New(engerrors.CodeInternal, "unknown job kind", nil)
	}
	if j.Reply != nil {
		j.Reply <- result
	}
}

// tick forms and executes the next batch, if any is eligible. Returns
// ran=false when the backlog is empty (the caller should then idle).
func (s *Scheduler) tick(ctx context.Context) (bool, error) {
	pending, err := s.pendingTasks()
	if err != nil {
		return false, err
	}

	id := BatchID(atomic.AddUint64(&s.nextBatchID, 1))
	batch, ok := formBatch(id, pending)
	if !ok {
		return false, nil
	}

	return true, s.executeBatch(ctx, batch)
}

// pendingTasks returns every task still awaiting execution (Enqueued
// and, across a restart, Batched — never reached Processing — tasks),
// oldest first, the order tasks become eligible.
func (s *Scheduler) pendingTasks() ([]*task.Task, error) {
	tasks, err := s.Tasks.List(task.ListFilter{
		Statuses: []task.Status{task.StatusEnqueued, task.StatusBatched},
	}, task.Pagination{})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(tasks)-1; i < j; i, j = i+1, j-1 {
		tasks[i], tasks[j] = tasks[j], tasks[i]
	}
	return tasks, nil
}

// executeBatch runs one admitted batch end to end: Batched then
// Processing events, the batch's action in one write transaction, and
// finally Succeeded/Failed on every task.
func (s *Scheduler) executeBatch(ctx context.Context, batch Batch) error {
	start := time.Now()
	tasks := make([]*task.Task, 0, len(batch.TaskIDs))
	for _, id := range batch.TaskIDs {
		t, err := s.Tasks.Get(id)
		if err != nil {
			return err
		}
		tasks = append(tasks, t)
	}

	for _, id := range batch.TaskIDs {
		if _, err := s.Tasks.AppendEvent(id, task.Event{Kind: task.EventBatched, BatchID: uint64(batch.ID)}); err != nil {
			return err
		}
	}

	s.Progress.Start(batch, "processing", len(batch.TaskIDs))
	defer s.Progress.Finish()

	live := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		fresh, err := s.Tasks.Get(t.ID)
		if err != nil {
			return err
		}
		// A racing Cancel between batch formation and now already
		// failed this task; dropping it here is what makes
		// cancellation cooperative without a separate tracking
		// structure (AppendEvent above would have rejected it).
		if fresh.Finished() {
			continue
		}
		if _, err := s.Tasks.AppendEvent(t.ID, task.Event{Kind: task.EventProcessing}); err != nil {
			return err
		}
		live = append(live, fresh)
	}
	if len(live) == 0 {
		return nil
	}

	results, execErr := s.runBatchAction(ctx, batch, live)

	duration := time.Since(start)

	if execErr != nil {
		errMsg := execErr.Error()
		for _, t := range live {
			if _, err := s.Tasks.AppendEvent(t.ID, task.Event{Kind: task.EventFailed, Error: errMsg}); err != nil {
				slog.Error("failed to record task failure", slog.String("error", err.Error()))
			}
			s.Metrics.RecordTask(telemetry.TaskEvent{
				ID: t.ID, IndexUID: t.IndexUID, Kind: t.Content.Kind, Status: task.StatusFailed,
				Duration: duration, Err: execErr,
			})
		}
		s.Metrics.RecordBatch(telemetry.BatchEvent{
			IndexUID: batch.IndexUID, TaskCount: len(live), Duration: duration, Failed: true,
		})
		return execErr
	}

	var documentsIn uint64
	for _, t := range live {
		result := results[t.ID]
		documentsIn += result.IndexedDocuments + result.DeletedDocuments
		if _, err := s.Tasks.AppendEvent(t.ID, task.Event{Kind: task.EventSucceeded, Result: result}); err != nil {
			slog.Error("failed to record task success", slog.String("error", err.Error()))
		}
		s.Metrics.RecordTask(telemetry.TaskEvent{
			ID: t.ID, IndexUID: t.IndexUID, Kind: t.Content.Kind, Status: task.StatusSucceeded, Duration: duration,
		})
	}
	s.Metrics.RecordBatch(telemetry.BatchEvent{
		IndexUID: batch.IndexUID, TaskCount: len(live), DocumentsIn: documentsIn, Duration: duration,
	})

	for _, t := range live {
		if t.Content.Kind == task.ContentDocumentAdditionOrUpdate {
			if err := deletePayload(s.PayloadDir, t.Content.ContentUUID); err != nil {
				slog.Warn("failed to delete payload file", slog.String("error", err.Error()))
			}
		}
	}

	return nil
}

// runBatchAction dispatches batch to the action matching its Kind, all
// performed within one write transaction against the index it targets.
func (s *Scheduler) runBatchAction(ctx context.Context, batch Batch, tasks []*task.Task) (map[task.ID]task.Result, error) {
	switch batch.Kind {
	case BatchDocumentWrites, BatchDeletions:
		return s.executeDocumentBatch(ctx, batch, tasks)
	case BatchSettingsUpdate:
		return s.executeSettingsUpdate(tasks[0])
	case BatchIndexLifecycle:
		return s.executeIndexLifecycle(tasks[0])
	case BatchDumpOrSnapshot:
		return s.executeDumpOrSnapshot(ctx, tasks[0])
	default:
		return nil, engerrors.New(engerrors.CodeInternal, "unknown batch kind", nil)
	}
}

// executeDocumentBatch builds a DocumentChange per affected document
// across every task in the batch and runs them through the indexing
// pipeline in one call, optionally preceded by deletions, coalesced
// into one write.
func (s *Scheduler) executeDocumentBatch(ctx context.Context, batch Batch, tasks []*task.Task) (map[task.ID]task.Result, error) {
	allowCreate := len(tasks) > 0 && tasks[0].Content.Kind == task.ContentDocumentAdditionOrUpdate && tasks[0].Content.AllowIndexCreation
	if !s.Indexes.Exists(batch.IndexUID) && !allowCreate {
		return nil, engerrors.New(engerrors.CodeIndexNotFound, "index does not exist", nil).WithDetail("index_uid", batch.IndexUID)
	}

	idx, fields, err := s.Indexes.Open(batch.IndexUID)
	if err != nil {
		return nil, err
	}

	settings, err := idx.LoadSettings()
	if err != nil {
		return nil, engerrors.New(engerrors.CodeInternal, "failed to load index settings", err).WithDetail("index_uid", batch.IndexUID)
	}
	dict, err := idx.LoadDictionary()
	if err != nil {
		return nil, engerrors.New(engerrors.CodeInternal, "failed to load compression dictionary", err).WithDetail("index_uid", batch.IndexUID)
	}

	var changes []indexpipeline.DocumentChange
	added := make(map[task.ID]uint64)
	deleted := make(map[task.ID]uint64)

	for _, t := range tasks {
		switch t.Content.Kind {
		case task.ContentDocumentAdditionOrUpdate:
			n, err := s.expandAdditionTask(t, idx, fields, settings, dict, &changes)
			if err != nil {
				return nil, err
			}
			added[t.ID] = n

		case task.ContentDocumentDeletion:
			n, err := s.expandDeletionTask(t, idx, dict, &changes)
			if err != nil {
				return nil, err
			}
			deleted[t.ID] = n

		case task.ContentDocumentClear:
			n, err := s.expandClearTask(idx, dict, &changes)
			if err != nil {
				return nil, err
			}
			deleted[t.ID] = n

		case task.ContentDocumentDeletionByFilter:
			return nil, engerrors.New(engerrors.CodeInvalidFilter, "document deletion by filter requires a filter evaluator, which is outside this engine's scope", nil).WithDetail("task_id", fmt.Sprint(t.ID))
		}
	}

	s.Progress.Step("indexing", len(changes))
	pipeline := pipelineFromSettings(settings, s.CacheCapacity)
	if _, err := pipeline.Run(ctx, idx, fields, dict, changes); err != nil {
		return nil, err
	}

	if !dict.Trained {
		if err := s.maybeTrainDictionary(idx); err != nil {
			return nil, err
		}
	}

	results := make(map[task.ID]task.Result, len(tasks))
	for _, t := range tasks {
		switch t.Content.Kind {
		case task.ContentDocumentAdditionOrUpdate:
			results[t.ID] = task.Result{Kind: task.ResultDocumentAddition, IndexedDocuments: added[t.ID]}
		case task.ContentDocumentDeletion, task.ContentDocumentClear:
			results[t.ID] = task.Result{Kind: task.ResultDocumentDeletion, DeletedDocuments: deleted[t.ID]}
		}
	}
	return results, nil
}

// maybeTrainDictionary trains and persists idx's first compression
// dictionary once it has accumulated enough documents, so later
// batches start writing through the compressed path. A no-op once
// idx is already trained or still below the threshold; runs in its own
// write transaction, separate from the batch that may have just pushed
// the index over the threshold.
func (s *Scheduler) maybeTrainDictionary(idx *store.Index) error {
	count, err := idx.Count()
	if err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to count documents for dictionary training", err).WithDetail("index_uid", idx.UID)
	}
	if count < store.DictionaryTrainingThreshold {
		return nil
	}

	sample, err := idx.BuildDictionarySample()
	if err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to sample documents for dictionary training", err).WithDetail("index_uid", idx.UID)
	}
	if sample == nil {
		return nil
	}

	if err := idx.Update(func(tx *bbolt.Tx) error {
		return store.TrainAndCompressTx(tx, sample)
	}); err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to persist trained dictionary", err).WithDetail("index_uid", idx.UID)
	}
	return nil
}

// expandAdditionTask parses t's payload file and appends one
// DocumentChange per document to changes, returning the count handled.
func (s *Scheduler) expandAdditionTask(t *task.Task, idx *store.Index, fields *codec.FieldsIDMap, settings store.Settings, dict codec.Dictionary, changes *[]indexpipeline.DocumentChange) (uint64, error) {
	primaryKey := t.Content.PrimaryKey
	if primaryKey == "" {
		primaryKey = settings.PrimaryKey
	}
	if primaryKey == "" {
		return 0, engerrors.New(engerrors.CodeMissingPrimaryKey, "no primary key set for index", nil).WithDetail("index_uid", idx.UID)
	}

	payload, err := openPayload(s.PayloadDir, t.Content.ContentUUID)
	if err != nil {
		return 0, err
	}
	defer payload.Close()

	docs, err := ParsePayload(payload, formatFromString(t.Content.Format))
	if err != nil {
		return 0, err
	}

	var count uint64
	for _, doc := range docs {
		externalID, ok := externalIDOf(doc, primaryKey)
		if !ok {
			return 0, engerrors.New(engerrors.CodeMissingDocumentId, "document is missing its primary key value", nil).WithDetail("primary_key", primaryKey)
		}

		existingID, found, err := idx.ExternalIDLookup(externalID)
		if err != nil {
			return 0, err
		}

		if !found {
			raw, err := documentToKV(doc, fields)
			if err != nil {
				return 0, err
			}
			*changes = append(*changes, indexpipeline.DocumentChange{Kind: indexpipeline.ChangeAdd, ExternalID: externalID, New: raw})
			count++
			s.Progress.Advance(1)
			continue
		}

		oldRaw, err := readRawKV(idx, existingID, dict)
		if err != nil {
			return 0, err
		}

		newDoc := doc
		if t.Content.Method == task.MethodUpdate {
			newDoc = mergeDocuments(codec.NewKVReader(oldRaw), fields, doc)
		}
		newRaw, err := documentToKV(newDoc, fields)
		if err != nil {
			return 0, err
		}

		*changes = append(*changes, indexpipeline.DocumentChange{
			Kind:       indexpipeline.ChangeUpdate,
			ExternalID: externalID,
			DocID:      existingID,
			Old:        oldRaw,
			New:        newRaw,
		})
		count++
		s.Progress.Advance(1)
	}
	return count, nil
}

// expandDeletionTask resolves each requested external id and, for the
// ones that actually exist, appends a ChangeDelete entry.
func (s *Scheduler) expandDeletionTask(t *task.Task, idx *store.Index, dict codec.Dictionary, changes *[]indexpipeline.DocumentChange) (uint64, error) {
	var count uint64
	for _, externalID := range t.Content.DocumentIDs {
		id, found, err := idx.ExternalIDLookup(externalID)
		if err != nil {
			return 0, err
		}
		if !found {
			continue
		}
		oldRaw, err := readRawKV(idx, id, dict)
		if err != nil {
			return 0, err
		}
		*changes = append(*changes, indexpipeline.DocumentChange{
			Kind:       indexpipeline.ChangeDelete,
			ExternalID: externalID,
			DocID:      id,
			Old:        oldRaw,
		})
		count++
	}
	return count, nil
}

// expandClearTask appends a ChangeDelete entry for every document
// currently stored in idx.
func (s *Scheduler) expandClearTask(idx *store.Index, dict codec.Dictionary, changes *[]indexpipeline.DocumentChange) (uint64, error) {
	var count uint64
	var iterErr error
	err := idx.IterExternalIDs(func(e store.ExternalIDEntry) bool {
		oldRaw, err := readRawKV(idx, e.ID, dict)
		if err != nil {
			iterErr = err
			return false
		}
		*changes = append(*changes, indexpipeline.DocumentChange{
			Kind:       indexpipeline.ChangeDelete,
			ExternalID: e.ExternalID,
			DocID:      e.ID,
			Old:        oldRaw,
		})
		count++
		return true
	})
	if err != nil {
		return 0, err
	}
	if iterErr != nil {
		return 0, iterErr
	}
	return count, nil
}

// executeSettingsUpdate applies a settings-update task's partial (or,
// if IsDeletion, full-reset) settings patch.
func (s *Scheduler) executeSettingsUpdate(t *task.Task) (map[task.ID]task.Result, error) {
	idx, _, err := s.Indexes.Open(t.IndexUID)
	if err != nil {
		return nil, err
	}

	next := store.Settings{}
	if !t.Content.IsDeletion {
		current, err := idx.LoadSettings()
		if err != nil {
			return nil, err
		}
		next, err = mergeSettings(current, t.Content.Settings)
		if err != nil {
			return nil, err
		}
	}

	if err := saveSettings(idx, next); err != nil {
		return nil, err
	}
	return map[task.ID]task.Result{t.ID: {Kind: task.ResultOther}}, nil
}

// executeIndexLifecycle creates, updates, or deletes an index
// environment.
func (s *Scheduler) executeIndexLifecycle(t *task.Task) (map[task.ID]task.Result, error) {
	switch t.Content.Kind {
	case task.ContentIndexCreation:
		if s.Indexes.Exists(t.IndexUID) {
			return nil, engerrors.New(engerrors.CodeIndexAlreadyExists, "index already exists", nil).WithDetail("index_uid", t.IndexUID)
		}
		idx, _, err := s.Indexes.Open(t.IndexUID)
		if err != nil {
			return nil, err
		}
		if t.Content.PrimaryKey != "" {
			settings, err := idx.LoadSettings()
			if err != nil {
				return nil, err
			}
			settings.PrimaryKey = t.Content.PrimaryKey
			if err := saveSettings(idx, settings); err != nil {
				return nil, err
			}
		}

	case task.ContentIndexUpdate:
		if !s.Indexes.Exists(t.IndexUID) {
			return nil, engerrors.New(engerrors.CodeIndexNotFound, "index not found", nil).WithDetail("index_uid", t.IndexUID)
		}
		if t.Content.PrimaryKey != "" {
			idx, _, err := s.Indexes.Open(t.IndexUID)
			if err != nil {
				return nil, err
			}
			settings, err := idx.LoadSettings()
			if err != nil {
				return nil, err
			}
			if settings.PrimaryKey != "" {
				return nil, engerrors.New(engerrors.CodePrimaryKeyAlreadyPresent, "index already has a primary key", nil).WithDetail("index_uid", t.IndexUID)
			}
			settings.PrimaryKey = t.Content.PrimaryKey
			if err := saveSettings(idx, settings); err != nil {
				return nil, err
			}
		}

	case task.ContentIndexDeletion:
		if !s.Indexes.Exists(t.IndexUID) {
			return nil, engerrors.New(engerrors.CodeIndexNotFound, "index not found", nil).WithDetail("index_uid", t.IndexUID)
		}
		if err := s.Indexes.Delete(t.IndexUID); err != nil {
			return nil, err
		}
	}

	return map[task.ID]task.Result{t.ID: {Kind: task.ResultOther}}, nil
}

// executeDumpOrSnapshot runs the configured hook for a dump or snapshot
// task (component H); the hook's archive path is folded into a log
// line since task.Result carries no path field of its own.
func (s *Scheduler) executeDumpOrSnapshot(ctx context.Context, t *task.Task) (map[task.ID]task.Result, error) {
	var (
		path string
		err  error
	)
	switch t.Content.Kind {
	case task.ContentDumpCreation:
		if s.Dump == nil {
			return nil, engerrors.New(engerrors.CodeInternal, "dump engine not configured", nil)
		}
		path, err = s.Dump(ctx)
	case task.ContentSnapshotCreation:
		if s.Snapshot == nil {
			return nil, engerrors.New(engerrors.CodeInternal, "snapshot engine not configured", nil)
		}
		path, err = s.Snapshot(ctx)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("dump/snapshot completed", slog.Uint64("task_id", uint64(t.ID)), slog.String("path", path))
	return map[task.ID]task.Result{t.ID: {Kind: task.ResultOther}}, nil
}

// readRawKV returns id's stored document decoded to a raw,
// dictionary-independent KV block.
func readRawKV(idx *store.Index, id store.DocID, dict codec.Dictionary) ([]byte, error) {
	cr, err := idx.Get(id)
	if err != nil {
		return nil, err
	}
	if !dict.Trained {
		return cr.AsNonCompressed().Bytes(), nil
	}
	var buf []byte
	kv, err := cr.DecompressWith(&buf, dict.Bytes)
	if err != nil {
		return nil, err
	}
	return kv.Bytes(), nil
}

// mergeSettings overlays a settings-update task's raw patch onto
// current, the same JSON-overlay shape mergeDocuments uses for
// documents.
func mergeSettings(current store.Settings, patch map[string]any) (store.Settings, error) {
	base, err := json.Marshal(current)
	if err != nil {
		return store.Settings{}, err
	}
	var asMap map[string]any
	if err := json.Unmarshal(base, &asMap); err != nil {
		return store.Settings{}, err
	}
	if asMap == nil {
		asMap = make(map[string]any)
	}
	for k, v := range patch {
		asMap[k] = v
	}
	merged, err := json.Marshal(asMap)
	if err != nil {
		return store.Settings{}, err
	}
	var next store.Settings
	if err := json.Unmarshal(merged, &next); err != nil {
		return store.Settings{}, err
	}
	return next, nil
}

func saveSettings(idx *store.Index, s store.Settings) error {
	return idx.Update(func(tx *bbolt.Tx) error { return store.SaveSettingsTx(tx, s) })
}

func formatFromString(f string) PayloadFormat {
	switch f {
	case "json":
		return FormatJSON
	case "csv":
		return FormatCSV
	default:
		return FormatNDJSON
	}
}

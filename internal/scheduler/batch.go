package scheduler

import "github.com/Aman-CERP/searchd/internal/task"

// BatchID tags one group of tasks chosen for atomic execution.
type BatchID uint64

// BatchKind classifies which compatibility rule a batch
// satisfies, and therefore how executeBatch dispatches it.
type BatchKind int

const (
	// BatchDocumentWrites covers rule (a) — contiguous additions/updates
	// — optionally preceded by rule (b) deletions, per "Mixing (a) and
	// (b) is permitted when deletions precede additions".
	BatchDocumentWrites BatchKind = iota
	// BatchDeletions is a pure run of rule (b) deletions/clears.
	BatchDeletions
	// BatchSettingsUpdate is rule (c): a single settings-update task.
	BatchSettingsUpdate
	// BatchIndexLifecycle is rule (d): a single index creation, update,
	// or deletion task.
	BatchIndexLifecycle
	// BatchDumpOrSnapshot is rule (e): a single dump or snapshot task.
	BatchDumpOrSnapshot
)

// Batch is an id-tagged group of compatible tasks the scheduler will
// execute as one atomic unit against one index.
type Batch struct {
	ID       BatchID
	IndexUID string
	Kind     BatchKind
	TaskIDs  []task.ID
}

// category buckets a ContentKind into one of the five batch-compatible
// groups.
func category(k task.ContentKind) BatchKind {
	switch k {
	case task.ContentDocumentAdditionOrUpdate:
		return BatchDocumentWrites
	case task.ContentDocumentDeletion, task.ContentDocumentDeletionByFilter, task.ContentDocumentClear:
		return BatchDeletions
	case task.ContentSettingsUpdate:
		return BatchSettingsUpdate
	case task.ContentIndexCreation, task.ContentIndexUpdate, task.ContentIndexDeletion:
		return BatchIndexLifecycle
	default: // ContentDumpCreation, ContentSnapshotCreation
		return BatchDumpOrSnapshot
	}
}

// formBatch picks the next compatible batch from pending, which must
// already be sorted oldest-first (ascending task id) — the order tasks
// become eligible for execution. Returns ok=false if
// pending is empty.
func formBatch(id BatchID, pending []*task.Task) (Batch, bool) {
	if len(pending) == 0 {
		return Batch{}, false
	}

	head := pending[0]
	headCat := category(head.Content.Kind)

	batch := Batch{ID: id, IndexUID: head.IndexUID, Kind: headCat, TaskIDs: []task.ID{head.ID}}

	// Settings updates, index lifecycle, and dump/snapshot tasks are
	// always executed alone (rules (c), (d), (e) each say "a single").
	if headCat == BatchSettingsUpdate || headCat == BatchIndexLifecycle || headCat == BatchDumpOrSnapshot {
		return batch, true
	}

	seenDocumentWrite := headCat == BatchDocumentWrites
scan:
	for _, t := range pending[1:] {
		if t.IndexUID != head.IndexUID {
			break
		}
		cat := category(t.Content.Kind)
		switch cat {
		case BatchDeletions:
			if seenDocumentWrite {
				// deletions must precede additions within a batch, not follow them.
				break scan
			}
		case BatchDocumentWrites:
			seenDocumentWrite = true
		default:
			break scan
		}
		batch.TaskIDs = append(batch.TaskIDs, t.ID)
	}

	if seenDocumentWrite {
		batch.Kind = BatchDocumentWrites
	} else {
		batch.Kind = BatchDeletions
	}
	return batch, true
}

// Package task implements the task store: a persistent, ordered
// record of every operation the engine has been asked to perform,
// from registration through its terminal event.
package task

import "time"

// ID is the monotonically increasing, globally ordered task identifier.
type ID uint64

// ContentKind discriminates the variant held by a Task's Content. Go has
// no sum types, so Content is a tagged struct instead: Kind says which
// of its fields are meaningful.
type ContentKind int

const (
	ContentDocumentAdditionOrUpdate ContentKind = iota
	ContentDocumentDeletion
	ContentDocumentDeletionByFilter
	ContentDocumentClear
	ContentSettingsUpdate
	ContentIndexCreation
	ContentIndexUpdate
	ContentIndexDeletion
	ContentDumpCreation
	ContentSnapshotCreation
)

// String renders k for logs and the CLI.
func (k ContentKind) String() string {
	switch k {
	case ContentDocumentAdditionOrUpdate:
		return "documentAdditionOrUpdate"
	case ContentDocumentDeletion:
		return "documentDeletion"
	case ContentDocumentDeletionByFilter:
		return "documentDeletionByFilter"
	case ContentDocumentClear:
		return "documentClear"
	case ContentSettingsUpdate:
		return "settingsUpdate"
	case ContentIndexCreation:
		return "indexCreation"
	case ContentIndexUpdate:
		return "indexUpdate"
	case ContentIndexDeletion:
		return "indexDeletion"
	case ContentDumpCreation:
		return "dumpCreation"
	case ContentSnapshotCreation:
		return "snapshotCreation"
	default:
		return "unknown"
	}
}

// DocumentAdditionMethod is how newly submitted documents reconcile
// against documents already present under the same id.
type DocumentAdditionMethod int

const (
	MethodReplace DocumentAdditionMethod = iota
	MethodUpdate
)

// Content is the payload of one task. Only the fields relevant to Kind
// are populated; the rest are zero. Built this way (rather than as an
// interface{} per variant) so a Task round-trips through JSON without a
// custom Marshal/Unmarshal pair.
type Content struct {
	Kind ContentKind `json:"kind"`

	// DocumentAdditionOrUpdate
	ContentUUID        string                 `json:"content_uuid,omitempty"`
	Format             string                 `json:"format,omitempty"` // "json", "ndjson", or "csv"
	Method             DocumentAdditionMethod `json:"method,omitempty"`
	PrimaryKey         string                 `json:"primary_key,omitempty"`
	DocumentsCount     uint64                 `json:"documents_count,omitempty"`
	AllowIndexCreation bool                   `json:"allow_index_creation,omitempty"`

	// DocumentDeletion
	DocumentIDs []string `json:"document_ids,omitempty"`

	// DocumentDeletionByFilter
	Filter string `json:"filter,omitempty"`

	// SettingsUpdate
	Settings    map[string]any `json:"settings,omitempty"`
	IsDeletion  bool           `json:"is_deletion,omitempty"`
}

// EventKind discriminates Event's variant.
type EventKind int

const (
	EventCreated EventKind = iota
	EventBatched
	EventProcessing
	EventSucceeded
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventBatched:
		return "batched"
	case EventProcessing:
		return "processing"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ResultKind discriminates Result's variant.
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultDocumentAddition
	ResultDocumentDeletion
	ResultClearAll
	ResultOther
)

// Result is a task's terminal success payload.
type Result struct {
	Kind              ResultKind `json:"kind"`
	IndexedDocuments  uint64     `json:"indexed_documents,omitempty"`
	DeletedDocuments  uint64     `json:"deleted_documents,omitempty"`
}

// Event is one entry of a Task's append-only event history.
type Event struct {
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// Batched
	BatchID uint64 `json:"batch_id,omitempty"`

	// Succeeded
	Result Result `json:"result,omitempty"`

	// Failed
	Error string `json:"error,omitempty"`
}

// Status summarizes a Task's current lifecycle position, derived from
// its last event.
type Status int

const (
	StatusEnqueued Status = iota
	StatusBatched
	StatusProcessing
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusEnqueued:
		return "enqueued"
	case StatusBatched:
		return "batched"
	case StatusProcessing:
		return "processing"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Task is a unit of work the engine executes in id order.
type Task struct {
	ID        ID      `json:"id"`
	IndexUID  string  `json:"index_uid"`
	Content   Content `json:"content"`
	Events    []Event `json:"events"`
	CanceledBy *ID    `json:"canceled_by,omitempty"`
}

// Status derives the task's current status from its last event. A
// freshly registered task (Created only) is Enqueued.
func (t *Task) Status() Status {
	if len(t.Events) == 0 {
		return StatusEnqueued
	}
	switch t.Events[len(t.Events)-1].Kind {
	case EventBatched:
		return StatusBatched
	case EventProcessing:
		return StatusProcessing
	case EventSucceeded:
		return StatusSucceeded
	case EventFailed:
		return StatusFailed
	default:
		return StatusEnqueued
	}
}

// Finished reports whether t's last event is Succeeded or Failed.
func (t *Task) Finished() bool {
	s := t.Status()
	return s == StatusSucceeded || s == StatusFailed
}

// LastEventTime returns the timestamp of t's most recent event, or the
// zero time if t has none.
func (t *Task) LastEventTime() time.Time {
	if len(t.Events) == 0 {
		return time.Time{}
	}
	return t.Events[len(t.Events)-1].Timestamp
}

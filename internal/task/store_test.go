package task

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RegisterAllocatesIncreasingIDs(t *testing.T) {
	s := openTestStore(t)

	t1, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}})
	require.NoError(t, err)
	assert.Equal(t, ID(1), t1.ID)

	t2, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}})
	require.NoError(t, err)
	assert.Equal(t, ID(2), t2.ID)

	assert.Equal(t, StatusEnqueued, t1.Status())
	assert.Len(t, t1.Events, 1)
	assert.Equal(t, EventCreated, t1.Events[0].Kind)
}

func TestStore_RegisterDryRunWritesNothing(t *testing.T) {
	s := openTestStore(t)

	dry, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, ID(1), dry.ID)

	_, err = s.Get(dry.ID)
	assert.Error(t, err, "a dry-run registration must not persist a task")

	real, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}})
	require.NoError(t, err)
	assert.Equal(t, ID(1), real.ID, "dry run must not have consumed an id")
}

func TestStore_RegisterRequestedIDMustExceedExisting(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}})
	require.NoError(t, err)

	requested := ID(1)
	_, err = s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}, RequestedID: &requested})
	assert.Error(t, err)

	requested = ID(50)
	t3, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}, RequestedID: &requested})
	require.NoError(t, err)
	assert.Equal(t, ID(50), t3.ID)
}

func TestStore_GetUnknownTaskNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(999)
	assert.Error(t, err)
}

func TestStore_AppendEventRejectsOnFinishedTask(t *testing.T) {
	s := openTestStore(t)

	created, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentAdditionOrUpdate}})
	require.NoError(t, err)

	_, err = s.AppendEvent(created.ID, Event{Kind: EventProcessing})
	require.NoError(t, err)

	finished, err := s.AppendEvent(created.ID, Event{Kind: EventSucceeded, Result: Result{Kind: ResultDocumentAddition, IndexedDocuments: 3}})
	require.NoError(t, err)
	assert.True(t, finished.Finished())
	assert.Equal(t, StatusSucceeded, finished.Status())

	_, err = s.AppendEvent(created.ID, Event{Kind: EventProcessing})
	assert.Error(t, err, "appending an event to a finished task must be rejected")
}

func TestStore_CancelEnqueuedTaskFails(t *testing.T) {
	s := openTestStore(t)

	created, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}})
	require.NoError(t, err)

	canceled, err := s.Cancel(created.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, canceled.Status())
	require.NotNil(t, canceled.CanceledBy)
}

func TestStore_CancelFinishedTaskRejected(t *testing.T) {
	s := openTestStore(t)

	created, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}})
	require.NoError(t, err)

	_, err = s.AppendEvent(created.ID, Event{Kind: EventProcessing})
	require.NoError(t, err)
	_, err = s.AppendEvent(created.ID, Event{Kind: EventSucceeded, Result: Result{Kind: ResultClearAll}})
	require.NoError(t, err)

	_, err = s.Cancel(created.ID, 0)
	assert.Error(t, err, "cancelling an already-finished task must fail")
}

func TestStore_CancelProcessingTaskRejected(t *testing.T) {
	s := openTestStore(t)

	created, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}})
	require.NoError(t, err)
	_, err = s.AppendEvent(created.ID, Event{Kind: EventProcessing})
	require.NoError(t, err)

	_, err = s.Cancel(created.ID, 0)
	assert.Error(t, err)
}

func TestStore_ListFiltersByIndexAndStatus(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}})
	require.NoError(t, err)
	books, err := s.Register(RegisterOptions{IndexUID: "books", Content: Content{Kind: ContentDocumentClear}})
	require.NoError(t, err)
	_, err = s.AppendEvent(books.ID, Event{Kind: EventProcessing})
	require.NoError(t, err)

	onlyBooks, err := s.List(ListFilter{IndexUID: "books"}, Pagination{})
	require.NoError(t, err)
	require.Len(t, onlyBooks, 1)
	assert.Equal(t, "books", onlyBooks[0].IndexUID)

	processing, err := s.List(ListFilter{Statuses: []Status{StatusProcessing}}, Pagination{})
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, books.ID, processing[0].ID)
}

func TestStore_ListIsNewestFirstAndRespectsLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := s.Register(RegisterOptions{IndexUID: "movies", Content: Content{Kind: ContentDocumentClear}})
		require.NoError(t, err)
	}

	page, err := s.List(ListFilter{}, Pagination{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ID(5), page[0].ID)
	assert.Equal(t, ID(4), page[1].ID)
}

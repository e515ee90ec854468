package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/searchd/internal/task"
)

func mkTask(id task.ID, uid string, kind task.ContentKind) *task.Task {
	return &task.Task{ID: id, IndexUID: uid, Content: task.Content{Kind: kind}}
}

func TestFormBatch_EmptyPendingReturnsFalse(t *testing.T) {
	_, ok := formBatch(1, nil)
	assert.False(t, ok)
}

func TestFormBatch_CoalescesContiguousAdditions(t *testing.T) {
	pending := []*task.Task{
		mkTask(1, "movies", task.ContentDocumentAdditionOrUpdate),
		mkTask(2, "movies", task.ContentDocumentAdditionOrUpdate),
		mkTask(3, "movies", task.ContentDocumentAdditionOrUpdate),
	}
	batch, ok := formBatch(7, pending)
	require.True(t, ok)
	assert.Equal(t, BatchDocumentWrites, batch.Kind)
	assert.Equal(t, []task.ID{1, 2, 3}, batch.TaskIDs)
	assert.Equal(t, BatchID(7), batch.ID)
	assert.Equal(t, "movies", batch.IndexUID)
}

func TestFormBatch_StopsAtDifferentIndex(t *testing.T) {
	pending := []*task.Task{
		mkTask(1, "movies", task.ContentDocumentAdditionOrUpdate),
		mkTask(2, "books", task.ContentDocumentAdditionOrUpdate),
	}
	batch, ok := formBatch(1, pending)
	require.True(t, ok)
	assert.Equal(t, []task.ID{1}, batch.TaskIDs)
}

func TestFormBatch_DeletionsMayPrecedeAdditions(t *testing.T) {
	pending := []*task.Task{
		mkTask(1, "movies", task.ContentDocumentDeletion),
		mkTask(2, "movies", task.ContentDocumentAdditionOrUpdate),
		mkTask(3, "movies", task.ContentDocumentAdditionOrUpdate),
	}
	batch, ok := formBatch(1, pending)
	require.True(t, ok)
	assert.Equal(t, BatchDocumentWrites, batch.Kind)
	assert.Equal(t, []task.ID{1, 2, 3}, batch.TaskIDs)
}

func TestFormBatch_DeletionsMayNotFollowAdditions(t *testing.T) {
	pending := []*task.Task{
		mkTask(1, "movies", task.ContentDocumentAdditionOrUpdate),
		mkTask(2, "movies", task.ContentDocumentDeletion),
		mkTask(3, "movies", task.ContentDocumentAdditionOrUpdate),
	}
	batch, ok := formBatch(1, pending)
	require.True(t, ok)
	assert.Equal(t, []task.ID{1}, batch.TaskIDs)
}

func TestFormBatch_PureDeletionRun(t *testing.T) {
	pending := []*task.Task{
		mkTask(1, "movies", task.ContentDocumentDeletion),
		mkTask(2, "movies", task.ContentDocumentClear),
	}
	batch, ok := formBatch(1, pending)
	require.True(t, ok)
	assert.Equal(t, BatchDeletions, batch.Kind)
	assert.Equal(t, []task.ID{1, 2}, batch.TaskIDs)
}

func TestFormBatch_SettingsUpdateIsAlwaysSingleton(t *testing.T) {
	pending := []*task.Task{
		mkTask(1, "movies", task.ContentSettingsUpdate),
		mkTask(2, "movies", task.ContentSettingsUpdate),
	}
	batch, ok := formBatch(1, pending)
	require.True(t, ok)
	assert.Equal(t, BatchSettingsUpdate, batch.Kind)
	assert.Equal(t, []task.ID{1}, batch.TaskIDs)
}

func TestFormBatch_IndexLifecycleIsAlwaysSingleton(t *testing.T) {
	pending := []*task.Task{
		mkTask(1, "movies", task.ContentIndexCreation),
		mkTask(2, "movies", task.ContentDocumentAdditionOrUpdate),
	}
	batch, ok := formBatch(1, pending)
	require.True(t, ok)
	assert.Equal(t, BatchIndexLifecycle, batch.Kind)
	assert.Equal(t, []task.ID{1}, batch.TaskIDs)
}

func TestFormBatch_DumpOrSnapshotIsAlwaysSingleton(t *testing.T) {
	pending := []*task.Task{
		mkTask(1, "", task.ContentSnapshotCreation),
		mkTask(2, "", task.ContentSnapshotCreation),
	}
	batch, ok := formBatch(1, pending)
	require.True(t, ok)
	assert.Equal(t, BatchDumpOrSnapshot, batch.Kind)
	assert.Equal(t, []task.ID{1}, batch.TaskIDs)
}

package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
	"github.com/Aman-CERP/searchd/internal/task"
)

func TestLatencyToBucket(t *testing.T) {
	assert.Equal(t, BucketP10, LatencyToBucket(5*time.Millisecond))
	assert.Equal(t, BucketP50, LatencyToBucket(20*time.Millisecond))
	assert.Equal(t, BucketP100, LatencyToBucket(75*time.Millisecond))
	assert.Equal(t, BucketP500, LatencyToBucket(200*time.Millisecond))
	assert.Equal(t, BucketP1000, LatencyToBucket(600*time.Millisecond))
}

func TestCircularBuffer_EvictsOldest(t *testing.T) {
	buf := NewCircularBuffer[int](3)
	buf.Add(1)
	buf.Add(2)
	buf.Add(3)
	buf.Add(4)
	assert.Equal(t, []int{2, 3, 4}, buf.Items())
	assert.Equal(t, 3, buf.Size())
}

func TestCircularBuffer_DefaultsCapacity(t *testing.T) {
	buf := NewCircularBuffer[int](0)
	for i := 0; i < 5; i++ {
		buf.Add(i)
	}
	assert.Equal(t, 5, buf.Size())
}

func TestMetrics_RecordBatch(t *testing.T) {
	m := New()
	m.RecordBatch(BatchEvent{IndexUID: "movies", TaskCount: 2, DocumentsIn: 10, Duration: 5 * time.Millisecond})
	m.RecordBatch(BatchEvent{IndexUID: "movies", TaskCount: 1, DocumentsIn: 0, Duration: time.Second, Failed: true})

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.TotalBatches)
	assert.EqualValues(t, 1, snap.FailedBatches)
	assert.EqualValues(t, 10, snap.TotalDocumentsIndexed)
	assert.Equal(t, int64(1), snap.LatencyDistribution[BucketP10])
	assert.Equal(t, int64(1), snap.LatencyDistribution[BucketP1000])
}

func TestMetrics_RecordTask_SuccessAndFailure(t *testing.T) {
	m := New()
	m.RecordTask(TaskEvent{ID: 1, IndexUID: "movies", Kind: task.ContentDocumentAdditionOrUpdate, Status: task.StatusSucceeded, Duration: time.Millisecond})
	m.RecordTask(TaskEvent{
		ID: 2, IndexUID: "movies", Kind: task.ContentDocumentDeletion, Status: task.StatusFailed,
		Duration: time.Millisecond,
		Err:      engerrors.New(engerrors.CodeDocumentNotFound, "not found", nil),
	})

	snap := m.Snapshot()
	require.EqualValues(t, 2, snap.TotalTasks)
	assert.Equal(t, int64(1), snap.TasksByKind[task.ContentDocumentAdditionOrUpdate])
	assert.Equal(t, int64(1), snap.TasksByKind[task.ContentDocumentDeletion])
	assert.Equal(t, int64(1), snap.TasksByStatus[task.StatusSucceeded])
	assert.Equal(t, int64(1), snap.TasksByStatus[task.StatusFailed])
	assert.Equal(t, int64(1), snap.FailuresByCode[engerrors.CodeDocumentNotFound])
	require.Len(t, snap.RecentFailures, 1)
	assert.Equal(t, task.ID(2), snap.RecentFailures[0].TaskID)
	assert.Equal(t, engerrors.CodeDocumentNotFound, snap.RecentFailures[0].Code)
}

func TestMetrics_SnapshotIsIndependentCopy(t *testing.T) {
	m := New()
	m.RecordTask(TaskEvent{ID: 1, Kind: task.ContentIndexCreation, Status: task.StatusSucceeded})
	snap := m.Snapshot()
	snap.TasksByKind[task.ContentIndexCreation] = 999

	fresh := m.Snapshot()
	assert.Equal(t, int64(1), fresh.TasksByKind[task.ContentIndexCreation])
}

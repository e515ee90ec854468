// Package telemetry collects in-process metrics for the scheduler and
// store: batch counts, task latencies, and recent failures. Nothing
// here leaves the process — there is no external reporting, just an
// "all data is stored locally" stance pointed at task/batch events.
package telemetry

import (
	"sync"
	"time"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
	"github.com/Aman-CERP/searchd/internal/task"
)

// LatencyBucket classifies a batch or task duration into a histogram
// bucket, a five-bucket split similar to what search-latency
// telemetry commonly uses.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// BatchEvent reports one scheduler batch's outcome
// "Progress": the scheduler commits a batch of tasks together).
type BatchEvent struct {
	IndexUID    string
	TaskCount   int
	DocumentsIn uint64
	Duration    time.Duration
	Failed      bool
}

// TaskEvent reports one task's terminal disposition.
type TaskEvent struct {
	ID       task.ID
	IndexUID string
	Kind     task.ContentKind
	Status   task.Status
	Duration time.Duration
	Err      error
}

// FailureRecord is a bounded trailing record of failed tasks, useful
// for a `searchd doctor` style report without holding every failure
// this process has ever seen.
type FailureRecord struct {
	TaskID    task.ID
	IndexUID  string
	Kind      task.ContentKind
	Code      engerrors.Code
	Timestamp time.Time
}

// CircularBuffer is a fixed-capacity FIFO buffer, recreated from the
// teacher's telemetry package in generic form.
type CircularBuffer[T any] struct {
	items    []T
	head     int
	size     int
	capacity int
	mu       sync.RWMutex
}

// NewCircularBuffer creates a buffer holding at most capacity items.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{items: make([]T, capacity), capacity: capacity}
}

// Add appends item, evicting the oldest entry once full.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// Items returns a copy of the buffer's contents, oldest first.
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.size == 0 {
		return nil
	}
	result := make([]T, b.size)
	if b.size < b.capacity {
		copy(result, b.items[:b.size])
	} else {
		copy(result, b.items[b.head:])
		copy(result[b.capacity-b.head:], b.items[:b.head])
	}
	return result
}

// Size returns the current number of items held.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Snapshot is an immutable view of the metrics collected so far.
type Snapshot struct {
	TotalBatches         int64
	TotalTasks           int64
	TotalDocumentsIndexed uint64
	FailedBatches        int64
	TasksByKind          map[task.ContentKind]int64
	TasksByStatus        map[task.Status]int64
	FailuresByCode       map[engerrors.Code]int64
	LatencyDistribution  map[LatencyBucket]int64
	RecentFailures       []FailureRecord
	Since                time.Time
}

// DefaultRecentFailuresCapacity bounds how many failures Metrics keeps
// in its ring buffer.
const DefaultRecentFailuresCapacity = 100

// Metrics is a thread-safe, in-process collector of scheduler/store
// activity. The zero value is not usable; construct with New.
type Metrics struct {
	mu sync.RWMutex

	totalBatches          int64
	totalTasks            int64
	totalDocumentsIndexed uint64
	failedBatches         int64
	tasksByKind           map[task.ContentKind]int64
	tasksByStatus         map[task.Status]int64
	failuresByCode        map[engerrors.Code]int64
	latencies             map[LatencyBucket]int64
	recentFailures        *CircularBuffer[FailureRecord]
	startTime             time.Time
}

// New creates a Metrics collector.
func New() *Metrics {
	return &Metrics{
		tasksByKind:    make(map[task.ContentKind]int64),
		tasksByStatus:  make(map[task.Status]int64),
		failuresByCode: make(map[engerrors.Code]int64),
		latencies:      make(map[LatencyBucket]int64),
		recentFailures: NewCircularBuffer[FailureRecord](DefaultRecentFailuresCapacity),
		startTime:      time.Now(),
	}
}

// RecordBatch records one scheduler batch's commit.
func (m *Metrics) RecordBatch(ev BatchEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalBatches++
	m.totalDocumentsIndexed += ev.DocumentsIn
	if ev.Failed {
		m.failedBatches++
	}
	m.latencies[LatencyToBucket(ev.Duration)]++
}

// RecordTask records one task's terminal disposition.
func (m *Metrics) RecordTask(ev TaskEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalTasks++
	m.tasksByKind[ev.Kind]++
	m.tasksByStatus[ev.Status]++
	m.latencies[LatencyToBucket(ev.Duration)]++

	if ev.Err != nil {
		code := engerrors.GetCode(ev.Err)
		m.failuresByCode[code]++
		m.recentFailures.Add(FailureRecord{
			TaskID:    ev.ID,
			IndexUID:  ev.IndexUID,
			Kind:      ev.Kind,
			Code:      code,
			Timestamp: time.Now(),
		})
	}
}

// Snapshot returns a point-in-time copy of the collected metrics.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byKind := make(map[task.ContentKind]int64, len(m.tasksByKind))
	for k, v := range m.tasksByKind {
		byKind[k] = v
	}
	byStatus := make(map[task.Status]int64, len(m.tasksByStatus))
	for k, v := range m.tasksByStatus {
		byStatus[k] = v
	}
	byCode := make(map[engerrors.Code]int64, len(m.failuresByCode))
	for k, v := range m.failuresByCode {
		byCode[k] = v
	}
	latencies := make(map[LatencyBucket]int64, len(m.latencies))
	for k, v := range m.latencies {
		latencies[k] = v
	}

	return Snapshot{
		TotalBatches:          m.totalBatches,
		TotalTasks:            m.totalTasks,
		TotalDocumentsIndexed: m.totalDocumentsIndexed,
		FailedBatches:         m.failedBatches,
		TasksByKind:           byKind,
		TasksByStatus:         byStatus,
		FailuresByCode:        byCode,
		LatencyDistribution:   latencies,
		RecentFailures:        m.recentFailures.Items(),
		Since:                 m.startTime,
	}
}

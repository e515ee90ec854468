package scheduler

import (
	"sync"
	"time"
)

// BatchProgress is a point-in-time snapshot of the batch currently
// executing, published so observers can read it without blocking the
// writer.
type BatchProgress struct {
	BatchID  BatchID
	IndexUID string
	Step     string
	Current  int
	Total    int
	Started  time.Time
}

// Progress is an RWMutex-guarded holder for the scheduler's current
// BatchProgress, a "reader never blocks the writer for long" shape
// reduced to the scheduler's step/count model instead of
// file-scan/ETA tracking.
type Progress struct {
	mu      sync.RWMutex
	current *BatchProgress
}

// NewProgress returns an empty tracker (no batch executing).
func NewProgress() *Progress {
	return &Progress{}
}

// Start begins tracking a new batch.
func (p *Progress) Start(b Batch, step string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = &BatchProgress{BatchID: b.ID, IndexUID: b.IndexUID, Step: step, Total: total, Started: time.Now()}
}

// Step advances to a new named step within the current batch, resetting count.
func (p *Progress) Step(step string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return
	}
	p.current.Step = step
	p.current.Current = 0
	p.current.Total = total
}

// Advance bumps the current step's progress count by delta.
func (p *Progress) Advance(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return
	}
	p.current.Current += delta
}

// Finish clears the tracked batch once it reaches a terminal state.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = nil
}

// Snapshot returns a copy of the current progress, or nil if no batch
// is executing. Safe to call concurrently with the writer.
func (p *Progress) Snapshot() *BatchProgress {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil
	}
	cp := *p.current
	return &cp
}

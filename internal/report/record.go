// Package report collects annealing progress records and writes the
// output artifacts: per-iteration CSVs, per-edge and per-group
// summaries, a runtime CSV, and an optional GraphViz export.
package report

import (
	"sync"
	"sync/atomic"

	"github.com/passbi/railplan/internal/optimize"
)

// Reporter buffers IterationRecords from the annealer over a bounded,
// non-blocking channel: a full buffer drops the sample and increments
// a counter rather than stalling the caller.
type Reporter struct {
	ch      chan optimize.IterationRecord
	dropped int64

	mu      sync.Mutex
	records []optimize.IterationRecord
	wg      sync.WaitGroup
}

// NewReporter starts a Reporter draining into an in-memory buffer of
// the given channel capacity.
func NewReporter(capacity int) *Reporter {
	if capacity <= 0 {
		capacity = 1024
	}
	r := &Reporter{ch: make(chan optimize.IterationRecord, capacity)}
	r.wg.Add(1)
	go r.drain()
	return r
}

func (r *Reporter) drain() {
	defer r.wg.Done()
	for rec := range r.ch {
		r.mu.Lock()
		r.records = append(r.records, rec)
		r.mu.Unlock()
	}
}

// Record is passed directly as an optimize.Emit callback. It never
// blocks: a full channel drops the sample.
func (r *Reporter) Record(rec optimize.IterationRecord) {
	select {
	case r.ch <- rec:
	default:
		atomic.AddInt64(&r.dropped, 1)
	}
}

// Dropped returns the number of samples discarded due to back-pressure.
func (r *Reporter) Dropped() int64 { return atomic.LoadInt64(&r.dropped) }

// Close stops accepting records, waits for the drain goroutine to
// finish, and returns everything buffered, split by phase for the two
// parallel output CSV sets.
func (r *Reporter) Close() (phase1, phase2 []optimize.IterationRecord) {
	close(r.ch)
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Phase == "phase2" {
			phase2 = append(phase2, rec)
		} else {
			phase1 = append(phase1, rec)
		}
	}
	return phase1, phase2
}

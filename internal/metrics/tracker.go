// Package metrics provides thread-safe cycle counters for the trackers.
package metrics

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	Cycles        int64
	NewCandidates int64
	Vetoed        int64
	Skipped       int64
	AlertsSent    int64
	AlertFailures int64
	Uptime        time.Duration
}

// Tracker accumulates per-cycle counters. It is safe for concurrent use even
// though the pipelines run their cycles sequentially, so a future
// multi-worker layout does not have to revisit it.
type Tracker struct {
	mu            sync.Mutex
	cycles        int64
	newCandidates int64
	vetoed        int64
	skipped       int64
	alertsSent    int64
	alertFailures int64
	startTime     time.Time
}

// NewTracker creates a new Tracker.
func NewTracker() *Tracker {
	return &Tracker{startTime: time.Now()}
}

// CycleCompleted records one finished poll cycle with its new-candidate count.
func (t *Tracker) CycleCompleted(newCandidates int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cycles++
	t.newCandidates += int64(newCandidates)
}

// CandidateVetoed records a pool suppressed by a red flag.
func (t *Tracker) CandidateVetoed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.vetoed++
}

// CandidateSkipped records a pool dropped because its security lookup failed.
func (t *Tracker) CandidateSkipped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.skipped++
}

// AlertSent records one successful notification dispatch.
func (t *Tracker) AlertSent() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alertsSent++
}

// AlertFailed records one failed notification dispatch.
func (t *Tracker) AlertFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alertFailures++
}

// Snapshot returns the current counter values.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Snapshot{
		Cycles:        t.cycles,
		NewCandidates: t.newCandidates,
		Vetoed:        t.vetoed,
		Skipped:       t.skipped,
		AlertsSent:    t.alertsSent,
		AlertFailures: t.alertFailures,
		Uptime:        time.Since(t.startTime),
	}
}

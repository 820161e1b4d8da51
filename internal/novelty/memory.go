// Package novelty implements the two seen-memory strategies that decide
// which records in a cycle's snapshot are genuinely new.
//
// The pool pipeline uses a monotonic id set: once an id has been through a
// completed cycle it never re-alerts. The wallet pipeline instead compares
// the current cycle's events against the previous cycle's full list by
// structural equality, so an event with the same key but a changed mean or a
// later timestamp counts as new. The asymmetry is intentional; unifying the
// two would change observable re-alert behavior.
package novelty

import "github.com/Kasuczi/Notification-App/internal/store"

// PoolMemory is the grow-only set of pool ids already processed by a
// completed cycle. The set is unbounded; ids are short strings and the
// stream of genuinely new pools is finite in practice.
type PoolMemory struct {
	seen map[string]struct{}
}

// NewPoolMemory creates an empty PoolMemory.
func NewPoolMemory() *PoolMemory {
	return &PoolMemory{seen: make(map[string]struct{})}
}

// Filter returns the records whose id has not been marked, preserving input
// order.
func (m *PoolMemory) Filter(records []store.PoolRecord) []store.PoolRecord {
	var fresh []store.PoolRecord
	for _, rec := range records {
		if _, ok := m.seen[rec.ID]; !ok {
			fresh = append(fresh, rec)
		}
	}
	return fresh
}

// Mark records the ids as seen. Called by the engine only after a cycle
// completes without a fatal error.
func (m *PoolMemory) Mark(records []store.PoolRecord) {
	for _, rec := range records {
		m.seen[rec.ID] = struct{}{}
	}
}

// Size returns the number of remembered ids.
func (m *PoolMemory) Size() int {
	return len(m.seen)
}

// EventDiff returns the events present in current but structurally absent
// from previous. Comparison covers every field, not just the identifying
// tuple.
func EventDiff(current, previous []store.CoordinationEvent) []store.CoordinationEvent {
	if len(current) == 0 {
		return nil
	}

	prior := make(map[store.CoordinationEvent]struct{}, len(previous))
	for _, ev := range previous {
		prior[ev] = struct{}{}
	}

	var fresh []store.CoordinationEvent
	for _, ev := range current {
		if _, ok := prior[ev]; !ok {
			fresh = append(fresh, ev)
		}
	}
	return fresh
}

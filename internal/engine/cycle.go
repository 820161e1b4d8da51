// Package engine drives the poll loops for both pipelines. One cycle runs
// fetch -> normalize -> aggregate -> novelty filter -> classify -> notify to
// completion before the next begins; per-cycle failures are isolated and the
// seen memory advances only after a cycle finishes without a fatal error.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// errMissingColumns marks a snapshot whose rows lack required fields.
var errMissingColumns = errors.New("required columns missing")

// CycleStatus classifies the outcome of one poll cycle.
type CycleStatus int

const (
	// CycleSuccess: every stage completed
	CycleSuccess CycleStatus = iota
	// CyclePartialFailure: some sources or stages failed but the cycle's
	// surviving records were processed and memory advanced
	CyclePartialFailure
	// CycleFatalFetchFailure: nothing could be fetched; memory untouched
	CycleFatalFetchFailure
)

// String returns the status name for logging.
func (s CycleStatus) String() string {
	switch s {
	case CycleSuccess:
		return "success"
	case CyclePartialFailure:
		return "partial_failure"
	case CycleFatalFetchFailure:
		return "fatal_fetch_failure"
	default:
		return "unknown"
	}
}

// CycleResult reports what one cycle did.
type CycleResult struct {
	Status CycleStatus

	// Reason explains a non-success status
	Reason string

	// NewRecords is the number of novel records found this cycle
	NewRecords int

	// AlertSent reports whether a notification was dispatched
	AlertSent bool
}

// runLoop drives cycles at the given interval until the context is canceled.
// A panicking cycle is the last line of defense: it is recovered, logged,
// and the loop continues at the next tick.
func runLoop(ctx context.Context, name string, interval time.Duration, cycle func(context.Context) CycleResult) {
	slog.Info("loop_started", "pipeline", name, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res := safeCycle(ctx, name, cycle)
		slog.Info("cycle_finished",
			"pipeline", name,
			"status", res.Status.String(),
			"reason", res.Reason,
			"new_records", res.NewRecords,
			"alert_sent", res.AlertSent,
		)

		select {
		case <-ctx.Done():
			slog.Info("loop_stopped", "pipeline", name)
			return
		case <-ticker.C:
		}
	}
}

// safeCycle runs one cycle, converting a panic into a partial failure.
func safeCycle(ctx context.Context, name string, cycle func(context.Context) CycleResult) (res CycleResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("cycle_panic", "pipeline", name, "panic", r)
			res = CycleResult{Status: CyclePartialFailure, Reason: "panic"}
		}
	}()

	return cycle(ctx)
}

package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Kasuczi/Notification-App/internal/config"
	"github.com/Kasuczi/Notification-App/internal/detector"
	"github.com/Kasuczi/Notification-App/internal/ingest"
	"github.com/Kasuczi/Notification-App/internal/metrics"
	"github.com/Kasuczi/Notification-App/internal/notify"
	"github.com/Kasuczi/Notification-App/internal/novelty"
	"github.com/Kasuczi/Notification-App/internal/store"
)

// PoolFetcher retrieves the current new-pools snapshot for one network.
type PoolFetcher interface {
	NewPools(ctx context.Context, network string) ([]ingest.RawPool, error)
}

// SecurityLookup fetches one token's security report.
type SecurityLookup interface {
	TokenSecurity(ctx context.Context, chainID, address string) (*store.SecurityReport, error)
}

// Notifier dispatches one rendered alert.
type Notifier interface {
	Send(ctx context.Context, message, title, linkURL, linkTitle string) error
}

// PoolEngine runs the new-pool pipeline: per-network snapshots are
// normalized, aggregated, diffed against the id memory, screened through the
// security report, and pushed as one batched notification.
type PoolEngine struct {
	cfg      *config.Config
	fetcher  PoolFetcher
	security SecurityLookup
	notifier Notifier
	seen     *novelty.PoolMemory
	tracker  *metrics.Tracker
}

// NewPoolEngine creates a PoolEngine with an empty seen memory.
func NewPoolEngine(cfg *config.Config, fetcher PoolFetcher, security SecurityLookup, notifier Notifier) *PoolEngine {
	return &PoolEngine{
		cfg:      cfg,
		fetcher:  fetcher,
		security: security,
		notifier: notifier,
		seen:     novelty.NewPoolMemory(),
		tracker:  metrics.NewTracker(),
	}
}

// Run drives cycles until ctx is canceled.
func (e *PoolEngine) Run(ctx context.Context) {
	runLoop(ctx, "chain_tracker", e.cfg.PollInterval, e.RunCycle)
}

// RunCycle executes one poll cycle. Per-network fetch failures are isolated:
// the cycle proceeds on whatever snapshots arrived and reports a partial
// failure, turning fatal only when every network failed.
func (e *PoolEngine) RunCycle(ctx context.Context) CycleResult {
	var batches [][]store.PoolRecord
	failedNetworks := 0

	for _, network := range e.cfg.Networks {
		slog.Info("fetching_new_pools", "network", network)

		raws, err := e.fetcher.NewPools(ctx, network)
		if err != nil {
			slog.Warn("pool_fetch_failed", "network", network, "error", err)
			failedNetworks++
			continue
		}
		batches = append(batches, ingest.NormalizePools(raws))
	}

	if failedNetworks == len(e.cfg.Networks) {
		return CycleResult{Status: CycleFatalFetchFailure, Reason: "all networks failed"}
	}

	aggregated := ingest.AggregatePools(batches...)
	candidates := e.seen.Filter(aggregated)

	res := CycleResult{Status: CycleSuccess, NewRecords: len(candidates)}
	if failedNetworks > 0 {
		res.Status = CyclePartialFailure
		res.Reason = "some networks failed"
	}

	if len(candidates) == 0 {
		slog.Info("no_new_pools_found")
		e.finishCycle(candidates)
		return res
	}

	var message strings.Builder
	for _, rec := range candidates {
		verdict, ok := e.screen(ctx, rec)
		if !ok {
			continue
		}
		if !verdict.Approved {
			slog.Info("pool_vetoed", "id", rec.ID, "flag", verdict.VetoFlag)
			e.tracker.CandidateVetoed()
			continue
		}
		message.WriteString(notify.FormatPoolMessage(rec, verdict.Annotations))
	}

	if message.Len() > 0 {
		err := e.notifier.Send(ctx, message.String(), "New pool alert", e.cfg.ChartURL, e.cfg.ChartLinkTitle)
		if err != nil {
			// delivery is fire-and-forget; the memory still advances
			slog.Error("notification_failed", "error", err)
			e.tracker.AlertFailed()
		} else {
			slog.Info("new_pool_alert_sent", "candidates", len(candidates))
			e.tracker.AlertSent()
			res.AlertSent = true
		}
	}

	e.finishCycle(candidates)
	return res
}

// screen fetches the candidate's security report and evaluates it. A failed
// lookup makes the candidate non-classifiable: skipped, neither approved nor
// vetoed.
func (e *PoolEngine) screen(ctx context.Context, rec store.PoolRecord) (detector.Verdict, bool) {
	address := tokenAddress(rec)

	report, err := e.security.TokenSecurity(ctx, ingest.ChainID(rec.Chain), address)
	if err != nil {
		slog.Debug("security_lookup_failed", "id", rec.ID, "error", err)
		e.tracker.CandidateSkipped()
		return detector.Verdict{}, false
	}

	return detector.Screen(report), true
}

// finishCycle advances the seen memory and logs the counters. Every filtered
// candidate is marked, vetoed and skipped ones included, so a pool is
// evaluated at most once.
func (e *PoolEngine) finishCycle(candidates []store.PoolRecord) {
	e.seen.Mark(candidates)
	e.tracker.CycleCompleted(len(candidates))

	snap := e.tracker.Snapshot()
	slog.Info("tracker_state",
		"cycles", snap.Cycles,
		"seen_pools", e.seen.Size(),
		"new_candidates", snap.NewCandidates,
		"vetoed", snap.Vetoed,
		"skipped", snap.Skipped,
		"alerts_sent", snap.AlertsSent,
	)
}

// tokenAddress strips the chain prefix from the record's token reference.
func tokenAddress(rec store.PoolRecord) string {
	if i := strings.Index(rec.TokenID, "_"); i >= 0 {
		return rec.TokenID[i+1:]
	}
	return rec.TokenID
}

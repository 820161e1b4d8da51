package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Kasuczi/Notification-App/internal/config"
	"github.com/Kasuczi/Notification-App/internal/detector"
	"github.com/Kasuczi/Notification-App/internal/metrics"
	"github.com/Kasuczi/Notification-App/internal/notify"
	"github.com/Kasuczi/Notification-App/internal/novelty"
	"github.com/Kasuczi/Notification-App/internal/store"
)

// TransactionFetcher retrieves the current cycle's transfer table for the
// tracked wallet list.
type TransactionFetcher interface {
	Transactions(ctx context.Context, wallets []string) ([]store.TransactionRecord, error)
}

// WalletEngine runs the wallet pipeline: transfers are fetched and labeled,
// coordination patterns detected, the resulting events diffed structurally
// against the previous cycle, and new ones pushed as one notification.
type WalletEngine struct {
	cfg      *config.Config
	fetcher  TransactionFetcher
	notifier Notifier
	tracker  *metrics.Tracker

	// previous is the prior cycle's full event list, the wallet pipeline's
	// seen memory; replaced wholesale after every non-fatal cycle
	previous []store.CoordinationEvent
}

// NewWalletEngine creates a WalletEngine with empty seen memory.
func NewWalletEngine(cfg *config.Config, fetcher TransactionFetcher, notifier Notifier) *WalletEngine {
	return &WalletEngine{
		cfg:      cfg,
		fetcher:  fetcher,
		notifier: notifier,
		tracker:  metrics.NewTracker(),
	}
}

// Run drives cycles until ctx is canceled.
func (e *WalletEngine) Run(ctx context.Context) {
	runLoop(ctx, "wallet_tracker", e.cfg.PollInterval, e.RunCycle)
}

// RunCycle executes one poll cycle. A fetch failure skips the cycle without
// touching the previous-events memory; an empty transfer table is a normal
// idle cycle.
func (e *WalletEngine) RunCycle(ctx context.Context) CycleResult {
	rows, err := e.fetcher.Transactions(ctx, e.cfg.Wallets)
	if err != nil {
		slog.Warn("transaction_fetch_failed", "error", err)
		return CycleResult{Status: CycleFatalFetchFailure, Reason: "transaction fetch failed"}
	}

	if len(rows) == 0 {
		slog.Info("no_transactions_found")
		e.tracker.CycleCompleted(0)
		return CycleResult{Status: CycleSuccess}
	}

	if err := validateRows(rows); err != nil {
		// schema failure: no partial notification, memory untouched
		slog.Error("transaction_schema_invalid", "error", err)
		return CycleResult{Status: CyclePartialFailure, Reason: "schema failure"}
	}

	events := detector.DetectCoordination(rows)
	fresh := novelty.EventDiff(events, e.previous)

	res := CycleResult{Status: CycleSuccess, NewRecords: len(fresh)}

	if len(fresh) > 0 {
		var message strings.Builder
		for _, ev := range fresh {
			message.WriteString(notify.FormatEventMessage(ev))
		}

		err := e.notifier.Send(ctx, message.String(), "Whale alert", e.cfg.ChartURL, e.cfg.ChartLinkTitle)
		if err != nil {
			slog.Error("notification_failed", "error", err)
			e.tracker.AlertFailed()
		} else {
			slog.Info("whale_alert_sent", "events", len(fresh))
			e.tracker.AlertSent()
			res.AlertSent = true
		}
	} else {
		slog.Info("no_new_coordination_events")
	}

	e.previous = events
	e.tracker.CycleCompleted(len(fresh))

	snap := e.tracker.Snapshot()
	slog.Info("tracker_state",
		"cycles", snap.Cycles,
		"tracked_events", len(events),
		"new_events", snap.NewCandidates,
		"alerts_sent", snap.AlertsSent,
	)

	return res
}

// validateRows rejects a snapshot whose rows are missing required fields
// after normalization.
func validateRows(rows []store.TransactionRecord) error {
	for _, row := range rows {
		if row.TokenSymbol == "" && row.ContractAddress == "" {
			return errMissingColumns
		}
		if row.WalletAddress == "" || row.Type == "" {
			return errMissingColumns
		}
	}
	return nil
}

// Package main is the entry point for the wallet activity tracker.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kasuczi/Notification-App/internal/config"
	"github.com/Kasuczi/Notification-App/internal/engine"
	"github.com/Kasuczi/Notification-App/internal/ingest"
	"github.com/Kasuczi/Notification-App/internal/logging"
	"github.com/Kasuczi/Notification-App/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)

	slog.Info("wallet_tracker_starting",
		"wallets", len(cfg.Wallets),
		"poll_interval", cfg.PollInterval,
		"etherscan_url", cfg.EtherscanURL,
		"etherscan_key", cfg.MaskedEtherscanKey(),
		"pushover_token", cfg.MaskedPushoverToken(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("shutdown_signal_received", "signal", sig.String())
		cancel()
	}()

	transfers := ingest.NewEtherscanClient(cfg.EtherscanURL, cfg.EtherscanAPIKey)
	notifier := notify.NewPushoverClient(cfg.PushoverURL, cfg.PushoverAppToken, cfg.PushoverUserKey)

	engine.NewWalletEngine(cfg, transfers, notifier).Run(ctx)

	slog.Info("shutdown_complete")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/fairline/internal/config"
	"github.com/charleschow/fairline/internal/core/quoting"
	"github.com/charleschow/fairline/internal/journal"
	"github.com/charleschow/fairline/internal/server"
	"github.com/charleschow/fairline/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting oddsd")

	// ── Leagues & parameters ───────────────────────────────────
	pc, err := config.LoadPricing(cfg.LeaguesPath)
	if err != nil {
		telemetry.Errorf("Failed to load pricing config: %v", err)
		os.Exit(1)
	}
	telemetry.Infof("Loaded %d leagues from %s  margin=%.2f%%  max_goals=%d",
		len(pc.Registry.Names()), cfg.LeaguesPath, pc.Params.MarginPercent, pc.Params.MaxGoals)

	// ── Journal ────────────────────────────────────────────────
	var opts []quoting.Option
	var store *journal.Store
	if cfg.JournalDBPath != "" {
		store, err = journal.Open(cfg.JournalDBPath, 0)
		if err != nil {
			telemetry.Errorf("Journal: %v", err)
			os.Exit(1)
		}
		opts = append(opts, quoting.WithRecorder(store))
	}

	q, err := quoting.NewQuoter(pc.Registry, pc.Params, opts...)
	if err != nil {
		telemetry.Errorf("Quoter: %v", err)
		os.Exit(1)
	}

	// ── Server ─────────────────────────────────────────────────
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := server.NewServer(q)
	if err := srv.ListenAndServe(ctx, cfg.ServerPort); err != nil {
		telemetry.Errorf("Server: %v", err)
	}

	// ── Shutdown ───────────────────────────────────────────────
	telemetry.Infof("Shutting down oddsd...")
	if err := store.Close(); err != nil {
		telemetry.Warnf("Journal close: %v", err)
	}
	telemetry.Infof("oddsd shutdown complete")
}

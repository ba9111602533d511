// Package main provides the migrator entry point: it replays the exported
// datasets into the target account in dependency order (products, prices,
// customers, subscriptions), resuming from the mapping file.
//
// Usage:
//
//	TARGET_STRIPE_KEY=sk_live_... go run ./cmd/migrate --data-dir ./data
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/di"
	"github.com/Mit17092001/Stripe-migration-plan/internal/logger"
	"github.com/Mit17092001/Stripe-migration-plan/internal/migrate"
)

func main() {
	injector := di.NewContainer()

	log, err := do.Invoke[*logger.Logger](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	migrator, err := do.Invoke[*migrate.Migrator](injector)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize migrator")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := migrator.MigrateAll(ctx)
	if err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	for _, s := range stats {
		log.Info("stage complete",
			"stage", s.Stage,
			"total", s.Total,
			"migrated", s.Migrated,
			"skipped", s.Skipped,
			"gated", s.Gated,
			"failed", s.Failed,
			"duration", s.Duration,
		)
	}
	log.Info("migration complete", "run_id", migrator.RunID())

	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

// Package main provides the exporter entry point: it snapshots the source
// account's products, prices, customers, and subscriptions into local
// dataset files.
//
// Usage:
//
//	SOURCE_STRIPE_KEY=sk_live_... go run ./cmd/export --data-dir ./data
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/config"
	"github.com/Mit17092001/Stripe-migration-plan/internal/di"
	"github.com/Mit17092001/Stripe-migration-plan/internal/export"
	"github.com/Mit17092001/Stripe-migration-plan/internal/logger"
)

func main() {
	injector := di.NewContainer()

	log, err := do.Invoke[*logger.Logger](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	cfg := do.MustInvoke[*config.Config](injector)
	exporter, err := do.Invoke[*export.Exporter](injector)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize exporter")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := exporter.ExportAll(ctx, cfg.Migrate.StatusFilter); err != nil {
		log.WithError(err).Fatal("export failed")
	}

	log.Info("export complete", "data_dir", cfg.Data.Dir)

	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

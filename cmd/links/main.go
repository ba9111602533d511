// Package main provides the link generator entry point: it creates a fresh
// payment-setup link for every migrated paid subscription and writes the
// JSON report and CSV extract for the outreach mailing.
//
// Usage:
//
//	TARGET_STRIPE_KEY=sk_live_... go run ./cmd/links --data-dir ./data \
//	  --link-success-url https://app.example.com/billing/done
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/di"
	"github.com/Mit17092001/Stripe-migration-plan/internal/links"
	"github.com/Mit17092001/Stripe-migration-plan/internal/logger"
)

func main() {
	injector := di.NewContainer()

	log, err := do.Invoke[*logger.Logger](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	generator, err := do.Invoke[*links.Generator](injector)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize link generator")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := generator.Generate(ctx)
	if err != nil {
		log.WithError(err).Fatal("link generation failed")
	}

	log.Info("link generation complete",
		"run_id", rep.RunID,
		"eligible", rep.Eligible,
		"generated", rep.Generated,
		"failed", rep.Failed,
	)

	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

// Package main provides the status monitor entry point: it checks every
// migrated customer on the target account for a payment method and reports
// who still needs to re-authorize.
//
// Usage:
//
//	TARGET_STRIPE_KEY=sk_live_... go run ./cmd/monitor --data-dir ./data
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
	"github.com/Mit17092001/Stripe-migration-plan/internal/monitor"
)

func main() {
	injector := di.NewContainer()

	log, err := do.Invoke[*logger.Logger](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	mon, err := do.Invoke[*monitor.Monitor](injector)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize monitor")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := mon.Run(ctx)
	if err != nil {
		log.WithError(err).Fatal("monitoring failed")
	}

	log.Info("monitoring complete",
		"run_id", rep.RunID,
		"checked", rep.CustomersChecked,
		"lookup_failures", rep.LookupFailures,
		"with_payment_method", rep.WithPaymentMethod,
		"without_payment_method", rep.WithoutPaymentMethod,
		"needs_action", len(rep.NeedsAction),
	)

	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

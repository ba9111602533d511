// Package di provides dependency injection configuration for the migration
// toolkit binaries.
package di

import (
	"github.com/samber/do/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
// Providers are lazy: a binary that never touches the source account never
// asks for the source API key.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideObserver)

	// Accounts
	do.Provide(injector, providers.ProvideSourceClient)
	do.Provide(injector, providers.ProvideTargetClient)

	// Storage
	do.Provide(injector, providers.ProvideMapStore)

	// Pipeline stages
	do.Provide(injector, providers.ProvideExporter)
	do.Provide(injector, providers.ProvideMigrator)
	do.Provide(injector, providers.ProvideLinkGenerator)
	do.Provide(injector, providers.ProvideMonitor)

	return injector
}

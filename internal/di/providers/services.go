package providers

import (
	"github.com/samber/do/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/config"
	"github.com/Mit17092001/Stripe-migration-plan/internal/export"
	"github.com/Mit17092001/Stripe-migration-plan/internal/links"
	"github.com/Mit17092001/Stripe-migration-plan/internal/logger"
	"github.com/Mit17092001/Stripe-migration-plan/internal/mapstore"
	"github.com/Mit17092001/Stripe-migration-plan/internal/migrate"
	"github.com/Mit17092001/Stripe-migration-plan/internal/monitor"
	"github.com/Mit17092001/Stripe-migration-plan/internal/progress"
)

// ProvideExporter provides the source-account exporter.
func ProvideExporter(i do.Injector) (*export.Exporter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	source := do.MustInvoke[*SourceClient](i)
	observer := do.MustInvoke[progress.Observer](i)

	return export.New(source.Client, cfg.Data.Dir, cfg.Export.PageSize, log.Logger, observer), nil
}

// ProvideMigrator provides the dependency-ordered migrator.
func ProvideMigrator(i do.Injector) (*migrate.Migrator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	target := do.MustInvoke[*TargetClient](i)
	store := do.MustInvoke[*mapstore.Store](i)
	observer := do.MustInvoke[progress.Observer](i)

	return migrate.New(target.Client, store, cfg.Data.Dir, migrate.Options{
		BatchSize:    cfg.Migrate.BatchSize,
		StatusFilter: cfg.Migrate.StatusFilter,
		Logger:       log.Logger,
		Observer:     observer,
	}), nil
}

// ProvideLinkGenerator provides the re-authorization link generator.
func ProvideLinkGenerator(i do.Injector) (*links.Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	target := do.MustInvoke[*TargetClient](i)
	store := do.MustInvoke[*mapstore.Store](i)
	observer := do.MustInvoke[progress.Observer](i)

	return links.New(target.Client, store, cfg.Data.Dir, links.Options{
		SuccessURL: cfg.Links.SuccessURL,
		CancelURL:  cfg.Links.CancelURL,
		Logger:     log.Logger,
		Observer:   observer,
	}), nil
}

// ProvideMonitor provides the target-account status monitor.
func ProvideMonitor(i do.Injector) (*monitor.Monitor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	target := do.MustInvoke[*TargetClient](i)
	store := do.MustInvoke[*mapstore.Store](i)
	observer := do.MustInvoke[progress.Observer](i)

	return monitor.New(target.Client, store, cfg.Data.Dir, monitor.Options{
		Logger:   log.Logger,
		Observer: observer,
	}), nil
}

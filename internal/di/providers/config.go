// Package providers contains dependency injection providers for the
// migration toolkit binaries.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/config"
	"github.com/Mit17092001/Stripe-migration-plan/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	log.Info("starting migration toolkit",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.Data.Dir,
	)

	return log, nil
}

package providers

import (
	"github.com/samber/do/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/config"
	"github.com/Mit17092001/Stripe-migration-plan/internal/logger"
	"github.com/Mit17092001/Stripe-migration-plan/internal/stripe"
)

// SourceClient is the API client for the account being migrated from.
// Distinct wrapper types keep the two accounts apart in the container; mixing
// them up would write into the wrong account.
type SourceClient struct {
	*stripe.Client
}

// TargetClient is the API client for the account being migrated into.
type TargetClient struct {
	*stripe.Client
}

// ProvideSourceClient provides the source-account API client.
func ProvideSourceClient(i do.Injector) (*SourceClient, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := cfg.RequireSourceKey(); err != nil {
		return nil, err
	}

	client := stripe.New(cfg.Source.APIKey, "source", cfg.Source.RPS, cfg.Source.Burst, log.Logger)
	return &SourceClient{Client: client}, nil
}

// ProvideTargetClient provides the target-account API client.
func ProvideTargetClient(i do.Injector) (*TargetClient, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := cfg.RequireTargetKey(); err != nil {
		return nil, err
	}

	client := stripe.New(cfg.Target.APIKey, "target", cfg.Target.RPS, cfg.Target.Burst, log.Logger)
	return &TargetClient{Client: client}, nil
}

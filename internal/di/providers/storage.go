package providers

import (
	"github.com/samber/do/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/config"
	"github.com/Mit17092001/Stripe-migration-plan/internal/logger"
	"github.com/Mit17092001/Stripe-migration-plan/internal/mapstore"
	"github.com/Mit17092001/Stripe-migration-plan/internal/progress"
)

// progressLogEvery is how many records pass between progress log lines.
const progressLogEvery = 25

// ProvideMapStore provides the mapping store persisting under the data
// directory.
func ProvideMapStore(i do.Injector) (*mapstore.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return mapstore.New(mapstore.DefaultPath(cfg.Data.Dir), log.Logger), nil
}

// ProvideObserver provides the progress observer the pipeline stages report
// through.
func ProvideObserver(i do.Injector) (progress.Observer, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return progress.NewLogObserver(log.Logger, progressLogEvery), nil
}

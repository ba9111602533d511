// Package migrate is the dependency-ordered, resumable migration engine.
// Entity kinds run in a fixed topological order (products, prices, customers,
// subscriptions); within a kind, records already present in the mapping store
// are skipped, so an interrupted run resumes from the last checkpoint.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Mit17092001/Stripe-migration-plan/internal/domain"
	"github.com/Mit17092001/Stripe-migration-plan/internal/errors"
	"github.com/Mit17092001/Stripe-migration-plan/internal/export"
	"github.com/Mit17092001/Stripe-migration-plan/internal/mapstore"
	"github.com/Mit17092001/Stripe-migration-plan/internal/progress"
	"github.com/Mit17092001/Stripe-migration-plan/internal/report"
	"github.com/Mit17092001/Stripe-migration-plan/internal/stripe"
	"github.com/Mit17092001/Stripe-migration-plan/internal/validation"
)

// Stats reports one kind's migration outcome.
type Stats struct {
	Stage    string                  `json:"stage"`
	Total    int                     `json:"total"`
	Migrated int                     `json:"migrated"`
	Skipped  int                     `json:"skipped"`
	Gated    int                     `json:"gated"`
	Failed   int                     `json:"failed"`
	Errors   []domain.MigrationError `json:"errors,omitempty"`
	Flags    []domain.MigrationError `json:"flags,omitempty"`
	Duration time.Duration           `json:"duration"`
}

// Options configure a Migrator beyond its collaborators.
type Options struct {
	// BatchSize is the checkpoint interval: the mapping file is flushed
	// after this many successful creations.
	BatchSize int
	// StatusFilter restricts which source subscription statuses are
	// eligible for migration. Empty means no restriction, relying on the
	// filter the exporter already applied.
	StatusFilter []string
	Logger       *slog.Logger
	Observer     progress.Observer
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Migrator migrates one entity kind at a time into the target account.
type Migrator struct {
	target       *stripe.Client
	store        *mapstore.Store
	dataDir      string
	batchSize    int
	statusFilter []string
	logger       *slog.Logger
	observer     progress.Observer
	validator    *validation.Validator
	now          func() time.Time
	runID        string
}

// New creates a Migrator reading dataset files from dataDir and writing
// error files next to them.
func New(target *stripe.Client, store *mapstore.Store, dataDir string, opts Options) *Migrator {
	if opts.BatchSize < 1 {
		opts.BatchSize = 10
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Observer == nil {
		opts.Observer = progress.NewNoop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Migrator{
		target:       target,
		store:        store,
		dataDir:      dataDir,
		batchSize:    opts.BatchSize,
		statusFilter: opts.StatusFilter,
		logger:       opts.Logger,
		observer:     opts.Observer,
		validator:    validation.New(),
		now:          opts.Now,
		runID:        uuid.NewString(),
	}
}

// RunID identifies this migrator's run in error-file names.
func (m *Migrator) RunID() string {
	return m.runID
}

// loadDataset reads a dataset file; a missing file is a fatal setup error.
func loadDataset(path string, v any) error {
	if err := report.ReadJSON(path, v); err != nil {
		if os.IsNotExist(err) {
			return errors.Setupf("dataset %s not found, run the exporter first", path)
		}
		return errors.Wrap(err, errors.CodeSetup, "read dataset")
	}
	return nil
}

// runKind drives one kind: skip already-mapped records, create the rest,
// checkpoint every batchSize successes and once at completion. Per-item
// failures never abort the kind; they accumulate on the returned Stats.
func runKind[T any](
	ctx context.Context,
	m *Migrator,
	kind mapstore.Kind,
	records []T,
	maps *mapstore.Map,
	oldID func(T) string,
	create func(context.Context, T) (string, error),
) (*Stats, error) {
	start := m.now()
	stats := &Stats{Stage: string(kind), Total: len(records)}
	sinceCheckpoint := 0

	for i, record := range records {
		if ctx.Err() != nil {
			// Flush what completed before surfacing the cancellation.
			if err := m.store.Save(maps); err != nil {
				m.logger.Error("checkpoint on cancel failed", "kind", kind, "error", err)
			}
			return stats, ctx.Err()
		}

		id := oldID(record)
		if _, mapped := maps.Get(kind, id); mapped {
			stats.Skipped++
			m.observer.Progress(progress.Update{Stage: string(kind), Processed: i + 1, Total: len(records)})
			continue
		}

		newID, err := create(ctx, record)
		switch {
		case errors.Is(err, errors.ErrDependencyNotReady):
			stats.Gated++
			m.logger.Warn("dependency not ready, skipping",
				"kind", kind,
				"old_id", id,
				"reason", err.Error())
		case err != nil:
			stats.Failed++
			stats.Errors = append(stats.Errors, domain.NewMigrationError(string(kind), id, err.Error()))
			m.logger.Warn("record failed, continuing",
				"kind", kind,
				"old_id", id,
				"error", err)
		default:
			maps.Set(kind, id, newID)
			stats.Migrated++
			sinceCheckpoint++
			if sinceCheckpoint >= m.batchSize {
				if err := m.store.Save(maps); err != nil {
					return stats, fmt.Errorf("checkpoint %s: %w", kind, err)
				}
				sinceCheckpoint = 0
			}
		}

		m.observer.Progress(progress.Update{Stage: string(kind), Processed: i + 1, Total: len(records)})
	}

	// Unconditional flush at kind completion.
	if err := m.store.Save(maps); err != nil {
		return stats, fmt.Errorf("final checkpoint %s: %w", kind, err)
	}

	if path, err := report.WriteErrors(m.dataDir, string(kind), m.runID, stats.Errors); err != nil {
		m.logger.Error("failed to write error file", "kind", kind, "error", err)
	} else if path != "" {
		m.logger.Info("wrote error file", "kind", kind, "path", path)
	}

	stats.Duration = m.now().Sub(start)
	m.logger.Info("kind complete",
		"kind", kind,
		"total", stats.Total,
		"migrated", stats.Migrated,
		"skipped", stats.Skipped,
		"gated", stats.Gated,
		"failed", stats.Failed)

	return stats, nil
}

// MigrateProducts migrates products then prices from products.json.
func (m *Migrator) MigrateProducts(ctx context.Context) (products, prices *Stats, err error) {
	var dataset export.ProductDataset
	if err := loadDataset(export.ProductsPath(m.dataDir), &dataset); err != nil {
		return nil, nil, err
	}

	maps, err := m.store.Load()
	if err != nil {
		return nil, nil, err
	}

	products, err = runKind(ctx, m, mapstore.KindProducts, dataset.Products, maps,
		func(p domain.Product) string { return p.ID },
		func(ctx context.Context, p domain.Product) (string, error) {
			if err := m.validator.Validate(&p); err != nil {
				return "", err
			}
			return m.target.CreateProduct(ctx, transformProduct(p),
				stripe.IdempotencyKey(string(mapstore.KindProducts), p.ID))
		})
	if err != nil {
		return products, nil, err
	}

	prices, err = runKind(ctx, m, mapstore.KindPrices, dataset.Prices, maps,
		func(p domain.Price) string { return p.ID },
		func(ctx context.Context, p domain.Price) (string, error) {
			if err := m.validator.Validate(&p); err != nil {
				return "", err
			}
			params, err := transformPrice(p, maps)
			if err != nil {
				return "", err
			}
			return m.target.CreatePrice(ctx, params,
				stripe.IdempotencyKey(string(mapstore.KindPrices), p.ID))
		})
	return products, prices, err
}

// MigrateCustomers migrates customers from customers.json.
func (m *Migrator) MigrateCustomers(ctx context.Context) (*Stats, error) {
	var customers []domain.Customer
	if err := loadDataset(export.CustomersPath(m.dataDir), &customers); err != nil {
		return nil, err
	}

	maps, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	return runKind(ctx, m, mapstore.KindCustomers, customers, maps,
		func(c domain.Customer) string { return c.ID },
		func(ctx context.Context, c domain.Customer) (string, error) {
			if err := m.validator.Validate(&c); err != nil {
				return "", err
			}
			return m.target.CreateCustomer(ctx, transformCustomer(c),
				stripe.IdempotencyKey(string(mapstore.KindCustomers), c.ID))
		})
}

// MigrateSubscriptions migrates subscriptions from subscriptions.json.
// Billing-cycle resets (past anchor, no future period end) migrate anyway
// but are flagged on Stats.Flags and in a side file.
func (m *Migrator) MigrateSubscriptions(ctx context.Context) (*Stats, error) {
	var subscriptions []domain.Subscription
	if err := loadDataset(export.SubscriptionsPath(m.dataDir), &subscriptions); err != nil {
		return nil, err
	}
	subscriptions = m.filterByStatus(subscriptions)

	maps, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	var flags []domain.MigrationError

	stats, err := runKind(ctx, m, mapstore.KindSubscriptions, subscriptions, maps,
		func(s domain.Subscription) string { return s.ID },
		func(ctx context.Context, s domain.Subscription) (string, error) {
			if err := m.validator.Validate(&s); err != nil {
				return "", err
			}
			params, anchorReset, err := transformSubscription(s, maps, m.now())
			if err != nil {
				return "", err
			}
			created, err := m.target.CreateSubscription(ctx, params,
				stripe.IdempotencyKey(string(mapstore.KindSubscriptions), s.ID))
			if err != nil {
				return "", err
			}
			if anchorReset {
				flags = append(flags, domain.NewMigrationError(string(mapstore.KindSubscriptions), s.ID,
					"billing cycle reset: anchor and period end both in the past"))
				m.logger.Warn("billing cycle reset to now",
					"old_id", s.ID,
					"new_id", created.ID)
			}
			return created.ID, nil
		})
	if stats != nil {
		stats.Flags = flags
	}
	if err != nil {
		return stats, err
	}

	if len(flags) > 0 {
		if path, ferr := report.WriteErrors(m.dataDir, "subscriptions_flags", m.runID, flags); ferr != nil {
			m.logger.Error("failed to write flags file", "error", ferr)
		} else {
			m.logger.Info("wrote billing-reset flags", "count", len(flags), "path", path)
		}
	}

	return stats, nil
}

// filterByStatus keeps only subscriptions whose source status is eligible.
// The exporter applies the same filter; this one guards against datasets
// produced with a wider filter than the migration should use.
func (m *Migrator) filterByStatus(subs []domain.Subscription) []domain.Subscription {
	if len(m.statusFilter) == 0 {
		return subs
	}
	eligible := make(map[string]bool, len(m.statusFilter))
	for _, status := range m.statusFilter {
		eligible[status] = true
	}

	kept := make([]domain.Subscription, 0, len(subs))
	for _, s := range subs {
		if eligible[s.Status] {
			kept = append(kept, s)
		} else {
			m.logger.Debug("subscription status not eligible, excluded",
				"old_id", s.ID, "status", s.Status)
		}
	}
	return kept
}

// MigrateAll runs every kind in dependency order and returns per-kind stats.
func (m *Migrator) MigrateAll(ctx context.Context) ([]*Stats, error) {
	products, prices, err := m.MigrateProducts(ctx)
	if err != nil {
		return nil, err
	}

	customers, err := m.MigrateCustomers(ctx)
	if err != nil {
		return []*Stats{products, prices}, err
	}

	subscriptions, err := m.MigrateSubscriptions(ctx)
	if err != nil {
		return []*Stats{products, prices, customers}, err
	}

	return []*Stats{products, prices, customers, subscriptions}, nil
}

// Package export pulls complete snapshots of the source account's entities
// into local dataset files. Exports are all-or-nothing per kind: a partial
// snapshot would silently under-migrate, so nothing is persisted on failure.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Mit17092001/Stripe-migration-plan/internal/domain"
	"github.com/Mit17092001/Stripe-migration-plan/internal/id"
	"github.com/Mit17092001/Stripe-migration-plan/internal/progress"
	"github.com/Mit17092001/Stripe-migration-plan/internal/report"
	"github.com/Mit17092001/Stripe-migration-plan/internal/stripe"
)

// Dataset file names within the data directory.
const (
	ProductsFile      = "products.json"
	CustomersFile     = "customers.json"
	SubscriptionsFile = "subscriptions.json"
)

// ProductsPath returns the products dataset path under dir.
func ProductsPath(dir string) string { return filepath.Join(dir, ProductsFile) }

// CustomersPath returns the customers dataset path under dir.
func CustomersPath(dir string) string { return filepath.Join(dir, CustomersFile) }

// SubscriptionsPath returns the subscriptions dataset path under dir.
func SubscriptionsPath(dir string) string { return filepath.Join(dir, SubscriptionsFile) }

// ProductDataset is the products.json document: products and their prices
// are snapshotted together since prices cannot be migrated without products.
type ProductDataset struct {
	ExportedAt time.Time        `json:"exported_at"`
	SnapshotID string           `json:"snapshot_id"`
	Products   []domain.Product `json:"products"`
	Prices     []domain.Price   `json:"prices"`
}

// Result reports one completed export.
type Result struct {
	Path     string
	Count    int
	Duration time.Duration
}

// Exporter snapshots source-account entities to dataset files.
type Exporter struct {
	client   *stripe.Client
	dir      string
	pageSize int
	logger   *slog.Logger
	observer progress.Observer
}

// New creates an Exporter writing dataset files under dir.
func New(client *stripe.Client, dir string, pageSize int, logger *slog.Logger, observer progress.Observer) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = progress.NewNoop()
	}
	if pageSize < 1 || pageSize > stripe.MaxPageSize {
		pageSize = stripe.MaxPageSize
	}
	return &Exporter{
		client:   client,
		dir:      dir,
		pageSize: pageSize,
		logger:   logger,
		observer: observer,
	}
}

// fetchAll follows the pagination cursor until the source reports no further
// pages, accumulating every record in memory.
func fetchAll[T any](
	ctx context.Context,
	list func(context.Context, stripe.ListOptions) (*stripe.Page[T], error),
	opts stripe.ListOptions,
	lastID func(T) string,
	observer progress.Observer,
	stage string,
) ([]T, error) {
	var all []T
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		page, err := list(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", stage, err)
		}
		all = append(all, page.Data...)
		observer.Progress(progress.Update{Stage: stage, Processed: len(all)})

		if !page.HasMore || len(page.Data) == 0 {
			return all, nil
		}
		opts.StartingAfter = lastID(page.Data[len(page.Data)-1])
	}
}

// ExportProducts snapshots all products and prices into products.json.
func (e *Exporter) ExportProducts(ctx context.Context) (*Result, error) {
	start := time.Now()
	opts := stripe.ListOptions{Limit: e.pageSize}

	products, err := fetchAll(ctx, e.client.ListProducts, opts,
		func(p domain.Product) string { return p.ID }, e.observer, "export_products")
	if err != nil {
		return nil, err
	}

	prices, err := fetchAll(ctx, e.client.ListPrices, opts,
		func(p domain.Price) string { return p.ID }, e.observer, "export_prices")
	if err != nil {
		return nil, err
	}

	snapshotID, err := id.Generate("snap")
	if err != nil {
		return nil, fmt.Errorf("generate snapshot id: %w", err)
	}

	dataset := ProductDataset{
		ExportedAt: time.Now().UTC(),
		SnapshotID: snapshotID,
		Products:   products,
		Prices:     prices,
	}

	path := ProductsPath(e.dir)
	if err := report.WriteJSON(path, dataset); err != nil {
		return nil, err
	}

	e.logger.Info("exported products",
		"products", len(products),
		"prices", len(prices),
		"path", path)

	return &Result{Path: path, Count: len(products) + len(prices), Duration: time.Since(start)}, nil
}

// ExportCustomers snapshots all customers into customers.json.
func (e *Exporter) ExportCustomers(ctx context.Context) (*Result, error) {
	start := time.Now()

	customers, err := fetchAll(ctx, e.client.ListCustomers, stripe.ListOptions{Limit: e.pageSize},
		func(c domain.Customer) string { return c.ID }, e.observer, "export_customers")
	if err != nil {
		return nil, err
	}

	path := CustomersPath(e.dir)
	if err := report.WriteJSON(path, customers); err != nil {
		return nil, err
	}

	e.logger.Info("exported customers", "customers", len(customers), "path", path)

	return &Result{Path: path, Count: len(customers), Duration: time.Since(start)}, nil
}

// ExportSubscriptions snapshots subscriptions whose status is in
// statusFilter into subscriptions.json. The API is asked for all statuses;
// filtering happens here so the filter set is not limited to one value.
func (e *Exporter) ExportSubscriptions(ctx context.Context, statusFilter []string) (*Result, error) {
	start := time.Now()

	opts := stripe.ListOptions{Limit: e.pageSize, Status: "all"}
	subscriptions, err := fetchAll(ctx, e.client.ListSubscriptions, opts,
		func(s domain.Subscription) string { return s.ID }, e.observer, "export_subscriptions")
	if err != nil {
		return nil, err
	}

	eligible := make(map[string]bool, len(statusFilter))
	for _, status := range statusFilter {
		eligible[status] = true
	}

	kept := make([]domain.Subscription, 0, len(subscriptions))
	for _, sub := range subscriptions {
		if eligible[sub.Status] {
			kept = append(kept, sub)
		}
	}

	path := SubscriptionsPath(e.dir)
	if err := report.WriteJSON(path, kept); err != nil {
		return nil, err
	}

	e.logger.Info("exported subscriptions",
		"total", len(subscriptions),
		"eligible", len(kept),
		"statuses", statusFilter,
		"path", path)

	return &Result{Path: path, Count: len(kept), Duration: time.Since(start)}, nil
}

// ExportAll runs the three exports in order.
func (e *Exporter) ExportAll(ctx context.Context, statusFilter []string) error {
	if _, err := e.ExportProducts(ctx); err != nil {
		return fmt.Errorf("export products: %w", err)
	}
	if _, err := e.ExportCustomers(ctx); err != nil {
		return fmt.Errorf("export customers: %w", err)
	}
	if _, err := e.ExportSubscriptions(ctx, statusFilter); err != nil {
		return fmt.Errorf("export subscriptions: %w", err)
	}
	return nil
}

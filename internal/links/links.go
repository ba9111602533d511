// Package links generates re-authorization links for migrated paid
// subscriptions. Subscriptions arrive on the target without a payment
// instrument; each affected customer gets a setup-mode checkout URL to put
// one on file. Sessions expire, so runs always mint fresh links instead of
// reusing earlier ones.
package links

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Mit17092001/Stripe-migration-plan/internal/domain"
	"github.com/Mit17092001/Stripe-migration-plan/internal/errors"
	"github.com/Mit17092001/Stripe-migration-plan/internal/export"
	"github.com/Mit17092001/Stripe-migration-plan/internal/mapstore"
	"github.com/Mit17092001/Stripe-migration-plan/internal/progress"
	"github.com/Mit17092001/Stripe-migration-plan/internal/report"
	"github.com/Mit17092001/Stripe-migration-plan/internal/stripe"
)

// Report is the payment_links_<runid>.json document.
type Report struct {
	RunID       string               `json:"run_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Eligible    int                  `json:"eligible"`
	Generated   int                  `json:"generated"`
	Failed      int                  `json:"failed"`
	Links       []domain.PaymentLink `json:"links"`
}

// Options configure a Generator beyond its collaborators.
type Options struct {
	SuccessURL string
	CancelURL  string
	Logger     *slog.Logger
	Observer   progress.Observer
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Generator produces one setup session per eligible migrated subscription.
type Generator struct {
	target     *stripe.Client
	store      *mapstore.Store
	dataDir    string
	successURL string
	cancelURL  string
	logger     *slog.Logger
	observer   progress.Observer
	now        func() time.Time
	runID      string
}

// New creates a Generator reading the subscription dataset and mapping file
// produced by earlier stages.
func New(target *stripe.Client, store *mapstore.Store, dataDir string, opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Observer == nil {
		opts.Observer = progress.NewNoop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Generator{
		target:     target,
		store:      store,
		dataDir:    dataDir,
		successURL: opts.SuccessURL,
		cancelURL:  opts.CancelURL,
		logger:     opts.Logger,
		observer:   opts.Observer,
		now:        opts.Now,
		runID:      uuid.NewString(),
	}
}

// RunID returns this run's identifier.
func (g *Generator) RunID() string { return g.runID }

// ReportPath returns the JSON report path for a run ID under dir.
func ReportPath(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("payment_links_%s.json", runID))
}

// CSVPath returns the CSV extract path for a run ID under dir.
func CSVPath(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("payment_links_%s.csv", runID))
}

// Generate creates a setup session for every eligible subscription: paid,
// active or trialing at export time, and present in the mapping store. Each
// failure is recorded and the remaining subscriptions still get links.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	maps, err := g.store.Load()
	if err != nil {
		return nil, err
	}

	var subs []domain.Subscription
	if err := report.ReadJSON(export.SubscriptionsPath(g.dataDir), &subs); err != nil {
		return nil, errors.Setupf("load subscriptions dataset: %v (run the exporter first)", err)
	}
	var customers []domain.Customer
	if err := report.ReadJSON(export.CustomersPath(g.dataDir), &customers); err != nil {
		return nil, errors.Setupf("load customers dataset: %v (run the exporter first)", err)
	}
	emails := make(map[string]string, len(customers))
	for _, c := range customers {
		emails[c.ID] = c.Email
	}

	eligible := make([]domain.Subscription, 0, len(subs))
	for _, s := range subs {
		if s.IsFree() {
			continue
		}
		if s.Status != domain.SubscriptionActive && s.Status != domain.SubscriptionTrialing {
			continue
		}
		if _, ok := maps.Get(mapstore.KindSubscriptions, s.ID); !ok {
			continue
		}
		eligible = append(eligible, s)
	}

	rep := &Report{
		RunID:       g.runID,
		GeneratedAt: g.now().UTC(),
		Eligible:    len(eligible),
		Links:       make([]domain.PaymentLink, 0, len(eligible)),
	}
	var errs []domain.MigrationError

	g.logger.Info("generating payment links",
		"run_id", g.runID,
		"eligible", len(eligible),
		"total_subscriptions", len(subs))

	for i, s := range eligible {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		newSubID, _ := maps.Get(mapstore.KindSubscriptions, s.ID)
		newCusID, ok := maps.Get(mapstore.KindCustomers, s.Customer)
		if !ok {
			g.logger.Warn("subscription mapped but customer is not",
				"subscription", s.ID, "customer", s.Customer)
			errs = append(errs, domain.NewMigrationError("links", s.ID,
				fmt.Sprintf("customer %s has no mapping", s.Customer)))
			rep.Failed++
			continue
		}

		session, err := g.target.CreateSetupSession(ctx, stripe.SetupSessionParams{
			Customer:   newCusID,
			SuccessURL: g.successURL,
			CancelURL:  g.cancelURL,
			Metadata: map[string]string{
				"old_customer_id":     s.Customer,
				"new_customer_id":     newCusID,
				"old_subscription_id": s.ID,
				"new_subscription_id": newSubID,
			},
		})
		if err != nil {
			g.logger.Warn("setup session failed",
				"subscription", s.ID, "customer", newCusID, "error", err)
			errs = append(errs, domain.NewMigrationError("links", s.ID, err.Error()))
			rep.Failed++
			continue
		}

		rep.Links = append(rep.Links, domain.PaymentLink{
			OldCustomerID:     s.Customer,
			NewCustomerID:     newCusID,
			OldSubscriptionID: s.ID,
			NewSubscriptionID: newSubID,
			CustomerEmail:     emails[s.Customer],
			URL:               session.URL,
			ExpiresAt:         session.Expiry(),
			PlanSummary:       planSummary(&s),
			Amount:            s.TotalAmount(),
			Currency:          s.Currency(),
		})
		rep.Generated++

		g.observer.Progress(progress.Update{Stage: "links", Processed: i + 1, Total: len(eligible)})
	}

	if err := report.WriteJSON(ReportPath(g.dataDir, g.runID), rep); err != nil {
		return nil, err
	}
	if err := g.writeCSV(rep); err != nil {
		return nil, err
	}
	if path, err := report.WriteErrors(g.dataDir, "links", g.runID, errs); err != nil {
		return nil, err
	} else if path != "" {
		g.logger.Warn("link generation completed with errors", "count", len(errs), "file", path)
	}

	g.logger.Info("payment links written",
		"run_id", g.runID,
		"generated", rep.Generated,
		"failed", rep.Failed)
	return rep, nil
}

func (g *Generator) writeCSV(rep *Report) error {
	header := []string{"customer_email", "old_customer_id", "new_customer_id", "new_subscription_id", "plan_summary", "amount", "currency", "url", "expires_at"}
	rows := make([][]string, 0, len(rep.Links))
	for _, l := range rep.Links {
		rows = append(rows, []string{
			l.CustomerEmail,
			l.OldCustomerID,
			l.NewCustomerID,
			l.NewSubscriptionID,
			l.PlanSummary,
			fmt.Sprintf("%d", l.Amount),
			l.Currency,
			l.URL,
			l.ExpiresAt.Format(time.RFC3339),
		})
	}
	return report.WriteCSV(CSVPath(g.dataDir, g.runID), header, rows)
}

// planSummary renders a short human-readable line for the CSV, preferring
// price nicknames when the export carried them.
func planSummary(s *domain.Subscription) string {
	for _, item := range s.Items.Data {
		if item.Price.Nickname != "" {
			if len(s.Items.Data) > 1 {
				return fmt.Sprintf("%s (+%d more)", item.Price.Nickname, len(s.Items.Data)-1)
			}
			return item.Price.Nickname
		}
	}
	if n := len(s.Items.Data); n != 1 {
		return fmt.Sprintf("%d items", n)
	}
	return "1 item"
}

// Package monitor inspects migrated customers on the target account and
// reports who still needs to re-authorize payment. It is read-only: nothing
// on either account is mutated.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/Mit17092001/Stripe-migration-plan/internal/domain"
	"github.com/Mit17092001/Stripe-migration-plan/internal/mapstore"
	"github.com/Mit17092001/Stripe-migration-plan/internal/progress"
	"github.com/Mit17092001/Stripe-migration-plan/internal/report"
	"github.com/Mit17092001/Stripe-migration-plan/internal/stripe"
)

// SubscriptionCounts aggregates target-side subscription statuses, split by
// whether the subscription bills anything.
type SubscriptionCounts struct {
	ActivePaid     int `json:"active_paid"`
	ActiveFree     int `json:"active_free"`
	IncompletePaid int `json:"incomplete_paid"`
	IncompleteFree int `json:"incomplete_free"`
	Other          int `json:"other"`
}

// NeedsAction is one customer/subscription pair still waiting on a payment
// method.
type NeedsAction struct {
	OldCustomerID  string `json:"old_customer_id"`
	NewCustomerID  string `json:"new_customer_id"`
	Email          string `json:"email,omitempty"`
	SubscriptionID string `json:"subscription_id"`
	Status         string `json:"status"`
}

// Report is the monitor_report_<runid>.json document.
type Report struct {
	RunID                string             `json:"run_id"`
	GeneratedAt          time.Time          `json:"generated_at"`
	CustomersChecked     int                `json:"customers_checked"`
	LookupFailures       int                `json:"lookup_failures"`
	WithPaymentMethod    int                `json:"with_payment_method"`
	WithoutPaymentMethod int                `json:"without_payment_method"`
	Subscriptions        SubscriptionCounts `json:"subscriptions"`
	NeedsAction          []NeedsAction      `json:"needs_action"`
}

// Options configure a Monitor beyond its collaborators.
type Options struct {
	Logger   *slog.Logger
	Observer progress.Observer
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Monitor walks the mapping store's customers and checks their state on the
// target account.
type Monitor struct {
	target   *stripe.Client
	store    *mapstore.Store
	dataDir  string
	logger   *slog.Logger
	observer progress.Observer
	now      func() time.Time
	runID    string
}

// New creates a Monitor writing its reports under dataDir.
func New(target *stripe.Client, store *mapstore.Store, dataDir string, opts Options) *Monitor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Observer == nil {
		opts.Observer = progress.NewNoop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Monitor{
		target:   target,
		store:    store,
		dataDir:  dataDir,
		logger:   opts.Logger,
		observer: opts.Observer,
		now:      opts.Now,
		runID:    uuid.NewString(),
	}
}

// RunID returns this run's identifier.
func (m *Monitor) RunID() string { return m.runID }

// ReportPath returns the JSON report path for a run ID under dir.
func ReportPath(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("monitor_report_%s.json", runID))
}

// CSVPath returns the needs-action CSV path for a run ID under dir.
func CSVPath(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("needs_action_%s.csv", runID))
}

// Run checks every mapped customer. A customer whose lookup fails is counted
// and logged but excluded from the aggregates; the walk continues.
func (m *Monitor) Run(ctx context.Context) (*Report, error) {
	maps, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	oldIDs := make([]string, 0, len(maps.Customers))
	for oldID := range maps.Customers {
		oldIDs = append(oldIDs, oldID)
	}
	slices.Sort(oldIDs)

	rep := &Report{
		RunID:       m.runID,
		GeneratedAt: m.now().UTC(),
		NeedsAction: []NeedsAction{},
	}

	m.logger.Info("monitoring migrated customers", "run_id", m.runID, "customers", len(oldIDs))

	for i, oldID := range oldIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		newID := maps.Customers[oldID]

		acct, err := m.target.GetCustomer(ctx, newID)
		if err != nil {
			m.logger.Warn("customer lookup failed", "old_id", oldID, "new_id", newID, "error", err)
			rep.LookupFailures++
			continue
		}
		subs, err := m.target.ListCustomerSubscriptions(ctx, newID)
		if err != nil {
			m.logger.Warn("subscription lookup failed", "old_id", oldID, "new_id", newID, "error", err)
			rep.LookupFailures++
			continue
		}

		rep.CustomersChecked++
		hasPM := acct.HasPaymentMethod()
		if hasPM {
			rep.WithPaymentMethod++
		} else {
			rep.WithoutPaymentMethod++
		}

		for _, s := range subs {
			m.count(rep, &s)
			if !hasPM && needsPayment(&s) {
				rep.NeedsAction = append(rep.NeedsAction, NeedsAction{
					OldCustomerID:  oldID,
					NewCustomerID:  newID,
					Email:          acct.Email,
					SubscriptionID: s.ID,
					Status:         s.Status,
				})
			}
		}

		m.observer.Progress(progress.Update{Stage: "monitor", Processed: i + 1, Total: len(oldIDs)})
	}

	if err := report.WriteJSON(ReportPath(m.dataDir, m.runID), rep); err != nil {
		return nil, err
	}
	if err := m.writeCSV(rep); err != nil {
		return nil, err
	}

	m.logger.Info("monitor report written",
		"run_id", m.runID,
		"checked", rep.CustomersChecked,
		"failures", rep.LookupFailures,
		"needs_action", len(rep.NeedsAction))
	return rep, nil
}

func (m *Monitor) count(rep *Report, s *domain.Subscription) {
	free := s.IsFree()
	switch s.Status {
	case domain.SubscriptionActive, domain.SubscriptionTrialing:
		if free {
			rep.Subscriptions.ActiveFree++
		} else {
			rep.Subscriptions.ActivePaid++
		}
	case domain.SubscriptionIncomplete, "incomplete_expired", domain.SubscriptionPastDue:
		if free {
			rep.Subscriptions.IncompleteFree++
		} else {
			rep.Subscriptions.IncompletePaid++
		}
	default:
		rep.Subscriptions.Other++
	}
}

// needsPayment reports whether the subscription will bill and is not already
// settled or abandoned.
func needsPayment(s *domain.Subscription) bool {
	if s.IsFree() {
		return false
	}
	switch s.Status {
	case "canceled", "incomplete_expired":
		return false
	}
	return true
}

func (m *Monitor) writeCSV(rep *Report) error {
	header := []string{"email", "old_customer_id", "new_customer_id", "subscription_id", "status"}
	rows := make([][]string, 0, len(rep.NeedsAction))
	for _, na := range rep.NeedsAction {
		rows = append(rows, []string{na.Email, na.OldCustomerID, na.NewCustomerID, na.SubscriptionID, na.Status})
	}
	return report.WriteCSV(CSVPath(m.dataDir, m.runID), header, rows)
}

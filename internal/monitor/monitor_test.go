package monitor_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mit17092001/Stripe-migration-plan/internal/mapstore"
	"github.com/Mit17092001/Stripe-migration-plan/internal/monitor"
	"github.com/Mit17092001/Stripe-migration-plan/internal/report"
	"github.com/Mit17092001/Stripe-migration-plan/internal/stripe"
)

// accountState is one target customer as the fake account serves it.
type accountState struct {
	email         string
	paymentMethod string
	// subscriptions as raw list entries: status plus one line item amount.
	subs []subState
}

type subState struct {
	id         string
	status     string
	unitAmount int64
}

func newFakeAccount(t *testing.T, customers map[string]accountState) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v1/customers/"):
			id := strings.TrimPrefix(r.URL.Path, "/v1/customers/")
			state, ok := customers[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"error":{"message":"no such customer"}}`)
				return
			}
			fmt.Fprintf(w, `{"id":"%s","email":"%s","invoice_settings":{"default_payment_method":"%s"}}`,
				id, state.email, state.paymentMethod)

		case r.URL.Path == "/v1/subscriptions":
			state := customers[r.URL.Query().Get("customer")]
			entries := make([]string, 0, len(state.subs))
			for _, s := range state.subs {
				entries = append(entries, fmt.Sprintf(
					`{"id":"%s","customer":"%s","status":"%s","items":{"data":[{"id":"%s_item","price":{"id":"price_1","unit_amount":%d}}]}}`,
					s.id, r.URL.Query().Get("customer"), s.status, s.id, s.unitAmount))
			}
			fmt.Fprintf(w, `{"data":[%s],"has_more":false}`, strings.Join(entries, ","))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func setup(t *testing.T, customers map[string]accountState, mapping map[string]string) (*monitor.Monitor, string) {
	t.Helper()
	dir := t.TempDir()
	server := newFakeAccount(t, customers)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client := stripe.New("sk_test_target", "target", 1000, 1000, logger)
	client.SetBaseURL(server.URL)

	store := mapstore.New(filepath.Join(dir, "mapping.json"), nil)
	m := mapstore.NewMap()
	for oldID, newID := range mapping {
		m.Set(mapstore.KindCustomers, oldID, newID)
	}
	require.NoError(t, store.Save(m))

	return monitor.New(client, store, dir, monitor.Options{Logger: logger}), dir
}

func TestMonitor_AggregatesAndNeedsAction(t *testing.T) {
	customers := map[string]accountState{
		// Paid active, card on file: healthy.
		"cus_new_0": {email: "zero@example.com", paymentMethod: "pm_1", subs: []subState{
			{id: "sub_new_0", status: "active", unitAmount: 1500},
		}},
		// Paid incomplete, no card: needs action.
		"cus_new_1": {email: "one@example.com", subs: []subState{
			{id: "sub_new_1", status: "incomplete", unitAmount: 900},
		}},
		// Free active, no card: fine as-is.
		"cus_new_2": {email: "two@example.com", subs: []subState{
			{id: "sub_new_2", status: "active", unitAmount: 0},
		}},
		// Paid trialing, no card: needs action before the trial ends.
		"cus_new_3": {email: "three@example.com", subs: []subState{
			{id: "sub_new_3", status: "trialing", unitAmount: 2500},
		}},
	}
	mon, _ := setup(t, customers, map[string]string{
		"cus_old_0": "cus_new_0",
		"cus_old_1": "cus_new_1",
		"cus_old_2": "cus_new_2",
		"cus_old_3": "cus_new_3",
	})

	rep, err := mon.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, rep.CustomersChecked)
	assert.Equal(t, 0, rep.LookupFailures)
	assert.Equal(t, 1, rep.WithPaymentMethod)
	assert.Equal(t, 3, rep.WithoutPaymentMethod)

	assert.Equal(t, 2, rep.Subscriptions.ActivePaid, "active + trialing paid")
	assert.Equal(t, 1, rep.Subscriptions.ActiveFree)
	assert.Equal(t, 1, rep.Subscriptions.IncompletePaid)
	assert.Equal(t, 0, rep.Subscriptions.IncompleteFree)

	require.Len(t, rep.NeedsAction, 2)
	// Customers walk in sorted old-ID order, so the output is deterministic.
	assert.Equal(t, "cus_old_1", rep.NeedsAction[0].OldCustomerID)
	assert.Equal(t, "sub_new_1", rep.NeedsAction[0].SubscriptionID)
	assert.Equal(t, "one@example.com", rep.NeedsAction[0].Email)
	assert.Equal(t, "cus_old_3", rep.NeedsAction[1].OldCustomerID)
}

func TestMonitor_LookupFailureIsIsolated(t *testing.T) {
	customers := map[string]accountState{
		"cus_new_0": {email: "zero@example.com", paymentMethod: "pm_1", subs: []subState{
			{id: "sub_new_0", status: "active", unitAmount: 1500},
		}},
		// cus_new_1 is absent from the fake account: lookup 404s.
	}
	mon, _ := setup(t, customers, map[string]string{
		"cus_old_0": "cus_new_0",
		"cus_old_1": "cus_new_1",
	})

	rep, err := mon.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rep.CustomersChecked)
	assert.Equal(t, 1, rep.LookupFailures)
	assert.Equal(t, 1, rep.WithPaymentMethod)
}

func TestMonitor_WritesReportAndCSV(t *testing.T) {
	customers := map[string]accountState{
		"cus_new_0": {email: "zero@example.com", subs: []subState{
			{id: "sub_new_0", status: "active", unitAmount: 1500},
		}},
	}
	mon, dir := setup(t, customers, map[string]string{"cus_old_0": "cus_new_0"})

	rep, err := mon.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.NeedsAction, 1)

	var fromDisk monitor.Report
	require.NoError(t, report.ReadJSON(monitor.ReportPath(dir, mon.RunID()), &fromDisk))
	assert.Equal(t, mon.RunID(), fromDisk.RunID)
	assert.Equal(t, 1, fromDisk.CustomersChecked)

	csvBytes, err := os.ReadFile(monitor.CSVPath(dir, mon.RunID()))
	require.NoError(t, err)
	csv := string(csvBytes)
	assert.Contains(t, csv, "zero@example.com")
	assert.Contains(t, csv, "sub_new_0")
}

func TestMonitor_EmptyMappingIsClean(t *testing.T) {
	mon, _ := setup(t, nil, nil)

	rep, err := mon.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.CustomersChecked)
	assert.Empty(t, rep.NeedsAction)
}

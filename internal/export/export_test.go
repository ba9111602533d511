package export_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mit17092001/Stripe-migration-plan/internal/domain"
	"github.com/Mit17092001/Stripe-migration-plan/internal/export"
	"github.com/Mit17092001/Stripe-migration-plan/internal/report"
	"github.com/Mit17092001/Stripe-migration-plan/internal/stripe"
)

// fakeSource serves paginated list endpoints over fixed entity counts. IDs
// are "<prefix>_<n>" so cursors sort naturally within a test's sizes.
type fakeSource struct {
	server   *httptest.Server
	products int
	prices   int
	// customers fail when set, to exercise the all-or-nothing contract.
	failCustomers bool
	customers     int
	// subscription n gets statuses[n % len(statuses)].
	statuses []string
}

func (fs *fakeSource) start(t *testing.T) {
	t.Helper()
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit < 1 {
			limit = stripe.MaxPageSize
		}
		after := r.URL.Query().Get("starting_after")

		switch r.URL.Path {
		case "/v1/products":
			fs.page(w, "prod", fs.products, limit, after, func(id string, _ int) string {
				return fmt.Sprintf(`{"id":"%s","name":"Product %s"}`, id, id)
			})
		case "/v1/prices":
			fs.page(w, "price", fs.prices, limit, after, func(id string, _ int) string {
				return fmt.Sprintf(`{"id":"%s","product":"prod_0","currency":"usd","unit_amount":1000}`, id)
			})
		case "/v1/customers":
			if fs.failCustomers {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"error":{"message":"boom"}}`)
				return
			}
			fs.page(w, "cus", fs.customers, limit, after, func(id string, _ int) string {
				return fmt.Sprintf(`{"id":"%s","email":"%s@example.com"}`, id, id)
			})
		case "/v1/subscriptions":
			fs.page(w, "sub", len(fs.statuses), limit, after, func(id string, n int) string {
				return fmt.Sprintf(`{"id":"%s","customer":"cus_0","status":"%s","items":{"data":[]}}`,
					id, fs.statuses[n])
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fs.server.Close)
}

// page emits one cursor page of total entities rendered by render.
func (fs *fakeSource) page(w http.ResponseWriter, prefix string, total, limit int, after string, render func(id string, n int) string) {
	start := 0
	if after != "" {
		n, _ := strconv.Atoi(strings.TrimPrefix(after, prefix+"_"))
		start = n + 1
	}
	end := min(start+limit, total)

	entries := make([]string, 0, end-start)
	for n := start; n < end; n++ {
		entries = append(entries, render(fmt.Sprintf("%s_%d", prefix, n), n))
	}
	fmt.Fprintf(w, `{"data":[%s],"has_more":%t}`, strings.Join(entries, ","), end < total)
}

func newExporter(t *testing.T, fs *fakeSource, pageSize int) (*export.Exporter, string) {
	t.Helper()
	fs.start(t)
	dir := t.TempDir()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client := stripe.New("sk_test_source", "source", 1000, 1000, logger)
	client.SetBaseURL(fs.server.URL)

	return export.New(client, dir, pageSize, logger, nil), dir
}

func TestExporter_ProductsFollowsCursor(t *testing.T) {
	// 7 products over page size 3 forces three pages.
	e, dir := newExporter(t, &fakeSource{products: 7, prices: 2}, 3)

	result, err := e.ExportProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, result.Count)

	var dataset export.ProductDataset
	require.NoError(t, report.ReadJSON(export.ProductsPath(dir), &dataset))
	require.Len(t, dataset.Products, 7)
	require.Len(t, dataset.Prices, 2)
	assert.Equal(t, "prod_0", dataset.Products[0].ID)
	assert.Equal(t, "prod_6", dataset.Products[6].ID)
	assert.NotEmpty(t, dataset.SnapshotID)
	assert.False(t, dataset.ExportedAt.IsZero())
}

func TestExporter_SubscriptionsStatusFilter(t *testing.T) {
	e, dir := newExporter(t, &fakeSource{
		statuses: []string{"active", "canceled", "trialing", "past_due", "canceled", "incomplete"},
	}, 100)

	result, err := e.ExportSubscriptions(context.Background(), []string{"active", "trialing", "past_due"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)

	var subs []domain.Subscription
	require.NoError(t, report.ReadJSON(export.SubscriptionsPath(dir), &subs))
	require.Len(t, subs, 3)
	for _, s := range subs {
		assert.Contains(t, []string{"active", "trialing", "past_due"}, s.Status)
	}
}

func TestExporter_FailedExportWritesNothing(t *testing.T) {
	e, dir := newExporter(t, &fakeSource{failCustomers: true}, 100)

	_, err := e.ExportCustomers(context.Background())
	require.Error(t, err)

	_, statErr := os.Stat(export.CustomersPath(dir))
	assert.True(t, os.IsNotExist(statErr), "no partial dataset on failure")
}

func TestExporter_ExportAll(t *testing.T) {
	e, dir := newExporter(t, &fakeSource{
		products:  2,
		prices:    3,
		customers: 4,
		statuses:  []string{"active", "active"},
	}, 100)

	require.NoError(t, e.ExportAll(context.Background(), []string{"active"}))

	for _, path := range []string{
		export.ProductsPath(dir),
		export.CustomersPath(dir),
		export.SubscriptionsPath(dir),
	} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
}

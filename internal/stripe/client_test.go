package stripe

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/Mit17092001/Stripe-migration-plan/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client := New("sk_test_123", "source", 1000, 1000, logger)
	client.SetBaseURL(server.URL)
	client.http = server.Client()

	return client, server
}

func TestClient_ListProducts(t *testing.T) {
	var gotQuery string
	var gotAuth string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[{"id":"prod_1","name":"Basic"},{"id":"prod_2","name":"Pro"}],"has_more":true}`))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()

	page, err := client.ListProducts(context.Background(), ListOptions{Limit: 2, StartingAfter: "prod_0"})
	if err != nil {
		t.Fatalf("ListProducts() failed: %v", err)
	}

	if len(page.Data) != 2 {
		t.Errorf("got %d products, want 2", len(page.Data))
	}
	if !page.HasMore {
		t.Error("HasMore = false, want true")
	}
	if page.Data[0].ID != "prod_1" {
		t.Errorf("first product id = %s, want prod_1", page.Data[0].ID)
	}

	if gotAuth != "Bearer sk_test_123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	for _, want := range []string{"limit=2", "starting_after=prod_0"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestClient_ListPricesExpandsTiers(t *testing.T) {
	var gotQuery string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":[],"has_more":false}`))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()

	if _, err := client.ListPrices(context.Background(), ListOptions{Limit: 100}); err != nil {
		t.Fatalf("ListPrices() failed: %v", err)
	}
	if !strings.Contains(gotQuery, "expand") || !strings.Contains(gotQuery, "data.tiers") {
		t.Errorf("query %q should expand data.tiers", gotQuery)
	}
}

func TestClient_CreateCustomer(t *testing.T) {
	var gotKey, gotContentType, gotBody string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{"id":"cus_new_1"}`))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()

	params := CustomerParams{
		Email:    "a@b.co",
		Name:     "Ada",
		Metadata: map[string]string{"migrated_from": "cus_old_1"},
	}
	newID, err := client.CreateCustomer(context.Background(), params, IdempotencyKey("customers", "cus_old_1"))
	if err != nil {
		t.Fatalf("CreateCustomer() failed: %v", err)
	}

	if newID != "cus_new_1" {
		t.Errorf("newID = %s, want cus_new_1", newID)
	}
	if gotKey != "migrate:customers:cus_old_1" {
		t.Errorf("Idempotency-Key = %q", gotKey)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	for _, want := range []string{"email=a%40b.co", "name=Ada", "metadata%5Bmigrated_from%5D=cus_old_1"} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("body %q missing %q", gotBody, want)
		}
	}
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    error
	}{
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error":{"message":"Too many requests"}}`,
			wantErr:    errors.ErrRateLimited,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			body:       `{"error":{"message":"No such customer"}}`,
			wantErr:    errors.ErrNotFound,
		},
		{
			name:       "validation",
			statusCode: http.StatusBadRequest,
			body:       `{"error":{"message":"Missing required param: name"}}`,
			wantErr:    errors.ErrValidation,
		},
		{
			name:       "bad key",
			statusCode: http.StatusUnauthorized,
			body:       `{"error":{"message":"Invalid API Key provided"}}`,
			wantErr:    errors.ErrSetup,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			body:       ``,
			wantErr:    errors.ErrAPI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}

			client, server := newTestClient(t, handler)
			defer server.Close()

			_, err := client.GetCustomer(context.Background(), "cus_x")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_CreateSetupSession(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("mode") != "setup" {
			t.Errorf("mode = %q, want setup", r.PostForm.Get("mode"))
		}
		if r.PostForm.Get("customer") != "cus_new_1" {
			t.Errorf("customer = %q", r.PostForm.Get("customer"))
		}
		w.Write([]byte(`{"id":"cs_1","url":"https://checkout.example/s/cs_1","expires_at":1700000000}`))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()

	session, err := client.CreateSetupSession(context.Background(), SetupSessionParams{
		Customer:   "cus_new_1",
		SuccessURL: "https://app.example/ok",
		CancelURL:  "https://app.example/requery",
	})
	if err != nil {
		t.Fatalf("CreateSetupSession() failed: %v", err)
	}
	if session.URL == "" || session.ID != "cs_1" {
		t.Errorf("unexpected session: %+v", session)
	}
	if session.Expiry().IsZero() {
		t.Error("Expiry() should be set")
	}
}

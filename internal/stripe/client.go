// Package stripe is a minimal, rate-limited client for the two Stripe
// accounts a migration touches. It covers only the surface the pipeline
// needs: paginated lists, entity creation, setup sessions, and the customer
// reads the monitor performs.
package stripe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"encoding/json/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/errors"
	"github.com/Mit17092001/Stripe-migration-plan/internal/ratelimit"
)

const (
	defaultBaseURL = "https://api.stripe.com"
	defaultTimeout = 30 * time.Second

	// Stripe caps list pages at 100.
	MaxPageSize = 100
)

// Client is a rate-limited client for one Stripe account.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger

	apiKey  string
	baseURL string
	// role names the account in logs and keys its limiter ("source"/"target").
	role string
}

// New creates a client for one account. rps/burst throttle outbound calls so
// a long export or migration stays inside the account's rate limit.
func New(apiKey, role string, rps float64, burst int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: ratelimit.New(rps, burst),
		logger:  logger,
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		role:    role,
	}
}

// SetBaseURL overrides the API host (tests).
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// doGet executes a rate-limited GET and returns the response body.
func (c *Client) doGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

// doPost executes a rate-limited form-encoded POST and returns the response
// body. A non-empty idempotencyKey makes the create safe to retry: Stripe
// replays the original response instead of creating a duplicate.
func (c *Client) doPost(ctx context.Context, path string, form url.Values, idempotencyKey string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, form, idempotencyKey)
}

func (c *Client) do(ctx context.Context, method, path string, query, form url.Values, idempotencyKey string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, c.role); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "rate limit wait")
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create request")
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	c.logger.Debug("stripe request",
		"account", c.role,
		"method", method,
		"path", path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAPI, "execute request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAPI, "read response")
	}

	if resp.StatusCode == http.StatusOK {
		return respBody, nil
	}
	return nil, c.statusError(resp.StatusCode, respBody)
}

// errorEnvelope is Stripe's error body.
type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// statusError maps an API failure onto the domain error taxonomy.
func (c *Client) statusError(status int, body []byte) error {
	msg := "unexpected response"
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		msg = env.Error.Message
	}

	switch {
	case status == http.StatusNotFound:
		return errors.NotFound(msg)
	case status == http.StatusTooManyRequests:
		return errors.RateLimited(msg)
	case status == http.StatusBadRequest, status == http.StatusPaymentRequired,
		status == http.StatusForbidden, status == http.StatusConflict:
		return errors.Validation(msg)
	case status == http.StatusUnauthorized:
		return errors.Setup("invalid API key: " + msg)
	case status >= 500:
		return errors.APIf("server error (%d): %s", status, msg)
	default:
		return errors.APIf("unexpected status %d: %s", status, msg)
	}
}

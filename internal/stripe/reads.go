package stripe

import (
	"context"
	"time"

	"encoding/json/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/errors"
)

// CustomerAccount is the slice of a customer read the monitor needs.
type CustomerAccount struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	InvoiceSettings struct {
		DefaultPaymentMethod string `json:"default_payment_method"`
	} `json:"invoice_settings"`
}

// HasPaymentMethod reports whether the customer has a default payment
// instrument on file.
func (c *CustomerAccount) HasPaymentMethod() bool {
	return c.InvoiceSettings.DefaultPaymentMethod != ""
}

// GetCustomer retrieves a customer from this account.
func (c *Client) GetCustomer(ctx context.Context, id string) (*CustomerAccount, error) {
	body, err := c.doGet(ctx, "/v1/customers/"+id, nil)
	if err != nil {
		return nil, err
	}

	var acct CustomerAccount
	if err := json.Unmarshal(body, &acct); err != nil {
		return nil, errors.Wrap(err, errors.CodeAPI, "parse customer response")
	}
	return &acct, nil
}

// SetupSession is a one-time payment-setup interaction. The URL is handed to
// the customer; the session expires at ExpiresAt.
type SetupSession struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

// Expiry returns the session expiry as a time.
func (s *SetupSession) Expiry() time.Time {
	return time.Unix(s.ExpiresAt, 0).UTC()
}

// CreateSetupSession requests a setup-mode checkout session. Sessions are
// short-lived by design; callers regenerate rather than reuse them.
func (c *Client) CreateSetupSession(ctx context.Context, params SetupSessionParams) (*SetupSession, error) {
	body, err := c.doPost(ctx, "/v1/checkout/sessions", params.Encode(), "")
	if err != nil {
		return nil, err
	}

	var session SetupSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, errors.Wrap(err, errors.CodeAPI, "parse session response")
	}
	if session.URL == "" {
		return nil, errors.API("session response missing url")
	}
	return &session, nil
}

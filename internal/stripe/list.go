package stripe

import (
	"context"
	"net/url"
	"strconv"

	"encoding/json/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/domain"
	"github.com/Mit17092001/Stripe-migration-plan/internal/errors"
)

// ListOptions control one page request. StartingAfter is the
// "continue after identifier X" cursor.
type ListOptions struct {
	Limit         int
	StartingAfter string
	// Status filters subscription lists ("all" disables the API default of
	// excluding canceled subscriptions).
	Status string
	// Customer scopes subscription lists to one customer.
	Customer string
	Expand   []string
}

// Page is one page of a list response.
type Page[T any] struct {
	Data    []T
	HasMore bool
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.StartingAfter != "" {
		q.Set("starting_after", o.StartingAfter)
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.Customer != "" {
		q.Set("customer", o.Customer)
	}
	for _, e := range o.Expand {
		q.Add("expand[]", e)
	}
	return q
}

func listPage[T any](ctx context.Context, c *Client, path string, opts ListOptions) (*Page[T], error) {
	body, err := c.doGet(ctx, path, opts.query())
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data    []T  `json:"data"`
		HasMore bool `json:"has_more"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, errors.CodeAPI, "parse list response")
	}
	return &Page[T]{Data: raw.Data, HasMore: raw.HasMore}, nil
}

// ListProducts fetches one page of products.
func (c *Client) ListProducts(ctx context.Context, opts ListOptions) (*Page[domain.Product], error) {
	return listPage[domain.Product](ctx, c, "/v1/products", opts)
}

// ListPrices fetches one page of prices. Tier tables are only present when
// expanded, so the expansion is always requested.
func (c *Client) ListPrices(ctx context.Context, opts ListOptions) (*Page[domain.Price], error) {
	opts.Expand = append(opts.Expand, "data.tiers")
	return listPage[domain.Price](ctx, c, "/v1/prices", opts)
}

// ListCustomers fetches one page of customers.
func (c *Client) ListCustomers(ctx context.Context, opts ListOptions) (*Page[domain.Customer], error) {
	return listPage[domain.Customer](ctx, c, "/v1/customers", opts)
}

// ListSubscriptions fetches one page of subscriptions.
func (c *Client) ListSubscriptions(ctx context.Context, opts ListOptions) (*Page[domain.Subscription], error) {
	return listPage[domain.Subscription](ctx, c, "/v1/subscriptions", opts)
}

// ListCustomerSubscriptions returns every subscription of one customer,
// following the cursor until exhausted.
func (c *Client) ListCustomerSubscriptions(ctx context.Context, customerID string) ([]domain.Subscription, error) {
	var all []domain.Subscription
	opts := ListOptions{Limit: MaxPageSize, Status: "all", Customer: customerID}

	for {
		page, err := c.ListSubscriptions(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.HasMore || len(page.Data) == 0 {
			return all, nil
		}
		opts.StartingAfter = page.Data[len(page.Data)-1].ID
	}
}

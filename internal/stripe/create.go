package stripe

import (
	"context"
	"net/url"

	"encoding/json/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/errors"
)

// encoder is implemented by all creation payloads.
type encoder interface {
	Encode() url.Values
}

// IdempotencyKey derives the deterministic idempotency key for creating the
// entity migrated from oldID. An interrupted create retried on a later run
// then replays the original response instead of creating a duplicate.
func IdempotencyKey(kind, oldID string) string {
	return "migrate:" + kind + ":" + oldID
}

type createdObject struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) create(ctx context.Context, path string, params encoder, idempotencyKey string) (*createdObject, error) {
	body, err := c.doPost(ctx, path, params.Encode(), idempotencyKey)
	if err != nil {
		return nil, err
	}

	var obj createdObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, errors.Wrap(err, errors.CodeAPI, "parse create response")
	}
	if obj.ID == "" {
		return nil, errors.API("create response missing id")
	}
	return &obj, nil
}

// CreateProduct creates a product and returns its new ID.
func (c *Client) CreateProduct(ctx context.Context, params ProductParams, idempotencyKey string) (string, error) {
	obj, err := c.create(ctx, "/v1/products", params, idempotencyKey)
	if err != nil {
		return "", err
	}
	return obj.ID, nil
}

// CreatePrice creates a price and returns its new ID.
func (c *Client) CreatePrice(ctx context.Context, params PriceParams, idempotencyKey string) (string, error) {
	obj, err := c.create(ctx, "/v1/prices", params, idempotencyKey)
	if err != nil {
		return "", err
	}
	return obj.ID, nil
}

// CreateCustomer creates a customer and returns its new ID.
func (c *Client) CreateCustomer(ctx context.Context, params CustomerParams, idempotencyKey string) (string, error) {
	obj, err := c.create(ctx, "/v1/customers", params, idempotencyKey)
	if err != nil {
		return "", err
	}
	return obj.ID, nil
}

// CreatedSubscription is the slice of a creation response the migrator needs.
type CreatedSubscription struct {
	ID     string
	Status string
}

// CreateSubscription creates a subscription and returns its new ID and
// initial status.
func (c *Client) CreateSubscription(ctx context.Context, params SubscriptionParams, idempotencyKey string) (*CreatedSubscription, error) {
	obj, err := c.create(ctx, "/v1/subscriptions", params, idempotencyKey)
	if err != nil {
		return nil, err
	}
	return &CreatedSubscription{ID: obj.ID, Status: obj.Status}, nil
}

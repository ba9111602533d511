package stripe

import (
	"testing"

	"github.com/Mit17092001/Stripe-migration-plan/internal/domain"
)

func int64ptr(v int64) *int64 { return &v }

func TestPriceParams_EncodeSanitizesNullFields(t *testing.T) {
	amount := int64(1500)
	params := PriceParams{
		Product:    "prod_new",
		Currency:   "usd",
		UnitAmount: &amount,
		Recurring: &RecurringParams{
			Interval: "month",
			// TrialPeriodDays and AggregateUsage were explicit nulls at the
			// source; they must be absent from the form, not sent as null.
		},
	}

	form := params.Encode()

	if got := form.Get("recurring[interval]"); got != "month" {
		t.Errorf("recurring[interval] = %q", got)
	}
	if _, present := form["recurring[trial_period_days]"]; present {
		t.Error("trial_period_days should be omitted when nil")
	}
	if _, present := form["recurring[aggregate_usage]"]; present {
		t.Error("aggregate_usage should be omitted when nil")
	}
	if got := form.Get("unit_amount"); got != "1500" {
		t.Errorf("unit_amount = %q", got)
	}
}

func TestPriceParams_EncodeTiers(t *testing.T) {
	params := PriceParams{
		Product:       "prod_new",
		Currency:      "usd",
		BillingScheme: "tiered",
		TiersMode:     "graduated",
		Tiers: []domain.PriceTier{
			{UpTo: int64ptr(10), UnitAmount: int64ptr(500)},
			{UpTo: nil, UnitAmount: int64ptr(300), FlatAmount: int64ptr(1000)},
		},
	}

	form := params.Encode()

	if got := form.Get("tiers[0][up_to]"); got != "10" {
		t.Errorf("tiers[0][up_to] = %q", got)
	}
	if got := form.Get("tiers[1][up_to]"); got != "inf" {
		t.Errorf("tiers[1][up_to] = %q, want inf for catch-all tier", got)
	}
	if got := form.Get("tiers[1][flat_amount]"); got != "1000" {
		t.Errorf("tiers[1][flat_amount] = %q", got)
	}
	if got := form.Get("tiers_mode"); got != "graduated" {
		t.Errorf("tiers_mode = %q", got)
	}
	if _, present := form["unit_amount"]; present {
		t.Error("tiered price should not carry a flat unit_amount")
	}
}

func TestSubscriptionParams_Encode(t *testing.T) {
	anchor := int64(1800000000)
	params := SubscriptionParams{
		Customer: "cus_new",
		Items: []SubscriptionItemParams{
			{Price: "price_new_1", Quantity: 2},
			{Price: "price_new_2"},
		},
		BillingCycleAnchor: &anchor,
		PaymentBehavior:    "default_incomplete",
		ProrationBehavior:  "none",
	}

	form := params.Encode()

	if got := form.Get("items[0][price]"); got != "price_new_1" {
		t.Errorf("items[0][price] = %q", got)
	}
	if got := form.Get("items[0][quantity]"); got != "2" {
		t.Errorf("items[0][quantity] = %q", got)
	}
	if _, present := form["items[1][quantity]"]; present {
		t.Error("zero quantity should be omitted")
	}
	if got := form.Get("billing_cycle_anchor"); got != "1800000000" {
		t.Errorf("billing_cycle_anchor = %q", got)
	}
	if got := form.Get("payment_behavior"); got != "default_incomplete" {
		t.Errorf("payment_behavior = %q", got)
	}
}

func TestSubscriptionParams_EncodeTrialEndNow(t *testing.T) {
	trialEnd := int64(1900000000)
	params := SubscriptionParams{
		Customer:    "cus_new",
		Items:       []SubscriptionItemParams{{Price: "price_new"}},
		TrialEnd:    &trialEnd,
		TrialEndNow: true,
	}

	if got := params.Encode().Get("trial_end"); got != "now" {
		t.Errorf("trial_end = %q, want now when TrialEndNow is set", got)
	}

	params.TrialEndNow = false
	if got := params.Encode().Get("trial_end"); got != "1900000000" {
		t.Errorf("trial_end = %q", got)
	}
}

func TestCustomerParams_EncodeAddress(t *testing.T) {
	params := CustomerParams{
		Name: "Ada",
		Address: &domain.Address{
			Line1:      "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		Shipping: &domain.Shipping{
			Name:    "Ada",
			Address: &domain.Address{Line1: "2 Side St"},
		},
	}

	form := params.Encode()

	if got := form.Get("address[line1]"); got != "1 Main St" {
		t.Errorf("address[line1] = %q", got)
	}
	if _, present := form["address[line2]"]; present {
		t.Error("empty address fields should be omitted")
	}
	if got := form.Get("shipping[address][line1]"); got != "2 Side St" {
		t.Errorf("shipping[address][line1] = %q", got)
	}
}

package stripe

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Mit17092001/Stripe-migration-plan/internal/domain"
)

// Creation payloads. Each Encode produces the form body the API expects.
// Optional fields are pointers and are omitted entirely when nil: the API
// treats "absent" and "null" differently, and rejects explicit nulls for
// several of these fields.

// ProductParams is a product creation payload.
type ProductParams struct {
	Name        string
	Description string
	Active      *bool
	Metadata    map[string]string
}

// Encode returns the form body.
func (p ProductParams) Encode() url.Values {
	v := url.Values{}
	v.Set("name", p.Name)
	if p.Description != "" {
		v.Set("description", p.Description)
	}
	if p.Active != nil {
		v.Set("active", strconv.FormatBool(*p.Active))
	}
	encodeMetadata(v, p.Metadata)
	return v
}

// RecurringParams carries a price's recurring-billing fields.
// TrialPeriodDays and AggregateUsage stay out of the form when nil; this is
// the sanitize step for prices.
type RecurringParams struct {
	Interval        string
	IntervalCount   int64
	UsageType       string
	TrialPeriodDays *int64
	AggregateUsage  *string
}

// PriceParams is a price creation payload.
type PriceParams struct {
	Product       string
	Currency      string
	UnitAmount    *int64
	Nickname      string
	TaxBehavior   string
	BillingScheme string
	TiersMode     string
	Tiers         []domain.PriceTier
	Recurring     *RecurringParams
	Metadata      map[string]string
}

// Encode returns the form body.
func (p PriceParams) Encode() url.Values {
	v := url.Values{}
	v.Set("product", p.Product)
	v.Set("currency", p.Currency)
	if p.UnitAmount != nil {
		v.Set("unit_amount", strconv.FormatInt(*p.UnitAmount, 10))
	}
	if p.Nickname != "" {
		v.Set("nickname", p.Nickname)
	}
	if p.TaxBehavior != "" {
		v.Set("tax_behavior", p.TaxBehavior)
	}
	if p.BillingScheme != "" {
		v.Set("billing_scheme", p.BillingScheme)
	}
	if p.TiersMode != "" {
		v.Set("tiers_mode", p.TiersMode)
	}
	for i, tier := range p.Tiers {
		prefix := fmt.Sprintf("tiers[%d]", i)
		if tier.UpTo != nil {
			v.Set(prefix+"[up_to]", strconv.FormatInt(*tier.UpTo, 10))
		} else {
			v.Set(prefix+"[up_to]", "inf")
		}
		if tier.UnitAmount != nil {
			v.Set(prefix+"[unit_amount]", strconv.FormatInt(*tier.UnitAmount, 10))
		}
		if tier.UnitAmountDecimal != "" {
			v.Set(prefix+"[unit_amount_decimal]", tier.UnitAmountDecimal)
		}
		if tier.FlatAmount != nil {
			v.Set(prefix+"[flat_amount]", strconv.FormatInt(*tier.FlatAmount, 10))
		}
		if tier.FlatAmountDecimal != "" {
			v.Set(prefix+"[flat_amount_decimal]", tier.FlatAmountDecimal)
		}
	}
	if r := p.Recurring; r != nil {
		v.Set("recurring[interval]", r.Interval)
		if r.IntervalCount > 0 {
			v.Set("recurring[interval_count]", strconv.FormatInt(r.IntervalCount, 10))
		}
		if r.UsageType != "" {
			v.Set("recurring[usage_type]", r.UsageType)
		}
		if r.TrialPeriodDays != nil {
			v.Set("recurring[trial_period_days]", strconv.FormatInt(*r.TrialPeriodDays, 10))
		}
		if r.AggregateUsage != nil {
			v.Set("recurring[aggregate_usage]", *r.AggregateUsage)
		}
	}
	encodeMetadata(v, p.Metadata)
	return v
}

// CustomerParams is a customer creation payload.
type CustomerParams struct {
	Email       string
	Name        string
	Phone       string
	Description string
	Address     *domain.Address
	Shipping    *domain.Shipping
	TaxExempt   string
	Metadata    map[string]string
}

// Encode returns the form body.
func (p CustomerParams) Encode() url.Values {
	v := url.Values{}
	if p.Email != "" {
		v.Set("email", p.Email)
	}
	if p.Name != "" {
		v.Set("name", p.Name)
	}
	if p.Phone != "" {
		v.Set("phone", p.Phone)
	}
	if p.Description != "" {
		v.Set("description", p.Description)
	}
	encodeAddress(v, "address", p.Address)
	if s := p.Shipping; s != nil {
		if s.Name != "" {
			v.Set("shipping[name]", s.Name)
		}
		if s.Phone != "" {
			v.Set("shipping[phone]", s.Phone)
		}
		encodeAddress(v, "shipping[address]", s.Address)
	}
	if p.TaxExempt != "" {
		v.Set("tax_exempt", p.TaxExempt)
	}
	encodeMetadata(v, p.Metadata)
	return v
}

// SubscriptionItemParams is one line item of a subscription creation payload.
type SubscriptionItemParams struct {
	Price    string
	Quantity int64
}

// SubscriptionParams is a subscription creation payload.
// TrialEndNow takes precedence over TrialEnd and sends the literal "now",
// which activates the subscription immediately.
type SubscriptionParams struct {
	Customer           string
	Items              []SubscriptionItemParams
	TrialEnd           *int64
	TrialEndNow        bool
	BillingCycleAnchor *int64
	PaymentBehavior    string
	ProrationBehavior  string
	CancelAtPeriodEnd  bool
	Metadata           map[string]string
}

// Encode returns the form body.
func (p SubscriptionParams) Encode() url.Values {
	v := url.Values{}
	v.Set("customer", p.Customer)
	for i, item := range p.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		v.Set(prefix+"[price]", item.Price)
		if item.Quantity > 0 {
			v.Set(prefix+"[quantity]", strconv.FormatInt(item.Quantity, 10))
		}
	}
	switch {
	case p.TrialEndNow:
		v.Set("trial_end", "now")
	case p.TrialEnd != nil:
		v.Set("trial_end", strconv.FormatInt(*p.TrialEnd, 10))
	}
	if p.BillingCycleAnchor != nil {
		v.Set("billing_cycle_anchor", strconv.FormatInt(*p.BillingCycleAnchor, 10))
	}
	if p.PaymentBehavior != "" {
		v.Set("payment_behavior", p.PaymentBehavior)
	}
	if p.ProrationBehavior != "" {
		v.Set("proration_behavior", p.ProrationBehavior)
	}
	if p.CancelAtPeriodEnd {
		v.Set("cancel_at_period_end", "true")
	}
	encodeMetadata(v, p.Metadata)
	return v
}

// SetupSessionParams is a setup-mode checkout session creation payload.
type SetupSessionParams struct {
	Customer   string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Encode returns the form body.
func (p SetupSessionParams) Encode() url.Values {
	v := url.Values{}
	v.Set("mode", "setup")
	v.Set("customer", p.Customer)
	v.Set("payment_method_types[0]", "card")
	if p.SuccessURL != "" {
		v.Set("success_url", p.SuccessURL)
	}
	if p.CancelURL != "" {
		v.Set("cancel_url", p.CancelURL)
	}
	encodeMetadata(v, p.Metadata)
	return v
}

func encodeMetadata(v url.Values, metadata map[string]string) {
	for key, value := range metadata {
		v.Set("metadata["+key+"]", value)
	}
}

func encodeAddress(v url.Values, prefix string, a *domain.Address) {
	if a == nil {
		return
	}
	fields := map[string]string{
		"line1":       a.Line1,
		"line2":       a.Line2,
		"city":        a.City,
		"state":       a.State,
		"postal_code": a.PostalCode,
		"country":     a.Country,
	}
	for key, value := range fields {
		if value != "" {
			v.Set(prefix+"["+key+"]", value)
		}
	}
}

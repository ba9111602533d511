package migrate

import (
	"time"

	"github.com/Mit17092001/Stripe-migration-plan/internal/domain"
	"github.com/Mit17092001/Stripe-migration-plan/internal/errors"
	"github.com/Mit17092001/Stripe-migration-plan/internal/mapstore"
	"github.com/Mit17092001/Stripe-migration-plan/internal/stripe"
)

// metadataKeyOldID is stamped into every created entity's metadata so a
// target-side object can be traced back to its source-account original.
const metadataKeyOldID = "migrated_from"

// stampOldID copies metadata and adds the traceability key.
func stampOldID(metadata map[string]string, oldID string) map[string]string {
	out := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		out[k] = v
	}
	out[metadataKeyOldID] = oldID
	return out
}

// transformProduct builds the creation payload for a product.
func transformProduct(p domain.Product) stripe.ProductParams {
	active := p.Active
	return stripe.ProductParams{
		Name:        p.Name,
		Description: p.Description,
		Active:      &active,
		Metadata:    stampOldID(p.Metadata, p.ID),
	}
}

// transformPrice builds the creation payload for a price, resolving its
// product reference through the map. An unresolved product is a
// dependency-not-ready condition, not a failure.
func transformPrice(p domain.Price, maps *mapstore.Map) (stripe.PriceParams, error) {
	newProductID, ok := maps.Get(mapstore.KindProducts, p.Product)
	if !ok {
		return stripe.PriceParams{}, errors.DependencyNotReadyf("product %s not yet migrated", p.Product)
	}

	params := stripe.PriceParams{
		Product:     newProductID,
		Currency:    p.Currency,
		Nickname:    p.Nickname,
		TaxBehavior: p.TaxBehavior,
		Metadata:    stampOldID(p.Metadata, p.ID),
	}

	if p.IsTiered() {
		// Carry the tiering mode and tier table verbatim.
		params.BillingScheme = domain.BillingSchemeTiered
		params.TiersMode = p.TiersMode
		params.Tiers = p.Tiers
	} else {
		params.UnitAmount = p.UnitAmount
	}

	if r := p.Recurring; r != nil {
		params.Recurring = &stripe.RecurringParams{
			Interval:        r.Interval,
			IntervalCount:   r.IntervalCount,
			UsageType:       r.UsageType,
			TrialPeriodDays: r.TrialPeriodDays,
			AggregateUsage:  r.AggregateUsage,
		}
	}

	return params, nil
}

// transformCustomer builds the creation payload for a customer.
func transformCustomer(c domain.Customer) stripe.CustomerParams {
	return stripe.CustomerParams{
		Email:       c.Email,
		Name:        c.Name,
		Phone:       c.Phone,
		Description: c.Description,
		Address:     c.Address,
		Shipping:    c.Shipping,
		TaxExempt:   c.TaxExempt,
		Metadata:    stampOldID(c.Metadata, c.ID),
	}
}

// transformSubscription builds the creation payload for a subscription,
// resolving the customer and every line-item price through the map.
//
// Free subscriptions (every line item at zero) activate immediately. Paid
// ones are created pending payment, preserving a still-future trial end, and
// follow the billing-cycle rule: a future anchor passes through unchanged; a
// past anchor with a still-future period end turns that period end into the
// trial end so the customer is not charged early. When neither is in the
// future the billing cycle resets to now - anchorReset reports that case so
// the run can flag it instead of silently accepting the reset.
func transformSubscription(s domain.Subscription, maps *mapstore.Map, now time.Time) (params stripe.SubscriptionParams, anchorReset bool, err error) {
	newCustomerID, ok := maps.Get(mapstore.KindCustomers, s.Customer)
	if !ok {
		return params, false, errors.DependencyNotReadyf("customer %s not yet migrated", s.Customer)
	}

	items := make([]stripe.SubscriptionItemParams, 0, len(s.Items.Data))
	for _, item := range s.Items.Data {
		newPriceID, ok := maps.Get(mapstore.KindPrices, item.Price.ID)
		if !ok {
			return params, false, errors.DependencyNotReadyf("price %s not yet migrated", item.Price.ID)
		}
		items = append(items, stripe.SubscriptionItemParams{
			Price:    newPriceID,
			Quantity: item.Quantity,
		})
	}

	params = stripe.SubscriptionParams{
		Customer:          newCustomerID,
		Items:             items,
		ProrationBehavior: "none",
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		Metadata:          stampOldID(s.Metadata, s.ID),
	}

	if s.IsFree() {
		// No payment instrument needed; activate immediately.
		params.TrialEndNow = true
		return params, false, nil
	}

	params.PaymentBehavior = "default_incomplete"

	nowUnix := now.Unix()
	if s.TrialEnd != nil && *s.TrialEnd > nowUnix {
		trialEnd := *s.TrialEnd
		params.TrialEnd = &trialEnd
	}

	switch {
	case s.BillingCycleAnchor > nowUnix:
		// Future anchor passes through so the billing date is unaffected.
		anchor := s.BillingCycleAnchor
		params.BillingCycleAnchor = &anchor
	case s.CurrentPeriodEnd > nowUnix:
		// The anchor has passed and cannot be backdated. Treating the rest
		// of the paid-up period as trial keeps the customer from being
		// charged early; a known approximation of the original cycle.
		if params.TrialEnd == nil || s.CurrentPeriodEnd > *params.TrialEnd {
			periodEnd := s.CurrentPeriodEnd
			params.TrialEnd = &periodEnd
		}
	default:
		// Neither anchor nor period end is usable; the billing cycle
		// resets to the moment of creation.
		anchorReset = true
	}

	return params, anchorReset, nil
}

package domain

// Subscription statuses relevant to migration and monitoring.
const (
	SubscriptionActive     = "active"
	SubscriptionTrialing   = "trialing"
	SubscriptionPastDue    = "past_due"
	SubscriptionIncomplete = "incomplete"
)

// Subscription represents a source-account subscription snapshot.
// Timestamps are Unix seconds, as reported on the wire.
type Subscription struct {
	ID                   string            `json:"id" validate:"required"`
	Customer             string            `json:"customer" validate:"required"`
	Status               string            `json:"status"`
	Items                SubscriptionItems `json:"items"`
	TrialEnd             *int64            `json:"trial_end,omitempty"`
	BillingCycleAnchor   int64             `json:"billing_cycle_anchor,omitempty"`
	CurrentPeriodEnd     int64             `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool              `json:"cancel_at_period_end,omitempty"`
	DefaultPaymentMethod string            `json:"default_payment_method,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty"`
}

// SubscriptionItems wraps the line-item list the way the API nests it.
type SubscriptionItems struct {
	Data []SubscriptionItem `json:"data"`
}

// SubscriptionItem is one line item, referencing a price by its embedded
// snapshot (the exporter expands price objects).
type SubscriptionItem struct {
	ID       string    `json:"id"`
	Price    ItemPrice `json:"price" validate:"required"`
	Quantity int64     `json:"quantity,omitempty"`
}

// ItemPrice is the price reference embedded in a line item.
type ItemPrice struct {
	ID         string `json:"id" validate:"required"`
	UnitAmount *int64 `json:"unit_amount"`
	Currency   string `json:"currency,omitempty"`
	Nickname   string `json:"nickname,omitempty"`
}

// TotalAmount sums unit amount times quantity across line items. Items with
// no unit amount contribute nothing.
func (s *Subscription) TotalAmount() int64 {
	var total int64
	for _, item := range s.Items.Data {
		if item.Price.UnitAmount == nil {
			continue
		}
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		total += *item.Price.UnitAmount * qty
	}
	return total
}

// Currency returns the first line item's currency.
func (s *Subscription) Currency() string {
	for _, item := range s.Items.Data {
		if item.Price.Currency != "" {
			return item.Price.Currency
		}
	}
	return ""
}

// IsFree reports whether every line item has a zero unit amount. Items with
// no unit amount (tiered or metered prices) count as paid: the customer may
// owe money, so a payment instrument is still required.
func (s *Subscription) IsFree() bool {
	if len(s.Items.Data) == 0 {
		return false
	}
	for _, item := range s.Items.Data {
		if item.Price.UnitAmount == nil || *item.Price.UnitAmount != 0 {
			return false
		}
	}
	return true
}

// PriceIDs returns the distinct price IDs referenced by the line items.
func (s *Subscription) PriceIDs() []string {
	seen := make(map[string]bool, len(s.Items.Data))
	ids := make([]string, 0, len(s.Items.Data))
	for _, item := range s.Items.Data {
		if item.Price.ID == "" || seen[item.Price.ID] {
			continue
		}
		seen[item.Price.ID] = true
		ids = append(ids, item.Price.ID)
	}
	return ids
}

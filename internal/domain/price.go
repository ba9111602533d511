package domain

// Billing schemes reported by the source account.
const (
	BillingSchemePerUnit = "per_unit"
	BillingSchemeTiered  = "tiered"
)

// Price represents a source-account price snapshot.
// UnitAmount is a pointer because tiered and metered prices report null.
type Price struct {
	ID            string            `json:"id" validate:"required"`
	Product       string            `json:"product" validate:"required"`
	Currency      string            `json:"currency" validate:"required,len=3"`
	UnitAmount    *int64            `json:"unit_amount"`
	BillingScheme string            `json:"billing_scheme,omitempty"`
	TiersMode     string            `json:"tiers_mode,omitempty"`
	Tiers         []PriceTier       `json:"tiers,omitempty"`
	Recurring     *Recurring        `json:"recurring,omitempty"`
	Nickname      string            `json:"nickname,omitempty"`
	TaxBehavior   string            `json:"tax_behavior,omitempty"`
	Active        bool              `json:"active"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Recurring holds the recurring-billing fields of a price.
// TrialPeriodDays and AggregateUsage are pointers so that an explicit null
// from the source can be told apart from an absent field; both are omitted
// (never sent as null) when submitting to the target account.
type Recurring struct {
	Interval        string  `json:"interval" validate:"required,oneof=day week month year"`
	IntervalCount   int64   `json:"interval_count,omitempty"`
	UsageType       string  `json:"usage_type,omitempty"`
	TrialPeriodDays *int64  `json:"trial_period_days,omitempty"`
	AggregateUsage  *string `json:"aggregate_usage,omitempty"`
}

// PriceTier is one row of a tiered price's tier table, carried verbatim to
// the target account. UpTo is null for the catch-all last tier.
type PriceTier struct {
	UpTo              *int64 `json:"up_to"`
	UnitAmount        *int64 `json:"unit_amount,omitempty"`
	UnitAmountDecimal string `json:"unit_amount_decimal,omitempty"`
	FlatAmount        *int64 `json:"flat_amount,omitempty"`
	FlatAmountDecimal string `json:"flat_amount_decimal,omitempty"`
}

// IsTiered reports whether the price uses tiered billing.
func (p *Price) IsTiered() bool {
	return p.BillingScheme == BillingSchemeTiered
}

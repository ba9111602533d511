package domain

import "time"

// MigrationError records one non-fatal per-item failure. Errors accumulate
// per run and are persisted as a side file; they never block other items.
type MigrationError struct {
	EntityKind string    `json:"entity_kind"`
	OldID      string    `json:"old_id"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewMigrationError creates a MigrationError stamped with the current time.
func NewMigrationError(kind, oldID, message string) MigrationError {
	return MigrationError{
		EntityKind: kind,
		OldID:      oldID,
		Message:    message,
		Timestamp:  time.Now().UTC(),
	}
}

// PaymentLink is one re-authorization link produced for a paid migrated
// subscription. Links are regenerated on every run; sessions expire, so
// deduplicating against prior runs would hand out dead URLs.
type PaymentLink struct {
	OldCustomerID     string    `json:"old_customer_id"`
	NewCustomerID     string    `json:"new_customer_id"`
	OldSubscriptionID string    `json:"old_subscription_id"`
	NewSubscriptionID string    `json:"new_subscription_id"`
	CustomerEmail     string    `json:"customer_email,omitempty"`
	URL               string    `json:"url"`
	ExpiresAt         time.Time `json:"expires_at"`
	PlanSummary       string    `json:"plan_summary,omitempty"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency,omitempty"`
}

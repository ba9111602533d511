// Package domain contains the exported entity snapshots moved between Stripe
// accounts. Records are frozen at export time; the migrator only reads them.
package domain

// Product represents a source-account product snapshot.
type Product struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description,omitempty"`
	Active      bool              `json:"active"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

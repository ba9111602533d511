package domain

// Customer represents a source-account customer snapshot.
type Customer struct {
	ID          string            `json:"id" validate:"required"`
	Email       string            `json:"email,omitempty" validate:"omitempty,email"`
	Name        string            `json:"name,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Description string            `json:"description,omitempty"`
	Address     *Address          `json:"address,omitempty"`
	Shipping    *Shipping         `json:"shipping,omitempty"`
	TaxExempt   string            `json:"tax_exempt,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Address is a postal address attached to a customer.
type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Shipping is a customer's shipping contact.
type Shipping struct {
	Name    string   `json:"name,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
}

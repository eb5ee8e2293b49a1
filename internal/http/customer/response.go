package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agilebooks/agilebooks/internal/customer"
)

type addressResponse struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Country string `json:"country,omitempty"`
}

type customerResponse struct {
	ID             uuid.UUID             `json:"id"`
	Number         string                `json:"customer_number"`
	Name           string                `json:"name"`
	Email          string                `json:"email,omitempty"`
	Phone          string                `json:"phone,omitempty"`
	Address        addressResponse       `json:"address"`
	CreditLimit    decimal.Decimal       `json:"credit_limit"`
	CurrentBalance decimal.Decimal       `json:"current_balance"`
	PaymentTerms   customer.PaymentTerms `json:"payment_terms"`
	IsActive       bool                  `json:"is_active"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      *time.Time            `json:"updated_at,omitempty"`
}

func toResponse(c *customer.Customer) customerResponse {
	return customerResponse{
		ID:     c.ID,
		Number: c.Number,
		Name:   c.Name,
		Email:  c.Email,
		Phone:  c.Phone,
		Address: addressResponse{
			Street:  c.Address.Street,
			City:    c.Address.City,
			State:   c.Address.State,
			ZipCode: c.Address.ZipCode,
			Country: c.Address.Country,
		},
		CreditLimit:    c.CreditLimit,
		CurrentBalance: c.CurrentBalance,
		PaymentTerms:   c.PaymentTerms,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toResponseList(customers []*customer.Customer) []customerResponse {
	out := make([]customerResponse, len(customers))
	for i, c := range customers {
		out[i] = toResponse(c)
	}

	return out
}

package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agilebooks/agilebooks/internal/invoice"
)

type itemResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type invoiceResponse struct {
	ID             uuid.UUID       `json:"id"`
	Number         string          `json:"invoice_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CustomerNumber string          `json:"customer_number,omitempty"`
	Date           time.Time       `json:"date"`
	DueDate        time.Time       `json:"due_date"`
	Items          []itemResponse  `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Status         invoice.Status  `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	CreatedBy      uuid.UUID       `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	items := make([]itemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = itemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		}
	}

	return invoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		CustomerID:     inv.CustomerID,
		CustomerName:   inv.CustomerName,
		CustomerNumber: inv.CustomerNumber,
		Date:           inv.Date,
		DueDate:        inv.DueDate,
		Items:          items,
		Subtotal:       inv.Subtotal,
		TaxRate:        inv.TaxRate,
		TaxAmount:      inv.TaxAmount,
		TotalAmount:    inv.TotalAmount,
		PaidAmount:     inv.PaidAmount,
		Status:         inv.EffectiveStatus(time.Now().UTC()),
		Notes:          inv.Notes,
		CreatedBy:      inv.CreatedBy,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

func toResponseList(invoices []*invoice.Invoice) []invoiceResponse {
	out := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = toResponse(inv)
	}

	return out
}

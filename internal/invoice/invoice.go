package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("invoice not found")
	ErrBadTransition     = errors.New("invalid invoice status transition")
	ErrCustomerNotActive = errors.New("customer is not active")
)

// Status represents the lifecycle state of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// allowedTransitions holds the explicit status moves. overdue is derived on
// read, never stored through a transition.
var allowedTransitions = map[Status][]Status{
	StatusDraft: {StatusSent, StatusCancelled},
	StatusSent:  {StatusPaid, StatusCancelled},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

type Item struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

type Invoice struct {
	ID          uuid.UUID
	Number      string
	CustomerID  uuid.UUID
	Date        time.Time
	DueDate     time.Time
	Items       []Item
	Subtotal    decimal.Decimal
	TaxRate     decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	Status      Status
	Notes       string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time

	// Loaded via JOIN for display.
	CustomerName   string
	CustomerNumber string
}

// EffectiveStatus derives overdue for sent invoices past their due date
// that are not fully paid. The stored status is left untouched.
func (inv *Invoice) EffectiveStatus(now time.Time) Status {
	if inv.Status == StatusSent && now.After(inv.DueDate) && inv.PaidAmount.LessThan(inv.TotalAmount) {
		return StatusOverdue
	}

	return inv.Status
}

// FormatNumber renders a sequence value as an invoice number, e.g.
// FormatNumber(12) == "INV-000012".
func FormatNumber(seq int64) string {
	return fmt.Sprintf("INV-%06d", seq)
}

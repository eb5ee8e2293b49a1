package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agilebooks/agilebooks/internal/customer"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	NextNumber(ctx context.Context) (int64, error)
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}

// Customers is the slice of the customer registry invoices need.
type Customers interface {
	Get(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
}

type Service struct {
	repo      Repository
	customers Customers
}

func NewService(repo Repository, customers Customers) *Service {
	return &Service{repo: repo, customers: customers}
}

type ItemParams struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

type CreateParams struct {
	CustomerID uuid.UUID
	Date       time.Time
	DueDate    time.Time
	Items      []ItemParams
	TaxRate    decimal.Decimal
	Notes      string
}

type ListFilter struct {
	Status     *Status
	CustomerID *uuid.UUID
}

// Create validates the customer and items and computes every monetary field
// server-side; client-supplied totals are never trusted.
func (s *Service) Create(ctx context.Context, createdBy uuid.UUID, params CreateParams) (*Invoice, error) {
	if len(params.Items) == 0 {
		return nil, fmt.Errorf("at least one item is required")
	}

	if params.TaxRate.IsNegative() || params.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("tax rate must be between 0 and 1")
	}

	cust, err := s.customers.Get(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}

	if !cust.IsActive {
		return nil, ErrCustomerNotActive
	}

	items := make([]Item, len(params.Items))
	subtotal := decimal.Zero

	for i, p := range params.Items {
		if strings.TrimSpace(p.Description) == "" {
			return nil, fmt.Errorf("item %d: description is required", i)
		}

		if p.Quantity.IsNegative() || p.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("item %d: quantity and unit price must not be negative", i)
		}

		total := p.Quantity.Mul(p.UnitPrice).Round(2)
		items[i] = Item{
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			Total:       total,
		}
		subtotal = subtotal.Add(total)
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	dueDate := params.DueDate
	if dueDate.IsZero() {
		dueDate = date.AddDate(0, 0, termsDays(cust.PaymentTerms))
	}

	if dueDate.Before(date) {
		return nil, fmt.Errorf("due date must not precede the invoice date")
	}

	seq, err := s.repo.NextNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating invoice number: %w", err)
	}

	taxAmount := subtotal.Mul(params.TaxRate).Round(2)

	inv := &Invoice{
		Number:      FormatNumber(seq),
		CustomerID:  params.CustomerID,
		Date:        date,
		DueDate:     dueDate,
		Items:       items,
		Subtotal:    subtotal,
		TaxRate:     params.TaxRate,
		TaxAmount:   taxAmount,
		TotalAmount: subtotal.Add(taxAmount),
		PaidAmount:  decimal.Zero,
		Status:      StatusDraft,
		Notes:       params.Notes,
		CreatedBy:   createdBy,
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// termsDays maps payment terms to the default due window in days.
func termsDays(terms customer.PaymentTerms) int {
	switch terms {
	case customer.TermsNet60:
		return 60
	case customer.TermsDueOnReceipt, customer.TermsCOD:
		return 0
	default:
		return 30
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

// Transition moves an invoice between statuses, guarded by the transition
// table and a compare-and-set in the store.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to Status) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(inv.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, inv.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, inv.Status, to); err != nil {
		return nil, err
	}

	inv.Status = to

	return inv, nil
}

package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=customer
type Repository interface {
	NextNumber(ctx context.Context) (int64, error)
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context, filter ListFilter) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name         string
	Email        string
	Phone        string
	Address      Address
	CreditLimit  decimal.Decimal
	PaymentTerms PaymentTerms
}

type ListFilter struct {
	Active *bool
	Search string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, fmt.Errorf("customer name is required")
	}

	terms := params.PaymentTerms
	if terms == "" {
		terms = TermsNet30
	}

	if !ValidTerms(terms) {
		return nil, fmt.Errorf("unknown payment terms %q", terms)
	}

	seq, err := s.repo.NextNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating customer number: %w", err)
	}

	c := &Customer{
		Number:       FormatNumber(seq),
		Name:         strings.TrimSpace(params.Name),
		Email:        strings.ToLower(strings.TrimSpace(params.Email)),
		Phone:        params.Phone,
		Address:      params.Address,
		CreditLimit:  params.CreditLimit,
		PaymentTerms: terms,
		IsActive:     true,
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx, filter)
}

type UpdateParams struct {
	Name         *string
	Email        *string
	Phone        *string
	Address      *Address
	CreditLimit  *decimal.Decimal
	PaymentTerms *PaymentTerms
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Customer, error) {
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, fmt.Errorf("customer name is required")
		}

		c.Name = strings.TrimSpace(*params.Name)
	}

	if params.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*params.Email))
	}

	if params.Phone != nil {
		c.Phone = *params.Phone
	}

	if params.Address != nil {
		c.Address = *params.Address
	}

	if params.CreditLimit != nil {
		c.CreditLimit = *params.CreditLimit
	}

	if params.PaymentTerms != nil {
		if !ValidTerms(*params.PaymentTerms) {
			return nil, fmt.Errorf("unknown payment terms %q", *params.PaymentTerms)
		}

		c.PaymentTerms = *params.PaymentTerms
	}

	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetCustomer(ctx, id); err != nil {
		return err
	}

	return s.repo.SetActive(ctx, id, false)
}

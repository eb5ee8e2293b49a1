package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/agilebooks/agilebooks/internal/customer"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectCustomerColumns = `
	id, number, name, email, phone, street, city, state, zip_code, country,
	credit_limit, current_balance, payment_terms, is_active, created_at, updated_at
`

func scanCustomer(s scanner) (*customer.Customer, error) {
	var c customer.Customer

	var termsStr string

	if err := s.Scan(
		&c.ID, &c.Number, &c.Name, &c.Email, &c.Phone,
		&c.Address.Street, &c.Address.City, &c.Address.State, &c.Address.ZipCode, &c.Address.Country,
		&c.CreditLimit, &c.CurrentBalance, &termsStr, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	c.PaymentTerms = customer.PaymentTerms(termsStr)

	return &c, nil
}

func (s *Store) NextNumber(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT nextval('customer_number_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("advancing customer number sequence: %w", err)
	}

	return seq, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (number, name, email, phone, street, city, state, zip_code, country,
			credit_limit, payment_terms, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, current_balance, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Number,
		c.Name,
		c.Email,
		c.Phone,
		c.Address.Street,
		c.Address.City,
		c.Address.State,
		c.Address.ZipCode,
		c.Address.Country,
		c.CreditLimit,
		c.PaymentTerms,
		c.IsActive,
	).Scan(&c.ID, &c.CurrentBalance, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}

	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, customer.ErrNotFound
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context, filter customer.ListFilter) ([]*customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Active != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argIdx)

		args = append(args, *filter.Active)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR number ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx, argIdx)

		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	query += " ORDER BY number ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}

		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer rows: %w", err)
	}

	return customers, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, street = $4, city = $5, state = $6,
			zip_code = $7, country = $8, credit_limit = $9, payment_terms = $10, updated_at = NOW()
		WHERE id = $11
	`

	_, err := s.db.ExecContext(ctx, query,
		c.Name,
		c.Email,
		c.Phone,
		c.Address.Street,
		c.Address.City,
		c.Address.State,
		c.Address.ZipCode,
		c.Address.Country,
		c.CreditLimit,
		c.PaymentTerms,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}

	return nil
}

func (s *Store) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE customers
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("setting customer active flag: %w", err)
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/agilebooks/agilebooks/internal/invoice"
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

const selectInvoiceColumns = `
	i.id, i.number, i.customer_id, i.date, i.due_date, i.subtotal, i.tax_rate,
	i.tax_amount, i.total_amount, i.paid_amount, i.status, i.notes,
	i.created_by, i.created_at, i.updated_at, c.name, c.number
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var statusStr string

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.CustomerID, &inv.Date, &inv.DueDate,
		&inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.TotalAmount, &inv.PaidAmount,
		&statusStr, &inv.Notes, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.CustomerName, &inv.CustomerNumber,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(statusStr)

	return &inv, nil
}

func (s *Store) NextNumber(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("advancing invoice number sequence: %w", err)
	}

	return seq, nil
}

// CreateInvoice persists the invoice row and its items in one database
// transaction.
func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO invoices (number, customer_id, date, due_date, subtotal, tax_rate,
			tax_amount, total_amount, paid_amount, status, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		inv.Number,
		inv.CustomerID,
		inv.Date,
		inv.DueDate,
		inv.Subtotal,
		inv.TaxRate,
		inv.TaxAmount,
		inv.TotalAmount,
		inv.PaidAmount,
		inv.Status,
		inv.Notes,
		inv.CreatedBy,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	itemQuery := `
		INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i, item := range inv.Items {
		if _, err := dbTx.ExecContext(ctx, itemQuery, inv.ID, i, item.Description, item.Quantity, item.UnitPrice, item.Total); err != nil {
			return fmt.Errorf("creating invoice item %d: %w", i, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) loadItems(ctx context.Context, invoiceID uuid.UUID) ([]invoice.Item, error) {
	query := `
		SELECT description, quantity, unit_price, total
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("loading invoice items: %w", err)
	}
	defer rows.Close()

	var items []invoice.Item

	for rows.Next() {
		var item invoice.Item
		if err := rows.Scan(&item.Description, &item.Quantity, &item.UnitPrice, &item.Total); err != nil {
			return nil, fmt.Errorf("scanning invoice item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}

	return items, nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}

	inv.Items = items

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND i.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND i.customer_id = $%d", argIdx)

		args = append(args, *filter.CustomerID)
		argIdx++
	}

	query += " ORDER BY i.date DESC, i.number DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	for _, inv := range invoices {
		items, err := s.loadItems(ctx, inv.ID)
		if err != nil {
			return nil, err
		}

		inv.Items = items
	}

	return invoices, nil
}

// UpdateStatus is a compare-and-set: the row moves only if it still holds
// the status the caller observed.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from, to invoice.Status) error {
	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	res, err := s.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking status update result: %w", err)
	}

	if affected == 0 {
		return invoice.ErrBadTransition
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/agilebooks/agilebooks/internal/account"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectAccountColumns = `
	id, code, name, type, subtype, parent_id, balance, description, is_active, created_at, updated_at
`

func scanAccount(s scanner) (*account.Account, error) {
	var a account.Account

	var typeStr, subtypeStr string

	if err := s.Scan(
		&a.ID, &a.Code, &a.Name, &typeStr, &subtypeStr, &a.ParentID,
		&a.Balance, &a.Description, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.Type = account.Type(typeStr)
	a.Subtype = account.Subtype(subtypeStr)

	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (code, name, type, subtype, parent_id, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, balance, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		a.Code,
		a.Name,
		a.Type,
		a.Subtype,
		a.ParentID,
		a.Description,
		a.IsActive,
	).Scan(&a.ID, &a.Balance, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return a, nil
}

func (s *Store) GetAccountByCode(ctx context.Context, code string) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE code = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account by code: %w", err)
	}

	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context, filter account.ListFilter) ([]*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Active != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argIdx)

		args = append(args, *filter.Active)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argIdx, argIdx)

		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	query += " ORDER BY code ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	return accounts, nil
}

// UpdateAccount writes the mutable columns. Balance is deliberately absent;
// only the ledger posting engine adjusts it.
func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, subtype = $2, parent_id = $3, description = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
	`

	_, err := s.db.ExecContext(ctx, query,
		a.Name,
		a.Subtype,
		a.ParentID,
		a.Description,
		a.IsActive,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	return nil
}

func (s *Store) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE accounts
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("setting account active flag: %w", err)
	}

	return nil
}

// CountPostedReferences counts entries of posted transactions that target
// the account. Used to protect deactivation.
func (s *Store) CountPostedReferences(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transaction_entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE e.account_id = $1 AND t.status = 'posted'
	`

	var n int
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting posted references: %w", err)
	}

	return n, nil
}

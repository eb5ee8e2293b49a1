package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agilebooks/agilebooks/internal/account"
	"github.com/agilebooks/agilebooks/internal/ledger"
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

const selectTransactionColumns = `
	id, number, date, description, reference, total_amount, status,
	created_by, created_at, updated_at, posted_at
`

func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var statusStr string

	if err := s.Scan(
		&tx.ID, &tx.Number, &tx.Date, &tx.Description, &tx.Reference,
		&tx.TotalAmount, &statusStr,
		&tx.CreatedBy, &tx.CreatedAt, &tx.UpdatedAt, &tx.PostedAt,
	); err != nil {
		return nil, err
	}

	tx.Status = ledger.Status(statusStr)

	return &tx, nil
}

func (s *Store) NextNumber(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT nextval('transaction_number_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("advancing transaction number sequence: %w", err)
	}

	return seq, nil
}

// CreateTransaction persists the transaction row and its entries in one
// database transaction, so a draft never appears without its entry set.
func (s *Store) CreateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO transactions (number, date, description, reference, total_amount, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		tx.Number,
		tx.Date,
		tx.Description,
		tx.Reference,
		tx.TotalAmount,
		tx.Status,
		tx.CreatedBy,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	if err := insertEntries(ctx, dbTx, tx.ID, tx.Entries); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func insertEntries(ctx context.Context, dbTx *sql.Tx, txID uuid.UUID, entries []ledger.Entry) error {
	query := `
		INSERT INTO transaction_entries (transaction_id, position, account_id, debit, credit, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i, e := range entries {
		if _, err := dbTx.ExecContext(ctx, query, txID, i, e.AccountID, e.Debit, e.Credit, e.Description); err != nil {
			return fmt.Errorf("creating entry %d: %w", i, err)
		}
	}

	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadEntries(ctx context.Context, q querier, txID uuid.UUID) ([]ledger.Entry, error) {
	query := `
		SELECT e.account_id, e.debit, e.credit, e.description, a.code, a.name
		FROM transaction_entries e
		JOIN accounts a ON a.id = e.account_id
		WHERE e.transaction_id = $1
		ORDER BY e.position ASC
	`

	rows, err := q.QueryContext(ctx, query, txID)
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry

	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.AccountID, &e.Debit, &e.Credit, &e.Description, &e.AccountCode, &e.AccountName); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	return entries, nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	entries, err := loadEntries(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	tx.Entries = entries

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Transaction, int, error) {
	where := ` WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.StartDate != nil {
		where += fmt.Sprintf(" AND date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		where += fmt.Sprintf(" AND date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting transactions: %w", err)
	}

	query := `SELECT ` + selectTransactionColumns + ` FROM transactions` + where +
		fmt.Sprintf(" ORDER BY date DESC, number DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating transaction rows: %w", err)
	}

	for _, tx := range txs {
		entries, err := loadEntries(ctx, s.db, tx.ID)
		if err != nil {
			return nil, 0, err
		}

		tx.Entries = entries
	}

	return txs, total, nil
}

// UpdateTransaction rewrites a draft and replaces its entry set. The status
// guard in the WHERE clause keeps a concurrently posted transaction from
// being edited.
func (s *Store) UpdateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		UPDATE transactions
		SET date = $1, description = $2, reference = $3, total_amount = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'draft'
	`

	res, err := dbTx.ExecContext(ctx, query, tx.Date, tx.Description, tx.Reference, tx.TotalAmount, tx.ID)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}

	if affected == 0 {
		return ledger.ErrImmutable
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transaction_entries WHERE transaction_id = $1`, tx.ID); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}

	if err := insertEntries(ctx, dbTx, tx.ID, tx.Entries); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}

	if affected == 0 {
		return ledger.ErrImmutable
	}

	return nil
}

type postingTx struct {
	tx *sql.Tx
}

func (s *Store) BeginPosting(ctx context.Context) (ledger.PostingTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning posting tx: %w", err)
	}

	return &postingTx{tx: dbTx}, nil
}

func (ptx *postingTx) Commit() error   { return ptx.tx.Commit() }
func (ptx *postingTx) Rollback() error { return ptx.tx.Rollback() }

// GetForUpdate row-locks the transaction so concurrent posters serialize on
// it; the loser of the race sees the flipped status and fails cleanly.
func (ptx *postingTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	tx, err := scanTransaction(ptx.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction for update: %w", err)
	}

	entries, err := loadEntries(ctx, ptx.tx, id)
	if err != nil {
		return nil, err
	}

	tx.Entries = entries

	return tx, nil
}

// LockAccounts acquires row locks one account at a time in the order given
// by the caller. Callers pass ids in ascending order so concurrent postings
// over overlapping accounts cannot deadlock. Missing accounts are simply
// absent from the result; the service decides that this aborts the posting.
func (ptx *postingTx) LockAccounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*account.Account, error) {
	query := `
		SELECT id, code, name, type, subtype, balance
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	accounts := make(map[uuid.UUID]*account.Account, len(ids))

	for _, id := range ids {
		var a account.Account

		var typeStr, subtypeStr string

		err := ptx.tx.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Code, &a.Name, &typeStr, &subtypeStr, &a.Balance)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}

			return nil, fmt.Errorf("locking account %s: %w", id, err)
		}

		a.Type = account.Type(typeStr)
		a.Subtype = account.Subtype(subtypeStr)

		accounts[id] = &a
	}

	return accounts, nil
}

func (ptx *postingTx) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	if _, err := ptx.tx.ExecContext(ctx, query, delta, accountID); err != nil {
		return fmt.Errorf("adjusting balance: %w", err)
	}

	return nil
}

// MarkPosted is the compare-and-set on status: it succeeds only while the
// stored row is still a draft.
func (ptx *postingTx) MarkPosted(ctx context.Context, id uuid.UUID, postedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = 'posted', posted_at = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'draft'
	`

	res, err := ptx.tx.ExecContext(ctx, query, postedAt, id)
	if err != nil {
		return fmt.Errorf("marking posted: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking posting result: %w", err)
	}

	if affected == 0 {
		return ledger.ErrNotDraft
	}

	return nil
}

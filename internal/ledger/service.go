package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agilebooks/agilebooks/internal/account"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	NextNumber(ctx context.Context) (int64, error)
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, int, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	BeginPosting(ctx context.Context) (PostingTx, error)
}

// PostingTx is a single all-or-nothing posting unit. Either every balance
// adjustment and the status flip commit together, or none of them do.
type PostingTx interface {
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error)
	LockAccounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*account.Account, error)
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error
	MarkPosted(ctx context.Context, id uuid.UUID, postedAt time.Time) error
	Commit() error
	Rollback() error
}

// Accounts is the slice of the account registry the ledger needs.
type Accounts interface {
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

type Service struct {
	repo     Repository
	accounts Accounts
}

func NewService(repo Repository, accounts Accounts) *Service {
	return &Service{repo: repo, accounts: accounts}
}

type EntryParams struct {
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

type CreateParams struct {
	Date        time.Time
	Description string
	Reference   string
	Entries     []EntryParams
}

type ListFilter struct {
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// Create validates a draft and persists it with a sequence-backed number.
// No account balances are touched at this stage.
func (s *Service) Create(ctx context.Context, createdBy uuid.UUID, params CreateParams) (*Transaction, error) {
	entries := make([]Entry, len(params.Entries))
	for i, p := range params.Entries {
		entries[i] = Entry{
			AccountID:   p.AccountID,
			Debit:       p.Debit,
			Credit:      p.Credit,
			Description: p.Description,
		}
	}

	if errs := validateDraft(params.Description, entries); len(errs) > 0 {
		return nil, errs
	}

	if err := s.checkAccounts(ctx, entries); err != nil {
		return nil, err
	}

	seq, err := s.repo.NextNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating transaction number: %w", err)
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	tx := &Transaction{
		Number:      FormatNumber(seq),
		Date:        date,
		Description: params.Description,
		Reference:   params.Reference,
		TotalAmount: totalDebits(entries),
		Status:      StatusDraft,
		Entries:     entries,
		CreatedBy:   createdBy,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// checkAccounts resolves every referenced account before persistence, so a
// draft can never cite an account the registry does not hold.
func (s *Service) checkAccounts(ctx context.Context, entries []Entry) error {
	var errs ValidationErrors

	seen := make(map[uuid.UUID]bool, len(entries))

	for i, e := range entries {
		if seen[e.AccountID] {
			continue
		}

		seen[e.AccountID] = true

		if _, err := s.accounts.Get(ctx, e.AccountID); err != nil {
			if errors.Is(err, account.ErrNotFound) {
				errs = append(errs, ValidationError{Entry: i, Reason: fmt.Sprintf("unknown account %s", e.AccountID)})
				continue
			}

			return fmt.Errorf("resolving account %s: %w", e.AccountID, err)
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}

	if filter.Limit < 1 {
		filter.Limit = 10
	}

	if filter.Limit > 100 {
		filter.Limit = 100
	}

	return s.repo.ListTransactions(ctx, filter)
}

type UpdateParams struct {
	Date        *time.Time
	Description *string
	Reference   *string
	Entries     []EntryParams
}

// Update edits a draft. Entries, when given, replace the existing set and
// the full draft validation runs again before anything is persisted.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Status != StatusDraft {
		return nil, ErrImmutable
	}

	if params.Date != nil {
		tx.Date = *params.Date
	}

	if params.Description != nil {
		tx.Description = *params.Description
	}

	if params.Reference != nil {
		tx.Reference = *params.Reference
	}

	if params.Entries != nil {
		entries := make([]Entry, len(params.Entries))
		for i, p := range params.Entries {
			entries[i] = Entry{
				AccountID:   p.AccountID,
				Debit:       p.Debit,
				Credit:      p.Credit,
				Description: p.Description,
			}
		}

		tx.Entries = entries
	}

	if errs := validateDraft(tx.Description, tx.Entries); len(errs) > 0 {
		return nil, errs
	}

	if err := s.checkAccounts(ctx, tx.Entries); err != nil {
		return nil, err
	}

	tx.TotalAmount = totalDebits(tx.Entries)

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if tx.Status != StatusDraft {
		return ErrImmutable
	}

	return s.repo.DeleteTransaction(ctx, id)
}

// Post transitions a draft to posted, applying every entry to its account's
// balance under the accounting sign convention: a debit raises Asset and
// Expense balances, a credit raises Liability, Equity and Revenue balances.
//
// The whole operation runs inside one posting unit. A missing account, a
// concurrent poster winning the status flip, or any storage failure rolls
// back every balance change. Re-posting an already posted transaction fails
// with ErrNotDraft and changes nothing.
func (s *Service) Post(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	ptx, err := s.repo.BeginPosting(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning posting: %w", err)
	}
	defer ptx.Rollback()

	tx, err := ptx.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Status != StatusDraft {
		return nil, ErrNotDraft
	}

	ids := accountIDs(tx.Entries)

	accounts, err := ptx.LockAccounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("locking accounts: %w", err)
	}

	deltas := make(map[uuid.UUID]decimal.Decimal, len(ids))

	for _, e := range tx.Entries {
		acct, ok := accounts[e.AccountID]
		if !ok {
			return nil, &UnknownAccountError{AccountID: e.AccountID}
		}

		delta := e.Credit.Sub(e.Debit)
		if acct.Type.IncreasesWithDebit() {
			delta = e.Debit.Sub(e.Credit)
		}

		deltas[e.AccountID] = deltas[e.AccountID].Add(delta)
	}

	for _, accountID := range ids {
		if err := ptx.AdjustBalance(ctx, accountID, deltas[accountID]); err != nil {
			return nil, fmt.Errorf("adjusting balance of %s: %w", accountID, err)
		}
	}

	postedAt := time.Now().UTC()
	if err := ptx.MarkPosted(ctx, id, postedAt); err != nil {
		return nil, err
	}

	if err := ptx.Commit(); err != nil {
		return nil, fmt.Errorf("committing posting: %w", err)
	}

	tx.Status = StatusPosted
	tx.PostedAt = &postedAt

	return tx, nil
}

// accountIDs returns the distinct account ids of an entry set in ascending
// order. Locking in a stable order keeps concurrent postings that share
// accounts from deadlocking.
func accountIDs(entries []Entry) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(entries))

	var ids []uuid.UUID

	for _, e := range entries {
		if seen[e.AccountID] {
			continue
		}

		seen[e.AccountID] = true

		ids = append(ids, e.AccountID)
	}

	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})

	return ids
}

package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/agilebooks/agilebooks/internal/account"
	"github.com/agilebooks/agilebooks/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=sources_mock.go -package=report
type Accounts interface {
	List(ctx context.Context, filter account.ListFilter) ([]*account.Account, error)
}

type Transactions interface {
	List(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Transaction, int, error)
}

// Service is the read-only dashboard facade over the account registry and
// the transaction store.
type Service struct {
	accounts     Accounts
	transactions Transactions
}

func NewService(accounts Accounts, transactions Transactions) *Service {
	return &Service{accounts: accounts, transactions: transactions}
}

type Summary struct {
	AccountCount         int
	AccountsByType       map[account.Type]int
	BalancesByType       map[account.Type]decimal.Decimal
	TransactionCount     int
	TransactionsByStatus map[ledger.Status]int
	RecentTransactions   []*ledger.Transaction
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	active := true

	accounts, err := s.accounts.List(ctx, account.ListFilter{Active: &active})
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	summary := &Summary{
		AccountCount:         len(accounts),
		AccountsByType:       make(map[account.Type]int),
		BalancesByType:       make(map[account.Type]decimal.Decimal),
		TransactionsByStatus: make(map[ledger.Status]int),
	}

	for _, a := range accounts {
		summary.AccountsByType[a.Type]++
		summary.BalancesByType[a.Type] = summary.BalancesByType[a.Type].Add(a.Balance)
	}

	for _, status := range []ledger.Status{ledger.StatusDraft, ledger.StatusPosted, ledger.StatusReversed} {
		_, total, err := s.transactions.List(ctx, ledger.ListFilter{Status: &status, Page: 1, Limit: 1})
		if err != nil {
			return nil, fmt.Errorf("counting %s transactions: %w", status, err)
		}

		summary.TransactionsByStatus[status] = total
		summary.TransactionCount += total
	}

	recent, _, err := s.transactions.List(ctx, ledger.ListFilter{Page: 1, Limit: 5})
	if err != nil {
		return nil, fmt.Errorf("listing recent transactions: %w", err)
	}

	summary.RecentTransactions = recent

	return summary, nil
}

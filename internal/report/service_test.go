package report_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agilebooks/agilebooks/internal/account"
	"github.com/agilebooks/agilebooks/internal/ledger"
	"github.com/agilebooks/agilebooks/internal/report"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := report.NewMockAccounts(ctrl)
	transactions := report.NewMockTransactions(ctrl)

	accounts.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter account.ListFilter) ([]*account.Account, error) {
			require.NotNil(t, filter.Active)
			assert.True(t, *filter.Active)

			return []*account.Account{
				{ID: uuid.New(), Type: account.TypeAsset, Balance: dec("1000")},
				{ID: uuid.New(), Type: account.TypeAsset, Balance: dec("250.50")},
				{ID: uuid.New(), Type: account.TypeRevenue, Balance: dec("1250.50")},
			}, nil
		})

	counts := map[ledger.Status]int{
		ledger.StatusDraft:    4,
		ledger.StatusPosted:   11,
		ledger.StatusReversed: 0,
	}

	recent := []*ledger.Transaction{
		{ID: uuid.New(), Number: "TXN-000011", Status: ledger.StatusPosted},
	}

	transactions.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter ledger.ListFilter) ([]*ledger.Transaction, int, error) {
			if filter.Status == nil {
				assert.Equal(t, 5, filter.Limit)
				return recent, 15, nil
			}

			assert.Equal(t, 1, filter.Limit)

			return nil, counts[*filter.Status], nil
		}).
		Times(4)

	svc := report.NewService(accounts, transactions)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.AccountCount)
	assert.Equal(t, 2, summary.AccountsByType[account.TypeAsset])
	assert.Equal(t, 1, summary.AccountsByType[account.TypeRevenue])
	assert.True(t, summary.BalancesByType[account.TypeAsset].Equal(dec("1250.50")))
	assert.True(t, summary.BalancesByType[account.TypeRevenue].Equal(dec("1250.50")))
	assert.Equal(t, 15, summary.TransactionCount)
	assert.Equal(t, 4, summary.TransactionsByStatus[ledger.StatusDraft])
	assert.Equal(t, 11, summary.TransactionsByStatus[ledger.StatusPosted])
	assert.Equal(t, recent, summary.RecentTransactions)
}

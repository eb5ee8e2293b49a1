package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agilebooks/agilebooks/internal/account"
	"github.com/agilebooks/agilebooks/internal/ledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_Create(t *testing.T) {
	assetID := uuid.New()
	revenueID := uuid.New()
	actor := uuid.New()

	balancedEntries := []ledger.EntryParams{
		{AccountID: assetID, Debit: dec("500")},
		{AccountID: revenueID, Credit: dec("500")},
	}

	type testCase struct {
		name       string
		params     ledger.CreateParams
		setupMocks func(repo *ledger.MockRepository, accounts *ledger.MockAccounts)
		wantErr    bool
		check      func(t *testing.T, tx *ledger.Transaction)
	}

	tests := []testCase{
		{
			name: "Success",
			params: ledger.CreateParams{
				Description: "Invoice payment received",
				Entries:     balancedEntries,
			},
			setupMocks: func(repo *ledger.MockRepository, accounts *ledger.MockAccounts) {
				accounts.EXPECT().Get(gomock.Any(), assetID).Return(&account.Account{ID: assetID, Type: account.TypeAsset}, nil)
				accounts.EXPECT().Get(gomock.Any(), revenueID).Return(&account.Account{ID: revenueID, Type: account.TypeRevenue}, nil)
				repo.EXPECT().NextNumber(gomock.Any()).Return(int64(7), nil)
				repo.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
			check: func(t *testing.T, tx *ledger.Transaction) {
				assert.Equal(t, "TXN-000007", tx.Number)
				assert.Equal(t, ledger.StatusDraft, tx.Status)
				assert.True(t, tx.TotalAmount.Equal(dec("500")))
				assert.Equal(t, actor, tx.CreatedBy)
				assert.False(t, tx.Date.IsZero())
			},
		},
		{
			name: "Unbalanced",
			params: ledger.CreateParams{
				Description: "Broken",
				Entries: []ledger.EntryParams{
					{AccountID: assetID, Debit: dec("500")},
					{AccountID: revenueID, Credit: dec("300")},
				},
			},
			wantErr: true,
		},
		{
			name: "TooFewEntries",
			params: ledger.CreateParams{
				Description: "One-sided",
				Entries: []ledger.EntryParams{
					{AccountID: assetID, Debit: dec("500")},
				},
			},
			wantErr: true,
		},
		{
			name: "UnknownAccount",
			params: ledger.CreateParams{
				Description: "Phantom account",
				Entries:     balancedEntries,
			},
			setupMocks: func(repo *ledger.MockRepository, accounts *ledger.MockAccounts) {
				accounts.EXPECT().Get(gomock.Any(), assetID).Return(&account.Account{ID: assetID, Type: account.TypeAsset}, nil)
				accounts.EXPECT().Get(gomock.Any(), revenueID).Return(nil, account.ErrNotFound)
			},
			wantErr: true,
		},
		{
			name: "NumberAllocationFails",
			params: ledger.CreateParams{
				Description: "Sequence down",
				Entries:     balancedEntries,
			},
			setupMocks: func(repo *ledger.MockRepository, accounts *ledger.MockAccounts) {
				accounts.EXPECT().Get(gomock.Any(), assetID).Return(&account.Account{ID: assetID, Type: account.TypeAsset}, nil)
				accounts.EXPECT().Get(gomock.Any(), revenueID).Return(&account.Account{ID: revenueID, Type: account.TypeRevenue}, nil)
				repo.EXPECT().NextNumber(gomock.Any()).Return(int64(0), errors.New("sequence error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			accounts := ledger.NewMockAccounts(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(repo, accounts)
			}

			svc := ledger.NewService(repo, accounts)
			got, err := svc.Create(context.Background(), actor, tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)

			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestService_Create_ValidationNamesBothTotals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := ledger.NewService(ledger.NewMockRepository(ctrl), ledger.NewMockAccounts(ctrl))

	_, err := svc.Create(context.Background(), uuid.New(), ledger.CreateParams{
		Description: "Out of balance",
		Entries: []ledger.EntryParams{
			{AccountID: uuid.New(), Debit: dec("100")},
			{AccountID: uuid.New(), Credit: dec("40")},
		},
	})
	require.Error(t, err)

	var verrs ledger.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Contains(t, verrs[0].Reason, "100.00")
	assert.Contains(t, verrs[0].Reason, "40.00")
}

// capturePosting wires a MockPostingTx that records balance adjustments.
func capturePosting(ptx *ledger.MockPostingTx, deltas map[uuid.UUID]decimal.Decimal) {
	ptx.EXPECT().
		AdjustBalance(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
			deltas[accountID] = delta
			return nil
		}).
		AnyTimes()
}

func TestService_Post_AppliesSignConvention(t *testing.T) {
	txID := uuid.New()
	assetID := uuid.New()
	revenueID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	ptx := ledger.NewMockPostingTx(ctrl)
	svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

	draft := &ledger.Transaction{
		ID:     txID,
		Number: "TXN-000001",
		Status: ledger.StatusDraft,
		Entries: []ledger.Entry{
			{AccountID: assetID, Debit: dec("100")},
			{AccountID: revenueID, Credit: dec("100")},
		},
	}

	repo.EXPECT().BeginPosting(gomock.Any()).Return(ptx, nil)
	ptx.EXPECT().GetForUpdate(gomock.Any(), txID).Return(draft, nil)
	ptx.EXPECT().
		LockAccounts(gomock.Any(), gomock.Any()).
		Return(map[uuid.UUID]*account.Account{
			assetID:   {ID: assetID, Type: account.TypeAsset},
			revenueID: {ID: revenueID, Type: account.TypeRevenue},
		}, nil)

	deltas := make(map[uuid.UUID]decimal.Decimal)
	capturePosting(ptx, deltas)

	ptx.EXPECT().MarkPosted(gomock.Any(), txID, gomock.Any()).Return(nil)
	ptx.EXPECT().Commit().Return(nil)
	ptx.EXPECT().Rollback().Return(nil)

	posted, err := svc.Post(context.Background(), txID)
	require.NoError(t, err)

	assert.Equal(t, ledger.StatusPosted, posted.Status)
	require.NotNil(t, posted.PostedAt)

	// Debit grows the asset, credit grows the revenue.
	require.Len(t, deltas, 2)
	assert.True(t, deltas[assetID].Equal(dec("100")), "asset delta = %s", deltas[assetID])
	assert.True(t, deltas[revenueID].Equal(dec("100")), "revenue delta = %s", deltas[revenueID])
}

func TestService_Post_CreditSideOfAssetDecreases(t *testing.T) {
	txID := uuid.New()
	expenseID := uuid.New()
	assetID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	ptx := ledger.NewMockPostingTx(ctrl)
	svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

	draft := &ledger.Transaction{
		ID:     txID,
		Status: ledger.StatusDraft,
		Entries: []ledger.Entry{
			{AccountID: expenseID, Debit: dec("30")},
			{AccountID: assetID, Credit: dec("30")},
		},
	}

	repo.EXPECT().BeginPosting(gomock.Any()).Return(ptx, nil)
	ptx.EXPECT().GetForUpdate(gomock.Any(), txID).Return(draft, nil)
	ptx.EXPECT().
		LockAccounts(gomock.Any(), gomock.Any()).
		Return(map[uuid.UUID]*account.Account{
			expenseID: {ID: expenseID, Type: account.TypeExpense},
			assetID:   {ID: assetID, Type: account.TypeAsset},
		}, nil)

	deltas := make(map[uuid.UUID]decimal.Decimal)
	capturePosting(ptx, deltas)

	ptx.EXPECT().MarkPosted(gomock.Any(), txID, gomock.Any()).Return(nil)
	ptx.EXPECT().Commit().Return(nil)
	ptx.EXPECT().Rollback().Return(nil)

	_, err := svc.Post(context.Background(), txID)
	require.NoError(t, err)

	assert.True(t, deltas[expenseID].Equal(dec("30")), "expense delta = %s", deltas[expenseID])
	assert.True(t, deltas[assetID].Equal(dec("-30")), "asset delta = %s", deltas[assetID])
}

func TestService_Post_CollapsesRepeatedAccountIntoOneAdjustment(t *testing.T) {
	txID := uuid.New()
	cashID := uuid.New()
	revenueID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	ptx := ledger.NewMockPostingTx(ctrl)
	svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

	draft := &ledger.Transaction{
		ID:     txID,
		Status: ledger.StatusDraft,
		Entries: []ledger.Entry{
			{AccountID: cashID, Debit: dec("50")},
			{AccountID: cashID, Debit: dec("30")},
			{AccountID: revenueID, Credit: dec("80")},
		},
	}

	repo.EXPECT().BeginPosting(gomock.Any()).Return(ptx, nil)
	ptx.EXPECT().GetForUpdate(gomock.Any(), txID).Return(draft, nil)
	ptx.EXPECT().
		LockAccounts(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*account.Account, error) {
			// One lock per distinct account.
			assert.Len(t, ids, 2)
			return map[uuid.UUID]*account.Account{
				cashID:    {ID: cashID, Type: account.TypeAsset},
				revenueID: {ID: revenueID, Type: account.TypeRevenue},
			}, nil
		})

	deltas := make(map[uuid.UUID]decimal.Decimal)
	capturePosting(ptx, deltas)

	ptx.EXPECT().MarkPosted(gomock.Any(), txID, gomock.Any()).Return(nil)
	ptx.EXPECT().Commit().Return(nil)
	ptx.EXPECT().Rollback().Return(nil)

	_, err := svc.Post(context.Background(), txID)
	require.NoError(t, err)

	require.Len(t, deltas, 2)
	assert.True(t, deltas[cashID].Equal(dec("80")), "cash delta = %s", deltas[cashID])
}

func TestService_Post_NotFound(t *testing.T) {
	txID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	ptx := ledger.NewMockPostingTx(ctrl)
	svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

	repo.EXPECT().BeginPosting(gomock.Any()).Return(ptx, nil)
	ptx.EXPECT().GetForUpdate(gomock.Any(), txID).Return(nil, ledger.ErrNotFound)
	ptx.EXPECT().Rollback().Return(nil)

	_, err := svc.Post(context.Background(), txID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_Post_AlreadyPosted(t *testing.T) {
	txID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	ptx := ledger.NewMockPostingTx(ctrl)
	svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

	repo.EXPECT().BeginPosting(gomock.Any()).Return(ptx, nil)
	ptx.EXPECT().GetForUpdate(gomock.Any(), txID).Return(&ledger.Transaction{
		ID:     txID,
		Status: ledger.StatusPosted,
	}, nil)
	ptx.EXPECT().Rollback().Return(nil)

	// No AdjustBalance, no MarkPosted, no Commit: balances stay untouched.
	_, err := svc.Post(context.Background(), txID)
	assert.ErrorIs(t, err, ledger.ErrNotDraft)
}

func TestService_Post_UnknownAccountAbortsEverything(t *testing.T) {
	txID := uuid.New()
	assetID := uuid.New()
	ghostID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	ptx := ledger.NewMockPostingTx(ctrl)
	svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

	draft := &ledger.Transaction{
		ID:     txID,
		Status: ledger.StatusDraft,
		Entries: []ledger.Entry{
			{AccountID: assetID, Debit: dec("100")},
			{AccountID: ghostID, Credit: dec("100")},
		},
	}

	repo.EXPECT().BeginPosting(gomock.Any()).Return(ptx, nil)
	ptx.EXPECT().GetForUpdate(gomock.Any(), txID).Return(draft, nil)
	ptx.EXPECT().
		LockAccounts(gomock.Any(), gomock.Any()).
		Return(map[uuid.UUID]*account.Account{
			assetID: {ID: assetID, Type: account.TypeAsset},
		}, nil)
	ptx.EXPECT().Rollback().Return(nil)

	// The missing account fails the whole posting before any balance write.
	_, err := svc.Post(context.Background(), txID)

	var unknownErr *ledger.UnknownAccountError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, ghostID, unknownErr.AccountID)
}

func TestService_Post_LosesStatusRace(t *testing.T) {
	txID := uuid.New()
	assetID := uuid.New()
	revenueID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	ptx := ledger.NewMockPostingTx(ctrl)
	svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

	draft := &ledger.Transaction{
		ID:     txID,
		Status: ledger.StatusDraft,
		Entries: []ledger.Entry{
			{AccountID: assetID, Debit: dec("10")},
			{AccountID: revenueID, Credit: dec("10")},
		},
	}

	repo.EXPECT().BeginPosting(gomock.Any()).Return(ptx, nil)
	ptx.EXPECT().GetForUpdate(gomock.Any(), txID).Return(draft, nil)
	ptx.EXPECT().
		LockAccounts(gomock.Any(), gomock.Any()).
		Return(map[uuid.UUID]*account.Account{
			assetID:   {ID: assetID, Type: account.TypeAsset},
			revenueID: {ID: revenueID, Type: account.TypeRevenue},
		}, nil)
	ptx.EXPECT().AdjustBalance(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	ptx.EXPECT().MarkPosted(gomock.Any(), txID, gomock.Any()).Return(ledger.ErrNotDraft)
	ptx.EXPECT().Rollback().Return(nil)

	// The compare-and-set failed, so nothing commits.
	_, err := svc.Post(context.Background(), txID)
	assert.ErrorIs(t, err, ledger.ErrNotDraft)
}

func TestService_Update(t *testing.T) {
	txID := uuid.New()
	assetID := uuid.New()
	revenueID := uuid.New()

	draft := func() *ledger.Transaction {
		return &ledger.Transaction{
			ID:          txID,
			Number:      "TXN-000003",
			Status:      ledger.StatusDraft,
			Description: "Original",
			TotalAmount: dec("100"),
			Entries: []ledger.Entry{
				{AccountID: assetID, Debit: dec("100")},
				{AccountID: revenueID, Credit: dec("100")},
			},
		}
	}

	t.Run("ReplacesEntriesAndRecomputesTotal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		accounts := ledger.NewMockAccounts(ctrl)
		svc := ledger.NewService(repo, accounts)

		repo.EXPECT().GetTransaction(gomock.Any(), txID).Return(draft(), nil)
		accounts.EXPECT().Get(gomock.Any(), assetID).Return(&account.Account{ID: assetID, Type: account.TypeAsset}, nil)
		accounts.EXPECT().Get(gomock.Any(), revenueID).Return(&account.Account{ID: revenueID, Type: account.TypeRevenue}, nil)
		repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

		got, err := svc.Update(context.Background(), txID, ledger.UpdateParams{
			Entries: []ledger.EntryParams{
				{AccountID: assetID, Debit: dec("250")},
				{AccountID: revenueID, Credit: dec("250")},
			},
		})
		require.NoError(t, err)
		assert.True(t, got.TotalAmount.Equal(dec("250")))
	})

	t.Run("RejectsUnbalancedReplacement", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

		repo.EXPECT().GetTransaction(gomock.Any(), txID).Return(draft(), nil)

		_, err := svc.Update(context.Background(), txID, ledger.UpdateParams{
			Entries: []ledger.EntryParams{
				{AccountID: assetID, Debit: dec("250")},
				{AccountID: revenueID, Credit: dec("100")},
			},
		})
		assert.Error(t, err)
	})

	t.Run("RejectsPosted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

		posted := draft()
		posted.Status = ledger.StatusPosted

		repo.EXPECT().GetTransaction(gomock.Any(), txID).Return(posted, nil)

		_, err := svc.Update(context.Background(), txID, ledger.UpdateParams{})
		assert.ErrorIs(t, err, ledger.ErrImmutable)
	})
}

func TestService_Delete(t *testing.T) {
	txID := uuid.New()

	t.Run("DraftDeletes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

		repo.EXPECT().GetTransaction(gomock.Any(), txID).Return(&ledger.Transaction{ID: txID, Status: ledger.StatusDraft}, nil)
		repo.EXPECT().DeleteTransaction(gomock.Any(), txID).Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), txID))
	})

	t.Run("PostedRefuses", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

		repo.EXPECT().GetTransaction(gomock.Any(), txID).Return(&ledger.Transaction{ID: txID, Status: ledger.StatusPosted}, nil)

		assert.ErrorIs(t, svc.Delete(context.Background(), txID), ledger.ErrImmutable)
	})
}

func TestService_List_NormalizesPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

	repo.EXPECT().
		ListTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter ledger.ListFilter) ([]*ledger.Transaction, int, error) {
			assert.Equal(t, 1, filter.Page)
			assert.Equal(t, 10, filter.Limit)
			return nil, 0, nil
		})

	_, _, err := svc.List(context.Background(), ledger.ListFilter{Page: -3, Limit: 0})
	require.NoError(t, err)
}

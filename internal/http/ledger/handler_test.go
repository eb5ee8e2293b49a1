package ledger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agilebooks/agilebooks/internal/ledger"
)

func TestToResponse_OptionalTimestamps(t *testing.T) {
	tx := &ledger.Transaction{
		ID:          uuid.New(),
		Number:      "TXN-000004",
		Date:        time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Description: "Office rent",
		TotalAmount: decimal.RequireFromString("1200"),
		Status:      ledger.StatusDraft,
		CreatedAt:   time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	resp := toResponse(tx)
	assert.Nil(t, resp.UpdatedAt)
	assert.Nil(t, resp.PostedAt)

	updated := tx.CreatedAt.Add(time.Hour)
	posted := tx.CreatedAt.Add(2 * time.Hour)
	tx.UpdatedAt = &updated
	tx.PostedAt = &posted
	tx.Status = ledger.StatusPosted

	resp = toResponse(tx)
	require.NotNil(t, resp.UpdatedAt)
	assert.Equal(t, updated, *resp.UpdatedAt)
	require.NotNil(t, resp.PostedAt)
	assert.Equal(t, posted, *resp.PostedAt)
}

func newTestRouter(t *testing.T) (chi.Router, *ledger.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, ledger.NewMockAccounts(ctrl))

	router := chi.NewRouter()
	router.Route("/transactions", NewHandler(svc).Routes)

	return router, repo
}

func TestHandler_List_RejectsMalformedDates(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "BadStartDate", target: "/transactions?start_date=yesterday"},
		{name: "BadEndDate", target: "/transactions?end_date=2026-13-45"},
		{name: "WrongLayout", target: "/transactions?start_date=01/05/2026"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := newTestRouter(t)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Contains(t, body["error"], "YYYY-MM-DD")
		})
	}
}

func TestHandler_List_PassesDateFilter(t *testing.T) {
	router, repo := newTestRouter(t)

	var got ledger.ListFilter

	repo.EXPECT().
		ListTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, filter ledger.ListFilter) ([]*ledger.Transaction, int, error) {
			got = filter
			return nil, 0, nil
		})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/transactions?start_date=2026-05-01&end_date=2026-05-31", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), *got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), *got.EndDate)
}

package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agilebooks/agilebooks/internal/account"
	"github.com/agilebooks/agilebooks/internal/http/respond"
	"github.com/agilebooks/agilebooks/internal/ledger"
	"github.com/agilebooks/agilebooks/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
}

type recentTransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"transaction_number"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      ledger.Status   `json:"status"`
}

type summaryResponse struct {
	AccountCount         int                              `json:"account_count"`
	AccountsByType       map[account.Type]int             `json:"accounts_by_type"`
	BalancesByType       map[account.Type]decimal.Decimal `json:"balances_by_type"`
	TransactionCount     int                              `json:"transaction_count"`
	TransactionsByStatus map[ledger.Status]int            `json:"transactions_by_status"`
	RecentTransactions   []recentTransactionResponse      `json:"recent_transactions"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	recent := make([]recentTransactionResponse, len(summary.RecentTransactions))
	for i, tx := range summary.RecentTransactions {
		recent[i] = recentTransactionResponse{
			ID:          tx.ID,
			Number:      tx.Number,
			Date:        tx.Date,
			Description: tx.Description,
			TotalAmount: tx.TotalAmount,
			Status:      tx.Status,
		}
	}

	respond.JSON(w, http.StatusOK, summaryResponse{
		AccountCount:         summary.AccountCount,
		AccountsByType:       summary.AccountsByType,
		BalancesByType:       summary.BalancesByType,
		TransactionCount:     summary.TransactionCount,
		TransactionsByStatus: summary.TransactionsByStatus,
		RecentTransactions:   recent,
	})
}

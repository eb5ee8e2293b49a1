package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agilebooks/agilebooks/internal/ledger"
)

type entryResponse struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code,omitempty"`
	AccountName string          `json:"account_name,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

type transactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"transaction_number"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      ledger.Status   `json:"status"`
	Entries     []entryResponse `json:"entries"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
	PostedAt    *time.Time      `json:"posted_at,omitempty"`
}

func toResponse(tx *ledger.Transaction) transactionResponse {
	entries := make([]entryResponse, len(tx.Entries))
	for i, e := range tx.Entries {
		entries[i] = entryResponse{
			AccountID:   e.AccountID,
			AccountCode: e.AccountCode,
			AccountName: e.AccountName,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Description: e.Description,
		}
	}

	return transactionResponse{
		ID:          tx.ID,
		Number:      tx.Number,
		Date:        tx.Date,
		Description: tx.Description,
		Reference:   tx.Reference,
		TotalAmount: tx.TotalAmount,
		Status:      tx.Status,
		Entries:     entries,
		CreatedBy:   tx.CreatedBy,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
		PostedAt:    tx.PostedAt,
	}
}

type paginationResponse struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

type listResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Pagination   paginationResponse    `json:"pagination"`
}

func toListResponse(txs []*ledger.Transaction, filter ledger.ListFilter, total int) listResponse {
	out := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toResponse(tx)
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	if limit > 100 {
		limit = 100
	}

	pages := (total + limit - 1) / limit

	page := filter.Page
	if page < 1 {
		page = 1
	}

	return listResponse{
		Transactions: out,
		Pagination: paginationResponse{
			Current: page,
			Pages:   pages,
			Total:   total,
		},
	}
}

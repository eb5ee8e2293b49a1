package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a transaction. Only posted
// transactions affect account balances. reversed is reserved in the schema
// but no transition produces it.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPosted   Status = "posted"
	StatusReversed Status = "reversed"
)

// Entry is one side of a double-entry transaction, embedded in its parent.
type Entry struct {
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string

	// Loaded via JOIN for display.
	AccountCode string
	AccountName string
}

// Transaction is a balanced set of entries against the chart of accounts.
type Transaction struct {
	ID          uuid.UUID
	Number      string
	Date        time.Time
	Description string
	Reference   string
	TotalAmount decimal.Decimal
	Status      Status
	Entries     []Entry
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	PostedAt    *time.Time
}

// FormatNumber renders a sequence value as a transaction number, e.g.
// FormatNumber(42) == "TXN-000042".
func FormatNumber(seq int64) string {
	return fmt.Sprintf("TXN-%06d", seq)
}

package customer

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("customer not found")
)

// PaymentTerms is the agreed payment window for a customer's invoices.
type PaymentTerms string

const (
	TermsNet30        PaymentTerms = "Net 30"
	TermsNet60        PaymentTerms = "Net 60"
	TermsDueOnReceipt PaymentTerms = "Due on Receipt"
	TermsCOD          PaymentTerms = "COD"
)

// ValidTerms reports whether t is a known payment-terms value.
func ValidTerms(t PaymentTerms) bool {
	switch t {
	case TermsNet30, TermsNet60, TermsDueOnReceipt, TermsCOD:
		return true
	}

	return false
}

type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

type Customer struct {
	ID             uuid.UUID
	Number         string
	Name           string
	Email          string
	Phone          string
	Address        Address
	CreditLimit    decimal.Decimal
	CurrentBalance decimal.Decimal
	PaymentTerms   PaymentTerms
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// FormatNumber renders a sequence value as a customer number, e.g.
// FormatNumber(3) == "CUST-000003".
func FormatNumber(seq int64) string {
	return fmt.Sprintf("CUST-%06d", seq)
}
